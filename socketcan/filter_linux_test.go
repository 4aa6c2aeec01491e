//go:build linux

package socketcan

import (
	"testing"

	canaddr "github.com/kstaniek/go-canaddr"
	"github.com/kstaniek/go-canaddr/obd"
)

func TestToLinuxFilter(t *testing.T) {
	tests := []struct {
		name     string
		filter   canaddr.Filter
		id, mask uint32
	}{
		{
			name:   "standard identity",
			filter: canaddr.Identity(canaddr.Standard(canaddr.MustStandardID(0x7E0))),
			id:     0x7E0,
			mask:   0x1FFFFFFF,
		},
		{
			name:   "extended identity carries the EFF bit both sides",
			filter: canaddr.Identity(canaddr.Extended(canaddr.MustExtendedID(0x18DB33F1))),
			id:     0x80000000 | 0x18DB33F1,
			mask:   0x1FFFFFFF | 0x80000000,
		},
		{
			name:   "obd standard response band",
			filter: obd.StandardResponseFilter(),
			id:     0x7E8,
			mask:   0xFFFFFFF8,
		},
		{
			name:   "accept everything",
			filter: canaddr.Any(),
			id:     0,
			mask:   0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := ToLinuxFilter(tt.filter)
			if raw.Id != tt.id {
				t.Errorf("Id = 0x%X, want 0x%X", raw.Id, tt.id)
			}
			if raw.Mask != tt.mask {
				t.Errorf("Mask = 0x%X, want 0x%X", raw.Mask, tt.mask)
			}
		})
	}
}
