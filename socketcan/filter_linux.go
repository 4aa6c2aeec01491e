//go:build linux

package socketcan

import (
	"golang.org/x/sys/unix"

	canaddr "github.com/kstaniek/go-canaddr"
)

// ToLinuxFilter re-encodes a canaddr filter as the kernel's can_filter
// structure. The mapping is pure bit re-encoding: the filter identifier
// packs into the 32-bit can_id word (value plus flag bits) and the mask
// carries over unchanged, since canaddr flags already live at the
// SocketCAN bit positions.
func ToLinuxFilter(f canaddr.Filter) unix.CanFilter {
	return unix.CanFilter{
		Id:   f.ID().AsRaw32(),
		Mask: f.Mask().Bits(),
	}
}
