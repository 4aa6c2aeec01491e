package canaddr

import "strings"

// Flags mark the frame type carried alongside an identifier.
//
// The bit positions are the same ones Linux SocketCAN uses in the upper
// bits of can_id (see <linux/can.h>), which keeps conversions to and
// from the kernel representation a plain OR/AND. A frame with neither
// FlagRemote nor FlagError is a data frame. The type does not enforce
// that FlagRemote and FlagError are mutually exclusive; a physically
// valid frame never carries both, and keeping them apart is up to the
// caller.
type Flags uint32

const (
	// FlagExtended marks 29-bit (extended frame format) addressing.
	FlagExtended Flags = 0x80000000
	// FlagRemote marks a remote transmission request frame.
	FlagRemote Flags = 0x40000000
	// FlagError marks an error frame.
	FlagError Flags = 0x20000000

	// FlagsNone is the empty flag set (a standard data frame).
	FlagsNone Flags = 0
)

// Value masks for the two addressing widths (same values as CAN_SFF_MASK
// and CAN_EFF_MASK in <linux/can.h>).
const (
	SFFMask uint32 = 0x000007FF
	EFFMask uint32 = 0x1FFFFFFF
)

// flagsMask covers every defined flag bit.
const flagsMask = FlagExtended | FlagRemote | FlagError

// Has reports whether every bit of f2 is set in f.
func (f Flags) Has(f2 Flags) bool { return f&f2 == f2 }

// Intersects reports whether any bit of f2 is set in f.
func (f Flags) Intersects(f2 Flags) bool { return f&f2 != 0 }

// With returns f with the bits of f2 set.
func (f Flags) With(f2 Flags) Flags { return f | f2 }

// Without returns f with the bits of f2 cleared.
func (f Flags) Without(f2 Flags) Flags { return f &^ f2 }

// Bits returns the flag set as its raw 32-bit pattern.
func (f Flags) Bits() uint32 { return uint32(f) }

func (f Flags) String() string {
	if f&flagsMask == 0 {
		return ""
	}
	parts := make([]string, 0, 3)
	if f.Has(FlagExtended) {
		parts = append(parts, "EXTENDED")
	}
	if f.Has(FlagRemote) {
		parts = append(parts, "REMOTE")
	}
	if f.Has(FlagError) {
		parts = append(parts, "ERROR")
	}
	return strings.Join(parts, "|")
}
