package canaddr

import "fmt"

// Mask is a raw 32-bit bit pattern selecting which bits of an
// identifier word a Filter compares. Any pattern is legal; there is no
// range validity independent of the identifier it is paired with.
type Mask uint32

const (
	// MaskAll compares every bit.
	MaskAll Mask = 0xFFFFFFFF
	// MaskNone compares no bit; paired with any identifier it accepts
	// everything.
	MaskNone Mask = 0
)

// NewMask creates a Mask from a raw pattern. Every pattern is valid.
func NewMask(v uint32) Mask { return Mask(v) }

// And returns the bitwise AND of the two masks.
func (m Mask) And(o Mask) Mask { return m & o }

// Or returns the bitwise OR of the two masks.
func (m Mask) Or(o Mask) Mask { return m | o }

// Xor returns the bitwise XOR of the two masks.
func (m Mask) Xor(o Mask) Mask { return m ^ o }

// Add returns m plus o, wrapping over the 32-bit space.
func (m Mask) Add(o Mask) Mask { return m + o }

// Sub returns m minus o, wrapping over the 32-bit space.
func (m Mask) Sub(o Mask) Mask { return m - o }

// Bits returns the mask as its raw 32-bit pattern.
func (m Mask) Bits() uint32 { return uint32(m) }

func (m Mask) String() string { return fmt.Sprintf("0x%08X", uint32(m)) }

// Filter is an (identifier, mask) pair deciding acceptance of incoming
// identifiers by partial bit comparison over the packed 32-bit word
// (value bits plus flag bits; the two occupy disjoint bit ranges).
//
// A Filter is an immutable value: the Allow*/Disallow* methods return a
// modified copy and compose freely. There is no validation at
// construction; callers may build filters that can never match.
type Filter struct {
	id   ID
	mask Mask
}

// NewFilter pairs an identifier with a mask directly.
func NewFilter(id ID, mask Mask) Filter {
	return Filter{id: id, mask: mask}
}

// Identity returns a filter matching exactly id: same addressing width,
// same value, same flags. The mask covers every value bit plus every
// flag bit the identifier carries.
func Identity(id ID) Filter {
	return Filter{id: id, mask: Mask(EFFMask | id.flags.Bits())}
}

// Any returns a filter that matches every identifier unconditionally,
// whatever its value or flag combination.
func Any() Filter {
	return Filter{mask: MaskNone}
}

// None returns a filter that matches nothing. It compares every bit
// against the maximal extended identifier carrying all three flag bits
// at once; no physically valid frame is simultaneously a data, remote
// and error frame, so the equality can never hold. This is a deliberate
// impossible filter, not a distinct matching mode.
func None() Filter {
	id := Extended(ExtendedIDMax.SetFlags(FlagRemote | FlagError))
	return Filter{id: id, mask: MaskAll}
}

// DataFramesOnly returns a filter matching identifiers whose error flag
// is clear, irrespective of value and other flags.
func DataFramesOnly() Filter {
	return Filter{mask: Mask(FlagError.Bits())}
}

// ErrorFramesOnly returns a filter matching identifiers whose error
// flag is set, irrespective of value and other flags.
func ErrorFramesOnly() Filter {
	id := ID{flags: FlagError}
	return Filter{id: id, mask: Mask(FlagError.Bits())}
}

// Range returns a filter matching every identifier whose value lies in
// the inclusive numeric span between start and end, in either argument
// order. The lower bound becomes the filter identifier and the mask
// clears exactly the low bits that vary across the span.
//
// The construction is exact only when the span is a bit-aligned block
// ("all identifiers differing only in bits below some boundary"), which
// holds for the legislated OBD bands such as 0x7E8-0x7EF. For arbitrary
// unaligned spans the resulting filter is over- or under-inclusive;
// callers needing exact arbitrary-range matching must test values
// individually.
func Range(start, end ID) Filter {
	lo, hi := start, end
	if lo.Compare(hi) > 0 {
		lo, hi = hi, lo
	}
	delta := hi.Raw() - lo.Raw()
	return Filter{id: lo, mask: MaskAll.Sub(Mask(delta))}
}

// ID returns the identifier the filter compares against.
func (f Filter) ID() ID { return f.id }

// Mask returns the filter's comparison mask.
func (f Filter) Mask() Mask { return f.mask }

// Matches reports whether id passes the filter: the masked bits of the
// packed identifier word must equal the masked bits of the filter's
// own identifier word.
func (f Filter) Matches(id ID) bool {
	return id.AsRaw32()&f.mask.Bits() == f.id.AsRaw32()&f.mask.Bits()
}

// AllowExtendedFrames returns a copy that ignores the extended flag bit
// when matching, accepting both addressing widths.
func (f Filter) AllowExtendedFrames() Filter {
	f.mask = f.mask.And(^Mask(FlagExtended.Bits()))
	return f
}

// DisallowExtendedFrames returns a copy that compares the extended flag
// bit, restricting matches to the filter identifier's own width.
func (f Filter) DisallowExtendedFrames() Filter {
	f.mask = f.mask.Or(Mask(FlagExtended.Bits()))
	return f
}

// AllowRTRFrames returns a copy that ignores the remote flag bit when
// matching.
func (f Filter) AllowRTRFrames() Filter {
	f.mask = f.mask.And(^Mask(FlagRemote.Bits()))
	return f
}

// DisallowRTRFrames returns a copy that compares the remote flag bit.
func (f Filter) DisallowRTRFrames() Filter {
	f.mask = f.mask.Or(Mask(FlagRemote.Bits()))
	return f
}

// AllowErrorFrames returns a copy that ignores the error flag bit when
// matching.
func (f Filter) AllowErrorFrames() Filter {
	f.mask = f.mask.And(^Mask(FlagError.Bits()))
	return f
}

// DisallowErrorFrames returns a copy that compares the error flag bit.
func (f Filter) DisallowErrorFrames() Filter {
	f.mask = f.mask.Or(Mask(FlagError.Bits()))
	return f
}

func (f Filter) String() string {
	return fmt.Sprintf("%s/%s", f.id, f.mask)
}
