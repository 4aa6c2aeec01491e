package canaddr

import (
	"errors"
	"fmt"
)

// ErrIDOutOfRange is returned when a numeric value does not fit the
// legal range of the identifier width being constructed.
var ErrIDOutOfRange = errors.New("canaddr: identifier out of range")

// StandardID is a standard (11-bit) CAN identifier, CAN 2.0A.
//
// A standard identifier falls within 0 to 0x7FF inclusive and carries a
// flag set whose FlagExtended bit is always clear. Lower values win bus
// arbitration, so numerically lower means higher priority.
type StandardID struct {
	raw   uint16
	flags Flags
}

// StandardIDZero is the minimum standard identifier, the highest
// priority address on the bus. StandardIDMax is the maximum, the lowest
// priority address.
var (
	StandardIDZero = StandardID{}
	StandardIDMax  = StandardID{raw: uint16(SFFMask)}
)

// NewStandardID creates a StandardID with an empty flag set. It returns
// ErrIDOutOfRange if v is greater than 0x7FF.
func NewStandardID(v uint16) (StandardID, error) {
	return NewStandardIDFlags(v, FlagsNone)
}

// NewStandardIDFlags creates a StandardID carrying the given flags. The
// FlagExtended bit is cleared unconditionally: a standard identifier
// cannot be marked extended.
func NewStandardIDFlags(v uint16, flags Flags) (StandardID, error) {
	if uint32(v) > SFFMask {
		return StandardID{}, ErrIDOutOfRange
	}
	return StandardID{raw: v, flags: flags.Without(FlagExtended)}, nil
}

// MustStandardID is NewStandardID that panics on error. Intended for
// fixed well-known addresses and tests.
func MustStandardID(v uint16) StandardID {
	id, err := NewStandardID(v)
	if err != nil {
		panic(fmt.Sprintf("canaddr: MustStandardID(0x%X): %v", v, err))
	}
	return id
}

// Raw returns the numeric identifier value without flag bits.
func (id StandardID) Raw() uint16 { return id.raw }

// Flags returns the flag set carried by the identifier.
func (id StandardID) Flags() Flags { return id.flags }

// SetFlags returns a copy with its flag set replaced. FlagExtended is
// always cleared from the result.
func (id StandardID) SetFlags(flags Flags) StandardID {
	id.flags = flags.Without(FlagExtended)
	return id
}

// MapFlags returns a copy whose flag set has been passed through fn.
// FlagExtended is cleared from whatever fn produces.
func (id StandardID) MapFlags(fn func(Flags) Flags) StandardID {
	return id.SetFlags(fn(id.flags))
}

// Compare orders identifiers by bus priority: negative when id would
// win arbitration against other. Flags do not participate.
func (id StandardID) Compare(other StandardID) int {
	switch {
	case id.raw < other.raw:
		return -1
	case id.raw > other.raw:
		return 1
	default:
		return 0
	}
}

func (id StandardID) String() string { return formatID(uint32(id.raw), id.flags) }

// ExtendedID is an extended (29-bit) CAN identifier, CAN 2.0B.
//
// An extended identifier falls within 0 to 0x1FFFFFFF inclusive. Its
// flag set always carries FlagExtended; the constructors and every flag
// transformation re-assert the bit, so the invariant is structural
// rather than checked.
type ExtendedID struct {
	raw   uint32
	flags Flags
}

// ExtendedIDZero is the minimum extended identifier, the highest
// priority extended address. ExtendedIDMax is the maximum, the lowest
// priority address on the whole bus.
var (
	ExtendedIDZero = ExtendedID{flags: FlagExtended}
	ExtendedIDMax  = ExtendedID{raw: EFFMask, flags: FlagExtended}
)

// NewExtendedID creates an ExtendedID whose flag set is FlagExtended
// only. It returns ErrIDOutOfRange if v is greater than 0x1FFFFFFF.
func NewExtendedID(v uint32) (ExtendedID, error) {
	return NewExtendedIDFlags(v, FlagsNone)
}

// NewExtendedIDFlags creates an ExtendedID carrying the given flags
// plus FlagExtended, which is set unconditionally.
func NewExtendedIDFlags(v uint32, flags Flags) (ExtendedID, error) {
	if v > EFFMask {
		return ExtendedID{}, ErrIDOutOfRange
	}
	return ExtendedID{raw: v, flags: flags.With(FlagExtended)}, nil
}

// MustExtendedID is NewExtendedID that panics on error. Intended for
// fixed well-known addresses and tests.
func MustExtendedID(v uint32) ExtendedID {
	id, err := NewExtendedID(v)
	if err != nil {
		panic(fmt.Sprintf("canaddr: MustExtendedID(0x%X): %v", v, err))
	}
	return id
}

// Raw returns the numeric identifier value without flag bits.
func (id ExtendedID) Raw() uint32 { return id.raw }

// Flags returns the flag set carried by the identifier.
func (id ExtendedID) Flags() Flags { return id.flags }

// SetFlags returns a copy with its flag set replaced. FlagExtended is
// always re-asserted in the result.
func (id ExtendedID) SetFlags(flags Flags) ExtendedID {
	id.flags = flags.With(FlagExtended)
	return id
}

// MapFlags returns a copy whose flag set has been passed through fn.
// FlagExtended is re-asserted even if fn clears it.
func (id ExtendedID) MapFlags(fn func(Flags) Flags) ExtendedID {
	return id.SetFlags(fn(id.flags))
}

// BaseID returns the standard identifier formed by the top 11 bits of
// the extended value, with FlagExtended cleared. This is a lossy
// downcast used for legacy-range interoperability, not the inverse of
// any upcast.
func (id ExtendedID) BaseID() StandardID {
	return StandardID{raw: uint16(id.raw >> 18), flags: id.flags.Without(FlagExtended)}
}

// Compare orders identifiers by bus priority: negative when id would
// win arbitration against other. Flags do not participate.
func (id ExtendedID) Compare(other ExtendedID) int {
	switch {
	case id.raw < other.raw:
		return -1
	case id.raw > other.raw:
		return 1
	default:
		return 0
	}
}

func (id ExtendedID) String() string { return formatID(id.raw, id.flags.Without(FlagExtended)) }

// ID is a CAN identifier of either width.
//
// The identifier serves as the logical address of a CAN message and as
// its arbitration priority: when several nodes transmit simultaneously,
// the lowest-valued contending identifier wins the bus. Because the IDE
// bit is recessive, every extended identifier loses arbitration against
// every standard identifier, and Compare reflects that.
//
// The zero value is the standard identifier 0 with no flags. Equality
// is structural (== compares width, value and flags); ID is usable as a
// map key.
type ID struct {
	raw   uint32
	flags Flags
}

// Standard wraps a StandardID.
func Standard(id StandardID) ID {
	return ID{raw: uint32(id.raw), flags: id.flags}
}

// Extended wraps an ExtendedID.
func Extended(id ExtendedID) ID {
	return ID{raw: id.raw, flags: id.flags}
}

// FromRaw decodes an identifier from the packed 32-bit SocketCAN word:
// flag bits in the top three bits, the value in the low 29 or 11 bits
// depending on the FlagExtended bit. Excess value bits are truncated,
// so any word decodes to a valid identifier.
func FromRaw(word uint32) ID {
	flags := Flags(word) & flagsMask
	if flags.Has(FlagExtended) {
		return ID{raw: word & EFFMask, flags: flags}
	}
	return ID{raw: word & SFFMask, flags: flags}
}

// Raw returns the numeric identifier value without flag bits.
func (id ID) Raw() uint32 { return id.raw }

// Flags returns the flag set carried by the identifier.
func (id ID) Flags() Flags { return id.flags }

// AsRaw32 packs value and flags into the single 32-bit SocketCAN word.
// FromRaw(id.AsRaw32()) == id for every identifier.
func (id ID) AsRaw32() uint32 { return id.raw | id.flags.Bits() }

// IsExtended reports whether the identifier uses 29-bit addressing.
func (id ID) IsExtended() bool { return id.flags.Has(FlagExtended) }

// StandardID returns the underlying StandardID when the identifier is
// standard.
func (id ID) StandardID() (StandardID, bool) {
	if id.IsExtended() {
		return StandardID{}, false
	}
	return StandardID{raw: uint16(id.raw), flags: id.flags}, true
}

// ExtendedID returns the underlying ExtendedID when the identifier is
// extended.
func (id ID) ExtendedID() (ExtendedID, bool) {
	if !id.IsExtended() {
		return ExtendedID{}, false
	}
	return ExtendedID{raw: id.raw, flags: id.flags}, true
}

// Compare orders identifiers by bus priority: negative when id would
// win arbitration against other, zero when neither would. A standard
// identifier always orders before an extended one; within the same
// width the numeric value decides. Flags beyond FlagExtended do not
// participate.
func (id ID) Compare(other ID) int {
	a, b := id.IsExtended(), other.IsExtended()
	switch {
	case !a && b:
		return -1
	case a && !b:
		return 1
	case id.raw < other.raw:
		return -1
	case id.raw > other.raw:
		return 1
	default:
		return 0
	}
}

func (id ID) String() string { return formatID(id.raw, id.flags) }

// formatID renders the value in hex with any flags appended. The output
// is for human inspection only and is not a parseable format.
func formatID(raw uint32, flags Flags) string {
	if flags&flagsMask == 0 {
		return fmt.Sprintf("0x%X", raw)
	}
	return fmt.Sprintf("0x%X [%s]", raw, flags)
}
