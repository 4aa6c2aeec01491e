// Package obd derives legislated on-board-diagnostics addresses from
// raw CAN identifiers, following the fixed bands of ISO 15765-4.
//
// Legislated OBD reserves a broadcast (functional request) address, a
// physical request band and a physical response band in both addressing
// widths. Request and response addresses pair deterministically: the
// standard bands sit a fixed offset of 8 apart, while the extended
// bands encode target and source in the low two bytes, so the pairing
// is a byte swap.
package obd

import (
	"errors"
	"fmt"

	canaddr "github.com/kstaniek/go-canaddr"
)

// Legislated-OBD identifier bands, ISO 15765-4:2005(E) section 6.3.2,
// tables 3 ("11 bit legislated-OBD CAN identifiers") and 5 ("29 bit
// legislated-OBD CAN identifiers").
const (
	broadcastStandard = 0x7DF
	broadcastExtended = 0x18DB33F1

	reqStartStandard = 0x7E0
	reqEndStandard   = 0x7E7
	rspStartStandard = 0x7E8
	rspEndStandard   = 0x7EF

	reqStartExtended = 0x18DA00F1
	reqEndExtended   = 0x18DAFFF1
	rspStartExtended = 0x18DAF100
	rspEndExtended   = 0x18DAF1FF

	// Standard-width physical request and response identifiers differ
	// by this fixed offset.
	reqRspOffsetStandard = 8
)

// ErrNotDiagnosticAddress is returned when an identifier falls outside
// the legislated band of the address type being constructed.
var ErrNotDiagnosticAddress = errors.New("obd: identifier outside legislated-OBD band")

// BroadcastAddress is the functional request address for legislated OBD
// diagnostic messages.
//
// Any device providing legislated OBD services treats a message to this
// address as if it had been addressed directly, which makes it useful
// for discovering all diagnostic-capable devices on the bus.
type BroadcastAddress struct {
	id canaddr.ID
}

// StandardBroadcast returns the broadcast address for 11-bit
// addressing, identifier 0x7DF.
func StandardBroadcast() BroadcastAddress {
	return BroadcastAddress{id: canaddr.Standard(canaddr.MustStandardID(broadcastStandard))}
}

// ExtendedBroadcast returns the broadcast address for 29-bit
// addressing, identifier 0x18DB33F1.
func ExtendedBroadcast() BroadcastAddress {
	return BroadcastAddress{id: canaddr.Extended(canaddr.MustExtendedID(broadcastExtended))}
}

// ID returns the identifier this broadcast address represents.
func (a BroadcastAddress) ID() canaddr.ID { return a.id }

func (a BroadcastAddress) String() string { return a.id.String() }

// RequestAddress is a physical request address for legislated OBD
// diagnostic messages: the identifier an external test device sends
// requests to.
//
// Standard addressing allows eight such devices ([0x7E0, 0x7E7]);
// extended addressing reserves a 256-wide band ([0x18DA00F1,
// 0x18DAFFF1], stepping the target byte) although the number of
// legislated OBD devices may still not exceed eight. Every request
// address has a unique, precomputable response address.
type RequestAddress struct {
	id canaddr.ID
}

// RequestFromID validates that id lies within the physical request band
// for its addressing width and wraps it. Identifiers outside the band
// return ErrNotDiagnosticAddress.
func RequestFromID(id canaddr.ID) (RequestAddress, error) {
	if !inBand(id, reqStartStandard, reqEndStandard, reqStartExtended, reqEndExtended) {
		return RequestAddress{}, fmt.Errorf("%w: %s", ErrNotDiagnosticAddress, id)
	}
	return RequestAddress{id: id}, nil
}

// ID returns the identifier this request address represents.
func (a RequestAddress) ID() canaddr.ID { return a.id }

// Response returns the paired physical response address. For standard
// addressing the response sits a fixed 8 above the request; for
// extended addressing the target and source bytes swap. The receiver is
// always inside the request band (the only way to obtain one is
// RequestFromID), so the result is always a valid response address.
func (a RequestAddress) Response() ResponseAddress {
	if sid, ok := a.id.StandardID(); ok {
		paired := canaddr.MustStandardID(sid.Raw() + reqRspOffsetStandard)
		return ResponseAddress{id: canaddr.Standard(paired)}
	}
	eid, _ := a.id.ExtendedID()
	paired := canaddr.MustExtendedID(swapTargetSource(eid.Raw()))
	return ResponseAddress{id: canaddr.Extended(paired)}
}

func (a RequestAddress) String() string { return a.id.String() }

// ResponseAddress is a physical response address for legislated OBD
// diagnostic messages: the identifier a diagnostic device answers on,
// typically received by an external test device.
type ResponseAddress struct {
	id canaddr.ID
}

// ResponseFromID validates that id lies within the physical response
// band for its addressing width and wraps it. Identifiers outside the
// band return ErrNotDiagnosticAddress.
func ResponseFromID(id canaddr.ID) (ResponseAddress, error) {
	if !inBand(id, rspStartStandard, rspEndStandard, rspStartExtended, rspEndExtended) {
		return ResponseAddress{}, fmt.Errorf("%w: %s", ErrNotDiagnosticAddress, id)
	}
	return ResponseAddress{id: id}, nil
}

// ID returns the identifier this response address represents.
func (a ResponseAddress) ID() canaddr.ID { return a.id }

// Request returns the paired physical request address, inverting
// Response: minus 8 for standard addressing, the same self-inverse
// byte swap for extended.
func (a ResponseAddress) Request() RequestAddress {
	if sid, ok := a.id.StandardID(); ok {
		paired := canaddr.MustStandardID(sid.Raw() - reqRspOffsetStandard)
		return RequestAddress{id: canaddr.Standard(paired)}
	}
	eid, _ := a.id.ExtendedID()
	paired := canaddr.MustExtendedID(swapTargetSource(eid.Raw()))
	return RequestAddress{id: canaddr.Extended(paired)}
}

func (a ResponseAddress) String() string { return a.id.String() }

// StandardResponseFilter returns a filter matching exactly the standard
// physical response band, 0x7E8 to 0x7EF. Useful for bulk-screening
// replies to a broadcast query.
func StandardResponseFilter() canaddr.Filter {
	return canaddr.Range(
		canaddr.Standard(canaddr.MustStandardID(rspStartStandard)),
		canaddr.Standard(canaddr.MustStandardID(rspEndStandard)),
	)
}

// ExtendedResponseFilter returns a filter matching exactly the extended
// physical response band, 0x18DAF100 to 0x18DAF1FF.
func ExtendedResponseFilter() canaddr.Filter {
	return canaddr.Range(
		canaddr.Extended(canaddr.MustExtendedID(rspStartExtended)),
		canaddr.Extended(canaddr.MustExtendedID(rspEndExtended)),
	)
}

// inBand reports whether the identifier's numeric value lies in the
// inclusive band for its own addressing width.
func inBand(id canaddr.ID, stdLo, stdHi, extLo, extHi uint32) bool {
	v := id.Raw()
	if id.IsExtended() {
		return v >= extLo && v <= extHi
	}
	return v >= stdLo && v <= stdHi
}

// swapTargetSource exchanges the target and source bytes of a 29-bit
// physical diagnostic identifier (bits 8-15 with bits 0-7, top 16 bits
// kept). The extended request and response bands differ only in those
// two bytes, and the swap is its own inverse, so one function covers
// both pairing directions.
func swapTargetSource(raw uint32) uint32 {
	return (raw & 0xFFFF0000) | (raw&0x0000FF00)>>8 | (raw&0x000000FF)<<8
}
