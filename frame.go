package canaddr

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// Frame is a CAN frame: an identifier plus an opaque payload.
//
// The frame type (data, remote, error) is encoded entirely in the
// identifier's flags; Frame adds no logic of its own beyond classifying
// by those bits. The payload length is not constrained at construction:
// higher transport layers such as ISO-TP legitimately carry more than
// the classical 8 bytes, and the physical-layer limit is enforced only
// by the single wire conversion helper MarshalBinary.
type Frame struct {
	id   ID
	data []byte
}

// ErrFrameTooLong is returned by MarshalBinary when the payload does
// not fit a classical CAN frame.
var ErrFrameTooLong = errors.New("canaddr: payload exceeds 8 bytes")

// NewFrame creates a frame from an identifier and payload. The payload
// slice is used as-is, not copied.
func NewFrame(id ID, data []byte) Frame {
	return Frame{id: id, data: data}
}

// ID returns the frame's identifier.
func (f Frame) ID() ID { return f.id }

// Flags returns the flags of the frame's identifier.
func (f Frame) Flags() Flags { return f.id.Flags() }

// Data returns the frame's payload.
func (f Frame) Data() []byte { return f.data }

// IsDataFrame reports whether the frame is a plain data frame, meaning
// neither the remote nor the error flag is set.
func (f Frame) IsDataFrame() bool {
	return !f.id.Flags().Intersects(FlagRemote | FlagError)
}

// IsRemoteFrame reports whether the frame is a remote transmission
// request.
func (f Frame) IsRemoteFrame() bool { return f.id.Flags().Has(FlagRemote) }

// IsErrorFrame reports whether the frame is an error frame.
func (f Frame) IsErrorFrame() bool { return f.id.Flags().Has(FlagError) }

// MarshalBinary encodes the frame to the Linux SocketCAN can_frame
// layout (16 bytes, little-endian can_id with flag bits folded in).
// This is the only place the classical CAN payload limit is enforced;
// payloads longer than 8 bytes return ErrFrameTooLong.
//
// Layout:
//
//	0..3  can_id (value | EFF/RTR/ERR flag bits)
//	4     dlc
//	5..7  padding (zero)
//	8..15 data
func (f Frame) MarshalBinary() ([]byte, error) {
	if len(f.data) > 8 {
		return nil, ErrFrameTooLong
	}
	buf := make([]byte, 16)
	binary.LittleEndian.PutUint32(buf[0:4], f.id.AsRaw32())
	buf[4] = uint8(len(f.data))
	copy(buf[8:], f.data)
	return buf, nil
}

// UnmarshalBinary decodes a frame from the SocketCAN can_frame layout.
func (f *Frame) UnmarshalBinary(data []byte) error {
	if len(data) < 16 {
		return fmt.Errorf("canaddr: need 16 bytes, got %d", len(data))
	}
	dlc := int(data[4])
	if dlc > 8 {
		return ErrFrameTooLong
	}
	f.id = FromRaw(binary.LittleEndian.Uint32(data[0:4]))
	f.data = make([]byte, dlc)
	copy(f.data, data[8:8+dlc])
	return nil
}

func (f Frame) String() string {
	return fmt.Sprintf("%s % X", f.id, f.data)
}
