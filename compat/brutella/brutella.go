// Package brutella converts between canaddr frames and the frame type
// of github.com/brutella/can. Both sides keep the SocketCAN bit layout
// in their 32-bit identifier word, so the conversions are pure
// re-encodings with no additional semantics.
package brutella

import (
	"github.com/brutella/can"

	canaddr "github.com/kstaniek/go-canaddr"
)

// ToFrame re-encodes a canaddr frame for brutella/can. It returns
// canaddr.ErrFrameTooLong when the payload does not fit the fixed
// 8-byte array of the target type.
func ToFrame(fr canaddr.Frame) (can.Frame, error) {
	if len(fr.Data()) > 8 {
		return can.Frame{}, canaddr.ErrFrameTooLong
	}
	out := can.Frame{
		ID:     fr.ID().AsRaw32(),
		Length: uint8(len(fr.Data())),
	}
	copy(out.Data[:], fr.Data())
	return out, nil
}

// FromFrame re-encodes a brutella/can frame as a canaddr frame. The
// identifier word decodes infallibly: value bits beyond the addressing
// width selected by the EFF flag are truncated.
func FromFrame(fr can.Frame) canaddr.Frame {
	n := int(fr.Length)
	if n > len(fr.Data) {
		n = len(fr.Data)
	}
	data := make([]byte, n)
	copy(data, fr.Data[:n])
	return canaddr.NewFrame(canaddr.FromRaw(fr.ID), data)
}
