// Package slcan speaks the Lawicel SLCAN ASCII protocol used by serial
// CAN adapters: one frame per carriage-return-terminated line, with the
// identifier width and RTR bit encoded in the command letter.
package slcan

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"

	canaddr "github.com/kstaniek/go-canaddr"
	"github.com/kstaniek/go-canaddr/internal/metrics"
)

type Codec struct{}

// ErrUnencodable is returned when a frame has no SLCAN representation
// (error frames and payloads beyond 8 bytes).
var ErrUnencodable = errors.New("slcan: frame not representable")

// CompactBuffer reclaims consumed prefix capacity when underlying buffer
// grows too large relative to unread bytes. It returns true if compaction
// occurred. Thresholds chosen to avoid excessive copying.
func CompactBuffer(b *bytes.Buffer) bool {
	data := b.Bytes()
	// If buffer size < 1KB, skip.
	if len(data) < 1024 {
		return false
	}
	// If unread < 25% of capacity, compact.
	if cap(data) > 0 && len(data)*4 < cap(data) {
		clone := make([]byte, len(data))
		copy(clone, data)
		b.Reset()
		_, _ = b.Write(clone)
		return true
	}
	return false
}

// Encode renders one frame as an SLCAN line:
//
//	t iii l dd..   standard data frame (3 hex id digits, 1 dlc digit)
//	T iiiiiiii l dd..  extended data frame (8 hex id digits)
//	r iii l / R iiiiiiii l  remote frames, no payload bytes
//
// terminated by '\r'. Error frames have no SLCAN encoding.
func (Codec) Encode(fr canaddr.Frame) ([]byte, error) {
	if fr.IsErrorFrame() || len(fr.Data()) > 8 {
		return nil, ErrUnencodable
	}
	id := fr.ID()
	var buf bytes.Buffer
	switch {
	case id.IsExtended() && fr.IsRemoteFrame():
		fmt.Fprintf(&buf, "R%08X%d", id.Raw(), len(fr.Data()))
	case id.IsExtended():
		fmt.Fprintf(&buf, "T%08X%d", id.Raw(), len(fr.Data()))
	case fr.IsRemoteFrame():
		fmt.Fprintf(&buf, "r%03X%d", id.Raw(), len(fr.Data()))
	default:
		fmt.Fprintf(&buf, "t%03X%d", id.Raw(), len(fr.Data()))
	}
	if !fr.IsRemoteFrame() {
		for _, b := range fr.Data() {
			fmt.Fprintf(&buf, "%02X", b)
		}
	}
	buf.WriteByte('\r')
	return buf.Bytes(), nil
}

// DecodeStream drains complete SLCAN lines from in and emits decoded
// frames via out. Incomplete trailing lines stay buffered for the next
// read. Unknown or malformed lines are counted and skipped so a noisy
// adapter cannot wedge the decoder. It returns nil if no error occurred.
func (Codec) DecodeStream(in *bytes.Buffer, out func(canaddr.Frame)) error {
	for {
		_ = CompactBuffer(in)
		data := in.Bytes()
		i := bytes.IndexByte(data, '\r')
		if i < 0 {
			return nil
		}
		line := data[:i]
		fr, err := decodeLine(line)
		in.Next(i + 1)
		if err != nil {
			if !errors.Is(err, errIgnore) {
				metrics.IncMalformed()
			}
			continue
		}
		out(fr)
		metrics.IncSLCANRx()
	}
}

// errIgnore marks adapter chatter that is valid protocol but not a
// frame: command acks ("z", "Z", empty line) and the bell the adapter
// rings on rejected commands.
var errIgnore = errors.New("slcan: non-frame line")

var errMalformed = errors.New("slcan: malformed line")

func decodeLine(line []byte) (canaddr.Frame, error) {
	if len(line) == 0 {
		return canaddr.Frame{}, errIgnore
	}
	switch line[0] {
	case 'z', 'Z', '\a':
		return canaddr.Frame{}, errIgnore
	case 't', 'r':
		return decodeFrame(line[1:], false, line[0] == 'r')
	case 'T', 'R':
		return decodeFrame(line[1:], true, line[0] == 'R')
	default:
		return canaddr.Frame{}, errMalformed
	}
}

func decodeFrame(body []byte, extended, rtr bool) (canaddr.Frame, error) {
	idDigits := 3
	if extended {
		idDigits = 8
	}
	if len(body) < idDigits+1 {
		return canaddr.Frame{}, errMalformed
	}
	rawID, err := strconv.ParseUint(string(body[:idDigits]), 16, 32)
	if err != nil {
		return canaddr.Frame{}, errMalformed
	}
	dlc := int(body[idDigits] - '0')
	if dlc < 0 || dlc > 8 {
		return canaddr.Frame{}, errMalformed
	}

	var flags canaddr.Flags
	if rtr {
		flags = canaddr.FlagRemote
	}
	var id canaddr.ID
	if extended {
		eid, err := canaddr.NewExtendedIDFlags(uint32(rawID), flags)
		if err != nil {
			return canaddr.Frame{}, errMalformed
		}
		id = canaddr.Extended(eid)
	} else {
		sid, err := canaddr.NewStandardIDFlags(uint16(rawID), flags)
		if err != nil {
			return canaddr.Frame{}, errMalformed
		}
		id = canaddr.Standard(sid)
	}

	// Remote frames carry a length but no payload bytes.
	if rtr {
		if len(body) != idDigits+1 {
			return canaddr.Frame{}, errMalformed
		}
		return canaddr.NewFrame(id, nil), nil
	}

	hexData := body[idDigits+1:]
	if len(hexData) != dlc*2 {
		return canaddr.Frame{}, errMalformed
	}
	data := make([]byte, dlc)
	for i := 0; i < dlc; i++ {
		b, err := strconv.ParseUint(string(hexData[i*2:i*2+2]), 16, 8)
		if err != nil {
			return canaddr.Frame{}, errMalformed
		}
		data[i] = byte(b)
	}
	return canaddr.NewFrame(id, data), nil
}
