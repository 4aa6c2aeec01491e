package transport

import canaddr "github.com/kstaniek/go-canaddr"

// FrameSink is a generic CAN frame transmission target.
type FrameSink interface {
	SendFrame(canaddr.Frame) error
}

// FrameSource reads one CAN frame at a time from a device.
type FrameSource interface {
	ReadFrame() (canaddr.Frame, error)
}
