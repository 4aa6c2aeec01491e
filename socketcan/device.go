//go:build linux

// Package socketcan reads and writes canaddr frames on a raw Linux
// AF_CAN socket and installs canaddr filters as kernel-side receive
// filters.
package socketcan

import (
	"fmt"
	"net"

	"golang.org/x/sys/unix"

	canaddr "github.com/kstaniek/go-canaddr"
)

type Device struct {
	fd int
}

func Open(iface string) (*Device, error) {
	fd, err := unix.Socket(unix.AF_CAN, unix.SOCK_RAW, unix.CAN_RAW)
	if err != nil {
		return nil, fmt.Errorf("socket(AF_CAN): %w", err)
	}
	if err := unix.SetsockoptInt(fd, unix.SOL_CAN_RAW, unix.CAN_RAW_FD_FRAMES, 0); err != nil {
		// Older kernels may not know this option; ignore ENOPROTOOPT
		if err != unix.ENOPROTOOPT {
			_ = unix.Close(fd)
			return nil, fmt.Errorf("disable CAN FD: %w", err)
		}
	}
	ifi, err := net.InterfaceByName(iface)
	if err != nil {
		_ = unix.Close(fd)
		return nil, fmt.Errorf("if %q: %w", iface, err)
	}
	sa := &unix.SockaddrCAN{Ifindex: ifi.Index}
	if err := unix.Bind(fd, sa); err != nil {
		_ = unix.Close(fd)
		return nil, fmt.Errorf("bind(can@%s): %w", iface, err)
	}
	return &Device{fd: fd}, nil
}

func (d *Device) Close() error { return unix.Close(d.fd) }

// SetFilters installs the given acceptance filters in the kernel so
// only matching frames reach ReadFrame. An empty slice removes the
// restriction (the kernel default accepts everything).
func (d *Device) SetFilters(filters []canaddr.Filter) error {
	if len(filters) == 0 {
		return unix.SetsockoptCanRawFilter(d.fd, unix.SOL_CAN_RAW, unix.CAN_RAW_FILTER,
			[]unix.CanFilter{{Id: 0, Mask: 0}})
	}
	raw := make([]unix.CanFilter, len(filters))
	for i, f := range filters {
		raw[i] = ToLinuxFilter(f)
	}
	if err := unix.SetsockoptCanRawFilter(d.fd, unix.SOL_CAN_RAW, unix.CAN_RAW_FILTER, raw); err != nil {
		return fmt.Errorf("CAN_RAW_FILTER: %w", err)
	}
	return nil
}

// ReadFrame reads one classic CAN frame from the raw CAN socket.
func (d *Device) ReadFrame() (canaddr.Frame, error) {
	var buf [unix.CAN_MTU]byte // classic CAN MTU = 16 bytes
	n, err := unix.Read(d.fd, buf[:])
	if err != nil {
		return canaddr.Frame{}, err
	}
	if n != unix.CAN_MTU {
		return canaddr.Frame{}, fmt.Errorf("short read: %d", n)
	}
	// struct can_frame fields arrive in host byte order, which the
	// canaddr wire helper assumes little-endian. Big-endian targets
	// would need a byte swap here.
	var fr canaddr.Frame
	if err := fr.UnmarshalBinary(buf[:]); err != nil {
		return canaddr.Frame{}, err
	}
	return fr, nil
}

// WriteFrame writes one classic CAN frame to the raw CAN socket.
func (d *Device) WriteFrame(fr canaddr.Frame) error {
	buf, err := fr.MarshalBinary()
	if err != nil {
		return err
	}
	_, err = unix.Write(d.fd, buf)
	return err
}
