// Package canaddr provides the CAN addressing layer: standard (11-bit)
// and extended (29-bit) identifiers with frame-type flags, bitwise
// acceptance filters, and a frame container classified by those flags.
//
// Flags use the Linux SocketCAN can_id bit layout (EFF/RTR/ERR in the
// top three bits), so an identifier together with its flags round-trips
// losslessly through a single 32-bit word. Subpackages build on this:
//
//   - obd derives legislated on-board-diagnostics addresses (ISO 15765-4)
//   - socketcan is a raw AF_CAN device with kernel-side filters (linux)
//   - slcan speaks the Lawicel ASCII serial protocol
//   - compat/brutella converts to github.com/brutella/can frames
//
// All types in this package are small immutable values, safe to share
// between goroutines without coordination.
package canaddr
