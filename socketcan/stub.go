//go:build !linux

// Package socketcan reads and writes canaddr frames on a raw Linux
// AF_CAN socket. Only the overflow sentinel is provided on non-linux
// builds so dependent code can compile.
package socketcan

import "errors"

// ErrTxOverflow is provided for non-linux builds so caller code can compile.
var ErrTxOverflow = errors.New("socketcan tx overflow (stub)")
