package hubmux

import "io"

// Porter defines the minimal interface needed for a gateway port.
// This abstraction enables unit testing without real serial hardware.
type Porter interface {
	io.ReadWriter
	io.Closer
}
