package hubmux

import (
	"go.bug.st/serial"
)

// NewSerialHubMux creates a HubMux instance backed by a real serial port at
// the given path using the provided serial options.
func NewSerialHubMux(path string, opts PortOptions) (*HubMux[serial.Port], error) {
	mode, err := opts.SerialMode()
	if err != nil {
		return nil, err
	}

	port, err := serial.Open(path, mode)
	if err != nil {
		return nil, err
	}

	return NewHubMux[serial.Port](port), nil
}
