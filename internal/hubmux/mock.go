package hubmux

import (
	"io"
	"log"
	"os"
	"time"
)

// MockPort implements Porter for dev mode and testing.
type MockPort struct {
	io.Reader
	io.WriteCloser
}

func (m *MockPort) Write(p []byte) (n int, err error) {
	return m.WriteCloser.Write(p)
}

// NewMockHubMux creates a HubMux instance backed by a mock gateway that
// emits mockLine periodically. Commands written to the mock land in a temp
// file for inspection.
func NewMockHubMux(mockLine []byte) *HubMux[*MockPort] {
	r, w := io.Pipe()
	f, err := os.CreateTemp("", "mock_gateway_port")
	if err != nil {
		panic("failed to create temp file for mock gateway port: " + err.Error())
	}
	log.Printf("Writing mock gateway received input at %s", f.Name())

	mockPort := &MockPort{
		Reader:      r,
		WriteCloser: f,
	}

	// generate data periodically to simulate gateway output
	go func() {
		defer w.Close()
		ticker := time.NewTicker(500 * time.Millisecond)
		defer ticker.Stop()
		for range ticker.C {
			w.Write(mockLine)
		}
	}()

	return NewHubMux(mockPort)
}
