package hubmux

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/banshee-data/zonetrack/internal/monitoring"
	"github.com/banshee-data/zonetrack/internal/rtls"
	"github.com/banshee-data/zonetrack/internal/timeutil"
)

// ErrSkipLine marks gateway output that carries no observation: boot
// banners, command echoes and blank lines.
var ErrSkipLine = errors.New("not an observation line")

// Observation is one advertisement heard by the gateway.
type Observation struct {
	HubID      string `json:"id"`
	MacAddress string `json:"macAddress"`
	RSSI       int    `json:"rssi"`
}

// ParseLine decodes one line of gateway output. Gateways emit one JSON
// object per advertisement; anything else is noise.
func ParseLine(line string) (Observation, error) {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, "{") {
		return Observation{}, ErrSkipLine
	}
	var obs Observation
	if err := json.Unmarshal([]byte(line), &obs); err != nil {
		return Observation{}, ErrSkipLine
	}
	if obs.MacAddress == "" {
		return Observation{}, ErrSkipLine
	}
	return obs, nil
}

// Ingester receives parsed observations. Satisfied by rtls.Engine.
type Ingester interface {
	Ingest(mac, hubID string, rssi int, at time.Time) error
}

// Bridge subscribes to a gateway mux and feeds its observations into the
// tracking engine. Gateways that do not stamp their own id get the
// configured default.
type Bridge struct {
	mux        HubMuxInterface
	sink       Ingester
	clock      timeutil.Clock
	defaultHub string
}

func NewBridge(mux HubMuxInterface, sink Ingester, clock timeutil.Clock, defaultHub string) *Bridge {
	return &Bridge{
		mux:        mux,
		sink:       sink,
		clock:      clock,
		defaultHub: defaultHub,
	}
}

// Run consumes observation lines until the context is cancelled or the
// subscription channel closes.
func (b *Bridge) Run(ctx context.Context) error {
	id, lines := b.mux.Subscribe()
	defer b.mux.Unsubscribe(id)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			b.handleLine(line)
		}
	}
}

func (b *Bridge) handleLine(line string) {
	obs, err := ParseLine(line)
	if err != nil {
		return
	}
	hubID := obs.HubID
	if hubID == "" {
		hubID = b.defaultHub
	}

	err = b.sink.Ingest(obs.MacAddress, hubID, obs.RSSI, b.clock.Now())
	switch {
	case err == nil:
	case errors.Is(err, rtls.ErrUnknownHub),
		errors.Is(err, rtls.ErrUnknownBeacon),
		errors.Is(err, rtls.ErrInvalidSample):
		// Expected noise: unmapped gateways and unregistered tags.
	default:
		monitoring.Logf("gateway ingest %s via %s: %v", obs.MacAddress, hubID, err)
	}
}
