package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/banshee-data/zonetrack/internal/httputil"
	"github.com/banshee-data/zonetrack/internal/monitoring"
	"github.com/banshee-data/zonetrack/internal/rtls"
)

type hubItem struct {
	MacAddress string          `json:"macAddress"`
	RSSI       json.RawMessage `json:"rssi"`
}

type hubPayload struct {
	ID    string    `json:"id"`
	Items []hubItem `json:"items"`
}

// extractRSSI tolerates the three shapes hub firmware has been seen
// sending: a bare number, an object {"rssi": n}, or an array of such
// objects (first entry wins).
func extractRSSI(raw json.RawMessage) (int, bool) {
	if len(raw) == 0 {
		return 0, false
	}

	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		return int(n), true
	}

	var obj struct {
		RSSI *float64 `json:"rssi"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil && obj.RSSI != nil {
		return int(*obj.RSSI), true
	}

	var arr []struct {
		RSSI *float64 `json:"rssi"`
	}
	if err := json.Unmarshal(raw, &arr); err == nil && len(arr) > 0 && arr[0].RSSI != nil {
		return int(*arr[0].RSSI), true
	}

	return 0, false
}

// handleHubData accepts one batch of readings from a hub. Malformed
// items and unregistered beacons are skipped; the hub always gets an
// OK so it keeps reporting.
func (s *Server) handleHubData(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httputil.MethodNotAllowed(w)
		return
	}

	var payload hubPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		httputil.BadRequest(w, "invalid JSON payload")
		return
	}
	if payload.ID == "" {
		httputil.BadRequest(w, "missing hub id")
		return
	}

	now := s.clock.Now()
	for _, item := range payload.Items {
		if item.MacAddress == "" {
			continue
		}
		rssi, ok := extractRSSI(item.RSSI)
		if !ok {
			continue
		}

		err := s.engine.Ingest(item.MacAddress, payload.ID, rssi, now)
		switch {
		case err == nil:
		case errors.Is(err, rtls.ErrUnknownHub),
			errors.Is(err, rtls.ErrUnknownBeacon),
			errors.Is(err, rtls.ErrInvalidSample):
			// Expected noise: unmapped hubs and unregistered tags.
		default:
			monitoring.Logf("ingest %s via %s: %v", item.MacAddress, payload.ID, err)
		}
	}

	httputil.WriteJSONOK(w, map[string]string{"status": "OK"})
}
