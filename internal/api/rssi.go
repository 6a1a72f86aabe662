package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/banshee-data/zonetrack/internal/httputil"
)

type zoneRSSIView struct {
	RSSI         int    `json:"rssi"`
	LastSeen     string `json:"lastSeen"`
	AssignedZone string `json:"assignedZone"`
}

// listRSSI reports the latest sample per (beacon, zone) pair keyed by
// mac address, alongside the beacon's current assignment.
func (s *Server) listRSSI(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}

	rows, err := s.db.LatestRSSIByZone()
	if err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("failed to fetch rssi data: %v", err))
		return
	}

	out := make(map[string]map[string]any)
	for _, row := range rows {
		entry, ok := out[row.MacAddress]
		if !ok {
			entry = map[string]any{"assetName": row.AssetName}
			out[row.MacAddress] = entry
		}
		entry[row.Zone] = zoneRSSIView{
			RSSI:         row.RSSI,
			LastSeen:     time.UnixMilli(row.TimestampMS).UTC().Format(time.RFC3339Nano),
			AssignedZone: row.BestZone,
		}
	}

	httputil.WriteJSONOK(w, out)
}
