package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/banshee-data/zonetrack/internal/db"
	"github.com/banshee-data/zonetrack/internal/httputil"
)

type hubCoordinates struct {
	Lat *float64 `json:"lat"`
	Lng *float64 `json:"lng"`
}

type hubData struct {
	Coordinates hubCoordinates `json:"coordinates"`
	Weight      *float64       `json:"weight,omitempty"`
}

type zoneEntry struct {
	Name    string   `json:"name"`
	HubID   string   `json:"hubId"`
	Count   int      `json:"count"`
	HubData *hubData `json:"hubData,omitempty"`
}

func (s *Server) handleZones(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.listZones(w, r)
	case http.MethodPost:
		s.saveZone(w, r)
	default:
		httputil.MethodNotAllowed(w)
	}
}

// listZones returns every hub with its zone and current beacon count,
// plus the implicit out-of-range pseudo-zone.
func (s *Server) listZones(w http.ResponseWriter, r *http.Request) {
	hubs, err := s.db.ListHubs()
	if err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("failed to list hubs: %v", err))
		return
	}
	counts, err := s.db.ZoneCounts()
	if err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("failed to count zones: %v", err))
		return
	}

	zones := make([]zoneEntry, 0, len(hubs)+1)
	for _, h := range hubs {
		weight := h.Weight
		zones = append(zones, zoneEntry{
			Name:  h.Zone,
			HubID: h.ID,
			Count: counts[h.Zone],
			HubData: &hubData{
				Coordinates: hubCoordinates{Lat: h.Latitude, Lng: h.Longitude},
				Weight:      &weight,
			},
		})
	}
	zones = append(zones, zoneEntry{
		Name:  db.OutsideRange,
		HubID: db.OutsideRange,
		Count: counts[db.OutsideRange],
	})

	httputil.WriteJSONOK(w, map[string][]zoneEntry{"zones": zones})
}

type saveZoneRequest struct {
	HubID    string   `json:"hubId"`
	ZoneName string   `json:"zoneName"`
	HubData  *hubData `json:"hubData,omitempty"`
}

func (s *Server) saveZone(w http.ResponseWriter, r *http.Request) {
	var req saveZoneRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.BadRequest(w, "invalid JSON payload")
		return
	}
	if req.HubID == "" || req.ZoneName == "" {
		httputil.BadRequest(w, "missing required fields")
		return
	}

	hub := db.Hub{ID: req.HubID, Zone: req.ZoneName}
	if req.HubData != nil {
		hub.Latitude = req.HubData.Coordinates.Lat
		hub.Longitude = req.HubData.Coordinates.Lng
		if req.HubData.Weight != nil {
			hub.Weight = *req.HubData.Weight
		}
	}

	if err := s.db.UpsertHub(&hub, s.clock.Now().UnixMilli()); err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("failed to save zone: %v", err))
		return
	}
	httputil.WriteJSONOK(w, map[string]string{"message": "Zone saved successfully"})
}

// handleZoneDelete removes the hub named in the path and demotes any
// beacons stranded in a zone with no remaining hubs.
func (s *Server) handleZoneDelete(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		httputil.MethodNotAllowed(w)
		return
	}

	hubID := strings.TrimPrefix(r.URL.Path, "/api/zones/")
	if hubID == "" {
		httputil.BadRequest(w, "missing hub id")
		return
	}
	if hubID == db.OutsideRange {
		httputil.BadRequest(w, "cannot delete the Outside Range zone")
		return
	}

	existed, demoted, err := s.db.DeleteHub(hubID)
	if err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("failed to delete zone: %v", err))
		return
	}
	if !existed {
		httputil.NotFound(w, "zone not found")
		return
	}

	httputil.WriteJSONOK(w, map[string]any{
		"message":        "Zone deleted successfully",
		"beaconsUpdated": demoted,
	})
}
