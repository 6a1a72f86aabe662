package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/banshee-data/zonetrack/internal/db"
	"github.com/banshee-data/zonetrack/internal/httputil"
)

func (s *Server) handleAssets(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.listAssetsByZone(w, r)
	case http.MethodPost:
		s.registerAssets(w, r)
	case http.MethodDelete:
		s.removeAssets(w, r)
	default:
		httputil.MethodNotAllowed(w)
	}
}

type assetView struct {
	MacAddress string `json:"macAddress"`
	AssetName  string `json:"assetName"`
	HumanFlag  bool   `json:"humanFlag"`
}

// listAssetsByZone groups the live beacon state by assigned zone.
func (s *Server) listAssetsByZone(w http.ResponseWriter, r *http.Request) {
	beacons, err := s.db.ListBeacons()
	if err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("failed to list beacons: %v", err))
		return
	}
	assets, err := s.db.ListAssets()
	if err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("failed to list assets: %v", err))
		return
	}

	human := make(map[string]bool, len(assets))
	for _, a := range assets {
		human[a.MacAddress] = a.HumanFlag
	}

	byZone := make(map[string][]assetView)
	for _, b := range beacons {
		byZone[b.BestZone] = append(byZone[b.BestZone], assetView{
			MacAddress: b.MacAddress,
			AssetName:  b.AssetName,
			HumanFlag:  human[b.MacAddress],
		})
	}

	httputil.WriteJSONOK(w, byZone)
}

func (s *Server) registerAssets(w http.ResponseWriter, r *http.Request) {
	var assets []db.Asset
	if err := json.NewDecoder(r.Body).Decode(&assets); err != nil {
		httputil.BadRequest(w, "invalid data format, expected an array of assets")
		return
	}

	if err := s.db.UpsertAssets(assets); err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("failed to register assets: %v", err))
		return
	}
	httputil.WriteJSONOK(w, map[string]string{"message": "Assets processed successfully"})
}

type removeAssetsRequest struct {
	MacAddresses []string `json:"macAddresses"`
}

func (s *Server) removeAssets(w http.ResponseWriter, r *http.Request) {
	var req removeAssetsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.MacAddresses == nil {
		httputil.BadRequest(w, "invalid data format, expected an array of MAC addresses")
		return
	}

	deleted, err := s.db.DeleteAssets(req.MacAddresses)
	if err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("failed to delete assets: %v", err))
		return
	}
	httputil.WriteJSONOK(w, map[string]any{
		"message": "Assets deleted successfully",
		"deleted": deleted,
	})
}
