package api

import (
	"net/http"

	"github.com/banshee-data/zonetrack/internal/httputil"
)

// showConfig reports the effective tuning values.
func (s *Server) showConfig(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}

	cfg := s.engine.Settings()
	httputil.WriteJSONOK(w, map[string]any{
		"hold_time":              cfg.HoldTime.String(),
		"degraded_rssi":          cfg.DegradedRSSI,
		"lookback":               cfg.Lookback.String(),
		"expected_samples":       cfg.ExpectedSamples,
		"synthetic_interval":     cfg.SyntheticInterval.String(),
		"outside_range_after":    cfg.OutsideRangeAfter.String(),
		"range_sweep_interval":   cfg.RangeSweepInterval.String(),
		"session_sweep_interval": cfg.SessionSweepInterval.String(),
		"directory_refresh":      cfg.DirectoryRefresh.String(),
		"prune_interval":         cfg.PruneInterval.String(),
		"prune_keep":             cfg.PruneKeep,
		"timezone":               cfg.Timezone,
		"session_window_days":    cfg.SessionWindowDays,
	})
}
