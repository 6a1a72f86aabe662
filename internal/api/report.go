package api

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/banshee-data/zonetrack/internal/httputil"
	"github.com/banshee-data/zonetrack/internal/report"
)

// presenceReport renders the presence report. Defaults to the session
// window; ?days=N widens or narrows it, ?format=json returns the raw
// aggregates instead of the chart page.
func (s *Server) presenceReport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}

	days := s.engine.Settings().SessionWindowDays
	if raw := r.URL.Query().Get("days"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 1 || v > 90 {
			httputil.BadRequest(w, "days must be between 1 and 90")
			return
		}
		days = v
	}

	now := s.clock.Now()
	cutoffMS := now.Add(-time.Duration(days) * 24 * time.Hour).UnixMilli()
	sessions, err := s.db.SessionsSince(cutoffMS)
	if err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("failed to load sessions: %v", err))
		return
	}

	nowMS := now.UnixMilli()
	people := report.BuildPresence(sessions, nowMS)
	summary := report.Summarize(people, sessions)

	if r.URL.Query().Get("format") == "json" {
		httputil.WriteJSONOK(w, map[string]interface{}{
			"windowDays": days,
			"people":     people,
			"summary":    summary,
		})
		return
	}

	var buf bytes.Buffer
	if err := report.RenderPresence(&buf, people, summary, now); err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("failed to render report: %v", err))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}
