package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/banshee-data/zonetrack/internal/httputil"
	"github.com/banshee-data/zonetrack/internal/units"
)

type timeSection struct {
	Date      string  `json:"date"`
	StartTime string  `json:"startTime"`
	StopTime  *string `json:"stopTime"`
	Duration  string  `json:"duration"`
}

type personTracking struct {
	AssetName    string        `json:"assetName"`
	TimeSections []timeSection `json:"timeSections"`
}

// listTimeTracking returns the recent sessions grouped per person.
// The window is the configured number of calendar days, counted on
// the session's own date, not its timestamps.
func (s *Server) listTimeTracking(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}

	sessions, err := s.db.SessionsSince(0)
	if err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("failed to fetch time tracking data: %v", err))
		return
	}

	loc := s.engine.Location()
	cfg := s.engine.Settings()
	today := units.LocalDate(s.clock.Now().UnixMilli(), loc)

	out := make(map[string]*personTracking)
	for _, sess := range sessions {
		diff, err := units.DateDiffDays(sess.Date, today, loc)
		if err != nil || diff > cfg.SessionWindowDays {
			continue
		}

		person, ok := out[sess.MacAddress]
		if !ok {
			name := sess.AssetName
			if name == "" {
				name = "Unknown"
			}
			person = &personTracking{AssetName: name, TimeSections: []timeSection{}}
			out[sess.MacAddress] = person
		}

		section := timeSection{
			Date:      sess.Date,
			StartTime: time.UnixMilli(sess.StartMS).UTC().Format(time.RFC3339Nano),
			Duration:  sessionDuration(sess.TimeCounter, sess.StartMS, sess.StopMS),
		}
		if sess.StopMS != nil {
			stop := time.UnixMilli(*sess.StopMS).UTC().Format(time.RFC3339Nano)
			section.StopTime = &stop
		}
		person.TimeSections = append(person.TimeSections, section)
	}

	httputil.WriteJSONOK(w, out)
}

// sessionDuration prefers the durable counter, falls back to
// stop-start, and reports zero for an open session.
func sessionDuration(counter string, startMS int64, stopMS *int64) string {
	if counter != "" {
		return counter
	}
	if stopMS != nil {
		return units.FormatCounterMillis(*stopMS - startMS)
	}
	return "00:00:00"
}
