// Package report aggregates tracked sessions into per-person presence
// figures and renders them as standalone HTML charts.
package report

import (
	"sort"

	"github.com/banshee-data/zonetrack/internal/db"
	"gonum.org/v1/gonum/stat"
)

// AssetPresence is the accumulated on-site time for one tracked person
// over the reporting window.
type AssetPresence struct {
	MacAddress string `json:"macAddress"`
	AssetName  string `json:"assetName"`
	Sessions   int    `json:"sessions"`
	TotalMS    int64  `json:"totalMs"`

	// DailyMS keys are local dates in DD.MM.YYYY form.
	DailyMS map[string]int64 `json:"dailyMs"`
}

// Summary carries distribution statistics over the per-person totals.
type Summary struct {
	People       int     `json:"people"`
	MeanHours    float64 `json:"meanHours"`
	StdDevHours  float64 `json:"stdDevHours"`
	MedianHours  float64 `json:"medianHours"`
	P90Hours     float64 `json:"p90Hours"`
	TotalHours   float64 `json:"totalHours"`
	OpenSessions int     `json:"openSessions"`
}

const msPerHour = 3600 * 1000

// BuildPresence folds session rows into per-person presence totals.
// Open sessions accrue up to nowMS. Rows come back sorted by asset name
// so the rendered chart is stable across runs.
func BuildPresence(sessions []db.Session, nowMS int64) []AssetPresence {
	byMac := make(map[string]*AssetPresence)
	for _, sess := range sessions {
		p, ok := byMac[sess.MacAddress]
		if !ok {
			p = &AssetPresence{
				MacAddress: sess.MacAddress,
				AssetName:  sess.AssetName,
				DailyMS:    make(map[string]int64),
			}
			byMac[sess.MacAddress] = p
		}
		if sess.AssetName != "" {
			p.AssetName = sess.AssetName
		}
		stop := nowMS
		if sess.StopMS != nil {
			stop = *sess.StopMS
		}
		dur := stop - sess.StartMS
		if dur < 0 {
			dur = 0
		}
		p.Sessions++
		p.TotalMS += dur
		p.DailyMS[sess.Date] += dur
	}

	out := make([]AssetPresence, 0, len(byMac))
	for _, p := range byMac {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].AssetName != out[j].AssetName {
			return out[i].AssetName < out[j].AssetName
		}
		return out[i].MacAddress < out[j].MacAddress
	})
	return out
}

// Summarize computes distribution statistics over the per-person totals.
func Summarize(people []AssetPresence, sessions []db.Session) Summary {
	s := Summary{People: len(people)}
	for _, sess := range sessions {
		if sess.Open() {
			s.OpenSessions++
		}
	}
	if len(people) == 0 {
		return s
	}

	hours := make([]float64, len(people))
	for i, p := range people {
		hours[i] = float64(p.TotalMS) / msPerHour
		s.TotalHours += hours[i]
	}
	sort.Float64s(hours)

	s.MeanHours = stat.Mean(hours, nil)
	if len(hours) > 1 {
		s.StdDevHours = stat.StdDev(hours, nil)
	}
	s.MedianHours = stat.Quantile(0.5, stat.Empirical, hours, nil)
	s.P90Hours = stat.Quantile(0.9, stat.Empirical, hours, nil)
	return s
}
