package report

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// echartsAssetsPrefix is where the rendered pages load echarts JS from.
const echartsAssetsPrefix = "https://go-echarts.github.io/go-echarts-assets/assets/"

// RenderPresence writes a standalone HTML page with a per-person totals
// bar chart and a stacked per-day breakdown.
func RenderPresence(w io.Writer, people []AssetPresence, sum Summary, generated time.Time) error {
	names := make([]string, len(people))
	totals := make([]opts.BarData, len(people))
	for i, p := range people {
		names[i] = p.AssetName
		if names[i] == "" {
			names[i] = p.MacAddress
		}
		totals[i] = opts.BarData{Value: roundHours(float64(p.TotalMS) / msPerHour)}
	}

	totalsBar := charts.NewBar()
	totalsBar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Presence Report", Theme: "dark", Width: "100%", Height: "480px", AssetsHost: echartsAssetsPrefix}),
		charts.WithTitleOpts(opts.Title{
			Title:    "Presence by person (hours)",
			Subtitle: fmt.Sprintf("people=%d mean=%.1fh median=%.1fh p90=%.1fh open=%d generated=%s", sum.People, sum.MeanHours, sum.MedianHours, sum.P90Hours, sum.OpenSessions, generated.Format(time.RFC3339)),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)
	totalsBar.SetXAxis(names).
		AddSeries("hours", totals,
			charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Position: "top"}),
		)

	dailyBar := charts.NewBar()
	dailyBar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Theme: "dark", Width: "100%", Height: "480px", AssetsHost: echartsAssetsPrefix}),
		charts.WithTitleOpts(opts.Title{Title: "Presence by day (hours)"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Top: "30px"}),
	)
	days := collectDays(people)
	dailyBar.SetXAxis(days)
	for i, p := range people {
		series := make([]opts.BarData, len(days))
		for j, day := range days {
			series[j] = opts.BarData{Value: roundHours(float64(p.DailyMS[day]) / msPerHour)}
		}
		dailyBar.AddSeries(names[i], series, charts.WithBarChartOpts(opts.BarChart{Stack: "presence"}))
	}

	page := components.NewPage()
	page.SetAssetsHost(echartsAssetsPrefix)
	page.AddCharts(totalsBar, dailyBar)
	return page.Render(w)
}

// collectDays returns the union of report dates in chronological order.
// DD.MM.YYYY does not sort lexically, so sort on the reversed fields.
func collectDays(people []AssetPresence) []string {
	seen := make(map[string]struct{})
	for _, p := range people {
		for day := range p.DailyMS {
			seen[day] = struct{}{}
		}
	}
	days := make([]string, 0, len(seen))
	for day := range seen {
		days = append(days, day)
	}
	sort.Slice(days, func(i, j int) bool { return dateKey(days[i]) < dateKey(days[j]) })
	return days
}

func dateKey(d string) string {
	if len(d) != 10 {
		return d
	}
	return d[6:10] + d[3:5] + d[0:2]
}

func roundHours(h float64) float64 {
	return float64(int(h*100+0.5)) / 100
}
