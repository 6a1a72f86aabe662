// Package api exposes the tracking engine over HTTP: hub ingest, zone
// and asset management, live RSSI views and the time-tracking listing.
package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/banshee-data/zonetrack/internal/db"
	"github.com/banshee-data/zonetrack/internal/monitoring"
	"github.com/banshee-data/zonetrack/internal/rtls"
	"github.com/banshee-data/zonetrack/internal/timeutil"
)

// ANSI escape codes for request logging
const colorCyan = "\033[36m"
const colorReset = "\033[0m"
const colorYellow = "\033[33m"
const colorBoldGreen = "\033[1;32m"
const colorBoldRed = "\033[1;31m"

type Server struct {
	db     *db.DB
	engine *rtls.Engine
	clock  timeutil.Clock
}

func NewServer(database *db.DB, engine *rtls.Engine, clock timeutil.Clock) *Server {
	return &Server{
		db:     database,
		engine: engine,
		clock:  clock,
	}
}

func (s *Server) ServeMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/data", s.handleHubData)
	mux.HandleFunc("/api/zones", s.handleZones)
	mux.HandleFunc("/api/zones/", s.handleZoneDelete)
	mux.HandleFunc("/api/assets", s.handleAssets)
	mux.HandleFunc("/api/rssi", s.listRSSI)
	mux.HandleFunc("/api/time-tracking", s.listTimeTracking)
	mux.HandleFunc("/api/report/presence", s.presenceReport)
	mux.HandleFunc("/api/config", s.showConfig)
	return mux
}

type loggingResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (lrw *loggingResponseWriter) WriteHeader(code int) {
	lrw.statusCode = code
	lrw.ResponseWriter.WriteHeader(code)
}

func (lrw *loggingResponseWriter) Flush() {
	if flusher, ok := lrw.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

func statusCodeColor(statusCode int) string {
	switch {
	case statusCode >= 200 && statusCode < 300:
		return colorBoldGreen + strconv.Itoa(statusCode) + colorReset
	case statusCode >= 300 && statusCode < 400:
		return colorYellow + strconv.Itoa(statusCode) + colorReset
	case statusCode >= 400:
		return colorBoldRed + strconv.Itoa(statusCode) + colorReset
	default:
		return strconv.Itoa(statusCode)
	}
}

// LoggingMiddleware logs method, path, query, status, and duration
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		lrw := &loggingResponseWriter{w, http.StatusOK}
		next.ServeHTTP(lrw, r)
		monitoring.Logf(
			"[%s] %s %s%s%s %vms",
			statusCodeColor(lrw.statusCode), r.Method,
			colorCyan, r.RequestURI, colorReset,
			float64(time.Since(start).Nanoseconds())/1e6,
		)
	})
}
