package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	_ "modernc.org/sqlite"

	"github.com/banshee-data/zonetrack/internal/api"
	"github.com/banshee-data/zonetrack/internal/config"
	"github.com/banshee-data/zonetrack/internal/db"
	"github.com/banshee-data/zonetrack/internal/hubmux"
	"github.com/banshee-data/zonetrack/internal/rtls"
	"github.com/banshee-data/zonetrack/internal/timeutil"
	"github.com/banshee-data/zonetrack/internal/version"
)

var (
	devMode    = flag.Bool("dev", false, "Run in dev mode (mock serial gateway)")
	listen     = flag.String("listen", ":8080", "Listen address")
	dbFile     = flag.String("db", "zonetrack.db", "SQLite database path")
	configFile = flag.String("config", "", "Optional tuning config file (JSON)")
	serialPort = flag.String("serial", "", "Serial gateway port (empty disables the gateway bridge)")
	gatewayHub = flag.String("gateway-hub", "gateway-0", "Hub id for gateway lines that carry none")
)

// mockGatewayLine is what the dev-mode gateway emits twice a second.
const mockGatewayLine = `{"id":"gateway-0","macAddress":"DE:AD:BE:EF:00:01","rssi":-62}` + "\n"

// Main
func main() {
	// `zonetrack migrate ...` manages the schema and exits.
	if len(os.Args) > 1 && os.Args[1] == "migrate" {
		db.RunMigrateCommand(os.Args[2:], envOr("ZONETRACK_DB", "zonetrack.db"))
		return
	}

	flag.Parse()

	if *listen == "" {
		log.Fatal("Listen address is required")
	}
	log.Printf("zonetrack %s (%s, built %s)", version.Version, version.GitSHA, version.BuildTime)

	cfg, err := config.Load(*configFile)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	database, err := db.NewDB(*dbFile)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()

	clock := timeutil.RealClock{}
	engine, err := rtls.NewEngine(database, cfg, clock)
	if err != nil {
		log.Fatalf("Failed to build tracking engine: %v", err)
	}

	// Load the hub and asset roster before the sweeps start so the first
	// readings are not dropped as unknown.
	syncer := rtls.NewDirectorySyncer(engine)
	if err := syncer.RunOnce(context.Background()); err != nil {
		log.Fatalf("Failed to load directory: %v", err)
	}

	workers := []interface {
		Start()
		Stop()
	}{
		syncer,
		rtls.NewRangeMonitor(engine),
		rtls.NewSessionTracker(engine),
		rtls.NewHistoryPruner(engine),
	}
	for _, w := range workers {
		w.Start()
	}
	defer func() {
		for _, w := range workers {
			w.Stop()
		}
	}()

	var gateway hubmux.HubMuxInterface
	switch {
	case *devMode:
		gateway = hubmux.NewMockHubMux([]byte(mockGatewayLine))
	case *serialPort != "":
		gateway, err = hubmux.NewSerialHubMux(*serialPort, hubmux.PortOptions{})
		if err != nil {
			log.Fatalf("failed to open gateway port: %v", err)
		}
	}

	// Create a wait group for the HTTP server, gateway monitor, and bridge routines
	var wg sync.WaitGroup
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if gateway != nil {
		defer gateway.Close()

		// run the monitor routine to manage IO on the serial port
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := gateway.Monitor(ctx); err != nil && err != context.Canceled {
				log.Printf("failed to monitor gateway port: %v", err)
			}
			log.Print("monitor routine terminated")
		}()

		// subscribe to the gateway lines and pass them to the engine
		wg.Add(1)
		go func() {
			defer wg.Done()
			bridge := hubmux.NewBridge(gateway, engine, clock, *gatewayHub)
			if err := bridge.Run(ctx); err != nil && err != context.Canceled {
				log.Printf("gateway bridge error: %v", err)
			}
			log.Print("bridge routine terminated")
		}()
	}

	// HTTP server goroutine
	wg.Add(1)
	go func() {
		defer wg.Done()

		mux := http.NewServeMux()

		// mount the admin debugging routes (accessible only in dev mode or over Tailscale)
		database.AttachAdminRoutes(mux)

		apiMux := api.NewServer(database, engine, clock).ServeMux()
		mux.Handle("/api/", apiMux)

		server := &http.Server{
			Addr:    *listen,
			Handler: api.LoggingMiddleware(mux),
		}

		// Start server in a goroutine so it doesn't block
		go func() {
			log.Printf("Starting HTTP server on %s", *listen)
			if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Fatalf("failed to start server: %v", err)
			}
		}()

		// Wait for context cancellation to shut down server
		<-ctx.Done()
		log.Println("shutting down HTTP server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("HTTP server shutdown error: %v", err)
		}

		log.Printf("HTTP server routine stopped")
	}()

	// Wait for all goroutines to finish
	wg.Wait()
	log.Printf("Graceful shutdown complete")
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
