// Hubsim generates synthetic hub traffic against a running zonetrack
// server. It speaks the same wire shape as blukii gateway firmware, so
// the ingest path sees realistic payloads without hardware.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/banshee-data/zonetrack/internal/httputil"
)

var (
	apiURL   = flag.String("url", "http://localhost:8080/api/data", "Ingest endpoint to post to")
	hubList  = flag.String("hubs", "hub-1", "Comma separated hub ids to simulate")
	macList  = flag.String("beacons", "E4E1129BDC9A,E4E1129BDB69", "Comma separated beacon mac addresses")
	interval = flag.Duration("interval", 3*time.Second, "Delay between send rounds")
	rounds   = flag.Int("rounds", 0, "Number of rounds to send (0 runs until interrupted)")
	rssiMin  = flag.Int("rssi-min", -70, "Weakest simulated rssi (dBm)")
	rssiMax  = flag.Int("rssi-max", -30, "Strongest simulated rssi (dBm)")
)

// rssiSample mirrors the array-of-objects shape real firmware sends.
type rssiSample struct {
	RSSI      int   `json:"rssi"`
	Timestamp int64 `json:"timestamp"`
}

type beaconItem struct {
	MacAddress string       `json:"macAddress"`
	BlukiiID   string       `json:"blukiiId"`
	BatteryPct int          `json:"batteryPct"`
	Timestamp  int64        `json:"timestamp"`
	RSSI       []rssiSample `json:"rssi"`
}

type hubBatch struct {
	ID    string       `json:"id"`
	Items []beaconItem `json:"items"`
}

// Simulator posts synthetic batches for a fixed set of hubs and beacons.
type Simulator struct {
	Client  httputil.HTTPClient
	URL     string
	Hubs    []string
	Beacons []string
	RSSIMin int
	RSSIMax int

	rand *rand.Rand
}

func NewSimulator(client httputil.HTTPClient, url string, hubs, beacons []string, rssiMin, rssiMax int) *Simulator {
	return &Simulator{
		Client:  client,
		URL:     url,
		Hubs:    hubs,
		Beacons: beacons,
		RSSIMin: rssiMin,
		RSSIMax: rssiMax,
		rand:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// batch builds one payload for the given hub at the given instant.
func (s *Simulator) batch(hubID string, now time.Time) hubBatch {
	ts := now.UnixMilli()
	items := make([]beaconItem, 0, len(s.Beacons))
	for _, mac := range s.Beacons {
		rssi := s.RSSIMin + s.rand.Intn(s.RSSIMax-s.RSSIMin+1)
		items = append(items, beaconItem{
			MacAddress: mac,
			BlukiiID:   fmt.Sprintf("blukii BXXXXX %s", mac),
			BatteryPct: 90 + s.rand.Intn(11),
			Timestamp:  ts,
			RSSI:       []rssiSample{{RSSI: rssi, Timestamp: ts}},
		})
	}
	return hubBatch{ID: hubID, Items: items}
}

// SendRound posts one batch per hub and reports the first failure.
func (s *Simulator) SendRound(now time.Time) error {
	for _, hubID := range s.Hubs {
		payload, err := json.Marshal(s.batch(hubID, now))
		if err != nil {
			return fmt.Errorf("marshal batch for %s: %w", hubID, err)
		}
		resp, err := s.Client.Post(s.URL, "application/json", bytes.NewReader(payload))
		if err != nil {
			return fmt.Errorf("post batch for %s: %w", hubID, err)
		}
		resp.Body.Close()
		if resp.StatusCode != 200 {
			return fmt.Errorf("post batch for %s: unexpected status %d", hubID, resp.StatusCode)
		}
	}
	return nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func main() {
	flag.Parse()

	hubs := splitList(*hubList)
	beacons := splitList(*macList)
	if len(hubs) == 0 || len(beacons) == 0 {
		log.Fatal("at least one hub and one beacon are required")
	}
	if *rssiMin > *rssiMax {
		log.Fatalf("rssi-min %d must not exceed rssi-max %d", *rssiMin, *rssiMax)
	}

	sim := NewSimulator(httputil.NewStandardClient(nil), *apiURL, hubs, beacons, *rssiMin, *rssiMax)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ticker := time.NewTicker(*interval)
	defer ticker.Stop()

	log.Printf("Simulating %d hubs x %d beacons against %s", len(hubs), len(beacons), *apiURL)
	sent := 0
	for {
		if err := sim.SendRound(time.Now()); err != nil {
			log.Printf("send round failed: %v", err)
		} else {
			sent++
			log.Printf("sent round %d", sent)
		}
		if *rounds > 0 && sent >= *rounds {
			return
		}

		select {
		case <-ctx.Done():
			log.Println("simulator stopped")
			return
		case <-ticker.C:
		}
	}
}
