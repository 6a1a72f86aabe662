// Package rtls implements the presence and location inference engine:
// RSSI scoring over a short history window, zone assignment with a
// strict better-score switch rule, demotion of silent beacons, and the
// day-bounded presence session tracker for human-flagged beacons.
package rtls

import (
	"errors"
	"fmt"
	"time"

	"github.com/banshee-data/zonetrack/internal/config"
	"github.com/banshee-data/zonetrack/internal/db"
	"github.com/banshee-data/zonetrack/internal/timeutil"
	"github.com/banshee-data/zonetrack/internal/units"
)

var (
	// ErrUnknownHub means the reporting hub has no zone mapping yet.
	// The sample is dropped; the directory refresh will pick the hub
	// up once it is registered.
	ErrUnknownHub = errors.New("hub not in directory")

	// ErrUnknownBeacon means the mac address is not a registered asset.
	ErrUnknownBeacon = errors.New("beacon not registered")

	// ErrInvalidSample means the RSSI value cannot be a real reading.
	ErrInvalidSample = errors.New("invalid rssi sample")
)

// Engine owns the reading cache, the directory snapshot and the
// per-beacon locks, and performs the assignment decision for every
// inbound reading.
type Engine struct {
	db    *db.DB
	cfg   config.Settings
	clock timeutil.Clock
	loc   *time.Location

	cache *Cache
	dir   *Directory
	locks *keyedMutex
}

func NewEngine(database *db.DB, cfg config.Settings, clock timeutil.Clock) (*Engine, error) {
	loc, err := units.LoadTimezone(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("loading timezone %q: %w", cfg.Timezone, err)
	}
	return &Engine{
		db:    database,
		cfg:   cfg,
		clock: clock,
		loc:   loc,
		cache: NewCache(cfg.HoldTime, cfg.DegradedRSSI),
		dir:   NewDirectory(),
		locks: newKeyedMutex(),
	}, nil
}

// Directory exposes the live directory snapshot for the syncer and
// the API layer.
func (e *Engine) Directory() *Directory { return e.dir }

// Settings returns the tuning the engine runs with.
func (e *Engine) Settings() config.Settings { return e.cfg }

// Location returns the configured local calendar timezone.
func (e *Engine) Location() *time.Location { return e.loc }

// Ingest processes one RSSI sample: caches it, appends it to the
// history and runs the assignment decision for the beacon. Samples
// from unmapped hubs or unregistered beacons are rejected with the
// sentinel errors above; the caller decides whether that is worth
// logging. A scoring failure aborts the candidate switch and leaves
// the previous assignment intact.
func (e *Engine) Ingest(mac, hubID string, rssi int, at time.Time) error {
	if rssi >= 0 {
		return fmt.Errorf("%w: %s", ErrInvalidSample, units.DBm(rssi))
	}
	zone, ok := e.dir.ZoneOf(hubID)
	if !ok {
		return ErrUnknownHub
	}
	asset, ok := e.dir.Asset(mac)
	if !ok {
		return ErrUnknownBeacon
	}

	unlock := e.locks.Lock(mac)
	defer unlock()

	tsMS := at.UnixMilli()
	e.cache.Put(mac, hubID, rssi, tsMS)
	if err := e.db.InsertReading(db.Reading{
		MacAddress:  mac,
		HubID:       hubID,
		RSSI:        rssi,
		TimestampMS: tsMS,
	}); err != nil {
		return err
	}

	beacon, err := e.db.GetBeacon(mac)
	if err != nil {
		return err
	}

	switch {
	case beacon == nil || beacon.BestZone == db.OutsideRange:
		// Unassigned or out of range: take the reporting zone directly.
		return e.db.UpsertBeacon(mac, asset.Name, zone, tsMS)

	case beacon.BestZone == zone:
		return e.db.TouchBeacon(mac, tsMS)

	default:
		candidate, err := e.ZoneScore(mac, zone, at)
		if err != nil {
			return fmt.Errorf("scoring candidate zone %q: %w", zone, err)
		}
		best, err := e.ZoneScore(mac, beacon.BestZone, at)
		if err != nil {
			return fmt.Errorf("scoring assigned zone %q: %w", beacon.BestZone, err)
		}
		// Strictly better only. Equal scores keep the assignment.
		if candidate > best {
			return e.db.UpsertBeacon(mac, asset.Name, zone, tsMS)
		}
		return e.db.TouchBeacon(mac, tsMS)
	}
}
