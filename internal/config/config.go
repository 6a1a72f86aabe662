// Package config loads the optional tuning file that overrides the engine's
// built-in defaults. The JSON schema uses pointer fields so partial configs
// are safe: anything omitted keeps its default.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/banshee-data/zonetrack/internal/units"
)

// Settings holds the resolved tuning values the engine and sweeps run with.
type Settings struct {
	// Signal inference
	HoldTime          time.Duration // cache entries older than this degrade
	DegradedRSSI      int           // assumed floor (dBm) once a pair goes silent
	Lookback          time.Duration // scoring window over the reading history
	ExpectedSamples   int           // nominal sample count per lookback window
	SyntheticInterval time.Duration // assumed cadence of synthesized samples
	OutsideRangeAfter time.Duration // silence before demotion to Outside Range

	// Sweep cadence
	RangeSweepInterval   time.Duration
	SessionSweepInterval time.Duration
	DirectoryRefresh     time.Duration
	PruneInterval        time.Duration
	PruneKeep            int

	// Presentation
	Timezone          string
	SessionWindowDays int
}

// Default returns the stock settings. The inference constants match the
// behaviour the fleet was calibrated against; change them only with care.
func Default() Settings {
	return Settings{
		HoldTime:          15 * time.Second,
		DegradedRSSI:      -85,
		Lookback:          61 * time.Second,
		ExpectedSamples:   20,
		SyntheticInterval: 3 * time.Second,
		OutsideRangeAfter: 10 * time.Minute,

		RangeSweepInterval:   time.Second,
		SessionSweepInterval: 5 * time.Second,
		DirectoryRefresh:     5 * time.Second,
		PruneInterval:        time.Hour,
		PruneKeep:            5000,

		Timezone:          units.DefaultTimezone,
		SessionWindowDays: 5,
	}
}

// Tuning is the JSON schema of the config file. All fields are optional.
type Tuning struct {
	HoldTime          *string `json:"hold_time,omitempty"`          // duration string like "15s"
	DegradedRSSI      *int    `json:"degraded_rssi,omitempty"`      // dBm
	Lookback          *string `json:"lookback,omitempty"`           // duration string like "61s"
	ExpectedSamples   *int    `json:"expected_samples,omitempty"`
	SyntheticInterval *string `json:"synthetic_interval,omitempty"` // duration string like "3s"
	OutsideRangeAfter *string `json:"outside_range_after,omitempty"`

	RangeSweepInterval   *string `json:"range_sweep_interval,omitempty"`
	SessionSweepInterval *string `json:"session_sweep_interval,omitempty"`
	DirectoryRefresh     *string `json:"directory_refresh,omitempty"`
	PruneInterval        *string `json:"prune_interval,omitempty"`
	PruneKeep            *int    `json:"prune_keep,omitempty"`

	Timezone          *string `json:"timezone,omitempty"`
	SessionWindowDays *int    `json:"session_window_days,omitempty"`
}

// maxFileSize bounds config reads for safety (1MB).
const maxFileSize = 1 * 1024 * 1024

// LoadTuning reads and parses a tuning file. The path must have a .json
// extension and stay under the size limit.
func LoadTuning(path string) (*Tuning, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	info, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	if info.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", info.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var t Tuning
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	return &t, nil
}

// Apply overlays the tuning values onto s, validating as it goes.
func (t *Tuning) Apply(s *Settings) error {
	if err := applyDuration(t.HoldTime, "hold_time", &s.HoldTime); err != nil {
		return err
	}
	if t.DegradedRSSI != nil {
		if *t.DegradedRSSI >= 0 {
			return fmt.Errorf("degraded_rssi must be negative dBm, got %d", *t.DegradedRSSI)
		}
		s.DegradedRSSI = *t.DegradedRSSI
	}
	if err := applyDuration(t.Lookback, "lookback", &s.Lookback); err != nil {
		return err
	}
	if t.ExpectedSamples != nil {
		if *t.ExpectedSamples <= 0 {
			return fmt.Errorf("expected_samples must be positive, got %d", *t.ExpectedSamples)
		}
		s.ExpectedSamples = *t.ExpectedSamples
	}
	if err := applyDuration(t.SyntheticInterval, "synthetic_interval", &s.SyntheticInterval); err != nil {
		return err
	}
	if err := applyDuration(t.OutsideRangeAfter, "outside_range_after", &s.OutsideRangeAfter); err != nil {
		return err
	}
	if err := applyDuration(t.RangeSweepInterval, "range_sweep_interval", &s.RangeSweepInterval); err != nil {
		return err
	}
	if err := applyDuration(t.SessionSweepInterval, "session_sweep_interval", &s.SessionSweepInterval); err != nil {
		return err
	}
	if err := applyDuration(t.DirectoryRefresh, "directory_refresh", &s.DirectoryRefresh); err != nil {
		return err
	}
	if err := applyDuration(t.PruneInterval, "prune_interval", &s.PruneInterval); err != nil {
		return err
	}
	if t.PruneKeep != nil {
		if *t.PruneKeep < 1 {
			return fmt.Errorf("prune_keep must be at least 1, got %d", *t.PruneKeep)
		}
		s.PruneKeep = *t.PruneKeep
	}
	if t.Timezone != nil {
		if !units.IsTimezoneValid(*t.Timezone) {
			return fmt.Errorf("unknown timezone %q", *t.Timezone)
		}
		s.Timezone = *t.Timezone
	}
	if t.SessionWindowDays != nil {
		if *t.SessionWindowDays < 1 {
			return fmt.Errorf("session_window_days must be at least 1, got %d", *t.SessionWindowDays)
		}
		s.SessionWindowDays = *t.SessionWindowDays
	}
	return nil
}

func applyDuration(raw *string, name string, dst *time.Duration) error {
	if raw == nil {
		return nil
	}
	d, err := time.ParseDuration(*raw)
	if err != nil {
		return fmt.Errorf("invalid %s %q: %w", name, *raw, err)
	}
	if d <= 0 {
		return fmt.Errorf("%s must be positive, got %v", name, d)
	}
	*dst = d
	return nil
}

// Load resolves the final settings: defaults, overlaid with the tuning file
// at path when one is given.
func Load(path string) (Settings, error) {
	s := Default()
	if path == "" {
		return s, nil
	}
	t, err := LoadTuning(path)
	if err != nil {
		return s, err
	}
	if err := t.Apply(&s); err != nil {
		return s, err
	}
	return s, nil
}
