package rtls

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/banshee-data/zonetrack/internal/db"
	"github.com/banshee-data/zonetrack/internal/monitoring"
)

// RangeMonitor periodically demotes beacons whose assigned zone has
// not heard them for the configured silence window. This is the only
// path that moves a beacon out of a zone without a new reading; the
// assignment decision alone can never rescue a beacon that went quiet.
type RangeMonitor struct {
	Engine   *Engine
	Interval time.Duration
	StopChan chan struct{}

	running atomic.Bool
}

func NewRangeMonitor(e *Engine) *RangeMonitor {
	return &RangeMonitor{
		Engine:   e,
		Interval: e.cfg.RangeSweepInterval,
		StopChan: make(chan struct{}),
	}
}

// Start runs the sweep loop in a goroutine. A tick that arrives while
// the previous sweep is still in flight is skipped.
func (m *RangeMonitor) Start() {
	go func() {
		ticker := m.Engine.clock.NewTicker(m.Interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C():
				if !m.running.CompareAndSwap(false, true) {
					continue
				}
				if err := m.RunOnce(context.Background(), m.Engine.clock.Now()); err != nil {
					monitoring.Logf("range monitor sweep error: %v", err)
				}
				m.running.Store(false)
			case <-m.StopChan:
				return
			}
		}
	}()
}

// Stop requests the sweep loop to stop.
func (m *RangeMonitor) Stop() {
	close(m.StopChan)
}

// RunOnce demotes every assigned beacon that is silent past the
// cutoff or has no in-zone history at all, then evicts cache entries
// idle for longer than the same window.
func (m *RangeMonitor) RunOnce(ctx context.Context, now time.Time) error {
	e := m.Engine
	rows, err := e.db.AssignedLastHeard()
	if err != nil {
		return err
	}

	cutoffMS := now.UnixMilli() - e.cfg.OutsideRangeAfter.Milliseconds()
	for _, row := range rows {
		if row.TimestampMS != nil && *row.TimestampMS >= cutoffMS {
			continue
		}

		unlock := e.locks.Lock(row.MacAddress)
		err := e.db.SetBeaconZone(row.MacAddress, db.OutsideRange)
		unlock()
		if err != nil {
			return err
		}
		monitoring.Logf("beacon %s demoted to %s (silent in %s)", row.MacAddress, db.OutsideRange, row.BestZone)
	}

	if evicted := e.cache.Sweep(now.UnixMilli(), e.cfg.OutsideRangeAfter); evicted > 0 {
		monitoring.Logf("reading cache: evicted %d stale entries", evicted)
	}
	return nil
}
