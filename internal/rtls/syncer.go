package rtls

import (
	"context"
	"time"

	"github.com/banshee-data/zonetrack/internal/monitoring"
)

// DirectorySyncer refreshes the engine's directory snapshot from the
// hubs and assets tables on a short cadence, so zone moves and newly
// registered assets take effect without a restart.
type DirectorySyncer struct {
	Engine   *Engine
	Interval time.Duration
	StopChan chan struct{}
}

func NewDirectorySyncer(e *Engine) *DirectorySyncer {
	return &DirectorySyncer{
		Engine:   e,
		Interval: e.cfg.DirectoryRefresh,
		StopChan: make(chan struct{}),
	}
}

// Start runs the refresh loop in a goroutine.
func (s *DirectorySyncer) Start() {
	go func() {
		ticker := s.Engine.clock.NewTicker(s.Interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C():
				if err := s.RunOnce(context.Background()); err != nil {
					monitoring.Logf("directory refresh error: %v", err)
				}
			case <-s.StopChan:
				return
			}
		}
	}()
}

// Stop requests the refresh loop to stop.
func (s *DirectorySyncer) Stop() {
	close(s.StopChan)
}

// RunOnce loads both snapshots and swaps them in. A failed load keeps
// the previous snapshot, so a transient store error only means the
// directory stays briefly stale.
func (s *DirectorySyncer) RunOnce(ctx context.Context) error {
	e := s.Engine

	hubs, err := e.db.ListHubs()
	if err != nil {
		return err
	}
	assets, err := e.db.ListAssets()
	if err != nil {
		return err
	}

	e.dir.ReplaceHubs(hubs)
	e.dir.ReplaceAssets(assets)
	return nil
}
