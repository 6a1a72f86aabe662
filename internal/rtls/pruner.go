package rtls

import (
	"context"
	"time"

	"github.com/banshee-data/zonetrack/internal/monitoring"
)

// HistoryPruner trims the reading log down to the configured keep
// count on a slow maintenance cadence. Retention is bounded-size,
// oldest first; it never touches the inference state.
type HistoryPruner struct {
	Engine   *Engine
	Interval time.Duration
	StopChan chan struct{}
}

func NewHistoryPruner(e *Engine) *HistoryPruner {
	return &HistoryPruner{
		Engine:   e,
		Interval: e.cfg.PruneInterval,
		StopChan: make(chan struct{}),
	}
}

// Start runs the pruning loop in a goroutine.
func (p *HistoryPruner) Start() {
	go func() {
		ticker := p.Engine.clock.NewTicker(p.Interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C():
				if err := p.RunOnce(context.Background()); err != nil {
					monitoring.Logf("history prune error: %v", err)
				}
			case <-p.StopChan:
				return
			}
		}
	}()
}

// Stop requests the pruning loop to stop.
func (p *HistoryPruner) Stop() {
	close(p.StopChan)
}

// RunOnce deletes everything but the newest keep-count readings.
func (p *HistoryPruner) RunOnce(ctx context.Context) error {
	removed, err := p.Engine.db.PruneReadings(p.Engine.cfg.PruneKeep)
	if err != nil {
		return err
	}
	if removed > 0 {
		monitoring.Logf("history prune: removed %d old readings", removed)
	}
	return nil
}
