package rtls

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/banshee-data/zonetrack/internal/db"
	"github.com/banshee-data/zonetrack/internal/monitoring"
	"github.com/banshee-data/zonetrack/internal/units"
)

// sessionState classifies a beacon's most recent session row against
// the current local calendar date.
type sessionState int

const (
	// stateNone: the beacon has no session rows at all.
	stateNone sessionState = iota
	// stateClosed: the most recent session already has a stop time.
	stateClosed
	// stateOpenToday: an open session dated today.
	stateOpenToday
	// stateOpenPastDay: an open session dated before today, i.e. the
	// day rolled over (or the process was down) while it was open.
	stateOpenPastDay
)

func classifySession(latest *db.Session, today string) sessionState {
	switch {
	case latest == nil:
		return stateNone
	case !latest.Open():
		return stateClosed
	case latest.Date == today:
		return stateOpenToday
	default:
		return stateOpenPastDay
	}
}

// SessionTracker maintains presence sessions for human-flagged
// beacons: at most one open session per beacon, sessions never span a
// local calendar day, and every re-entry gets a fresh row.
type SessionTracker struct {
	Engine   *Engine
	Interval time.Duration
	StopChan chan struct{}

	running atomic.Bool
}

func NewSessionTracker(e *Engine) *SessionTracker {
	return &SessionTracker{
		Engine:   e,
		Interval: e.cfg.SessionSweepInterval,
		StopChan: make(chan struct{}),
	}
}

// Start runs the sweep loop in a goroutine, skipping ticks that
// overlap a sweep still in flight.
func (t *SessionTracker) Start() {
	go func() {
		ticker := t.Engine.clock.NewTicker(t.Interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C():
				if !t.running.CompareAndSwap(false, true) {
					continue
				}
				if err := t.RunOnce(context.Background(), t.Engine.clock.Now()); err != nil {
					monitoring.Logf("session tracker sweep error: %v", err)
				}
				t.running.Store(false)
			case <-t.StopChan:
				return
			}
		}
	}()
}

// Stop requests the sweep loop to stop.
func (t *SessionTracker) Stop() {
	close(t.StopChan)
}

// RunOnce advances the session state machine for every human-flagged
// beacon. Failures are isolated per beacon; one bad row never blocks
// the rest of the sweep.
func (t *SessionTracker) RunOnce(ctx context.Context, now time.Time) error {
	e := t.Engine
	beacons, err := e.db.ListBeacons()
	if err != nil {
		return err
	}

	today := units.LocalDate(now.UnixMilli(), e.loc)
	for _, beacon := range beacons {
		info, ok := e.dir.Asset(beacon.MacAddress)
		if !ok || !info.Human {
			continue
		}

		unlock := e.locks.Lock(beacon.MacAddress)
		err := t.step(beacon, info.Name, now, today)
		unlock()
		if err != nil {
			monitoring.Logf("session tracking for %s: %v", beacon.MacAddress, err)
		}
	}
	return nil
}

func (t *SessionTracker) step(beacon db.Beacon, name string, now time.Time, today string) error {
	latest, err := t.Engine.db.LatestSession(beacon.MacAddress)
	if err != nil {
		return err
	}

	if beacon.BestZone == db.OutsideRange {
		return t.stepAbsent(beacon, name, latest, now, today)
	}
	return t.stepPresent(beacon, name, latest, now, today)
}

// stepPresent handles a beacon currently assigned to a real zone.
func (t *SessionTracker) stepPresent(beacon db.Beacon, name string, latest *db.Session, now time.Time, today string) error {
	e := t.Engine
	nowMS := now.UnixMilli()

	switch classifySession(latest, today) {
	case stateNone, stateClosed:
		// Fresh presence, or re-entry after an earlier stop: always a
		// new row, never a reopened one.
		return e.db.InsertSession(&db.Session{
			Date:       today,
			MacAddress: beacon.MacAddress,
			AssetName:  name,
			StartMS:    nowMS,
		})

	case stateOpenToday:
		latest.AssetName = name
		latest.TimeCounter = units.FormatCounterMillis(nowMS - latest.StartMS)
		return e.db.UpdateSession(latest)

	case stateOpenPastDay:
		// The day rolled over while the person stayed present: cap the
		// old session at the end of its last day and continue today in
		// a fresh row starting at midnight.
		endMS := units.EndOfPreviousDay(now, e.loc)
		latest.AssetName = name
		latest.StopMS = &endMS
		latest.TimeCounter = units.FormatCounterMillis(endMS - latest.StartMS)
		if err := e.db.UpdateSession(latest); err != nil {
			return err
		}
		return e.db.InsertSession(&db.Session{
			Date:       today,
			MacAddress: beacon.MacAddress,
			AssetName:  name,
			StartMS:    units.StartOfDay(now, e.loc),
		})
	}
	return nil
}

// stepAbsent handles a beacon currently out of range. Only an open
// session needs work: decide when it actually ended.
func (t *SessionTracker) stepAbsent(beacon db.Beacon, name string, latest *db.Session, now time.Time, today string) error {
	e := t.Engine
	state := classifySession(latest, today)
	if state == stateNone || state == stateClosed {
		return nil
	}

	nowMS := now.UnixMilli()
	lastSeenDate := units.LocalDate(beacon.LastUpdatedMS, e.loc)

	switch {
	case lastSeenDate == today:
		// Left range earlier today (typically during downtime): close
		// at the current time.
		latest.AssetName = name
		latest.StopMS = &nowMS
		latest.TimeCounter = units.FormatCounterMillis(nowMS - latest.StartMS)
		return e.db.UpdateSession(latest)

	case latest.Date == today:
		// Session already belongs to today but the beacon's last
		// reading predates the rollover: close at the current time.
		latest.AssetName = name
		latest.StopMS = &nowMS
		latest.TimeCounter = units.FormatCounterMillis(nowMS - latest.StartMS)
		return e.db.UpdateSession(latest)

	default:
		// The beacon actually disappeared on an earlier day: backdate
		// the close to its last reading and re-anchor the row's date.
		lastMS := beacon.LastUpdatedMS
		latest.Date = lastSeenDate
		latest.StopMS = &lastMS
		latest.TimeCounter = units.FormatCounterMillis(lastMS - latest.StartMS)
		return e.db.UpdateSession(latest)
	}
}
