package rtls

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/banshee-data/zonetrack/internal/db"
)

// trackerFixture registers one human beacon (and one non-human) in a
// single-hub zone and returns the tracker ready to sweep.
func trackerFixture(t *testing.T) (*SessionTracker, *Engine, *db.DB) {
	t.Helper()

	e, database, _ := newTestEngine(t)
	seed(t, e, database,
		[]db.Hub{{ID: "hub-1", Zone: "Warehouse", Weight: 1.0}},
		[]db.Asset{
			{MacAddress: "AA", AssetName: "Alice", HumanFlag: true},
			{MacAddress: "PP", AssetName: "Pallet", HumanFlag: false},
		})
	return NewSessionTracker(e), e, database
}

func TestTrackerOpensSessionOnPresence(t *testing.T) {
	tracker, e, database := trackerFixture(t)

	now := time.Date(2025, 6, 10, 14, 0, 0, 0, e.Location())
	require.NoError(t, database.UpsertBeacon("AA", "Alice", "Warehouse", now.UnixMilli()))

	require.NoError(t, tracker.RunOnce(context.Background(), now))

	s, err := database.LatestSession("AA")
	require.NoError(t, err)
	require.NotNil(t, s)
	require.True(t, s.Open())
	require.Equal(t, "10.06.2025", s.Date)
	require.Equal(t, now.UnixMilli(), s.StartMS)
	require.Equal(t, "00:00:00", s.TimeCounter)
}

func TestTrackerRefreshesOpenSession(t *testing.T) {
	tracker, e, database := trackerFixture(t)

	start := time.Date(2025, 6, 10, 14, 0, 0, 0, e.Location())
	require.NoError(t, database.UpsertBeacon("AA", "Alice", "Warehouse", start.UnixMilli()))
	require.NoError(t, tracker.RunOnce(context.Background(), start))

	now := start.Add(90 * time.Minute)
	require.NoError(t, database.TouchBeacon("AA", now.UnixMilli()))
	require.NoError(t, tracker.RunOnce(context.Background(), now))

	s, err := database.LatestSession("AA")
	require.NoError(t, err)
	require.True(t, s.Open())
	require.Equal(t, "01:30:00", s.TimeCounter)

	n, err := database.CountOpenSessions("AA")
	require.NoError(t, err)
	require.Equal(t, 1, n)
}

// A person present across midnight gets exactly two rows: one capped
// at 23:59:59.999 of the first day, one starting at 00:00 of the next.
func TestTrackerSplitsSessionAtMidnight(t *testing.T) {
	tracker, e, database := trackerFixture(t)
	loc := e.Location()

	start := time.Date(2025, 6, 9, 23, 0, 0, 0, loc)
	require.NoError(t, database.InsertSession(&db.Session{
		Date: "09.06.2025", MacAddress: "AA", AssetName: "Alice", StartMS: start.UnixMilli(),
	}))

	now := time.Date(2025, 6, 10, 0, 30, 0, 0, loc)
	require.NoError(t, database.UpsertBeacon("AA", "Alice", "Warehouse", now.UnixMilli()))
	require.NoError(t, tracker.RunOnce(context.Background(), now))

	sessions, err := database.SessionsSince(0)
	require.NoError(t, err)
	require.Len(t, sessions, 2)

	endOfDay9 := time.Date(2025, 6, 10, 0, 0, 0, 0, loc).UnixMilli() - 1
	closed, open := sessions[0], sessions[1]
	require.Equal(t, "09.06.2025", closed.Date)
	require.False(t, closed.Open())
	require.Equal(t, endOfDay9, *closed.StopMS)
	require.Equal(t, "00:59:59", closed.TimeCounter)

	require.Equal(t, "10.06.2025", open.Date)
	require.True(t, open.Open())
	require.Equal(t, time.Date(2025, 6, 10, 0, 0, 0, 0, loc).UnixMilli(), open.StartMS)
}

// Re-entry on the same day creates a brand new row, never reopens the
// stopped one.
func TestTrackerReentrySameDayNewRow(t *testing.T) {
	tracker, e, database := trackerFixture(t)
	loc := e.Location()

	morning := time.Date(2025, 6, 10, 8, 0, 0, 0, loc)
	stop := morning.Add(4 * time.Hour).UnixMilli()
	require.NoError(t, database.InsertSession(&db.Session{
		Date: "10.06.2025", MacAddress: "AA", AssetName: "Alice",
		StartMS: morning.UnixMilli(), StopMS: &stop, TimeCounter: "04:00:00",
	}))

	now := time.Date(2025, 6, 10, 14, 0, 0, 0, loc)
	require.NoError(t, database.UpsertBeacon("AA", "Alice", "Warehouse", now.UnixMilli()))
	require.NoError(t, tracker.RunOnce(context.Background(), now))

	sessions, err := database.SessionsSince(0)
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	require.Equal(t, "04:00:00", sessions[0].TimeCounter, "closed morning row must stay untouched")
	require.True(t, sessions[1].Open())
	require.Equal(t, now.UnixMilli(), sessions[1].StartMS)

	n, err := database.CountOpenSessions("AA")
	require.NoError(t, err)
	require.Equal(t, 1, n)
}

// Out of range with the last reading earlier the same day: close at
// the current time (the process-was-down catch-up case).
func TestTrackerClosesAfterDowntimeSameDay(t *testing.T) {
	tracker, e, database := trackerFixture(t)
	loc := e.Location()

	start := time.Date(2025, 6, 10, 8, 0, 0, 0, loc)
	require.NoError(t, database.InsertSession(&db.Session{
		Date: "10.06.2025", MacAddress: "AA", AssetName: "Alice", StartMS: start.UnixMilli(),
	}))

	lastSeen := time.Date(2025, 6, 10, 11, 0, 0, 0, loc)
	require.NoError(t, database.UpsertBeacon("AA", "Alice", db.OutsideRange, lastSeen.UnixMilli()))

	now := time.Date(2025, 6, 10, 12, 0, 0, 0, loc)
	require.NoError(t, tracker.RunOnce(context.Background(), now))

	s, err := database.LatestSession("AA")
	require.NoError(t, err)
	require.False(t, s.Open())
	require.Equal(t, now.UnixMilli(), *s.StopMS)
	require.Equal(t, "04:00:00", s.TimeCounter)
}

// Out of range, the session still belongs to today but the beacon's
// last reading predates the rollover: close at the current time.
func TestTrackerClosesRolledOverSessionAtNow(t *testing.T) {
	tracker, e, database := trackerFixture(t)
	loc := e.Location()

	start := time.Date(2025, 6, 10, 0, 10, 0, 0, loc)
	require.NoError(t, database.InsertSession(&db.Session{
		Date: "10.06.2025", MacAddress: "AA", AssetName: "Alice", StartMS: start.UnixMilli(),
	}))

	lastSeen := time.Date(2025, 6, 9, 23, 50, 0, 0, loc)
	require.NoError(t, database.UpsertBeacon("AA", "Alice", db.OutsideRange, lastSeen.UnixMilli()))

	now := time.Date(2025, 6, 10, 0, 20, 0, 0, loc)
	require.NoError(t, tracker.RunOnce(context.Background(), now))

	s, err := database.LatestSession("AA")
	require.NoError(t, err)
	require.False(t, s.Open())
	require.Equal(t, "10.06.2025", s.Date)
	require.Equal(t, now.UnixMilli(), *s.StopMS)
}

// Out of range and last seen on a previous day: backdate the close to
// the last reading and re-anchor the row to that date.
func TestTrackerBackdatesStaleSession(t *testing.T) {
	tracker, e, database := trackerFixture(t)
	loc := e.Location()

	start := time.Date(2025, 6, 8, 9, 0, 0, 0, loc)
	require.NoError(t, database.InsertSession(&db.Session{
		Date: "08.06.2025", MacAddress: "AA", AssetName: "Alice", StartMS: start.UnixMilli(),
	}))

	lastSeen := time.Date(2025, 6, 8, 17, 0, 0, 0, loc)
	require.NoError(t, database.UpsertBeacon("AA", "Alice", db.OutsideRange, lastSeen.UnixMilli()))

	now := time.Date(2025, 6, 10, 12, 0, 0, 0, loc)
	require.NoError(t, tracker.RunOnce(context.Background(), now))

	s, err := database.LatestSession("AA")
	require.NoError(t, err)
	require.False(t, s.Open())
	require.Equal(t, "08.06.2025", s.Date)
	require.Equal(t, lastSeen.UnixMilli(), *s.StopMS)
	require.Equal(t, "08:00:00", s.TimeCounter)
}

func TestTrackerIgnoresAbsentWithoutOpenSession(t *testing.T) {
	tracker, e, database := trackerFixture(t)
	loc := e.Location()

	now := time.Date(2025, 6, 10, 12, 0, 0, 0, loc)
	require.NoError(t, database.UpsertBeacon("AA", "Alice", db.OutsideRange, now.UnixMilli()))
	require.NoError(t, tracker.RunOnce(context.Background(), now))

	s, err := database.LatestSession("AA")
	require.NoError(t, err)
	require.Nil(t, s)
}

func TestTrackerSkipsNonHumanBeacons(t *testing.T) {
	tracker, e, database := trackerFixture(t)
	loc := e.Location()

	now := time.Date(2025, 6, 10, 12, 0, 0, 0, loc)
	require.NoError(t, database.UpsertBeacon("PP", "Pallet", "Warehouse", now.UnixMilli()))
	require.NoError(t, tracker.RunOnce(context.Background(), now))

	s, err := database.LatestSession("PP")
	require.NoError(t, err)
	require.Nil(t, s)
}

// Sweeping repeatedly in any state never yields a second open session.
func TestTrackerSingleOpenSessionInvariant(t *testing.T) {
	tracker, e, database := trackerFixture(t)
	loc := e.Location()

	now := time.Date(2025, 6, 10, 9, 0, 0, 0, loc)
	require.NoError(t, database.UpsertBeacon("AA", "Alice", "Warehouse", now.UnixMilli()))

	for i := 0; i < 5; i++ {
		require.NoError(t, tracker.RunOnce(context.Background(), now))
		now = now.Add(5 * time.Second)
		require.NoError(t, database.TouchBeacon("AA", now.UnixMilli()))
	}

	// Leave, sweep twice, come back, sweep twice more.
	require.NoError(t, database.SetBeaconZone("AA", db.OutsideRange))
	require.NoError(t, tracker.RunOnce(context.Background(), now))
	require.NoError(t, tracker.RunOnce(context.Background(), now.Add(5*time.Second)))

	require.NoError(t, database.SetBeaconZone("AA", "Warehouse"))
	require.NoError(t, database.TouchBeacon("AA", now.Add(10*time.Second).UnixMilli()))
	require.NoError(t, tracker.RunOnce(context.Background(), now.Add(10*time.Second)))
	require.NoError(t, tracker.RunOnce(context.Background(), now.Add(15*time.Second)))

	n, err := database.CountOpenSessions("AA")
	require.NoError(t, err)
	require.Equal(t, 1, n)

	sessions, err := database.SessionsSince(0)
	require.NoError(t, err)
	require.Len(t, sessions, 2, "leave/re-enter must produce exactly two rows")
}
