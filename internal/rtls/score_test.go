package rtls

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/banshee-data/zonetrack/internal/db"
)

// insertCadence writes n samples at a 3 s cadence ending just before now.
func insertCadence(t *testing.T, database *db.DB, mac, hubID string, rssi, n int, now time.Time) {
	t.Helper()
	for i := 0; i < n; i++ {
		ts := now.Add(-time.Duration(n-i) * 3 * time.Second)
		require.NoError(t, database.InsertReading(db.Reading{
			MacAddress: mac, HubID: hubID, RSSI: rssi, TimestampMS: ts.UnixMilli(),
		}))
	}
}

func TestHubScoreFullWindow(t *testing.T) {
	e, database, _ := newTestEngine(t)
	seed(t, e, database,
		[]db.Hub{{ID: "hub-1", Zone: "Z1", Weight: 1.0}},
		[]db.Asset{{MacAddress: "AA", AssetName: "Alice"}})

	insertCadence(t, database, "AA", "hub-1", -60, 20, t0)

	score, err := e.HubScore("AA", "hub-1", t0)
	require.NoError(t, err)
	require.InDelta(t, -60.0, score, 1e-9)
}

func TestHubScoreEmptyHistoryAndCache(t *testing.T) {
	e, database, _ := newTestEngine(t)
	seed(t, e, database,
		[]db.Hub{{ID: "hub-1", Zone: "Z1", Weight: 1.0}},
		[]db.Asset{{MacAddress: "AA", AssetName: "Alice"}})

	// Nothing heard, nothing cached: every slot degrades to the floor.
	score, err := e.HubScore("AA", "hub-1", t0)
	require.NoError(t, err)
	require.InDelta(t, -85.0, score, 1e-9)
}

func TestHubScoreSyntheticDecay(t *testing.T) {
	e, database, _ := newTestEngine(t)
	seed(t, e, database,
		[]db.Hub{{ID: "hub-1", Zone: "Z1", Weight: 1.0}},
		[]db.Asset{{MacAddress: "AA", AssetName: "Alice"}})

	// One real sample; the 19 synthetic slots run at 3 s intervals
	// after it, so 5 fall inside the 15 s hold (cached value) and 14
	// degrade to the floor.
	require.NoError(t, database.InsertReading(db.Reading{
		MacAddress: "AA", HubID: "hub-1", RSSI: -60, TimestampMS: t0.UnixMilli(),
	}))

	score, err := e.HubScore("AA", "hub-1", t0)
	require.NoError(t, err)

	want := (-60.0 + 5*-60.0 + 14*-85.0) / 20.0
	require.InDelta(t, want, score, 1e-9)
}

func TestHubScoreAppliesWeight(t *testing.T) {
	e, database, _ := newTestEngine(t)
	seed(t, e, database,
		[]db.Hub{{ID: "hub-1", Zone: "Z1", Weight: 2.0}},
		[]db.Asset{{MacAddress: "AA", AssetName: "Alice"}})

	insertCadence(t, database, "AA", "hub-1", -60, 20, t0)

	score, err := e.HubScore("AA", "hub-1", t0)
	require.NoError(t, err)
	require.InDelta(t, -120.0, score, 1e-9)
}

// Weights scale inside a hub's score; across hubs the zone divides by
// the hub count, not the weight total.
func TestZoneScoreCountNormalization(t *testing.T) {
	e, database, _ := newTestEngine(t)
	seed(t, e, database,
		[]db.Hub{
			{ID: "hub-1", Zone: "Z1", Weight: 1.0},
			{ID: "hub-2", Zone: "Z1", Weight: 1.0},
		},
		[]db.Asset{{MacAddress: "AA", AssetName: "Alice"}})

	// hub-1 hears the beacon at full cadence, hub-2 hears nothing.
	insertCadence(t, database, "AA", "hub-1", -60, 20, t0)

	score, err := e.ZoneScore("AA", "Z1", t0)
	require.NoError(t, err)
	require.InDelta(t, (-60.0+-85.0)/2.0, score, 1e-9)
}

func TestZoneScoreNoHubs(t *testing.T) {
	e, database, _ := newTestEngine(t)
	seed(t, e, database, nil, []db.Asset{{MacAddress: "AA", AssetName: "Alice"}})

	_, err := e.ZoneScore("AA", "Ghost", t0)
	require.Error(t, err)
}

func TestScoreDeterministic(t *testing.T) {
	e, database, _ := newTestEngine(t)
	seed(t, e, database,
		[]db.Hub{{ID: "hub-1", Zone: "Z1", Weight: 1.5}},
		[]db.Asset{{MacAddress: "AA", AssetName: "Alice"}})

	insertCadence(t, database, "AA", "hub-1", -64, 7, t0)

	first, err := e.ZoneScore("AA", "Z1", t0)
	require.NoError(t, err)
	second, err := e.ZoneScore("AA", "Z1", t0)
	require.NoError(t, err)
	require.Equal(t, first, second)
}
