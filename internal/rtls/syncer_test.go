package rtls

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/banshee-data/zonetrack/internal/db"
)

func TestDirectorySyncerLoadsSnapshots(t *testing.T) {
	e, database, _ := newTestEngine(t)
	syncer := NewDirectorySyncer(e)

	require.NoError(t, database.UpsertHub(&db.Hub{ID: "hub-1", Zone: "Warehouse", Weight: 2.0}, t0.UnixMilli()))
	require.NoError(t, database.UpsertAssets([]db.Asset{
		{MacAddress: "AA", AssetName: "Alice", HumanFlag: true},
	}))

	require.NoError(t, syncer.RunOnce(context.Background()))

	zone, ok := e.dir.ZoneOf("hub-1")
	require.True(t, ok)
	require.Equal(t, "Warehouse", zone)
	require.Equal(t, 2.0, e.dir.WeightOf("hub-1"))

	info, ok := e.dir.Asset("AA")
	require.True(t, ok)
	require.True(t, info.Human)

	// A hub removed from the table disappears on the next refresh.
	_, _, err := database.DeleteHub("hub-1")
	require.NoError(t, err)
	require.NoError(t, syncer.RunOnce(context.Background()))
	_, ok = e.dir.ZoneOf("hub-1")
	require.False(t, ok)
}

func TestHistoryPrunerKeepsNewest(t *testing.T) {
	e, database, _ := newTestEngine(t)
	e.cfg.PruneKeep = 4
	pruner := NewHistoryPruner(e)

	for i := 0; i < 10; i++ {
		require.NoError(t, database.InsertReading(db.Reading{
			MacAddress: "AA", HubID: "hub-1", RSSI: -60, TimestampMS: int64(i * 1000),
		}))
	}

	require.NoError(t, pruner.RunOnce(context.Background()))

	n, err := database.CountReadings()
	require.NoError(t, err)
	require.Equal(t, 4, n)
}
