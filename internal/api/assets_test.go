package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/banshee-data/zonetrack/internal/db"
	"github.com/banshee-data/zonetrack/internal/testutil"
)

func TestListAssetsGroupedByZone(t *testing.T) {
	s, database, _ := newTestServer(t)
	seed(t, s,
		[]db.Hub{{ID: "hub-1", Zone: "Warehouse"}},
		[]db.Asset{
			{MacAddress: "AA", AssetName: "Alice", HumanFlag: true},
			{MacAddress: "BB", AssetName: "Pallet"},
		})
	require.NoError(t, database.UpsertBeacon("AA", "Alice", "Warehouse", t0.UnixMilli()))

	rec := serve(s, testutil.NewTestRequest(http.MethodGet, "/api/assets"))
	testutil.AssertStatusCode(t, rec.Code, http.StatusOK)

	var resp map[string][]assetView
	decodeJSON(t, rec, &resp)

	require.Len(t, resp["Warehouse"], 1)
	require.Equal(t, "Alice", resp["Warehouse"][0].AssetName)
	require.True(t, resp["Warehouse"][0].HumanFlag)

	require.Len(t, resp[db.OutsideRange], 1)
	require.Equal(t, "BB", resp[db.OutsideRange][0].MacAddress)
	require.False(t, resp[db.OutsideRange][0].HumanFlag)
}

func TestRegisterAssets(t *testing.T) {
	s, database, _ := newTestServer(t)

	rec := serve(s, testutil.NewJSONRequest(http.MethodPost, "/api/assets",
		`[{"macAddress":"AA","assetName":"Alice","humanFlag":true}]`))
	testutil.AssertStatusCode(t, rec.Code, http.StatusOK)

	asset, err := database.GetAsset("AA")
	require.NoError(t, err)
	require.NotNil(t, asset)
	require.True(t, asset.HumanFlag)

	// Registration parks the beacon outside range until a hub hears it.
	beacon, err := database.GetBeacon("AA")
	require.NoError(t, err)
	require.Equal(t, db.OutsideRange, beacon.BestZone)
}

func TestRegisterAssetsRejectsBadBody(t *testing.T) {
	s, _, _ := newTestServer(t)

	rec := serve(s, testutil.NewJSONRequest(http.MethodPost, "/api/assets", `{"macAddress":"AA"}`))
	testutil.AssertStatusCode(t, rec.Code, http.StatusBadRequest)
}

func TestRemoveAssets(t *testing.T) {
	s, database, _ := newTestServer(t)
	seed(t, s, nil, []db.Asset{
		{MacAddress: "AA", AssetName: "Alice", HumanFlag: true},
		{MacAddress: "BB", AssetName: "Pallet"},
	})

	rec := serve(s, testutil.NewJSONRequest(http.MethodDelete, "/api/assets",
		`{"macAddresses":["AA"]}`))
	testutil.AssertStatusCode(t, rec.Code, http.StatusOK)

	var resp struct {
		Deleted int64 `json:"deleted"`
	}
	decodeJSON(t, rec, &resp)
	require.Equal(t, int64(1), resp.Deleted)

	asset, err := database.GetAsset("AA")
	require.NoError(t, err)
	require.Nil(t, asset)

	rec = serve(s, testutil.NewJSONRequest(http.MethodDelete, "/api/assets", `{}`))
	testutil.AssertStatusCode(t, rec.Code, http.StatusBadRequest)

	rec = serve(s, testutil.NewTestRequest(http.MethodPatch, "/api/assets"))
	testutil.AssertStatusCode(t, rec.Code, http.StatusMethodNotAllowed)
}
