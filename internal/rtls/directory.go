package rtls

import (
	"sync"

	"github.com/banshee-data/zonetrack/internal/db"
)

// AssetInfo is the roster entry for a registered beacon.
type AssetInfo struct {
	Name  string
	Human bool
}

// Directory is an in-memory snapshot of the hub-to-zone mapping, hub
// weights and the registered-asset roster. It is replaced wholesale by
// the syncer and read concurrently by the ingest path and the sweeps.
type Directory struct {
	mu       sync.RWMutex
	zones    map[string]string
	weights  map[string]float64
	zoneHubs map[string][]string
	assets   map[string]AssetInfo
}

func NewDirectory() *Directory {
	return &Directory{
		zones:    make(map[string]string),
		weights:  make(map[string]float64),
		zoneHubs: make(map[string][]string),
		assets:   make(map[string]AssetInfo),
	}
}

// ReplaceHubs swaps in a fresh hub snapshot.
func (d *Directory) ReplaceHubs(hubs []db.Hub) {
	zones := make(map[string]string, len(hubs))
	weights := make(map[string]float64, len(hubs))
	zoneHubs := make(map[string][]string)
	for _, h := range hubs {
		zones[h.ID] = h.Zone
		weights[h.ID] = h.Weight
		zoneHubs[h.Zone] = append(zoneHubs[h.Zone], h.ID)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.zones = zones
	d.weights = weights
	d.zoneHubs = zoneHubs
}

// ReplaceAssets swaps in a fresh roster snapshot.
func (d *Directory) ReplaceAssets(assets []db.Asset) {
	roster := make(map[string]AssetInfo, len(assets))
	for _, a := range assets {
		roster[a.MacAddress] = AssetInfo{Name: a.AssetName, Human: a.HumanFlag}
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.assets = roster
}

// ZoneOf resolves a hub to its zone.
func (d *Directory) ZoneOf(hubID string) (string, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	zone, ok := d.zones[hubID]
	return zone, ok
}

// WeightOf returns the hub's score weight, 1.0 for unknown hubs.
func (d *Directory) WeightOf(hubID string) float64 {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if w, ok := d.weights[hubID]; ok {
		return w
	}
	return 1.0
}

// HubsInZone returns the ids of the hubs composing a zone.
func (d *Directory) HubsInZone(zone string) []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	hubs := d.zoneHubs[zone]
	out := make([]string, len(hubs))
	copy(out, hubs)
	return out
}

// Asset looks up a registered beacon.
func (d *Directory) Asset(mac string) (AssetInfo, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	info, ok := d.assets[mac]
	return info, ok
}
