package rtls

import (
	"fmt"
	"time"
)

// HubScore computes the weighted average RSSI for a (beacon, hub) pair
// over the lookback window. Real samples contribute rssi*weight; the
// shortfall up to the expected sample count is synthesized at the
// nominal cadence after the last real sample, reading through the
// cache so sustained silence decays to the degraded floor. The divisor
// is always the expected count, so sparse history drags the score down.
func (e *Engine) HubScore(mac, hubID string, now time.Time) (float64, error) {
	weight := e.dir.WeightOf(hubID)
	since := now.UnixMilli() - e.cfg.Lookback.Milliseconds()

	readings, err := e.db.ReadingsSince(mac, hubID, since)
	if err != nil {
		return 0, fmt.Errorf("fetching history for %s at %s: %w", mac, hubID, err)
	}

	var sum float64
	var lastMS int64
	for _, r := range readings {
		sum += float64(r.RSSI) * weight
		e.cache.Put(mac, hubID, r.RSSI, r.TimestampMS)
		if r.TimestampMS > lastMS {
			lastMS = r.TimestampMS
		}
	}

	cadenceMS := e.cfg.SyntheticInterval.Milliseconds()
	missing := e.cfg.ExpectedSamples - len(readings)
	for i := 0; i < missing; i++ {
		assumedMS := lastMS + int64(i+1)*cadenceMS
		sum += float64(e.cache.Get(mac, hubID, assumedMS)) * weight
	}

	return sum / float64(e.cfg.ExpectedSamples), nil
}

// ZoneScore combines the hub scores of a zone. Weights apply inside
// each hub's score; across hubs the combination divides by the hub
// count, not the total weight. That asymmetry is load-bearing for
// tie-breaking in mixed topologies and must stay as is.
func (e *Engine) ZoneScore(mac, zone string, now time.Time) (float64, error) {
	hubs := e.dir.HubsInZone(zone)
	if len(hubs) == 0 {
		return 0, fmt.Errorf("zone %q has no hubs", zone)
	}

	var total float64
	for _, hubID := range hubs {
		score, err := e.HubScore(mac, hubID, now)
		if err != nil {
			return 0, err
		}
		total += score
	}
	return total / float64(len(hubs)), nil
}
