package rtls

import (
	"sync"
	"time"
)

type pairKey struct {
	mac string
	hub string
}

type cachedReading struct {
	rssi int
	tsMS int64
}

// Cache keeps the most recent RSSI sample per (beacon, hub) pair.
// Reads older than the hold time degrade to the configured floor,
// which is how silence turns into a weak-signal assumption.
type Cache struct {
	mu       sync.Mutex
	holdMS   int64
	degraded int
	entries  map[pairKey]cachedReading
}

func NewCache(hold time.Duration, degradedRSSI int) *Cache {
	return &Cache{
		holdMS:   hold.Milliseconds(),
		degraded: degradedRSSI,
		entries:  make(map[pairKey]cachedReading),
	}
}

// Put records the latest observation for the pair, last write wins.
func (c *Cache) Put(mac, hubID string, rssi int, tsMS int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[pairKey{mac, hubID}] = cachedReading{rssi: rssi, tsMS: tsMS}
}

// Get returns the cached RSSI as of the given instant, or the degraded
// floor when the pair was never seen or its sample is older than the
// hold time.
func (c *Cache) Get(mac, hubID string, asOfMS int64) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[pairKey{mac, hubID}]
	if !ok {
		return c.degraded
	}
	if asOfMS-entry.tsMS <= c.holdMS {
		return entry.rssi
	}
	return c.degraded
}

// Sweep drops entries idle for longer than maxIdle and returns how
// many were evicted. Keeps the map bounded when beacons disappear
// for good.
func (c *Cache) Sweep(asOfMS int64, maxIdle time.Duration) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	maxIdleMS := maxIdle.Milliseconds()
	evicted := 0
	for key, entry := range c.entries {
		if asOfMS-entry.tsMS > maxIdleMS {
			delete(c.entries, key)
			evicted++
		}
	}
	return evicted
}

// Len returns the number of live entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
