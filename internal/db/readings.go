package db

import "fmt"

// Reading is a single RSSI sample reported by a hub for a beacon.
type Reading struct {
	MacAddress  string `json:"macAddress"`
	HubID       string `json:"hubID"`
	RSSI        int    `json:"rssi"`
	TimestampMS int64  `json:"timestamp"`
}

// InsertReading appends a sample to the history.
func (db *DB) InsertReading(r Reading) error {
	_, err := db.Exec(`
		INSERT INTO beacon_history (mac_address, hub_id, rssi, timestamp_ms)
		VALUES (?, ?, ?, ?)
	`, r.MacAddress, r.HubID, r.RSSI, r.TimestampMS)
	if err != nil {
		return fmt.Errorf("inserting reading %s/%s: %w", r.MacAddress, r.HubID, err)
	}
	return nil
}

// ReadingsSince returns the samples a hub heard from a beacon at or
// after sinceMS, oldest first.
func (db *DB) ReadingsSince(mac, hubID string, sinceMS int64) ([]Reading, error) {
	rows, err := db.Query(`
		SELECT mac_address, hub_id, rssi, timestamp_ms
		FROM beacon_history
		WHERE mac_address = ? AND hub_id = ? AND timestamp_ms >= ?
		ORDER BY timestamp_ms
	`, mac, hubID, sinceMS)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var readings []Reading
	for rows.Next() {
		var r Reading
		if err := rows.Scan(&r.MacAddress, &r.HubID, &r.RSSI, &r.TimestampMS); err != nil {
			return nil, err
		}
		readings = append(readings, r)
	}
	return readings, rows.Err()
}

// ReadingsForBeaconSince returns all samples for a beacon across every
// hub at or after sinceMS, oldest first.
func (db *DB) ReadingsForBeaconSince(mac string, sinceMS int64) ([]Reading, error) {
	rows, err := db.Query(`
		SELECT mac_address, hub_id, rssi, timestamp_ms
		FROM beacon_history
		WHERE mac_address = ? AND timestamp_ms >= ?
		ORDER BY timestamp_ms
	`, mac, sinceMS)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var readings []Reading
	for rows.Next() {
		var r Reading
		if err := rows.Scan(&r.MacAddress, &r.HubID, &r.RSSI, &r.TimestampMS); err != nil {
			return nil, err
		}
		readings = append(readings, r)
	}
	return readings, rows.Err()
}

// ZoneRSSI is the latest sample a beacon produced in a given zone,
// joined with its current assignment for the live RSSI view.
type ZoneRSSI struct {
	MacAddress  string `json:"macAddress"`
	AssetName   string `json:"assetName"`
	Zone        string `json:"zone"`
	RSSI        int    `json:"rssi"`
	TimestampMS int64  `json:"timestamp"`
	BestZone    string `json:"bestZone"`
}

// LatestRSSIByZone returns, for every beacon/zone pair with history,
// the most recent sample heard in that zone.
func (db *DB) LatestRSSIByZone() ([]ZoneRSSI, error) {
	rows, err := db.Query(`
		SELECT bh.mac_address, COALESCE(b.asset_name, ''), h.zone,
		       bh.rssi, MAX(bh.timestamp_ms), COALESCE(b.best_zone, ?)
		FROM beacon_history bh
		JOIN hubs h ON h.id = bh.hub_id
		LEFT JOIN beacons b ON b.mac_address = bh.mac_address
		GROUP BY bh.mac_address, h.zone
		ORDER BY bh.mac_address, h.zone
	`, OutsideRange)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ZoneRSSI
	for rows.Next() {
		var z ZoneRSSI
		if err := rows.Scan(&z.MacAddress, &z.AssetName, &z.Zone, &z.RSSI, &z.TimestampMS, &z.BestZone); err != nil {
			return nil, err
		}
		out = append(out, z)
	}
	return out, rows.Err()
}

// PruneReadings deletes everything but the newest keep samples.
// Returns the number of rows removed.
func (db *DB) PruneReadings(keep int) (int64, error) {
	res, err := db.Exec(`
		DELETE FROM beacon_history
		WHERE id NOT IN (
			SELECT id FROM beacon_history
			ORDER BY timestamp_ms DESC, id DESC
			LIMIT ?
		)
	`, keep)
	if err != nil {
		return 0, fmt.Errorf("pruning readings: %w", err)
	}
	return res.RowsAffected()
}

// CountReadings returns the total number of stored samples.
func (db *DB) CountReadings() (int, error) {
	var n int
	err := db.QueryRow(`SELECT COUNT(*) FROM beacon_history`).Scan(&n)
	return n, err
}

// LastHeard is the newest in-zone sample time for a beacon that is
// currently assigned to a real zone. TimestampMS is nil when the
// beacon has no history in its assigned zone at all.
type LastHeard struct {
	MacAddress  string
	BestZone    string
	TimestampMS *int64
}

// AssignedLastHeard returns, for every beacon assigned to a real zone,
// the most recent sample heard by any hub of that zone.
func (db *DB) AssignedLastHeard() ([]LastHeard, error) {
	rows, err := db.Query(`
		SELECT b.mac_address, b.best_zone, MAX(bh.timestamp_ms)
		FROM beacons b
		LEFT JOIN hubs h ON h.zone = b.best_zone
		LEFT JOIN beacon_history bh
			ON bh.mac_address = b.mac_address AND bh.hub_id = h.id
		WHERE b.best_zone != ?
		GROUP BY b.mac_address
	`, OutsideRange)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []LastHeard
	for rows.Next() {
		var lh LastHeard
		if err := rows.Scan(&lh.MacAddress, &lh.BestZone, &lh.TimestampMS); err != nil {
			return nil, err
		}
		out = append(out, lh)
	}
	return out, rows.Err()
}
