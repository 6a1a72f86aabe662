package db

import "fmt"

// Beacon is the live state of a tracked tag: its current zone
// assignment and the time of the last reading heard from it.
type Beacon struct {
	MacAddress    string `json:"macAddress"`
	AssetName     string `json:"assetName"`
	BestZone      string `json:"bestZone"`
	LastUpdatedMS int64  `json:"lastUpdated"`
}

// GetBeacon returns the live state for mac, or nil when unknown.
func (db *DB) GetBeacon(mac string) (*Beacon, error) {
	var b Beacon
	err := db.QueryRow(`
		SELECT mac_address, asset_name, best_zone, last_updated_ms
		FROM beacons
		WHERE mac_address = ?
	`, mac).Scan(&b.MacAddress, &b.AssetName, &b.BestZone, &b.LastUpdatedMS)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, err
	}
	return &b, nil
}

// ListBeacons returns the live state of all beacons ordered by mac.
func (db *DB) ListBeacons() ([]Beacon, error) {
	rows, err := db.Query(`
		SELECT mac_address, asset_name, best_zone, last_updated_ms
		FROM beacons
		ORDER BY mac_address
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var beacons []Beacon
	for rows.Next() {
		var b Beacon
		if err := rows.Scan(&b.MacAddress, &b.AssetName, &b.BestZone, &b.LastUpdatedMS); err != nil {
			return nil, err
		}
		beacons = append(beacons, b)
	}
	return beacons, rows.Err()
}

// UpsertBeacon records a fresh zone assignment and last-heard time.
func (db *DB) UpsertBeacon(mac, assetName, zone string, nowMS int64) error {
	_, err := db.Exec(`
		INSERT INTO beacons (mac_address, asset_name, best_zone, last_updated_ms)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(mac_address) DO UPDATE SET
			asset_name      = excluded.asset_name,
			best_zone       = excluded.best_zone,
			last_updated_ms = excluded.last_updated_ms
	`, mac, assetName, zone, nowMS)
	if err != nil {
		return fmt.Errorf("upserting beacon %s: %w", mac, err)
	}
	return nil
}

// TouchBeacon refreshes last_updated_ms without changing the zone.
func (db *DB) TouchBeacon(mac string, nowMS int64) error {
	_, err := db.Exec(`
		UPDATE beacons SET last_updated_ms = ? WHERE mac_address = ?
	`, nowMS, mac)
	return err
}

// SetBeaconZone changes only the zone assignment.
func (db *DB) SetBeaconZone(mac, zone string) error {
	_, err := db.Exec(`
		UPDATE beacons SET best_zone = ? WHERE mac_address = ?
	`, zone, mac)
	return err
}
