package db

import "fmt"

// Hub is a fixed receiver reporting RSSI readings. Its zone groups it
// with the other receivers covering the same physical area.
type Hub struct {
	ID        string   `json:"hubID"`
	Zone      string   `json:"zone"`
	Weight    float64  `json:"weight"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
	CreatedAt int64    `json:"createdAt"`
	UpdatedAt int64    `json:"updatedAt"`
}

// UpsertHub registers a hub or moves an existing one to a new zone.
func (db *DB) UpsertHub(h *Hub, nowMS int64) error {
	if h.ID == "" {
		return fmt.Errorf("hub with empty id")
	}
	if h.Zone == "" || h.Zone == OutsideRange {
		return fmt.Errorf("invalid zone %q for hub %s", h.Zone, h.ID)
	}
	if h.Weight <= 0 {
		h.Weight = 1.0
	}
	_, err := db.Exec(`
		INSERT INTO hubs (id, zone, weight, latitude, longitude, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			zone       = excluded.zone,
			weight     = excluded.weight,
			latitude   = excluded.latitude,
			longitude  = excluded.longitude,
			updated_at = excluded.updated_at
	`, h.ID, h.Zone, h.Weight, h.Latitude, h.Longitude, nowMS, nowMS)
	if err != nil {
		return fmt.Errorf("upserting hub %s: %w", h.ID, err)
	}
	return nil
}

// DeleteHub removes a hub and demotes beacons whose zone no longer has
// any receivers. Returns whether the hub existed and how many beacons
// were moved out of range.
func (db *DB) DeleteHub(id string) (bool, int64, error) {
	tx, err := db.Begin()
	if err != nil {
		return false, 0, err
	}
	defer tx.Rollback()

	res, err := tx.Exec(`DELETE FROM hubs WHERE id = ?`, id)
	if err != nil {
		return false, 0, fmt.Errorf("deleting hub %s: %w", id, err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return false, 0, nil
	}

	res, err = tx.Exec(`
		UPDATE beacons SET best_zone = ?
		WHERE best_zone != ?
		  AND best_zone NOT IN (SELECT DISTINCT zone FROM hubs)
	`, OutsideRange, OutsideRange)
	if err != nil {
		return false, 0, fmt.Errorf("demoting beacons after hub delete: %w", err)
	}
	demoted, _ := res.RowsAffected()

	if err := tx.Commit(); err != nil {
		return false, 0, err
	}
	return true, demoted, nil
}

// ListHubs returns all hubs ordered by zone then id.
func (db *DB) ListHubs() ([]Hub, error) {
	rows, err := db.Query(`
		SELECT id, zone, weight, latitude, longitude, created_at, updated_at
		FROM hubs
		ORDER BY zone, id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var hubs []Hub
	for rows.Next() {
		var h Hub
		if err := rows.Scan(&h.ID, &h.Zone, &h.Weight, &h.Latitude, &h.Longitude, &h.CreatedAt, &h.UpdatedAt); err != nil {
			return nil, err
		}
		hubs = append(hubs, h)
	}
	return hubs, rows.Err()
}

// ZoneCounts returns the number of beacons currently assigned to each
// zone, including the out-of-range sentinel when occupied.
func (db *DB) ZoneCounts() (map[string]int, error) {
	rows, err := db.Query(`
		SELECT best_zone, COUNT(*)
		FROM beacons
		GROUP BY best_zone
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var zone string
		var n int
		if err := rows.Scan(&zone, &n); err != nil {
			return nil, err
		}
		counts[zone] = n
	}
	return counts, rows.Err()
}
