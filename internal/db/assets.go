package db

import "fmt"

// Asset is a registered tag that the engine will accept readings for.
// HumanFlag marks tags worn by people, which also get presence sessions.
type Asset struct {
	MacAddress string `json:"macAddress"`
	AssetName  string `json:"assetName"`
	HumanFlag  bool   `json:"humanFlag"`
}

// UpsertAssets registers new assets or renames existing ones. Every
// upserted asset also gets a beacon row so it shows up in the live view
// immediately, parked in the out-of-range zone until readings arrive.
func (db *DB) UpsertAssets(assets []Asset) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, a := range assets {
		if a.MacAddress == "" {
			return fmt.Errorf("asset with empty mac address")
		}
		_, err := tx.Exec(`
			INSERT INTO assets (mac_address, asset_name, human_flag)
			VALUES (?, ?, ?)
			ON CONFLICT(mac_address) DO UPDATE SET
				asset_name = excluded.asset_name,
				human_flag = excluded.human_flag
		`, a.MacAddress, a.AssetName, a.HumanFlag)
		if err != nil {
			return fmt.Errorf("upserting asset %s: %w", a.MacAddress, err)
		}

		_, err = tx.Exec(`
			INSERT INTO beacons (mac_address, asset_name, best_zone, last_updated_ms)
			VALUES (?, ?, ?, 0)
			ON CONFLICT(mac_address) DO UPDATE SET
				asset_name = excluded.asset_name
		`, a.MacAddress, a.AssetName, OutsideRange)
		if err != nil {
			return fmt.Errorf("seeding beacon %s: %w", a.MacAddress, err)
		}
	}

	return tx.Commit()
}

// DeleteAssets removes the given assets along with their live state,
// reading history and tracked sessions. Unknown addresses are ignored.
// Returns the number of asset rows actually deleted.
func (db *DB) DeleteAssets(macs []string) (int64, error) {
	tx, err := db.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	var deleted int64
	for _, mac := range macs {
		res, err := tx.Exec(`DELETE FROM assets WHERE mac_address = ?`, mac)
		if err != nil {
			return 0, fmt.Errorf("deleting asset %s: %w", mac, err)
		}
		n, _ := res.RowsAffected()
		deleted += n

		for _, stmt := range []string{
			`DELETE FROM beacons WHERE mac_address = ?`,
			`DELETE FROM beacon_history WHERE mac_address = ?`,
			`DELETE FROM time_tracking WHERE mac_address = ?`,
		} {
			if _, err := tx.Exec(stmt, mac); err != nil {
				return 0, fmt.Errorf("cascading delete for %s: %w", mac, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return deleted, nil
}

// ListAssets returns all registered assets ordered by mac address.
func (db *DB) ListAssets() ([]Asset, error) {
	rows, err := db.Query(`
		SELECT mac_address, asset_name, human_flag
		FROM assets
		ORDER BY mac_address
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var assets []Asset
	for rows.Next() {
		var a Asset
		if err := rows.Scan(&a.MacAddress, &a.AssetName, &a.HumanFlag); err != nil {
			return nil, err
		}
		assets = append(assets, a)
	}
	return assets, rows.Err()
}

// GetAsset returns the asset with the given mac address, or nil when
// it is not registered.
func (db *DB) GetAsset(mac string) (*Asset, error) {
	var a Asset
	err := db.QueryRow(`
		SELECT mac_address, asset_name, human_flag
		FROM assets
		WHERE mac_address = ?
	`, mac).Scan(&a.MacAddress, &a.AssetName, &a.HumanFlag)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, err
	}
	return &a, nil
}
