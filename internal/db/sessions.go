package db

import (
	"fmt"

	"github.com/google/uuid"
)

// Session is one presence interval for a human-flagged beacon on one
// calendar day. StopMS is nil while the person is still present.
type Session struct {
	ID          string `json:"id"`
	Date        string `json:"date"`
	MacAddress  string `json:"macAddress"`
	AssetName   string `json:"assetName"`
	StartMS     int64  `json:"startTime"`
	StopMS      *int64 `json:"stopTime"`
	TimeCounter string `json:"timeCounter"`
}

// Open reports whether the session has no stop time yet.
func (s *Session) Open() bool {
	return s.StopMS == nil
}

// LatestSession returns the most recently started session for mac,
// open or closed, or nil when the beacon has no sessions.
func (db *DB) LatestSession(mac string) (*Session, error) {
	var s Session
	err := db.QueryRow(`
		SELECT id, date, mac_address, asset_name, start_ms, stop_ms, time_counter
		FROM time_tracking
		WHERE mac_address = ?
		ORDER BY start_ms DESC
		LIMIT 1
	`, mac).Scan(&s.ID, &s.Date, &s.MacAddress, &s.AssetName, &s.StartMS, &s.StopMS, &s.TimeCounter)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

// InsertSession stores a new session row, assigning an id when empty.
func (db *DB) InsertSession(s *Session) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	if s.TimeCounter == "" {
		s.TimeCounter = "00:00:00"
	}
	_, err := db.Exec(`
		INSERT INTO time_tracking (id, date, mac_address, asset_name, start_ms, stop_ms, time_counter)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, s.ID, s.Date, s.MacAddress, s.AssetName, s.StartMS, s.StopMS, s.TimeCounter)
	if err != nil {
		return fmt.Errorf("inserting session for %s on %s: %w", s.MacAddress, s.Date, err)
	}
	return nil
}

// UpdateSession writes back the mutable fields of a session.
func (db *DB) UpdateSession(s *Session) error {
	res, err := db.Exec(`
		UPDATE time_tracking
		SET date = ?, asset_name = ?, stop_ms = ?, time_counter = ?
		WHERE id = ?
	`, s.Date, s.AssetName, s.StopMS, s.TimeCounter, s.ID)
	if err != nil {
		return fmt.Errorf("updating session %s: %w", s.ID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("updating session %s: no such row", s.ID)
	}
	return nil
}

// SessionsSince returns all sessions started at or after sinceMS,
// ordered by mac address then start time.
func (db *DB) SessionsSince(sinceMS int64) ([]Session, error) {
	rows, err := db.Query(`
		SELECT id, date, mac_address, asset_name, start_ms, stop_ms, time_counter
		FROM time_tracking
		WHERE start_ms >= ?
		ORDER BY mac_address, start_ms
	`, sinceMS)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []Session
	for rows.Next() {
		var s Session
		if err := rows.Scan(&s.ID, &s.Date, &s.MacAddress, &s.AssetName, &s.StartMS, &s.StopMS, &s.TimeCounter); err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

// OpenSessions returns every session that has not been closed yet.
func (db *DB) OpenSessions() ([]Session, error) {
	rows, err := db.Query(`
		SELECT id, date, mac_address, asset_name, start_ms, stop_ms, time_counter
		FROM time_tracking
		WHERE stop_ms IS NULL
		ORDER BY mac_address
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []Session
	for rows.Next() {
		var s Session
		if err := rows.Scan(&s.ID, &s.Date, &s.MacAddress, &s.AssetName, &s.StartMS, &s.StopMS, &s.TimeCounter); err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

// CountOpenSessions returns how many open sessions exist for mac.
func (db *DB) CountOpenSessions(mac string) (int, error) {
	var n int
	err := db.QueryRow(`
		SELECT COUNT(*) FROM time_tracking
		WHERE mac_address = ? AND stop_ms IS NULL
	`, mac).Scan(&n)
	return n, err
}
