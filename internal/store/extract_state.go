package store

import (
	"database/sql"
	"time"
)

const lastExtractKey = "last_extract"

// LastExtract reports when the most recent extraction run completed.
// ok is false when no run has been recorded yet.
func (db *DB) LastExtract() (time.Time, bool, error) {
	var at string
	err := db.QueryRow(`SELECT at FROM extract_state WHERE key = ?`, lastExtractKey).Scan(&at)
	if err == sql.ErrNoRows {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, err
	}

	t, err := time.Parse(time.RFC3339, at)
	if err != nil {
		return time.Time{}, false, err
	}
	return t, true, nil
}

// SetLastExtract records the completion time of an extraction run.
func (db *DB) SetLastExtract(t time.Time) error {
	_, err := db.Exec(`
		INSERT INTO extract_state (key, at) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET at = excluded.at
	`, lastExtractKey, t.Format(time.RFC3339))
	return err
}
