package store

import "database/sql"

// migrate runs all database migrations
func migrate(db *sql.DB) error {
	migrations := []string{
		// Activity summaries, one row per vendor labelId. Column names
		// track the vendor field names.
		`CREATE TABLE IF NOT EXISTS activities (
			label_id TEXT PRIMARY KEY,
			sport_type INTEGER NOT NULL,
			name TEXT NOT NULL,
			start_timestamp INTEGER NOT NULL,
			end_timestamp INTEGER NOT NULL,
			adjusted_pace INTEGER NOT NULL,
			aerobic_effect REAL NOT NULL,
			aerobic_effect_state INTEGER NOT NULL,
			anaerobic_effect REAL NOT NULL,
			anaerobic_effect_state INTEGER NOT NULL,
			avg_cadence INTEGER NOT NULL,
			avg_hr INTEGER NOT NULL,
			avg_move_speed INTEGER NOT NULL,
			avg_pace INTEGER NOT NULL,
			avg_running_ef INTEGER NOT NULL,
			avg_speed REAL NOT NULL,
			avg_step_len INTEGER NOT NULL,
			calories INTEGER NOT NULL,
			current_vo2_max INTEGER NOT NULL,
			device_sport_mode INTEGER NOT NULL,
			distance INTEGER NOT NULL,
			max_cadence INTEGER NOT NULL,
			max_hr INTEGER NOT NULL,
			max_speed INTEGER NOT NULL,
			sport_mode INTEGER NOT NULL,
			total_time INTEGER NOT NULL,
			train_type INTEGER NOT NULL,
			training_load INTEGER NOT NULL,
			workout_time INTEGER NOT NULL,
			created_at TEXT DEFAULT CURRENT_TIMESTAMP,
			updated_at TEXT DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE INDEX IF NOT EXISTS idx_activities_start ON activities(start_timestamp)`,
		`CREATE INDEX IF NOT EXISTS idx_activities_sport ON activities(sport_type)`,

		// In-activity sample series, five parallel values per index.
		`CREATE TABLE IF NOT EXISTS samples (
			label_id TEXT NOT NULL,
			idx INTEGER NOT NULL,
			cadence INTEGER NOT NULL,
			distance INTEGER NOT NULL,
			heart INTEGER NOT NULL,
			heart_level INTEGER NOT NULL,
			timestamp INTEGER NOT NULL,
			PRIMARY KEY (label_id, idx),
			FOREIGN KEY (label_id) REFERENCES activities(label_id) ON DELETE CASCADE
		)`,

		// Lap records for run/bike activities.
		`CREATE TABLE IF NOT EXISTS laps (
			label_id TEXT NOT NULL,
			lap_index INTEGER NOT NULL,
			row_index INTEGER NOT NULL,
			set_index INTEGER NOT NULL,
			start_timestamp INTEGER NOT NULL,
			end_timestamp INTEGER NOT NULL,
			avg_cadence INTEGER NOT NULL,
			avg_hr INTEGER NOT NULL,
			avg_move_speed INTEGER NOT NULL,
			avg_pace REAL NOT NULL,
			avg_power INTEGER NOT NULL,
			avg_speed_v2 REAL NOT NULL,
			avg_stride_length INTEGER NOT NULL,
			calories INTEGER NOT NULL,
			distance INTEGER NOT NULL,
			total_distance INTEGER NOT NULL,
			PRIMARY KEY (label_id, set_index, lap_index, row_index),
			FOREIGN KEY (label_id) REFERENCES activities(label_id) ON DELETE CASCADE
		)`,

		// Extraction run bookkeeping
		`CREATE TABLE IF NOT EXISTS extract_state (
			key TEXT PRIMARY KEY,
			at TEXT NOT NULL
		)`,
	}

	for _, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return err
		}
	}

	return nil
}
