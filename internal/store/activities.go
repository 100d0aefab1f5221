package store

import (
	"database/sql"
	"fmt"

	"coros-export/internal/coros"
	"coros-export/internal/model"
)

// Record pairs a cached summary with the vendor labelId that keys it.
// The JSON export format carries no labelId inside the record, so the
// cache tracks it alongside.
type Record struct {
	LabelID string
	Summary model.Summary
}

// UpsertActivity stores a complete activity under its labelId,
// replacing any previously cached samples and laps.
func (db *DB) UpsertActivity(labelID string, a model.Activity) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	s := a.Summary
	if _, err := tx.Exec(`
		INSERT INTO activities (
			label_id, sport_type, name, start_timestamp, end_timestamp,
			adjusted_pace, aerobic_effect, aerobic_effect_state,
			anaerobic_effect, anaerobic_effect_state, avg_cadence, avg_hr,
			avg_move_speed, avg_pace, avg_running_ef, avg_speed,
			avg_step_len, calories, current_vo2_max, device_sport_mode,
			distance, max_cadence, max_hr, max_speed, sport_mode,
			total_time, train_type, training_load, workout_time, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(label_id) DO UPDATE SET
			sport_type = excluded.sport_type,
			name = excluded.name,
			start_timestamp = excluded.start_timestamp,
			end_timestamp = excluded.end_timestamp,
			adjusted_pace = excluded.adjusted_pace,
			aerobic_effect = excluded.aerobic_effect,
			aerobic_effect_state = excluded.aerobic_effect_state,
			anaerobic_effect = excluded.anaerobic_effect,
			anaerobic_effect_state = excluded.anaerobic_effect_state,
			avg_cadence = excluded.avg_cadence,
			avg_hr = excluded.avg_hr,
			avg_move_speed = excluded.avg_move_speed,
			avg_pace = excluded.avg_pace,
			avg_running_ef = excluded.avg_running_ef,
			avg_speed = excluded.avg_speed,
			avg_step_len = excluded.avg_step_len,
			calories = excluded.calories,
			current_vo2_max = excluded.current_vo2_max,
			device_sport_mode = excluded.device_sport_mode,
			distance = excluded.distance,
			max_cadence = excluded.max_cadence,
			max_hr = excluded.max_hr,
			max_speed = excluded.max_speed,
			sport_mode = excluded.sport_mode,
			total_time = excluded.total_time,
			train_type = excluded.train_type,
			training_load = excluded.training_load,
			workout_time = excluded.workout_time,
			updated_at = CURRENT_TIMESTAMP
	`,
		labelID, int(s.SportType), s.Name, s.StartTimestamp.Centis(), s.EndTimestamp.Centis(),
		s.AdjustedPace, s.AerobicEffect, s.AerobicEffectState,
		s.AnaerobicEffect, s.AnaerobicEffectState, s.AvgCadence, s.AvgHr,
		s.AvgMoveSpeed, s.AvgPace, s.AvgRunningEf, s.AvgSpeed,
		s.AvgStepLen, s.Calories, s.CurrentVo2Max, s.DeviceSportMode,
		s.Distance, s.MaxCadence, s.MaxHr, s.MaxSpeed, s.SportMode,
		s.TotalTime, s.TrainType, s.TrainingLoad, s.WorkoutTime,
	); err != nil {
		return fmt.Errorf("upserting activity %s: %w", labelID, err)
	}

	if _, err := tx.Exec(`DELETE FROM samples WHERE label_id = ?`, labelID); err != nil {
		return fmt.Errorf("clearing samples for %s: %w", labelID, err)
	}
	for i := 0; i < a.Data.Len(); i++ {
		if _, err := tx.Exec(`
			INSERT INTO samples (label_id, idx, cadence, distance, heart, heart_level, timestamp)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, labelID, i, a.Data.Cadence[i], a.Data.Distance[i], a.Data.Heart[i], a.Data.HeartLevel[i], a.Data.Timestamp[i]); err != nil {
			return fmt.Errorf("inserting sample %d for %s: %w", i, labelID, err)
		}
	}

	if _, err := tx.Exec(`DELETE FROM laps WHERE label_id = ?`, labelID); err != nil {
		return fmt.Errorf("clearing laps for %s: %w", labelID, err)
	}
	for _, lap := range a.Laps {
		if _, err := tx.Exec(`
			INSERT INTO laps (
				label_id, lap_index, row_index, set_index,
				start_timestamp, end_timestamp, avg_cadence, avg_hr,
				avg_move_speed, avg_pace, avg_power, avg_speed_v2,
				avg_stride_length, calories, distance, total_distance
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`,
			labelID, lap.LapIndex, lap.RowIndex, lap.SetIndex,
			lap.StartTimestamp.Centis(), lap.EndTimestamp.Centis(), lap.AvgCadence, lap.AvgHr,
			lap.AvgMoveSpeed, lap.AvgPace, lap.AvgPower, lap.AvgSpeedV2,
			lap.AvgStrideLength, lap.Calories, lap.Distance, lap.TotalDistance,
		); err != nil {
			return fmt.Errorf("inserting lap %d for %s: %w", lap.LapIndex, labelID, err)
		}
	}

	return tx.Commit()
}

// HasActivity reports whether an activity is already cached.
func (db *DB) HasActivity(labelID string) (bool, error) {
	var n int
	err := db.QueryRow(`SELECT COUNT(1) FROM activities WHERE label_id = ?`, labelID).Scan(&n)
	return n > 0, err
}

// CountActivities returns how many activities are cached.
func (db *DB) CountActivities() (int, error) {
	var n int
	err := db.QueryRow(`SELECT COUNT(1) FROM activities`).Scan(&n)
	return n, err
}

// GetActivity reassembles a cached activity: summary, sample series
// and laps.
func (db *DB) GetActivity(labelID string) (*model.Activity, error) {
	row := db.QueryRow(activitySelect+` WHERE label_id = ?`, labelID)
	rec, err := scanRecord(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	activity := model.Activity{Summary: rec.Summary, Laps: []model.Lap{}}

	sampleRows, err := db.Query(`
		SELECT cadence, distance, heart, heart_level, timestamp
		FROM samples WHERE label_id = ? ORDER BY idx
	`, labelID)
	if err != nil {
		return nil, err
	}
	defer sampleRows.Close()

	freq := model.Frequencies{
		Cadence:    []int64{},
		Distance:   []int64{},
		Heart:      []int64{},
		HeartLevel: []int64{},
		Timestamp:  []int64{},
	}
	for sampleRows.Next() {
		var cadence, distance, heart, heartLevel, timestamp int64
		if err := sampleRows.Scan(&cadence, &distance, &heart, &heartLevel, &timestamp); err != nil {
			return nil, err
		}
		freq.Cadence = append(freq.Cadence, cadence)
		freq.Distance = append(freq.Distance, distance)
		freq.Heart = append(freq.Heart, heart)
		freq.HeartLevel = append(freq.HeartLevel, heartLevel)
		freq.Timestamp = append(freq.Timestamp, timestamp)
	}
	if err := sampleRows.Err(); err != nil {
		return nil, err
	}
	activity.Data = freq

	lapRows, err := db.Query(`
		SELECT lap_index, row_index, set_index, start_timestamp,
			end_timestamp, avg_cadence, avg_hr, avg_move_speed, avg_pace,
			avg_power, avg_speed_v2, avg_stride_length, calories,
			distance, total_distance
		FROM laps WHERE label_id = ?
		ORDER BY set_index, lap_index, row_index
	`, labelID)
	if err != nil {
		return nil, err
	}
	defer lapRows.Close()

	for lapRows.Next() {
		var lap model.Lap
		var startCentis, endCentis int64
		if err := lapRows.Scan(
			&lap.LapIndex, &lap.RowIndex, &lap.SetIndex, &startCentis,
			&endCentis, &lap.AvgCadence, &lap.AvgHr, &lap.AvgMoveSpeed, &lap.AvgPace,
			&lap.AvgPower, &lap.AvgSpeedV2, &lap.AvgStrideLength, &lap.Calories,
			&lap.Distance, &lap.TotalDistance,
		); err != nil {
			return nil, err
		}
		lap.StartTimestamp = model.FromCentis(startCentis)
		lap.EndTimestamp = model.FromCentis(endCentis)
		activity.Laps = append(activity.Laps, lap)
	}
	if err := lapRows.Err(); err != nil {
		return nil, err
	}

	return &activity, nil
}

// ListRecords returns cached summaries newest first.
func (db *DB) ListRecords(limit, offset int) ([]Record, error) {
	rows, err := db.Query(activitySelect+`
		ORDER BY start_timestamp DESC
		LIMIT ? OFFSET ?
	`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

const activitySelect = `
	SELECT label_id, sport_type, name, start_timestamp, end_timestamp,
		adjusted_pace, aerobic_effect, aerobic_effect_state,
		anaerobic_effect, anaerobic_effect_state, avg_cadence, avg_hr,
		avg_move_speed, avg_pace, avg_running_ef, avg_speed,
		avg_step_len, calories, current_vo2_max, device_sport_mode,
		distance, max_cadence, max_hr, max_speed, sport_mode,
		total_time, train_type, training_load, workout_time
	FROM activities`

type scannable interface {
	Scan(dest ...any) error
}

func scanRecord(row scannable) (Record, error) {
	var rec Record
	var sportType int
	var startCentis, endCentis int64
	s := &rec.Summary

	err := row.Scan(
		&rec.LabelID, &sportType, &s.Name, &startCentis, &endCentis,
		&s.AdjustedPace, &s.AerobicEffect, &s.AerobicEffectState,
		&s.AnaerobicEffect, &s.AnaerobicEffectState, &s.AvgCadence, &s.AvgHr,
		&s.AvgMoveSpeed, &s.AvgPace, &s.AvgRunningEf, &s.AvgSpeed,
		&s.AvgStepLen, &s.Calories, &s.CurrentVo2Max, &s.DeviceSportMode,
		&s.Distance, &s.MaxCadence, &s.MaxHr, &s.MaxSpeed, &s.SportMode,
		&s.TotalTime, &s.TrainType, &s.TrainingLoad, &s.WorkoutTime,
	)
	if err != nil {
		return Record{}, err
	}

	s.SportType = coros.SportType(sportType)
	s.StartTimestamp = model.FromCentis(startCentis)
	s.EndTimestamp = model.FromCentis(endCentis)
	return rec, nil
}
