package model

import (
	"encoding/json"

	"coros-export/internal/coros"
)

// summaryWire mirrors Summary with pointer fields so translation can
// tell "absent" apart from "zero". Timestamps decode straight from the
// vendor's centisecond integers.
type summaryWire struct {
	AdjustedPace         *int64           `json:"adjustedPace"`
	AerobicEffect        *float64         `json:"aerobicEffect"`
	AerobicEffectState   *int64           `json:"aerobicEffectState"`
	AnaerobicEffect      *float64         `json:"anaerobicEffect"`
	AnaerobicEffectState *int64           `json:"anaerobicEffectState"`
	AvgCadence           *int64           `json:"avgCadence"`
	AvgHr                *int64           `json:"avgHr"`
	AvgMoveSpeed         *int64           `json:"avgMoveSpeed"`
	AvgPace              *int64           `json:"avgPace"`
	AvgRunningEf         *int64           `json:"avgRunningEf"`
	AvgSpeed             *float64         `json:"avgSpeed"`
	AvgStepLen           *int64           `json:"avgStepLen"`
	Calories             *int64           `json:"calories"`
	CurrentVo2Max        *int64           `json:"currentVo2Max"`
	DeviceSportMode      *int64           `json:"deviceSportMode"`
	Distance             *int64           `json:"distance"`
	EndTimestamp         *Timestamp       `json:"endTimestamp"`
	MaxCadence           *int64           `json:"maxCadence"`
	MaxHr                *int64           `json:"maxHr"`
	MaxSpeed             *int64           `json:"maxSpeed"`
	Name                 *string          `json:"name"`
	SportMode            *int64           `json:"sportMode"`
	SportType            *coros.SportType `json:"sportType"`
	StartTimestamp       *Timestamp       `json:"startTimestamp"`
	TotalTime            *int64           `json:"totalTime"`
	TrainType            *int64           `json:"trainType"`
	TrainingLoad         *int64           `json:"trainingLoad"`
	WorkoutTime          *int64           `json:"workoutTime"`
}

// TranslateSummary builds a Summary from a raw detail payload.
// Validation is strict: every declared field must be present and of
// the expected type; extraneous fields are ignored. The end instant
// must not precede the start instant.
func TranslateSummary(raw json.RawMessage) (Summary, error) {
	var w summaryWire
	if err := json.Unmarshal(raw, &w); err != nil {
		return Summary{}, &coros.ValidationError{Reason: err.Error()}
	}

	required := []struct {
		name string
		ok   bool
	}{
		{"adjustedPace", w.AdjustedPace != nil},
		{"aerobicEffect", w.AerobicEffect != nil},
		{"aerobicEffectState", w.AerobicEffectState != nil},
		{"anaerobicEffect", w.AnaerobicEffect != nil},
		{"anaerobicEffectState", w.AnaerobicEffectState != nil},
		{"avgCadence", w.AvgCadence != nil},
		{"avgHr", w.AvgHr != nil},
		{"avgMoveSpeed", w.AvgMoveSpeed != nil},
		{"avgPace", w.AvgPace != nil},
		{"avgRunningEf", w.AvgRunningEf != nil},
		{"avgSpeed", w.AvgSpeed != nil},
		{"avgStepLen", w.AvgStepLen != nil},
		{"calories", w.Calories != nil},
		{"currentVo2Max", w.CurrentVo2Max != nil},
		{"deviceSportMode", w.DeviceSportMode != nil},
		{"distance", w.Distance != nil},
		{"endTimestamp", w.EndTimestamp != nil},
		{"maxCadence", w.MaxCadence != nil},
		{"maxHr", w.MaxHr != nil},
		{"maxSpeed", w.MaxSpeed != nil},
		{"name", w.Name != nil},
		{"sportMode", w.SportMode != nil},
		{"sportType", w.SportType != nil},
		{"startTimestamp", w.StartTimestamp != nil},
		{"totalTime", w.TotalTime != nil},
		{"trainType", w.TrainType != nil},
		{"trainingLoad", w.TrainingLoad != nil},
		{"workoutTime", w.WorkoutTime != nil},
	}
	for _, f := range required {
		if !f.ok {
			return Summary{}, &coros.ValidationError{Field: f.name, Reason: "missing"}
		}
	}

	if w.EndTimestamp.Before(w.StartTimestamp.Time) {
		return Summary{}, &coros.ValidationError{Field: "endTimestamp", Reason: "precedes startTimestamp"}
	}

	return Summary{
		AdjustedPace:         *w.AdjustedPace,
		AerobicEffect:        *w.AerobicEffect,
		AerobicEffectState:   *w.AerobicEffectState,
		AnaerobicEffect:      *w.AnaerobicEffect,
		AnaerobicEffectState: *w.AnaerobicEffectState,
		AvgCadence:           *w.AvgCadence,
		AvgHr:                *w.AvgHr,
		AvgMoveSpeed:         *w.AvgMoveSpeed,
		AvgPace:              *w.AvgPace,
		AvgRunningEf:         *w.AvgRunningEf,
		AvgSpeed:             *w.AvgSpeed,
		AvgStepLen:           *w.AvgStepLen,
		Calories:             *w.Calories,
		CurrentVo2Max:        *w.CurrentVo2Max,
		DeviceSportMode:      *w.DeviceSportMode,
		Distance:             *w.Distance,
		EndTimestamp:         *w.EndTimestamp,
		MaxCadence:           *w.MaxCadence,
		MaxHr:                *w.MaxHr,
		MaxSpeed:             *w.MaxSpeed,
		Name:                 *w.Name,
		SportMode:            *w.SportMode,
		SportType:            *w.SportType,
		StartTimestamp:       *w.StartTimestamp,
		TotalTime:            *w.TotalTime,
		TrainType:            *w.TrainType,
		TrainingLoad:         *w.TrainingLoad,
		WorkoutTime:          *w.WorkoutTime,
	}, nil
}

// TranslateFrequencies builds the sample series from raw frequency
// items. Fields the server omitted are already zero on the wire type,
// so this never fails and all five sequences end up the same length.
func TranslateFrequencies(items []coros.SamplePoint) Frequencies {
	f := Frequencies{
		Cadence:    make([]int64, 0, len(items)),
		Distance:   make([]int64, 0, len(items)),
		Heart:      make([]int64, 0, len(items)),
		HeartLevel: make([]int64, 0, len(items)),
		Timestamp:  make([]int64, 0, len(items)),
	}
	for _, item := range items {
		f.Cadence = append(f.Cadence, item.Cadence)
		f.Distance = append(f.Distance, item.Distance)
		f.Heart = append(f.Heart, item.Heart)
		f.HeartLevel = append(f.HeartLevel, item.HeartLevel)
		f.Timestamp = append(f.Timestamp, item.Timestamp)
	}
	return f
}

// lapWire mirrors Lap with pointer fields for strict validation.
type lapWire struct {
	AvgCadence      *int64     `json:"avgCadence"`
	AvgHr           *int64     `json:"avgHr"`
	AvgMoveSpeed    *int64     `json:"avgMoveSpeed"`
	AvgPace         *float64   `json:"avgPace"`
	AvgPower        *int64     `json:"avgPower"`
	AvgSpeedV2      *float64   `json:"avgSpeedV2"`
	AvgStrideLength *int64     `json:"avgStrideLength"`
	Calories        *int64     `json:"calories"`
	Distance        *int64     `json:"distance"`
	EndTimestamp    *Timestamp `json:"endTimestamp"`
	LapIndex        *int64     `json:"lapIndex"`
	RowIndex        *int64     `json:"rowIndex"`
	SetIndex        *int64     `json:"setIndex"`
	StartTimestamp  *Timestamp `json:"startTimestamp"`
	TotalDistance   *int64     `json:"totalDistance"`
}

// TranslateLaps expands lap groups into Lap records. Sports outside
// the lap-supporting set yield an empty list even when the payload
// carries lap-shaped data. Within supported sports only running-kind
// groups are expanded; the bike-ride lap kind exists in the taxonomy
// but is not translated yet.
func TranslateLaps(sport coros.SportType, groups []coros.LapGroup) ([]Lap, error) {
	laps := []Lap{}
	if !sport.SupportsLaps() {
		return laps, nil
	}

	for _, group := range groups {
		if group.Kind != coros.LapRunning {
			continue
		}
		for _, raw := range group.LapItemList {
			lap, err := translateLap(raw)
			if err != nil {
				return nil, err
			}
			laps = append(laps, lap)
		}
	}

	return laps, nil
}

func translateLap(raw json.RawMessage) (Lap, error) {
	var w lapWire
	if err := json.Unmarshal(raw, &w); err != nil {
		return Lap{}, &coros.ValidationError{Reason: err.Error()}
	}

	required := []struct {
		name string
		ok   bool
	}{
		{"avgCadence", w.AvgCadence != nil},
		{"avgHr", w.AvgHr != nil},
		{"avgMoveSpeed", w.AvgMoveSpeed != nil},
		{"avgPace", w.AvgPace != nil},
		{"avgPower", w.AvgPower != nil},
		{"avgSpeedV2", w.AvgSpeedV2 != nil},
		{"avgStrideLength", w.AvgStrideLength != nil},
		{"calories", w.Calories != nil},
		{"distance", w.Distance != nil},
		{"endTimestamp", w.EndTimestamp != nil},
		{"lapIndex", w.LapIndex != nil},
		{"rowIndex", w.RowIndex != nil},
		{"setIndex", w.SetIndex != nil},
		{"startTimestamp", w.StartTimestamp != nil},
		{"totalDistance", w.TotalDistance != nil},
	}
	for _, f := range required {
		if !f.ok {
			return Lap{}, &coros.ValidationError{Field: f.name, Reason: "missing"}
		}
	}

	return Lap{
		AvgCadence:      *w.AvgCadence,
		AvgHr:           *w.AvgHr,
		AvgMoveSpeed:    *w.AvgMoveSpeed,
		AvgPace:         *w.AvgPace,
		AvgPower:        *w.AvgPower,
		AvgSpeedV2:      *w.AvgSpeedV2,
		AvgStrideLength: *w.AvgStrideLength,
		Calories:        *w.Calories,
		Distance:        *w.Distance,
		EndTimestamp:    *w.EndTimestamp,
		LapIndex:        *w.LapIndex,
		RowIndex:        *w.RowIndex,
		SetIndex:        *w.SetIndex,
		StartTimestamp:  *w.StartTimestamp,
		TotalDistance:   *w.TotalDistance,
	}, nil
}

// TranslateActivity assembles a complete Activity from a detail
// payload.
func TranslateActivity(sport coros.SportType, detail *coros.Detail) (Activity, error) {
	summary, err := TranslateSummary(detail.Summary)
	if err != nil {
		return Activity{}, err
	}

	laps, err := TranslateLaps(sport, detail.LapList)
	if err != nil {
		return Activity{}, err
	}

	return Activity{
		Summary: summary,
		Data:    TranslateFrequencies(detail.FrequencyList),
		Laps:    laps,
	}, nil
}
