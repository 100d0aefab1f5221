// Package model holds the typed records an extraction run produces:
// per-activity summaries, in-activity sample series, laps, and the
// ordered collection that becomes the JSON export. Field names follow
// the vendor's wire names so exported documents line up with what the
// Training Hub itself serves.
package model

import "coros-export/internal/coros"

// Summary is the per-activity aggregate record. Every field is
// required on translation; see TranslateSummary.
type Summary struct {
	AdjustedPace         int64           `json:"adjustedPace"`
	AerobicEffect        float64         `json:"aerobicEffect"`
	AerobicEffectState   int64           `json:"aerobicEffectState"`
	AnaerobicEffect      float64         `json:"anaerobicEffect"`
	AnaerobicEffectState int64           `json:"anaerobicEffectState"`
	AvgCadence           int64           `json:"avgCadence"`
	AvgHr                int64           `json:"avgHr"`
	AvgMoveSpeed         int64           `json:"avgMoveSpeed"`
	AvgPace              int64           `json:"avgPace"`
	AvgRunningEf         int64           `json:"avgRunningEf"`
	AvgSpeed             float64         `json:"avgSpeed"`
	AvgStepLen           int64           `json:"avgStepLen"`
	Calories             int64           `json:"calories"`
	CurrentVo2Max        int64           `json:"currentVo2Max"`
	DeviceSportMode      int64           `json:"deviceSportMode"`
	Distance             int64           `json:"distance"`
	EndTimestamp         Timestamp       `json:"endTimestamp"`
	MaxCadence           int64           `json:"maxCadence"`
	MaxHr                int64           `json:"maxHr"`
	MaxSpeed             int64           `json:"maxSpeed"`
	Name                 string          `json:"name"`
	SportMode            int64           `json:"sportMode"`
	SportType            coros.SportType `json:"sportType"`
	StartTimestamp       Timestamp       `json:"startTimestamp"`
	TotalTime            int64           `json:"totalTime"`
	TrainType            int64           `json:"trainType"`
	TrainingLoad         int64           `json:"trainingLoad"`
	WorkoutTime          int64           `json:"workoutTime"`
}

// Frequencies is the in-activity time series: five parallel sequences
// where index i across all of them refers to the same moment.
// Timestamps stay in vendor centiseconds; they are raw samples, not
// display values.
type Frequencies struct {
	Cadence    []int64 `json:"cadence"`
	Distance   []int64 `json:"distance"`
	Heart      []int64 `json:"heart"`
	HeartLevel []int64 `json:"heartLevel"`
	Timestamp  []int64 `json:"timestamp"`
}

// Len returns the series length.
func (f Frequencies) Len() int {
	return len(f.Timestamp)
}

// Lap is one vendor-tracked sub-segment of an activity. The positional
// indices matter for multi-set activities (gym sets) where lapIndex
// alone does not order the segments.
type Lap struct {
	AvgCadence      int64     `json:"avgCadence"`
	AvgHr           int64     `json:"avgHr"`
	AvgMoveSpeed    int64     `json:"avgMoveSpeed"`
	AvgPace         float64   `json:"avgPace"`
	AvgPower        int64     `json:"avgPower"`
	AvgSpeedV2      float64   `json:"avgSpeedV2"`
	AvgStrideLength int64     `json:"avgStrideLength"`
	Calories        int64     `json:"calories"`
	Distance        int64     `json:"distance"`
	EndTimestamp    Timestamp `json:"endTimestamp"`
	LapIndex        int64     `json:"lapIndex"`
	RowIndex        int64     `json:"rowIndex"`
	SetIndex        int64     `json:"setIndex"`
	StartTimestamp  Timestamp `json:"startTimestamp"`
	TotalDistance   int64     `json:"totalDistance"`
}

// Activity aggregates one summary, its sample series and its laps.
type Activity struct {
	Summary Summary     `json:"summary"`
	Data    Frequencies `json:"data"`
	Laps    []Lap       `json:"laps"`
}

// Collection is the insertion-ordered, append-only set of activities
// from one extraction run. It marshals as a JSON array.
type Collection []Activity

// Add appends an activity.
func (c *Collection) Add(a Activity) {
	*c = append(*c, a)
}
