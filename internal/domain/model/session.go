package model

import (
	"time"

	"github.com/okian/pulse/internal/domain/types"
)

// DifficultyCurve multiplies reps and duration per athlete tier.
// A zero entry means 1.
type DifficultyCurve struct {
	Beginner     float64 `yaml:"beginner" json:"beginner"`
	Intermediate float64 `yaml:"intermediate" json:"intermediate"`
	Advanced     float64 `yaml:"advanced" json:"advanced"`
}

// For returns the multiplier for tier.
func (d DifficultyCurve) For(tier types.Tier) float64 {
	var v float64
	switch tier {
	case types.TierBeginner:
		v = d.Beginner
	case types.TierAdvanced:
		v = d.Advanced
	case types.TierIntermediate:
		v = d.Intermediate
	default:
		v = d.Intermediate
	}
	if v <= 0 {
		return 1
	}
	return v
}

// ExerciseTemplate is a read-only library entry.
type ExerciseTemplate struct {
	ID                string          `yaml:"id" json:"id"`
	Name              string          `yaml:"name" json:"name"`
	Category          types.Category  `yaml:"category" json:"category"`
	TargetMuscles     []string        `yaml:"target_muscles" json:"target_muscles"`
	BaseDuration      time.Duration   `yaml:"base_duration" json:"base_duration"`
	BaseReps          int             `yaml:"base_reps" json:"base_reps"`
	BaseSets          int             `yaml:"base_sets" json:"base_sets"`
	BaseRest          time.Duration   `yaml:"base_rest" json:"base_rest"`
	DifficultyCurve   DifficultyCurve `yaml:"difficulty_curve" json:"difficulty_curve"`
	EquipmentRequired []string        `yaml:"equipment" json:"equipment_required"`
	Instructions      []string        `yaml:"instructions" json:"instructions"`
}

// Valid reports whether the template can be instantiated.
func (t ExerciseTemplate) Valid() bool {
	return t.ID != "" && t.BaseSets > 0 && t.BaseDuration > 0 &&
		t.BaseReps >= 0 && t.BaseRest >= 0 && t.Category.Valid()
}

// TrainingExercise is a template instantiated for one session.
type TrainingExercise struct {
	ExerciseID      string         `json:"exercise_id"`
	Name            string         `json:"name"`
	Category        types.Category `json:"category"`
	Sets            int            `json:"sets"`
	Reps            int            `json:"reps"`
	Duration        time.Duration  `json:"duration"`
	RestBetweenSets time.Duration  `json:"rest_between_sets"`
	Instructions    []string       `json:"instructions"`
	TargetMuscles   []string       `json:"target_muscles"`
}

// Time returns the wall time the exercise occupies: every set plus the
// rests between them.
func (e TrainingExercise) Time() time.Duration {
	if e.Sets <= 0 {
		return 0
	}
	return time.Duration(e.Sets)*e.Duration + time.Duration(e.Sets-1)*e.RestBetweenSets
}

// TrainingSession is an ordered, timed sequence of exercises.
type TrainingSession struct {
	ID            string             `json:"id"`
	AthleteID     string             `json:"athlete_id"`
	Name          string             `json:"name"`
	Description   string             `json:"description"`
	FocusCategory types.Category     `json:"focus_category"`
	Exercises     []TrainingExercise `json:"exercises"`
	TotalDuration time.Duration      `json:"total_duration"`
	Difficulty    types.Tier         `json:"difficulty"`
	Intensity     types.Intensity    `json:"intensity"`
}
