package model

import "time"

// MetricSample is one reading from a live metric source. Nil fields were
// not reported. Reps is a delta since the previous sample.
type MetricSample struct {
	Reps         *int     `yaml:"reps,omitempty" json:"reps,omitempty"`
	FormScore    *float64 `yaml:"form_score,omitempty" json:"form_score,omitempty"`
	Tempo        *float64 `yaml:"tempo,omitempty" json:"tempo,omitempty"`
	FatigueLevel *float64 `yaml:"fatigue,omitempty" json:"fatigue_level,omitempty"`
}

// WorkoutSessionRecord is emitted once when a session completes.
type WorkoutSessionRecord struct {
	ID            string        `json:"id"`
	AthleteID     string        `json:"athlete_id"`
	SessionID     string        `json:"session_id"`
	ExerciseType  string        `json:"exercise_type"`
	Reps          int           `json:"reps"`
	FormScore     float64       `json:"form_score"`
	PeakFormScore float64       `json:"peak_form_score"`
	Duration      time.Duration `json:"duration"`
	Date          time.Time     `json:"date"`
	Notes         string        `json:"notes"`
}

// WeekBucket aggregates the records of one ISO week.
type WeekBucket struct {
	Year          int       `json:"year"`
	Week          int       `json:"week"`
	Start         time.Time `json:"start"`
	Workouts      int       `json:"workouts"`
	TotalReps     int       `json:"total_reps"`
	MeanFormScore float64   `json:"mean_form_score"`
}

// ExerciseStats aggregates the records of one exercise type.
type ExerciseStats struct {
	Count       int     `json:"count"`
	TotalReps   int     `json:"total_reps"`
	AverageForm float64 `json:"average_form"`
	BestForm    float64 `json:"best_form"`
	Improvement float64 `json:"improvement"`
}

// ProgressMetrics is derived from an athlete's full record set.
type ProgressMetrics struct {
	TotalWorkouts     int                      `json:"total_workouts"`
	TotalReps         int                      `json:"total_reps"`
	CurrentStreak     int                      `json:"current_streak"`
	LongestStreak     int                      `json:"longest_streak"`
	AverageFormScore  float64                  `json:"average_form_score"`
	BestFormScore     float64                  `json:"best_form_score"`
	WeeklyProgress    []WeekBucket             `json:"weekly_progress"`
	ExerciseBreakdown map[string]ExerciseStats `json:"exercise_breakdown"`
	RecentSessions    []WorkoutSessionRecord   `json:"recent_sessions"`
}

// PerformanceSample is one standalone performance metric reading,
// e.g. a timed sprint outside of a session.
type PerformanceSample struct {
	Metric string    `yaml:"metric" json:"metric"`
	Value  float64   `yaml:"value" json:"value"`
	Date   time.Time `yaml:"date" json:"date"`
}
