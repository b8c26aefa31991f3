// Package model contains domain models passed between layers.
package model

import (
	"time"

	"github.com/okian/pulse/internal/domain/types"
)

// AssessmentResult is one scored attempt at a physical test.
type AssessmentResult struct {
	ID             string         `yaml:"id" json:"id"`
	AthleteID      string         `yaml:"athlete_id" json:"athlete_id"`
	TestType       types.TestType `yaml:"test_type" json:"test_type"`
	RawMeasurement float64        `yaml:"raw" json:"raw_measurement"`
	Score          float64        `yaml:"score" json:"score"`
	Percentile     float64        `yaml:"percentile" json:"percentile"`
	Approximate    bool           `yaml:"approximate" json:"approximate"`
	Timestamp      time.Time      `yaml:"timestamp" json:"timestamp"`
}

// AthleteProfile carries the athlete attributes the engine reads.
type AthleteProfile struct {
	ID   string     `yaml:"id" json:"id"`
	Name string     `yaml:"name" json:"name"`
	Age  int        `yaml:"age" json:"age"`
	Tier types.Tier `yaml:"tier" json:"tier"`
}

// AgeGroup maps the athlete's age to a reference bracket.
func (a AthleteProfile) AgeGroup() types.AgeGroup { return types.AgeGroupFor(a.Age) }

// RankedCategory is one scored category in a weakness profile.
type RankedCategory struct {
	Category    types.Category `json:"category"`
	Score       float64        `json:"score"`
	Percentile  float64        `json:"percentile"`
	Approximate bool           `json:"approximate"`
	Rating      string         `json:"rating"`
}

// WeaknessProfile ranks an athlete's categories weakest first.
type WeaknessProfile struct {
	Ranked     []RankedCategory `json:"ranked"`
	FocusAreas []types.Category `json:"focus_areas"`
	Strengths  []types.Category `json:"strengths"`
}

// Contains reports whether c is one of the focus areas.
func (w WeaknessProfile) Contains(c types.Category) bool {
	for _, f := range w.FocusAreas {
		if f == c {
			return true
		}
	}
	return false
}

// Rank returns the position of c in Ranked, or -1.
func (w WeaknessProfile) Rank(c types.Category) int {
	for i, r := range w.Ranked {
		if r.Category == c {
			return i
		}
	}
	return -1
}
