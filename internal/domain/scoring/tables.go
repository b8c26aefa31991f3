package scoring

import "github.com/okian/pulse/internal/domain/types"

// Anchors are the raw values that map to scores 0, 60, 80 and 100.
// For inverse tests the values descend.
type Anchors struct {
	Floor     float64
	Average   float64
	Good      float64
	Excellent float64
}

// Point is one entry of a reference population table.
type Point struct {
	Raw        float64
	Percentile float64
}

// Range is the accepted raw measurement interval, inclusive.
type Range struct {
	Min float64
	Max float64
}

// Score assigned to each anchor.
const (
	scoreFloor     = 0
	scoreAverage   = 60
	scoreGood      = 80
	scoreExcellent = 100
)

func defaultRanges() map[types.TestType]Range {
	return map[types.TestType]Range{
		types.TestHeight:            {50, 250},
		types.TestWeight:            {10, 250},
		types.TestSitAndReach:       {1, 80},
		types.TestVerticalJump:      {1, 150},
		types.TestBroadJump:         {10, 400},
		types.TestMedicineBallThrow: {0.2, 30},
		types.TestSprint30m:         {2.5, 20},
		types.TestShuttleRun:        {5, 40},
		types.TestEnduranceRun:      {90, 1200},
		types.TestSitUps:            {1, 120},
	}
}

// Benchmarks exist for a subset of brackets; other brackets borrow the
// nearest one. Shuttle brackets follow the agility seed data (male).
func defaultAnchors() map[types.TestType]map[types.AgeGroup]Anchors {
	return map[types.TestType]map[types.AgeGroup]Anchors{
		types.TestHeight: {
			types.AgeU14:    {120, 155, 165, 175},
			types.AgeSenior: {140, 170, 180, 190},
		},
		types.TestWeight: {
			types.AgeU14:    {25, 45, 52, 60},
			types.AgeSenior: {40, 65, 75, 85},
		},
		types.TestSitAndReach: {
			types.AgeU14:    {5, 22, 30, 38},
			types.AgeSenior: {5, 25, 32, 40},
		},
		types.TestVerticalJump: {
			types.AgeU14:       {10, 30, 40, 50},
			types.AgeU18:       {15, 45, 65, 75},
			types.AgeSenior:    {20, 50, 70, 80},
			types.AgeMasters35: {15, 45, 65, 75},
			types.AgeMasters45: {10, 40, 60, 70},
		},
		types.TestBroadJump: {
			types.AgeU14:    {80, 160, 185, 210},
			types.AgeSenior: {100, 200, 230, 260},
		},
		types.TestMedicineBallThrow: {
			types.AgeU14:    {1.5, 3.5, 4.5, 5.5},
			types.AgeSenior: {2, 5, 6.5, 8},
		},
		types.TestSprint30m: {
			types.AgeU14:    {8, 5.8, 5.3, 4.8},
			types.AgeSenior: {7, 5, 4.5, 4},
		},
		types.TestShuttleRun: {
			types.AgeU6:     {24, 18, 16, 14},
			types.AgeU14:    {18, 14, 12, 10},
			types.AgeSenior: {16, 12, 10, 8.5},
		},
		types.TestEnduranceRun: {
			types.AgeU14:    {360, 250, 220, 190},
			types.AgeSenior: {300, 210, 180, 150},
		},
		types.TestSitUps: {
			types.AgeU14:    {5, 22, 32, 42},
			types.AgeSenior: {5, 25, 35, 45},
		},
	}
}

// Points are ordered by ascending raw value.
func defaultPercentiles() map[types.TestType]map[types.AgeGroup][]Point {
	return map[types.TestType]map[types.AgeGroup][]Point{
		types.TestHeight: {
			types.AgeU14:    {{130, 5}, {145, 25}, {155, 50}, {163, 75}, {172, 95}},
			types.AgeSenior: {{155, 5}, {163, 25}, {170, 50}, {177, 75}, {188, 95}},
		},
		types.TestWeight: {
			types.AgeU14:    {{32, 5}, {40, 25}, {45, 50}, {51, 75}, {60, 95}},
			types.AgeSenior: {{50, 5}, {60, 25}, {68, 50}, {77, 75}, {92, 95}},
		},
		types.TestSitAndReach: {
			types.AgeU14:    {{8, 5}, {16, 25}, {22, 50}, {28, 75}, {36, 95}},
			types.AgeSenior: {{8, 5}, {18, 25}, {25, 50}, {31, 75}, {39, 95}},
		},
		types.TestVerticalJump: {
			types.AgeU14:    {{15, 5}, {24, 25}, {30, 50}, {37, 75}, {48, 95}},
			types.AgeSenior: {{28, 5}, {42, 25}, {50, 50}, {60, 75}, {75, 95}},
		},
		types.TestBroadJump: {
			types.AgeU14:    {{105, 5}, {140, 25}, {160, 50}, {180, 75}, {205, 95}},
			types.AgeSenior: {{140, 5}, {180, 25}, {200, 50}, {222, 75}, {252, 95}},
		},
		types.TestMedicineBallThrow: {
			types.AgeU14:    {{2, 5}, {3, 25}, {3.5, 50}, {4.2, 75}, {5.3, 95}},
			types.AgeSenior: {{3, 5}, {4.2, 25}, {5, 50}, {6, 75}, {7.6, 95}},
		},
		types.TestSprint30m: {
			types.AgeU14:    {{4.9, 95}, {5.4, 75}, {5.8, 50}, {6.3, 25}, {7.2, 5}},
			types.AgeSenior: {{4.1, 95}, {4.6, 75}, {5, 50}, {5.5, 25}, {6.3, 5}},
		},
		types.TestShuttleRun: {
			types.AgeU14:    {{10.2, 95}, {12, 75}, {14, 50}, {15.5, 25}, {17, 5}},
			types.AgeSenior: {{8.7, 95}, {10, 75}, {12, 50}, {13.5, 25}, {15, 5}},
		},
		types.TestEnduranceRun: {
			types.AgeU14:    {{195, 95}, {225, 75}, {250, 50}, {280, 25}, {330, 5}},
			types.AgeSenior: {{155, 95}, {185, 75}, {210, 50}, {235, 25}, {275, 5}},
		},
		types.TestSitUps: {
			types.AgeU14:    {{10, 5}, {17, 25}, {22, 50}, {30, 75}, {40, 95}},
			types.AgeSenior: {{10, 5}, {19, 25}, {25, 50}, {33, 75}, {44, 95}},
		},
	}
}
