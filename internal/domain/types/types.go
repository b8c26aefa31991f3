// Package types contains the closed enumerations shared across the engine:
// assessment test types, training categories, athlete tiers, session
// intensities and age brackets.
package types

import (
	"fmt"
	"strings"
)

// TestType identifies one physical assessment in the battery.
type TestType string

const (
	TestHeight            TestType = "HEIGHT"
	TestWeight            TestType = "WEIGHT"
	TestSitAndReach       TestType = "SIT_AND_REACH"
	TestVerticalJump      TestType = "VERTICAL_JUMP"
	TestBroadJump         TestType = "BROAD_JUMP"
	TestMedicineBallThrow TestType = "MEDICINE_BALL_THROW"
	TestSprint30m         TestType = "SPRINT_30M"
	TestShuttleRun        TestType = "SHUTTLE_RUN_4X10"
	TestEnduranceRun      TestType = "ENDURANCE_RUN"
	TestSitUps            TestType = "SIT_UPS"
)

// TestTypes lists the battery in a stable order.
var TestTypes = []TestType{
	TestHeight, TestWeight, TestSitAndReach, TestVerticalJump, TestBroadJump,
	TestMedicineBallThrow, TestSprint30m, TestShuttleRun, TestEnduranceRun, TestSitUps,
}

// Unit is the measurement unit of a test.
type Unit string

const (
	UnitCentimeters Unit = "cm"
	UnitKilograms   Unit = "kg"
	UnitMeters      Unit = "m"
	UnitSeconds     Unit = "s"
	UnitReps        Unit = "reps"
)

// Valid reports whether t is a known test type.
func (t TestType) Valid() bool {
	switch t {
	case TestHeight, TestWeight, TestSitAndReach, TestVerticalJump, TestBroadJump,
		TestMedicineBallThrow, TestSprint30m, TestShuttleRun, TestEnduranceRun, TestSitUps:
		return true
	default:
		return false
	}
}

// LowerIsBetter reports whether a smaller raw value means a better result.
// Timed tests are inverse; distance, reps, height and mass are direct.
func (t TestType) LowerIsBetter() bool {
	switch t {
	case TestSprint30m, TestShuttleRun, TestEnduranceRun:
		return true
	case TestHeight, TestWeight, TestSitAndReach, TestVerticalJump, TestBroadJump,
		TestMedicineBallThrow, TestSitUps:
		return false
	default:
		return false
	}
}

// Unit returns the unit the raw measurement is expressed in.
func (t TestType) Unit() Unit {
	switch t {
	case TestHeight, TestSitAndReach, TestVerticalJump, TestBroadJump:
		return UnitCentimeters
	case TestWeight:
		return UnitKilograms
	case TestMedicineBallThrow:
		return UnitMeters
	case TestSprint30m, TestShuttleRun, TestEnduranceRun:
		return UnitSeconds
	case TestSitUps:
		return UnitReps
	default:
		return ""
	}
}

// Category returns the training category the test contributes to.
func (t TestType) Category() Category {
	switch t {
	case TestHeight:
		return CategoryHeight
	case TestWeight:
		return CategoryWeight
	case TestSitAndReach:
		return CategoryFlexibility
	case TestVerticalJump:
		return CategoryVerticalJump
	case TestBroadJump:
		return CategoryBroadJump
	case TestMedicineBallThrow:
		return CategoryUpperBodyPower
	case TestSprint30m:
		return CategorySpeed
	case TestShuttleRun:
		return CategoryAgility
	case TestEnduranceRun:
		return CategoryEndurance
	case TestSitUps:
		return CategorySitUps
	default:
		return ""
	}
}

// ParseTestType parses a test type name, case-insensitively.
func ParseTestType(s string) (TestType, error) {
	t := TestType(strings.ToUpper(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", fmt.Errorf("unknown test type %q", s)
	}
	return t, nil
}

// Category groups assessments and exercise templates.
type Category string

const (
	CategoryHeight         Category = "HEIGHT"
	CategoryWeight         Category = "WEIGHT"
	CategoryFlexibility    Category = "FLEXIBILITY"
	CategoryVerticalJump   Category = "VERTICAL_JUMP"
	CategoryBroadJump      Category = "BROAD_JUMP"
	CategoryUpperBodyPower Category = "UPPER_BODY_POWER"
	CategorySpeed          Category = "SPEED"
	CategoryAgility        Category = "AGILITY"
	CategoryEndurance      Category = "ENDURANCE"
	CategorySitUps         Category = "SIT_UPS"

	// Template-only categories.
	CategoryGeneral  Category = "GENERAL"
	CategoryCooldown Category = "COOLDOWN"
)

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	switch c {
	case CategoryHeight, CategoryWeight, CategoryFlexibility, CategoryVerticalJump,
		CategoryBroadJump, CategoryUpperBodyPower, CategorySpeed, CategoryAgility,
		CategoryEndurance, CategorySitUps, CategoryGeneral, CategoryCooldown:
		return true
	default:
		return false
	}
}

// Label returns a human readable name, e.g. "Sit Ups".
func (c Category) Label() string {
	words := strings.Split(strings.ToLower(string(c)), "_")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}

// ParseCategory parses a category name, case-insensitively.
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToUpper(strings.TrimSpace(s)))
	if !c.Valid() {
		return "", fmt.Errorf("unknown category %q", s)
	}
	return c, nil
}

// Tier is the athlete's training level.
type Tier string

const (
	TierBeginner     Tier = "beginner"
	TierIntermediate Tier = "intermediate"
	TierAdvanced     Tier = "advanced"
)

// ParseTier parses a tier name; empty input yields intermediate.
func ParseTier(s string) (Tier, error) {
	switch t := Tier(strings.ToLower(strings.TrimSpace(s))); t {
	case "":
		return TierIntermediate, nil
	case TierBeginner, TierIntermediate, TierAdvanced:
		return t, nil
	default:
		return "", fmt.Errorf("unknown tier %q", s)
	}
}

// Intensity is the requested session load.
type Intensity string

const (
	IntensityLow    Intensity = "low"
	IntensityMedium Intensity = "medium"
	IntensityHigh   Intensity = "high"
)

// ParseIntensity parses an intensity name; empty input yields medium.
func ParseIntensity(s string) (Intensity, error) {
	switch i := Intensity(strings.ToLower(strings.TrimSpace(s))); i {
	case "":
		return IntensityMedium, nil
	case IntensityLow, IntensityMedium, IntensityHigh:
		return i, nil
	default:
		return "", fmt.Errorf("unknown intensity %q", s)
	}
}
