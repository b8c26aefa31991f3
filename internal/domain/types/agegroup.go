package types

// AgeGroup is a reference-population age bracket.
type AgeGroup string

const (
	AgeU6        AgeGroup = "U6"
	AgeU8        AgeGroup = "U8"
	AgeU10       AgeGroup = "U10"
	AgeU12       AgeGroup = "U12"
	AgeU14       AgeGroup = "U14"
	AgeU16       AgeGroup = "U16"
	AgeU18       AgeGroup = "U18"
	AgeU20       AgeGroup = "U20"
	AgeSenior    AgeGroup = "Senior"
	AgeMasters35 AgeGroup = "Masters-35-44"
	AgeMasters45 AgeGroup = "Masters-45-54"
	AgeMasters55 AgeGroup = "Masters-55-plus"
)

// AgeGroups lists brackets youngest first. The index is the bracket ordinal.
var AgeGroups = []AgeGroup{
	AgeU6, AgeU8, AgeU10, AgeU12, AgeU14, AgeU16, AgeU18, AgeU20,
	AgeSenior, AgeMasters35, AgeMasters45, AgeMasters55,
}

type ageSpan struct {
	min, max int
	group    AgeGroup
}

var ageSpans = []ageSpan{
	{4, 5, AgeU6}, {6, 7, AgeU8}, {8, 9, AgeU10}, {10, 11, AgeU12},
	{12, 13, AgeU14}, {14, 15, AgeU16}, {16, 17, AgeU18}, {18, 19, AgeU20},
	{20, 34, AgeSenior}, {35, 44, AgeMasters35}, {45, 54, AgeMasters45}, {55, 120, AgeMasters55},
}

// AgeGroupFor maps an age in years to its bracket. Ages outside the table
// map to Senior.
func AgeGroupFor(age int) AgeGroup {
	for _, s := range ageSpans {
		if age >= s.min && age <= s.max {
			return s.group
		}
	}
	return AgeSenior
}

// Ordinal returns the bracket position, or -1 if unknown.
func (g AgeGroup) Ordinal() int {
	for i, v := range AgeGroups {
		if v == g {
			return i
		}
	}
	return -1
}

// Valid reports whether g is a known bracket.
func (g AgeGroup) Valid() bool { return g.Ordinal() >= 0 }
