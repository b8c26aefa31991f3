package composer

import (
	"math"
	"time"

	"github.com/okian/pulse/internal/domain/model"
	"github.com/okian/pulse/internal/domain/types"
)

// multiplier scales the base values of a template.
type multiplier struct {
	sets, reps, duration, rest float64
}

// Multiplier table. Intensity and tier factors multiply; the template's
// difficulty curve for the tier then multiplies reps and duration again.
//
//	              sets  reps  duration  rest
//	low           0.75  0.8   0.8       1.25
//	medium        1     1     1         1
//	high          1.25  1.2   1.2       0.75
//	beginner      0.75  0.8   0.8       1.25
//	intermediate  1     1     1         1
//	advanced      1.25  1.2   1.2       0.8
func intensityMultiplier(i types.Intensity) multiplier {
	switch i {
	case types.IntensityLow:
		return multiplier{sets: 0.75, reps: 0.8, duration: 0.8, rest: 1.25}
	case types.IntensityHigh:
		return multiplier{sets: 1.25, reps: 1.2, duration: 1.2, rest: 0.75}
	case types.IntensityMedium:
		return multiplier{1, 1, 1, 1}
	default:
		return multiplier{1, 1, 1, 1}
	}
}

func tierMultiplier(t types.Tier) multiplier {
	switch t {
	case types.TierBeginner:
		return multiplier{sets: 0.75, reps: 0.8, duration: 0.8, rest: 1.25}
	case types.TierAdvanced:
		return multiplier{sets: 1.25, reps: 1.2, duration: 1.2, rest: 0.8}
	case types.TierIntermediate:
		return multiplier{1, 1, 1, 1}
	default:
		return multiplier{1, 1, 1, 1}
	}
}

const timeStep = 5 * time.Second

// instantiate scales a template into a concrete exercise. Sets stay at
// least 1 and durations stay at least one time step, so a valid template
// always yields a playable exercise.
func instantiate(t model.ExerciseTemplate, intensity types.Intensity, tier types.Tier) model.TrainingExercise {
	mi, mt := intensityMultiplier(intensity), tierMultiplier(tier)
	curve := t.DifficultyCurve.For(tier)

	sets := int(math.Round(float64(t.BaseSets) * mi.sets * mt.sets))
	if sets < 1 {
		sets = 1
	}
	reps := int(math.Round(float64(t.BaseReps) * mi.reps * mt.reps * curve))
	duration := roundStep(t.BaseDuration.Seconds() * mi.duration * mt.duration * curve)
	if duration < timeStep {
		duration = timeStep
	}
	rest := roundStep(t.BaseRest.Seconds() * mi.rest * mt.rest)

	return model.TrainingExercise{
		ExerciseID:      t.ID,
		Name:            t.Name,
		Category:        t.Category,
		Sets:            sets,
		Reps:            reps,
		Duration:        duration,
		RestBetweenSets: rest,
		Instructions:    append([]string(nil), t.Instructions...),
		TargetMuscles:   append([]string(nil), t.TargetMuscles...),
	}
}

func roundStep(seconds float64) time.Duration {
	steps := math.Round(seconds / timeStep.Seconds())
	return time.Duration(steps) * timeStep
}
