package composer

import (
	"errors"
	"fmt"
	"strings"

	"github.com/okian/pulse/internal/domain/types"
)

// Sentinel kinds for composition errors.
var (
	ErrNoEligibleExercises = errors.New("no eligible exercises")
	ErrInvalidConstraints  = errors.New("invalid session constraints")
)

// NoEligibleExercisesError reports a focus and equipment combination that
// matched nothing in the library.
type NoEligibleExercisesError struct {
	Focus     []types.Category
	Equipment []string
}

func (e *NoEligibleExercisesError) Error() string {
	focus := make([]string, len(e.Focus))
	for i, c := range e.Focus {
		focus[i] = string(c)
	}
	equipment := "bodyweight"
	if len(e.Equipment) > 0 {
		equipment = strings.Join(e.Equipment, ",")
	}
	return fmt.Sprintf("%s: focus [%s] with equipment [%s]", ErrNoEligibleExercises, strings.Join(focus, ","), equipment)
}

// Is matches ErrNoEligibleExercises.
func (e *NoEligibleExercisesError) Is(target error) bool { return target == ErrNoEligibleExercises }
