package scoring

import (
	"errors"
	"fmt"

	"github.com/okian/pulse/internal/domain/types"
)

// Sentinel kinds for scoring errors.
var (
	ErrMeasurementOutOfRange = errors.New("measurement out of range")
	ErrUnknownTestType       = errors.New("unknown test type")
)

// MeasurementOutOfRangeError reports a raw value outside the sane range
// for its test type.
type MeasurementOutOfRangeError struct {
	TestType types.TestType
	Raw      float64
	Min      float64
	Max      float64
}

func (e *MeasurementOutOfRangeError) Error() string {
	return fmt.Sprintf("%s: %s %g outside [%g, %g] %s",
		ErrMeasurementOutOfRange, e.TestType, e.Raw, e.Min, e.Max, e.TestType.Unit())
}

// Is matches ErrMeasurementOutOfRange.
func (e *MeasurementOutOfRangeError) Is(target error) bool {
	return target == ErrMeasurementOutOfRange
}
