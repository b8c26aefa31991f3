package profile

import (
	"errors"
	"fmt"
)

// ErrInsufficientData marks a profile build without enough distinct tests.
var ErrInsufficientData = errors.New("insufficient assessment data")

// InsufficientDataError reports how many distinct test types were scored
// against how many are required.
type InsufficientDataError struct {
	Have int
	Need int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("%s: %d of %d distinct test types scored", ErrInsufficientData, e.Have, e.Need)
}

// Is matches ErrInsufficientData.
func (e *InsufficientDataError) Is(target error) bool { return target == ErrInsufficientData }
