package repository

import (
	"errors"
	"fmt"
)

// Sentinel kinds for record store errors.
var (
	ErrSaveFailed    = errors.New("save failed")
	ErrUnknownDriver = errors.New("unknown store driver")
	ErrMigration     = errors.New("schema migration failed")
)

// SaveFailedError reports a record that could not be persisted.
type SaveFailedError struct {
	ID  string
	Err error
}

func (e *SaveFailedError) Error() string {
	return fmt.Sprintf("%s: record %s: %v", ErrSaveFailed, e.ID, e.Err)
}

// Is matches ErrSaveFailed.
func (e *SaveFailedError) Is(target error) bool { return target == ErrSaveFailed }

// Unwrap returns the underlying cause.
func (e *SaveFailedError) Unwrap() error { return e.Err }
