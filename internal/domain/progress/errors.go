package progress

import "errors"

// Sentinel kinds for tracker errors.
var (
	ErrInvalidRecord = errors.New("invalid workout record")
)
