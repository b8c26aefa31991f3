package worker

import "errors"

// Sentinel kinds for persister errors.
var (
	ErrMissingID = errors.New("record has no id")
)
