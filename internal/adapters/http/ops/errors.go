package ops

import "errors"

// Sentinel kinds for ops listener errors.
var (
	ErrServe = errors.New("ops serve failed")
)
