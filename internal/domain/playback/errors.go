package playback

import (
	"errors"
	"fmt"
)

// Sentinel kinds for playback errors.
var (
	ErrInvalidSession    = errors.New("invalid session")
	ErrFinished          = errors.New("playback already finished")
	ErrInvalidTransition = errors.New("invalid playback transition")
)

// InvalidSessionError reports why a session cannot be played.
// Exercise is -1 when the problem is with the session as a whole.
type InvalidSessionError struct {
	Exercise int
	Reason   string
}

func (e *InvalidSessionError) Error() string {
	if e.Exercise < 0 {
		return fmt.Sprintf("%s: %s", ErrInvalidSession, e.Reason)
	}
	return fmt.Sprintf("%s: exercise %d: %s", ErrInvalidSession, e.Exercise, e.Reason)
}

// Is matches ErrInvalidSession.
func (e *InvalidSessionError) Is(target error) bool { return target == ErrInvalidSession }
