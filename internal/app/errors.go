package service

import (
	"errors"

	"github.com/okian/pulse/internal/adapters/repository"
	"github.com/okian/pulse/internal/domain/composer"
	"github.com/okian/pulse/internal/domain/playback"
	"github.com/okian/pulse/internal/domain/profile"
	"github.com/okian/pulse/internal/domain/scoring"
)

// Sentinel kinds for service errors.
var (
	ErrSessionActive     = errors.New("a training session is already active")
	ErrNotStarted        = errors.New("service not started")
	ErrStopped           = errors.New("service stopped")
	ErrIncompleteProfile = errors.New("athlete profile is incomplete")
)

// Guidance maps a recoverable error to a short hint for the athlete. It
// returns "" for errors that have no user-facing remedy.
func Guidance(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, profile.ErrInsufficientData):
		return "Take more assessments so we can find your focus areas."
	case errors.Is(err, composer.ErrNoEligibleExercises):
		return "Relax your equipment constraints or choose a different focus."
	case errors.Is(err, ErrIncompleteProfile):
		return "Complete your profile with your age so scores match your age group."
	case errors.Is(err, scoring.ErrMeasurementOutOfRange):
		return "Check that measurement and enter it again."
	case errors.Is(err, ErrSessionActive):
		return "Finish or stop the current workout first."
	case errors.Is(err, repository.ErrSaveFailed):
		return "Your workout is kept on this device and will sync later."
	case errors.Is(err, playback.ErrInvalidSession):
		return "This workout cannot be played. Generate a new one."
	}
	return ""
}
