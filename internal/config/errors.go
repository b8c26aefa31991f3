package config

import "errors"

var (
	// ErrInvalidConfig marks a configuration that loaded but failed Validate.
	ErrInvalidConfig = errors.New("invalid config")
	// ErrLoadConfig marks a file or environment source that could not be read.
	ErrLoadConfig = errors.New("load config failed")
)
