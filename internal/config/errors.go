package config

import "errors"

// Common errors returned by the config package.
var (
	// ErrMissingHost is returned when the database host is not configured.
	ErrMissingHost = errors.New("missing host")
	// ErrMissingDBName is returned when the database name is not configured.
	ErrMissingDBName = errors.New("missing database name")
	// ErrMissingAPIKey is returned when a required API key is not configured.
	ErrMissingAPIKey = errors.New("missing API key")
	// ErrNoModels is returned when the LLM model fallback list is empty.
	ErrNoModels = errors.New("no models configured")
	// ErrInvalidStrategy is returned for an unknown rewrite strategy.
	ErrInvalidStrategy = errors.New("invalid rewrite strategy")
)
