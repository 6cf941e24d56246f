// Package common defines shared constants and sentinel errors used across
// AlphaWave components. Callers should use errors.Is to match these values;
// services wrap them with human-readable reasons via fmt.Errorf("%w: ...").
package common

import "errors"

var (
	// Input validation errors (malformed or missing input, recoverable,
	// surfaced verbatim to the user).
	ErrValidation = errors.New("validation error")

	// Auth errors (wrong credential or no active session).
	ErrUnauthorized = errors.New("unauthorized")

	// Repository-level errors.
	ErrNotFound = errors.New("not found")

	// Platform errors (geolocation denied, unavailable, or timed out).
	// Always recovered locally via the default location.
	ErrPlatform = errors.New("platform error")

	// Network errors (quote or geocoding fetch failure). Always recovered
	// via cached or fallback data.
	ErrNetwork = errors.New("network error")
)
