package model

import "errors"

var (
	// ErrStorageCorrupt is returned when a backing file holds invalid data.
	ErrStorageCorrupt = errors.New("storage corrupt")
	// ErrStorageUnavailable is returned when a backing file cannot be written.
	ErrStorageUnavailable = errors.New("storage unavailable")
	// ErrNotFound is returned when no submission matches the requested id.
	ErrNotFound = errors.New("not found")
	// ErrUnauthorized is returned when the tutor credential is missing or wrong.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrInvalidArgument is returned for missing or unusable parameters.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrUpstreamFailure is returned when a proxied remote fetch fails.
	ErrUpstreamFailure = errors.New("upstream failure")
)
