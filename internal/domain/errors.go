package domain

import "errors"

// Sentinel errors for domain operations
var (
	// ErrNoPlayableURL indicates a finished recording has no file matching
	// any of the requested qualities.
	ErrNoPlayableURL = errors.New("no playable url for requested qualities")

	// ErrDetailsUnavailable indicates a broadcast has no detail fetcher bound,
	// so lazily loaded fields cannot be resolved.
	ErrDetailsUnavailable = errors.New("broadcast details unavailable")
)
