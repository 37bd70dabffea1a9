package store

import "errors"

// Sentinel errors.
var (
	// ErrEmptyProfile is returned when a profile-scoped call gets an empty profile ID.
	ErrEmptyProfile = errors.New("store: empty profile id")

	// ErrClosed is returned by Ping after Close.
	ErrClosed = errors.New("store: database closed")
)
