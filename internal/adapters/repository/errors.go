package repository

import "errors"

// Sentinel kinds for snapshot store errors.
var (
	ErrNilSnapshot = errors.New("snapshot is nil")
	ErrIncomplete  = errors.New("snapshot is missing a catalog or rating log")
)
