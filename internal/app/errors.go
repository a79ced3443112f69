package service

import "errors"

// Sentinel error kinds for the service.
var (
	ErrNoSource   = errors.New("no source file configured")
	ErrNotStarted = errors.New("service not started")
)
