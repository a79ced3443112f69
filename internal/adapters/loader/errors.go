package loader

import "errors"

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	ErrEmptyPath  = errors.New("source path is empty")
	ErrOpenSource = errors.New("open source failed")
	ErrReadSource = errors.New("read source failed")
)
