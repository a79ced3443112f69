package ranking

import "errors"

// Sentinel kinds for ranking errors. Empty results are not errors.
var (
	// ErrEmptyRatingSet is returned when an average is requested over zero scores.
	ErrEmptyRatingSet = errors.New("empty rating set")
	// ErrNoPreference means the rater has no scored movies that match the catalog.
	ErrNoPreference = errors.New("no preference determinable")
	// ErrInvalidLimit is returned for a requested result size below one.
	ErrInvalidLimit = errors.New("invalid ranking limit")
)
