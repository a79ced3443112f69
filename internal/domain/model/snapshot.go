package model

import "time"

// Record kinds reported by loaders.
const (
	KindCatalog = "catalog"
	KindRatings = "ratings"
)

// LoadReport describes how many records a loader accepted and rejected.
type LoadReport struct {
	Kind    string `json:"kind"`
	Source  string `json:"source"`
	Loaded  int    `json:"loaded"`
	Skipped int    `json:"skipped"`
}

// Snapshot is an immutable pairing of a catalog and a rating log.
// It is replaced wholesale on reload and never mutated in place.
type Snapshot struct {
	ID            string
	Catalog       *Catalog
	Ratings       *RatingLog
	LoadedAt      time.Time
	CatalogReport LoadReport
	RatingsReport LoadReport
}

// EmptySnapshot returns a snapshot with empty collections.
func EmptySnapshot() *Snapshot {
	return &Snapshot{
		Catalog: NewCatalog(),
		Ratings: NewRatingLog(),
	}
}

// WithCatalog returns a copy of s carrying a new catalog.
func (s *Snapshot) WithCatalog(id string, c *Catalog, report LoadReport, at time.Time) *Snapshot {
	next := *s
	next.ID = id
	next.Catalog = c
	next.CatalogReport = report
	next.LoadedAt = at
	return &next
}

// WithRatings returns a copy of s carrying a new rating log.
func (s *Snapshot) WithRatings(id string, l *RatingLog, report LoadReport, at time.Time) *Snapshot {
	next := *s
	next.ID = id
	next.Ratings = l
	next.RatingsReport = report
	next.LoadedAt = at
	return &next
}
