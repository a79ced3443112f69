// Package model contains domain models passed between layers.
package model

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// CatalogEntry represents one movie in the catalog.
type CatalogEntry struct {
	Title     string `validate:"required"` // join key, display casing preserved
	Genre     string `validate:"required"` // free-form label
	CatalogID string `validate:"required"` // opaque, unused by ranking
}

// RatingEvent is one (title, score, rater) observation.
type RatingEvent struct {
	Title   string  `validate:"required"`
	Score   float64 // no declared bounds; loader rejects NaN and Inf
	RaterID string  `validate:"required"`
}

// Key returns the matching key for a title or genre label.
// Keys are trimmed and Unicode case folded so "Sci-Fi" and " sci-fi" collide.
func Key(s string) string {
	// Casers carry state and are not safe to share between goroutines.
	return cases.Fold().String(strings.TrimSpace(s))
}

// DisplayGenre returns the canonical display form of a genre bucket.
func DisplayGenre(genre string) string {
	return cases.Title(language.Und).String(strings.TrimSpace(genre))
}
