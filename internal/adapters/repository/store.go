// Package repository holds the snapshot the ranking queries read from.
package repository

import (
	"context"

	"github.com/okian/reelrank/internal/domain/model"
)

// Counts summarises the contents of a snapshot.
type Counts struct {
	Movies      int `json:"movies"`
	RatedMovies int `json:"rated_movies"`
	Ratings     int `json:"ratings"`
	Raters      int `json:"raters"`
}

// Store provides read/write access to the current snapshot.
type Store interface {
	// Current returns the snapshot in effect. It never returns nil.
	Current(ctx context.Context) *model.Snapshot

	// Replace installs snap as the current snapshot.
	Replace(ctx context.Context, snap *model.Snapshot) error

	// Update derives the next snapshot from the current one and installs it.
	// fn may run more than once under contention and must not have side effects.
	Update(ctx context.Context, fn func(cur *model.Snapshot) (*model.Snapshot, error)) (*model.Snapshot, error)

	// Count reports the size of the current snapshot.
	Count(ctx context.Context) Counts
}
