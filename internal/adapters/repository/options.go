package repository

import (
	"time"

	"github.com/okian/reelrank/internal/domain/model"
)

// Option applies a configuration option to the InMemoryStore.
type Option func(*InMemoryStore)

// WithInitialSnapshot seeds the store instead of starting empty.
func WithInitialSnapshot(snap *model.Snapshot) Option {
	return func(s *InMemoryStore) {
		if snap != nil && snap.Catalog != nil && snap.Ratings != nil {
			s.initial = snap
		}
	}
}

// WithClock overrides the time source used for metrics timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *InMemoryStore) {
		if now != nil {
			s.now = now
		}
	}
}
