package repository

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/okian/reelrank/internal/domain/model"
	"github.com/okian/reelrank/pkg/metrics"
)

// InMemoryStore keeps the current snapshot behind an atomic pointer.
// Readers never block; writers swap in a whole new snapshot.
type InMemoryStore struct {
	current atomic.Pointer[model.Snapshot]
	initial *model.Snapshot
	now     func() time.Time
}

var _ Store = (*InMemoryStore)(nil)

// NewInMemoryStore creates a store holding an empty snapshot.
func NewInMemoryStore(opts ...Option) *InMemoryStore {
	s := &InMemoryStore{now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	initial := s.initial
	if initial == nil {
		initial = model.EmptySnapshot()
	}
	s.initial = nil
	s.current.Store(initial)
	s.publish(initial)
	return s
}

// Current returns the snapshot in effect.
func (s *InMemoryStore) Current(_ context.Context) *model.Snapshot {
	return s.current.Load()
}

// Replace installs snap as the current snapshot.
func (s *InMemoryStore) Replace(_ context.Context, snap *model.Snapshot) error {
	if err := check(snap); err != nil {
		metrics.RecordReload("rejected")
		return err
	}
	s.current.Store(snap)
	s.publish(snap)
	metrics.RecordReload("ok")
	return nil
}

// Update applies fn to the current snapshot and installs the result with a
// compare-and-swap, retrying when another writer got there first.
func (s *InMemoryStore) Update(ctx context.Context, fn func(cur *model.Snapshot) (*model.Snapshot, error)) (*model.Snapshot, error) {
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		cur := s.current.Load()
		next, err := fn(cur)
		if err != nil {
			metrics.RecordReload("failed")
			return nil, err
		}
		if err := check(next); err != nil {
			metrics.RecordReload("rejected")
			return nil, err
		}
		if s.current.CompareAndSwap(cur, next) {
			s.publish(next)
			metrics.RecordReload("ok")
			return next, nil
		}
	}
}

// Count reports the size of the current snapshot.
func (s *InMemoryStore) Count(_ context.Context) Counts {
	return countsOf(s.current.Load())
}

func (s *InMemoryStore) publish(snap *model.Snapshot) {
	c := countsOf(snap)
	at := snap.LoadedAt
	if at.IsZero() {
		at = s.now()
	}
	metrics.UpdateSnapshot(c.Movies, c.RatedMovies, c.Ratings, c.Raters, at.Unix())
}

func check(snap *model.Snapshot) error {
	if snap == nil {
		return ErrNilSnapshot
	}
	if snap.Catalog == nil || snap.Ratings == nil {
		return ErrIncomplete
	}
	return nil
}

func countsOf(snap *model.Snapshot) Counts {
	return Counts{
		Movies:      snap.Catalog.Len(),
		RatedMovies: snap.Ratings.Len(),
		Ratings:     snap.Ratings.EventCount(),
		Raters:      snap.Ratings.RaterCount(),
	}
}
