package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/okian/reelrank/internal/domain/model"
)

func sampleSnapshot(id string) *model.Snapshot {
	catalog := model.NewCatalog(
		model.CatalogEntry{Genre: "Action", CatalogID: "1", Title: "A"},
		model.CatalogEntry{Genre: "Comedy", CatalogID: "2", Title: "C"},
	)
	ratings := model.NewRatingLog(
		model.RatingEvent{Title: "A", Score: 4, RaterID: "1"},
		model.RatingEvent{Title: "A", Score: 5, RaterID: "2"},
		model.RatingEvent{Title: "C", Score: 3, RaterID: "2"},
	)
	return &model.Snapshot{ID: id, Catalog: catalog, Ratings: ratings, LoadedAt: time.Unix(1700000000, 0)}
}

func TestInMemoryStore_StartsEmpty(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()

	snap := store.Current(ctx)
	if snap == nil {
		t.Fatal("expected a snapshot, got nil")
	}
	if got := store.Count(ctx); got != (Counts{}) {
		t.Errorf("expected zero counts, got %+v", got)
	}
}

func TestInMemoryStore_Replace(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()

	if err := store.Replace(ctx, sampleSnapshot("s1")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id := store.Current(ctx).ID; id != "s1" {
		t.Errorf("expected snapshot s1, got %q", id)
	}
	want := Counts{Movies: 2, RatedMovies: 2, Ratings: 3, Raters: 2}
	if got := store.Count(ctx); got != want {
		t.Errorf("expected %+v, got %+v", want, got)
	}

	if err := store.Replace(ctx, nil); !errors.Is(err, ErrNilSnapshot) {
		t.Errorf("expected ErrNilSnapshot, got %v", err)
	}
	if err := store.Replace(ctx, &model.Snapshot{Catalog: model.NewCatalog()}); !errors.Is(err, ErrIncomplete) {
		t.Errorf("expected ErrIncomplete, got %v", err)
	}
	if id := store.Current(ctx).ID; id != "s1" {
		t.Errorf("rejected replace changed the snapshot to %q", id)
	}
}

func TestInMemoryStore_InitialSnapshot(t *testing.T) {
	store := NewInMemoryStore(WithInitialSnapshot(sampleSnapshot("seed")))
	if id := store.Current(context.Background()).ID; id != "seed" {
		t.Errorf("expected seeded snapshot, got %q", id)
	}

	// incomplete seeds are ignored
	store = NewInMemoryStore(WithInitialSnapshot(&model.Snapshot{ID: "bad"}))
	if id := store.Current(context.Background()).ID; id == "bad" {
		t.Error("incomplete seed was installed")
	}
}

func TestInMemoryStore_Update(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore(WithClock(func() time.Time { return time.Unix(42, 0) }))

	next, err := store.Update(ctx, func(cur *model.Snapshot) (*model.Snapshot, error) {
		catalog := model.NewCatalog(model.CatalogEntry{Genre: "Drama", CatalogID: "9", Title: "D"})
		return cur.WithCatalog("u1", catalog, model.LoadReport{Kind: model.KindCatalog, Loaded: 1}, time.Unix(43, 0)), nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if next.ID != "u1" || store.Current(ctx) != next {
		t.Errorf("update did not install the returned snapshot")
	}
	if store.Count(ctx).Movies != 1 {
		t.Errorf("expected 1 movie, got %d", store.Count(ctx).Movies)
	}

	boom := errors.New("boom")
	if _, err := store.Update(ctx, func(*model.Snapshot) (*model.Snapshot, error) { return nil, boom }); !errors.Is(err, boom) {
		t.Errorf("expected callback error, got %v", err)
	}
	if store.Current(ctx) != next {
		t.Error("failed update replaced the snapshot")
	}

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	if _, err := store.Update(cancelled, func(cur *model.Snapshot) (*model.Snapshot, error) { return cur, nil }); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestInMemoryStore_ConcurrentUpdates(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()

	const writers = 16
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := store.Update(ctx, func(cur *model.Snapshot) (*model.Snapshot, error) {
				entries := append(cur.Catalog.Entries(), model.CatalogEntry{
					Genre: "Action", CatalogID: fmt.Sprint(i), Title: fmt.Sprintf("Movie %d", i),
				})
				return cur.WithCatalog(fmt.Sprint(i), model.NewCatalog(entries...), model.LoadReport{}, time.Now()), nil
			})
			if err != nil {
				t.Errorf("writer %d: %v", i, err)
			}
		}(i)
	}

	// readers run alongside and must always see a complete snapshot
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			snap := store.Current(ctx)
			if snap.Catalog == nil || snap.Ratings == nil {
				t.Error("reader saw an incomplete snapshot")
			}
		}()
	}
	wg.Wait()

	if got := store.Count(ctx).Movies; got != writers {
		t.Errorf("expected %d movies after concurrent updates, got %d", writers, got)
	}
}
