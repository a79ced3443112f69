// Package service provides the core business service that implements
// the dependencies required by the HTTP API and the interactive menu.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/okian/reelrank/internal/adapters/loader"
	"github.com/okian/reelrank/internal/adapters/repository"
	"github.com/okian/reelrank/internal/domain/model"
	"github.com/okian/reelrank/internal/domain/ranking"
	"github.com/okian/reelrank/internal/domain/types"
	"github.com/okian/reelrank/pkg/logger"
	"github.com/okian/reelrank/pkg/metrics"
)

// Query operation names used in logs and metrics.
const (
	OpTopMovies        = "top_movies"
	OpTopMoviesInGenre = "top_movies_in_genre"
	OpTopGenres        = "top_genres"
	OpPreference       = "preference"
	OpRecommend        = "recommend"
)

// Service answers ranking queries against the current snapshot.
type Service struct {
	mu sync.RWMutex

	// Core components
	store  repository.Store
	engine *ranking.Engine
	loader *loader.Loader

	// Configuration
	moviesFile      string
	ratingsFile     string
	delimiter       string
	recommendations int

	// State
	started bool

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(log logger.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.logger = log
		}
	}
}

// WithStore sets the snapshot store.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithLoader sets the record loader. It takes precedence over WithDelimiter.
func WithLoader(l *loader.Loader) Option {
	return func(s *Service) {
		if l != nil {
			s.loader = l
		}
	}
}

// WithFiles sets the catalog and ratings files loaded on Start and Reload.
func WithFiles(moviesFile, ratingsFile string) Option {
	return func(s *Service) {
		s.moviesFile = strings.TrimSpace(moviesFile)
		s.ratingsFile = strings.TrimSpace(ratingsFile)
	}
}

// WithDelimiter sets the field separator for the default loader.
func WithDelimiter(delim string) Option {
	return func(s *Service) {
		if delim != "" {
			s.delimiter = delim
		}
	}
}

// WithRecommendationCount sets how many movies Recommend returns.
func WithRecommendationCount(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.recommendations = n
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		delimiter:       "|",
		recommendations: ranking.DefaultRecommendations,
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.store == nil {
		s.store = repository.NewInMemoryStore()
	}
	s.engine = ranking.New(ranking.WithRecommendationCount(s.recommendations))
	return s
}

// Start resolves defaults and loads any configured files.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Named("service")
	}
	if s.loader == nil {
		s.loader = loader.New(loader.WithDelimiter(s.delimiter), loader.WithLogger(s.logger.Named("loader")))
	}
	movies, ratings := s.moviesFile, s.ratingsFile
	s.started = true
	s.mu.Unlock()

	s.logger.Info(ctx, "starting reelrank service...",
		logger.String("moviesFile", movies),
		logger.String("ratingsFile", ratings),
		logger.Int("recommendations", s.recommendations),
		logger.Bool("preload", movies != "" || ratings != ""),
	)

	var err error
	switch {
	case movies != "" && ratings != "":
		_, err = s.Reload(ctx, movies, ratings)
	case movies != "":
		_, err = s.LoadCatalog(ctx, movies)
	case ratings != "":
		_, err = s.LoadRatings(ctx, ratings)
	}
	if err != nil {
		s.Stop()
		return fmt.Errorf("initial load: %w", err)
	}

	s.logger.Info(ctx, "reelrank service started", logger.Any("counts", s.store.Count(ctx)))
	return nil
}

// Stop marks the service stopped. The current snapshot is kept.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	s.started = false
	s.logger.Info(context.Background(), "reelrank service stopped")
}

func (s *Service) components() (*loader.Loader, logger.Logger, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return nil, nil, ErrNotStarted
	}
	return s.loader, s.logger, nil
}

// Reload reads both files and replaces the whole snapshot. Empty paths fall
// back to the configured files. On failure the current snapshot is kept.
func (s *Service) Reload(ctx context.Context, moviesFile, ratingsFile string) (*model.Snapshot, error) {
	begin := time.Now()
	l, log, err := s.components()
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	if strings.TrimSpace(moviesFile) == "" {
		moviesFile = s.moviesFile
	}
	if strings.TrimSpace(ratingsFile) == "" {
		ratingsFile = s.ratingsFile
	}
	s.mu.RUnlock()
	if moviesFile == "" || ratingsFile == "" {
		metrics.RecordReload("failed")
		return nil, ErrNoSource
	}

	snap, err := l.Load(ctx, moviesFile, ratingsFile)
	if err != nil {
		metrics.RecordReload("failed")
		log.Error(ctx, "reload failed", logger.Error(err))
		return nil, err
	}
	if err := s.store.Replace(ctx, snap); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.moviesFile, s.ratingsFile = moviesFile, ratingsFile
	s.mu.Unlock()

	log.Info(ctx, "snapshot reloaded",
		logger.String("id", snap.ID),
		logger.Int("movies", snap.Catalog.Len()),
		logger.Int("ratedMovies", snap.Ratings.Len()),
		logger.Int("skipped", snap.CatalogReport.Skipped+snap.RatingsReport.Skipped),
		logger.Duration("took", time.Since(begin)),
	)
	return snap, nil
}

// LoadCatalog replaces only the catalog, keeping the current rating log.
func (s *Service) LoadCatalog(ctx context.Context, path string) (model.LoadReport, error) {
	l, log, err := s.components()
	if err != nil {
		return model.LoadReport{}, err
	}
	catalog, report, err := l.LoadCatalogFile(ctx, path)
	if err != nil {
		metrics.RecordReload("failed")
		log.Error(ctx, "catalog load failed", logger.String("path", path), logger.Error(err))
		return report, err
	}
	snap, err := s.store.Update(ctx, func(cur *model.Snapshot) (*model.Snapshot, error) {
		return cur.WithCatalog(uuid.NewString(), catalog, report, time.Now()), nil
	})
	if err != nil {
		return report, err
	}

	s.mu.Lock()
	s.moviesFile = path
	s.mu.Unlock()

	log.Info(ctx, "catalog replaced", logger.String("id", snap.ID), logger.Int("movies", catalog.Len()))
	return report, nil
}

// LoadRatings replaces only the rating log, keeping the current catalog.
func (s *Service) LoadRatings(ctx context.Context, path string) (model.LoadReport, error) {
	l, log, err := s.components()
	if err != nil {
		return model.LoadReport{}, err
	}
	ratings, report, err := l.LoadRatingsFile(ctx, path)
	if err != nil {
		metrics.RecordReload("failed")
		log.Error(ctx, "ratings load failed", logger.String("path", path), logger.Error(err))
		return report, err
	}
	snap, err := s.store.Update(ctx, func(cur *model.Snapshot) (*model.Snapshot, error) {
		return cur.WithRatings(uuid.NewString(), ratings, report, time.Now()), nil
	})
	if err != nil {
		return report, err
	}

	s.mu.Lock()
	s.ratingsFile = path
	s.mu.Unlock()

	log.Info(ctx, "ratings replaced", logger.String("id", snap.ID), logger.Int("ratedMovies", ratings.Len()))
	return report, nil
}

// TopMovies returns the n best-rated movies.
func (s *Service) TopMovies(ctx context.Context, n int) ([]types.MovieEntry, error) {
	start := time.Now()
	snap := s.store.Current(ctx)
	movies, err := s.engine.TopMovies(snap.Ratings, n)
	s.observe(ctx, OpTopMovies, start, len(movies), err)
	if err != nil {
		return nil, err
	}
	return movieEntries(movies), nil
}

// TopMoviesInGenre returns the n best-rated catalog movies in genre.
func (s *Service) TopMoviesInGenre(ctx context.Context, genre string, n int) ([]types.MovieEntry, error) {
	start := time.Now()
	snap := s.store.Current(ctx)
	movies, err := s.engine.TopMoviesInGenre(snap.Catalog, snap.Ratings, genre, n)
	s.observe(ctx, OpTopMoviesInGenre, start, len(movies), err)
	if err != nil {
		return nil, err
	}
	return movieEntries(movies), nil
}

// TopGenres returns the n genres with the best average movie rating.
func (s *Service) TopGenres(ctx context.Context, n int) ([]types.GenreEntry, error) {
	start := time.Now()
	snap := s.store.Current(ctx)
	genres, err := s.engine.TopGenres(snap.Catalog, snap.Ratings, n)
	s.observe(ctx, OpTopGenres, start, len(genres), err)
	if err != nil {
		return nil, err
	}
	out := make([]types.GenreEntry, len(genres))
	for i, g := range genres {
		out[i] = types.GenreEntry{Rank: i + 1, Genre: g.Genre, Average: g.Average, Movies: g.Movies}
	}
	return out, nil
}

// Preference returns the genre rater scores highest.
// ranking.ErrNoPreference is returned when the rater has no usable scores.
func (s *Service) Preference(ctx context.Context, rater string) (types.Preference, error) {
	start := time.Now()
	rater = strings.TrimSpace(rater)
	snap := s.store.Current(ctx)
	pref, err := s.engine.PreferredGenre(snap.Catalog, snap.Ratings, rater)
	s.observe(ctx, OpPreference, start, 1, err)
	if err != nil {
		return types.Preference{}, err
	}
	return types.Preference{RaterID: rater, Genre: pref.Genre, Average: pref.Average, Movies: pref.Movies}, nil
}

// Recommend returns unseen movies from rater's preferred genre. An empty
// Movies list means the rater has seen everything rated in that genre.
func (s *Service) Recommend(ctx context.Context, rater string) (types.Recommendations, error) {
	start := time.Now()
	rater = strings.TrimSpace(rater)
	snap := s.store.Current(ctx)
	movies, pref, err := s.engine.Recommend(snap.Catalog, snap.Ratings, rater)
	s.observe(ctx, OpRecommend, start, len(movies), err)
	if err != nil {
		return types.Recommendations{}, err
	}
	return types.Recommendations{RaterID: rater, Genre: pref.Genre, Movies: movieEntries(movies)}, nil
}

// RecommendationCount reports how many movies Recommend returns at most.
func (s *Service) RecommendationCount() int {
	return s.engine.RecommendationCount()
}

// Counts reports the size of the current snapshot.
func (s *Service) Counts(ctx context.Context) repository.Counts {
	return s.store.Count(ctx)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	snap := s.store.Current(ctx)
	stats := map[string]interface{}{
		"started":             s.started,
		"moviesFile":          s.moviesFile,
		"ratingsFile":         s.ratingsFile,
		"recommendationCount": s.engine.RecommendationCount(),
		"snapshotId":          snap.ID,
		"counts":              s.store.Count(ctx),
		"catalogReport":       snap.CatalogReport,
		"ratingsReport":       snap.RatingsReport,
	}
	if !snap.LoadedAt.IsZero() {
		stats["loadedAt"] = snap.LoadedAt.UTC().Format(time.RFC3339)
	}
	return stats
}

// observe records metrics for one query and logs failures.
func (s *Service) observe(ctx context.Context, op string, start time.Time, size int, err error) {
	elapsed := time.Since(start)
	latency := float64(elapsed.Microseconds()) / 1000.0
	outcome := metrics.OutcomeOK
	switch {
	case err == nil && size == 0:
		outcome = metrics.OutcomeEmpty
	case errors.Is(err, ranking.ErrNoPreference):
		outcome = metrics.OutcomeNoMatch
	case errors.Is(err, ranking.ErrInvalidLimit):
		outcome = metrics.OutcomeBadRequest
	case err != nil:
		outcome = metrics.OutcomeError
		metrics.RecordError("service", op)
	}
	metrics.RecordQuery(op, outcome, latency, size)

	s.mu.RLock()
	log := s.logger
	s.mu.RUnlock()
	if log == nil {
		return
	}
	if outcome == metrics.OutcomeError {
		log.Error(ctx, "query failed",
			logger.String("operation", op),
			logger.Duration("elapsed", elapsed),
			logger.Error(err),
		)
		return
	}
	log.Debug(ctx, "query answered",
		logger.String("operation", op),
		logger.String("outcome", outcome),
		logger.Int("size", size),
		logger.Float64("latencyMs", latency),
	)
}

func movieEntries(movies []ranking.MovieScore) []types.MovieEntry {
	out := make([]types.MovieEntry, len(movies))
	for i, m := range movies {
		out[i] = types.MovieEntry{Rank: i + 1, Title: m.Title, Average: m.Average, Ratings: m.Ratings}
	}
	return out
}
