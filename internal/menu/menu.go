// Package menu implements the interactive text front end: a numbered menu
// read from an io.Reader and answered on an io.Writer.
package menu

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/okian/reelrank/internal/adapters/repository"
	"github.com/okian/reelrank/internal/domain/model"
	"github.com/okian/reelrank/internal/domain/ranking"
	"github.com/okian/reelrank/internal/domain/types"
	"github.com/okian/reelrank/pkg/logger"
)

// Menu choices.
const (
	choiceLoadMovies  = "1"
	choiceLoadRatings = "2"
	choiceTopMovies   = "3"
	choiceGenreMovies = "4"
	choiceTopGenres   = "5"
	choicePreference  = "6"
	choiceRecommend   = "7"
	choiceExit        = "8"
)

// Dependencies required by the menu.
type Dependencies interface {
	LoadCatalog(ctx context.Context, path string) (model.LoadReport, error)
	LoadRatings(ctx context.Context, path string) (model.LoadReport, error)
	TopMovies(ctx context.Context, n int) ([]types.MovieEntry, error)
	TopMoviesInGenre(ctx context.Context, genre string, n int) ([]types.MovieEntry, error)
	TopGenres(ctx context.Context, n int) ([]types.GenreEntry, error)
	Preference(ctx context.Context, rater string) (types.Preference, error)
	Recommend(ctx context.Context, rater string) (types.Recommendations, error)
	RecommendationCount() int
	Counts(ctx context.Context) repository.Counts
}

// Menu runs the interactive loop.
type Menu struct {
	deps   Dependencies
	in     *bufio.Scanner
	lines  <-chan string // fed by readLines while Run is active
	out    io.Writer
	logger logger.Logger
}

// Option applies a configuration option to the Menu.
type Option func(*Menu)

// WithLogger sets a custom logger for the menu.
func WithLogger(log logger.Logger) Option {
	return func(m *Menu) {
		if log != nil {
			m.logger = log
		}
	}
}

// New creates a Menu reading choices from in and writing to out.
func New(deps Dependencies, in io.Reader, out io.Writer, opts ...Option) *Menu {
	m := &Menu{deps: deps, in: bufio.NewScanner(in), out: out}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Run shows the menu until the exit choice, end of input or cancellation.
// Cancelling ctx returns promptly even while waiting for input.
func (m *Menu) Run(ctx context.Context) error {
	lines := make(chan string)
	stop := make(chan struct{})
	defer close(stop)
	m.lines = lines
	go m.readLines(lines, stop)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		m.printMenu()
		choice, ok := m.prompt(ctx, "Enter choice: ")
		if !ok {
			if err := ctx.Err(); err != nil {
				return err
			}
			return m.in.Err()
		}

		switch choice {
		case choiceLoadMovies:
			m.loadMovies(ctx)
		case choiceLoadRatings:
			m.loadRatings(ctx)
		case choiceTopMovies:
			m.topMovies(ctx)
		case choiceGenreMovies:
			m.genreMovies(ctx)
		case choiceTopGenres:
			m.topGenres(ctx)
		case choicePreference:
			m.preference(ctx)
		case choiceRecommend:
			m.recommend(ctx)
		case choiceExit:
			m.printf("Exiting program.\n")
			return nil
		default:
			m.printf("Invalid choice. Please try again.\n")
		}
	}
}

func (m *Menu) printMenu() {
	m.printf("\n=== Movie Recommender Menu ===\n" +
		"1. Load movie data file\n" +
		"2. Load ratings data file\n" +
		"3. Show top N movies\n" +
		"4. Show top N movies in a genre\n" +
		"5. Show top N genres\n" +
		"6. Show rater's top genre\n" +
		"7. Recommend movies for a rater\n" +
		"8. Exit\n")
}

func (m *Menu) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(m.out, format, args...)
}

// prompt writes label and reads one trimmed line. ok is false at end of
// input or once ctx is done.
func (m *Menu) prompt(ctx context.Context, label string) (string, bool) {
	m.printf("%s", label)
	select {
	case <-ctx.Done():
		return "", false
	case text, ok := <-m.lines:
		if !ok {
			return "", false
		}
		return strings.TrimSpace(text), true
	}
}

// readLines feeds scanned input to m.lines until input ends or stop closes.
// A blocked read on a terminal cannot be interrupted, so Run does not wait
// for this goroutine.
func (m *Menu) readLines(lines chan<- string, stop <-chan struct{}) {
	defer close(lines)
	for m.in.Scan() {
		select {
		case lines <- m.in.Text():
		case <-stop:
			return
		}
	}
}

// promptN reads a positive integer; it reports false after printing why not.
func (m *Menu) promptN(ctx context.Context) (int, bool) {
	raw, ok := m.prompt(ctx, "Enter N: ")
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		m.printf("Invalid input. Please enter an integer for N.\n")
		return 0, false
	}
	if n < 1 {
		m.printf("Invalid input. N must be at least 1.\n")
		return 0, false
	}
	return n, true
}

func (m *Menu) promptRater(ctx context.Context) (string, bool) {
	rater, ok := m.prompt(ctx, "Enter rater ID: ")
	if !ok {
		return "", false
	}
	if rater == "" {
		m.printf("Invalid input. Please enter a rater ID.\n")
		return "", false
	}
	return rater, true
}

func (m *Menu) loadMovies(ctx context.Context) {
	path, ok := m.prompt(ctx, "Enter movie data filename: ")
	if !ok {
		return
	}
	report, err := m.deps.LoadCatalog(ctx, path)
	if err != nil {
		m.loadFailed(ctx, "movies", err)
		return
	}
	m.printf("Loaded %d movies from %s\n", m.deps.Counts(ctx).Movies, path)
	m.reportSkipped(report)
}

func (m *Menu) loadRatings(ctx context.Context) {
	path, ok := m.prompt(ctx, "Enter ratings data filename: ")
	if !ok {
		return
	}
	report, err := m.deps.LoadRatings(ctx, path)
	if err != nil {
		m.loadFailed(ctx, "ratings", err)
		return
	}
	counts := m.deps.Counts(ctx)
	m.printf("Loaded %d ratings for %d movies from %s\n", counts.Ratings, counts.RatedMovies, path)
	m.reportSkipped(report)
}

func (m *Menu) loadFailed(ctx context.Context, kind string, err error) {
	if m.logger != nil {
		m.logger.Warn(ctx, "menu load failed", logger.String("kind", kind), logger.Error(err))
	}
	if errors.Is(err, os.ErrNotExist) {
		m.printf("Error: File not found.\n")
		return
	}
	m.printf("Unexpected error loading %s file: %v\n", kind, err)
}

func (m *Menu) reportSkipped(report model.LoadReport) {
	if report.Skipped > 0 {
		m.printf("Skipped %d malformed line(s).\n", report.Skipped)
	}
}

func (m *Menu) topMovies(ctx context.Context) {
	n, ok := m.promptN(ctx)
	if !ok {
		return
	}
	movies, err := m.deps.TopMovies(ctx, n)
	if err != nil {
		m.printf("Error running movie popularity: %v\n", err)
		return
	}
	m.printf("\nHere are the top %d movies:\n", n)
	m.printMovies(movies)
}

func (m *Menu) genreMovies(ctx context.Context) {
	genre, ok := m.prompt(ctx, "Enter genre: ")
	if !ok {
		return
	}
	n, ok := m.promptN(ctx)
	if !ok {
		return
	}
	movies, err := m.deps.TopMoviesInGenre(ctx, genre, n)
	if err != nil {
		m.printf("Error running movie popularity in genre: %v\n", err)
		return
	}
	m.printf("\nTop %d %s movies (by average rating):\n", n, genre)
	if len(movies) == 0 {
		m.printf("No rated movies found in this genre.\n")
		return
	}
	m.printMovies(movies)
}

func (m *Menu) topGenres(ctx context.Context) {
	n, ok := m.promptN(ctx)
	if !ok {
		return
	}
	genres, err := m.deps.TopGenres(ctx, n)
	if err != nil {
		m.printf("Error running genre popularity: %v\n", err)
		return
	}
	m.printf("\nTop %d genres by average rating:\n", n)
	for _, g := range genres {
		m.printf("%s: %.2f\n", g.Genre, g.Average)
	}
}

func (m *Menu) preference(ctx context.Context) {
	rater, ok := m.promptRater(ctx)
	if !ok {
		return
	}
	pref, err := m.deps.Preference(ctx, rater)
	switch {
	case errors.Is(err, ranking.ErrNoPreference):
		m.printf("Rater %s has not rated any movies in the catalog.\n", rater)
	case err != nil:
		m.printf("Error running rater preference: %v\n", err)
	default:
		m.printf("Rater %s's preferred genre is: %s (average rating: %.2f)\n", rater, pref.Genre, pref.Average)
	}
}

func (m *Menu) recommend(ctx context.Context) {
	rater, ok := m.promptRater(ctx)
	if !ok {
		return
	}
	if c := m.deps.Counts(ctx); c.Movies == 0 || c.Ratings == 0 {
		m.printf("Please load movies and ratings data first.\n")
		return
	}
	recs, err := m.deps.Recommend(ctx, rater)
	switch {
	case errors.Is(err, ranking.ErrNoPreference):
		m.printf("Cannot determine preferred genre: rater may not have rated any movies.\n")
		return
	case err != nil:
		m.printf("Error running movie recommendation: %v\n", err)
		return
	}
	m.printf("\nTop %d recommended movies for rater %s (Genre: %s):\n", m.deps.RecommendationCount(), rater, recs.Genre)
	if len(recs.Movies) == 0 {
		m.printf("No unrated movies available in your top genre.\n")
		return
	}
	m.printMovies(recs.Movies)
}

func (m *Menu) printMovies(movies []types.MovieEntry) {
	for _, mv := range movies {
		m.printf("%s: %.2f\n", mv.Title, mv.Average)
	}
}
