// Package ranking turns a catalog and a rating log into ordered results:
// top movies, top movies in a genre, top genres, a rater's preferred genre
// and unseen-movie recommendations.
//
// Every operation is a pure read of its inputs. Ties keep encounter order
// (stable sort), and a limit larger than the ranked set returns every
// ranked item.
package ranking

import (
	"fmt"
	"sort"

	"github.com/okian/reelrank/internal/domain/model"
)

// DefaultRecommendations is the number of movies Recommend returns unless
// configured otherwise.
const DefaultRecommendations = 3

// MovieScore is a movie with its mean score.
type MovieScore struct {
	Title   string
	Average float64
	Ratings int // number of scores averaged
}

// GenreScore is a genre with the unweighted mean of its movies' averages.
type GenreScore struct {
	Genre   string
	Average float64
	Movies  int
}

// Preference is the genre a rater scores highest on average.
type Preference struct {
	Genre   string
	Average float64
	Movies  int // movies the rater scored in this genre
}

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithRecommendationCount sets how many movies Recommend returns.
func WithRecommendationCount(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.recommendations = n
		}
	}
}

// Engine answers ranking queries. It holds configuration only and is safe
// for concurrent use.
type Engine struct {
	recommendations int
}

// New creates an Engine with configuration options.
func New(opts ...Option) *Engine {
	e := &Engine{recommendations: DefaultRecommendations}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// RecommendationCount reports the configured recommendation cutoff.
func (e *Engine) RecommendationCount() int { return e.recommendations }

// Average returns the arithmetic mean of scores.
func Average(scores []float64) (float64, error) {
	if len(scores) == 0 {
		return 0, ErrEmptyRatingSet
	}
	var sum float64
	for _, s := range scores {
		sum += s
	}
	return sum / float64(len(scores)), nil
}

// TopMovies ranks every rated movie by its average over all scores.
func (e *Engine) TopMovies(ratings *model.RatingLog, n int) ([]MovieScore, error) {
	if n < 1 {
		return nil, fmt.Errorf("top movies: %w", ErrInvalidLimit)
	}
	scored := make([]MovieScore, 0, ratings.Len())
	var err error
	ratings.Each(func(m model.MovieRatings) {
		if err != nil {
			return
		}
		var avg float64
		if avg, err = Average(m.Scores()); err != nil {
			err = fmt.Errorf("average %q: %w", m.Title, err)
			return
		}
		scored = append(scored, MovieScore{Title: m.Title, Average: avg, Ratings: len(m.Events)})
	})
	if err != nil {
		return nil, err
	}
	return truncate(sortMovies(scored), n), nil
}

// TopMoviesInGenre ranks the catalog's movies in genre (case-insensitive).
// Catalog movies without ratings are left out. No match yields an empty list.
func (e *Engine) TopMoviesInGenre(catalog *model.Catalog, ratings *model.RatingLog, genre string, n int) ([]MovieScore, error) {
	if n < 1 {
		return nil, fmt.Errorf("top movies in genre: %w", ErrInvalidLimit)
	}
	return truncate(sortMovies(e.scoreGenre(catalog, ratings, model.Key(genre), nil)), n), nil
}

// scoreGenre averages every rated catalog movie whose genre folds to key,
// skipping folded titles in exclude. Output is in catalog order.
func (e *Engine) scoreGenre(catalog *model.Catalog, ratings *model.RatingLog, key string, exclude map[string]struct{}) []MovieScore {
	scored := make([]MovieScore, 0)
	catalog.EachKeyed(func(c model.CatalogEntry, titleKey, genreKey string) {
		if genreKey != key {
			return
		}
		if _, skip := exclude[titleKey]; skip {
			return
		}
		m, ok := ratings.LookupKey(titleKey)
		if !ok {
			return
		}
		avg, err := Average(m.Scores())
		if err != nil {
			return
		}
		scored = append(scored, MovieScore{Title: c.Title, Average: avg, Ratings: len(m.Events)})
	})
	return scored
}

// genreBucket accumulates per-movie averages for one folded genre.
type genreBucket struct {
	key   string
	label string
	total float64
	count int
}

func (b *genreBucket) score() GenreScore {
	return GenreScore{
		Genre:   model.DisplayGenre(b.label),
		Average: b.total / float64(b.count),
		Movies:  b.count,
	}
}

// genreAverages walks the rating log in order, averages each catalog-matched
// movie with scoresOf, and buckets the averages by folded genre. Movies for
// which scoresOf returns nothing are skipped. Buckets come back in
// encounter order.
func genreAverages(catalog *model.Catalog, ratings *model.RatingLog, scoresOf func(model.MovieRatings) []float64) []*genreBucket {
	var order []*genreBucket
	buckets := make(map[string]*genreBucket)
	ratings.EachKeyed(func(m model.MovieRatings, titleKey string) {
		c, genreKey, ok := catalog.LookupKey(titleKey)
		if !ok {
			return
		}
		avg, err := Average(scoresOf(m))
		if err != nil {
			return
		}
		b, ok := buckets[genreKey]
		if !ok {
			b = &genreBucket{key: genreKey, label: c.Genre}
			buckets[genreKey] = b
			order = append(order, b)
		}
		b.total += avg
		b.count++
	})
	return order
}

// TopGenres ranks genres by the unweighted mean of their movies' averages.
// Rated movies missing from the catalog contribute to no genre.
func (e *Engine) TopGenres(catalog *model.Catalog, ratings *model.RatingLog, n int) ([]GenreScore, error) {
	if n < 1 {
		return nil, fmt.Errorf("top genres: %w", ErrInvalidLimit)
	}
	buckets := genreAverages(catalog, ratings, model.MovieRatings.Scores)
	genres := make([]GenreScore, 0, len(buckets))
	for _, b := range buckets {
		genres = append(genres, b.score())
	}
	sort.SliceStable(genres, func(i, j int) bool { return genres[i].Average > genres[j].Average })
	if len(genres) > n {
		genres = genres[:n]
	}
	return genres, nil
}

// PreferredGenre finds the genre rater scores highest, averaging the rater's
// own scores per movie and then across movies. The first genre encountered
// wins ties. Returns ErrNoPreference when the rater has no matching scores.
func (e *Engine) PreferredGenre(catalog *model.Catalog, ratings *model.RatingLog, rater string) (Preference, error) {
	best, err := preferredBucket(catalog, ratings, rater)
	if err != nil {
		return Preference{}, err
	}
	g := best.score()
	return Preference{Genre: g.Genre, Average: g.Average, Movies: g.Movies}, nil
}

func preferredBucket(catalog *model.Catalog, ratings *model.RatingLog, rater string) (*genreBucket, error) {
	buckets := genreAverages(catalog, ratings, func(m model.MovieRatings) []float64 {
		return m.ScoresBy(rater)
	})
	if len(buckets) == 0 {
		return nil, fmt.Errorf("rater %q: %w", rater, ErrNoPreference)
	}
	best := buckets[0]
	for _, b := range buckets[1:] {
		if b.total/float64(b.count) > best.total/float64(best.count) {
			best = b
		}
	}
	return best, nil
}

// Recommend returns the best-rated movies in rater's preferred genre that
// rater has not rated. The preference is returned alongside so callers can
// report it; an empty list with a nil error means nothing is left to suggest.
func (e *Engine) Recommend(catalog *model.Catalog, ratings *model.RatingLog, rater string) ([]MovieScore, Preference, error) {
	best, err := preferredBucket(catalog, ratings, rater)
	if err != nil {
		return nil, Preference{}, err
	}
	g := best.score()
	pref := Preference{Genre: g.Genre, Average: g.Average, Movies: g.Movies}
	seen := ratings.RatedBy(rater)
	// Match on the bucket key; the display label may not fold back to it.
	recs := sortMovies(e.scoreGenre(catalog, ratings, best.key, seen))
	return truncate(recs, e.recommendations), pref, nil
}

func sortMovies(movies []MovieScore) []MovieScore {
	sort.SliceStable(movies, func(i, j int) bool { return movies[i].Average > movies[j].Average })
	return movies
}

func truncate(movies []MovieScore, n int) []MovieScore {
	if len(movies) > n {
		return movies[:n]
	}
	return movies
}
