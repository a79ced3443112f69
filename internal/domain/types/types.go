// Package types contains the read shapes returned by service queries.
package types

// MovieEntry is one ranked movie.
type MovieEntry struct {
	Rank    int     `json:"rank"`
	Title   string  `json:"title"`
	Average float64 `json:"average"`
	Ratings int     `json:"ratings"`
}

// GenreEntry is one ranked genre.
type GenreEntry struct {
	Rank    int     `json:"rank"`
	Genre   string  `json:"genre"`
	Average float64 `json:"average"`
	Movies  int     `json:"movies"`
}

// Preference is a rater's inferred favourite genre.
type Preference struct {
	RaterID string  `json:"rater_id"`
	Genre   string  `json:"genre"`
	Average float64 `json:"average"`
	Movies  int     `json:"movies"`
}

// Recommendations lists unseen movies from a rater's preferred genre.
// An empty Movies list is a valid answer.
type Recommendations struct {
	RaterID string       `json:"rater_id"`
	Genre   string       `json:"genre"`
	Movies  []MovieEntry `json:"movies"`
}
