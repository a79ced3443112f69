package model

// MovieRatings holds every recorded event for one movie, in insertion order.
type MovieRatings struct {
	Title  string // first-seen spelling
	Events []RatingEvent
}

// Scores returns all scores for the movie.
func (m MovieRatings) Scores() []float64 {
	out := make([]float64, len(m.Events))
	for i, e := range m.Events {
		out[i] = e.Score
	}
	return out
}

// ScoresBy returns only the scores recorded by rater.
func (m MovieRatings) ScoresBy(rater string) []float64 {
	var out []float64
	for _, e := range m.Events {
		if e.RaterID == rater {
			out = append(out, e.Score)
		}
	}
	return out
}

// RatingLog is an immutable log of rating events grouped by folded title.
// Movies iterate in the order their first event was recorded.
type RatingLog struct {
	movies []MovieRatings
	keys   []string // folded titles, parallel to movies
	index  map[string]int
	events int
	raters map[string]struct{}
}

// NewRatingLog groups events by title. Duplicate (title, rater) pairs are
// kept; every event counts.
func NewRatingLog(events ...RatingEvent) *RatingLog {
	l := &RatingLog{
		index:  make(map[string]int),
		raters: make(map[string]struct{}),
	}
	for _, e := range events {
		k := Key(e.Title)
		i, ok := l.index[k]
		if !ok {
			i = len(l.movies)
			l.index[k] = i
			l.movies = append(l.movies, MovieRatings{Title: e.Title})
			l.keys = append(l.keys, k)
		}
		l.movies[i].Events = append(l.movies[i].Events, e)
		l.raters[e.RaterID] = struct{}{}
		l.events++
	}
	return l
}

// Len returns the number of distinct rated movies. Safe on a nil log.
func (l *RatingLog) Len() int {
	if l == nil {
		return 0
	}
	return len(l.movies)
}

// EventCount returns the total number of rating events.
func (l *RatingLog) EventCount() int {
	if l == nil {
		return 0
	}
	return l.events
}

// RaterCount returns the number of distinct raters.
func (l *RatingLog) RaterCount() int {
	if l == nil {
		return 0
	}
	return len(l.raters)
}

// Lookup returns the ratings recorded for title, ignoring case.
func (l *RatingLog) Lookup(title string) (MovieRatings, bool) {
	return l.LookupKey(Key(title))
}

// LookupKey returns the ratings recorded under an already folded title.
func (l *RatingLog) LookupKey(titleKey string) (MovieRatings, bool) {
	if l == nil {
		return MovieRatings{}, false
	}
	i, ok := l.index[titleKey]
	if !ok {
		return MovieRatings{}, false
	}
	return l.movies[i], true
}

// Each calls fn for every movie in encounter order.
func (l *RatingLog) Each(fn func(MovieRatings)) {
	if l == nil {
		return
	}
	for _, m := range l.movies {
		fn(m)
	}
}

// EachKeyed is Each with the movie's folded title.
func (l *RatingLog) EachKeyed(fn func(m MovieRatings, titleKey string)) {
	if l == nil {
		return
	}
	for i, m := range l.movies {
		fn(m, l.keys[i])
	}
}

// RatedBy returns the folded titles of every movie rater has rated at least once.
func (l *RatingLog) RatedBy(rater string) map[string]struct{} {
	out := make(map[string]struct{})
	l.EachKeyed(func(m MovieRatings, k string) {
		for _, e := range m.Events {
			if e.RaterID == rater {
				out[k] = struct{}{}
				return
			}
		}
	})
	return out
}
