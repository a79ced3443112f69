package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/okian/reelrank/internal/domain/types"
)

// GenresDependencies defines the interface for genre queries.
type GenresDependencies interface {
	TopGenres(ctx context.Context, n int) ([]types.GenreEntry, error)
	TopMoviesInGenre(ctx context.Context, genre string, n int) ([]types.MovieEntry, error)
}

// GenresHandler handles genre requests.
type GenresHandler struct {
	deps     GenresDependencies
	maxLimit int
}

// NewGenresHandler creates a new genres handler.
func NewGenresHandler(deps GenresDependencies, maxLimit int) *GenresHandler {
	return &GenresHandler{deps: deps, maxLimit: maxLimit}
}

// HandleTopGenres handles GET /genres/top?limit=N requests.
func (h *GenresHandler) HandleTopGenres(w http.ResponseWriter, r *http.Request) {
	const op = "api.top_genres"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	n, code, err := parseLimit(op, r, h.maxLimit)
	if err != nil {
		writeError(w, http.StatusBadRequest, code, err)
		return
	}
	genres, err := h.deps.TopGenres(r.Context(), n)
	if err != nil {
		writeQueryError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, genres)
}

// HandleGenreMovies handles GET /genres/movies?genre=G&limit=N requests.
// An unknown genre yields an empty list.
func (h *GenresHandler) HandleGenreMovies(w http.ResponseWriter, r *http.Request) {
	const op = "api.genre_movies"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	genre := strings.TrimSpace(r.URL.Query().Get("genre"))
	if genre == "" {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrMissingGenre))
		return
	}
	n, code, err := parseLimit(op, r, h.maxLimit)
	if err != nil {
		writeError(w, http.StatusBadRequest, code, err)
		return
	}
	movies, err := h.deps.TopMoviesInGenre(r.Context(), genre, n)
	if err != nil {
		writeQueryError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, movies)
}
