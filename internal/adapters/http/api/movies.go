package api

import (
	"context"
	"net/http"

	"github.com/okian/reelrank/internal/domain/types"
)

// MoviesDependencies defines the interface for movie ranking queries.
type MoviesDependencies interface {
	TopMovies(ctx context.Context, n int) ([]types.MovieEntry, error)
}

// MoviesHandler handles movie ranking requests.
type MoviesHandler struct {
	deps     MoviesDependencies
	maxLimit int
}

// NewMoviesHandler creates a new movies handler.
func NewMoviesHandler(deps MoviesDependencies, maxLimit int) *MoviesHandler {
	return &MoviesHandler{deps: deps, maxLimit: maxLimit}
}

// HandleTopMovies handles GET /movies/top?limit=N requests.
func (h *MoviesHandler) HandleTopMovies(w http.ResponseWriter, r *http.Request) {
	const op = "api.top_movies"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	n, code, err := parseLimit(op, r, h.maxLimit)
	if err != nil {
		writeError(w, http.StatusBadRequest, code, err)
		return
	}
	movies, err := h.deps.TopMovies(r.Context(), n)
	if err != nil {
		writeQueryError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, movies)
}
