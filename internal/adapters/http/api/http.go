// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"

	"github.com/okian/reelrank/internal/domain/ranking"
)

const defaultMaxLimit = 100

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	MoviesDependencies
	GenresDependencies
	RatersDependencies
	ReloadDependencies
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler *HealthHandler
	statsHandler  *StatsHandler
	moviesHandler *MoviesHandler
	genresHandler *GenresHandler
	ratersHandler *RatersHandler
	reloadHandler *ReloadHandler
}

// ServerOption applies a configuration option to the Server.
type ServerOption func(*serverConfig)

type serverConfig struct {
	dataDir string
}

// WithDataDir allows POST /reload to name files under dir. Without it the
// endpoint only reloads the configured files.
func WithDataDir(dir string) ServerOption {
	return func(c *serverConfig) { c.dataDir = strings.TrimSpace(dir) }
}

// NewServer creates a new API server with all handlers. maxLimit caps the
// limit query parameter; values below 1 fall back to the default.
func NewServer(deps Dependencies, statsProvider StatsProvider, maxLimit int, opts ...ServerOption) *Server {
	if maxLimit < 1 {
		maxLimit = defaultMaxLimit
	}
	var cfg serverConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Server{
		healthHandler: NewHealthHandler(),
		statsHandler:  NewStatsHandler(statsProvider),
		moviesHandler: NewMoviesHandler(deps, maxLimit),
		genresHandler: NewGenresHandler(deps, maxLimit),
		ratersHandler: NewRatersHandler(deps),
		reloadHandler: NewReloadHandler(deps, cfg.dataDir),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/movies/top", MetricsMiddleware(s.moviesHandler.HandleTopMovies, "movies_top"))
	mux.HandleFunc("/genres/top", MetricsMiddleware(s.genresHandler.HandleTopGenres, "genres_top"))
	mux.HandleFunc("/genres/movies", MetricsMiddleware(s.genresHandler.HandleGenreMovies, "genres_movies"))
	mux.HandleFunc("/raters/", MetricsMiddleware(s.ratersHandler.HandleRater, "raters"))
	mux.HandleFunc("/reload", MetricsMiddleware(s.reloadHandler.HandleReload, "reload"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// parseLimit reads the limit query parameter, which must be in [1, maxLimit].
func parseLimit(op string, r *http.Request, maxLimit int) (int, string, error) {
	n, err := strconv.Atoi(strings.TrimSpace(r.URL.Query().Get("limit")))
	if err != nil || n < 1 {
		return 0, "bad_request", NewKind(op, ErrBadRequest)
	}
	if n > maxLimit {
		return 0, "limit_exceeded", NewKind(op, ErrLimitExceeded)
	}
	return n, "", nil
}

// writeQueryError maps domain errors to HTTP responses.
func writeQueryError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, ranking.ErrInvalidLimit):
		writeError(w, http.StatusBadRequest, "bad_request", Wrap(op, err))
	case errors.Is(err, ranking.ErrNoPreference):
		writeError(w, http.StatusNotFound, "no_preference", Wrap(op, err))
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
	}
}
