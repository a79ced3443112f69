package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	json "github.com/goccy/go-json"

	"github.com/okian/reelrank/internal/adapters/loader"
	service "github.com/okian/reelrank/internal/app"
	"github.com/okian/reelrank/internal/domain/model"
)

const maxReloadBody = 64 << 10

// ReloadDependencies defines the interface for snapshot reloads.
type ReloadDependencies interface {
	Reload(ctx context.Context, moviesFile, ratingsFile string) (*model.Snapshot, error)
}

// ReloadHandler handles reload requests.
type ReloadHandler struct {
	deps    ReloadDependencies
	dataDir string
}

// NewReloadHandler creates a new reload handler. Paths in a request body
// must resolve inside dataDir; an empty dataDir rejects them all.
func NewReloadHandler(deps ReloadDependencies, dataDir string) *ReloadHandler {
	return &ReloadHandler{deps: deps, dataDir: dataDir}
}

// reloadRequest is the optional body of POST /reload. Empty fields keep the
// configured files; relative paths are taken from the data directory.
type reloadRequest struct {
	MoviesFile  string `json:"movies_file"`
	RatingsFile string `json:"ratings_file"`
}

type reloadResponse struct {
	SnapshotID string           `json:"snapshot_id"`
	LoadedAt   string           `json:"loaded_at"`
	Catalog    model.LoadReport `json:"catalog"`
	Ratings    model.LoadReport `json:"ratings"`
}

// HandleReload handles POST /reload requests.
func (h *ReloadHandler) HandleReload(w http.ResponseWriter, r *http.Request) {
	const op = "api.reload"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req reloadRequest
	if r.Body != nil {
		err := json.NewDecoder(io.LimitReader(r.Body, maxReloadBody)).Decode(&req)
		if err != nil && !errors.Is(err, io.EOF) {
			writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
			return
		}
	}

	movies, err := h.resolve(req.MoviesFile)
	if err != nil {
		writeError(w, http.StatusBadRequest, "path_forbidden", WrapKind(op, ErrPathForbidden, err))
		return
	}
	ratings, err := h.resolve(req.RatingsFile)
	if err != nil {
		writeError(w, http.StatusBadRequest, "path_forbidden", WrapKind(op, ErrPathForbidden, err))
		return
	}

	snap, err := h.deps.Reload(r.Context(), movies, ratings)
	switch {
	case err == nil:
	case errors.Is(err, service.ErrNoSource):
		writeError(w, http.StatusBadRequest, "no_source", Wrap(op, err))
		return
	case errors.Is(err, loader.ErrOpenSource), errors.Is(err, loader.ErrEmptyPath):
		writeError(w, http.StatusUnprocessableEntity, "bad_source", Wrap(op, err))
		return
	case errors.Is(err, service.ErrNotStarted):
		writeError(w, http.StatusServiceUnavailable, "not_ready", Wrap(op, err))
		return
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}

	writeJSON(w, http.StatusOK, reloadResponse{
		SnapshotID: snap.ID,
		LoadedAt:   snap.LoadedAt.UTC().Format(time.RFC3339),
		Catalog:    snap.CatalogReport,
		Ratings:    snap.RatingsReport,
	})
}

// resolve maps a requested path into the data directory. Blank stays blank
// so the service falls back to its configured file.
func (h *ReloadHandler) resolve(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return "", nil
	}
	if h.dataDir == "" {
		return "", fmt.Errorf("%q: no data directory configured", path)
	}
	root, err := filepath.Abs(h.dataDir)
	if err != nil {
		return "", err
	}
	target := path
	if !filepath.IsAbs(target) {
		target = filepath.Join(root, target)
	}
	target = filepath.Clean(target)
	if !within(root, target) {
		return "", fmt.Errorf("%q", path)
	}
	// Symlinks inside the directory must not lead out of it.
	if resolved, err := filepath.EvalSymlinks(target); err == nil {
		realRoot, rootErr := filepath.EvalSymlinks(root)
		if rootErr != nil || !within(realRoot, resolved) {
			return "", fmt.Errorf("%q", path)
		}
	}
	return target, nil
}

func within(root, target string) bool {
	rel, err := filepath.Rel(root, target)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) && !filepath.IsAbs(rel)
}
