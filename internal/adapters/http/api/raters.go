package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/okian/reelrank/internal/domain/types"
)

// RatersDependencies defines the interface for per-rater queries.
type RatersDependencies interface {
	Preference(ctx context.Context, rater string) (types.Preference, error)
	Recommend(ctx context.Context, rater string) (types.Recommendations, error)
}

// RatersHandler handles rater requests.
type RatersHandler struct {
	deps RatersDependencies
}

// NewRatersHandler creates a new raters handler.
func NewRatersHandler(deps RatersDependencies) *RatersHandler {
	return &RatersHandler{deps: deps}
}

// HandleRater handles GET /raters/{id}/preference and
// GET /raters/{id}/recommendations requests.
func (h *RatersHandler) HandleRater(w http.ResponseWriter, r *http.Request) {
	const op = "api.rater"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	parts := strings.Split(strings.TrimPrefix(r.URL.Path, "/raters/"), "/")
	if len(parts) != 2 {
		http.NotFound(w, r)
		return
	}
	rater := strings.TrimSpace(parts[0])
	if rater == "" {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrMissingRater))
		return
	}

	switch parts[1] {
	case "preference":
		pref, err := h.deps.Preference(r.Context(), rater)
		if err != nil {
			writeQueryError(w, op+".preference", err)
			return
		}
		writeJSON(w, http.StatusOK, pref)
	case "recommendations":
		recs, err := h.deps.Recommend(r.Context(), rater)
		if err != nil {
			writeQueryError(w, op+".recommendations", err)
			return
		}
		if recs.Movies == nil {
			recs.Movies = []types.MovieEntry{}
		}
		writeJSON(w, http.StatusOK, recs)
	default:
		http.NotFound(w, r)
	}
}
