package api

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/marqueeapp/marquee/internal/match"
	"github.com/marqueeapp/marquee/internal/middleware"
)

// DefaultRecommendationLimit is applied when the caller omits ?limit.
const DefaultRecommendationLimit = 10

// MaxRecommendationLimit caps how many recommendations one request may ask for.
const MaxRecommendationLimit = 50

// RecommendationHandlers serves per-user event recommendations.
type RecommendationHandlers struct {
	engine *match.Engine
	logger *slog.Logger
}

// NewRecommendationHandlers creates handlers for recommendation endpoints.
func NewRecommendationHandlers(engine *match.Engine, logger *slog.Logger) *RecommendationHandlers {
	if logger == nil {
		logger = slog.Default()
	}
	return &RecommendationHandlers{engine: engine, logger: logger}
}

// recommendationsResponse is the JSON body for GET recommendations.
type recommendationsResponse struct {
	UserID          string                   `json:"user_id"`
	Recommendations []match.RecommendedEvent `json:"recommendations"`
}

// GetRecommendations handles GET /users/{id}/recommendations?limit=N.
//
// A user with no saved preferences gets an empty list, not an error.
func (h *RecommendationHandlers) GetRecommendations(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("id")
	if userID == "" {
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeBadRequest)
		WriteError(w, ctx, http.StatusBadRequest, ErrCodeBadRequest, "user ID is required")
		return
	}

	limit := DefaultRecommendationLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			ctx := middleware.SetErrorCode(r.Context(), ErrCodeValidation)
			WriteError(w, ctx, http.StatusBadRequest, ErrCodeValidation, "limit must be a positive integer")
			return
		}
		limit = parsed
	}
	if limit > MaxRecommendationLimit {
		limit = MaxRecommendationLimit
	}

	recs, err := h.engine.RecommendedEvents(r.Context(), userID, limit)
	if err != nil {
		h.logger.Error("failed to build recommendations", "user_id", userID, "error", err)
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeInternal)
		WriteError(w, ctx, http.StatusInternalServerError, ErrCodeInternal, "failed to build recommendations")
		return
	}

	WriteJSON(w, r.Context(), http.StatusOK, recommendationsResponse{
		UserID:          userID,
		Recommendations: recs,
	})
}
