package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/marqueeapp/marquee/internal/event"
	"github.com/marqueeapp/marquee/internal/match"
	"github.com/marqueeapp/marquee/internal/middleware"
)

// MatchHandlers serves the event-published hook: running the matching
// pipeline for an event and fanning out in-app notifications.
type MatchHandlers struct {
	engine *match.Engine
	events event.Repository
	logger *slog.Logger
}

// NewMatchHandlers creates handlers for the matching pipeline endpoints.
func NewMatchHandlers(engine *match.Engine, events event.Repository, logger *slog.Logger) *MatchHandlers {
	if logger == nil {
		logger = slog.Default()
	}
	return &MatchHandlers{
		engine: engine,
		events: events,
		logger: logger,
	}
}

// RunMatch handles POST /internal/events/{id}/matches.
//
// The web app calls this when an event transitions to published. The
// response carries both threshold partitions; in-app notifications are
// created as a side effect, idempotently, so re-publishing an event does
// not duplicate them.
func (h *MatchHandlers) RunMatch(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("id")
	if eventID == "" {
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeBadRequest)
		WriteError(w, ctx, http.StatusBadRequest, ErrCodeBadRequest, "event ID is required")
		return
	}

	ev, err := h.events.GetByID(r.Context(), eventID)
	if errors.Is(err, event.ErrNotFound) {
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeEventNotFound)
		WriteError(w, ctx, http.StatusNotFound, ErrCodeEventNotFound, "event not found")
		return
	}
	if err != nil {
		h.logger.Error("failed to fetch event for matching", "event_id", eventID, "error", err)
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeInternal)
		WriteError(w, ctx, http.StatusInternalServerError, ErrCodeInternal, "failed to fetch event")
		return
	}

	result, err := h.engine.FindMatchingUsers(r.Context(), ev)
	if err != nil {
		h.logger.Error("matching pipeline failed", "event_id", eventID, "error", err)
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeInternal)
		WriteError(w, ctx, http.StatusInternalServerError, ErrCodeInternal, "matching pipeline failed")
		return
	}

	WriteJSON(w, r.Context(), http.StatusOK, result)
}
