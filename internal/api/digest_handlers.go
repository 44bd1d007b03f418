package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/marqueeapp/marquee/internal/digest"
	"github.com/marqueeapp/marquee/internal/middleware"
)

// DigestHandlers serves the scheduled digest job's entry point.
type DigestHandlers struct {
	builder *digest.Builder
	logger  *slog.Logger
}

// NewDigestHandlers creates handlers for digest endpoints.
func NewDigestHandlers(builder *digest.Builder, logger *slog.Logger) *DigestHandlers {
	if logger == nil {
		logger = slog.Default()
	}
	return &DigestHandlers{builder: builder, logger: logger}
}

// digestResponse is the JSON body for GET /internal/digests.
type digestResponse struct {
	Date    string              `json:"date"`
	Digests []digest.UserDigest `json:"digests"`
}

// GetDigests handles GET /internal/digests?date=YYYY-MM-DD.
//
// The external digest scheduler calls this once per day and hands the
// result to the mailer. An omitted date defaults to today (server time).
func (h *DigestHandlers) GetDigests(w http.ResponseWriter, r *http.Request) {
	day := time.Now()
	if raw := r.URL.Query().Get("date"); raw != "" {
		parsed, err := time.ParseInLocation("2006-01-02", raw, time.Local)
		if err != nil {
			ctx := middleware.SetErrorCode(r.Context(), ErrCodeValidation)
			WriteError(w, ctx, http.StatusBadRequest, ErrCodeValidation, "date must be in YYYY-MM-DD format")
			return
		}
		day = parsed
	}

	digests, err := h.builder.Build(r.Context(), day)
	if err != nil {
		h.logger.Error("failed to build digests", "date", day.Format("2006-01-02"), "error", err)
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeInternal)
		WriteError(w, ctx, http.StatusInternalServerError, ErrCodeInternal, "failed to build digests")
		return
	}

	WriteJSON(w, r.Context(), http.StatusOK, digestResponse{
		Date:    day.Format("2006-01-02"),
		Digests: digests,
	})
}
