// Package notification provides the in-app match notification model and
// repositories with idempotent-insert semantics.
package notification

import (
	"time"

	"github.com/marqueeapp/marquee/internal/matcher"
)

// Notification is one in-app match notification for a (user, event) pair.
// At most one notification exists per pair; repeated match runs for the
// same event are silently deduplicated by the repository.
type Notification struct {
	ID        string
	UserID    string
	EventID   string
	Score     float64
	Breakdown matcher.Breakdown
	CreatedAt time.Time
}
