// Package match provides the matching pipeline and recommendation ranker
// built on top of the pure scorer in internal/matcher.
//
// The engine performs one bulk repository read per operation followed by
// an in-memory map/filter/sort; repository failures propagate unchanged
// to the caller. Retry policy, if any, belongs to the caller or the
// storage layer, not here.
package match

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/marqueeapp/marquee/internal/event"
	"github.com/marqueeapp/marquee/internal/matcher"
	"github.com/marqueeapp/marquee/internal/notification"
	"github.com/marqueeapp/marquee/internal/preference"
)

// Match thresholds on the 0-100 total score scale. Both are inclusive and
// evaluated independently; a score at or above EmailDigestThreshold lands
// in both partitions.
const (
	// InAppThreshold admits a user into the in-app notification partition.
	InAppThreshold = 60.0

	// EmailDigestThreshold admits a user into the email digest partition.
	EmailDigestThreshold = 80.0
)

// DefaultRecommendationPoolSize bounds how many upcoming events the ranker
// scores per request. A performance bound, not a business rule.
const DefaultRecommendationPoolSize = 100

// MatchScore pairs a user with their score against one event.
type MatchScore struct {
	UserID    string            `json:"user_id"`
	Score     float64           `json:"score"`
	Breakdown matcher.Breakdown `json:"breakdown"`
}

// Result holds the two threshold partitions produced for one event.
// The partitions are not mutually exclusive and carry no ordering
// guarantee; callers that need ranking sort independently.
type Result struct {
	InAppNotifications []MatchScore `json:"in_app_notifications"`
	EmailDigestUsers   []MatchScore `json:"email_digest_users"`
}

// RecommendedEvent pairs a candidate event with its match score for one user.
type RecommendedEvent struct {
	Event     *event.Event      `json:"event"`
	Score     float64           `json:"score"`
	Breakdown matcher.Breakdown `json:"breakdown"`
}

// Engine runs the matching pipeline and recommendation ranker.
type Engine struct {
	scorer   *matcher.Scorer
	prefs    preference.Repository
	events   event.Repository
	notifs   notification.Repository
	poolSize int
	logger   *slog.Logger
	metrics  *Metrics
}

// Option configures an Engine.
type Option func(*Engine)

// WithPoolSize overrides the recommendation candidate pool size.
func WithPoolSize(size int) Option {
	return func(e *Engine) {
		if size > 0 {
			e.poolSize = size
		}
	}
}

// WithLogger sets the engine's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithMetrics attaches Prometheus metrics to the engine.
func WithMetrics(m *Metrics) Option {
	return func(e *Engine) {
		e.metrics = m
	}
}

// NewEngine creates a match engine over the given scorer and repositories.
func NewEngine(
	scorer *matcher.Scorer,
	prefs preference.Repository,
	events event.Repository,
	notifs notification.Repository,
	opts ...Option,
) *Engine {
	e := &Engine{
		scorer:   scorer,
		prefs:    prefs,
		events:   events,
		notifs:   notifs,
		poolSize: DefaultRecommendationPoolSize,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// FindMatchingUsers scores every opted-in user against the given event and
// partitions them by the two inclusive thresholds. For each user in the
// in-app partition an idempotent notification insert is requested; a
// duplicate (user, event) pair is a silent no-op.
func (e *Engine) FindMatchingUsers(ctx context.Context, ev *event.Event) (*Result, error) {
	start := time.Now()

	optedIn, err := e.prefs.ListOptedIn(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list opted-in preferences: %w", err)
	}

	result := &Result{}
	for _, prefs := range optedIn {
		breakdown := e.scorer.Score(prefs, ev)
		total := breakdown.Total()
		e.metrics.incScoresComputed()

		score := MatchScore{
			UserID:    prefs.UserID,
			Score:     total,
			Breakdown: breakdown,
		}
		if total >= InAppThreshold {
			result.InAppNotifications = append(result.InAppNotifications, score)
			e.metrics.incMatches(TierInApp)
		}
		if total >= EmailDigestThreshold {
			result.EmailDigestUsers = append(result.EmailDigestUsers, score)
			e.metrics.incMatches(TierEmailDigest)
		}
	}

	created := 0
	for _, score := range result.InAppNotifications {
		wasCreated, err := e.notifs.CreateIfAbsent(ctx, &notification.Notification{
			UserID:    score.UserID,
			EventID:   ev.ID,
			Score:     score.Score,
			Breakdown: score.Breakdown,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create match notification: %w", err)
		}
		if wasCreated {
			created++
		}
	}

	e.metrics.observePipelineDuration(time.Since(start).Seconds())
	e.logger.Info("matched users for event",
		"event_id", ev.ID,
		"scored", len(optedIn),
		"in_app", len(result.InAppNotifications),
		"email_digest", len(result.EmailDigestUsers),
		"notifications_created", created)

	return result, nil
}

// RecommendedEvents scores upcoming published events for one user and
// returns the top limit entries sorted descending by total score. A user
// with no saved preferences gets an empty slice, not an error. Ties keep
// the candidate pool's start-date order via the stable sort, but that
// order is not part of the contract.
func (e *Engine) RecommendedEvents(ctx context.Context, userID string, limit int) ([]RecommendedEvent, error) {
	prefs, err := e.prefs.GetByUserID(ctx, userID)
	if errors.Is(err, preference.ErrNotFound) {
		return []RecommendedEvent{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch preferences: %w", err)
	}

	pool, err := e.events.ListUpcomingPublished(ctx, e.poolSize)
	if err != nil {
		return nil, fmt.Errorf("failed to list upcoming events: %w", err)
	}

	scored := make([]RecommendedEvent, 0, len(pool))
	for _, ev := range pool {
		breakdown := e.scorer.Score(prefs, ev)
		e.metrics.incScoresComputed()
		scored = append(scored, RecommendedEvent{
			Event:     ev,
			Score:     breakdown.Total(),
			Breakdown: breakdown,
		})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if limit > 0 && len(scored) > limit {
		scored = scored[:limit]
	}

	e.metrics.incRecommendationRequests()
	return scored, nil
}
