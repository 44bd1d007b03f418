// Package digest assembles per-user email digest data for a calendar day.
// The mailer that renders and sends the digest lives outside this service;
// the builder only produces the matched events each recipient should see.
package digest

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/marqueeapp/marquee/internal/event"
	"github.com/marqueeapp/marquee/internal/match"
	"github.com/marqueeapp/marquee/internal/matcher"
	"github.com/marqueeapp/marquee/internal/preference"
)

// Entry is one event selected for a user's digest.
type Entry struct {
	Event     *event.Event      `json:"event"`
	Score     float64           `json:"score"`
	Breakdown matcher.Breakdown `json:"breakdown"`
}

// UserDigest holds everything one recipient's digest email needs.
type UserDigest struct {
	UserID  string  `json:"user_id"`
	Entries []Entry `json:"entries"`
}

// Builder assembles digests from preferences and the day's events.
type Builder struct {
	scorer   *matcher.Scorer
	prefs    preference.Repository
	events   event.Repository
	poolSize int
	logger   *slog.Logger
}

// NewBuilder creates a digest builder. poolSize bounds how many upcoming
// events are fetched before the calendar-day filter; non-positive values
// fall back to the engine default.
func NewBuilder(scorer *matcher.Scorer, prefs preference.Repository, events event.Repository, poolSize int, logger *slog.Logger) *Builder {
	if poolSize <= 0 {
		poolSize = match.DefaultRecommendationPoolSize
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{
		scorer:   scorer,
		prefs:    prefs,
		events:   events,
		poolSize: poolSize,
		logger:   logger,
	}
}

// Build produces a digest per opted-in user for events starting on the
// given calendar day (in day's location). Only events scoring at or above
// the email digest threshold are included; users with nothing to report
// are omitted entirely. Entries are sorted descending by score.
func (b *Builder) Build(ctx context.Context, day time.Time) ([]UserDigest, error) {
	optedIn, err := b.prefs.ListOptedIn(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list opted-in preferences: %w", err)
	}
	if len(optedIn) == 0 {
		return []UserDigest{}, nil
	}

	upcoming, err := b.events.ListUpcomingPublished(ctx, b.poolSize)
	if err != nil {
		return nil, fmt.Errorf("failed to list upcoming events: %w", err)
	}

	var dayEvents []*event.Event
	for _, ev := range upcoming {
		if sameDay(ev.StartDate, day) {
			dayEvents = append(dayEvents, ev)
		}
	}
	if len(dayEvents) == 0 {
		return []UserDigest{}, nil
	}

	var digests []UserDigest
	for _, prefs := range optedIn {
		var entries []Entry
		for _, ev := range dayEvents {
			breakdown := b.scorer.Score(prefs, ev)
			total := breakdown.Total()
			if total >= match.EmailDigestThreshold {
				entries = append(entries, Entry{
					Event:     ev,
					Score:     total,
					Breakdown: breakdown,
				})
			}
		}
		if len(entries) == 0 {
			continue
		}
		sort.SliceStable(entries, func(i, j int) bool {
			return entries[i].Score > entries[j].Score
		})
		digests = append(digests, UserDigest{
			UserID:  prefs.UserID,
			Entries: entries,
		})
	}

	b.logger.Info("built match digests",
		"day", day.Format("2006-01-02"),
		"events", len(dayEvents),
		"recipients", len(digests))

	return digests, nil
}

// sameDay reports whether t falls on the same calendar day as day,
// evaluated in day's location.
func sameDay(t, day time.Time) bool {
	y1, m1, d1 := t.In(day.Location()).Date()
	y2, m2, d2 := day.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}
