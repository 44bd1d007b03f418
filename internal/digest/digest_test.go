package digest

import (
	"context"
	"testing"
	"time"

	"github.com/marqueeapp/marquee/internal/event"
	"github.com/marqueeapp/marquee/internal/matcher"
	"github.com/marqueeapp/marquee/internal/preference"
)

func seedEvent(t *testing.T, repo *event.InMemoryRepository, ev *event.Event) {
	t.Helper()
	if err := repo.Insert(context.Background(), ev); err != nil {
		t.Fatalf("failed to seed event %s: %v", ev.ID, err)
	}
}

func seedPrefs(t *testing.T, repo *preference.InMemoryRepository, prefs *preference.Preferences) {
	t.Helper()
	if err := repo.Upsert(context.Background(), prefs); err != nil {
		t.Fatalf("failed to seed preferences: %v", err)
	}
}

func TestBuildFiltersByCalendarDay(t *testing.T) {
	now := time.Date(2024, 1, 1, 6, 0, 0, 0, time.UTC)
	day := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)

	eventRepo := event.NewInMemoryRepository()
	eventRepo.SetNowFunc(func() time.Time { return now })

	// High-scoring fixture: 30+25+20+15+5 = 95 for jazz concerts on Tuesday.
	strongMatch := func(id string, start time.Time) *event.Event {
		return &event.Event{
			ID:        id,
			Category:  event.CategoryConcert,
			IsFree:    true,
			StartDate: start,
			Status:    event.StatusPublished,
		}
	}
	seedEvent(t, eventRepo, strongMatch("on-day", time.Date(2024, 1, 2, 20, 0, 0, 0, time.UTC)))
	seedEvent(t, eventRepo, strongMatch("next-day", time.Date(2024, 1, 3, 20, 0, 0, 0, time.UTC)))

	prefRepo := preference.NewInMemoryRepository()
	seedPrefs(t, prefRepo, &preference.Preferences{
		UserID:            "user-1",
		Categories:        map[event.Category]int{event.CategoryConcert: 5},
		Genres:            []string{"jazz"},
		IncludeFreeEvents: true,
		PreferredDays:     []string{"tuesday", "wednesday"},
		NotifyMatches:     true,
	})

	builder := NewBuilder(matcher.NewScorer(nil), prefRepo, eventRepo, 100, nil)

	digests, err := builder.Build(context.Background(), day)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(digests) != 1 {
		t.Fatalf("expected 1 digest, got %d", len(digests))
	}
	if len(digests[0].Entries) != 1 {
		t.Fatalf("expected 1 entry for the digest day, got %d", len(digests[0].Entries))
	}
	if digests[0].Entries[0].Event.ID != "on-day" {
		t.Errorf("expected the on-day event, got %s", digests[0].Entries[0].Event.ID)
	}
}

func TestBuildOmitsUsersBelowThreshold(t *testing.T) {
	now := time.Date(2024, 1, 1, 6, 0, 0, 0, time.UTC)
	day := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)

	eventRepo := event.NewInMemoryRepository()
	eventRepo.SetNowFunc(func() time.Time { return now })
	seedEvent(t, eventRepo, &event.Event{
		ID:        "concert",
		Category:  event.CategoryConcert,
		IsFree:    true,
		StartDate: time.Date(2024, 1, 2, 20, 0, 0, 0, time.UTC),
		Status:    event.StatusPublished,
	})

	prefRepo := preference.NewInMemoryRepository()
	// Scores 95: included.
	seedPrefs(t, prefRepo, &preference.Preferences{
		UserID:            "user-fan",
		Categories:        map[event.Category]int{event.CategoryConcert: 5},
		Genres:            []string{"jazz"},
		IncludeFreeEvents: true,
		PreferredDays:     []string{"tuesday"},
		NotifyMatches:     true,
	})
	// Scores 63: below the digest threshold, omitted entirely.
	seedPrefs(t, prefRepo, &preference.Preferences{
		UserID:            "user-casual",
		Categories:        map[event.Category]int{event.CategoryConcert: 3},
		IncludeFreeEvents: true,
		NotifyMatches:     true,
	})

	builder := NewBuilder(matcher.NewScorer(nil), prefRepo, eventRepo, 100, nil)

	digests, err := builder.Build(context.Background(), day)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(digests) != 1 {
		t.Fatalf("expected 1 digest, got %d", len(digests))
	}
	if digests[0].UserID != "user-fan" {
		t.Errorf("expected digest for user-fan, got %s", digests[0].UserID)
	}
}

func TestBuildSortsEntriesByScore(t *testing.T) {
	now := time.Date(2024, 1, 1, 6, 0, 0, 0, time.UTC)
	day := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)

	eventRepo := event.NewInMemoryRepository()
	eventRepo.SetNowFunc(func() time.Time { return now })
	// With the fixture below the concert scores 95 and the dance event 89.
	seedEvent(t, eventRepo, &event.Event{
		ID:        "dance",
		Category:  event.CategoryDance,
		IsFree:    true,
		StartDate: time.Date(2024, 1, 2, 18, 0, 0, 0, time.UTC),
		Status:    event.StatusPublished,
	})
	seedEvent(t, eventRepo, &event.Event{
		ID:        "concert",
		Category:  event.CategoryConcert,
		IsFree:    true,
		StartDate: time.Date(2024, 1, 2, 21, 0, 0, 0, time.UTC),
		Status:    event.StatusPublished,
	})

	prefRepo := preference.NewInMemoryRepository()
	seedPrefs(t, prefRepo, &preference.Preferences{
		UserID: "user-1",
		Categories: map[event.Category]int{
			event.CategoryConcert: 5,
			event.CategoryDance:   4,
		},
		Genres:            []string{"jazz", "ballet"},
		IncludeFreeEvents: true,
		PreferredDays:     []string{"tuesday"},
		NotifyMatches:     true,
	})

	builder := NewBuilder(matcher.NewScorer(nil), prefRepo, eventRepo, 100, nil)

	digests, err := builder.Build(context.Background(), day)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(digests) != 1 {
		t.Fatalf("expected 1 digest, got %d", len(digests))
	}

	entries := digests[0].Entries
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Event.ID != "concert" {
		t.Errorf("expected highest-scoring entry first, got %s", entries[0].Event.ID)
	}
	if entries[0].Score < entries[1].Score {
		t.Errorf("entries out of order: %f before %f", entries[0].Score, entries[1].Score)
	}
}

func TestBuildNoEventsOnDay(t *testing.T) {
	now := time.Date(2024, 1, 1, 6, 0, 0, 0, time.UTC)

	eventRepo := event.NewInMemoryRepository()
	eventRepo.SetNowFunc(func() time.Time { return now })
	seedEvent(t, eventRepo, &event.Event{
		ID:        "concert",
		Category:  event.CategoryConcert,
		IsFree:    true,
		StartDate: time.Date(2024, 1, 5, 20, 0, 0, 0, time.UTC),
		Status:    event.StatusPublished,
	})

	prefRepo := preference.NewInMemoryRepository()
	seedPrefs(t, prefRepo, &preference.Preferences{
		UserID:        "user-1",
		NotifyMatches: true,
	})

	builder := NewBuilder(matcher.NewScorer(nil), prefRepo, eventRepo, 100, nil)

	digests, err := builder.Build(context.Background(), time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(digests) != 0 {
		t.Errorf("expected no digests for a quiet day, got %d", len(digests))
	}
}
