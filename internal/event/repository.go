package event

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"
)

// Repository errors.
var (
	// ErrNotFound is returned when an event does not exist.
	ErrNotFound = errors.New("event not found")

	// ErrMissingID is returned when inserting an event without an ID.
	ErrMissingID = errors.New("event missing ID")
)

// Repository defines the data operations the match engine needs from
// event storage. Events are written by the web app; the engine only
// needs reads plus Insert for seeding and tests.
type Repository interface {
	// GetByID retrieves an event with its venue attached.
	// Returns ErrNotFound when the event does not exist.
	GetByID(ctx context.Context, id string) (*Event, error)

	// ListUpcomingPublished returns published events starting at or after
	// now, ordered by start date ascending, limited to limit entries.
	// Each event has its venue attached.
	ListUpcomingPublished(ctx context.Context, limit int) ([]*Event, error)

	// Insert stores a new event.
	Insert(ctx context.Context, ev *Event) error
}

// InMemoryRepository implements Repository with in-memory storage.
// Used for testing and development.
type InMemoryRepository struct {
	mu     sync.RWMutex
	events map[string]*Event

	// now is swappable so tests can pin the upcoming-event cutoff.
	now func() time.Time
}

// NewInMemoryRepository creates a new in-memory event repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		events: make(map[string]*Event),
		now:    time.Now,
	}
}

// SetNowFunc overrides the clock used for the upcoming-event cutoff.
// Intended for tests.
func (r *InMemoryRepository) SetNowFunc(now func() time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.now = now
}

// GetByID retrieves an event by its ID.
func (r *InMemoryRepository) GetByID(ctx context.Context, id string) (*Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ev, ok := r.events[id]
	if !ok {
		return nil, ErrNotFound
	}
	return copyEvent(ev), nil
}

// ListUpcomingPublished returns published events starting at or after now,
// ordered by start date ascending, limited to limit entries.
func (r *InMemoryRepository) ListUpcomingPublished(ctx context.Context, limit int) ([]*Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cutoff := r.now()
	var result []*Event
	for _, ev := range r.events {
		if ev.Status == StatusPublished && !ev.StartDate.Before(cutoff) {
			result = append(result, copyEvent(ev))
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].StartDate.Before(result[j].StartDate)
	})

	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

// Insert stores a new event.
func (r *InMemoryRepository) Insert(ctx context.Context, ev *Event) error {
	if ev.ID == "" {
		return ErrMissingID
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.events[ev.ID] = copyEvent(ev)
	return nil
}

// copyEvent deep-copies an event to prevent external mutation.
func copyEvent(ev *Event) *Event {
	copied := *ev
	if ev.Venue != nil {
		venue := *ev.Venue
		if ev.Venue.Latitude != nil {
			lat := *ev.Venue.Latitude
			venue.Latitude = &lat
		}
		if ev.Venue.Longitude != nil {
			lng := *ev.Venue.Longitude
			venue.Longitude = &lng
		}
		copied.Venue = &venue
	}
	if ev.PriceMin != nil {
		v := *ev.PriceMin
		copied.PriceMin = &v
	}
	if ev.PriceMax != nil {
		v := *ev.PriceMax
		copied.PriceMax = &v
	}
	return &copied
}
