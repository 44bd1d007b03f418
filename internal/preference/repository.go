package preference

import (
	"context"
	"errors"
	"sync"

	"github.com/marqueeapp/marquee/internal/event"
)

// Repository errors.
var (
	// ErrMissingUserID is returned when a record has no user ID.
	ErrMissingUserID = errors.New("preferences missing user ID")

	// ErrNotFound is returned when no preferences exist for a user.
	ErrNotFound = errors.New("preferences not found")
)

// Repository defines the data operations the match engine needs from
// preference storage.
type Repository interface {
	// GetByUserID retrieves one user's preferences.
	// Returns ErrNotFound when the user never saved preferences.
	GetByUserID(ctx context.Context, userID string) (*Preferences, error)

	// ListOptedIn returns every record with NotifyMatches set, i.e. the
	// population the matching pipeline scores against a new event.
	ListOptedIn(ctx context.Context) ([]*Preferences, error)

	// Upsert stores or replaces a user's preferences after validation.
	Upsert(ctx context.Context, prefs *Preferences) error
}

// InMemoryRepository implements Repository with in-memory storage.
// Used for testing and development.
type InMemoryRepository struct {
	mu      sync.RWMutex
	records map[string]*Preferences
}

// NewInMemoryRepository creates a new in-memory preference repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		records: make(map[string]*Preferences),
	}
}

// GetByUserID retrieves one user's preferences.
func (r *InMemoryRepository) GetByUserID(ctx context.Context, userID string) (*Preferences, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	prefs, ok := r.records[userID]
	if !ok {
		return nil, ErrNotFound
	}
	return copyPreferences(prefs), nil
}

// ListOptedIn returns every record with NotifyMatches set.
func (r *InMemoryRepository) ListOptedIn(ctx context.Context) ([]*Preferences, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*Preferences
	for _, prefs := range r.records {
		if prefs.NotifyMatches {
			result = append(result, copyPreferences(prefs))
		}
	}
	return result, nil
}

// Upsert stores or replaces a user's preferences after validation.
func (r *InMemoryRepository) Upsert(ctx context.Context, prefs *Preferences) error {
	if err := prefs.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.records[prefs.UserID] = copyPreferences(prefs)
	return nil
}

// copyPreferences deep-copies a record to prevent external mutation.
func copyPreferences(prefs *Preferences) *Preferences {
	copied := *prefs

	if prefs.Categories != nil {
		copied.Categories = make(map[event.Category]int, len(prefs.Categories))
		for cat, level := range prefs.Categories {
			copied.Categories[cat] = level
		}
	}
	copied.Genres = append([]string(nil), prefs.Genres...)
	copied.PreferredDays = append([]string(nil), prefs.PreferredDays...)

	copied.PriceMin = copyInt(prefs.PriceMin)
	copied.PriceMax = copyInt(prefs.PriceMax)
	copied.HomeLatitude = copyFloat(prefs.HomeLatitude)
	copied.HomeLongitude = copyFloat(prefs.HomeLongitude)
	copied.MaxDistance = copyFloat(prefs.MaxDistance)

	return &copied
}

func copyInt(v *int) *int {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func copyFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
