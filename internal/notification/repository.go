package notification

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Repository errors.
var (
	// ErrMissingUserID is returned when a notification has no user ID.
	ErrMissingUserID = errors.New("notification missing user ID")

	// ErrMissingEventID is returned when a notification has no event ID.
	ErrMissingEventID = errors.New("notification missing event ID")
)

// Repository defines persistence for in-app match notifications.
type Repository interface {
	// CreateIfAbsent inserts a notification unless one already exists for
	// the same (user, event) pair. A duplicate pair is a silent no-op,
	// not an error. Returns true when a new notification was created.
	CreateIfAbsent(ctx context.Context, n *Notification) (bool, error)

	// ListByUser returns a user's notifications, newest first.
	ListByUser(ctx context.Context, userID string) ([]*Notification, error)
}

// InMemoryRepository implements Repository with in-memory storage.
// Used for testing and development.
type InMemoryRepository struct {
	mu      sync.RWMutex
	byPair  map[string]*Notification
	ordered []*Notification
}

// NewInMemoryRepository creates a new in-memory notification repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		byPair: make(map[string]*Notification),
	}
}

// CreateIfAbsent inserts a notification unless the (user, event) pair exists.
func (r *InMemoryRepository) CreateIfAbsent(ctx context.Context, n *Notification) (bool, error) {
	if n.UserID == "" {
		return false, ErrMissingUserID
	}
	if n.EventID == "" {
		return false, ErrMissingEventID
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	key := n.UserID + "\x00" + n.EventID
	if _, exists := r.byPair[key]; exists {
		return false, nil
	}

	copied := *n
	if copied.ID == "" {
		copied.ID = uuid.New().String()
	}
	if copied.CreatedAt.IsZero() {
		copied.CreatedAt = time.Now()
	}

	r.byPair[key] = &copied
	r.ordered = append(r.ordered, &copied)
	return true, nil
}

// ListByUser returns a user's notifications, newest first.
func (r *InMemoryRepository) ListByUser(ctx context.Context, userID string) ([]*Notification, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*Notification
	for i := len(r.ordered) - 1; i >= 0; i-- {
		if r.ordered[i].UserID == userID {
			copied := *r.ordered[i]
			result = append(result, &copied)
		}
	}
	return result, nil
}

// Count returns the total number of stored notifications. Intended for tests.
func (r *InMemoryRepository) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byPair)
}
