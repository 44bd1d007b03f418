package notification

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
)

// PostgresRepository implements Repository using PostgreSQL.
type PostgresRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresRepository creates a new Postgres-backed notification repository.
func NewPostgresRepository(db *sql.DB, logger *slog.Logger) *PostgresRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresRepository{db: db, logger: logger}
}

// CreateIfAbsent inserts a notification unless the (user, event) pair
// exists, relying on the unique index for idempotency. A conflicting
// insert is a no-op, not an error.
func (r *PostgresRepository) CreateIfAbsent(ctx context.Context, n *Notification) (bool, error) {
	if n.UserID == "" {
		return false, ErrMissingUserID
	}
	if n.EventID == "" {
		return false, ErrMissingEventID
	}

	id := n.ID
	if id == "" {
		id = uuid.New().String()
	}

	breakdown, err := json.Marshal(n.Breakdown)
	if err != nil {
		return false, fmt.Errorf("failed to encode breakdown: %w", err)
	}

	query := `
		INSERT INTO match_notifications (id, user_id, event_id, score, breakdown)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id, event_id) DO NOTHING`

	result, err := r.db.ExecContext(ctx, query, id, n.UserID, n.EventID, n.Score, breakdown)
	if err != nil {
		return false, fmt.Errorf("failed to insert notification: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}
	return rows > 0, nil
}

// ListByUser returns a user's notifications, newest first.
func (r *PostgresRepository) ListByUser(ctx context.Context, userID string) ([]*Notification, error) {
	query := `
		SELECT id, user_id, event_id, score, breakdown, created_at
		FROM match_notifications
		WHERE user_id = $1
		ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query notifications: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			r.logger.Warn("failed to close notification rows", "error", err)
		}
	}()

	var result []*Notification
	for rows.Next() {
		var (
			n         Notification
			breakdown []byte
		)
		err := rows.Scan(&n.ID, &n.UserID, &n.EventID, &n.Score, &breakdown, &n.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan notification row: %w", err)
		}
		if len(breakdown) > 0 {
			if err := json.Unmarshal(breakdown, &n.Breakdown); err != nil {
				return nil, fmt.Errorf("failed to decode breakdown: %w", err)
			}
		}
		result = append(result, &n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate notification rows: %w", err)
	}
	return result, nil
}
