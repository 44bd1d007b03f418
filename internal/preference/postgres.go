package preference

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/lib/pq"

	"github.com/marqueeapp/marquee/internal/event"
)

// PostgresRepository implements Repository using PostgreSQL.
type PostgresRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresRepository creates a new Postgres-backed preference repository.
func NewPostgresRepository(db *sql.DB, logger *slog.Logger) *PostgresRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresRepository{db: db, logger: logger}
}

const preferenceColumns = `
	user_id, categories, genres, price_min, price_max,
	include_free_events, preferred_days,
	home_latitude, home_longitude, max_distance, notify_matches`

// GetByUserID retrieves one user's preferences.
func (r *PostgresRepository) GetByUserID(ctx context.Context, userID string) (*Preferences, error) {
	query := `SELECT` + preferenceColumns + `
		FROM user_preferences
		WHERE user_id = $1`

	row := r.db.QueryRowContext(ctx, query, userID)
	prefs, err := scanPreferences(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query preferences: %w", err)
	}
	return prefs, nil
}

// ListOptedIn returns every record with notify_matches set.
func (r *PostgresRepository) ListOptedIn(ctx context.Context) ([]*Preferences, error) {
	query := `SELECT` + preferenceColumns + `
		FROM user_preferences
		WHERE notify_matches = TRUE`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query opted-in preferences: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			r.logger.Warn("failed to close preference rows", "error", err)
		}
	}()

	var result []*Preferences
	for rows.Next() {
		prefs, err := scanPreferences(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan preferences row: %w", err)
		}
		result = append(result, prefs)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate preference rows: %w", err)
	}
	return result, nil
}

// Upsert stores or replaces a user's preferences after validation.
func (r *PostgresRepository) Upsert(ctx context.Context, prefs *Preferences) error {
	if err := prefs.Validate(); err != nil {
		return err
	}

	categories, err := json.Marshal(prefs.Categories)
	if err != nil {
		return fmt.Errorf("failed to encode categories: %w", err)
	}

	query := `
		INSERT INTO user_preferences (` + preferenceColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (user_id) DO UPDATE SET
			categories = EXCLUDED.categories,
			genres = EXCLUDED.genres,
			price_min = EXCLUDED.price_min,
			price_max = EXCLUDED.price_max,
			include_free_events = EXCLUDED.include_free_events,
			preferred_days = EXCLUDED.preferred_days,
			home_latitude = EXCLUDED.home_latitude,
			home_longitude = EXCLUDED.home_longitude,
			max_distance = EXCLUDED.max_distance,
			notify_matches = EXCLUDED.notify_matches,
			updated_at = NOW()`

	_, err = r.db.ExecContext(ctx, query,
		prefs.UserID,
		categories,
		pq.Array(prefs.Genres),
		prefs.PriceMin,
		prefs.PriceMax,
		prefs.IncludeFreeEvents,
		pq.Array(prefs.PreferredDays),
		prefs.HomeLatitude,
		prefs.HomeLongitude,
		prefs.MaxDistance,
		prefs.NotifyMatches,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert preferences: %w", err)
	}
	return nil
}

// rowScanner abstracts *sql.Row and *sql.Rows for shared scanning.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanPreferences scans one user_preferences row into a Preferences record.
func scanPreferences(row rowScanner) (*Preferences, error) {
	var (
		prefs      Preferences
		categories []byte
		genres     pq.StringArray
		days       pq.StringArray
	)

	err := row.Scan(
		&prefs.UserID,
		&categories,
		&genres,
		&prefs.PriceMin,
		&prefs.PriceMax,
		&prefs.IncludeFreeEvents,
		&days,
		&prefs.HomeLatitude,
		&prefs.HomeLongitude,
		&prefs.MaxDistance,
		&prefs.NotifyMatches,
	)
	if err != nil {
		return nil, err
	}

	if len(categories) > 0 {
		if err := json.Unmarshal(categories, &prefs.Categories); err != nil {
			return nil, fmt.Errorf("failed to decode categories: %w", err)
		}
	}
	if prefs.Categories == nil {
		prefs.Categories = make(map[event.Category]int)
	}
	prefs.Genres = []string(genres)
	prefs.PreferredDays = []string(days)

	return &prefs, nil
}
