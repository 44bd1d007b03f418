package event

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// PostgresRepository implements Repository using PostgreSQL.
type PostgresRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresRepository creates a new Postgres-backed event repository.
func NewPostgresRepository(db *sql.DB, logger *slog.Logger) *PostgresRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresRepository{db: db, logger: logger}
}

const eventColumns = `
	e.id, e.title, e.category, e.is_free, e.price_min, e.price_max,
	e.start_date, e.status,
	v.id, v.name, v.latitude, v.longitude`

const eventJoin = `
	FROM events e
	LEFT JOIN venues v ON v.id = e.venue_id`

// GetByID retrieves an event with its venue attached.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*Event, error) {
	query := `SELECT` + eventColumns + eventJoin + `
		WHERE e.id = $1`

	row := r.db.QueryRowContext(ctx, query, id)
	ev, err := scanEvent(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query event: %w", err)
	}
	return ev, nil
}

// ListUpcomingPublished returns published events starting at or after now,
// ordered by start date ascending, limited to limit entries.
func (r *PostgresRepository) ListUpcomingPublished(ctx context.Context, limit int) ([]*Event, error) {
	query := `SELECT` + eventColumns + eventJoin + `
		WHERE e.status = 'published' AND e.start_date >= NOW()
		ORDER BY e.start_date ASC
		LIMIT $1`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query upcoming events: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			r.logger.Warn("failed to close event rows", "error", err)
		}
	}()

	var result []*Event
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event row: %w", err)
		}
		result = append(result, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate event rows: %w", err)
	}
	return result, nil
}

// Insert stores a new event. The venue must already exist.
func (r *PostgresRepository) Insert(ctx context.Context, ev *Event) error {
	if ev.ID == "" {
		return ErrMissingID
	}

	query := `
		INSERT INTO events (id, title, category, is_free, price_min, price_max,
			start_date, status, venue_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	var venueID *string
	if ev.Venue != nil && ev.Venue.ID != "" {
		venueID = &ev.Venue.ID
	}

	_, err := r.db.ExecContext(ctx, query,
		ev.ID,
		ev.Title,
		string(ev.Category),
		ev.IsFree,
		ev.PriceMin,
		ev.PriceMax,
		ev.StartDate,
		string(ev.Status),
		venueID,
	)
	if err != nil {
		return fmt.Errorf("failed to insert event: %w", err)
	}
	return nil
}

// rowScanner abstracts *sql.Row and *sql.Rows for shared scanning.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanEvent scans one joined events/venues row into an Event.
func scanEvent(row rowScanner) (*Event, error) {
	var (
		ev        Event
		category  string
		status    string
		venueID   sql.NullString
		venueName sql.NullString
		venueLat  sql.NullFloat64
		venueLng  sql.NullFloat64
	)

	err := row.Scan(
		&ev.ID,
		&ev.Title,
		&category,
		&ev.IsFree,
		&ev.PriceMin,
		&ev.PriceMax,
		&ev.StartDate,
		&status,
		&venueID,
		&venueName,
		&venueLat,
		&venueLng,
	)
	if err != nil {
		return nil, err
	}

	ev.Category = Category(category)
	ev.Status = Status(status)

	if venueID.Valid {
		venue := &Venue{ID: venueID.String, Name: venueName.String}
		if venueLat.Valid {
			lat := venueLat.Float64
			venue.Latitude = &lat
		}
		if venueLng.Valid {
			lng := venueLng.Float64
			venue.Longitude = &lng
		}
		ev.Venue = venue
	}

	return &ev, nil
}
