package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yardops/compliance-worker/internal/compliance"
	"github.com/yardops/compliance-worker/internal/db"
)

// Tx is an alias for pgx.Tx
type Tx = pgx.Tx

// Repository handles database operations. It satisfies the store interfaces
// of the notify, report and service packages.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new repository
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// GetMeterByNumber resolves a meter by its human-readable number.
func (r *Repository) GetMeterByNumber(ctx context.Context, meterNumber string) (*db.Meter, error) {
	query := `
		SELECT id, meter_number, meter_type_id, location_id, frequency, created_at
		FROM meters
		WHERE meter_number = $1
	`

	var meter db.Meter
	err := r.pool.QueryRow(ctx, query, meterNumber).Scan(
		&meter.ID,
		&meter.MeterNumber,
		&meter.MeterTypeID,
		&meter.LocationID,
		&meter.Frequency,
		&meter.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query meter by number: %w", err)
	}

	return &meter, nil
}

// GetMeterByID resolves a meter by id.
func (r *Repository) GetMeterByID(ctx context.Context, id uuid.UUID) (*db.Meter, error) {
	query := `
		SELECT id, meter_number, meter_type_id, location_id, frequency, created_at
		FROM meters
		WHERE id = $1
	`

	var meter db.Meter
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&meter.ID,
		&meter.MeterNumber,
		&meter.MeterTypeID,
		&meter.LocationID,
		&meter.Frequency,
		&meter.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query meter by id: %w", err)
	}

	return &meter, nil
}

// GetLocationByID resolves a location by id.
func (r *Repository) GetLocationByID(ctx context.Context, id uuid.UUID) (*db.Location, error) {
	query := `
		SELECT id, name, description, created_at
		FROM locations
		WHERE id = $1
	`

	var location db.Location
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&location.ID,
		&location.Name,
		&location.Description,
		&location.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query location: %w", err)
	}

	return &location, nil
}

// GetUserByID resolves a user by id.
func (r *Repository) GetUserByID(ctx context.Context, id uuid.UUID) (*db.User, error) {
	query := `
		SELECT id, email, first_name, last_name, role, created_at
		FROM users
		WHERE id = $1
	`

	var user db.User
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&user.ID,
		&user.Email,
		&user.FirstName,
		&user.LastName,
		&user.Role,
		&user.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query user: %w", err)
	}

	return &user, nil
}

// HasAssignment reports whether the user holds an active assignment for the
// meter.
func (r *Repository) HasAssignment(ctx context.Context, meterID, userID uuid.UUID) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM meter_assignments
			WHERE meter_id = $1 AND user_id = $2
		)
	`

	var exists bool
	if err := r.pool.QueryRow(ctx, query, meterID, userID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check assignment: %w", err)
	}

	return exists, nil
}

// CreateAssignment inserts a meter assignment. Returns false when the
// (meter, user) pair is already assigned.
func (r *Repository) CreateAssignment(ctx context.Context, a *db.MeterAssignment) (bool, error) {
	query := `
		INSERT INTO meter_assignments (id, meter_id, user_id, assigned_at, assigned_by)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (meter_id, user_id) DO NOTHING
	`

	tag, err := r.pool.Exec(ctx, query, a.ID, a.MeterID, a.UserID, a.AssignedAt, a.AssignedBy)
	if err != nil {
		return false, fmt.Errorf("failed to insert assignment: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

// InsertReading inserts a reading row.
func (r *Repository) InsertReading(ctx context.Context, reading *db.Reading) error {
	query := `
		INSERT INTO readings (id, meter_id, user_id, value, reading_date, comment, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.pool.Exec(ctx, query,
		reading.ID,
		reading.MeterID,
		reading.UserID,
		reading.Value,
		reading.ReadingDate,
		reading.Comment,
		reading.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert reading: %w", err)
	}

	return nil
}

// CountReadings counts all readings.
func (r *Repository) CountReadings(ctx context.Context) (int, error) {
	var count int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM readings`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count readings: %w", err)
	}
	return count, nil
}

// CountReadingsSince counts readings dated on or after the given instant.
func (r *Repository) CountReadingsSince(ctx context.Context, since time.Time) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM readings WHERE reading_date >= $1`
	if err := r.pool.QueryRow(ctx, query, since).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count recent readings: %w", err)
	}
	return count, nil
}

// ListMeterSnapshots loads every meter with its assignment count and latest
// reading date, the input to fleet aggregation.
func (r *Repository) ListMeterSnapshots(ctx context.Context) ([]compliance.MeterSnapshot, error) {
	query := `
		SELECT m.frequency,
			(SELECT COUNT(*) FROM meter_assignments a WHERE a.meter_id = m.id),
			(SELECT MAX(rd.reading_date) FROM readings rd WHERE rd.meter_id = m.id)
		FROM meters m
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query meter snapshots: %w", err)
	}
	defer rows.Close()

	var snapshots []compliance.MeterSnapshot
	for rows.Next() {
		var snap compliance.MeterSnapshot
		if err := rows.Scan(&snap.Frequency, &snap.AssignmentCount, &snap.LastReadingAt); err != nil {
			return nil, fmt.Errorf("failed to scan meter snapshot: %w", err)
		}
		snapshots = append(snapshots, snap)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return snapshots, nil
}

func parseUUIDs(raw []string) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0, len(raw))
	for _, s := range raw {
		id, err := uuid.Parse(s)
		if err != nil {
			return nil, fmt.Errorf("failed to parse uuid %q: %w", s, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
