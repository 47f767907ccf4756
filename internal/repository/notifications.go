package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/yardops/compliance-worker/internal/db"
	"github.com/yardops/compliance-worker/internal/notify"
)

// CreateNotification inserts a notification with its metadata bag as JSONB.
func (r *Repository) CreateNotification(ctx context.Context, n *db.Notification) error {
	metadata, err := json.Marshal(n.Metadata)
	if err != nil {
		return fmt.Errorf("failed to marshal notification metadata: %w", err)
	}

	query := `
		INSERT INTO notifications (id, user_id, type, title, message, status, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err = r.pool.Exec(ctx, query,
		n.ID,
		n.UserID,
		n.Type,
		n.Title,
		n.Message,
		n.Status,
		metadata,
		n.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert notification: %w", err)
	}

	return nil
}

// HasRecentNotification reports whether a notification of the given type for
// the given meter was created for the user at or after the since instant.
// This is the sweep dedupe check.
func (r *Repository) HasRecentNotification(ctx context.Context, userID uuid.UUID, notificationType string, meterID uuid.UUID, since time.Time) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM notifications
			WHERE user_id = $1
			  AND type = $2
			  AND metadata->>'meterId' = $3
			  AND created_at >= $4
		)
	`

	var exists bool
	err := r.pool.QueryRow(ctx, query, userID, notificationType, meterID.String(), since).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check recent notification: %w", err)
	}

	return exists, nil
}

// MarkNotificationRead transitions a notification to READ, recording the
// read timestamp. Re-marking an already read notification is a no-op.
func (r *Repository) MarkNotificationRead(ctx context.Context, notificationID uuid.UUID, readAt time.Time) error {
	query := `
		UPDATE notifications
		SET status = $1, read_at = $2
		WHERE id = $3 AND status = $4
	`

	_, err := r.pool.Exec(ctx, query, db.NotificationRead, readAt, notificationID, db.NotificationUnread)
	if err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}

	return nil
}

// ListDueScheduledReadings loads scheduled readings due at or before asOf,
// with the readers assigned to their meters. Meters without assignments are
// omitted: there is nobody to notify.
func (r *Repository) ListDueScheduledReadings(ctx context.Context, asOf time.Time) ([]notify.DueScheduledReading, error) {
	query := `
		SELECT s.id, s.meter_id, m.meter_number, s.due_date, ARRAY_AGG(a.user_id)::text[]
		FROM scheduled_readings s
		JOIN meters m ON m.id = s.meter_id
		JOIN meter_assignments a ON a.meter_id = s.meter_id
		WHERE s.due_date <= $1
		GROUP BY s.id, s.meter_id, m.meter_number, s.due_date
	`

	rows, err := r.pool.Query(ctx, query, asOf)
	if err != nil {
		return nil, fmt.Errorf("failed to query due scheduled readings: %w", err)
	}
	defer rows.Close()

	var due []notify.DueScheduledReading
	for rows.Next() {
		var d notify.DueScheduledReading
		var assignees []string
		if err := rows.Scan(&d.ID, &d.MeterID, &d.MeterNumber, &d.DueDate, &assignees); err != nil {
			return nil, fmt.Errorf("failed to scan due scheduled reading: %w", err)
		}
		d.AssigneeIDs, err = parseUUIDs(assignees)
		if err != nil {
			return nil, err
		}
		due = append(due, d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return due, nil
}

// ListAssignedMeters loads every meter with at least one assignment, its
// latest reading date and its assignees, the input to the missed sweep.
func (r *Repository) ListAssignedMeters(ctx context.Context) ([]notify.AssignedMeter, error) {
	query := `
		SELECT m.id, m.meter_number, m.frequency,
			(SELECT MAX(rd.reading_date) FROM readings rd WHERE rd.meter_id = m.id),
			ARRAY_AGG(a.user_id)::text[]
		FROM meters m
		JOIN meter_assignments a ON a.meter_id = m.id
		GROUP BY m.id, m.meter_number, m.frequency
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query assigned meters: %w", err)
	}
	defer rows.Close()

	var meters []notify.AssignedMeter
	for rows.Next() {
		var m notify.AssignedMeter
		var assignees []string
		if err := rows.Scan(&m.MeterID, &m.MeterNumber, &m.Frequency, &m.LastReadingAt, &assignees); err != nil {
			return nil, fmt.Errorf("failed to scan assigned meter: %w", err)
		}
		m.AssigneeIDs, err = parseUUIDs(assignees)
		if err != nil {
			return nil, err
		}
		meters = append(meters, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return meters, nil
}
