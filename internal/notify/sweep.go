package notify

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/yardops/compliance-worker/internal/compliance"
	"github.com/yardops/compliance-worker/internal/db"
	"github.com/yardops/compliance-worker/internal/logging"
	"github.com/yardops/compliance-worker/tools/timeparser"
	"go.uber.org/zap"
)

// Dedupe windows: an existing notification for the same (user, meter, type)
// inside the window suppresses creation of a duplicate.
const (
	DueDedupeWindow    = 24 * time.Hour
	MissedDedupeWindow = 7 * 24 * time.Hour
)

// Sweeper runs the due and missed notification sweeps. Runs are serialized
// through an internal mutex: the check-then-create dedupe sequence is only
// safe with a single sweep in flight.
type Sweeper struct {
	store         Store
	notifications *Service
	logger        *zap.Logger
	now           func() time.Time
	mu            sync.Mutex
}

// NewSweeper creates a new sweeper with the default clock.
func NewSweeper(store Store, notifications *Service, logger *zap.Logger) *Sweeper {
	return &Sweeper{
		store:         store,
		notifications: notifications,
		logger:        logger,
		now:           time.Now,
	}
}

// WithClock replaces the sweeper clock and returns the sweeper for chaining.
func (s *Sweeper) WithClock(now func() time.Time) *Sweeper {
	s.now = now
	return s
}

// Run executes the due sweep then the missed sweep as one serialized batch.
func (s *Sweeper) Run(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	dueCount, err := s.sweepDue(ctx)
	if err != nil {
		return fmt.Errorf("due sweep failed: %w", err)
	}

	missedCount, err := s.sweepMissed(ctx)
	if err != nil {
		return fmt.Errorf("missed sweep failed: %w", err)
	}

	s.logger.Info("notification sweep completed",
		zap.Int("due_notifications", dueCount),
		zap.Int("missed_notifications", missedCount))

	return nil
}

// sweepDue emits READING_DUE notifications for scheduled readings whose due
// date has passed, at most once per (user, meter) per 24 hours.
func (s *Sweeper) sweepDue(ctx context.Context) (int, error) {
	now := s.now()
	logger := logging.WithSweep(s.logger, "due")

	dueReadings, err := s.store.ListDueScheduledReadings(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("failed to list due scheduled readings: %w", err)
	}

	created := 0
	for _, due := range dueReadings {
		for _, userID := range due.AssigneeIDs {
			exists, err := s.store.HasRecentNotification(ctx, userID, db.NotificationReadingDue, due.MeterID, now.Add(-DueDedupeWindow))
			if err != nil {
				logger.Error("dedupe check failed",
					zap.Error(err),
					zap.String("meter_id", due.MeterID.String()),
					zap.String("user_id", userID.String()))
				continue
			}
			if exists {
				continue
			}

			_, err = s.notifications.Create(ctx, CreateNotification{
				UserID:  userID,
				Type:    db.NotificationReadingDue,
				Title:   fmt.Sprintf("Reading Due: %s", due.MeterNumber),
				Message: fmt.Sprintf("The reading for meter %s is due.", due.MeterNumber),
				Metadata: map[string]any{
					"meterId":     due.MeterID.String(),
					"meterNumber": due.MeterNumber,
					"dueDate":     timeparser.FormatISO(due.DueDate),
				},
			})
			if err != nil {
				// One pair failing never aborts the rest of the sweep.
				logger.Error("failed to create due notification",
					zap.Error(err),
					zap.String("meter_id", due.MeterID.String()),
					zap.String("user_id", userID.String()))
				continue
			}
			created++
		}
	}

	return created, nil
}

// sweepMissed emits READING_MISSED notifications for assigned meters
// classified overdue, at most once per (user, meter) per 7 days. Meters with
// no reading history are skipped: the cadence clock starts at the first
// reading.
func (s *Sweeper) sweepMissed(ctx context.Context) (int, error) {
	now := s.now()
	logger := logging.WithSweep(s.logger, "missed")

	meters, err := s.store.ListAssignedMeters(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list assigned meters: %w", err)
	}

	created := 0
	for _, meter := range meters {
		if meter.LastReadingAt == nil {
			continue
		}

		result, err := compliance.Classify(meter.Frequency, meter.LastReadingAt, now, compliance.MissingIsExempt)
		if err != nil {
			logger.Error("failed to classify meter",
				zap.Error(err),
				zap.String("meter_id", meter.MeterID.String()),
				zap.String("frequency", string(meter.Frequency)))
			continue
		}

		if result.Status != compliance.StatusOverdue {
			continue
		}

		for _, userID := range meter.AssigneeIDs {
			exists, err := s.store.HasRecentNotification(ctx, userID, db.NotificationReadingMissed, meter.MeterID, now.Add(-MissedDedupeWindow))
			if err != nil {
				logger.Error("dedupe check failed",
					zap.Error(err),
					zap.String("meter_id", meter.MeterID.String()),
					zap.String("user_id", userID.String()))
				continue
			}
			if exists {
				continue
			}

			_, err = s.notifications.Create(ctx, CreateNotification{
				UserID:  userID,
				Type:    db.NotificationReadingMissed,
				Title:   fmt.Sprintf("Overdue Reading: %s", meter.MeterNumber),
				Message: fmt.Sprintf("The reading for meter %s is %d days overdue.", meter.MeterNumber, result.DaysOverdue),
				Metadata: map[string]any{
					"meterId":     meter.MeterID.String(),
					"meterNumber": meter.MeterNumber,
					"daysOverdue": result.DaysOverdue,
				},
			})
			if err != nil {
				logger.Error("failed to create missed notification",
					zap.Error(err),
					zap.String("meter_id", meter.MeterID.String()),
					zap.String("user_id", userID.String()))
				continue
			}
			created++
		}
	}

	return created, nil
}
