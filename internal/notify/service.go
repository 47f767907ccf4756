package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/yardops/compliance-worker/internal/compliance"
	"github.com/yardops/compliance-worker/internal/db"
	"github.com/yardops/compliance-worker/internal/mq"
	"go.uber.org/zap"
)

// AssignedMeter is a meter with at least one responsible reader, as loaded
// for the missed sweep.
type AssignedMeter struct {
	MeterID       uuid.UUID
	MeterNumber   string
	Frequency     compliance.Frequency
	LastReadingAt *time.Time
	AssigneeIDs   []uuid.UUID
}

// DueScheduledReading is a scheduled reading whose due date has passed,
// together with the readers responsible for its meter.
type DueScheduledReading struct {
	ID          uuid.UUID
	MeterID     uuid.UUID
	MeterNumber string
	DueDate     time.Time
	AssigneeIDs []uuid.UUID
}

// Store is the persistence capability the notification service and sweeps
// consume.
type Store interface {
	CreateNotification(ctx context.Context, n *db.Notification) error
	HasRecentNotification(ctx context.Context, userID uuid.UUID, notificationType string, meterID uuid.UUID, since time.Time) (bool, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (*db.User, error)
	ListDueScheduledReadings(ctx context.Context, asOf time.Time) ([]DueScheduledReading, error)
	ListAssignedMeters(ctx context.Context) ([]AssignedMeter, error)
}

// Mailer delivers notification emails, best-effort.
type Mailer interface {
	Send(to, subject, htmlBody string) error
}

// EventPublisher publishes worker events.
type EventPublisher interface {
	Publish(ctx context.Context, event any, routingKey string) error
}

// CreateNotification is the input to Service.Create.
type CreateNotification struct {
	UserID   uuid.UUID
	Type     string
	Title    string
	Message  string
	Metadata map[string]any
}

// Service persists notifications and fans out the best-effort side channels:
// an email to the target user and a notification.created event. Neither side
// channel failing ever fails the creation itself.
type Service struct {
	store      Store
	mailer     Mailer
	events     EventPublisher
	routingKey string
	logger     *zap.Logger
	now        func() time.Time
}

// NewService creates a new notification service. The clock defaults to
// time.Now and is injectable through WithClock for deterministic tests.
func NewService(store Store, mailer Mailer, events EventPublisher, routingKey string, logger *zap.Logger) *Service {
	return &Service{
		store:      store,
		mailer:     mailer,
		events:     events,
		routingKey: routingKey,
		logger:     logger,
		now:        time.Now,
	}
}

// WithClock replaces the service clock and returns the service for chaining.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Create persists a notification and attempts email and event delivery.
func (s *Service) Create(ctx context.Context, input CreateNotification) (*db.Notification, error) {
	if input.Metadata == nil {
		input.Metadata = map[string]any{}
	}

	notification := &db.Notification{
		ID:        uuid.New(),
		UserID:    input.UserID,
		Type:      input.Type,
		Title:     input.Title,
		Message:   input.Message,
		Status:    db.NotificationUnread,
		Metadata:  input.Metadata,
		CreatedAt: s.now(),
	}

	if err := s.store.CreateNotification(ctx, notification); err != nil {
		return nil, fmt.Errorf("failed to create notification: %w", err)
	}

	s.sendEmail(ctx, notification)

	if s.events != nil {
		event := mq.NotificationCreatedEvent{
			NotificationID: notification.ID.String(),
			UserID:         notification.UserID.String(),
			Type:           notification.Type,
			Title:          notification.Title,
			Metadata:       notification.Metadata,
		}
		if err := s.events.Publish(ctx, event, s.routingKey); err != nil {
			s.logger.Error("failed to publish notification event",
				zap.Error(err),
				zap.String("notification_id", notification.ID.String()))
		}
	}

	s.logger.Info("notification created",
		zap.String("notification_id", notification.ID.String()),
		zap.String("user_id", notification.UserID.String()),
		zap.String("type", notification.Type))

	return notification, nil
}

// sendEmail renders the template for the notification type and attempts
// delivery. Failures are logged and swallowed.
func (s *Service) sendEmail(ctx context.Context, n *db.Notification) {
	meterNumber, _ := n.Metadata["meterNumber"].(string)
	if meterNumber == "" {
		return
	}

	user, err := s.store.GetUserByID(ctx, n.UserID)
	if err != nil {
		s.logger.Error("failed to load user for email notification",
			zap.Error(err),
			zap.String("user_id", n.UserID.String()))
		return
	}

	var email Email
	switch n.Type {
	case db.NotificationNewAssignment:
		location, _ := n.Metadata["location"].(string)
		if location == "" {
			location = "Unknown Location"
		}
		email = NewAssignmentEmail(meterNumber, location)
	case db.NotificationReadingDue:
		dueDate, _ := n.Metadata["dueDate"].(string)
		if dueDate == "" {
			dueDate = "Unknown Date"
		}
		email = ReadingDueEmail(meterNumber, dueDate)
	case db.NotificationReadingMissed:
		daysOverdue := 0
		switch v := n.Metadata["daysOverdue"].(type) {
		case int:
			daysOverdue = v
		case float64:
			daysOverdue = int(v)
		}
		email = ReadingMissedEmail(meterNumber, daysOverdue)
	default:
		return
	}

	if err := s.mailer.Send(user.Email, email.Subject, email.HTML); err != nil {
		s.logger.Error("failed to send email notification",
			zap.Error(err),
			zap.String("to", user.Email),
			zap.String("notification_id", n.ID.String()))
	}
}
