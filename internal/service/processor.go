package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/yardops/compliance-worker/internal/db"
	"github.com/yardops/compliance-worker/internal/logging"
	"github.com/yardops/compliance-worker/internal/mq"
	"github.com/yardops/compliance-worker/internal/notify"
	"github.com/yardops/compliance-worker/internal/report"
	"github.com/yardops/compliance-worker/internal/validator"
	"github.com/yardops/compliance-worker/tools/timeparser"
	"go.uber.org/zap"
)

// ReadingSubmittedMessage is the ingest message the HTTP front end publishes
// when a reader submits a reading.
type ReadingSubmittedMessage struct {
	RequestID   string    `json:"request_id"`
	SubmittedAt time.Time `json:"submitted_at"`
	MeterNumber string    `json:"meter_number"`
	ReaderID    string    `json:"reader_id"`
	Value       float64   `json:"value"`
	ReadingDate string    `json:"reading_date"`
	Comment     string    `json:"comment"`
}

// AssignmentCreatedMessage is published when an administrator assigns a meter
// to a reader.
type AssignmentCreatedMessage struct {
	RequestID  string `json:"request_id"`
	MeterID    string `json:"meter_id"`
	UserID     string `json:"user_id"`
	AssignedBy string `json:"assigned_by,omitempty"`
}

// Store is the persistence capability the ingest processor consumes.
type Store interface {
	GetMeterByNumber(ctx context.Context, meterNumber string) (*db.Meter, error)
	GetMeterByID(ctx context.Context, id uuid.UUID) (*db.Meter, error)
	GetLocationByID(ctx context.Context, id uuid.UUID) (*db.Location, error)
	HasAssignment(ctx context.Context, meterID, userID uuid.UUID) (bool, error)
	CreateAssignment(ctx context.Context, a *db.MeterAssignment) (bool, error)
	InsertReading(ctx context.Context, r *db.Reading) error
}

// ProcessorService handles ingest message processing: validated reading
// submissions are persisted and announced, assignment events create the
// assignment link and its NEW_ASSIGNMENT notification.
type ProcessorService struct {
	store              Store
	publisher          notify.EventPublisher
	notifications      *notify.Service
	reports            *report.Generator
	validator          *validator.Validator
	readingRoutingKey  string
	assignRoutingKey   string
	reportRoutingKey   string
	acceptedRoutingKey string
	reportGeneratedKey string
	logger             *zap.Logger
}

// ProcessorConfig holds the processor's collaborators and routing keys.
type ProcessorConfig struct {
	Store              Store
	Publisher          notify.EventPublisher
	Notifications      *notify.Service
	Reports            *report.Generator
	Validator          *validator.Validator
	ReadingRoutingKey  string
	AssignRoutingKey   string
	ReportRoutingKey   string
	AcceptedRoutingKey string
	ReportGeneratedKey string
	Logger             *zap.Logger
}

// NewProcessorService creates a new processor service
func NewProcessorService(cfg ProcessorConfig) *ProcessorService {
	return &ProcessorService{
		store:              cfg.Store,
		publisher:          cfg.Publisher,
		notifications:      cfg.Notifications,
		reports:            cfg.Reports,
		validator:          cfg.Validator,
		readingRoutingKey:  cfg.ReadingRoutingKey,
		assignRoutingKey:   cfg.AssignRoutingKey,
		reportRoutingKey:   cfg.ReportRoutingKey,
		acceptedRoutingKey: cfg.AcceptedRoutingKey,
		reportGeneratedKey: cfg.ReportGeneratedKey,
		logger:             cfg.Logger,
	}
}

// ProcessMessage dispatches an ingest message by routing key. Unknown keys
// are an error so misrouted messages land in the DLQ.
func (s *ProcessorService) ProcessMessage(ctx context.Context, routingKey string, body []byte) error {
	switch routingKey {
	case s.readingRoutingKey:
		return s.processReadingSubmitted(ctx, body)
	case s.assignRoutingKey:
		return s.processAssignmentCreated(ctx, body)
	case s.reportRoutingKey:
		return s.processReportRequested(ctx, body)
	default:
		return fmt.Errorf("unexpected routing key %q", routingKey)
	}
}

func (s *ProcessorService) processReadingSubmitted(ctx context.Context, body []byte) error {
	var msg ReadingSubmittedMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		return fmt.Errorf("failed to unmarshal reading submission: %w", err)
	}

	reqLogger := logging.WithRequestID(s.logger, msg.RequestID)
	reqLogger.Info("processing reading submission",
		zap.String("meter_number", msg.MeterNumber),
		zap.String("reader_id", msg.ReaderID))

	receivedAt := msg.SubmittedAt
	if receivedAt.IsZero() {
		receivedAt = time.Now()
	}

	sub := validator.ReadingSubmission{
		MeterNumber: msg.MeterNumber,
		ReaderID:    msg.ReaderID,
		Value:       msg.Value,
		ReadingDate: msg.ReadingDate,
		Comment:     msg.Comment,
	}

	readingDate, result := s.validator.ValidateSubmission(sub, receivedAt)
	if !result.IsValid {
		return fmt.Errorf("reading submission rejected: %s", result.Reason)
	}

	readerID, err := uuid.Parse(msg.ReaderID)
	if err != nil {
		return fmt.Errorf("invalid reader id %q: %w", msg.ReaderID, err)
	}

	meter, err := s.store.GetMeterByNumber(ctx, msg.MeterNumber)
	if err != nil {
		return fmt.Errorf("failed to resolve meter %q: %w", msg.MeterNumber, err)
	}

	// Only readers holding an active assignment may record readings.
	assigned, err := s.store.HasAssignment(ctx, meter.ID, readerID)
	if err != nil {
		return fmt.Errorf("failed to check assignment: %w", err)
	}
	if !assigned {
		return fmt.Errorf("reader %s is not assigned to meter %s", msg.ReaderID, msg.MeterNumber)
	}

	reading := &db.Reading{
		ID:          uuid.New(),
		MeterID:     meter.ID,
		UserID:      readerID,
		Value:       msg.Value,
		ReadingDate: readingDate,
		CreatedAt:   receivedAt,
	}
	if msg.Comment != "" {
		reading.Comment = &msg.Comment
	}

	if err := s.store.InsertReading(ctx, reading); err != nil {
		return fmt.Errorf("failed to insert reading: %w", err)
	}

	// Announce after persistence; a publish failure never fails the message.
	event := mq.ReadingAcceptedEvent{
		ReadingID:   reading.ID.String(),
		MeterID:     meter.ID.String(),
		MeterNumber: meter.MeterNumber,
		ReaderID:    readerID.String(),
		Value:       reading.Value,
		ReadingDate: timeparser.FormatISO(reading.ReadingDate),
	}
	if err := s.publisher.Publish(ctx, event, s.acceptedRoutingKey); err != nil {
		reqLogger.Error("failed to publish reading accepted event",
			zap.Error(err),
			zap.String("reading_id", reading.ID.String()))
	}

	reqLogger.Info("reading accepted",
		zap.String("reading_id", reading.ID.String()),
		zap.String("meter_id", meter.ID.String()))

	return nil
}

func (s *ProcessorService) processAssignmentCreated(ctx context.Context, body []byte) error {
	var msg AssignmentCreatedMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		return fmt.Errorf("failed to unmarshal assignment message: %w", err)
	}

	reqLogger := logging.WithRequestID(s.logger, msg.RequestID)

	meterID, err := uuid.Parse(msg.MeterID)
	if err != nil {
		return fmt.Errorf("invalid meter id %q: %w", msg.MeterID, err)
	}
	userID, err := uuid.Parse(msg.UserID)
	if err != nil {
		return fmt.Errorf("invalid user id %q: %w", msg.UserID, err)
	}

	meter, err := s.store.GetMeterByID(ctx, meterID)
	if err != nil {
		return fmt.Errorf("failed to resolve meter %s: %w", msg.MeterID, err)
	}

	assignment := &db.MeterAssignment{
		ID:         uuid.New(),
		MeterID:    meterID,
		UserID:     userID,
		AssignedAt: time.Now(),
	}
	if msg.AssignedBy != "" {
		assignedBy, err := uuid.Parse(msg.AssignedBy)
		if err != nil {
			return fmt.Errorf("invalid assigned_by id %q: %w", msg.AssignedBy, err)
		}
		assignment.AssignedBy = &assignedBy
	}

	created, err := s.store.CreateAssignment(ctx, assignment)
	if err != nil {
		return fmt.Errorf("failed to create assignment: %w", err)
	}
	if !created {
		reqLogger.Warn("meter already assigned to user, skipping notification",
			zap.String("meter_id", msg.MeterID),
			zap.String("user_id", msg.UserID))
		return nil
	}

	locationName := "Unknown Location"
	if location, err := s.store.GetLocationByID(ctx, meter.LocationID); err == nil {
		locationName = location.Name
	} else {
		reqLogger.Warn("failed to resolve meter location", zap.Error(err))
	}

	_, err = s.notifications.Create(ctx, notify.CreateNotification{
		UserID:  userID,
		Type:    db.NotificationNewAssignment,
		Title:   fmt.Sprintf("New Meter Assignment: %s", meter.MeterNumber),
		Message: fmt.Sprintf("You have been assigned to read meter %s at %s.", meter.MeterNumber, locationName),
		Metadata: map[string]any{
			"meterId":     meter.ID.String(),
			"meterNumber": meter.MeterNumber,
			"location":    locationName,
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create assignment notification: %w", err)
	}

	reqLogger.Info("meter assigned to user",
		zap.String("meter_id", msg.MeterID),
		zap.String("user_id", msg.UserID))

	return nil
}
