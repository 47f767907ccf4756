package mq

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// Publisher handles message publishing to RabbitMQ
type Publisher struct {
	conn     *Connection
	channel  *amqp.Channel
	exchange string
	logger   *zap.Logger
}

// NewPublisher creates a new RabbitMQ publisher
func NewPublisher(conn *Connection, exchange string, logger *zap.Logger) (*Publisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("failed to create channel: %w", err)
	}

	// Declare exchange
	err = ch.ExchangeDeclare(
		exchange,
		"topic",
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		ch.Close()
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}

	return &Publisher{
		conn:     conn,
		channel:  ch,
		exchange: exchange,
		logger:   logger,
	}, nil
}

// ReadingAcceptedEvent is published after a submitted reading passes
// validation and is persisted.
type ReadingAcceptedEvent struct {
	ReadingID   string  `json:"reading_id"`
	MeterID     string  `json:"meter_id"`
	MeterNumber string  `json:"meter_number"`
	ReaderID    string  `json:"reader_id"`
	Value       float64 `json:"value"`
	ReadingDate string  `json:"reading_date"`
}

// NotificationCreatedEvent is published when the sweep or an assignment
// creates a notification.
type NotificationCreatedEvent struct {
	NotificationID string         `json:"notification_id"`
	UserID         string         `json:"user_id"`
	Type           string         `json:"type"`
	Title          string         `json:"title"`
	Metadata       map[string]any `json:"metadata,omitempty"`
}

// ComplianceSnapshotEvent carries the fleet-wide reading statistics computed
// after each sweep cycle.
type ComplianceSnapshotEvent struct {
	TakenAt         string         `json:"taken_at"`
	TotalReadings   int            `json:"total_readings"`
	TotalMeters     int            `json:"total_meters"`
	PendingReadings int            `json:"pending_readings"`
	MissedReadings  int            `json:"missed_readings"`
	RecentReadings  int            `json:"recent_readings"`
	ByFrequency     map[string]int `json:"by_frequency"`
}

// Publish marshals the event and publishes it on the events exchange.
func (p *Publisher) Publish(ctx context.Context, event any, routingKey string) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	err = p.channel.PublishWithContext(
		ctx,
		p.exchange,
		routingKey,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
		},
	)

	if err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	p.logger.Debug("published event",
		zap.String("routing_key", routingKey),
		zap.Int("body_size", len(body)),
	)

	return nil
}

// Close closes the publisher channel
func (p *Publisher) Close() error {
	if p.channel != nil {
		return p.channel.Close()
	}
	return nil
}
