package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds all application configuration
type Config struct {
	ServiceName string
	Database    DatabaseConfig
	RabbitMQ    RabbitMQConfig
	SMTP        SMTPConfig
	Sweep       SweepConfig
	Validation  ValidationConfig
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	URL      string
	MaxConns int
}

// RabbitMQConfig holds RabbitMQ connection and queue settings
type RabbitMQConfig struct {
	URL                    string
	IngestExchange         string
	IngestQueue            string
	ReadingRoutingKey      string
	AssignmentRoutingKey   string
	ReportRoutingKey       string
	EventsExchange         string
	ReadingAcceptedKey     string
	NotificationCreatedKey string
	ComplianceSnapshotKey  string
	ReportGeneratedKey     string
	DLQQueue               string
	PrefetchCount          int
}

// SMTPConfig holds the outgoing mail settings. Email is best-effort: when
// User/Password are unset the mailer logs and skips sends.
type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

// SweepConfig holds the notification sweep scheduling settings.
type SweepConfig struct {
	IntervalMinutes int
}

// ValidationConfig holds reading submission validation settings
type ValidationConfig struct {
	TimestampToleranceMinutes int
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		ServiceName: getEnv("SERVICE_NAME", "yardops-compliance-worker"),
		Database: DatabaseConfig{
			URL:      getEnv("DATABASE_URL", ""),
			MaxConns: getEnvAsInt("DATABASE_MAX_CONNS", 8),
		},
		RabbitMQ: RabbitMQConfig{
			URL:                    getEnv("RABBITMQ_URL", ""),
			IngestExchange:         getEnv("RABBITMQ_INGEST_EXCHANGE", "yardops.ingest.exchange"),
			IngestQueue:            getEnv("RABBITMQ_INGEST_QUEUE", "yardops.ingest.queue"),
			ReadingRoutingKey:      getEnv("RABBITMQ_READING_ROUTING_KEY", "meter.reading.submitted"),
			AssignmentRoutingKey:   getEnv("RABBITMQ_ASSIGNMENT_ROUTING_KEY", "meter.assignment.created"),
			ReportRoutingKey:       getEnv("RABBITMQ_REPORT_ROUTING_KEY", "report.requested"),
			EventsExchange:         getEnv("RABBITMQ_EVENTS_EXCHANGE", "yardops.worker.events.exchange"),
			ReadingAcceptedKey:     getEnv("RABBITMQ_READING_ACCEPTED_KEY", "meter.reading.accepted"),
			NotificationCreatedKey: getEnv("RABBITMQ_NOTIFICATION_CREATED_KEY", "notification.created"),
			ComplianceSnapshotKey:  getEnv("RABBITMQ_COMPLIANCE_SNAPSHOT_KEY", "compliance.snapshot"),
			ReportGeneratedKey:     getEnv("RABBITMQ_REPORT_GENERATED_KEY", "report.generated"),
			DLQQueue:               getEnv("RABBITMQ_DLQ_QUEUE", "yardops.ingest.dlq"),
			PrefetchCount:          getEnvAsInt("RABBITMQ_PREFETCH", 10),
		},
		SMTP: SMTPConfig{
			Host:     getEnv("SMTP_HOST", "smtp.gmail.com"),
			Port:     getEnvAsInt("SMTP_PORT", 587),
			User:     getEnv("SMTP_USER", ""),
			Password: getEnv("SMTP_PASS", ""),
			From:     getEnv("SMTP_FROM", ""),
		},
		Sweep: SweepConfig{
			IntervalMinutes: getEnvAsInt("SWEEP_INTERVAL_MINUTES", 60),
		},
		Validation: ValidationConfig{
			TimestampToleranceMinutes: getEnvAsInt("VALIDATION_TIMESTAMP_TOLERANCE_MINUTES", 10080),
		},
	}

	// Validate required fields
	if cfg.Database.URL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required but not set in environment variables")
	}
	if cfg.RabbitMQ.URL == "" {
		return nil, fmt.Errorf("RABBITMQ_URL is required but not set in environment variables")
	}
	if cfg.Sweep.IntervalMinutes <= 0 {
		return nil, fmt.Errorf("SWEEP_INTERVAL_MINUTES must be positive, got %d", cfg.Sweep.IntervalMinutes)
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
