package main

import (
	"context"
	"time"

	"github.com/yardops/compliance-worker/internal/config"
	"github.com/yardops/compliance-worker/internal/db"
	"github.com/yardops/compliance-worker/internal/mailer"
	"github.com/yardops/compliance-worker/internal/mq"
	"github.com/yardops/compliance-worker/internal/notify"
	"github.com/yardops/compliance-worker/internal/report"
	"github.com/yardops/compliance-worker/internal/repository"
	"github.com/yardops/compliance-worker/internal/service"
	"github.com/yardops/compliance-worker/internal/validator"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

func startWorker(
	lc fx.Lifecycle,
	conn *mq.Connection,
	cfg *config.Config,
	logger *zap.Logger,
	processor *service.ProcessorService,
) (*mq.Consumer, error) {
	// Create context for consumer that will be cancelled on shutdown
	ctx, cancel := context.WithCancel(context.Background())

	consumer, err := mq.NewConsumer(mq.ConsumerConfig{
		Connection: conn,
		Queue:      cfg.RabbitMQ.IngestQueue,
		DLQQueue:   cfg.RabbitMQ.DLQQueue,
		Exchange:   cfg.RabbitMQ.IngestExchange,
		RoutingKeys: []string{
			cfg.RabbitMQ.ReadingRoutingKey,
			cfg.RabbitMQ.AssignmentRoutingKey,
			cfg.RabbitMQ.ReportRoutingKey,
		},
		PrefetchCount:    cfg.RabbitMQ.PrefetchCount,
		Logger:           logger,
		MessageProcessor: processor.ProcessMessage,
	})
	if err != nil {
		cancel()
		return nil, err
	}

	// Register lifecycle hooks
	lc.Append(fx.Hook{
		OnStart: func(startCtx context.Context) error {
			logger.Info("starting worker consumer",
				zap.String("queue", cfg.RabbitMQ.IngestQueue),
				zap.Int("prefetch", cfg.RabbitMQ.PrefetchCount))
			return consumer.Start(ctx)
		},
		OnStop: func(stopCtx context.Context) error {
			cancel()
			if err := consumer.Close(); err != nil {
				logger.Error("failed to close consumer", zap.Error(err))
				return err
			}
			logger.Info("worker stopped gracefully")
			return nil
		},
	})

	return consumer, nil
}

// startSweeper runs the notification sweeps and the compliance snapshot on a
// fixed interval. A single goroutine owns the schedule, so sweep runs never
// overlap and the dedupe check stays race-free.
func startSweeper(
	lc fx.Lifecycle,
	sweeper *notify.Sweeper,
	stats *service.StatsService,
	cfg *config.Config,
	logger *zap.Logger,
) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	runCycle := func() {
		if err := sweeper.Run(ctx); err != nil {
			logger.Error("notification sweep failed", zap.Error(err))
		}
		if err := stats.PublishSnapshot(ctx); err != nil {
			logger.Error("compliance snapshot failed", zap.Error(err))
		}
	}

	lc.Append(fx.Hook{
		OnStart: func(startCtx context.Context) error {
			interval := time.Duration(cfg.Sweep.IntervalMinutes) * time.Minute
			logger.Info("starting sweep scheduler", zap.Duration("interval", interval))

			go func() {
				defer close(done)
				ticker := time.NewTicker(interval)
				defer ticker.Stop()

				runCycle()
				for {
					select {
					case <-ctx.Done():
						return
					case <-ticker.C:
						runCycle()
					}
				}
			}()
			return nil
		},
		OnStop: func(stopCtx context.Context) error {
			cancel()
			select {
			case <-done:
			case <-stopCtx.Done():
				return stopCtx.Err()
			}
			logger.Info("sweep scheduler stopped")
			return nil
		},
	})
}

// ProvideRepository creates a new repository instance
func ProvideRepository(pool *db.Pool) *repository.Repository {
	return repository.NewRepository(pool)
}

// ProvideValidator creates a new reading submission validator
func ProvideValidator(cfg *config.Config) *validator.Validator {
	return validator.NewValidator(cfg.Validation.TimestampToleranceMinutes)
}

// ProvideMailer creates the SMTP mailer
func ProvideMailer(cfg *config.Config, logger *zap.Logger) *mailer.Mailer {
	return mailer.NewMailer(cfg.SMTP, logger)
}

// ProvideNotificationService creates the notification service
func ProvideNotificationService(
	repo *repository.Repository,
	m *mailer.Mailer,
	publisher *mq.Publisher,
	cfg *config.Config,
	logger *zap.Logger,
) *notify.Service {
	return notify.NewService(repo, m, publisher, cfg.RabbitMQ.NotificationCreatedKey, logger)
}

// ProvideSweeper creates the notification sweeper
func ProvideSweeper(repo *repository.Repository, notifications *notify.Service, logger *zap.Logger) *notify.Sweeper {
	return notify.NewSweeper(repo, notifications, logger)
}

// ProvideStatsService creates the fleet stats service
func ProvideStatsService(
	repo *repository.Repository,
	publisher *mq.Publisher,
	cfg *config.Config,
	logger *zap.Logger,
) *service.StatsService {
	return service.NewStatsService(repo, publisher, cfg.RabbitMQ.ComplianceSnapshotKey, logger)
}

// ProvideReportGenerator creates the report generator
func ProvideReportGenerator(repo *repository.Repository, logger *zap.Logger) *report.Generator {
	return report.NewGenerator(repo, logger)
}

// ProvideProcessorService creates a new processor service instance
func ProvideProcessorService(
	repo *repository.Repository,
	publisher *mq.Publisher,
	notifications *notify.Service,
	reports *report.Generator,
	v *validator.Validator,
	cfg *config.Config,
	logger *zap.Logger,
) *service.ProcessorService {
	return service.NewProcessorService(service.ProcessorConfig{
		Store:              repo,
		Publisher:          publisher,
		Notifications:      notifications,
		Reports:            reports,
		Validator:          v,
		ReadingRoutingKey:  cfg.RabbitMQ.ReadingRoutingKey,
		AssignRoutingKey:   cfg.RabbitMQ.AssignmentRoutingKey,
		ReportRoutingKey:   cfg.RabbitMQ.ReportRoutingKey,
		AcceptedRoutingKey: cfg.RabbitMQ.ReadingAcceptedKey,
		ReportGeneratedKey: cfg.RabbitMQ.ReportGeneratedKey,
		Logger:             logger,
	})
}

// ProvideDBPool creates a new database pool instance
func ProvideDBPool(lc fx.Lifecycle, logger *zap.Logger, cfg *config.Config) (*db.Pool, error) {
	return db.NewPool(lc, logger, cfg.Database.URL, cfg.Database.MaxConns)
}

// ProvideMQConnection creates a new RabbitMQ connection instance
func ProvideMQConnection(lc fx.Lifecycle, logger *zap.Logger, cfg *config.Config) (*mq.Connection, error) {
	return mq.NewConnection(lc, logger, cfg.RabbitMQ.URL)
}

// ProvidePublisher creates a new events publisher instance
func ProvidePublisher(conn *mq.Connection, cfg *config.Config, logger *zap.Logger) (*mq.Publisher, error) {
	return mq.NewPublisher(conn, cfg.RabbitMQ.EventsExchange, logger)
}
