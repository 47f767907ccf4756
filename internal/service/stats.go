package service

import (
	"context"
	"fmt"
	"time"

	"github.com/yardops/compliance-worker/internal/compliance"
	"github.com/yardops/compliance-worker/internal/mq"
	"github.com/yardops/compliance-worker/internal/notify"
	"github.com/yardops/compliance-worker/tools/timeparser"
	"go.uber.org/zap"
)

// recentWindowDays bounds the "recent readings" count in the dashboard stats.
const recentWindowDays = 7

// StatsStore is the persistence capability the stats service consumes.
type StatsStore interface {
	ListMeterSnapshots(ctx context.Context) ([]compliance.MeterSnapshot, error)
	CountReadings(ctx context.Context) (int, error)
	CountReadingsSince(ctx context.Context, since time.Time) (int, error)
}

// ReadingStats is the fleet-wide dashboard summary.
type ReadingStats struct {
	TotalReadings   int                    `json:"totalReadings"`
	TotalMeters     int                    `json:"totalMeters"`
	PendingReadings int                    `json:"pendingReadings"`
	MissedReadings  int                    `json:"missedReadings"`
	RecentReadings  int                    `json:"recentReadings"`
	ByFrequency     compliance.ByFrequency `json:"byFrequency"`
}

// StatsService computes fleet reading statistics and publishes compliance
// snapshots after sweep cycles.
type StatsService struct {
	store      StatsStore
	events     notify.EventPublisher
	routingKey string
	logger     *zap.Logger
	now        func() time.Time
}

// NewStatsService creates a new stats service with the default clock.
func NewStatsService(store StatsStore, events notify.EventPublisher, routingKey string, logger *zap.Logger) *StatsService {
	return &StatsService{
		store:      store,
		events:     events,
		routingKey: routingKey,
		logger:     logger,
		now:        time.Now,
	}
}

// WithClock replaces the service clock and returns the service for chaining.
func (s *StatsService) WithClock(now func() time.Time) *StatsService {
	s.now = now
	return s
}

// ReadingStats computes the dashboard summary over the current meter fleet.
func (s *StatsService) ReadingStats(ctx context.Context) (*ReadingStats, error) {
	now := s.now()

	totalReadings, err := s.store.CountReadings(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count readings: %w", err)
	}

	recentReadings, err := s.store.CountReadingsSince(ctx, now.AddDate(0, 0, -recentWindowDays))
	if err != nil {
		return nil, fmt.Errorf("failed to count recent readings: %w", err)
	}

	meters, err := s.store.ListMeterSnapshots(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list meter snapshots: %w", err)
	}

	fleet, err := compliance.AggregateFleet(meters, now)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate fleet compliance: %w", err)
	}

	return &ReadingStats{
		TotalReadings:   totalReadings,
		TotalMeters:     fleet.TotalMeters,
		PendingReadings: fleet.PendingReadings,
		MissedReadings:  fleet.MissedReadings,
		RecentReadings:  recentReadings,
		ByFrequency:     fleet.ByFrequency,
	}, nil
}

// PublishSnapshot computes the current stats and publishes them as a
// compliance snapshot event.
func (s *StatsService) PublishSnapshot(ctx context.Context) error {
	stats, err := s.ReadingStats(ctx)
	if err != nil {
		return err
	}

	event := mq.ComplianceSnapshotEvent{
		TakenAt:         timeparser.FormatISO(s.now()),
		TotalReadings:   stats.TotalReadings,
		TotalMeters:     stats.TotalMeters,
		PendingReadings: stats.PendingReadings,
		MissedReadings:  stats.MissedReadings,
		RecentReadings:  stats.RecentReadings,
		ByFrequency: map[string]int{
			"daily":   stats.ByFrequency.Daily,
			"weekly":  stats.ByFrequency.Weekly,
			"monthly": stats.ByFrequency.Monthly,
			"adHoc":   stats.ByFrequency.AdHoc,
		},
	}

	if err := s.events.Publish(ctx, event, s.routingKey); err != nil {
		return fmt.Errorf("failed to publish compliance snapshot: %w", err)
	}

	s.logger.Info("compliance snapshot published",
		zap.Int("total_meters", stats.TotalMeters),
		zap.Int("pending_readings", stats.PendingReadings),
		zap.Int("missed_readings", stats.MissedReadings))

	return nil
}
