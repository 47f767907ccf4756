package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/yardops/compliance-worker/internal/compliance"
	"github.com/yardops/compliance-worker/internal/logging"
	"github.com/yardops/compliance-worker/internal/report"
	"github.com/yardops/compliance-worker/tools/timeparser"
	"go.uber.org/zap"
)

// ReportRequestedMessage asks the worker to build a reading report. The API
// layer offloads export jobs here and picks the result up from the events
// exchange.
type ReportRequestedMessage struct {
	RequestID  string `json:"request_id"`
	MeterID    string `json:"meter_id,omitempty"`
	ReaderID   string `json:"reader_id,omitempty"`
	LocationID string `json:"location_id,omitempty"`
	MeterType  string `json:"meter_type,omitempty"`
	Frequency  string `json:"frequency,omitempty"`
	StartDate  string `json:"start_date,omitempty"`
	EndDate    string `json:"end_date,omitempty"`
}

// ReportGeneratedEvent carries the rendered report back to the requester.
type ReportGeneratedEvent struct {
	RequestID      string `json:"request_id"`
	GeneratedAt    string `json:"generated_at"`
	TotalReadings  int    `json:"total_readings"`
	TotalMeters    int    `json:"total_meters"`
	TotalLocations int    `json:"total_locations"`
	CSV            string `json:"csv"`
	Text           string `json:"text"`
}

func (s *ProcessorService) processReportRequested(ctx context.Context, body []byte) error {
	var msg ReportRequestedMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		return fmt.Errorf("failed to unmarshal report request: %w", err)
	}

	reqLogger := logging.WithRequestID(s.logger, msg.RequestID)

	filter, err := buildFilter(msg)
	if err != nil {
		return fmt.Errorf("invalid report request: %w", err)
	}

	data, err := s.reports.Generate(ctx, filter)
	if err != nil {
		return fmt.Errorf("failed to generate report: %w", err)
	}

	generatedAt := time.Now()
	event := ReportGeneratedEvent{
		RequestID:      msg.RequestID,
		GeneratedAt:    timeparser.FormatISO(generatedAt),
		TotalReadings:  data.Summary.TotalReadings,
		TotalMeters:    data.Summary.TotalMeters,
		TotalLocations: data.Summary.TotalLocations,
		CSV:            report.FormatCSV(data),
		Text:           report.FormatText(data, generatedAt),
	}

	if err := s.publisher.Publish(ctx, event, s.reportGeneratedKey); err != nil {
		return fmt.Errorf("failed to publish generated report: %w", err)
	}

	reqLogger.Info("report generated",
		zap.Int("total_readings", data.Summary.TotalReadings))

	return nil
}

func buildFilter(msg ReportRequestedMessage) (report.ReadingFilter, error) {
	var filter report.ReadingFilter

	parseID := func(field, value string) (*uuid.UUID, error) {
		if value == "" {
			return nil, nil
		}
		id, err := uuid.Parse(value)
		if err != nil {
			return nil, fmt.Errorf("invalid %s %q: %w", field, value, err)
		}
		return &id, nil
	}

	var err error
	if filter.MeterID, err = parseID("meter id", msg.MeterID); err != nil {
		return filter, err
	}
	if filter.ReaderID, err = parseID("reader id", msg.ReaderID); err != nil {
		return filter, err
	}
	if filter.LocationID, err = parseID("location id", msg.LocationID); err != nil {
		return filter, err
	}

	filter.MeterType = msg.MeterType
	filter.Frequency = compliance.Frequency(msg.Frequency)

	if msg.StartDate != "" {
		start, err := timeparser.ParseReadingDate(msg.StartDate)
		if err != nil {
			return filter, fmt.Errorf("invalid start date: %w", err)
		}
		filter.StartDate = &start
	}
	if msg.EndDate != "" {
		end, err := timeparser.ParseReadingDate(msg.EndDate)
		if err != nil {
			return filter, fmt.Errorf("invalid end date: %w", err)
		}
		filter.EndDate = &end
	}

	return filter, nil
}
