package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/yardops/compliance-worker/internal/report"
	"github.com/yardops/compliance-worker/tools/timeparser"
)

// ListReadingRecords loads report rows for the given filter, newest first.
func (r *Repository) ListReadingRecords(ctx context.Context, filter report.ReadingFilter) ([]report.ReadingRecord, error) {
	query := `
		SELECT rd.id, rd.meter_id, m.meter_number, mt.name, m.location_id, l.name,
			u.first_name, u.last_name, rd.value, rd.reading_date, COALESCE(rd.comment, '')
		FROM readings rd
		JOIN meters m ON m.id = rd.meter_id
		JOIN meter_types mt ON mt.id = m.meter_type_id
		JOIN locations l ON l.id = m.location_id
		JOIN users u ON u.id = rd.user_id
	`

	conditions, args := buildReadingFilter(filter)
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY rd.reading_date DESC"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query reading records: %w", err)
	}
	defer rows.Close()

	var records []report.ReadingRecord
	for rows.Next() {
		var rec report.ReadingRecord
		var firstName, lastName string
		var readingDate time.Time
		if err := rows.Scan(
			&rec.ID,
			&rec.MeterID,
			&rec.MeterNumber,
			&rec.MeterType,
			&rec.LocationID,
			&rec.Location,
			&firstName,
			&lastName,
			&rec.Value,
			&readingDate,
			&rec.Comment,
		); err != nil {
			return nil, fmt.Errorf("failed to scan reading record: %w", err)
		}
		rec.Reader = firstName + " " + lastName
		rec.ReadingDate = timeparser.FormatISO(readingDate)
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return records, nil
}

func buildReadingFilter(filter report.ReadingFilter) ([]string, []any) {
	var conditions []string
	var args []any

	add := func(condition string, arg any) {
		args = append(args, arg)
		conditions = append(conditions, fmt.Sprintf(condition, len(args)))
	}

	if filter.MeterID != nil {
		add("rd.meter_id = $%d", *filter.MeterID)
	}
	if filter.ReaderID != nil {
		add("rd.user_id = $%d", *filter.ReaderID)
	}
	if filter.LocationID != nil {
		add("m.location_id = $%d", *filter.LocationID)
	}
	if filter.MeterType != "" {
		add("mt.name = $%d", filter.MeterType)
	}
	if filter.Frequency != "" {
		add("m.frequency = $%d", string(filter.Frequency))
	}
	if filter.StartDate != nil {
		add("rd.reading_date >= $%d", *filter.StartDate)
	}
	if filter.EndDate != nil {
		add("rd.reading_date <= $%d", *filter.EndDate)
	}

	return conditions, args
}
