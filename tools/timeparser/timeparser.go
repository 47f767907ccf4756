package timeparser

import (
	"fmt"
	"time"
)

// ParseReadingDate attempts to parse a submitted reading date with the
// formats the dashboard and bulk-import clients are known to send.
func ParseReadingDate(dateStr string) (time.Time, error) {
	formats := []string{
		time.RFC3339,          // 2024-01-01T00:00:00Z (fractional seconds accepted)
		"2006-01-02 15:04:05", // datetime without zone, assumed UTC
		"2006-01-02",          // date-only form input
	}

	var lastErr error
	for _, format := range formats {
		t, err := time.Parse(format, dateStr)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}

	return time.Time{}, fmt.Errorf("failed to parse reading date '%s': %w", dateStr, lastErr)
}

// FormatISO renders a timestamp the way the dashboard expects reading dates:
// UTC with millisecond precision and a literal Z suffix.
func FormatISO(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000") + "Z"
}

// IsWithinTolerance checks if the reading date is within tolerance of the time
// the submission was received.
func IsWithinTolerance(readingTime, receivedTime time.Time, toleranceMinutes int) bool {
	diff := readingTime.Sub(receivedTime)
	if diff < 0 {
		diff = -diff
	}
	return diff <= time.Duration(toleranceMinutes)*time.Minute
}
