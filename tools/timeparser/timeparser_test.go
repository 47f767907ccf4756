package timeparser_test

import (
	"testing"
	"time"

	"github.com/yardops/compliance-worker/tools/timeparser"
)

func TestParseReadingDate(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  time.Time
	}{
		{
			name:  "RFC3339",
			input: "2024-01-01T08:30:00Z",
			want:  time.Date(2024, 1, 1, 8, 30, 0, 0, time.UTC),
		},
		{
			name:  "RFC3339 with milliseconds",
			input: "2024-01-01T08:30:00.250Z",
			want:  time.Date(2024, 1, 1, 8, 30, 0, 250_000_000, time.UTC),
		},
		{
			name:  "datetime without zone",
			input: "2024-01-01 08:30:00",
			want:  time.Date(2024, 1, 1, 8, 30, 0, 0, time.UTC),
		},
		{
			name:  "date only",
			input: "2024-01-01",
			want:  time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := timeparser.ParseReadingDate(tt.input)
			if err != nil {
				t.Fatalf("ParseReadingDate(%q) returned error: %v", tt.input, err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("ParseReadingDate(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseReadingDate_Invalid(t *testing.T) {
	for _, input := range []string{"", "not-a-date", "01/02/2024", "2024-13-01"} {
		if _, err := timeparser.ParseReadingDate(input); err == nil {
			t.Errorf("ParseReadingDate(%q) expected error, got none", input)
		}
	}
}

func TestFormatISO(t *testing.T) {
	tests := []struct {
		input time.Time
		want  string
	}{
		{time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), "2024-01-01T00:00:00.000Z"},
		{time.Date(2024, 1, 2, 8, 30, 0, 250_000_000, time.UTC), "2024-01-02T08:30:00.250Z"},
		{time.Date(2024, 6, 1, 14, 0, 0, 0, time.FixedZone("CEST", 2*3600)), "2024-06-01T12:00:00.000Z"},
	}

	for _, tt := range tests {
		if got := timeparser.FormatISO(tt.input); got != tt.want {
			t.Errorf("FormatISO(%v) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestIsWithinTolerance(t *testing.T) {
	received := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		reading time.Time
		minutes int
		want    bool
	}{
		{"exact match", received, 5, true},
		{"just inside past", received.Add(-4 * time.Minute), 5, true},
		{"exactly at boundary", received.Add(-5 * time.Minute), 5, true},
		{"outside past", received.Add(-6 * time.Minute), 5, false},
		{"future inside", received.Add(3 * time.Minute), 5, true},
		{"future outside", received.Add(10 * time.Minute), 5, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := timeparser.IsWithinTolerance(tt.reading, received, tt.minutes)
			if got != tt.want {
				t.Errorf("IsWithinTolerance(%v, %v, %d) = %v, want %v",
					tt.reading, received, tt.minutes, got, tt.want)
			}
		})
	}
}
