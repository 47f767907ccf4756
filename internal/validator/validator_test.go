package validator_test

import (
	"strings"
	"testing"
	"time"

	"github.com/yardops/compliance-worker/internal/validator"
)

var receivedAt = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

func validSubmission() validator.ReadingSubmission {
	return validator.ReadingSubmission{
		MeterNumber: "WTR-001",
		ReaderID:    "5f3c8a2e-9a1b-4c7d-8e2f-1a2b3c4d5e6f",
		Value:       42.5,
		ReadingDate: "2024-01-01T11:55:00Z",
	}
}

func TestValidateSubmission_Valid(t *testing.T) {
	v := validator.NewValidator(30)

	readingTime, result := v.ValidateSubmission(validSubmission(), receivedAt)
	if !result.IsValid {
		t.Fatalf("Expected valid submission, got reason: %s", result.Reason)
	}

	want := time.Date(2024, 1, 1, 11, 55, 0, 0, time.UTC)
	if !readingTime.Equal(want) {
		t.Errorf("Expected parsed time %v, got %v", want, readingTime)
	}
}

func TestValidateSubmission_Rejections(t *testing.T) {
	tests := []struct {
		name       string
		mutate     func(*validator.ReadingSubmission)
		wantReason string
	}{
		{
			name:       "empty meter number",
			mutate:     func(s *validator.ReadingSubmission) { s.MeterNumber = "" },
			wantReason: "empty meter number",
		},
		{
			name:       "empty reader id",
			mutate:     func(s *validator.ReadingSubmission) { s.ReaderID = "" },
			wantReason: "empty reader id",
		},
		{
			name:       "zero value",
			mutate:     func(s *validator.ReadingSubmission) { s.Value = 0 },
			wantReason: "greater than zero",
		},
		{
			name:       "negative value",
			mutate:     func(s *validator.ReadingSubmission) { s.Value = -5 },
			wantReason: "greater than zero",
		},
		{
			name:       "unparseable date",
			mutate:     func(s *validator.ReadingSubmission) { s.ReadingDate = "01/02/2024" },
			wantReason: "invalid reading date format",
		},
		{
			name:       "date outside tolerance",
			mutate:     func(s *validator.ReadingSubmission) { s.ReadingDate = "2024-01-01T09:00:00Z" },
			wantReason: "outside tolerance window",
		},
	}

	v := validator.NewValidator(30)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sub := validSubmission()
			tt.mutate(&sub)

			_, result := v.ValidateSubmission(sub, receivedAt)
			if result.IsValid {
				t.Fatal("Expected submission to be rejected")
			}
			if !strings.Contains(result.Reason, tt.wantReason) {
				t.Errorf("Expected reason containing %q, got %q", tt.wantReason, result.Reason)
			}
		})
	}
}

func TestValidateSubmission_ToleranceBoundary(t *testing.T) {
	v := validator.NewValidator(30)

	sub := validSubmission()
	sub.ReadingDate = "2024-01-01T11:30:00Z" // exactly 30 minutes before receipt
	if _, result := v.ValidateSubmission(sub, receivedAt); !result.IsValid {
		t.Errorf("Expected boundary submission to pass, got reason: %s", result.Reason)
	}

	sub.ReadingDate = "2024-01-01T11:29:59Z"
	if _, result := v.ValidateSubmission(sub, receivedAt); result.IsValid {
		t.Error("Expected submission one second past tolerance to be rejected")
	}
}
