package validator

import (
	"fmt"
	"time"

	"github.com/yardops/compliance-worker/tools/timeparser"
)

// ValidationResult holds validation outcome
type ValidationResult struct {
	IsValid bool
	Reason  string
}

// ReadingSubmission is a reading as submitted by a reader through the ingest
// queue, before any persistence.
type ReadingSubmission struct {
	MeterNumber string
	ReaderID    string
	Value       float64
	ReadingDate string
	Comment     string
}

// Validator checks reading submissions with configurable parameters
type Validator struct {
	timestampToleranceMinutes int
}

// NewValidator creates a new validator with the specified tolerance
func NewValidator(timestampToleranceMinutes int) *Validator {
	return &Validator{
		timestampToleranceMinutes: timestampToleranceMinutes,
	}
}

// ValidateSubmission validates a single reading submission and returns the
// parsed reading date alongside the outcome.
func (v *Validator) ValidateSubmission(sub ReadingSubmission, receivedAt time.Time) (time.Time, ValidationResult) {
	result := ValidationResult{IsValid: true}

	if sub.MeterNumber == "" {
		result.IsValid = false
		result.Reason = "empty meter number"
		return time.Time{}, result
	}

	if sub.ReaderID == "" {
		result.IsValid = false
		result.Reason = "empty reader id"
		return time.Time{}, result
	}

	// Reading values are strictly positive.
	if sub.Value <= 0 {
		result.IsValid = false
		result.Reason = fmt.Sprintf("reading value must be greater than zero, got %v", sub.Value)
		return time.Time{}, result
	}

	readingTime, err := timeparser.ParseReadingDate(sub.ReadingDate)
	if err != nil {
		result.IsValid = false
		result.Reason = fmt.Sprintf("invalid reading date format: %v", err)
		return time.Time{}, result
	}

	if !timeparser.IsWithinTolerance(readingTime, receivedAt, v.timestampToleranceMinutes) {
		result.IsValid = false
		result.Reason = fmt.Sprintf("reading date outside tolerance window (±%d minutes)", v.timestampToleranceMinutes)
		return readingTime, result
	}

	return readingTime, result
}
