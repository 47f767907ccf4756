package compliance_test

import (
	"errors"
	"testing"
	"time"

	"github.com/yardops/compliance-worker/internal/compliance"
)

var testNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func daysAgo(days int) *time.Time {
	t := testNow.AddDate(0, 0, -days)
	return &t
}

func TestClassify_CurrentWithinInterval(t *testing.T) {
	result, err := compliance.Classify(compliance.FrequencyWeekly, daysAgo(3), testNow, compliance.MissingIsOverdue)
	if err != nil {
		t.Fatalf("Classify returned error: %v", err)
	}

	if result.Status != compliance.StatusCurrent {
		t.Errorf("Expected CURRENT for weekly meter read 3 days ago, got %s", result.Status)
	}
	if result.DaysSince != 3 {
		t.Errorf("Expected DaysSince 3, got %d", result.DaysSince)
	}
}

func TestClassify_PendingInsideGraceWindow(t *testing.T) {
	// Weekly interval is 7, grace boundary is 10.5: 10 days is pending.
	result, err := compliance.Classify(compliance.FrequencyWeekly, daysAgo(10), testNow, compliance.MissingIsOverdue)
	if err != nil {
		t.Fatalf("Classify returned error: %v", err)
	}

	if result.Status != compliance.StatusPending {
		t.Errorf("Expected PENDING at 10 days for weekly meter, got %s", result.Status)
	}
}

func TestClassify_OverduePastGraceWindow(t *testing.T) {
	result, err := compliance.Classify(compliance.FrequencyWeekly, daysAgo(11), testNow, compliance.MissingIsOverdue)
	if err != nil {
		t.Fatalf("Classify returned error: %v", err)
	}

	if result.Status != compliance.StatusOverdue {
		t.Errorf("Expected OVERDUE at 11 days for weekly meter, got %s", result.Status)
	}
	if result.DaysOverdue != 4 {
		t.Errorf("Expected DaysOverdue 4, got %d", result.DaysOverdue)
	}
}

func TestClassify_PendingAtExactInterval(t *testing.T) {
	result, err := compliance.Classify(compliance.FrequencyWeekly, daysAgo(7), testNow, compliance.MissingIsOverdue)
	if err != nil {
		t.Fatalf("Classify returned error: %v", err)
	}

	if result.Status != compliance.StatusPending {
		t.Errorf("Expected PENDING at the interval boundary, got %s", result.Status)
	}
}

func TestClassify_DailyOverdueAfterTwoDays(t *testing.T) {
	result, err := compliance.Classify(compliance.FrequencyDaily, daysAgo(2), testNow, compliance.MissingIsOverdue)
	if err != nil {
		t.Fatalf("Classify returned error: %v", err)
	}

	if result.Status != compliance.StatusOverdue {
		t.Errorf("Expected OVERDUE for daily meter read 2 days ago, got %s", result.Status)
	}
	if result.DaysOverdue != 1 {
		t.Errorf("Expected DaysOverdue 1, got %d", result.DaysOverdue)
	}
}

func TestClassify_MonthlyPendingInGraceWindow(t *testing.T) {
	// Monthly interval is 30, grace boundary is 45: 45 days is still pending.
	result, err := compliance.Classify(compliance.FrequencyMonthly, daysAgo(45), testNow, compliance.MissingIsOverdue)
	if err != nil {
		t.Fatalf("Classify returned error: %v", err)
	}

	if result.Status != compliance.StatusPending {
		t.Errorf("Expected PENDING at 45 days for monthly meter, got %s", result.Status)
	}
}

func TestClassify_AdHocAlwaysExempt(t *testing.T) {
	for _, last := range []*time.Time{nil, daysAgo(1), daysAgo(500)} {
		result, err := compliance.Classify(compliance.FrequencyAdHoc, last, testNow, compliance.MissingIsOverdue)
		if err != nil {
			t.Fatalf("Classify returned error: %v", err)
		}
		if result.Status != compliance.StatusExempt {
			t.Errorf("Expected EXEMPT for ad-hoc meter (last=%v), got %s", last, result.Status)
		}
	}
}

func TestClassify_MissingReadingOverduePolicy(t *testing.T) {
	result, err := compliance.Classify(compliance.FrequencyWeekly, nil, testNow, compliance.MissingIsOverdue)
	if err != nil {
		t.Fatalf("Classify returned error: %v", err)
	}

	if result.Status != compliance.StatusOverdue {
		t.Errorf("Expected OVERDUE for never-read meter under MissingIsOverdue, got %s", result.Status)
	}
	if result.DaysSince != -1 {
		t.Errorf("Expected DaysSince -1 for never-read meter, got %d", result.DaysSince)
	}
}

func TestClassify_MissingReadingExemptPolicy(t *testing.T) {
	result, err := compliance.Classify(compliance.FrequencyWeekly, nil, testNow, compliance.MissingIsExempt)
	if err != nil {
		t.Fatalf("Classify returned error: %v", err)
	}

	if result.Status != compliance.StatusExempt {
		t.Errorf("Expected EXEMPT for never-read meter under MissingIsExempt, got %s", result.Status)
	}
}

func TestClassify_UnsupportedFrequency(t *testing.T) {
	_, err := compliance.Classify("QUARTERLY", daysAgo(10), testNow, compliance.MissingIsOverdue)
	if !errors.Is(err, compliance.ErrUnsupportedFrequency) {
		t.Errorf("Expected ErrUnsupportedFrequency, got %v", err)
	}
}
