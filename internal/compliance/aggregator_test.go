package compliance_test

import (
	"testing"

	"github.com/yardops/compliance-worker/internal/compliance"
)

func TestAggregateFleet_MixedFleet(t *testing.T) {
	meters := []compliance.MeterSnapshot{
		// Daily meter read 2 days ago with an assignee: overdue.
		{Frequency: compliance.FrequencyDaily, AssignmentCount: 1, LastReadingAt: daysAgo(2)},
		// Ad-hoc meter, never read: exempt from pending/overdue.
		{Frequency: compliance.FrequencyAdHoc, AssignmentCount: 1, LastReadingAt: nil},
		// Weekly meter with no assignees: counted but not accountable.
		{Frequency: compliance.FrequencyWeekly, AssignmentCount: 0, LastReadingAt: daysAgo(20)},
	}

	fleet, err := compliance.AggregateFleet(meters, testNow)
	if err != nil {
		t.Fatalf("AggregateFleet returned error: %v", err)
	}

	if fleet.TotalMeters != 3 {
		t.Errorf("Expected TotalMeters 3, got %d", fleet.TotalMeters)
	}
	if fleet.MissedReadings != 1 {
		t.Errorf("Expected MissedReadings 1, got %d", fleet.MissedReadings)
	}
	if fleet.PendingReadings != 0 {
		t.Errorf("Expected PendingReadings 0, got %d", fleet.PendingReadings)
	}

	expected := compliance.ByFrequency{Daily: 1, Weekly: 1, Monthly: 0, AdHoc: 1}
	if fleet.ByFrequency != expected {
		t.Errorf("Expected ByFrequency %+v, got %+v", expected, fleet.ByFrequency)
	}
}

func TestAggregateFleet_NeverReadAssignedMeterIsMissed(t *testing.T) {
	meters := []compliance.MeterSnapshot{
		{Frequency: compliance.FrequencyMonthly, AssignmentCount: 2, LastReadingAt: nil},
	}

	fleet, err := compliance.AggregateFleet(meters, testNow)
	if err != nil {
		t.Fatalf("AggregateFleet returned error: %v", err)
	}

	if fleet.MissedReadings != 1 {
		t.Errorf("Expected never-read assigned meter counted as missed, got %d", fleet.MissedReadings)
	}
}

func TestAggregateFleet_PendingBucket(t *testing.T) {
	meters := []compliance.MeterSnapshot{
		{Frequency: compliance.FrequencyWeekly, AssignmentCount: 1, LastReadingAt: daysAgo(8)},
	}

	fleet, err := compliance.AggregateFleet(meters, testNow)
	if err != nil {
		t.Fatalf("AggregateFleet returned error: %v", err)
	}

	if fleet.PendingReadings != 1 {
		t.Errorf("Expected PendingReadings 1, got %d", fleet.PendingReadings)
	}
	if fleet.MissedReadings != 0 {
		t.Errorf("Expected MissedReadings 0, got %d", fleet.MissedReadings)
	}
}

func TestAggregateFleet_OrderIndependent(t *testing.T) {
	meters := []compliance.MeterSnapshot{
		{Frequency: compliance.FrequencyDaily, AssignmentCount: 1, LastReadingAt: daysAgo(5)},
		{Frequency: compliance.FrequencyWeekly, AssignmentCount: 1, LastReadingAt: daysAgo(8)},
		{Frequency: compliance.FrequencyMonthly, AssignmentCount: 0, LastReadingAt: nil},
		{Frequency: compliance.FrequencyAdHoc, AssignmentCount: 1, LastReadingAt: daysAgo(100)},
	}

	reversed := make([]compliance.MeterSnapshot, len(meters))
	for i, m := range meters {
		reversed[len(meters)-1-i] = m
	}

	forward, err := compliance.AggregateFleet(meters, testNow)
	if err != nil {
		t.Fatalf("AggregateFleet returned error: %v", err)
	}
	backward, err := compliance.AggregateFleet(reversed, testNow)
	if err != nil {
		t.Fatalf("AggregateFleet returned error: %v", err)
	}

	if forward != backward {
		t.Errorf("Aggregation is order-dependent: %+v vs %+v", forward, backward)
	}
}

func TestAggregateFleet_Empty(t *testing.T) {
	fleet, err := compliance.AggregateFleet(nil, testNow)
	if err != nil {
		t.Fatalf("AggregateFleet returned error: %v", err)
	}

	if fleet.TotalMeters != 0 || fleet.PendingReadings != 0 || fleet.MissedReadings != 0 {
		t.Errorf("Expected zero counts for empty fleet, got %+v", fleet)
	}
}
