package compliance

import (
	"time"
)

// MeterSnapshot is the per-meter input to fleet aggregation: the meter's
// cadence, how many readers are assigned, and its most recent reading if any.
type MeterSnapshot struct {
	Frequency       Frequency
	AssignmentCount int
	LastReadingAt   *time.Time
}

// ByFrequency counts meters grouped by reading frequency.
type ByFrequency struct {
	Daily   int `json:"daily"`
	Weekly  int `json:"weekly"`
	Monthly int `json:"monthly"`
	AdHoc   int `json:"adHoc"`
}

// FleetCompliance is the meter-derived portion of the dashboard summary.
type FleetCompliance struct {
	TotalMeters     int         `json:"totalMeters"`
	PendingReadings int         `json:"pendingReadings"`
	MissedReadings  int         `json:"missedReadings"`
	ByFrequency     ByFrequency `json:"byFrequency"`
}

// AggregateFleet reduces a meter snapshot set to fleet-wide compliance counts.
// The reduction is pure and order-independent: two runs over the same snapshot
// yield identical counts.
//
// Meters with zero assignments count toward TotalMeters and ByFrequency but
// are excluded from pending/missed tallies (nobody is accountable for them).
// Ad-hoc meters classify as exempt and likewise never land in pending/missed.
// Never-read meters count as missed, mirroring the statistics behavior.
func AggregateFleet(meters []MeterSnapshot, now time.Time) (FleetCompliance, error) {
	out := FleetCompliance{TotalMeters: len(meters)}

	for _, m := range meters {
		switch m.Frequency {
		case FrequencyDaily:
			out.ByFrequency.Daily++
		case FrequencyWeekly:
			out.ByFrequency.Weekly++
		case FrequencyMonthly:
			out.ByFrequency.Monthly++
		case FrequencyAdHoc:
			out.ByFrequency.AdHoc++
		}

		if m.AssignmentCount == 0 {
			continue
		}

		res, err := Classify(m.Frequency, m.LastReadingAt, now, MissingIsOverdue)
		if err != nil {
			return FleetCompliance{}, err
		}

		switch res.Status {
		case StatusPending:
			out.PendingReadings++
		case StatusOverdue:
			out.MissedReadings++
		}
	}

	return out, nil
}
