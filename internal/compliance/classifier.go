package compliance

import (
	"time"
)

// Status describes whether a meter's reading cadence is being met.
type Status string

const (
	StatusCurrent Status = "CURRENT"
	StatusPending Status = "PENDING"
	StatusOverdue Status = "OVERDUE"
	StatusExempt  Status = "EXEMPT"
)

// GraceMultiplier is the threshold beyond the expected interval after which a
// meter is overdue rather than merely pending. Fixed policy constant; call
// sites must not vary it.
const GraceMultiplier = 1.5

// MissingReadingPolicy controls how a meter with no reading history is
// classified. The two call sites of the historical system disagreed: the
// statistics aggregation treated elapsed time as unbounded and counted the
// meter as overdue, while the notification sweep skipped it. Making the
// policy explicit keeps both behaviors reproducible.
type MissingReadingPolicy int

const (
	// MissingIsOverdue classifies a never-read meter as overdue.
	MissingIsOverdue MissingReadingPolicy = iota
	// MissingIsExempt excludes a never-read meter from classification.
	MissingIsExempt
)

// Result holds the classification of a single meter at an evaluation instant.
type Result struct {
	Status Status
	// DaysSince is the whole days elapsed since the last reading, -1 when no
	// reading exists.
	DaysSince int
	// IntervalDays is the expected interval for the meter's frequency,
	// NoInterval for ad-hoc meters.
	IntervalDays int
	// DaysOverdue is DaysSince - IntervalDays when Status is OVERDUE, 0
	// otherwise.
	DaysOverdue int
}

// Classify computes the compliance status of one meter. lastReading is nil for
// meters that have never been read; now is injected by the caller so results
// are deterministic under test.
func Classify(f Frequency, lastReading *time.Time, now time.Time, missing MissingReadingPolicy) (Result, error) {
	interval, err := IntervalDays(f)
	if err != nil {
		return Result{}, err
	}

	// Ad-hoc meters have no enforced cadence.
	if interval == NoInterval {
		return Result{Status: StatusExempt, DaysSince: daysSince(lastReading, now), IntervalDays: NoInterval}, nil
	}

	if lastReading == nil {
		if missing == MissingIsExempt {
			return Result{Status: StatusExempt, DaysSince: -1, IntervalDays: interval}, nil
		}
		// Unbounded elapsed time: the meter is overdue no matter the interval.
		return Result{Status: StatusOverdue, DaysSince: -1, IntervalDays: interval}, nil
	}

	days := daysSince(lastReading, now)

	switch {
	case days < interval:
		return Result{Status: StatusCurrent, DaysSince: days, IntervalDays: interval}, nil
	case float64(days) > float64(interval)*GraceMultiplier:
		return Result{
			Status:       StatusOverdue,
			DaysSince:    days,
			IntervalDays: interval,
			DaysOverdue:  days - interval,
		}, nil
	default:
		return Result{Status: StatusPending, DaysSince: days, IntervalDays: interval}, nil
	}
}

func daysSince(t *time.Time, now time.Time) int {
	if t == nil {
		return -1
	}
	return int(now.Sub(*t).Hours() / 24)
}
