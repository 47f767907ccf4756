package compliance

import (
	"errors"
	"fmt"
)

// Frequency is the reading cadence assigned to a meter.
type Frequency string

const (
	FrequencyDaily   Frequency = "DAILY"
	FrequencyWeekly  Frequency = "WEEKLY"
	FrequencyMonthly Frequency = "MONTHLY"
	FrequencyAdHoc   Frequency = "AD_HOC"
)

// NoInterval is returned for ad-hoc meters, which have no expected reading cadence.
const NoInterval = -1

// ErrUnsupportedFrequency indicates a frequency value outside the known set.
// An unknown frequency reaching this package is a data-integrity bug upstream.
var ErrUnsupportedFrequency = errors.New("unsupported reading frequency")

// IntervalDays maps a frequency to the expected number of days between readings.
// Ad-hoc meters return NoInterval; unknown values fail fast rather than
// defaulting silently.
func IntervalDays(f Frequency) (int, error) {
	switch f {
	case FrequencyDaily:
		return 1, nil
	case FrequencyWeekly:
		return 7, nil
	case FrequencyMonthly:
		return 30, nil
	case FrequencyAdHoc:
		return NoInterval, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnsupportedFrequency, f)
	}
}
