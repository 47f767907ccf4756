package report

import (
	"fmt"
	"strings"
	"time"
)

// FormatText renders the report as the plain paginated text block the
// dashboard offers as its "PDF" download. generatedAt is injected so output
// is deterministic under test.
func FormatText(data *Data, generatedAt time.Time) string {
	var b strings.Builder

	b.WriteString("YardOps Meter Reading Report\n")
	fmt.Fprintf(&b, "Generated: %s\n\n", generatedAt.UTC().Format(time.RFC3339))

	b.WriteString("Summary:\n")
	fmt.Fprintf(&b, "- Total Readings: %d\n", data.Summary.TotalReadings)
	fmt.Fprintf(&b, "- Total Meters: %d\n", data.Summary.TotalMeters)
	fmt.Fprintf(&b, "- Total Locations: %d\n", data.Summary.TotalLocations)
	fmt.Fprintf(&b, "- Date Range: %s to %s\n\n", data.Summary.DateRange.Start, data.Summary.DateRange.End)

	b.WriteString("Readings:\n")
	b.WriteString("Meter Number | Type | Location | Reader | Value | Date | Comment\n")
	b.WriteString(strings.Repeat("-", 80) + "\n")

	for _, r := range data.Readings {
		fmt.Fprintf(&b, "%s | %s | %s | %s | %s | %s | %s\n",
			r.MeterNumber, r.MeterType, r.Location, r.Reader,
			formatValue(r.Value), r.ReadingDate, r.Comment)
	}

	return b.String()
}
