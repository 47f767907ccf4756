package report

import (
	"strconv"
	"strings"
)

// CSVHeader is the fixed header row of the CSV export.
const CSVHeader = "Meter Number,Meter Type,Location,Reader,Value,Reading Date,Comment"

// FormatCSV renders the report as delimited text. Values are emitted
// literally with no quoting or escaping, matching the historical export
// format consumers parse today. Known limitation: fields containing commas
// break the row shape; RFC 4180 quoting would fix it but changes the format.
func FormatCSV(data *Data) string {
	rows := make([]string, 0, len(data.Readings)+1)
	rows = append(rows, CSVHeader)

	for _, r := range data.Readings {
		rows = append(rows, strings.Join([]string{
			r.MeterNumber,
			r.MeterType,
			r.Location,
			r.Reader,
			formatValue(r.Value),
			r.ReadingDate,
			r.Comment,
		}, ","))
	}

	return strings.Join(rows, "\n")
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
