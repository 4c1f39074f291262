package exporter

import (
	"strconv"

	"github.com/toshiakit/string-vs-cell/pkg/contracts/domain"
)

// formatInt formats an int64 value for CSV output
func formatInt(i int64) string {
	return strconv.FormatInt(i, 10)
}

// recordRow renders a record in DatasetColumns order
func recordRow(r domain.Record) []string {
	return []string{
		r.Name,
		string(r.Sex),
		formatInt(r.Births),
		strconv.Itoa(r.Year),
	}
}
