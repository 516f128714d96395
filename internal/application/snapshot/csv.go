package snapshot

import "strings"

// ParseCSV turns raw CSV text into ordered rows of trimmed string fields.
// The first line is a header and is discarded. Double-quoted fields may
// contain literal commas (a quote toggles in/out of quoted state).
//
// Known limitation: escaped quotes inside quoted fields ("") are not
// collapsed; the export pipeline this feeds from never produces them.
// Malformed rows (wrong field count) are passed through untouched; the
// parser is purely mechanical and never fails.
// PRE: csvText may be empty
// POST: Returns one []string per data line; header excluded
func ParseCSV(csvText string) [][]string {
	trimmed := strings.TrimSpace(csvText)
	if trimmed == "" {
		return nil
	}

	lines := strings.Split(trimmed, "\n")
	rows := make([][]string, 0, len(lines)-1)

	for i := 1; i < len(lines); i++ {
		line := strings.TrimSuffix(lines[i], "\r")

		var fields []string
		var current strings.Builder
		inQuotes := false

		for _, ch := range line {
			switch {
			case ch == '"':
				inQuotes = !inQuotes
			case ch == ',' && !inQuotes:
				fields = append(fields, strings.TrimSpace(current.String()))
				current.Reset()
			default:
				current.WriteRune(ch)
			}
		}
		fields = append(fields, strings.TrimSpace(current.String()))
		rows = append(rows, fields)
	}
	return rows
}

// field returns the column at index i, or "" when the row is short.
// Column meaning is positional; the mappings in dataset.go are the single
// place that knows which index is which.
func field(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}
