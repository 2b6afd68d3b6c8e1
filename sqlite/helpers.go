package sqlite

import (
	"fmt"
	"strings"
	"time"
)

// timeFormat is fixed-width UTC so timestamp columns sort lexically.
const timeFormat = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeFormat)
}

// parseTime parses a timestamp column, naming the column on failure.
func parseTime(value, column string) (time.Time, error) {
	t, err := time.Parse(timeFormat, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse %s: %w", column, err)
	}
	return t, nil
}

// appendLimit appends LIMIT and OFFSET clauses for positive values. SQLite
// needs a LIMIT before OFFSET, so an offset alone uses LIMIT -1.
func appendLimit(query *strings.Builder, args *[]any, limit, offset int) {
	switch {
	case limit > 0:
		query.WriteString(" LIMIT ?")
		*args = append(*args, limit)
	case offset > 0:
		query.WriteString(" LIMIT -1")
	}
	if offset > 0 {
		query.WriteString(" OFFSET ?")
		*args = append(*args, offset)
	}
}
