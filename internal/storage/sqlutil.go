package storage

import (
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"time"
)

// checkRowsErr surfaces iteration errors that rows.Next() doesn't report
// directly. Call after every for rows.Next() loop.
func checkRowsErr(rows *sql.Rows) error {
	if err := rows.Err(); err != nil {
		return fmt.Errorf("rows iteration error: %w", err)
	}
	return nil
}

// toSQLValue normalizes field-map values for binding: times become RFC3339
// strings, everything else passes through.
func toSQLValue(v any) any {
	if t, ok := v.(time.Time); ok {
		return t.UTC().Format(time.RFC3339)
	}
	return v
}

// buildSetClause turns a field map into "col1 = ?, col2 = ?" plus bind args,
// admitting only whitelisted columns. Columns are sorted for deterministic
// statements.
func buildSetClause(fields map[string]any, allowed map[string]bool) (string, []any, error) {
	cols := make([]string, 0, len(fields))
	for col := range fields {
		if !allowed[col] {
			return "", nil, fmt.Errorf("column %q not updatable", col)
		}
		cols = append(cols, col)
	}
	sort.Strings(cols)

	parts := make([]string, 0, len(cols))
	args := make([]any, 0, len(cols))
	for _, col := range cols {
		parts = append(parts, col+" = ?")
		args = append(args, toSQLValue(fields[col]))
	}
	return strings.Join(parts, ", "), args, nil
}

// parseTimestamp parses an RFC3339 string stored in a TEXT column.
func parseTimestamp(s string) time.Time {
	t, _ := time.Parse(time.RFC3339, s)
	return t
}
