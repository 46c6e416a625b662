package database

import (
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// BatchSize bounds the number of rows sent in a single statement.
const BatchSize = 1000

// Chunks splits items into consecutive slices of at most size elements.
func Chunks[T any](items []T, size int) [][]T {
	if size <= 0 {
		size = BatchSize
	}
	var out [][]T
	for start := 0; start < len(items); start += size {
		end := start + size
		if end > len(items) {
			end = len(items)
		}
		out = append(out, items[start:end])
	}
	return out
}

// InsertIgnore inserts rows into table, skipping rows that collide with the
// unique key made of all columns, and scans the returning expression of the
// rows actually inserted into dest.
func InsertIgnore(tx *gorm.DB, table string, columns []string, rows [][]interface{}, returning string, dest interface{}) error {
	if len(rows) == 0 {
		return nil
	}

	placeholder := "(" + strings.TrimSuffix(strings.Repeat("?,", len(columns)), ",") + ")"
	values := make([]string, len(rows))
	args := make([]interface{}, 0, len(rows)*len(columns))
	for i, row := range rows {
		if len(row) != len(columns) {
			return fmt.Errorf("insert into %s: row %d has %d values for %d columns", table, i, len(row), len(columns))
		}
		values[i] = placeholder
		args = append(args, row...)
	}

	cols := strings.Join(columns, ", ")
	sql := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES %s ON CONFLICT (%s) DO NOTHING RETURNING %s",
		table, cols, strings.Join(values, ", "), cols, returning,
	)
	return tx.Raw(sql, args...).Scan(dest).Error
}
