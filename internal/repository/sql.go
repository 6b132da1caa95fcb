package repository

import (
	"fmt"
	"strings"
)

// upsertSQL builds INSERT ... ON CONFLICT (conflict) DO UPDATE SET col = EXCLUDED.col
// for every column not in the conflict target or in keep.
func upsertSQL(table string, columns, conflict, keep []string) string {
	skip := make(map[string]bool, len(conflict)+len(keep))
	for _, c := range conflict {
		skip[c] = true
	}
	for _, c := range keep {
		skip[c] = true
	}

	placeholders := make([]string, len(columns))
	var updates []string
	for i, c := range columns {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		if !skip[c] {
			updates = append(updates, fmt.Sprintf("%s = EXCLUDED.%s", c, c))
		}
	}

	return fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s) ON CONFLICT (%s) DO UPDATE SET %s RETURNING id",
		table,
		strings.Join(columns, ", "),
		strings.Join(placeholders, ", "),
		strings.Join(conflict, ", "),
		strings.Join(updates, ", "),
	)
}

// updateByKeySQL builds UPDATE table SET col = $n ... WHERE key = $k RETURNING id
// with placeholders numbered in column order, so it takes the same args as upsertSQL.
func updateByKeySQL(table string, columns []string, key string) string {
	var (
		sets  []string
		where string
	)
	for i, c := range columns {
		if c == key {
			where = fmt.Sprintf("%s = $%d", c, i+1)
			continue
		}
		sets = append(sets, fmt.Sprintf("%s = $%d", c, i+1))
	}

	return fmt.Sprintf("UPDATE %s SET %s WHERE %s RETURNING id", table, strings.Join(sets, ", "), where)
}
