package convert

import (
	"database/sql"
	"strconv"
)

// Row is one record of an upstream tabular result, keyed by column header.
type Row map[string]any

// Float returns the named column as a finite float64.
func (r Row) Float(key string) (float64, bool) { return Float(r[key]) }

// Int returns the named column as an int.
func (r Row) Int(key string) (int, bool) { return Int(r[key]) }

// String returns the named column as trimmed text.
func (r Row) String(key string) (string, bool) { return String(r[key]) }

// NullFloat returns the named column as a sql.NullFloat64.
func (r Row) NullFloat(key string) sql.NullFloat64 { return NullFloat(r[key]) }

// NullInt returns the named column as a sql.NullInt32.
func (r Row) NullInt(key string) sql.NullInt32 { return NullInt(r[key]) }

// NullString returns the named column as a sql.NullString.
func (r Row) NullString(key string) sql.NullString { return NullString(r[key]) }

// Text returns the named column as text whatever its upstream type,
// so jersey numbers like "00" and 7 are both readable.
func (r Row) Text(key string) (string, bool) {
	if s, ok := String(r[key]); ok {
		return s, true
	}
	if n, ok := Int(r[key]); ok {
		return strconv.Itoa(n), true
	}
	return "", false
}
