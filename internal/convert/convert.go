// Package convert coerces loosely-typed upstream values into Go scalars.
//
// Every function here is total: malformed input yields an absent result
// (ok == false or an invalid sql.Null* value), never an error or a panic.
// Upstream schema drift therefore degrades a single field instead of a record.
package convert

import (
	"database/sql"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// missingMarkers are the textual null markers seen in tabular upstream data.
var missingMarkers = map[string]struct{}{
	"":     {},
	"nan":  {},
	"null": {},
	"none": {},
	"n/a":  {},
	"na":   {},
	"-":    {},
	"--":   {},
}

// IsMissing reports whether v is nil or a textual missing-value marker.
func IsMissing(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		_, ok := missingMarkers[strings.ToLower(strings.TrimSpace(x))]
		return ok
	case float64:
		return math.IsNaN(x)
	case float32:
		return math.IsNaN(float64(x))
	}
	return false
}

// Float converts v to a finite float64.
func Float(v any) (float64, bool) {
	switch x := v.(type) {
	case nil:
		return 0, false
	case float64:
		return finite(x)
	case float32:
		return finite(float64(x))
	case int:
		return float64(x), true
	case int32:
		return float64(x), true
	case int64:
		return float64(x), true
	case uint32:
		return float64(x), true
	case uint64:
		return float64(x), true
	case json.Number:
		f, err := x.Float64()
		if err != nil {
			return 0, false
		}
		return finite(f)
	case string:
		if IsMissing(x) {
			return 0, false
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0, false
		}
		return finite(f)
	}
	return 0, false
}

// Int converts v to an int. Fractional numbers are truncated toward zero;
// strings must hold a plain integer literal.
func Int(v any) (int, bool) {
	switch x := v.(type) {
	case nil:
		return 0, false
	case int:
		return x, true
	case int32:
		return int(x), true
	case int64:
		return int(x), true
	case uint32:
		return int(x), true
	case float64:
		return truncate(x)
	case float32:
		return truncate(float64(x))
	case json.Number:
		if n, err := x.Int64(); err == nil {
			return int(n), true
		}
		f, err := x.Float64()
		if err != nil {
			return 0, false
		}
		return truncate(f)
	case string:
		if IsMissing(x) {
			return 0, false
		}
		n, err := strconv.Atoi(strings.TrimSpace(x))
		if err != nil {
			return 0, false
		}
		return n, true
	}
	return 0, false
}

// String returns the trimmed text of v. Only string values are accepted;
// missing markers are absent.
func String(v any) (string, bool) {
	s, ok := v.(string)
	if !ok || IsMissing(s) {
		return "", false
	}
	return strings.TrimSpace(s), true
}

// NullFloat wraps Float as a sql.NullFloat64.
func NullFloat(v any) sql.NullFloat64 {
	f, ok := Float(v)
	return sql.NullFloat64{Float64: f, Valid: ok}
}

// NullInt wraps Int as a sql.NullInt32. Values outside the int32 range are absent.
func NullInt(v any) sql.NullInt32 {
	n, ok := Int(v)
	if !ok || n > math.MaxInt32 || n < math.MinInt32 {
		return sql.NullInt32{}
	}
	return sql.NullInt32{Int32: int32(n), Valid: true}
}

// NullString wraps String as a sql.NullString.
func NullString(v any) sql.NullString {
	s, ok := String(v)
	return sql.NullString{String: s, Valid: ok}
}

func finite(f float64) (float64, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func truncate(f float64) (int, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) || math.Abs(f) > math.MaxInt64/2 {
		return 0, false
	}
	return int(math.Trunc(f)), true
}
