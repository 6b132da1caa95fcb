package models

import (
	"database/sql"
	"strings"
)

// Canonical positions
const (
	PositionCenter        = "C"
	PositionForward       = "F"
	PositionGuard         = "G"
	PositionForwardCenter = "F-C"
	PositionGuardForward  = "G-F"
)

var positionAliases = map[string]string{
	"CENTER":         PositionCenter,
	"FORWARD":        PositionForward,
	"GUARD":          PositionGuard,
	"C-F":            PositionForwardCenter,
	"F-G":            PositionGuardForward,
	"CENTER-FORWARD": PositionForwardCenter,
	"FORWARD-CENTER": PositionForwardCenter,
	"FORWARD-GUARD":  PositionGuardForward,
	"GUARD-FORWARD":  PositionGuardForward,
}

var canonicalPositions = map[string]bool{
	PositionCenter:        true,
	PositionForward:       true,
	PositionGuard:         true,
	PositionForwardCenter: true,
	PositionGuardForward:  true,
}

// NormalizePosition maps a raw position string onto {C, F, G, F-C, G-F}.
// Unrecognized input reports ok == false.
func NormalizePosition(raw string) (string, bool) {
	p := strings.ToUpper(strings.TrimSpace(raw))
	if canonical, ok := positionAliases[p]; ok {
		return canonical, true
	}
	if canonicalPositions[p] {
		return p, true
	}
	return "", false
}

// NullPosition is NormalizePosition as a nullable column value.
func NullPosition(raw string) sql.NullString {
	p, ok := NormalizePosition(raw)
	return sql.NullString{String: p, Valid: ok}
}
