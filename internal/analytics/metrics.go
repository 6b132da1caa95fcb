// Package analytics holds pure basketball calculations: derived efficiency
// metrics for a season line and the starter classification rule.
package analytics

import (
	"database/sql"
	"math"
)

// Rounding precision for derived metrics
const (
	percentagePrecision = 4
	defaultPrecision    = 2
)

// turnoverEpsilon is the turnover floor below which the assist/turnover
// ratio reports raw assists.
const turnoverEpsilon = 0.1

// StatLine is the raw input to the calculator. Absent inputs are invalid values.
type StatLine struct {
	GamesPlayed            sql.NullFloat64
	Points                 sql.NullFloat64
	Rebounds               sql.NullFloat64
	Assists                sql.NullFloat64
	Steals                 sql.NullFloat64
	Blocks                 sql.NullFloat64
	Turnovers              sql.NullFloat64
	FieldGoalsMade         sql.NullFloat64
	FieldGoalsAttempted    sql.NullFloat64
	ThreePointersMade      sql.NullFloat64
	ThreePointersAttempted sql.NullFloat64
	FreeThrowsMade         sql.NullFloat64
	FreeThrowsAttempted    sql.NullFloat64
}

// Metrics are the derived values. A metric is absent exactly when one of its
// own inputs is absent (or games played is absent or zero for per-game
// metrics). Otherwise it is a finite number, including guarded zeros.
type Metrics struct {
	TrueShootingPercentage       sql.NullFloat64
	EffectiveFieldGoalPercentage sql.NullFloat64
	AssistToTurnoverRatio        sql.NullFloat64
	EfficiencyRating             sql.NullFloat64
	ImpactScore                  sql.NullFloat64
	UsageRate                    sql.NullFloat64
	PlayerEfficiencyRating       sql.NullFloat64
}

// Calculate computes every derived metric for s.
func Calculate(s StatLine) Metrics {
	var m Metrics

	if present(s.Points, s.FieldGoalsAttempted, s.FreeThrowsAttempted) {
		denom := 2 * (s.FieldGoalsAttempted.Float64 + 0.44*s.FreeThrowsAttempted.Float64)
		m.TrueShootingPercentage = value(safeDiv(s.Points.Float64, denom), percentagePrecision)
	}

	if present(s.FieldGoalsMade, s.ThreePointersMade, s.FieldGoalsAttempted) {
		made := s.FieldGoalsMade.Float64 + 0.5*s.ThreePointersMade.Float64
		m.EffectiveFieldGoalPercentage = value(safeDiv(made, s.FieldGoalsAttempted.Float64), percentagePrecision)
	}

	if present(s.Assists, s.Turnovers) {
		ratio := s.Assists.Float64
		if s.Turnovers.Float64 > turnoverEpsilon {
			ratio = s.Assists.Float64 / s.Turnovers.Float64
		}
		m.AssistToTurnoverRatio = value(ratio, defaultPrecision)
	}

	counting := present(s.Points, s.Rebounds, s.Assists, s.Steals, s.Blocks, s.Turnovers)
	if counting {
		impact := s.Points.Float64 + s.Rebounds.Float64 + s.Assists.Float64 +
			2*s.Steals.Float64 + 2*s.Blocks.Float64 - s.Turnovers.Float64
		m.ImpactScore = value(impact, defaultPrecision)
	}

	if !present(s.GamesPlayed) || s.GamesPlayed.Float64 <= 0 {
		return m
	}
	gp := s.GamesPlayed.Float64

	if counting {
		total := s.Points.Float64 + s.Rebounds.Float64 + s.Assists.Float64 +
			s.Steals.Float64 + s.Blocks.Float64 - s.Turnovers.Float64
		m.EfficiencyRating = value(total/gp, defaultPrecision)
	}

	if present(s.FieldGoalsAttempted, s.FreeThrowsAttempted, s.Turnovers) {
		usage := s.FieldGoalsAttempted.Float64 + 0.44*s.FreeThrowsAttempted.Float64 + s.Turnovers.Float64
		m.UsageRate = value(usage/gp, defaultPrecision)
	}

	if counting && present(s.FieldGoalsMade, s.FieldGoalsAttempted, s.FreeThrowsMade, s.FreeThrowsAttempted) {
		missedFG := s.FieldGoalsAttempted.Float64 - s.FieldGoalsMade.Float64
		missedFT := s.FreeThrowsAttempted.Float64 - s.FreeThrowsMade.Float64
		per := s.Points.Float64 + s.Rebounds.Float64 + s.Assists.Float64 + s.Steals.Float64 +
			s.Blocks.Float64 - missedFG - missedFT - s.Turnovers.Float64
		m.PlayerEfficiencyRating = value(per/gp, defaultPrecision)
	}

	return m
}

func present(values ...sql.NullFloat64) bool {
	for _, v := range values {
		if !v.Valid {
			return false
		}
	}
	return true
}

// safeDiv returns 0 for a zero denominator.
func safeDiv(num, denom float64) float64 {
	if denom == 0 {
		return 0
	}
	return num / denom
}

func value(f float64, places int) sql.NullFloat64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: Round(f, places), Valid: true}
}

// Round rounds f half away from zero to the given number of decimal places.
func Round(f float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(f*scale) / scale
}
