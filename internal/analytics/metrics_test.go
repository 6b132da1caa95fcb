package analytics

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
)

func n(f float64) sql.NullFloat64 { return sql.NullFloat64{Float64: f, Valid: true} }

func fullLine() StatLine {
	return StatLine{
		GamesPlayed:            n(10),
		Points:                 n(250),
		Rebounds:               n(80),
		Assists:                n(60),
		Steals:                 n(10),
		Blocks:                 n(5),
		Turnovers:              n(25),
		FieldGoalsMade:         n(90),
		FieldGoalsAttempted:    n(180),
		ThreePointersMade:      n(30),
		ThreePointersAttempted: n(80),
		FreeThrowsMade:         n(40),
		FreeThrowsAttempted:    n(50),
	}
}

func TestCalculate_FullLine(t *testing.T) {
	m := Calculate(fullLine())

	// 250 / (2 * (180 + 22)) = 0.61881
	assert.Equal(t, 0.6188, m.TrueShootingPercentage.Float64)
	// (90 + 15) / 180 = 0.58333
	assert.Equal(t, 0.5833, m.EffectiveFieldGoalPercentage.Float64)
	assert.Equal(t, 2.4, m.AssistToTurnoverRatio.Float64)
	// (250+80+60+10+5-25) / 10
	assert.Equal(t, 38.0, m.EfficiencyRating.Float64)
	// 250+80+60+20+10-25
	assert.Equal(t, 395.0, m.ImpactScore.Float64)
	// (180 + 22 + 25) / 10
	assert.Equal(t, 22.7, m.UsageRate.Float64)
	// (405 - 90 - 10 - 25) / 10
	assert.Equal(t, 28.0, m.PlayerEfficiencyRating.Float64)
}

func TestCalculate_ZeroFieldGoalAttempts(t *testing.T) {
	s := fullLine()
	s.FieldGoalsMade = n(0)
	s.ThreePointersMade = n(0)
	s.FieldGoalsAttempted = n(0)
	s.FreeThrowsAttempted = n(0)
	s.Points = n(0)

	m := Calculate(s)
	assert.True(t, m.EffectiveFieldGoalPercentage.Valid)
	assert.Equal(t, 0.0, m.EffectiveFieldGoalPercentage.Float64)
	assert.True(t, m.TrueShootingPercentage.Valid)
	assert.Equal(t, 0.0, m.TrueShootingPercentage.Float64)
}

func TestCalculate_ZeroTurnoversFallsBackToAssists(t *testing.T) {
	s := fullLine()
	s.Assists = n(4.5)
	s.Turnovers = n(0)

	m := Calculate(s)
	assert.True(t, m.AssistToTurnoverRatio.Valid)
	assert.Equal(t, 4.5, m.AssistToTurnoverRatio.Float64)
}

func TestCalculate_ZeroGamesPlayed(t *testing.T) {
	s := fullLine()
	s.GamesPlayed = n(0)

	m := Calculate(s)
	assert.False(t, m.EfficiencyRating.Valid)
	assert.False(t, m.UsageRate.Valid)
	assert.False(t, m.PlayerEfficiencyRating.Valid)
	assert.True(t, m.ImpactScore.Valid, "impact is not per-game")
	assert.True(t, m.TrueShootingPercentage.Valid)
}

func TestCalculate_AbsentInputs(t *testing.T) {
	m := Calculate(StatLine{})
	assert.Equal(t, Metrics{}, m)

	s := fullLine()
	s.Turnovers = sql.NullFloat64{}
	m = Calculate(s)
	assert.False(t, m.AssistToTurnoverRatio.Valid)
	assert.False(t, m.EfficiencyRating.Valid)
	assert.False(t, m.ImpactScore.Valid)
	assert.True(t, m.EffectiveFieldGoalPercentage.Valid)
}

func TestRound(t *testing.T) {
	assert.Equal(t, 0.1235, Round(0.123456, 4))
	assert.Equal(t, 2.35, Round(2.3456, 2))
	assert.Equal(t, -1.5, Round(-1.5, 2))
}
