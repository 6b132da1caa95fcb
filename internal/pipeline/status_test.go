package pipeline

import (
	"errors"
	"testing"
	"time"

	"nba_stats/ingestion/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatus_RejectsConcurrentRuns(t *testing.T) {
	var status Status
	at := time.Date(2025, 1, 2, 6, 0, 0, 0, time.UTC)

	require.True(t, status.TryBegin())
	assert.True(t, status.Snapshot().IsRunning)
	assert.False(t, status.TryBegin(), "second run while the first is in flight")

	status.Finish(&Report{RunID: "run-1"}, nil, at)

	snap := status.Snapshot()
	assert.False(t, snap.IsRunning)
	require.NotNil(t, snap.LastSuccess)
	assert.Empty(t, snap.LastError)
	assert.Equal(t, "run-1", snap.LastReport.RunID)
}

func TestStatus_Finish(t *testing.T) {
	var status Status
	at := time.Date(2025, 1, 2, 6, 0, 0, 0, time.UTC)

	require.True(t, status.TryBegin())
	assert.False(t, status.TryBegin())
	status.Finish(nil, nil, at)

	require.True(t, status.TryBegin())
	status.Finish(nil, errors.New("teams stage failed"), at.Add(24*time.Hour))

	snap := status.Snapshot()
	assert.Equal(t, "teams stage failed", snap.LastError)
	assert.Equal(t, at, *snap.LastSuccess, "failure keeps the last success time")

	require.True(t, status.TryBegin())
	status.Finish(nil, nil, at.Add(48*time.Hour))
	assert.Empty(t, status.Snapshot().LastError)
}

func TestOptionsFromConfig(t *testing.T) {
	cfg := &config.Config{
		SeasonEndYear:      2025,
		BoxScoreResume:     12,
		SkipIngestedBoxes:  true,
		StarterSampleGames: 40,
		StarterMinGames:    4,
		StarterThreshold:   0.8,
		CacheTTLRosters:    time.Hour,
		FetchMaxRetries:    2,
		FetchBackoffBase:   time.Second,
		LongPauseEvery:     10,
		LongPause:          2 * time.Second,
	}

	opts := OptionsFromConfig(cfg)
	assert.Equal(t, 12, opts.BoxScoreResumeFrom)
	assert.Equal(t, 4, opts.StarterRule.MinGames)
	assert.Equal(t, 0.8, opts.StarterRule.Threshold)
	assert.Equal(t, RetryPolicy{MaxRetries: 2, Base: time.Second}, opts.Retry)
	assert.Equal(t, Pacing{Every: 10, Pause: 2 * time.Second}, opts.Pacing)
}
