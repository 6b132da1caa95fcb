package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRosterKey(t *testing.T) {
	assert.Equal(t, "nba:roster:2024-25:1610612752", RosterKey("2024-25", 1610612752))
}

func TestNewRedisCache_Unreachable(t *testing.T) {
	_, err := NewRedisCache(Config{Host: "127.0.0.1", Port: "1"})
	assert.Error(t, err)
}
