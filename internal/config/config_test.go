package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"COOLDOWN_INTERVAL", "STREAK_WINDOW", "CHECKIN_PERIOD", "LEADERBOARD_SIZE", "SESSION_TTL", "RATE_LIMIT_WRITE"} {
		unsetEnv(t, key)
	}

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, time.Hour, cfg.CooldownInterval)
	assert.Equal(t, 48*time.Hour, cfg.StreakWindow)
	assert.Equal(t, time.Duration(0), cfg.CheckInPeriod)
	assert.Equal(t, 10, cfg.LeaderboardSize)
	assert.Equal(t, 24*time.Hour, cfg.SessionTTL)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("COOLDOWN_INTERVAL", "30m")
	t.Setenv("STREAK_WINDOW", "36h")
	t.Setenv("CHECKIN_PERIOD", "24h")
	t.Setenv("LEADERBOARD_SIZE", "25")
	t.Setenv("SESSION_TTL", "1h")
	t.Setenv("RATE_LIMIT_WRITE", "2s")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 30*time.Minute, cfg.CooldownInterval)
	assert.Equal(t, 36*time.Hour, cfg.StreakWindow)
	assert.Equal(t, 24*time.Hour, cfg.CheckInPeriod)
	assert.Equal(t, 25, cfg.LeaderboardSize)
	assert.Equal(t, 2*time.Second, cfg.RateLimitWrite)
}

func TestLoadRejectsBadValues(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"unparseable cooldown", "COOLDOWN_INTERVAL", "soon"},
		{"zero cooldown", "COOLDOWN_INTERVAL", "0s"},
		{"window shorter than cooldown", "STREAK_WINDOW", "10m"},
		{"negative check-in period", "CHECKIN_PERIOD", "-1h"},
		{"non numeric board size", "LEADERBOARD_SIZE", "ten"},
		{"empty board", "LEADERBOARD_SIZE", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("COOLDOWN_INTERVAL", "1h")
			t.Setenv("STREAK_WINDOW", "48h")
			t.Setenv("CHECKIN_PERIOD", "0s")
			t.Setenv("LEADERBOARD_SIZE", "10")
			t.Setenv("SESSION_TTL", "24h")
			t.Setenv("RATE_LIMIT_WRITE", "1s")
			t.Setenv(tt.key, tt.val)

			_, err := Load()
			assert.Error(t, err)
		})
	}
}

// unsetEnv removes key for the duration of the test.
func unsetEnv(t *testing.T, key string) {
	t.Helper()
	t.Setenv(key, "")
	require.NoError(t, os.Unsetenv(key))
}
