package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv         string
	Port           string
	AllowedOrigins string

	DatabaseURL string
	RedisURL    string

	JWTSecret  string
	SessionTTL time.Duration

	// Progression rules
	CooldownInterval time.Duration
	StreakWindow     time.Duration
	CheckInPeriod    time.Duration
	LeaderboardSize  int

	SnapshotSchedule string
	RateLimitWrite   time.Duration
}

func Load() (*Config, error) {
	// Don't fail if .env doesn't exist (might be prod env vars)
	_ = godotenv.Load()

	cfg := &Config{
		AppEnv:         getEnv("APP_ENV", "development"),
		Port:           getEnv("PORT", "8080"),
		AllowedOrigins: getEnv("ALLOWED_ORIGINS", "http://localhost:3000"),

		DatabaseURL: os.Getenv("DATABASE_URL"),
		RedisURL:    os.Getenv("REDIS_URL"),

		JWTSecret: getEnv("JWT_SECRET", "12345"),

		SnapshotSchedule: getEnv("SNAPSHOT_SCHEDULE", "@hourly"),
	}

	// Parsing durations
	var err error
	cfg.SessionTTL, err = parseDuration(getEnv("SESSION_TTL", "24h"))
	if err != nil {
		return nil, fmt.Errorf("invalid SESSION_TTL: %w", err)
	}
	cfg.CooldownInterval, err = parseDuration(getEnv("COOLDOWN_INTERVAL", "1h"))
	if err != nil {
		return nil, fmt.Errorf("invalid COOLDOWN_INTERVAL: %w", err)
	}
	cfg.StreakWindow, err = parseDuration(getEnv("STREAK_WINDOW", "48h"))
	if err != nil {
		return nil, fmt.Errorf("invalid STREAK_WINDOW: %w", err)
	}
	cfg.CheckInPeriod, err = parseDuration(getEnv("CHECKIN_PERIOD", "0s"))
	if err != nil {
		return nil, fmt.Errorf("invalid CHECKIN_PERIOD: %w", err)
	}
	cfg.RateLimitWrite, err = parseDuration(getEnv("RATE_LIMIT_WRITE", "1s"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_WRITE: %w", err)
	}

	cfg.LeaderboardSize, err = strconv.Atoi(getEnv("LEADERBOARD_SIZE", "10"))
	if err != nil {
		return nil, fmt.Errorf("invalid LEADERBOARD_SIZE: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate rejects rule combinations the engine cannot honor.
func (c *Config) Validate() error {
	if c.CooldownInterval <= 0 {
		return errors.New("COOLDOWN_INTERVAL must be positive")
	}
	if c.StreakWindow < c.CooldownInterval {
		return errors.New("STREAK_WINDOW must not be shorter than COOLDOWN_INTERVAL")
	}
	if c.CheckInPeriod < 0 {
		return errors.New("CHECKIN_PERIOD must not be negative")
	}
	if c.LeaderboardSize < 1 {
		return errors.New("LEADERBOARD_SIZE must be at least 1")
	}
	return nil
}

func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func parseDuration(s string) (time.Duration, error) {
	return time.ParseDuration(s)
}
