package database

import (
	"fmt"
	"os"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Connect opens the Postgres connection. An empty databaseURL falls back to
// the DB_* variables.
func Connect(databaseURL string) (*gorm.DB, error) {
	dsn := databaseURL
	if dsn == "" {
		dsn = DSNFromEnv()
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}
	return db, nil
}

func DSNFromEnv() string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		valueOrDefault("DB_HOST", "localhost"),
		valueOrDefault("DB_USER", "postgres"),
		os.Getenv("DB_PASS"),
		valueOrDefault("DB_NAME", "proof_of_grind"),
		valueOrDefault("DB_PORT", "5432"),
	)
}

func valueOrDefault(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}

	return fallback
}
