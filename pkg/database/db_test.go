package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDSNFromEnv(t *testing.T) {
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_USER", "grinder")
	t.Setenv("DB_PASS", "s3cret")
	t.Setenv("DB_NAME", "")
	t.Setenv("DB_PORT", "")

	assert.Equal(t,
		"host=db.internal user=grinder password=s3cret dbname=proof_of_grind port=5432 sslmode=disable",
		DSNFromEnv(),
	)
}
