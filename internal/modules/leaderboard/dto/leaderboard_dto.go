package dto

import (
	"time"

	"anoa.com/proofofgrind/internal/modules/tier"
	"github.com/google/uuid"
)

// LeaderboardEntry is one row of the live top-K.
// Position is the ranking in the leaderboard (1-based).
type LeaderboardEntry struct {
	Position      int         `json:"position"`
	Address       string      `json:"address"`
	TokenID       uint64      `json:"token_id"`
	Points        uint64      `json:"points"`
	TotalGrinds   uint64      `json:"total_grinds"`
	CurrentStreak uint64      `json:"current_streak"`
	TierStatus    tier.Status `json:"tier_status"`
}

type LeaderboardQuery struct {
	Limit int `form:"limit" binding:"omitempty,min=1"`
}

type SnapshotEntry struct {
	Position int    `json:"position"`
	Address  string `json:"address"`
	Points   uint64 `json:"points"`
}

type SnapshotResponse struct {
	SnapshotID uuid.UUID       `json:"snapshot_id"`
	TakenAt    time.Time       `json:"taken_at"`
	Entries    []SnapshotEntry `json:"entries"`
}
