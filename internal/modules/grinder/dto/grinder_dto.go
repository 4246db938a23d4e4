package dto

import (
	"time"

	"anoa.com/proofofgrind/internal/modules/tier"
)

type BoostRequest struct {
	Target string `json:"target" binding:"required,eth_addr"`
}

type HistoryQuery struct {
	Limit int `form:"limit" binding:"omitempty,min=1,max=100"`
}

// GrinderStatsResponse is the public view of one grinder. Last* fields are
// null until the action has happened at least once.
type GrinderStatsResponse struct {
	Address       string      `json:"address"`
	TokenID       uint64      `json:"token_id"`
	TotalGrinds   uint64      `json:"total_grinds"`
	CurrentStreak uint64      `json:"current_streak"`
	BestStreak    uint64      `json:"best_streak"`
	Points        uint64      `json:"points"`
	Tier          string      `json:"tier"`
	TierStatus    tier.Status `json:"tier_status"`
	LastGrindAt   *time.Time  `json:"last_grind_at"`
	LastCheckInAt *time.Time  `json:"last_check_in_at"`
	RegisteredAt  time.Time   `json:"registered_at"`
}

type RegisteredResponse struct {
	Address    string `json:"address"`
	Registered bool   `json:"registered"`
}

type CooldownResponse struct {
	Address               string `json:"address"`
	CanGrind              bool   `json:"can_grind"`
	SecondsUntilNextGrind int64  `json:"seconds_until_next_grind"`
}

type TokenURIResponse struct {
	TokenID  uint64 `json:"token_id"`
	TokenURI string `json:"token_uri"`
}

type PointLogResponse struct {
	ActionType   string    `json:"action_type"`
	Points       uint64    `json:"points"`
	Counterparty *string   `json:"counterparty,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}
