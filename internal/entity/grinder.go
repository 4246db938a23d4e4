package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GrinderRecord is the per-address progression state. One row per registered
// address; rows are never deleted.
type GrinderRecord struct {
	Address       string    `gorm:"size:42;primaryKey" json:"address"`
	TokenID       uint64    `gorm:"uniqueIndex;not null" json:"token_id"` // registration order, starts at 1
	TotalGrinds   uint64    `gorm:"not null;default:0" json:"total_grinds"`
	CurrentStreak uint64    `gorm:"not null;default:0" json:"current_streak"`
	BestStreak    uint64    `gorm:"not null;default:0" json:"best_streak"`
	LastGrindAt   time.Time `json:"last_grind_at"` // zero until the first grind
	LastCheckInAt time.Time `json:"last_check_in_at"`
	Points        uint64    `gorm:"not null;default:0;index" json:"points"`
	RegisteredAt  time.Time `gorm:"not null" json:"registered_at"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

const (
	ActionGrind         = "grind"
	ActionBoostReceived = "boost_received"
	ActionBoostGiven    = "boost_given"
	ActionCheckIn       = "check_in"
)

type PointLog struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Address      string    `gorm:"size:42;index:idx_address_date,priority:1;not null" json:"address"`
	ActionType   string    `gorm:"size:50;not null" json:"action_type"` // one of the Action* constants
	Points       uint64    `gorm:"not null" json:"points"`
	Counterparty *string   `gorm:"size:42" json:"counterparty,omitempty"` // the other side of a boost
	CreatedAt    time.Time `gorm:"index:idx_address_date,priority:2;index:idx_point_date" json:"created_at"`
}

func (l *PointLog) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}

// LeaderboardSnapshot is one row of a persisted top-K standing.
type LeaderboardSnapshot struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	SnapshotID uuid.UUID `gorm:"type:uuid;index;not null" json:"snapshot_id"`
	Position   int       `gorm:"not null" json:"position"`
	Address    string    `gorm:"size:42;not null" json:"address"`
	Points     uint64    `gorm:"not null" json:"points"`
	TakenAt    time.Time `gorm:"index;not null" json:"taken_at"`
}
