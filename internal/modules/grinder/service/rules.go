package service

import (
	"errors"
	"time"
)

const (
	PointsGrind         = 10
	PointsBoostReceived = 5
	PointsBoostGiven    = 2
	PointsCheckIn       = 25

	DefaultCooldown     = time.Hour
	DefaultStreakWindow = 48 * time.Hour
	DefaultBoardSize    = 10
)

// Rules are the tunable progression parameters.
type Rules struct {
	CooldownInterval time.Duration
	StreakWindow     time.Duration
	// CheckInPeriod limits check-ins to one per UTC-aligned period. Zero
	// means check-ins are unlimited.
	CheckInPeriod time.Duration
	BoardSize     int

	GrindPoints         uint64
	BoostReceivedPoints uint64
	BoostGivenPoints    uint64
	CheckInPoints       uint64
}

func DefaultRules() Rules {
	return Rules{
		CooldownInterval:    DefaultCooldown,
		StreakWindow:        DefaultStreakWindow,
		BoardSize:           DefaultBoardSize,
		GrindPoints:         PointsGrind,
		BoostReceivedPoints: PointsBoostReceived,
		BoostGivenPoints:    PointsBoostGiven,
		CheckInPoints:       PointsCheckIn,
	}
}

func (r Rules) Validate() error {
	if r.CooldownInterval <= 0 {
		return errors.New("cooldown interval must be positive")
	}
	if r.StreakWindow < r.CooldownInterval {
		return errors.New("streak window must not be shorter than the cooldown")
	}
	if r.CheckInPeriod < 0 {
		return errors.New("check-in period must not be negative")
	}
	if r.BoardSize < 1 {
		return errors.New("leaderboard size must be at least 1")
	}
	if r.GrindPoints == 0 || r.CheckInPoints == 0 || r.BoostGivenPoints == 0 {
		return errors.New("point awards must be positive")
	}
	if r.BoostReceivedPoints <= r.BoostGivenPoints {
		return errors.New("boost target award must exceed the booster award")
	}
	return nil
}
