package bootstrap

import (
	"anoa.com/proofofgrind/internal/entity"
	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&entity.GrinderRecord{},
		&entity.PointLog{},
		&entity.LeaderboardSnapshot{},
	)
}
