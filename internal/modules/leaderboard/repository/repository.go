package repository

import (
	"context"

	"anoa.com/proofofgrind/internal/entity"
	"gorm.io/gorm"
)

type LeaderboardRepository interface {
	SaveSnapshot(ctx context.Context, rows []entity.LeaderboardSnapshot) error
	// GetLatestSnapshot returns the rows of the most recent snapshot ordered
	// by position, or nil when none was taken yet.
	GetLatestSnapshot(ctx context.Context) ([]entity.LeaderboardSnapshot, error)
}

type leaderboardRepository struct {
	db *gorm.DB
}

func NewLeaderboardRepository(db *gorm.DB) LeaderboardRepository {
	return &leaderboardRepository{db: db}
}

func (r *leaderboardRepository) SaveSnapshot(ctx context.Context, rows []entity.LeaderboardSnapshot) error {
	if len(rows) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&rows).Error
}

func (r *leaderboardRepository) GetLatestSnapshot(ctx context.Context) ([]entity.LeaderboardSnapshot, error) {
	var latest entity.LeaderboardSnapshot
	err := r.db.WithContext(ctx).Order("taken_at DESC, id DESC").Limit(1).Find(&latest).Error
	if err != nil {
		return nil, err
	}
	if latest.ID == 0 {
		return nil, nil
	}

	var rows []entity.LeaderboardSnapshot
	err = r.db.WithContext(ctx).
		Where("snapshot_id = ?", latest.SnapshotID).
		Order("position ASC").
		Find(&rows).Error
	return rows, err
}
