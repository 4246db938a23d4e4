package repository

import (
	"context"

	"anoa.com/proofofgrind/internal/entity"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Changeset is everything one grinder operation writes. It is applied
// all-or-nothing.
type Changeset struct {
	Records []entity.GrinderRecord
	Logs    []entity.PointLog
}

type GrinderRepository interface {
	Commit(ctx context.Context, cs Changeset) error
	// LoadAll returns every record ordered by token id. Used at boot only.
	LoadAll(ctx context.Context) ([]entity.GrinderRecord, error)
	GetPointLogs(ctx context.Context, address string, limit int) ([]entity.PointLog, error)
}

type grinderRepository struct {
	db *gorm.DB
}

func NewGrinderRepository(db *gorm.DB) GrinderRepository {
	return &grinderRepository{db: db}
}

func (r *grinderRepository) Commit(ctx context.Context, cs Changeset) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range cs.Records {
			// Upsert: registration inserts, every later operation overwrites.
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "address"}},
				UpdateAll: true,
			}).Create(&cs.Records[i]).Error; err != nil {
				return err
			}
		}

		if len(cs.Logs) > 0 {
			if err := tx.Create(&cs.Logs).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *grinderRepository) LoadAll(ctx context.Context) ([]entity.GrinderRecord, error) {
	var records []entity.GrinderRecord
	err := r.db.WithContext(ctx).Order("token_id ASC").Find(&records).Error
	return records, err
}

func (r *grinderRepository) GetPointLogs(ctx context.Context, address string, limit int) ([]entity.PointLog, error) {
	var logs []entity.PointLog
	err := r.db.WithContext(ctx).
		Where("address = ?", address).
		Order("created_at DESC").
		Limit(limit).
		Find(&logs).Error
	return logs, err
}
