package repositories

import (
	"context"
	"fmt"
	"time"

	gormModels "github.com/DelphiTri/website/internal/models/gorm"

	"gorm.io/gorm"
)

type BanRepository struct {
	db *gorm.DB
}

func NewBanRepository(db *gorm.DB) *BanRepository {
	return &BanRepository{db: db}
}

// Create inserts the ban and fills in its id
func (r *BanRepository) Create(ctx context.Context, ban *gormModels.Ban) error {
	if err := r.db.WithContext(ctx).Create(ban).Error; err != nil {
		return translate(err, "failed to create ban")
	}
	return nil
}

func (r *BanRepository) GetByID(ctx context.Context, id int64) (*gormModels.Ban, error) {
	var ban gormModels.Ban
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&ban).Error; err != nil {
		return nil, translate(err, "failed to fetch ban %d", id)
	}
	return &ban, nil
}

// ListByTarget returns every ban issued against userID, newest start first
func (r *BanRepository) ListByTarget(ctx context.Context, userID int64) ([]gormModels.Ban, error) {
	bans := []gormModels.Ban{}
	err := r.db.WithContext(ctx).
		Where("target_user_id = ?", userID).
		Order("start_timestamp DESC").
		Order("id DESC").
		Find(&bans).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list bans: %w", err)
	}
	return bans, nil
}

// UpdateTerms overwrites reason and time range. The end column is always
// written so a nil end makes the ban indefinite again.
func (r *BanRepository) UpdateTerms(ctx context.Context, id int64, reason string, start time.Time, end *time.Time) error {
	res := r.db.WithContext(ctx).
		Model(&gormModels.Ban{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"reason":          reason,
			"start_timestamp": start,
			"end_timestamp":   end,
		})
	if res.Error != nil {
		return fmt.Errorf("failed to update ban %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("failed to update ban %d: %w", id, ErrNotFound)
	}
	return nil
}

// EndDate sets the end timestamp of the given bans to at
func (r *BanRepository) EndDate(ctx context.Context, ids []int64, at time.Time) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).
		Model(&gormModels.Ban{}).
		Where("id IN ?", ids).
		Update("end_timestamp", at)
	if res.Error != nil {
		return 0, fmt.Errorf("failed to end-date bans: %w", res.Error)
	}
	return res.RowsAffected, nil
}
