package repositories

import (
	"context"
	"fmt"

	gormModels "github.com/DelphiTri/website/internal/models/gorm"

	"gorm.io/gorm"
)

type SubscriptionRepository struct {
	db *gorm.DB
}

func NewSubscriptionRepository(db *gorm.DB) *SubscriptionRepository {
	return &SubscriptionRepository{db: db}
}

func (r *SubscriptionRepository) Create(ctx context.Context, sub *gormModels.Subscription) error {
	if err := r.db.WithContext(ctx).Create(sub).Error; err != nil {
		return translate(err, "failed to create subscription")
	}
	return nil
}

func (r *SubscriptionRepository) GetByID(ctx context.Context, id int64) (*gormModels.Subscription, error) {
	var sub gormModels.Subscription
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&sub).Error; err != nil {
		return nil, translate(err, "failed to fetch subscription %d", id)
	}
	return &sub, nil
}

// Save writes every column of an existing subscription, including a nil gifter
func (r *SubscriptionRepository) Save(ctx context.Context, sub *gormModels.Subscription) error {
	res := r.db.WithContext(ctx).
		Model(&gormModels.Subscription{}).
		Where("id = ?", sub.ID).
		Updates(map[string]any{
			"user_id":             sub.UserID,
			"subscription_type":   sub.SubscriptionType,
			"subscription_tier":   sub.SubscriptionTier,
			"subscription_source": sub.SubscriptionSource,
			"status":              sub.Status,
			"created_date":        sub.CreatedDate,
			"end_date":            sub.EndDate,
			"gifter":              sub.Gifter,
			"recurring":           sub.Recurring,
		})
	if res.Error != nil {
		return translate(res.Error, "failed to update subscription %d", sub.ID)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("failed to update subscription %d: %w", sub.ID, ErrNotFound)
	}
	return nil
}

// ListByOwner returns the subscriptions a user holds, newest first
func (r *SubscriptionRepository) ListByOwner(ctx context.Context, userID int64) ([]gormModels.Subscription, error) {
	subs := []gormModels.Subscription{}
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_date DESC").
		Order("id DESC").
		Find(&subs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list subscriptions: %w", err)
	}
	return subs, nil
}

// ListByGifter returns subscriptions gifted by userID whose status is in statuses
func (r *SubscriptionRepository) ListByGifter(ctx context.Context, userID int64, statuses []string) ([]gormModels.Subscription, error) {
	subs := []gormModels.Subscription{}
	err := r.db.WithContext(ctx).
		Where("gifter = ? AND status IN ?", userID, statuses).
		Order("created_date DESC").
		Order("id DESC").
		Find(&subs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list gifts: %w", err)
	}
	return subs, nil
}
