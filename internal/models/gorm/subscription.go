package gorm

import "time"

type Subscription struct {
	ID                 int64     `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	UserID             int64     `gorm:"column:user_id;index" json:"user_id"`
	SubscriptionType   string    `gorm:"column:subscription_type;size:64" json:"subscription_type"`
	SubscriptionTier   int       `gorm:"column:subscription_tier" json:"subscription_tier"`
	SubscriptionSource string    `gorm:"column:subscription_source;size:64" json:"subscription_source"`
	Status             string    `gorm:"column:status;size:32" json:"status"`
	CreatedDate        time.Time `gorm:"column:created_date" json:"created_date"`
	EndDate            time.Time `gorm:"column:end_date" json:"end_date"`
	Gifter             *int64    `gorm:"column:gifter;index" json:"gifter"`
	Recurring          bool      `gorm:"column:recurring;default:false" json:"recurring"`
}

func (Subscription) TableName() string {
	return "subscriptions"
}
