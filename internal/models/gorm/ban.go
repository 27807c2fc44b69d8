package gorm

import "time"

// Ban is one suspension row. Rows are never deleted; "active" is derived from the time range.
type Ban struct {
	ID             int64      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	UserID         int64      `gorm:"column:user_id" json:"user_id"`
	TargetUserID   int64      `gorm:"column:target_user_id;index" json:"target_user_id"`
	Reason         string     `gorm:"column:reason;type:text" json:"reason"`
	IPAddress      *string    `gorm:"column:ip_address;size:64" json:"ip_address"`
	StartTimestamp time.Time  `gorm:"column:start_timestamp" json:"start_timestamp"`
	EndTimestamp   *time.Time `gorm:"column:end_timestamp" json:"end_timestamp"`
}

func (Ban) TableName() string {
	return "bans"
}

// IsActive reports whether the ban covers now.
func (b Ban) IsActive(now time.Time) bool {
	if b.StartTimestamp.After(now) {
		return false
	}
	return b.EndTimestamp == nil || b.EndTimestamp.After(now)
}
