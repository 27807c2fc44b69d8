package gorm

import "time"

type User struct {
	ID                 int64     `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Username           string    `gorm:"column:username;uniqueIndex;size:64" json:"username"`
	Email              string    `gorm:"column:email;size:255" json:"email"`
	Country            *string   `gorm:"column:country;size:2" json:"country"`
	AllowGifting       bool      `gorm:"column:allow_gifting;default:true" json:"allow_gifting"`
	IsTwitchSubscriber bool      `gorm:"column:is_twitch_subscriber;default:false" json:"is_twitch_subscriber"`
	DiscordName        *string   `gorm:"column:discord_name;uniqueIndex;size:36" json:"discord_name"`
	DiscordUUID        *string   `gorm:"column:discord_uuid;uniqueIndex;size:36" json:"discord_uuid"`
	MinecraftName      *string   `gorm:"column:minecraft_name;uniqueIndex;size:16" json:"minecraft_name"`
	MinecraftUUID      *string   `gorm:"column:minecraft_uuid;uniqueIndex;size:36" json:"minecraft_uuid"`
	UserStatus         string    `gorm:"column:user_status;default:Active" json:"user_status"`
	CreatedDate        time.Time `gorm:"column:created_date;autoCreateTime" json:"created_date"`
	ModifiedDate       time.Time `gorm:"column:modified_date;autoUpdateTime" json:"modified_date"`
}

// TableName specifies the table name for GORM
func (User) TableName() string {
	return "users"
}

// Role is the catalogue of assignable roles
type Role struct {
	ID   int64  `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Name string `gorm:"column:name;uniqueIndex;size:100" json:"name"`
}

func (Role) TableName() string {
	return "roles"
}

type UserRole struct {
	UserID   int64  `gorm:"column:user_id;primaryKey" json:"user_id"`
	RoleName string `gorm:"column:role_name;primaryKey;size:100" json:"role_name"`
}

func (UserRole) TableName() string {
	return "user_roles"
}

// Feature is the catalogue of chat flairs
type Feature struct {
	ID    int64  `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Name  string `gorm:"column:name;uniqueIndex;size:100" json:"name"`
	Label string `gorm:"column:label;size:100" json:"label"`
}

func (Feature) TableName() string {
	return "features"
}

type UserFeature struct {
	UserID      int64  `gorm:"column:user_id;primaryKey" json:"user_id"`
	FeatureName string `gorm:"column:feature_name;primaryKey;size:100" json:"feature_name"`
}

func (UserFeature) TableName() string {
	return "user_features"
}

// UserAuthProfile links a user to an external login provider
type UserAuthProfile struct {
	UserID       int64     `gorm:"column:user_id;primaryKey" json:"user_id"`
	AuthProvider string    `gorm:"column:auth_provider;primaryKey;size:32" json:"auth_provider"`
	AuthID       string    `gorm:"column:auth_id;size:64" json:"auth_id"`
	AuthDetail   string    `gorm:"column:auth_detail;size:255" json:"auth_detail"`
	CreatedDate  time.Time `gorm:"column:created_date;autoCreateTime" json:"created_date"`
	ModifiedDate time.Time `gorm:"column:modified_date;autoUpdateTime" json:"modified_date"`
}

func (UserAuthProfile) TableName() string {
	return "users_auth"
}
