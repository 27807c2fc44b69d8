package dtos

// UpdateUserRequest is a partial profile edit. Username, email and country
// keep their stored value when blank; linked identities are cleared when blank
// and kept when absent.
type UpdateUserRequest struct {
	Username           *string `json:"username" validate:"omitempty,max=64"`
	Email              *string `json:"email" validate:"omitempty,email"`
	Country            *string `json:"country" validate:"omitempty,len=2,alpha"`
	AllowGifting       *bool   `json:"allow_gifting"`
	IsTwitchSubscriber *bool   `json:"is_twitch_subscriber"`
	DiscordName        *string `json:"discord_name"`
	DiscordUUID        *string `json:"discord_uuid"`
	MinecraftName      *string `json:"minecraft_name"`
	MinecraftUUID      *string `json:"minecraft_uuid"`
}

type ToggleRequest struct {
	Name  string `json:"name" validate:"required"`
	Value *bool  `json:"value" validate:"required"`
}

// SaveSubscriptionRequest is posted for both create and update. Dates use
// RFC 3339 or "2006-01-02 15:04:05" UTC.
type SaveSubscriptionRequest struct {
	SubscriptionType   string  `json:"subscription_type"`
	Status             string  `json:"status"`
	CreatedDate        string  `json:"created_date"`
	EndDate            string  `json:"end_date"`
	SubscriptionSource string  `json:"subscription_source"`
	Gifter             *string `json:"gifter"`
	Recurring          *bool   `json:"recurring"`
}

type SaveBanRequest struct {
	Reason         string `json:"reason" validate:"required"`
	StartTimestamp string `json:"start_timestamp" validate:"required"`
	EndTimestamp   string `json:"end_timestamp"`
}

type RemoveBansRequest struct {
	Follow string `json:"follow"`
}
