package dtos

import (
	"github.com/DelphiTri/website/internal/models/entities"
	gormModels "github.com/DelphiTri/website/internal/models/gorm"
)

type APIResponse struct {
	Status       string `json:"status"`
	Message      string `json:"message"`
	ResponseTime string `json:"response_time"`
	Data         any    `json:"data,omitempty"`
}

// RedirectData is returned with every 303 so API clients need not parse Location
type RedirectData struct {
	Redirect string `json:"redirect"`
	ID       int64  `json:"id,omitempty"`
	Affected *int64 `json:"affected,omitempty"`
}

// UserEditView aggregates everything the user admin page shows
type UserEditView struct {
	User          gormModels.User              `json:"user"`
	Roles         []string                     `json:"roles"`
	Features      []string                     `json:"features"`
	IPs           []string                     `json:"ips"`
	Smurfs        []gormModels.User            `json:"smurfs"`
	AllFeatures   []gormModels.Feature         `json:"all_features"`
	AllowedRoles  []gormModels.Role            `json:"allowed_roles"`
	ActiveBan     *gormModels.Ban              `json:"active_ban"`
	AuthProfiles  []gormModels.UserAuthProfile `json:"auth_profiles"`
	Subscriptions []gormModels.Subscription    `json:"subscriptions"`
	Gifts         []gormModels.Subscription    `json:"gifts"`
	Gifters       map[int64]gormModels.User    `json:"gifters"`
	Recipients    map[int64]gormModels.User    `json:"recipients"`
}

type SubscriptionView struct {
	User         gormModels.User             `json:"user"`
	Subscription gormModels.Subscription     `json:"subscription"`
	Form         SubscriptionForm            `json:"form"`
	Types        []entities.SubscriptionType `json:"subscription_types"`
	Payments     []entities.Payment          `json:"payments"`
}

// SubscriptionForm holds the dates as the save endpoint accepts them back
type SubscriptionForm struct {
	CreatedDate string `json:"created_date"`
	EndDate     string `json:"end_date"`
}

type BanView struct {
	User gormModels.User `json:"user"`
	Ban  gormModels.Ban  `json:"ban"`
	Form BanForm         `json:"form"`
}

// BanForm holds the ban range in the form layout; an indefinite ban has no end
type BanForm struct {
	StartTimestamp string `json:"start_timestamp"`
	EndTimestamp   string `json:"end_timestamp"`
}
