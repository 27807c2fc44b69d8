package constants

import (
	"database/sql/driver"
	"fmt"
)

// Role mirrors the role names stored in user_roles.role_name
type Role string

const (
	RoleUser       Role = "USER"
	RoleSubscriber Role = "SUBSCRIBER"
	RoleModerator  Role = "MODERATOR"
	RoleAdmin      Role = "ADMIN"
)

// String returns the stored role name
func (r Role) String() string { return string(r) }

// Assignable reports whether an operator may toggle the role by hand.
// USER and SUBSCRIBER are derived from account state and subscriptions.
func (r Role) Assignable() bool {
	return r != RoleUser && r != RoleSubscriber
}

/* ---------- DB adapters so sqlx (or database/sql) scans/values cleanly ---------- */

// Scan implements the sql.Scanner interface
func (r *Role) Scan(src interface{}) error {
	if src == nil {
		*r = ""
		return nil
	}
	switch v := src.(type) {
	case string:
		*r = Role(v)
	case []byte:
		*r = Role(v)
	default:
		return fmt.Errorf("Role: cannot scan type %T", src)
	}
	return nil
}

// Value implements the driver.Valuer interface
func (r Role) Value() (driver.Value, error) { return string(r), nil }

// Tier is the privilege level used by the route gate. Higher tiers include lower ones.
type Tier int

const (
	TierPublic Tier = iota
	TierUser
	TierModerator
	TierAdmin
)

func (t Tier) String() string {
	switch t {
	case TierPublic:
		return "PUBLIC"
	case TierUser:
		return "USER"
	case TierModerator:
		return "MODERATOR"
	case TierAdmin:
		return "ADMIN"
	default:
		return fmt.Sprintf("TIER(%d)", int(t))
	}
}

// TierForRoles returns the highest tier granted by a set of role names.
func TierForRoles(roles []string) Tier {
	tier := TierUser
	for _, r := range roles {
		switch Role(r) {
		case RoleAdmin:
			return TierAdmin
		case RoleModerator:
			tier = TierModerator
		}
	}
	return tier
}
