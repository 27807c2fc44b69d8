package auth

import "github.com/DelphiTri/website/internal/constants"

// UserClaims is what handlers may know about the caller
type UserClaims interface {
	UserID() int64
	Username() string
	Tier() constants.Tier
	Roles() []string
	HasRole(role constants.Role) bool
	Source() string
}

// JWTClaims is built from a verified bearer token plus the caller's
// authorization snapshot.
type JWTClaims struct {
	UserIDValue   int64
	UsernameValue string
	RoleValues    []string
	TierValue     constants.Tier
}

func (c *JWTClaims) UserID() int64        { return c.UserIDValue }
func (c *JWTClaims) Username() string     { return c.UsernameValue }
func (c *JWTClaims) Tier() constants.Tier { return c.TierValue }
func (c *JWTClaims) Roles() []string      { return c.RoleValues }
func (c *JWTClaims) Source() string       { return "JWT" }

func (c *JWTClaims) HasRole(role constants.Role) bool {
	for _, r := range c.RoleValues {
		if r == string(role) {
			return true
		}
	}
	return false
}
