package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/DelphiTri/website/internal/constants"
	"github.com/DelphiTri/website/internal/db/repositories"
)

// IdentityField describes a globally unique user column
type IdentityField struct {
	Name     string
	Label    string
	MaxRunes int
}

var (
	FieldDiscordName   = IdentityField{Name: "discord_name", Label: "Discord name", MaxRunes: 36}
	FieldDiscordUUID   = IdentityField{Name: "discord_uuid", Label: "Discord UUID", MaxRunes: 36}
	FieldMinecraftName = IdentityField{Name: "minecraft_name", Label: "Minecraft name", MaxRunes: 16}
	FieldMinecraftUUID = IdentityField{Name: "minecraft_uuid", Label: "Minecraft UUID", MaxRunes: 36}
	FieldUsername      = IdentityField{Name: "username", Label: "Username", MaxRunes: 64}
	FieldEmail         = IdentityField{Name: "email", Label: "Email", MaxRunes: 255}
)

// LinkedIdentityFields are the platform-linked columns, nullable when empty.
var LinkedIdentityFields = []IdentityField{
	FieldDiscordName,
	FieldDiscordUUID,
	FieldMinecraftName,
	FieldMinecraftUUID,
}

// Normalize trims raw and truncates it to MaxRunes. Blank input yields nil.
func (f IdentityField) Normalize(raw string) *string {
	v := strings.TrimSpace(raw)
	if v == "" {
		return nil
	}
	if r := []rune(v); len(r) > f.MaxRunes {
		v = string(r[:f.MaxRunes])
	}
	return &v
}

type IdentityValidator struct {
	users *repositories.UserRepositoryGORM
}

func NewIdentityValidator(users *repositories.UserRepositoryGORM) *IdentityValidator {
	return &IdentityValidator{users: users}
}

// CheckUnique fails with KindConflict when candidate, once normalized, is
// held by a user other than actingUserID. A cleared value is never checked.
func (v *IdentityValidator) CheckUnique(ctx context.Context, field IdentityField, candidate string, actingUserID int64) error {
	normalized := field.Normalize(candidate)
	if normalized == nil {
		return nil
	}

	ownerID, found, err := v.users.GetUserIDByField(ctx, field.Name, *normalized)
	if err != nil {
		return errStorage(err)
	}
	if !found || ownerID == actingUserID {
		return nil
	}
	return errConflict(field.Name, fmt.Sprintf(constants.MsgFieldInUse, field.Label, ownerID), ownerID)
}
