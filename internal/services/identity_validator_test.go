package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	gormModels "github.com/DelphiTri/website/internal/models/gorm"
)

func TestIdentityField_Normalize(t *testing.T) {
	tests := []struct {
		name  string
		field IdentityField
		raw   string
		want  *string
	}{
		{"blank is cleared", FieldDiscordName, "   ", nil},
		{"empty is cleared", FieldMinecraftUUID, "", nil},
		{"trimmed", FieldDiscordName, "  bob#0001 ", strPtr("bob#0001")},
		{"exact length kept", FieldMinecraftName, strings.Repeat("a", 16), strPtr(strings.Repeat("a", 16))},
		{"truncated to max", FieldMinecraftName, strings.Repeat("b", 40), strPtr(strings.Repeat("b", 16))},
		{"truncated by runes", FieldMinecraftName, strings.Repeat("é", 20), strPtr(strings.Repeat("é", 16))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.field.Normalize(tt.raw)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, *tt.want, *got)
			assert.LessOrEqual(t, utf8.RuneCountInString(*got), tt.field.MaxRunes)
		})
	}
}

func TestIdentityValidator_SameUserNeverConflicts(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.seedUser(t, gormModels.User{Username: "alice", DiscordName: strPtr("alice#1")})

	for i := 0; i < 2; i++ {
		assert.NoError(t, env.ledgers.Identity.CheckUnique(ctx, FieldDiscordName, "alice#1", alice.ID))
		assert.NoError(t, env.ledgers.Identity.CheckUnique(ctx, FieldUsername, "alice", alice.ID))
	}
}

func TestIdentityValidator_OtherUserConflicts(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.seedUser(t, gormModels.User{Username: "alice", MinecraftName: strPtr(strings.Repeat("m", 16))})
	bob := env.seedUser(t, gormModels.User{Username: "bob"})

	// the candidate is truncated before comparison
	err := env.ledgers.Identity.CheckUnique(ctx, FieldMinecraftName, strings.Repeat("m", 30), bob.ID)
	require.Error(t, err)

	var le *LedgerError
	require.True(t, errors.As(err, &le))
	assert.Equal(t, KindConflict, le.Kind)
	assert.Equal(t, "minecraft_name", le.Field)
	assert.Equal(t, alice.ID, le.OwnerID)
	assert.Contains(t, le.Message, "Minecraft name already in use")
}

func TestIdentityValidator_ClearedValueSkipsCheck(t *testing.T) {
	env := newTestEnv(t)
	bob := env.seedUser(t, gormModels.User{Username: "bob"})
	assert.NoError(t, env.ledgers.Identity.CheckUnique(context.Background(), FieldDiscordUUID, "  ", bob.ID))
}
