package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	gormModels "github.com/DelphiTri/website/internal/models/gorm"
)

func TestSubscriptionLedger_ResolveTier(t *testing.T) {
	env := newTestEnv(t)

	st, err := env.ledgers.Subscriptions.ResolveTier("3-MONTH-SUB2")
	require.NoError(t, err)
	assert.Equal(t, "3-MONTH-SUB2", st.ID)
	assert.Equal(t, 2, st.Tier)

	_, err = env.ledgers.Subscriptions.ResolveTier("LIFETIME")
	assert.Equal(t, KindNotFound, KindOf(err))
}

func TestSubscriptionLedger_CreateRequiresFields(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	u := env.seedUser(t, gormModels.User{Username: "u"})
	created := testNow
	end := testNow.AddDate(0, 1, 0)

	full := SubscriptionInput{
		UserID:      u.ID,
		TypeKey:     "1-MONTH-SUB",
		Status:      "Active",
		CreatedDate: &created,
		EndDate:     &end,
	}

	tests := []struct {
		name   string
		mutate func(in *SubscriptionInput)
	}{
		{"type", func(in *SubscriptionInput) { in.TypeKey = "" }},
		{"status", func(in *SubscriptionInput) { in.Status = " " }},
		{"created date", func(in *SubscriptionInput) { in.CreatedDate = nil }},
		{"end date", func(in *SubscriptionInput) { in.EndDate = nil }},
		{"owner", func(in *SubscriptionInput) { in.UserID = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := full
			tt.mutate(&in)
			_, _, err := env.ledgers.Subscriptions.Save(ctx, in)
			assert.Equal(t, KindValidationMissing, KindOf(err))
		})
	}
	assert.Zero(t, env.countRows(t, &gormModels.Subscription{}))
}

func TestSubscriptionLedger_CreateThenPartialUpdate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	u := env.seedUser(t, gormModels.User{Username: "u"})
	gifter := env.seedUser(t, gormModels.User{Username: "gifter"})
	created := testNow.Add(-time.Hour)
	end := created.AddDate(0, 1, 0)

	sub, isNew, err := env.ledgers.Subscriptions.Save(ctx, SubscriptionInput{
		UserID:      u.ID,
		TypeKey:     "1-MONTH-SUB3",
		Status:      "Active",
		CreatedDate: &created,
		EndDate:     &end,
		Recurring:   boolPtr(true),
		Gifter:      &gifter.ID,
		GifterSet:   true,
	})
	require.NoError(t, err)
	assert.True(t, isNew)
	assert.Equal(t, "destiny.gg", sub.SubscriptionSource)
	assert.Equal(t, 3, sub.SubscriptionTier)

	updated, isNew, err := env.ledgers.Subscriptions.Save(ctx, SubscriptionInput{
		ID:     sub.ID,
		UserID: u.ID,
		Status: "Cancelled",
	})
	require.NoError(t, err)
	assert.False(t, isNew)
	assert.Equal(t, sub.ID, updated.ID)

	stored, err := env.ledgers.Subscriptions.FindByID(ctx, sub.ID)
	require.NoError(t, err)
	assert.Equal(t, "Cancelled", stored.Status)
	assert.Equal(t, "1-MONTH-SUB3", stored.SubscriptionType)
	assert.Equal(t, 3, stored.SubscriptionTier)
	assert.Equal(t, "destiny.gg", stored.SubscriptionSource)
	assert.True(t, stored.Recurring)
	assert.True(t, stored.CreatedDate.Equal(created))
	assert.True(t, stored.EndDate.Equal(end))
	require.NotNil(t, stored.Gifter)
	assert.Equal(t, gifter.ID, *stored.Gifter)

	assert.Equal(t, int64(1), env.countRows(t, &gormModels.Subscription{}))
}

func TestSubscriptionLedger_UpdateUnknownID(t *testing.T) {
	env := newTestEnv(t)
	u := env.seedUser(t, gormModels.User{Username: "u"})

	_, _, err := env.ledgers.Subscriptions.Save(context.Background(), SubscriptionInput{ID: 77, UserID: u.ID, Status: "Active"})
	assert.Equal(t, KindNotFound, KindOf(err))
}

func TestSubscriptionLedger_RejectsSelfGift(t *testing.T) {
	env := newTestEnv(t)
	u := env.seedUser(t, gormModels.User{Username: "u"})
	created := testNow
	end := testNow.AddDate(0, 1, 0)

	_, _, err := env.ledgers.Subscriptions.Save(context.Background(), SubscriptionInput{
		UserID:      u.ID,
		TypeKey:     "1-MONTH-SUB",
		Status:      "Active",
		CreatedDate: &created,
		EndDate:     &end,
		Gifter:      &u.ID,
		GifterSet:   true,
	})
	assert.Equal(t, KindConflict, KindOf(err))
	assert.Zero(t, env.countRows(t, &gormModels.Subscription{}))
}

func seedSubscription(t *testing.T, env *testEnv, sub gormModels.Subscription) gormModels.Subscription {
	t.Helper()
	if sub.CreatedDate.IsZero() {
		sub.CreatedDate = testNow
	}
	if sub.EndDate.IsZero() {
		sub.EndDate = sub.CreatedDate.AddDate(0, 1, 0)
	}
	require.NoError(t, env.db.Create(&sub).Error)
	return sub
}

func TestSubscriptionLedger_ListsAndCounterparts(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.seedUser(t, gormModels.User{Username: "alice"})
	bob := env.seedUser(t, gormModels.User{Username: "bob"})
	carol := env.seedUser(t, gormModels.User{Username: "carol"})

	seedSubscription(t, env, gormModels.Subscription{UserID: bob.ID, Status: "Active", Gifter: &alice.ID})
	seedSubscription(t, env, gormModels.Subscription{UserID: carol.ID, Status: "Expired", Gifter: &alice.ID})
	seedSubscription(t, env, gormModels.Subscription{UserID: carol.ID, Status: "New", Gifter: &alice.ID})
	seedSubscription(t, env, gormModels.Subscription{UserID: alice.ID, Status: "Active", Gifter: &bob.ID})
	seedSubscription(t, env, gormModels.Subscription{UserID: alice.ID, Status: "Active"})

	owned, err := env.ledgers.Subscriptions.ListOwned(ctx, alice.ID)
	require.NoError(t, err)
	assert.Len(t, owned, 2)

	gifts, err := env.ledgers.Subscriptions.ListGiftedBy(ctx, alice.ID)
	require.NoError(t, err)
	assert.Len(t, gifts, 2)

	parties, err := env.ledgers.Subscriptions.Counterparts(ctx, owned, gifts)
	require.NoError(t, err)
	assert.Equal(t, "bob", parties.Gifters[bob.ID].Username)
	assert.Equal(t, "bob", parties.Recipients[bob.ID].Username)
	assert.Equal(t, "carol", parties.Recipients[carol.ID].Username)
	assert.Len(t, parties.Gifters, 1)
}

func TestSubscriptionLedger_MissingCounterpartIsIntegrityFault(t *testing.T) {
	env := newTestEnv(t)
	alice := env.seedUser(t, gormModels.User{Username: "alice"})
	ghost := alice.ID + 500

	owned := []gormModels.Subscription{{ID: 1, UserID: alice.ID, Gifter: &ghost}}
	_, err := env.ledgers.Subscriptions.Counterparts(context.Background(), owned, nil)
	assert.Equal(t, KindIntegrity, KindOf(err))
}

func TestSubscriptionLedger_Draft(t *testing.T) {
	env := newTestEnv(t)
	draft := env.ledgers.Subscriptions.Draft(5)
	assert.Equal(t, int64(5), draft.UserID)
	assert.Equal(t, "Active", draft.Status)
	assert.Equal(t, "destiny.gg", draft.SubscriptionSource)
	assert.True(t, draft.CreatedDate.Equal(testNow))
}
