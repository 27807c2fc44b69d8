package services

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/DelphiTri/website/internal/common"
	"github.com/DelphiTri/website/internal/constants"
	gormModels "github.com/DelphiTri/website/internal/models/gorm"
)

// EntitlementSnapshotSource rebuilds authorization snapshots from the ledgers
type EntitlementSnapshotSource struct {
	db      *gorm.DB
	ledgers *LedgerFactory
	now     func() time.Time
}

var _ common.SnapshotSource = (*EntitlementSnapshotSource)(nil)

func NewEntitlementSnapshotSource(db *gorm.DB, ledgers *LedgerFactory, now func() time.Time) *EntitlementSnapshotSource {
	if now == nil {
		now = time.Now
	}
	return &EntitlementSnapshotSource{db: db, ledgers: ledgers, now: now}
}

func (s *EntitlementSnapshotSource) LoadSnapshot(ctx context.Context, userID int64) (*common.AuthSnapshot, error) {
	l := s.ledgers.Bind(s.db)

	user, err := l.Users.GetByID(ctx, userID)
	if err != nil {
		return nil, fromRepo(err, constants.MsgUserNotFound)
	}
	roles, err := l.Users.GetRolesByUserID(ctx, userID)
	if err != nil {
		return nil, errStorage(err)
	}
	features, err := l.Users.GetFeaturesByUserID(ctx, userID)
	if err != nil {
		return nil, errStorage(err)
	}
	bans, err := l.Bans.Pending(ctx, userID)
	if err != nil {
		return nil, err
	}
	subs, err := l.Subscriptions.ListCurrent(ctx, userID)
	if err != nil {
		return nil, err
	}

	snap := &common.AuthSnapshot{
		UserID:     user.ID,
		Username:   user.Username,
		Roles:      deriveRoles(roles, subs),
		Features:   features,
		ComputedAt: s.now().UTC(),
	}
	snap.Tier = constants.TierForRoles(snap.Roles)

	for _, sub := range subs {
		if sub.SubscriptionTier > snap.SubscriptionTier {
			snap.SubscriptionTier = sub.SubscriptionTier
		}
		if snap.ValidUntil == nil || sub.EndDate.Before(*snap.ValidUntil) {
			end := sub.EndDate.UTC()
			snap.ValidUntil = &end
		}
	}
	for _, b := range bans {
		snap.Bans = append(snap.Bans, common.BanWindow{
			Reason: b.Reason,
			Start:  b.StartTimestamp.UTC(),
			End:    b.EndTimestamp,
		})
	}
	return snap, nil
}

// deriveRoles replaces any stored SUBSCRIBER row with the one implied by
// current subscriptions.
func deriveRoles(stored []string, current []gormModels.Subscription) []string {
	roles := make([]string, 0, len(stored)+1)
	for _, r := range stored {
		if constants.Role(r) != constants.RoleSubscriber {
			roles = append(roles, r)
		}
	}
	if len(current) > 0 {
		roles = append(roles, string(constants.RoleSubscriber))
	}
	return roles
}
