package services

import (
	"context"
	"strings"
	"time"

	"github.com/DelphiTri/website/internal/constants"
	"github.com/DelphiTri/website/internal/db/repositories"
	gormModels "github.com/DelphiTri/website/internal/models/gorm"
)

// ActiveBan returns the ban in effect at now: the qualifying row with the
// latest start, ties going to the highest id. Input order does not matter.
func ActiveBan(bans []gormModels.Ban, now time.Time) *gormModels.Ban {
	var winner *gormModels.Ban
	for i := range bans {
		b := &bans[i]
		if !b.IsActive(now) {
			continue
		}
		if winner == nil ||
			b.StartTimestamp.After(winner.StartTimestamp) ||
			(b.StartTimestamp.Equal(winner.StartTimestamp) && b.ID > winner.ID) {
			winner = b
		}
	}
	if winner == nil {
		return nil
	}
	out := *winner
	return &out
}

type BanLedger struct {
	bans  *repositories.BanRepository
	users *repositories.UserRepositoryGORM
	now   func() time.Time
}

func NewBanLedger(bans *repositories.BanRepository, users *repositories.UserRepositoryGORM, now func() time.Time) *BanLedger {
	if now == nil {
		now = time.Now
	}
	return &BanLedger{bans: bans, users: users, now: now}
}

func validateBanTerms(ban *gormModels.Ban) error {
	ban.Reason = strings.TrimSpace(ban.Reason)
	if ban.Reason == "" {
		return errMissing("reason")
	}
	if ban.StartTimestamp.IsZero() {
		return errMissing("start_timestamp")
	}
	return nil
}

// Insert records a new ban and returns its id. The target must exist.
func (l *BanLedger) Insert(ctx context.Context, ban *gormModels.Ban) (int64, error) {
	if ban.TargetUserID <= 0 {
		return 0, errMissing("target_user_id")
	}
	if err := validateBanTerms(ban); err != nil {
		return 0, err
	}
	if _, err := l.users.GetByID(ctx, ban.TargetUserID); err != nil {
		return 0, fromRepo(err, constants.MsgUserNotFound)
	}

	ban.ID = 0
	if err := l.bans.Create(ctx, ban); err != nil {
		return 0, fromRepo(err, constants.MsgBanNotFound)
	}
	return ban.ID, nil
}

// Update overwrites reason and time range of an existing ban. Issuer, target
// and IP of the stored row are kept; ban is refreshed with the stored values.
func (l *BanLedger) Update(ctx context.Context, ban *gormModels.Ban) error {
	if ban.ID <= 0 {
		return errMissing("id")
	}
	if err := validateBanTerms(ban); err != nil {
		return err
	}

	existing, err := l.bans.GetByID(ctx, ban.ID)
	if err != nil {
		return fromRepo(err, constants.MsgBanNotFound)
	}
	if err := l.bans.UpdateTerms(ctx, ban.ID, ban.Reason, ban.StartTimestamp, ban.EndTimestamp); err != nil {
		return fromRepo(err, constants.MsgBanNotFound)
	}

	ban.UserID = existing.UserID
	ban.TargetUserID = existing.TargetUserID
	ban.IPAddress = existing.IPAddress
	return nil
}

func (l *BanLedger) GetByID(ctx context.Context, id int64) (*gormModels.Ban, error) {
	ban, err := l.bans.GetByID(ctx, id)
	if err != nil {
		return nil, fromRepo(err, constants.MsgBanNotFound)
	}
	return ban, nil
}

// ResolveActive returns the user's active ban or nil
func (l *BanLedger) ResolveActive(ctx context.Context, userID int64) (*gormModels.Ban, error) {
	bans, err := l.bans.ListByTarget(ctx, userID)
	if err != nil {
		return nil, errStorage(err)
	}
	return ActiveBan(bans, l.now()), nil
}

// Pending returns the user's bans that have not ended yet, active or still
// to start, newest start first.
func (l *BanLedger) Pending(ctx context.Context, userID int64) ([]gormModels.Ban, error) {
	bans, err := l.bans.ListByTarget(ctx, userID)
	if err != nil {
		return nil, errStorage(err)
	}

	now := l.now()
	pending := []gormModels.Ban{}
	for _, b := range bans {
		if b.EndTimestamp == nil || b.EndTimestamp.After(now) {
			pending = append(pending, b)
		}
	}
	return pending, nil
}

// RemoveActive end-dates every active ban of the user to now and reports how
// many rows changed.
func (l *BanLedger) RemoveActive(ctx context.Context, userID int64) (int64, error) {
	bans, err := l.bans.ListByTarget(ctx, userID)
	if err != nil {
		return 0, errStorage(err)
	}

	now := l.now()
	var ids []int64
	for _, b := range bans {
		if b.IsActive(now) {
			ids = append(ids, b.ID)
		}
	}

	n, err := l.bans.EndDate(ctx, ids, now)
	if err != nil {
		return 0, errStorage(err)
	}
	return n, nil
}

// Draft is the starting point for the new-ban form
func (l *BanLedger) Draft(targetUserID int64) gormModels.Ban {
	return gormModels.Ban{
		TargetUserID:   targetUserID,
		StartTimestamp: l.now().UTC().Truncate(time.Second),
	}
}
