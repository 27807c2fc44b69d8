package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/DelphiTri/website/internal/constants"
	"github.com/DelphiTri/website/internal/db/repositories"
	"github.com/DelphiTri/website/internal/models/entities"
	gormModels "github.com/DelphiTri/website/internal/models/gorm"
)

// SubscriptionInput carries an admin save. ID zero creates a row; otherwise
// blank or nil fields keep the stored value.
type SubscriptionInput struct {
	ID          int64
	UserID      int64
	TypeKey     string
	Status      string
	Source      string
	CreatedDate *time.Time
	EndDate     *time.Time
	Recurring   *bool

	// Gifter is the resolved gifter id. GifterSet false keeps the stored gifter.
	Gifter    *int64
	GifterSet bool
}

// Counterparts holds the users on the other side of a user's gifts
type Counterparts struct {
	Gifters    map[int64]gormModels.User
	Recipients map[int64]gormModels.User
}

type SubscriptionLedger struct {
	subs          *repositories.SubscriptionRepository
	users         *repositories.UserRepositoryGORM
	types         map[string]entities.SubscriptionType
	defaultSource string
	now           func() time.Time
}

func NewSubscriptionLedger(
	subs *repositories.SubscriptionRepository,
	users *repositories.UserRepositoryGORM,
	types map[string]entities.SubscriptionType,
	defaultSource string,
	now func() time.Time,
) *SubscriptionLedger {
	if now == nil {
		now = time.Now
	}
	return &SubscriptionLedger{
		subs:          subs,
		users:         users,
		types:         types,
		defaultSource: defaultSource,
		now:           now,
	}
}

// ResolveTier maps a subscription type key to its configured type
func (l *SubscriptionLedger) ResolveTier(key string) (entities.SubscriptionType, error) {
	t, ok := l.types[strings.TrimSpace(key)]
	if !ok {
		return entities.SubscriptionType{}, &LedgerError{
			Kind:    KindNotFound,
			Field:   "subscription_type",
			Message: constants.MsgSubscriptionType,
		}
	}
	return t, nil
}

// Types returns the configured subscription table
func (l *SubscriptionLedger) Types() map[string]entities.SubscriptionType {
	return l.types
}

// Save creates or updates a subscription and returns the stored row.
func (l *SubscriptionLedger) Save(ctx context.Context, in SubscriptionInput) (*gormModels.Subscription, bool, error) {
	if in.UserID <= 0 {
		return nil, false, errMissing("user_id")
	}

	var sub gormModels.Subscription
	created := in.ID == 0
	if created {
		if err := requireCreateFields(in); err != nil {
			return nil, false, err
		}
		sub.SubscriptionSource = l.defaultSource
	} else {
		existing, err := l.subs.GetByID(ctx, in.ID)
		if err != nil {
			return nil, false, fromRepo(err, constants.MsgSubscriptionNotFound)
		}
		sub = *existing
	}

	sub.UserID = in.UserID
	if in.TypeKey != "" {
		t, err := l.ResolveTier(in.TypeKey)
		if err != nil {
			return nil, false, err
		}
		sub.SubscriptionType = t.ID
		sub.SubscriptionTier = t.Tier
	}
	if s := strings.TrimSpace(in.Status); s != "" {
		sub.Status = s
	}
	if s := strings.TrimSpace(in.Source); s != "" {
		sub.SubscriptionSource = s
	}
	if in.CreatedDate != nil {
		sub.CreatedDate = in.CreatedDate.UTC()
	}
	if in.EndDate != nil {
		sub.EndDate = in.EndDate.UTC()
	}
	if in.Recurring != nil {
		sub.Recurring = *in.Recurring
	}
	if in.GifterSet {
		sub.Gifter = in.Gifter
	}
	if sub.Gifter != nil && *sub.Gifter == sub.UserID {
		return nil, false, errConflict("gifter", constants.MsgGiftSelf, *sub.Gifter)
	}

	if created {
		if err := l.subs.Create(ctx, &sub); err != nil {
			return nil, false, fromRepo(err, constants.MsgSubscriptionNotFound)
		}
		return &sub, true, nil
	}

	if err := l.subs.Save(ctx, &sub); err != nil {
		return nil, false, fromRepo(err, constants.MsgSubscriptionNotFound)
	}
	return &sub, false, nil
}

func requireCreateFields(in SubscriptionInput) error {
	switch {
	case strings.TrimSpace(in.TypeKey) == "":
		return errMissing("subscription_type")
	case strings.TrimSpace(in.Status) == "":
		return errMissing("status")
	case in.CreatedDate == nil:
		return errMissing("created_date")
	case in.EndDate == nil:
		return errMissing("end_date")
	}
	return nil
}

func (l *SubscriptionLedger) FindByID(ctx context.Context, id int64) (*gormModels.Subscription, error) {
	sub, err := l.subs.GetByID(ctx, id)
	if err != nil {
		return nil, fromRepo(err, constants.MsgSubscriptionNotFound)
	}
	return sub, nil
}

// ListOwned returns every subscription the user holds, gifted or bought
func (l *SubscriptionLedger) ListOwned(ctx context.Context, userID int64) ([]gormModels.Subscription, error) {
	subs, err := l.subs.ListByOwner(ctx, userID)
	if err != nil {
		return nil, errStorage(err)
	}
	return subs, nil
}

// ListCurrent returns the user's Active subscriptions that have not reached their end date
func (l *SubscriptionLedger) ListCurrent(ctx context.Context, userID int64) ([]gormModels.Subscription, error) {
	subs, err := l.ListOwned(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := l.now()
	current := []gormModels.Subscription{}
	for _, s := range subs {
		if s.Status == constants.SubscriptionStatusActive && s.EndDate.After(now) {
			current = append(current, s)
		}
	}
	return current, nil
}

// ListGiftedBy returns completed subscriptions the user paid for on behalf of others
func (l *SubscriptionLedger) ListGiftedBy(ctx context.Context, userID int64) ([]gormModels.Subscription, error) {
	subs, err := l.subs.ListByGifter(ctx, userID, constants.CompletedSubscriptionStatuses)
	if err != nil {
		return nil, errStorage(err)
	}
	return subs, nil
}

// Counterparts resolves the gifter of every owned gift and the recipient of
// every given gift. A user that cannot be found is an integrity fault.
func (l *SubscriptionLedger) Counterparts(ctx context.Context, owned, gifted []gormModels.Subscription) (*Counterparts, error) {
	gifterIDs := []int64{}
	for _, s := range owned {
		if s.Gifter != nil {
			gifterIDs = append(gifterIDs, *s.Gifter)
		}
	}
	recipientIDs := []int64{}
	for _, s := range gifted {
		recipientIDs = append(recipientIDs, s.UserID)
	}

	gifters, err := l.usersByID(ctx, gifterIDs)
	if err != nil {
		return nil, err
	}
	recipients, err := l.usersByID(ctx, recipientIDs)
	if err != nil {
		return nil, err
	}
	return &Counterparts{Gifters: gifters, Recipients: recipients}, nil
}

func (l *SubscriptionLedger) usersByID(ctx context.Context, ids []int64) (map[int64]gormModels.User, error) {
	users, err := l.users.GetUsersByIDs(ctx, ids)
	if err != nil {
		return nil, errStorage(err)
	}

	byID := make(map[int64]gormModels.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}
	for _, id := range ids {
		if _, ok := byID[id]; !ok {
			return nil, errIntegrity(constants.MsgIntegrityFault, fmt.Errorf("user %d referenced by a subscription does not exist", id))
		}
	}
	return byID, nil
}

// Draft is the starting point for the add-subscription form
func (l *SubscriptionLedger) Draft(userID int64) gormModels.Subscription {
	now := l.now().UTC().Truncate(time.Second)
	return gormModels.Subscription{
		UserID:             userID,
		SubscriptionSource: l.defaultSource,
		Status:             constants.SubscriptionStatusActive,
		CreatedDate:        now,
		EndDate:            now,
	}
}
