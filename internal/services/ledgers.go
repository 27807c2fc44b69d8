package services

import (
	"time"

	"gorm.io/gorm"

	"github.com/DelphiTri/website/internal/db/repositories"
	"github.com/DelphiTri/website/internal/models/entities"
)

// Ledgers groups every component bound to one database handle, usually a
// transaction opened by the coordinator.
type Ledgers struct {
	Users         *repositories.UserRepositoryGORM
	Identity      *IdentityValidator
	Bans          *BanLedger
	Gifters       *GifterResolver
	Subscriptions *SubscriptionLedger
}

// LedgerFactory builds Ledgers for a given handle
type LedgerFactory struct {
	types         map[string]entities.SubscriptionType
	defaultSource string
	now           func() time.Time
}

func NewLedgerFactory(types map[string]entities.SubscriptionType, defaultSource string, now func() time.Time) *LedgerFactory {
	if now == nil {
		now = time.Now
	}
	return &LedgerFactory{types: types, defaultSource: defaultSource, now: now}
}

func (f *LedgerFactory) Bind(db *gorm.DB) *Ledgers {
	users := repositories.NewUserRepositoryGORM(db)
	return &Ledgers{
		Users:         users,
		Identity:      NewIdentityValidator(users),
		Bans:          NewBanLedger(repositories.NewBanRepository(db), users, f.now),
		Gifters:       NewGifterResolver(users),
		Subscriptions: NewSubscriptionLedger(repositories.NewSubscriptionRepository(db), users, f.types, f.defaultSource, f.now),
	}
}
