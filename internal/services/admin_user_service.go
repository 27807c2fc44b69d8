package services

import (
	"context"
	"sort"
	"strings"
	"time"
	"unicode"

	"github.com/go-playground/validator"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/DelphiTri/website/internal/common"
	"github.com/DelphiTri/website/internal/constants"
	"github.com/DelphiTri/website/internal/models/dtos"
	"github.com/DelphiTri/website/internal/models/entities"
	gormModels "github.com/DelphiTri/website/internal/models/gorm"
)

// PaymentReader is the read-only view onto settled payments
type PaymentReader interface {
	GetBySubscriptionID(ctx context.Context, subscriptionID int64) ([]entities.Payment, error)
}

// AdminUserService backs every /admin/user endpoint. Reads go straight to
// the ledgers; writes go through the coordinator.
type AdminUserService struct {
	db          *gorm.DB
	ledgers     *LedgerFactory
	coordinator *MutationCoordinator
	payments    PaymentReader
	ipHistory   common.IPHistory
	validate    *validator.Validate
	logger      *zap.SugaredLogger
}

func NewAdminUserService(
	db *gorm.DB,
	ledgers *LedgerFactory,
	coordinator *MutationCoordinator,
	payments PaymentReader,
	ipHistory common.IPHistory,
	logger *zap.SugaredLogger,
) *AdminUserService {
	if ipHistory == nil {
		ipHistory = common.NoopIPHistory{}
	}
	return &AdminUserService{
		db:          db,
		ledgers:     ledgers,
		coordinator: coordinator,
		payments:    payments,
		ipHistory:   ipHistory,
		validate:    validator.New(),
		logger:      logger,
	}
}

func (svc *AdminUserService) read() *Ledgers {
	return svc.ledgers.Bind(svc.db)
}

func (svc *AdminUserService) getUser(ctx context.Context, l *Ledgers, userID int64) (*gormModels.User, error) {
	user, err := l.Users.GetByID(ctx, userID)
	if err != nil {
		return nil, fromRepo(err, constants.MsgUserNotFound)
	}
	return user, nil
}

// EditView loads the user and then runs the independent lookups concurrently
func (svc *AdminUserService) EditView(ctx context.Context, userID int64) (*dtos.UserEditView, error) {
	l := svc.read()
	user, err := svc.getUser(ctx, l, userID)
	if err != nil {
		return nil, err
	}

	view := &dtos.UserEditView{User: *user}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		roles, err := l.Users.GetRolesByUserID(gctx, userID)
		view.Roles = roles
		return storageErr(err)
	})
	g.Go(func() error {
		features, err := l.Users.GetFeaturesByUserID(gctx, userID)
		view.Features = features
		return storageErr(err)
	})
	g.Go(func() error {
		ips, err := svc.ipHistory.UserIPs(gctx, userID)
		view.IPs = ips
		return storageErr(err)
	})
	g.Go(func() error {
		ids, err := svc.ipHistory.LinkedUserIDs(gctx, userID)
		if err != nil {
			return errStorage(err)
		}
		smurfs, err := l.Users.GetUsersByIDs(gctx, ids)
		view.Smurfs = smurfs
		return storageErr(err)
	})
	g.Go(func() error {
		all, err := l.Users.GetAllFeatures(gctx)
		view.AllFeatures = all
		return storageErr(err)
	})
	g.Go(func() error {
		all, err := l.Users.GetAllRoles(gctx)
		if err != nil {
			return errStorage(err)
		}
		view.AllowedRoles = assignableRoles(all)
		return nil
	})
	g.Go(func() error {
		ban, err := l.Bans.ResolveActive(gctx, userID)
		view.ActiveBan = ban
		return err
	})
	g.Go(func() error {
		profiles, err := l.Users.GetAuthProfiles(gctx, userID)
		view.AuthProfiles = profiles
		return storageErr(err)
	})
	g.Go(func() error {
		subs, err := l.Subscriptions.ListOwned(gctx, userID)
		view.Subscriptions = subs
		return err
	})
	g.Go(func() error {
		gifts, err := l.Subscriptions.ListGiftedBy(gctx, userID)
		view.Gifts = gifts
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	parties, err := l.Subscriptions.Counterparts(ctx, view.Subscriptions, view.Gifts)
	if err != nil {
		svc.logger.Errorw("Subscription counterpart missing", "user_id", userID, "error", err)
		return nil, err
	}
	view.Gifters = parties.Gifters
	view.Recipients = parties.Recipients
	return view, nil
}

func storageErr(err error) error {
	if err == nil {
		return nil
	}
	return errStorage(err)
}

func assignableRoles(all []gormModels.Role) []gormModels.Role {
	roles := make([]gormModels.Role, 0, len(all))
	for _, r := range all {
		if constants.Role(r.Name).Assignable() {
			roles = append(roles, r)
		}
	}
	return roles
}

// UpdateProfile applies a partial profile edit after checking every unique field
func (svc *AdminUserService) UpdateProfile(ctx context.Context, userID int64, req dtos.UpdateUserRequest) error {
	var columns map[string]any

	return svc.coordinator.Run(ctx, Mutation{
		Name:   "profile_update",
		UserID: userID,
		Validate: func(ctx context.Context, l *Ledgers) error {
			if _, err := svc.getUser(ctx, l, userID); err != nil {
				return err
			}
			cols, checks, err := svc.profileColumns(req)
			if err != nil {
				return err
			}
			for _, c := range checks {
				if err := l.Identity.CheckUnique(ctx, c.field, c.value, userID); err != nil {
					return err
				}
			}
			columns = cols
			return nil
		},
		Persist: func(ctx context.Context, l *Ledgers) (bool, error) {
			if len(columns) == 0 {
				return false, nil
			}
			if err := l.Users.Update(ctx, userID, columns); err != nil {
				return false, fromRepo(err, constants.MsgUserNotFound)
			}
			return true, nil
		},
	})
}

type uniqueCheck struct {
	field IdentityField
	value string
}

func (svc *AdminUserService) profileColumns(req dtos.UpdateUserRequest) (map[string]any, []uniqueCheck, error) {
	columns := map[string]any{}
	var checks []uniqueCheck

	if req.Username != nil {
		if v := FieldUsername.Normalize(*req.Username); v != nil {
			columns[FieldUsername.Name] = *v
			checks = append(checks, uniqueCheck{FieldUsername, *v})
		}
	}
	if req.Email != nil {
		if v := FieldEmail.Normalize(strings.ToLower(*req.Email)); v != nil {
			if err := svc.validate.Var(*v, "email"); err != nil {
				return nil, nil, errInvalid(FieldEmail.Name, constants.MsgInvalidEmail)
			}
			columns[FieldEmail.Name] = *v
			checks = append(checks, uniqueCheck{FieldEmail, *v})
		}
	}
	if req.Country != nil {
		if v := strings.ToUpper(strings.TrimSpace(*req.Country)); v != "" {
			if !isCountryCode(v) {
				return nil, nil, errInvalid("country", constants.MsgInvalidCountry)
			}
			columns["country"] = v
		}
	}
	if req.AllowGifting != nil {
		columns["allow_gifting"] = *req.AllowGifting
	}
	if req.IsTwitchSubscriber != nil {
		columns["is_twitch_subscriber"] = *req.IsTwitchSubscriber
	}

	linked := map[string]*string{
		FieldDiscordName.Name:   req.DiscordName,
		FieldDiscordUUID.Name:   req.DiscordUUID,
		FieldMinecraftName.Name: req.MinecraftName,
		FieldMinecraftUUID.Name: req.MinecraftUUID,
	}
	for _, field := range LinkedIdentityFields {
		raw := linked[field.Name]
		if raw == nil {
			continue
		}
		v := field.Normalize(*raw)
		if v == nil {
			columns[field.Name] = nil
			continue
		}
		columns[field.Name] = *v
		checks = append(checks, uniqueCheck{field, *v})
	}

	return columns, checks, nil
}

func isCountryCode(s string) bool {
	if len(s) != 2 {
		return false
	}
	for _, r := range s {
		if r > unicode.MaxASCII || !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}

// ToggleFeature adds or removes a chat flair
func (svc *AdminUserService) ToggleFeature(ctx context.Context, userID int64, name string, enabled bool) error {
	return svc.coordinator.Run(ctx, Mutation{
		Name:   "feature_toggle",
		UserID: userID,
		Validate: func(ctx context.Context, l *Ledgers) error {
			if _, err := svc.getUser(ctx, l, userID); err != nil {
				return err
			}
			exists, err := l.Users.FeatureExists(ctx, name)
			if err != nil {
				return errStorage(err)
			}
			if !exists {
				return errNotFound(constants.MsgFeatureNotFound)
			}
			return nil
		},
		Persist: func(ctx context.Context, l *Ledgers) (bool, error) {
			if err := l.Users.RemoveUserFeature(ctx, userID, name); err != nil {
				return false, errStorage(err)
			}
			if enabled {
				if err := l.Users.AddUserFeature(ctx, userID, name); err != nil {
					return false, errStorage(err)
				}
			}
			return true, nil
		},
	})
}

// ToggleRole adds or removes an assignable role
func (svc *AdminUserService) ToggleRole(ctx context.Context, userID int64, name string, enabled bool) error {
	return svc.coordinator.Run(ctx, Mutation{
		Name:   "role_toggle",
		UserID: userID,
		Validate: func(ctx context.Context, l *Ledgers) error {
			if !constants.Role(name).Assignable() {
				return errConflict("name", constants.MsgRoleNotAssignable, 0)
			}
			if _, err := svc.getUser(ctx, l, userID); err != nil {
				return err
			}
			exists, err := l.Users.RoleExists(ctx, name)
			if err != nil {
				return errStorage(err)
			}
			if !exists {
				return errNotFound(constants.MsgRoleNotFound)
			}
			return nil
		},
		Persist: func(ctx context.Context, l *Ledgers) (bool, error) {
			if err := l.Users.RemoveUserRole(ctx, userID, name); err != nil {
				return false, errStorage(err)
			}
			if enabled {
				if err := l.Users.AddUserRole(ctx, userID, name); err != nil {
					return false, errStorage(err)
				}
			}
			return true, nil
		},
	})
}

// RemoveAuthProfile unlinks one login provider
func (svc *AdminUserService) RemoveAuthProfile(ctx context.Context, userID int64, provider string) error {
	return svc.coordinator.Run(ctx, Mutation{
		Name:   "auth_profile_remove",
		UserID: userID,
		Persist: func(ctx context.Context, l *Ledgers) (bool, error) {
			n, err := l.Users.RemoveAuthProfile(ctx, userID, provider)
			if err != nil {
				return false, errStorage(err)
			}
			if n == 0 {
				return false, errNotFound(constants.MsgAuthProfileNotFound)
			}
			return true, nil
		},
	})
}

func sortedTypes(types map[string]entities.SubscriptionType) []entities.SubscriptionType {
	list := make([]entities.SubscriptionType, 0, len(types))
	for _, t := range types {
		list = append(list, t)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list
}

// SubscriptionDraft prepares the add-subscription form
func (svc *AdminUserService) SubscriptionDraft(ctx context.Context, userID int64) (*dtos.SubscriptionView, error) {
	l := svc.read()
	user, err := svc.getUser(ctx, l, userID)
	if err != nil {
		return nil, err
	}
	draft := l.Subscriptions.Draft(userID)
	return &dtos.SubscriptionView{
		User:         *user,
		Subscription: draft,
		Form:         subscriptionForm(draft),
		Types:        sortedTypes(l.Subscriptions.Types()),
		Payments:     []entities.Payment{},
	}, nil
}

// SubscriptionView loads an existing subscription with its payments
func (svc *AdminUserService) SubscriptionView(ctx context.Context, userID, subscriptionID int64) (*dtos.SubscriptionView, error) {
	l := svc.read()
	user, err := svc.getUser(ctx, l, userID)
	if err != nil {
		return nil, err
	}
	sub, err := l.Subscriptions.FindByID(ctx, subscriptionID)
	if err != nil {
		return nil, err
	}

	payments := []entities.Payment{}
	if svc.payments != nil {
		payments, err = svc.payments.GetBySubscriptionID(ctx, sub.ID)
		if err != nil {
			return nil, errStorage(err)
		}
	}

	return &dtos.SubscriptionView{
		User:         *user,
		Subscription: *sub,
		Form:         subscriptionForm(*sub),
		Types:        sortedTypes(l.Subscriptions.Types()),
		Payments:     payments,
	}, nil
}

// SaveSubscription creates a subscription when subscriptionID is zero and
// updates it otherwise. It returns the stored id and whether a row was created.
func (svc *AdminUserService) SaveSubscription(ctx context.Context, userID, subscriptionID int64, req dtos.SaveSubscriptionRequest) (int64, bool, error) {
	var (
		in            SubscriptionInput
		savedID       int64
		created       bool
		previousOwner int64
	)

	err := svc.coordinator.Run(ctx, Mutation{
		Name:   "subscription_save",
		UserID: userID,
		Validate: func(ctx context.Context, l *Ledgers) error {
			if _, err := svc.getUser(ctx, l, userID); err != nil {
				return err
			}
			if subscriptionID != 0 {
				existing, err := l.Subscriptions.FindByID(ctx, subscriptionID)
				if err != nil {
					return err
				}
				previousOwner = existing.UserID
			}
			createdDate, err := parseTimestampField("created_date", req.CreatedDate)
			if err != nil {
				return err
			}
			endDate, err := parseTimestampField("end_date", req.EndDate)
			if err != nil {
				return err
			}

			in = SubscriptionInput{
				ID:          subscriptionID,
				UserID:      userID,
				TypeKey:     req.SubscriptionType,
				Status:      req.Status,
				Source:      req.SubscriptionSource,
				CreatedDate: createdDate,
				EndDate:     endDate,
				Recurring:   req.Recurring,
			}
			if in.TypeKey != "" {
				if _, err := l.Subscriptions.ResolveTier(in.TypeKey); err != nil {
					return err
				}
			}
			if req.Gifter != nil {
				gifter, err := l.Gifters.Resolve(ctx, *req.Gifter, userID)
				if err != nil {
					return err
				}
				in.Gifter = gifter
				in.GifterSet = true
			}
			return nil
		},
		Persist: func(ctx context.Context, l *Ledgers) (bool, error) {
			sub, isNew, err := l.Subscriptions.Save(ctx, in)
			if err != nil {
				return false, err
			}
			savedID = sub.ID
			created = isNew
			return true, nil
		},
		// a transfer changes the previous owner's entitlements too
		Related: func() []int64 { return []int64{previousOwner} },
	})
	if err != nil {
		return 0, false, err
	}
	return savedID, created, nil
}

func parseTimestampField(field, raw string) (*time.Time, error) {
	t, err := common.ParseTimestamp(raw)
	if err != nil {
		return nil, errInvalid(field, constants.MsgInvalidTimestamp)
	}
	return t, nil
}

// BanDraft prepares the new-ban form
func (svc *AdminUserService) BanDraft(ctx context.Context, userID int64) (*dtos.BanView, error) {
	l := svc.read()
	user, err := svc.getUser(ctx, l, userID)
	if err != nil {
		return nil, err
	}
	draft := l.Bans.Draft(userID)
	return &dtos.BanView{User: *user, Ban: draft, Form: banForm(draft)}, nil
}

// BanView loads one of the user's bans
func (svc *AdminUserService) BanView(ctx context.Context, userID, banID int64) (*dtos.BanView, error) {
	l := svc.read()
	user, err := svc.getUser(ctx, l, userID)
	if err != nil {
		return nil, err
	}
	ban, err := svc.banOf(ctx, l, userID, banID)
	if err != nil {
		return nil, err
	}
	return &dtos.BanView{User: *user, Ban: *ban, Form: banForm(*ban)}, nil
}

func banForm(b gormModels.Ban) dtos.BanForm {
	return dtos.BanForm{
		StartTimestamp: common.FormatTimestamp(&b.StartTimestamp),
		EndTimestamp:   common.FormatTimestamp(b.EndTimestamp),
	}
}

func subscriptionForm(s gormModels.Subscription) dtos.SubscriptionForm {
	return dtos.SubscriptionForm{
		CreatedDate: common.FormatTimestamp(&s.CreatedDate),
		EndDate:     common.FormatTimestamp(&s.EndDate),
	}
}

// banOf returns the ban only when it targets userID
func (svc *AdminUserService) banOf(ctx context.Context, l *Ledgers, userID, banID int64) (*gormModels.Ban, error) {
	ban, err := l.Bans.GetByID(ctx, banID)
	if err != nil {
		return nil, err
	}
	if ban.TargetUserID != userID {
		return nil, errNotFound(constants.MsgBanNotFound)
	}
	return ban, nil
}

func banTerms(req dtos.SaveBanRequest) (*gormModels.Ban, error) {
	start, err := parseTimestampField("start_timestamp", req.StartTimestamp)
	if err != nil {
		return nil, err
	}
	if start == nil {
		return nil, errMissing("start_timestamp")
	}
	end, err := parseTimestampField("end_timestamp", req.EndTimestamp)
	if err != nil {
		return nil, err
	}
	return &gormModels.Ban{
		Reason:         req.Reason,
		StartTimestamp: *start,
		EndTimestamp:   end,
	}, nil
}

// InsertBan records a ban issued by issuerID against targetID
func (svc *AdminUserService) InsertBan(ctx context.Context, issuerID, targetID int64, req dtos.SaveBanRequest) (int64, error) {
	var (
		ban   *gormModels.Ban
		banID int64
	)

	err := svc.coordinator.Run(ctx, Mutation{
		Name:   "ban_insert",
		UserID: targetID,
		Validate: func(ctx context.Context, l *Ledgers) error {
			terms, err := banTerms(req)
			if err != nil {
				return err
			}
			terms.UserID = issuerID
			terms.TargetUserID = targetID
			ban = terms
			return nil
		},
		Persist: func(ctx context.Context, l *Ledgers) (bool, error) {
			id, err := l.Bans.Insert(ctx, ban)
			if err != nil {
				return false, err
			}
			banID = id
			return true, nil
		},
	})
	if err != nil {
		return 0, err
	}
	return banID, nil
}

// UpdateBan rewrites reason and time range of one of the user's bans
func (svc *AdminUserService) UpdateBan(ctx context.Context, userID, banID int64, req dtos.SaveBanRequest) error {
	var ban *gormModels.Ban

	return svc.coordinator.Run(ctx, Mutation{
		Name:   "ban_update",
		UserID: userID,
		Validate: func(ctx context.Context, l *Ledgers) error {
			if _, err := svc.banOf(ctx, l, userID, banID); err != nil {
				return err
			}
			terms, err := banTerms(req)
			if err != nil {
				return err
			}
			terms.ID = banID
			ban = terms
			return nil
		},
		Persist: func(ctx context.Context, l *Ledgers) (bool, error) {
			if err := l.Bans.Update(ctx, ban); err != nil {
				return false, err
			}
			return true, nil
		},
	})
}

// RemoveBans ends every active ban of the user. The stale flag is raised
// only when at least one ban was ended.
func (svc *AdminUserService) RemoveBans(ctx context.Context, userID int64) (int64, error) {
	var removed int64

	err := svc.coordinator.Run(ctx, Mutation{
		Name:   "ban_remove",
		UserID: userID,
		Persist: func(ctx context.Context, l *Ledgers) (bool, error) {
			n, err := l.Bans.RemoveActive(ctx, userID)
			if err != nil {
				return false, err
			}
			removed = n
			return n > 0, nil
		},
	})
	if err != nil {
		return 0, err
	}
	return removed, nil
}
