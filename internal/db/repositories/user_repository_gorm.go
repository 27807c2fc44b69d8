package repositories

import (
	"context"
	"fmt"

	gormModels "github.com/DelphiTri/website/internal/models/gorm"

	"gorm.io/gorm"
)

// identityColumns whitelists the columns GetUserIDByField may query.
var identityColumns = map[string]string{
	"username":       "username",
	"email":          "email",
	"discord_name":   "discord_name",
	"discord_uuid":   "discord_uuid",
	"minecraft_name": "minecraft_name",
	"minecraft_uuid": "minecraft_uuid",
}

type UserRepositoryGORM struct {
	db *gorm.DB
}

// NewUserRepositoryGORM creates a new GORM-based user repository
func NewUserRepositoryGORM(db *gorm.DB) *UserRepositoryGORM {
	return &UserRepositoryGORM{db: db}
}

// GetByID retrieves a user by numeric id
func (r *UserRepositoryGORM) GetByID(ctx context.Context, id int64) (*gormModels.User, error) {
	var user gormModels.User
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error
	if err != nil {
		return nil, translate(err, "failed to fetch user %d", id)
	}
	return &user, nil
}

// GetByUsername retrieves a user by exact username
func (r *UserRepositoryGORM) GetByUsername(ctx context.Context, username string) (*gormModels.User, error) {
	var user gormModels.User
	err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error
	if err != nil {
		return nil, translate(err, "failed to fetch user %q", username)
	}
	return &user, nil
}

// GetUsersByIDs returns the users that exist among ids, in id order
func (r *UserRepositoryGORM) GetUsersByIDs(ctx context.Context, ids []int64) ([]gormModels.User, error) {
	users := []gormModels.User{}
	if len(ids) == 0 {
		return users, nil
	}
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Order("id ASC").Find(&users).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch users: %w", err)
	}
	return users, nil
}

// GetUserIDByField returns the id of the user holding value in field, or
// found=false when nobody does.
func (r *UserRepositoryGORM) GetUserIDByField(ctx context.Context, field, value string) (id int64, found bool, err error) {
	column, ok := identityColumns[field]
	if !ok {
		return 0, false, fmt.Errorf("unknown identity field %q", field)
	}

	var ids []int64
	err = r.db.WithContext(ctx).
		Model(&gormModels.User{}).
		Where(column+" = ?", value).
		Order("id ASC").
		Limit(1).
		Pluck("id", &ids).Error
	if err != nil {
		return 0, false, fmt.Errorf("failed to look up %s: %w", field, err)
	}
	if len(ids) == 0 {
		return 0, false, nil
	}
	return ids[0], true, nil
}

// Update writes the given columns. A nil value stores NULL.
func (r *UserRepositoryGORM) Update(ctx context.Context, id int64, columns map[string]any) error {
	res := r.db.WithContext(ctx).
		Model(&gormModels.User{}).
		Where("id = ?", id).
		Updates(columns)
	if res.Error != nil {
		return translate(res.Error, "failed to update user %d", id)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("failed to update user %d: %w", id, ErrNotFound)
	}
	return nil
}

// GetRolesByUserID returns the role names assigned to a user
func (r *UserRepositoryGORM) GetRolesByUserID(ctx context.Context, userID int64) ([]string, error) {
	roles := []string{}
	err := r.db.WithContext(ctx).
		Model(&gormModels.UserRole{}).
		Where("user_id = ?", userID).
		Order("role_name ASC").
		Pluck("role_name", &roles).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch roles: %w", err)
	}
	return roles, nil
}

// GetFeaturesByUserID returns the feature names assigned to a user
func (r *UserRepositoryGORM) GetFeaturesByUserID(ctx context.Context, userID int64) ([]string, error) {
	features := []string{}
	err := r.db.WithContext(ctx).
		Model(&gormModels.UserFeature{}).
		Where("user_id = ?", userID).
		Order("feature_name ASC").
		Pluck("feature_name", &features).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch features: %w", err)
	}
	return features, nil
}

func (r *UserRepositoryGORM) GetAllRoles(ctx context.Context) ([]gormModels.Role, error) {
	var roles []gormModels.Role
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&roles).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch role catalogue: %w", err)
	}
	return roles, nil
}

func (r *UserRepositoryGORM) GetAllFeatures(ctx context.Context) ([]gormModels.Feature, error) {
	var features []gormModels.Feature
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&features).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch feature catalogue: %w", err)
	}
	return features, nil
}

func (r *UserRepositoryGORM) RoleExists(ctx context.Context, name string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&gormModels.Role{}).Where("name = ?", name).Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check role: %w", err)
	}
	return count > 0, nil
}

func (r *UserRepositoryGORM) FeatureExists(ctx context.Context, name string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&gormModels.Feature{}).Where("name = ?", name).Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check feature: %w", err)
	}
	return count > 0, nil
}

func (r *UserRepositoryGORM) AddUserRole(ctx context.Context, userID int64, role string) error {
	err := r.db.WithContext(ctx).Create(&gormModels.UserRole{UserID: userID, RoleName: role}).Error
	return translate(err, "failed to add role %s", role)
}

func (r *UserRepositoryGORM) RemoveUserRole(ctx context.Context, userID int64, role string) error {
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND role_name = ?", userID, role).
		Delete(&gormModels.UserRole{}).Error
	return translate(err, "failed to remove role %s", role)
}

func (r *UserRepositoryGORM) AddUserFeature(ctx context.Context, userID int64, feature string) error {
	err := r.db.WithContext(ctx).Create(&gormModels.UserFeature{UserID: userID, FeatureName: feature}).Error
	return translate(err, "failed to add feature %s", feature)
}

func (r *UserRepositoryGORM) RemoveUserFeature(ctx context.Context, userID int64, feature string) error {
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND feature_name = ?", userID, feature).
		Delete(&gormModels.UserFeature{}).Error
	return translate(err, "failed to remove feature %s", feature)
}

// GetAuthProfiles returns the linked login providers of a user
func (r *UserRepositoryGORM) GetAuthProfiles(ctx context.Context, userID int64) ([]gormModels.UserAuthProfile, error) {
	profiles := []gormModels.UserAuthProfile{}
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("auth_provider ASC").
		Find(&profiles).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch auth profiles: %w", err)
	}
	return profiles, nil
}

// RemoveAuthProfile deletes one provider link and reports how many rows went away
func (r *UserRepositoryGORM) RemoveAuthProfile(ctx context.Context, userID int64, provider string) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND auth_provider = ?", userID, provider).
		Delete(&gormModels.UserAuthProfile{})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to remove auth profile: %w", res.Error)
	}
	return res.RowsAffected, nil
}
