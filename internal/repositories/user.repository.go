package repositories

import (
	"cinestream/internal/constants"
	"cinestream/internal/database"
	. "cinestream/internal/models"
	"cinestream/internal/types"
	"context"
	"errors"
	"fmt"

	logger "github.com/Bparsons0904/goLogger"
	"gorm.io/gorm"
)

type UserRepository interface {
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*User, error)
	GetByEmail(ctx context.Context, tx *gorm.DB, email string) (*User, error)
	List(ctx context.Context, tx *gorm.DB, pagination types.Pagination) ([]User, int64, error)
	Create(ctx context.Context, tx *gorm.DB, user *User) error
	Update(ctx context.Context, tx *gorm.DB, user *User) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error
	ClearUserCache(ctx context.Context, id uint)
}

type userRepository struct {
	cache database.CacheClient
	log   logger.Logger
}

func NewUserRepository(cache database.CacheClient) UserRepository {
	return &userRepository{
		cache: cache,
		log:   logger.New("userRepository"),
	}
}

// GetByID serves the authenticated identity; the cached copy never carries the
// password hash.
func (r *userRepository) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*User, error) {
	log := r.log.Function("GetByID")

	var user User
	if r.getCacheByID(ctx, id, &user) {
		return &user, nil
	}

	if err := tx.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, types.NotFound("user", id)
		}
		return nil, log.Err("failed to get user by id", err, "id", id)
	}

	r.addUserToCache(ctx, &user)

	return &user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, tx *gorm.DB, email string) (*User, error) {
	log := r.log.Function("GetByEmail")

	email = NormalizeEmail(email)
	user, err := gorm.G[User](tx).Where("email = ?", email).First(ctx)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, types.NotFound("user", email)
		}
		return nil, log.Err("failed to get user by email", err, "email", email)
	}

	return &user, nil
}

func (r *userRepository) List(
	ctx context.Context,
	tx *gorm.DB,
	pagination types.Pagination,
) ([]User, int64, error) {
	log := r.log.Function("List")

	var total int64
	if err := tx.Model(&User{}).Count(&total).Error; err != nil {
		return nil, 0, log.Err("failed to count users", err)
	}

	users, err := gorm.G[User](tx).
		Order("created_at DESC, id DESC").
		Limit(pagination.PageSize).
		Offset(pagination.Offset()).
		Find(ctx)
	if err != nil {
		return nil, 0, log.Err("failed to list users", err)
	}

	return users, total, nil
}

func (r *userRepository) Create(ctx context.Context, tx *gorm.DB, user *User) error {
	if err := tx.Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return err
		}
		return r.log.Function("Create").Err("failed to create user", err, "email", user.Email)
	}

	return nil
}

// Update writes the profile columns only so a cached copy cannot clear the
// stored password hash. Callers clear the cached copy once the write commits.
func (r *userRepository) Update(ctx context.Context, tx *gorm.DB, user *User) error {
	log := r.log.Function("Update")

	err := tx.Model(user).Select("name", "email", "is_admin", "updated_at").Updates(user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return err
		}
		return log.Err("failed to update user", err, "id", user.ID)
	}

	return nil
}

// Delete removes the user with every relation row the user owns. Callers clear
// the cached copy once the write commits.
func (r *userRepository) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	log := r.log.Function("Delete")

	dependents := []any{&Favorite{}, &Watchlist{}, &Rating{}, &WatchHistory{}}
	for _, model := range dependents {
		if err := tx.Where("user_id = ?", id).Delete(model).Error; err != nil {
			return log.Err("failed to delete user relations", err, "id", id)
		}
	}

	rowsAffected, err := gorm.G[User](tx).Where("id = ?", id).Delete(ctx)
	if err != nil {
		return log.Err("failed to delete user", err, "id", id)
	}
	if rowsAffected == 0 {
		return types.NotFound("user", id)
	}

	return nil
}

func (r *userRepository) ClearUserCache(ctx context.Context, id uint) {
	if r.cache == nil {
		return
	}

	if err := database.NewCacheBuilder(r.cache, userCacheKey(id)).
		WithContext(ctx).
		Delete(); err != nil {
		r.log.Function("ClearUserCache").Warn("failed to clear user cache", "userID", id, "error", err)
	}
}

func (r *userRepository) getCacheByID(ctx context.Context, id uint, user *User) bool {
	if r.cache == nil {
		return false
	}

	found, err := database.NewCacheBuilder(r.cache, userCacheKey(id)).
		WithContext(ctx).
		Get(user)
	if err != nil {
		r.log.Function("getCacheByID").Warn("failed to get user from cache", "userID", id, "error", err)
		return false
	}

	return found
}

func (r *userRepository) addUserToCache(ctx context.Context, user *User) {
	if r.cache == nil {
		return
	}

	if err := database.NewCacheBuilder(r.cache, userCacheKey(user.ID)).
		WithStruct(user).
		WithTTL(constants.UserCacheExpiry).
		WithContext(ctx).
		Set(); err != nil {
		r.log.Function("addUserToCache").Warn("failed to add user to cache", "userID", user.ID, "error", err)
	}
}

func userCacheKey(id uint) string {
	return fmt.Sprintf("%s:%d", constants.UserCachePrefix, id)
}
