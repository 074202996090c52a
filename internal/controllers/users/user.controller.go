package userController

import (
	"cinestream/config"
	"cinestream/internal/database"
	. "cinestream/internal/models"
	"cinestream/internal/repositories"
	"cinestream/internal/services"
	"cinestream/internal/types"
	"context"
	"errors"
	"strings"

	logger "github.com/Bparsons0904/goLogger"
	"gorm.io/gorm"
)

type UpdateUserRequest struct {
	Name    *string `json:"name"    validate:"omitempty,min=1,max=100"`
	Email   *string `json:"email"   validate:"omitempty,email,max=255"`
	IsAdmin *bool   `json:"isAdmin"`
}

type UserControllerInterface interface {
	List(ctx context.Context, pagination types.Pagination) (types.Page[UserProfile], error)
	Update(
		ctx context.Context,
		actor *User,
		id uint,
		request *UpdateUserRequest,
	) (*UserProfile, error)
	Delete(ctx context.Context, actor *User, id uint) error
}

type UserController struct {
	userRepo           repositories.UserRepository
	transactionService *services.TransactionService
	validationService  *services.ValidationService
	db                 database.DB
	Config             config.Config
	log                logger.Logger
}

func New(
	repos repositories.Repository,
	services services.Service,
	config config.Config,
	db database.DB,
) UserControllerInterface {
	return &UserController{
		userRepo:           repos.User,
		transactionService: services.Transaction,
		validationService:  services.Validation,
		db:                 db,
		Config:             config,
		log:                logger.New("userController"),
	}
}

func (c *UserController) List(
	ctx context.Context,
	pagination types.Pagination,
) (types.Page[UserProfile], error) {
	pagination = pagination.Normalize(types.AdminPageSize)

	users, total, err := c.userRepo.List(ctx, c.db.SQLWithContext(ctx), pagination)
	if err != nil {
		return types.Page[UserProfile]{}, err
	}

	profiles := make([]UserProfile, 0, len(users))
	for i := range users {
		profiles = append(profiles, users[i].ToProfile())
	}

	return types.NewPage(profiles, pagination, total), nil
}

// Update edits another account's profile or admin flag. Admins cannot revoke
// their own admin flag.
func (c *UserController) Update(
	ctx context.Context,
	actor *User,
	id uint,
	request *UpdateUserRequest,
) (*UserProfile, error) {
	log := c.log.Function("Update").TraceFromContext(ctx)

	if err := c.validationService.Struct(request); err != nil {
		return nil, err
	}

	if actor.ID == id && request.IsAdmin != nil && !*request.IsAdmin {
		return nil, types.Forbidden("admins cannot revoke their own admin access")
	}

	var user *User
	err := c.transactionService.Execute(ctx, func(ctx context.Context, tx *gorm.DB) error {
		var err error
		if user, err = c.userRepo.GetByID(ctx, tx, id); err != nil {
			return err
		}

		if request.Name != nil {
			user.Name = strings.TrimSpace(*request.Name)
		}
		if request.Email != nil {
			user.Email = *request.Email
		}
		if request.IsAdmin != nil {
			user.IsAdmin = *request.IsAdmin
		}

		if err := c.userRepo.Update(ctx, tx, user); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return types.NewValidationError("email", "is already registered")
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	c.userRepo.ClearUserCache(ctx, user.ID)

	log.Info("user updated", "actorID", actor.ID, "userID", user.ID, "isAdmin", user.IsAdmin)
	profile := user.ToProfile()
	return &profile, nil
}

func (c *UserController) Delete(ctx context.Context, actor *User, id uint) error {
	log := c.log.Function("Delete").TraceFromContext(ctx)

	if actor.ID == id {
		return types.Forbidden("admins cannot delete their own account")
	}

	err := c.transactionService.Execute(ctx, func(ctx context.Context, tx *gorm.DB) error {
		return c.userRepo.Delete(ctx, tx, id)
	})
	if err != nil {
		return err
	}
	c.userRepo.ClearUserCache(ctx, id)

	log.Info("user deleted", "actorID", actor.ID, "userID", id)
	return nil
}
