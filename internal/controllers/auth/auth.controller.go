package authController

import (
	"cinestream/config"
	"cinestream/internal/database"
	. "cinestream/internal/models"
	"cinestream/internal/repositories"
	"cinestream/internal/services"
	"cinestream/internal/types"
	"context"
	"errors"
	"time"

	logger "github.com/Bparsons0904/goLogger"
	"gorm.io/gorm"
)

type RegisterRequest struct {
	Name     string `json:"name"     validate:"required,max=100"`
	Email    string `json:"email"    validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type AuthResponse struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expiresAt"`
	User      UserProfile `json:"user"`
}

type AuthControllerInterface interface {
	Register(ctx context.Context, request *RegisterRequest) (*AuthResponse, error)
	Login(ctx context.Context, request *LoginRequest) (*AuthResponse, error)
	Authenticate(ctx context.Context, token string) (*User, error)
}

type AuthController struct {
	userRepo           repositories.UserRepository
	authService        *services.AuthService
	transactionService *services.TransactionService
	validationService  *services.ValidationService
	db                 database.DB
	log                logger.Logger
}

func New(
	repos repositories.Repository,
	services services.Service,
	config config.Config,
	db database.DB,
) AuthControllerInterface {
	return &AuthController{
		userRepo:           repos.User,
		authService:        services.Auth,
		transactionService: services.Transaction,
		validationService:  services.Validation,
		db:                 db,
		log:                logger.New("authController"),
	}
}

func (c *AuthController) Register(
	ctx context.Context,
	request *RegisterRequest,
) (*AuthResponse, error) {
	log := c.log.Function("Register").TraceFromContext(ctx)

	if err := c.validationService.Struct(request); err != nil {
		return nil, err
	}

	user := &User{Name: request.Name, Email: request.Email}
	if err := user.SetPassword(request.Password); err != nil {
		return nil, log.Err("failed to hash password", err)
	}

	err := c.transactionService.Execute(ctx, func(ctx context.Context, tx *gorm.DB) error {
		if err := c.userRepo.Create(ctx, tx, user); err != nil {
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

	log.Info("user registered", "userID", user.ID)
	return c.issue(user)
}

func (c *AuthController) Login(ctx context.Context, request *LoginRequest) (*AuthResponse, error) {
	log := c.log.Function("Login").TraceFromContext(ctx)

	if err := c.validationService.Struct(request); err != nil {
		return nil, err
	}

	user, err := c.userRepo.GetByEmail(ctx, c.db.SQLWithContext(ctx), request.Email)
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			return nil, types.Unauthorized("invalid email or password")
		}
		return nil, err
	}

	if !user.CheckPassword(request.Password) {
		log.Info("rejected login", "userID", user.ID)
		return nil, types.Unauthorized("invalid email or password")
	}

	return c.issue(user)
}

// Authenticate resolves a bearer token to its user.
func (c *AuthController) Authenticate(ctx context.Context, token string) (*User, error) {
	userID, err := c.authService.ParseToken(ctx, token)
	if err != nil {
		return nil, types.Unauthorized(err.Error())
	}

	user, err := c.userRepo.GetByID(ctx, c.db.SQLWithContext(ctx), userID)
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			return nil, types.Unauthorized("user no longer exists")
		}
		return nil, err
	}

	return user, nil
}

func (c *AuthController) issue(user *User) (*AuthResponse, error) {
	token, err := c.authService.IssueToken(user)
	if err != nil {
		return nil, err
	}

	return &AuthResponse{
		Token:     token.Token,
		ExpiresAt: token.ExpiresAt,
		User:      user.ToProfile(),
	}, nil
}
