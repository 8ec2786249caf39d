package businessflow

import (
	"context"
	"fmt"
	"strings"

	"github.com/culturemap-ua/culturemap-api/app/dto"
	"github.com/culturemap-ua/culturemap-api/app/services"
	"github.com/culturemap-ua/culturemap-api/models"
	"github.com/culturemap-ua/culturemap-api/repository"
	"github.com/culturemap-ua/culturemap-api/utils"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// AuthFlow handles registration and authentication
type AuthFlow interface {
	Register(ctx context.Context, request *dto.RegisterRequest, metadata *ClientMetadata) (*dto.RegisterResponse, error)
	Login(ctx context.Context, request *dto.LoginRequest, metadata *ClientMetadata) (*dto.LoginResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*dto.TokenPairDTO, error)
}

// AuthFlowImpl implements the authentication business flow
type AuthFlowImpl struct {
	userRepo     repository.UserRepository
	tokenService services.TokenService
	bcryptCost   int
	db           *gorm.DB
}

// NewAuthFlow creates a new authentication flow instance
func NewAuthFlow(
	userRepo repository.UserRepository,
	tokenService services.TokenService,
	bcryptCost int,
	db *gorm.DB,
) AuthFlow {
	return &AuthFlowImpl{
		userRepo:     userRepo,
		tokenService: tokenService,
		bcryptCost:   bcryptCost,
		db:           db,
	}
}

// Register creates a new account with the default user role
func (af *AuthFlowImpl) Register(ctx context.Context, request *dto.RegisterRequest, metadata *ClientMetadata) (*dto.RegisterResponse, error) {
	if err := af.validateRegisterRequest(request); err != nil {
		return nil, NewBusinessError("REGISTER_VALIDATION_FAILED", "Registration validation failed", err)
	}

	var user *models.User

	err := repository.WithTransaction(ctx, af.db, func(ctx context.Context) error {
		existing, err := af.userRepo.ByUsername(ctx, request.Username)
		if err != nil {
			return err
		}
		if existing != nil {
			return ErrUsernameAlreadyExists
		}

		existing, err = af.userRepo.ByEmail(ctx, request.Email)
		if err != nil {
			return err
		}
		if existing != nil {
			return ErrEmailAlreadyExists
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(request.Password), af.bcryptCost)
		if err != nil {
			return fmt.Errorf("failed to hash password: %w", err)
		}

		user = &models.User{
			UUID:         uuid.New(),
			Username:     strings.TrimSpace(request.Username),
			Email:        strings.ToLower(strings.TrimSpace(request.Email)),
			PasswordHash: string(hash),
			Role:         models.RoleUser,
			IsActive:     utils.ToPtr(true),
			CreatedAt:    utils.UTCNow(),
			UpdatedAt:    utils.UTCNow(),
		}

		return af.userRepo.Save(ctx, user)
	})
	if err != nil {
		return nil, NewBusinessError("REGISTER_FAILED", "Registration failed", err)
	}

	tokens, err := af.issueTokens(user)
	if err != nil {
		return nil, NewBusinessError("REGISTER_FAILED", "Registration failed", err)
	}

	return &dto.RegisterResponse{
		Message: "Account created successfully",
		User:    ToAuthUserDTO(*user),
		Tokens:  *tokens,
	}, nil
}

// Login authenticates a user by username or email and password
func (af *AuthFlowImpl) Login(ctx context.Context, request *dto.LoginRequest, metadata *ClientMetadata) (*dto.LoginResponse, error) {
	if strings.TrimSpace(request.Identifier) == "" {
		return nil, NewBusinessError("LOGIN_VALIDATION_FAILED", "Login validation failed", NewValidationError("identifier", "identifier is required"))
	}
	if request.Password == "" {
		return nil, NewBusinessError("LOGIN_VALIDATION_FAILED", "Login validation failed", NewValidationError("password", "password is required"))
	}

	var user *models.User

	err := repository.WithTransaction(ctx, af.db, func(ctx context.Context) error {
		var err error
		user, err = af.findUserByIdentifier(ctx, request.Identifier)
		if err != nil {
			return err
		}
		if user == nil {
			return ErrUserNotFound
		}

		if !utils.IsTrue(user.IsActive) {
			return ErrAccountInactive
		}

		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(request.Password)); err != nil {
			return ErrIncorrectPassword
		}

		return af.userRepo.UpdateLastLogin(ctx, user.ID)
	})
	if err != nil {
		return nil, NewBusinessError("LOGIN_FAILED", "Login failed", err)
	}

	tokens, err := af.issueTokens(user)
	if err != nil {
		return nil, NewBusinessError("LOGIN_FAILED", "Login failed", err)
	}

	return &dto.LoginResponse{
		Message: "Login successful",
		User:    ToAuthUserDTO(*user),
		Tokens:  *tokens,
	}, nil
}

// Refresh exchanges a refresh token for a fresh token pair
func (af *AuthFlowImpl) Refresh(ctx context.Context, refreshToken string) (*dto.TokenPairDTO, error) {
	claims, err := af.tokenService.ValidateToken(refreshToken)
	if err != nil {
		return nil, NewBusinessError("REFRESH_FAILED", "Token refresh failed", err)
	}

	user, err := af.userRepo.ByID(ctx, claims.UserID)
	if err != nil {
		return nil, NewBusinessError("REFRESH_FAILED", "Token refresh failed", err)
	}
	if user == nil {
		return nil, NewBusinessError("REFRESH_FAILED", "Token refresh failed", ErrUserNotFound)
	}
	if !utils.IsTrue(user.IsActive) {
		return nil, NewBusinessError("REFRESH_FAILED", "Token refresh failed", ErrAccountInactive)
	}

	access, refresh, err := af.tokenService.RefreshToken(refreshToken)
	if err != nil {
		return nil, NewBusinessError("REFRESH_FAILED", "Token refresh failed", err)
	}

	return &dto.TokenPairDTO{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "Bearer",
		ExpiresIn:    int(af.tokenService.AccessTokenTTL().Seconds()),
	}, nil
}

// findUserByIdentifier resolves a username or email to a user
func (af *AuthFlowImpl) findUserByIdentifier(ctx context.Context, identifier string) (*models.User, error) {
	identifier = strings.TrimSpace(identifier)
	if strings.Contains(identifier, "@") {
		return af.userRepo.ByEmail(ctx, identifier)
	}
	return af.userRepo.ByUsername(ctx, identifier)
}

func (af *AuthFlowImpl) issueTokens(user *models.User) (*dto.TokenPairDTO, error) {
	access, refresh, err := af.tokenService.GenerateTokens(user.ID, user.Role.String())
	if err != nil {
		return nil, fmt.Errorf("failed to generate tokens: %w", err)
	}
	return &dto.TokenPairDTO{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "Bearer",
		ExpiresIn:    int(af.tokenService.AccessTokenTTL().Seconds()),
	}, nil
}

func (af *AuthFlowImpl) validateRegisterRequest(request *dto.RegisterRequest) error {
	username := strings.TrimSpace(request.Username)
	if len(username) < 3 || len(username) > 150 {
		return NewValidationError("username", "username must be between 3 and 150 characters")
	}
	if strings.ContainsAny(username, " \t\n") {
		return NewValidationError("username", "username must not contain whitespace")
	}
	email := strings.TrimSpace(request.Email)
	if email == "" || !strings.Contains(email, "@") {
		return NewValidationError("email", "a valid email address is required")
	}
	if len(request.Password) < 8 {
		return NewValidationError("password", "password must be at least 8 characters")
	}
	if request.Password != request.Password2 {
		return NewValidationError("password2", "passwords do not match")
	}
	return nil
}
