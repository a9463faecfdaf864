package usecases

import (
	"context"
	"errors"
	"time"

	"github.com/low-k3YLTD/equine-oracle-backend/internal/domain/entities"
	domainerrors "github.com/low-k3YLTD/equine-oracle-backend/internal/domain/errors"
	"github.com/low-k3YLTD/equine-oracle-backend/internal/domain/repositories"
	"github.com/low-k3YLTD/equine-oracle-backend/pkg/crypto"
	"github.com/low-k3YLTD/equine-oracle-backend/pkg/jwt"
	"github.com/low-k3YLTD/equine-oracle-backend/pkg/redis"
)

const sessionTTL = 7 * 24 * time.Hour

// sessionStore abstracts the encrypted redis session backend.
type sessionStore interface {
	CreateSession(ctx context.Context, sessionID string, data *redis.SessionData, expiration time.Duration) error
	GetSession(ctx context.Context, sessionID string) (*redis.SessionData, error)
	DeleteSession(ctx context.Context, sessionID string) error
}

// AuthUsecase handles dashboard authentication. The JWT it issues guards key
// management endpoints; prediction traffic authenticates with API keys
// instead.
type AuthUsecase struct {
	userRepo   repositories.UserRepository
	jwtService *jwt.JWTService
	sessions   sessionStore // nil disables server-side sessions
}

// NewAuthUsecase creates a new auth usecase.
func NewAuthUsecase(userRepo repositories.UserRepository, jwtService *jwt.JWTService, sessions sessionStore) *AuthUsecase {
	return &AuthUsecase{
		userRepo:   userRepo,
		jwtService: jwtService,
		sessions:   sessions,
	}
}

// Register creates a new subscriber on the FREE tier.
func (u *AuthUsecase) Register(ctx context.Context, input *entities.RegisterInput) (*entities.AuthResponse, error) {
	_, err := u.userRepo.GetByEmail(ctx, input.Email)
	if err == nil {
		return nil, domainerrors.Conflict("email already registered")
	}
	if !errors.Is(err, domainerrors.ErrNotFound) {
		return nil, err
	}

	passwordHash, err := crypto.HashPassword(input.Password)
	if err != nil {
		return nil, domainerrors.InternalError(err)
	}

	user := &entities.User{
		Email:        input.Email,
		Name:         input.Name,
		PasswordHash: passwordHash,
		Role:         entities.UserRoleUser,
		Tier:         entities.TierFree,
	}
	if err := u.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	pair, err := u.jwtService.GenerateTokenPair(user.ID, user.Email, string(user.Role))
	if err != nil {
		return nil, domainerrors.InternalError(err)
	}

	return &entities.AuthResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		User:         user,
	}, nil
}

// Login verifies credentials and issues a token pair. With UseSession set,
// tokens are held server-side in redis and only an opaque session id is
// returned.
func (u *AuthUsecase) Login(ctx context.Context, input *entities.LoginInput) (*entities.AuthResponse, error) {
	user, err := u.userRepo.GetByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			// Indistinguishable from a wrong password.
			return nil, domainerrors.Unauthorized("invalid email or password")
		}
		return nil, err
	}

	if !crypto.CheckPassword(input.Password, user.PasswordHash) {
		return nil, domainerrors.Unauthorized("invalid email or password")
	}

	pair, err := u.jwtService.GenerateTokenPair(user.ID, user.Email, string(user.Role))
	if err != nil {
		return nil, domainerrors.InternalError(err)
	}

	if input.UseSession {
		if u.sessions == nil {
			return nil, domainerrors.BadRequest("sessions are not enabled")
		}
		sessionID, err := crypto.GenerateRandomToken(32)
		if err != nil {
			return nil, domainerrors.InternalError(err)
		}
		data := &redis.SessionData{
			AccessToken:  pair.AccessToken,
			RefreshToken: pair.RefreshToken,
		}
		if err := u.sessions.CreateSession(ctx, sessionID, data, sessionTTL); err != nil {
			return nil, domainerrors.InternalError(err)
		}
		return &entities.AuthResponse{SessionID: sessionID, User: user}, nil
	}

	return &entities.AuthResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		User:         user,
	}, nil
}

// Refresh exchanges a valid refresh token for a fresh pair.
func (u *AuthUsecase) Refresh(ctx context.Context, refreshToken string) (*entities.AuthResponse, error) {
	claims, err := u.jwtService.ValidateToken(refreshToken)
	if err != nil {
		return nil, domainerrors.Unauthorized("invalid refresh token")
	}

	user, err := u.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return nil, domainerrors.Unauthorized("invalid refresh token")
		}
		return nil, err
	}

	pair, err := u.jwtService.GenerateTokenPair(user.ID, user.Email, string(user.Role))
	if err != nil {
		return nil, domainerrors.InternalError(err)
	}

	return &entities.AuthResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		User:         user,
	}, nil
}

// Logout destroys a server-side session. A no-op for token-only clients.
func (u *AuthUsecase) Logout(ctx context.Context, sessionID string) error {
	if u.sessions == nil || sessionID == "" {
		return nil
	}
	return u.sessions.DeleteSession(ctx, sessionID)
}

// ResolveSession maps an opaque session id back to its access token.
func (u *AuthUsecase) ResolveSession(ctx context.Context, sessionID string) (string, error) {
	if u.sessions == nil {
		return "", domainerrors.Unauthorized("sessions are not enabled")
	}
	data, err := u.sessions.GetSession(ctx, sessionID)
	if err != nil {
		return "", domainerrors.Unauthorized("invalid session")
	}
	return data.AccessToken, nil
}
