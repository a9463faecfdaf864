package usecases

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/low-k3YLTD/equine-oracle-backend/internal/domain/entities"
	domainerrors "github.com/low-k3YLTD/equine-oracle-backend/internal/domain/errors"
	"github.com/low-k3YLTD/equine-oracle-backend/internal/domain/repositories"
	"github.com/low-k3YLTD/equine-oracle-backend/pkg/crypto"
)

// maxActiveKeysPerUser caps hoarding of live credentials.
const maxActiveKeysPerUser = 10

// ApiKeyUsecase handles issuance and lifecycle of prediction API keys.
type ApiKeyUsecase struct {
	apiKeyRepo repositories.ApiKeyRepository
	hasher     *crypto.KeyHasher
}

// NewApiKeyUsecase creates a new API key usecase.
func NewApiKeyUsecase(apiKeyRepo repositories.ApiKeyRepository, hasher *crypto.KeyHasher) *ApiKeyUsecase {
	return &ApiKeyUsecase{
		apiKeyRepo: apiKeyRepo,
		hasher:     hasher,
	}
}

// CreateApiKey issues a new credential for the user. The plaintext key is
// returned exactly once and never persisted.
func (u *ApiKeyUsecase) CreateApiKey(ctx context.Context, userID uuid.UUID, input *entities.CreateApiKeyInput) (*entities.CreateApiKeyResponse, error) {
	if input.ExpiresAt != nil && !input.ExpiresAt.After(time.Now()) {
		return nil, domainerrors.BadRequest("expiry must be in the future")
	}

	existing, err := u.apiKeyRepo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	active := 0
	for _, k := range existing {
		if k.IsActive {
			active++
		}
	}
	if active >= maxActiveKeysPerUser {
		return nil, domainerrors.BadRequest("active key limit reached, revoke an unused key first")
	}

	plaintext, prefix, err := crypto.GenerateKey()
	if err != nil {
		return nil, domainerrors.InternalError(err)
	}

	now := time.Now()
	entity := &entities.ApiKey{
		UserID:    userID,
		Name:      input.Name,
		KeyPrefix: prefix,
		KeyHash:   u.hasher.HashKey(plaintext),
		KeyMasked: crypto.MaskKey(plaintext),
		IsActive:  true,
		ExpiresAt: input.ExpiresAt,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := u.apiKeyRepo.Create(ctx, entity); err != nil {
		return nil, err
	}

	return &entities.CreateApiKeyResponse{
		ID:        entity.ID,
		Name:      entity.Name,
		ApiKey:    plaintext, // shown once
		KeyPrefix: prefix,
		ExpiresAt: entity.ExpiresAt,
		CreatedAt: entity.CreatedAt,
	}, nil
}

// ListApiKeys returns the user's credentials, masked.
func (u *ApiKeyUsecase) ListApiKeys(ctx context.Context, userID uuid.UUID) ([]*entities.ApiKey, error) {
	return u.apiKeyRepo.FindByUserID(ctx, userID)
}

// RevokeApiKey deactivates one of the user's credentials. Revocation is not
// reversible; a replacement key must be issued instead.
func (u *ApiKeyUsecase) RevokeApiKey(ctx context.Context, userID, keyID uuid.UUID) error {
	err := u.apiKeyRepo.Deactivate(ctx, keyID, userID)
	if errors.Is(err, domainerrors.ErrNotFound) {
		return domainerrors.NotFound("api key not found")
	}
	return err
}
