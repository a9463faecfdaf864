package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/low-k3YLTD/equine-oracle-backend/internal/domain/entities"
	domainerrors "github.com/low-k3YLTD/equine-oracle-backend/internal/domain/errors"
	"github.com/low-k3YLTD/equine-oracle-backend/internal/infrastructure/models"
	"github.com/low-k3YLTD/equine-oracle-backend/pkg/utils"
)

// ApiKeyRepository implements credential storage on GORM.
type ApiKeyRepository struct {
	db *gorm.DB
}

// NewApiKeyRepository creates a new api key repository
func NewApiKeyRepository(db *gorm.DB) *ApiKeyRepository {
	return &ApiKeyRepository{db: db}
}

// Create creates a new api key
func (r *ApiKeyRepository) Create(ctx context.Context, apiKey *entities.ApiKey) error {
	if apiKey.ID == uuid.Nil {
		apiKey.ID = utils.GenerateUUIDv7()
	}
	m := &models.ApiKey{
		ID:        apiKey.ID,
		UserID:    apiKey.UserID,
		Name:      apiKey.Name,
		KeyPrefix: apiKey.KeyPrefix,
		KeyHash:   apiKey.KeyHash,
		KeyMasked: apiKey.KeyMasked,
		IsActive:  apiKey.IsActive,
		ExpiresAt: apiKey.ExpiresAt,
		CreatedAt: apiKey.CreatedAt,
		UpdatedAt: apiKey.UpdatedAt,
	}
	return r.db.WithContext(ctx).Create(m).Error
}

// FindByPrefix resolves a lookup prefix to the credential record, its owning
// user, and the user's usage ledger. Not-found is a normal outcome reported
// as domainerrors.ErrNotFound; anything else is a storage failure.
func (r *ApiKeyRepository) FindByPrefix(ctx context.Context, prefix string) (*entities.CredentialRecord, error) {
	var m models.ApiKey
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("key_prefix = ?", prefix).
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}

	record := &entities.CredentialRecord{
		Key:  toApiKeyEntity(&m),
		User: toUserEntity(&m.User),
	}

	// The ledger rides along so the charge path can seed its quota check
	// without a second read.
	var ledger models.UsageLedger
	err = r.db.WithContext(ctx).Where("user_id = ?", m.UserID).First(&ledger).Error
	switch {
	case err == nil:
		record.Ledger = toLedgerEntity(&ledger)
	case errors.Is(err, gorm.ErrRecordNotFound):
		// first request for this user; ledger is lazily initialized later
	default:
		return nil, err
	}

	return record, nil
}

// FindByUserID lists all keys owned by a user, newest first.
func (r *ApiKeyRepository) FindByUserID(ctx context.Context, userID uuid.UUID) ([]*entities.ApiKey, error) {
	var keyModels []models.ApiKey
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&keyModels).Error
	if err != nil {
		return nil, err
	}

	keys := make([]*entities.ApiKey, 0, len(keyModels))
	for i := range keyModels {
		keys = append(keys, toApiKeyEntity(&keyModels[i]))
	}
	return keys, nil
}

// FindByID gets a key by ID
func (r *ApiKeyRepository) FindByID(ctx context.Context, id uuid.UUID) (*entities.ApiKey, error) {
	var m models.ApiKey
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return toApiKeyEntity(&m), nil
}

// TouchLastUsed updates the last-used timestamp of a key.
func (r *ApiKeyRepository) TouchLastUsed(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Model(&models.ApiKey{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"last_used_at": time.Now(),
			"updated_at":   time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

// Deactivate flips the active flag of a key owned by the given user. Keys
// are soft-disabled, never deleted.
func (r *ApiKeyRepository) Deactivate(ctx context.Context, id, userID uuid.UUID) error {
	result := r.db.WithContext(ctx).Model(&models.ApiKey{}).
		Where("id = ? AND user_id = ?", id, userID).
		Updates(map[string]interface{}{
			"is_active":  false,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

func toApiKeyEntity(m *models.ApiKey) *entities.ApiKey {
	return &entities.ApiKey{
		ID:         m.ID,
		UserID:     m.UserID,
		Name:       m.Name,
		KeyPrefix:  m.KeyPrefix,
		KeyHash:    m.KeyHash,
		KeyMasked:  m.KeyMasked,
		IsActive:   m.IsActive,
		LastUsedAt: m.LastUsedAt,
		ExpiresAt:  m.ExpiresAt,
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	}
}
