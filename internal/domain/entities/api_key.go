package entities

import (
	"time"

	"github.com/google/uuid"
)

// ApiKey represents an issued prediction API credential. The plaintext is
// shown once at issuance; only the keyed digest is stored.
type ApiKey struct {
	ID         uuid.UUID  `json:"id"`
	UserID     uuid.UUID  `json:"userId"`
	Name       string     `json:"name"`
	KeyPrefix  string     `json:"keyPrefix"`
	KeyHash    string     `json:"-"`
	KeyMasked  string     `json:"keyMasked"`
	IsActive   bool       `json:"isActive"`
	LastUsedAt *time.Time `json:"lastUsedAt,omitempty"`
	ExpiresAt  *time.Time `json:"expiresAt,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`

	// Relationships
	User *User `json:"user,omitempty"`
}

// Expired reports whether the key has an expiry set in the past.
func (k *ApiKey) Expired(now time.Time) bool {
	return k.ExpiresAt != nil && now.After(*k.ExpiresAt)
}

// CredentialRecord is the result of one logical key-store lookup: the
// credential plus its owning user, tier name, and usage ledger entry.
type CredentialRecord struct {
	Key    *ApiKey
	User   *User
	Ledger *UsageLedger // nil until lazily initialized
}

type CreateApiKeyInput struct {
	Name      string     `json:"name" binding:"required,min=2,max=100"`
	ExpiresAt *time.Time `json:"expiresAt"`
}

type CreateApiKeyResponse struct {
	ID        uuid.UUID  `json:"id"`
	Name      string     `json:"name"`
	ApiKey    string     `json:"apiKey"` // shown once
	KeyPrefix string     `json:"keyPrefix"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
}

// AuthContext is the resolved identity attached to a request after the
// gateway authorizes it.
type AuthContext struct {
	UserID    uuid.UUID        `json:"userId"`
	Email     string           `json:"email"`
	Tier      SubscriptionTier `json:"tier"`
	Flags     CapabilityFlags  `json:"capabilityFlags"`
	KeyID     uuid.UUID        `json:"keyId"`
	KeyPrefix string           `json:"keyPrefix"`

	// Ledger is the usage row preloaded by the key lookup, carried so the
	// charge step can skip a redundant read. Nil on a user's first request.
	Ledger *UsageLedger `json:"-"`
}
