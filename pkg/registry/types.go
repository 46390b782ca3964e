package registry

import (
	"context"
	"time"
)

// ProviderConfig identifies one usable (provider, model) pairing.
type ProviderConfig struct {
	// ID is the configuration's unique identifier.
	ID string `json:"id"`

	// Name is the human-assigned configuration name
	// (e.g. "openai-gpt4o-mini").
	Name string `json:"name"`

	// Provider is the upstream provider ("openai", "anthropic", ...).
	Provider string `json:"provider"`

	// Model is the model identifier sent to the provider.
	Model string `json:"model"`

	// APIKeyEncrypted is the encrypted credential for the provider.
	// Decryption is the caller's concern.
	APIKeyEncrypted string `json:"api_key_encrypted,omitempty"`

	// AccountID scopes the configuration to one account.
	// Empty means global: visible to every account.
	AccountID string `json:"account_id,omitempty"`

	// IsDefault marks the configuration used when no explicit choice
	// is made.
	IsDefault bool `json:"is_default"`

	// UseCases tags the workloads this configuration serves.
	UseCases []string `json:"use_case"`

	// MaxTokens is the per-request completion token cap.
	MaxTokens int `json:"max_tokens"`

	// IsActive gates whether the configuration is eligible at all.
	IsActive bool `json:"is_active"`

	CreatedAt time.Time `json:"created_at,omitempty"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}

// Store is the source of truth for provider configurations.
// Implementations must be safe for concurrent use.
type Store interface {
	// ListActive returns active configurations visible to accountID:
	// account-specific plus global entries. An empty accountID returns
	// global entries only.
	ListActive(ctx context.Context, accountID string) ([]ProviderConfig, error)

	// Create inserts a configuration. The ID must be set by the caller.
	Create(ctx context.Context, cfg ProviderConfig) error

	// Update replaces the configuration with cfg.ID. Returns an error
	// if no such configuration exists.
	Update(ctx context.Context, cfg ProviderConfig) error

	// Delete removes the configuration by ID. No-op if absent.
	Delete(ctx context.Context, id string) error

	// Close releases store resources.
	Close() error
}
