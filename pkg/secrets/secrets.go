package secrets

import (
	"context"
	"errors"
	"sync"

	"influencer-platform/backend/pkg/logger"
)

// Manager provides access to secrets from various sources
type Manager interface {
	// GetSecret retrieves a secret by key
	GetSecret(ctx context.Context, key string) (string, error)

	// GetSecretWithDefault retrieves a secret with a default value if not found
	GetSecretWithDefault(ctx context.Context, key, defaultValue string) string
}

// Common errors
var (
	ErrManagerNotInitialized = errors.New("secrets manager not initialized")
	ErrSecretNotFound        = errors.New("secret not found")
	ErrNoVaultToken          = errors.New("no vault token provided")
	ErrNoVaultAddress        = errors.New("no vault address provided")
)

var (
	defaultManager Manager
	managerMu      sync.RWMutex
)

// Init builds the default manager from cfg and installs it
func Init(cfg VaultConfig, log *logger.Logger) (Manager, error) {
	manager, err := NewVaultManager(cfg, log)
	if err != nil {
		return nil, err
	}
	SetManager(manager)
	return manager, nil
}

// GetSecret retrieves a secret from the default manager
func GetSecret(ctx context.Context, key string) (string, error) {
	m := current()
	if m == nil {
		return "", ErrManagerNotInitialized
	}
	return m.GetSecret(ctx, key)
}

// GetSecretWithDefault retrieves a secret with a default value if not found
func GetSecretWithDefault(ctx context.Context, key, defaultValue string) string {
	m := current()
	if m == nil {
		return defaultValue
	}
	return m.GetSecretWithDefault(ctx, key, defaultValue)
}

// SetManager replaces the default secrets manager
func SetManager(manager Manager) {
	managerMu.Lock()
	defer managerMu.Unlock()
	defaultManager = manager
}

func current() Manager {
	managerMu.RLock()
	defer managerMu.RUnlock()
	return defaultManager
}
