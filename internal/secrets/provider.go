package secrets

import (
	"context"
	"os"
	"time"

	"go.uber.org/zap"
)

// ProviderConfig configures how secrets are resolved
type ProviderConfig struct {
	VaultURL    string
	Environment string
	CacheTTL    time.Duration
}

// Provider resolves secrets from Azure Key Vault with environment
// variables as fallback. When no vault is configured every lookup falls
// through to the environment.
type Provider struct {
	vault  *VaultClient
	logger *zap.Logger
}

// NewProvider builds a secrets provider. A missing vault URL is not an
// error; the provider then resolves from the environment only.
func NewProvider(cfg ProviderConfig, logger *zap.Logger) (*Provider, error) {
	p := &Provider{logger: logger}
	if cfg.VaultURL == "" {
		logger.Info("secrets provider running without key vault",
			zap.String("environment", cfg.Environment))
		return p, nil
	}
	vault, err := NewVaultClient(cfg.VaultURL, cfg.CacheTTL, logger)
	if err != nil {
		return nil, err
	}
	p.vault = vault
	return p, nil
}

// IsVaultEnabled reports whether a vault client is wired
func (p *Provider) IsVaultEnabled() bool {
	return p.vault != nil
}

// GetSecret resolves a secret from the vault when enabled, otherwise
// from the environment variable.
func (p *Provider) GetSecret(ctx context.Context, secretName, envVar string) (string, error) {
	if p.vault != nil {
		value, err := p.vault.GetSecret(ctx, secretName)
		if err == nil && value != "" {
			return value, nil
		}
		if err != nil {
			p.logger.Warn("vault lookup failed, falling back to environment",
				zap.String("secret", secretName),
				zap.Error(err),
			)
		}
	}
	return os.Getenv(envVar), nil
}

// GetSecretOrEnv resolves a secret and falls back to the given value
// when neither vault nor environment provide one.
func (p *Provider) GetSecretOrEnv(ctx context.Context, secretName, envVar, fallback string) string {
	value, err := p.GetSecret(ctx, secretName, envVar)
	if err != nil || value == "" {
		return fallback
	}
	return value
}
