package secrets

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/security/keyvault/azsecrets"
	"go.uber.org/zap"
)

const defaultCacheTTL = 5 * time.Minute

type cachedSecret struct {
	value     string
	fetchedAt time.Time
}

// VaultClient reads secrets from Azure Key Vault with a small in-memory
// cache so repeated lookups during startup do not hammer the vault.
type VaultClient struct {
	client   *azsecrets.Client
	logger   *zap.Logger
	cacheTTL time.Duration

	mu    sync.RWMutex
	cache map[string]cachedSecret
}

// NewVaultClient creates a Key Vault client using the default Azure
// credential chain (managed identity, workload identity, az cli).
func NewVaultClient(vaultURL string, cacheTTL time.Duration, logger *zap.Logger) (*VaultClient, error) {
	if vaultURL == "" {
		return nil, fmt.Errorf("vault URL is required")
	}
	cred, err := azidentity.NewDefaultAzureCredential(nil)
	if err != nil {
		return nil, fmt.Errorf("creating azure credential: %w", err)
	}
	client, err := azsecrets.NewClient(vaultURL, cred, nil)
	if err != nil {
		return nil, fmt.Errorf("creating key vault client: %w", err)
	}
	if cacheTTL <= 0 {
		cacheTTL = defaultCacheTTL
	}
	return &VaultClient{
		client:   client,
		logger:   logger,
		cacheTTL: cacheTTL,
		cache:    make(map[string]cachedSecret),
	}, nil
}

// GetSecret fetches the latest version of a secret, serving from cache
// when the cached copy is still fresh.
func (c *VaultClient) GetSecret(ctx context.Context, name string) (string, error) {
	c.mu.RLock()
	if cached, ok := c.cache[name]; ok && time.Since(cached.fetchedAt) < c.cacheTTL {
		c.mu.RUnlock()
		return cached.value, nil
	}
	c.mu.RUnlock()

	resp, err := c.client.GetSecret(ctx, name, "", nil)
	if err != nil {
		return "", fmt.Errorf("getting secret %q: %w", name, err)
	}
	if resp.Value == nil {
		return "", fmt.Errorf("secret %q has no value", name)
	}

	c.mu.Lock()
	c.cache[name] = cachedSecret{value: *resp.Value, fetchedAt: time.Now()}
	c.mu.Unlock()

	c.logger.Debug("secret fetched from vault", zap.String("secret", name))
	return *resp.Value, nil
}

// ClearCache drops all cached secrets
func (c *VaultClient) ClearCache() {
	c.mu.Lock()
	c.cache = make(map[string]cachedSecret)
	c.mu.Unlock()
}
