package integrations

import (
	"context"
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	logx "github.com/shopmate-ai/server/pkg/logger"
)

// StoreCredentials carries what a per-store commerce client needs.
type StoreCredentials struct {
	ShopDomain  string
	AccessToken string
}

// CredentialSource resolves commerce credentials for a store. In production
// this is backed by the store settings table; tests and the demo entrypoint
// use a static source.
type CredentialSource interface {
	CommerceCredentials(ctx context.Context, storeID string) (*StoreCredentials, error)
}

// StaticCredentialSource serves one fixed credential set for every store id.
type StaticCredentialSource struct {
	Credentials StoreCredentials
}

func (s *StaticCredentialSource) CommerceCredentials(ctx context.Context, storeID string) (*StoreCredentials, error) {
	if s.Credentials.ShopDomain == "" {
		return nil, fmt.Errorf("no commerce credentials configured for store %s", storeID)
	}
	c := s.Credentials
	return &c, nil
}

// ClientFactory hands out per-store commerce clients, caching them by store
// id. The cache is safe for concurrent use; a lookup race at worst constructs
// a duplicate client, which is benign.
type ClientFactory struct {
	creds   CredentialSource
	timeout time.Duration
	cache   *lru.Cache[string, *ShopifyClient]
}

// NewClientFactory builds a factory holding at most size cached clients.
func NewClientFactory(creds CredentialSource, timeout time.Duration, size int) (*ClientFactory, error) {
	if size <= 0 {
		size = 128
	}
	cache, err := lru.New[string, *ShopifyClient](size)
	if err != nil {
		return nil, fmt.Errorf("client cache: %w", err)
	}
	return &ClientFactory{creds: creds, timeout: timeout, cache: cache}, nil
}

// Commerce returns the commerce client for a store, constructing and caching
// it on first use.
func (f *ClientFactory) Commerce(ctx context.Context, storeID string) (CommerceClient, error) {
	if client, ok := f.cache.Get(storeID); ok {
		return client, nil
	}

	creds, err := f.creds.CommerceCredentials(ctx, storeID)
	if err != nil {
		return nil, fmt.Errorf("resolve commerce credentials: %w", err)
	}

	client := NewShopifyClient(creds.ShopDomain, creds.AccessToken, f.timeout)
	f.cache.Add(storeID, client)

	logx.Debug().Str("store_id", storeID).Str("shop", creds.ShopDomain).Msg("commerce client constructed")
	return client, nil
}
