// Package credentials is the key-value store for OAuth nonces and access
// tokens, keyed by (platform, store name, kind).
package credentials

import (
	"context"
	"time"
)

type Platform string

const (
	PlatformEbay    Platform = "ebay"
	PlatformShopify Platform = "shopify"
)

type Kind string

const (
	KindNonce Kind = "nonce"
	KindToken Kind = "token"
)

// Store holds nonces and tokens. Access is always by exact key, so
// concurrent callers for distinct (platform, store) pairs never contend.
// Concurrent writers for the same key race last-writer-wins; that is
// accepted for a token being deleted and re-issued at the same time.
type Store interface {
	// Put writes value. A zero ttl means no expiry.
	Put(ctx context.Context, platform Platform, storeName string, kind Kind, value string, ttl time.Duration) error

	// Get returns the stored value. A missing or expired key returns
	// ok=false with a nil error: absence means "authentication required",
	// not a storage failure.
	Get(ctx context.Context, platform Platform, storeName string, kind Kind) (value string, ok bool, err error)

	Delete(ctx context.Context, platform Platform, storeName string, kind Kind) error
}
