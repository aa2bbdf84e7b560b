package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/easyprospect/api/pkg/cache"
)

// TokenBlacklist records logged-out tokens until they would have expired
type TokenBlacklist struct {
	cache *cache.Client
}

// NewTokenBlacklist creates a blacklist backed by Redis
func NewTokenBlacklist(cacheClient *cache.Client) *TokenBlacklist {
	return &TokenBlacklist{cache: cacheClient}
}

// Add revokes token for ttl. Tokens already expired are not stored.
func (b *TokenBlacklist) Add(ctx context.Context, token string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	return b.cache.Set(ctx, key(token), "revoked", ttl)
}

// IsBlacklisted reports whether token was revoked
func (b *TokenBlacklist) IsBlacklisted(ctx context.Context, token string) (bool, error) {
	return b.cache.Exists(ctx, key(token))
}

// key stores a hash so raw tokens never reach Redis
func key(token string) string {
	hash := sha256.Sum256([]byte(token))
	return cache.PrefixBlacklist + hex.EncodeToString(hash[:])
}
