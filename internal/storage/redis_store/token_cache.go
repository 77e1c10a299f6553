package redis_store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// refreshKeyPrefix namespaces refresh-token bindings; denylist entries are
// keyed by the literal access-token string.
const refreshKeyPrefix = "RT:"

const denylistMarker = "revoked"

// TokenCache is the revocation store: a denylist of access tokens revoked
// before their natural expiry, plus the single live refresh token per subject.
// Both kinds of entry are reclaimed by TTL; no sweeper runs.
type TokenCache struct {
	client *redis.Client
}

func New(ctx context.Context, addr, password string, db int) (*TokenCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return &TokenCache{client: client}, nil
}

// NewWithClient wraps an existing client; used by tests.
func NewWithClient(client *redis.Client) *TokenCache {
	return &TokenCache{client: client}
}

func (c *TokenCache) Close() error {
	return c.client.Close()
}

// Denylist marks an access token revoked for the remainder of its validity.
// The entry must never expire before the token it denies.
func (c *TokenCache) Denylist(ctx context.Context, accessToken string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	return c.client.Set(ctx, accessToken, denylistMarker, ttl).Err()
}

func (c *TokenCache) IsDenylisted(ctx context.Context, accessToken string) (bool, error) {
	n, err := c.client.Exists(ctx, accessToken).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// StoreRefresh overwrites the subject's refresh binding. Overwriting is what
// invalidates every previously issued refresh token for the subject.
func (c *TokenCache) StoreRefresh(ctx context.Context, subject, refreshToken string, ttl time.Duration) error {
	return c.client.Set(ctx, refreshKeyPrefix+subject, refreshToken, ttl).Err()
}

// Refresh returns the bound refresh token for a subject, or "" when no binding
// exists.
func (c *TokenCache) Refresh(ctx context.Context, subject string) (string, error) {
	val, err := c.client.Get(ctx, refreshKeyPrefix+subject).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", nil
		}
		return "", err
	}
	return val, nil
}

func (c *TokenCache) DeleteRefresh(ctx context.Context, subject string) error {
	return c.client.Del(ctx, refreshKeyPrefix+subject).Err()
}
