package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

const blacklistPrefix = "blacklist:access:"

// KeyValueStore is the subset of *redis.Client the blacklist needs.
type KeyValueStore interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Exists(ctx context.Context, keys ...string) *redis.IntCmd
}

type TokenBlacklist struct {
	store KeyValueStore
	now   func() time.Time
}

func NewTokenBlacklist(store KeyValueStore) *TokenBlacklist {
	return &TokenBlacklist{store: store, now: time.Now}
}

// Revoke stores the token ID until the token would have expired anyway.
func (tb *TokenBlacklist) Revoke(ctx context.Context, claims *Claims) error {
	if claims == nil || claims.ID == "" {
		return errors.New("token has no id")
	}

	ttl := 24 * time.Hour
	if claims.ExpiresAt != nil {
		ttl = claims.ExpiresAt.Time.Sub(tb.now())
	}
	if ttl <= 0 {
		return nil
	}

	if err := tb.store.Set(ctx, blacklistPrefix+claims.ID, "true", ttl).Err(); err != nil {
		return fmt.Errorf("failed to blacklist token in Redis: %w", err)
	}
	return nil
}

// IsRevoked reports false when Redis cannot be reached.
func (tb *TokenBlacklist) IsRevoked(ctx context.Context, tokenID string) bool {
	if tokenID == "" {
		return false
	}
	n, err := tb.store.Exists(ctx, blacklistPrefix+tokenID).Result()
	if err != nil {
		log.Printf("Error checking token blacklist: %v", err)
		return false
	}
	return n > 0
}
