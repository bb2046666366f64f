package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const noncePrefix = "auth:nonce:"

// RedisNonceStore keeps challenges in Redis so they expire server-side and
// survive process restarts.
type RedisNonceStore struct {
	client *redis.Client
}

var _ NonceStore = (*RedisNonceStore)(nil)

// NewRedisNonceStore constructs a Redis-backed nonce store.
func NewRedisNonceStore(client *redis.Client) *RedisNonceStore {
	return &RedisNonceStore{client: client}
}

func (s *RedisNonceStore) Put(ctx context.Context, wallet, nonce string, ttl time.Duration) error {
	if err := s.client.Set(ctx, noncePrefix+wallet, nonce, ttl).Err(); err != nil {
		return fmt.Errorf("store challenge nonce: %w", err)
	}
	return nil
}

// Consume removes and returns the live nonce for a wallet. GETDEL keeps the
// read-and-invalidate atomic, so concurrent logins can redeem it only once.
func (s *RedisNonceStore) Consume(ctx context.Context, wallet string) (string, error) {
	nonce, err := s.client.GetDel(ctx, noncePrefix+wallet).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrNoChallenge
		}
		return "", fmt.Errorf("consume challenge nonce: %w", err)
	}
	return nonce, nil
}
