package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	refreshTokenPrefix = "refresh:token:"
	blacklistPrefix    = "blacklist:token:"
)

// TokenStore keeps the current refresh token per user and the blacklist of
// logged-out tokens.
type TokenStore struct {
	client *RedisClient
}

// NewTokenStore creates a TokenStore backed by r.
func NewTokenStore(r *RedisClient) *TokenStore {
	return &TokenStore{client: r}
}

// SaveRefresh replaces the stored refresh token of userID.
func (s *TokenStore) SaveRefresh(ctx context.Context, userID uuid.UUID, token string, ttl time.Duration) error {
	if err := s.client.Client().Set(ctx, refreshTokenPrefix+userID.String(), token, ttl).Err(); err != nil {
		return fmt.Errorf("save refresh token: %w", err)
	}
	return nil
}

// RefreshToken returns the stored refresh token of userID, or "" if none.
func (s *TokenStore) RefreshToken(ctx context.Context, userID uuid.UUID) (string, error) {
	tok, err := s.client.Client().Get(ctx, refreshTokenPrefix+userID.String()).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get refresh token: %w", err)
	}
	return tok, nil
}

// DeleteRefresh removes the stored refresh token of userID.
func (s *TokenStore) DeleteRefresh(ctx context.Context, userID uuid.UUID) error {
	if err := s.client.Client().Del(ctx, refreshTokenPrefix+userID.String()).Err(); err != nil {
		return fmt.Errorf("delete refresh token: %w", err)
	}
	return nil
}

// Blacklist rejects token until it would have expired anyway. A token with
// no remaining lifetime is skipped.
func (s *TokenStore) Blacklist(ctx context.Context, token string, remaining time.Duration) error {
	if token == "" || remaining <= 0 {
		return nil
	}
	if err := s.client.Client().Set(ctx, blacklistPrefix+token, "1", remaining).Err(); err != nil {
		return fmt.Errorf("blacklist token: %w", err)
	}
	return nil
}

// IsBlacklisted reports whether token was revoked.
func (s *TokenStore) IsBlacklisted(ctx context.Context, token string) (bool, error) {
	n, err := s.client.Client().Exists(ctx, blacklistPrefix+token).Result()
	if err != nil {
		return false, fmt.Errorf("check blacklist: %w", err)
	}
	return n > 0, nil
}
