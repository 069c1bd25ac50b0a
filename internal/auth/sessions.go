package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrTokenNotFound is returned when a reset token is absent or already used.
var ErrTokenNotFound = errors.New("token not found")

// SessionStore tracks revoked session IDs so sign-out takes effect before the
// token's natural expiry.
type SessionStore interface {
	Revoke(ctx context.Context, sessionID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, sessionID string) (bool, error)
}

// ResetTokenStore holds single-use password reset tokens.
type ResetTokenStore interface {
	Save(ctx context.Context, token string, profileID uuid.UUID, ttl time.Duration) error
	Consume(ctx context.Context, token string) (uuid.UUID, error)
}

const (
	revokedKeyPrefix = "session:revoked:"
	resetKeyPrefix   = "password:reset:"
)

// RedisSessions implements SessionStore and ResetTokenStore on Redis.
type RedisSessions struct {
	client *redis.Client
}

// NewRedisSessions creates a Redis-backed session and reset-token store.
func NewRedisSessions(client *redis.Client) *RedisSessions {
	return &RedisSessions{client: client}
}

// Revoke marks a session ID revoked until the token would have expired anyway.
func (s *RedisSessions) Revoke(ctx context.Context, sessionID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if err := s.client.Set(ctx, revokedKeyPrefix+sessionID, "1", ttl).Err(); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	return nil
}

// IsRevoked reports whether a session ID has been signed out.
func (s *RedisSessions) IsRevoked(ctx context.Context, sessionID string) (bool, error) {
	n, err := s.client.Exists(ctx, revokedKeyPrefix+sessionID).Result()
	if err != nil {
		return false, fmt.Errorf("check session: %w", err)
	}
	return n > 0, nil
}

// Save stores a reset token pointing at a profile, with expiry.
func (s *RedisSessions) Save(ctx context.Context, token string, profileID uuid.UUID, ttl time.Duration) error {
	if err := s.client.Set(ctx, resetKeyPrefix+token, profileID.String(), ttl).Err(); err != nil {
		return fmt.Errorf("save reset token: %w", err)
	}
	return nil
}

// Consume atomically fetches and deletes a reset token, returning the profile
// it was issued for. A second consume of the same token fails.
func (s *RedisSessions) Consume(ctx context.Context, token string) (uuid.UUID, error) {
	val, err := s.client.GetDel(ctx, resetKeyPrefix+token).Result()
	if err == redis.Nil {
		return uuid.Nil, ErrTokenNotFound
	}
	if err != nil {
		return uuid.Nil, fmt.Errorf("consume reset token: %w", err)
	}
	id, err := uuid.Parse(val)
	if err != nil {
		return uuid.Nil, fmt.Errorf("parse reset token value: %w", err)
	}
	return id, nil
}
