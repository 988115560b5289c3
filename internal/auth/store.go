package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrRefreshRevoked indicates a refresh token whose server-side record is gone.
var ErrRefreshRevoked = errors.New("auth: refresh token revoked")

// RefreshStore keeps the server-side half of issued refresh tokens in Redis so
// logout and rotation can revoke them before their JWT expiry.
type RefreshStore struct {
	client *redis.Client
}

// NewRefreshStore constructs a RefreshStore.
func NewRefreshStore(client *redis.Client) *RefreshStore {
	return &RefreshStore{client: client}
}

func (s *RefreshStore) key(id string) string {
	return "auth:refresh:" + id
}

// Save records a refresh token ID for the user with the given TTL.
func (s *RefreshStore) Save(ctx context.Context, id string, userID int64, ttl time.Duration) error {
	if err := s.client.Set(ctx, s.key(id), strconv.FormatInt(userID, 10), ttl).Err(); err != nil {
		return fmt.Errorf("auth: save refresh token: %w", err)
	}
	return nil
}

// Consume atomically removes a refresh token record, returning the user it was
// issued to. A missing record means the token was revoked or already rotated.
func (s *RefreshStore) Consume(ctx context.Context, id string) (int64, error) {
	raw, err := s.client.GetDel(ctx, s.key(id)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, ErrRefreshRevoked
		}
		return 0, fmt.Errorf("auth: consume refresh token: %w", err)
	}
	userID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, ErrRefreshRevoked
	}
	return userID, nil
}

// Revoke removes a refresh token record without issuing a replacement.
func (s *RefreshStore) Revoke(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, s.key(id)).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("auth: revoke refresh token: %w", err)
	}
	return nil
}
