package repository

import (
	"context"
	"errors"
	"time"

	"github.com/deppfellow/booking-now/internal/server"
	"github.com/redis/go-redis/v9"
)

const revokedTokenPrefix = "auth:revoked:"

// SessionRepository keeps the denylist of signed-out token ids in Redis.
type SessionRepository struct {
	server *server.Server
}

func NewSessionRepository(s *server.Server) *SessionRepository {
	return &SessionRepository{server: s}
}

// Revoke denylists jti until ttl elapses, which should match the token's
// remaining lifetime.
func (r *SessionRepository) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	return r.server.Redis.Set(ctx, revokedTokenPrefix+jti, 1, ttl).Err()
}

func (r *SessionRepository) IsRevoked(ctx context.Context, jti string) (bool, error) {
	err := r.server.Redis.Get(ctx, revokedTokenPrefix+jti).Err()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
