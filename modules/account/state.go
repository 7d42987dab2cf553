package account

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrInvalidState rejects a callback whose state is unknown, already used,
// expired, or bound to a different provider.
var ErrInvalidState = errors.New("invalid or expired state")

// StateStore holds pending OAuth2 state tokens between the authorize and
// callback steps. Consume is one-shot: a state that was read once is gone.
type StateStore interface {
	Save(ctx context.Context, state, provider string) error
	Consume(ctx context.Context, state string) (string, error)
}

const statePrefix = "oauth_state:"

type redisStateStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStateStore creates a redis-backed state store. States expire after
// ttl so an abandoned authorize never leaves a usable token behind.
func NewRedisStateStore(client *redis.Client, ttl time.Duration) StateStore {
	return &redisStateStore{client: client, ttl: ttl}
}

func (s *redisStateStore) Save(ctx context.Context, state, provider string) error {
	if err := s.client.Set(ctx, statePrefix+state, provider, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save oauth state: %w", err)
	}
	return nil
}

// Consume atomically reads and deletes the state, so two callbacks racing on
// the same state cannot both succeed.
func (s *redisStateStore) Consume(ctx context.Context, state string) (string, error) {
	provider, err := s.client.GetDel(ctx, statePrefix+state).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrInvalidState
		}
		return "", fmt.Errorf("failed to consume oauth state: %w", err)
	}
	return provider, nil
}
