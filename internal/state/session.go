package state

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"notesmarket/dashboard/internal/config"
	"notesmarket/dashboard/internal/domain"

	"github.com/redis/go-redis/v9"
)

// SessionStore keeps the category tree position between CLI invocations
type SessionStore interface {
	Load(ctx context.Context, session string) (*domain.TreeSnapshot, error)
	Save(ctx context.Context, session string, snapshot domain.TreeSnapshot) error
	Clear(ctx context.Context, session string) error
}

type redisSessionStore struct {
	redisClient *redis.Client
	keyPrefix   string
	ttl         time.Duration
}

func NewRedisSessionStore(redisClient *redis.Client, cfg config.RedisConfig) SessionStore {
	return &redisSessionStore{
		redisClient: redisClient,
		keyPrefix:   cfg.SessionPrefix,
		ttl:         time.Duration(cfg.SessionTTL) * time.Second,
	}
}

// Load returns nil without an error when nothing is stored for session
func (s *redisSessionStore) Load(ctx context.Context, session string) (*domain.TreeSnapshot, error) {
	val, err := s.redisClient.Get(ctx, s.keyPrefix+session).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // Fresh session
		}
		return nil, fmt.Errorf("failed to load session %s: %w", session, err)
	}

	var snapshot domain.TreeSnapshot
	if err := json.Unmarshal(val, &snapshot); err != nil {
		return nil, fmt.Errorf("failed to decode session %s: %w", session, err)
	}

	return &snapshot, nil
}

func (s *redisSessionStore) Save(ctx context.Context, session string, snapshot domain.TreeSnapshot) error {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("failed to encode session %s: %w", session, err)
	}

	if err := s.redisClient.Set(ctx, s.keyPrefix+session, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save session %s: %w", session, err)
	}
	return nil
}

func (s *redisSessionStore) Clear(ctx context.Context, session string) error {
	if err := s.redisClient.Del(ctx, s.keyPrefix+session).Err(); err != nil {
		return fmt.Errorf("failed to clear session %s: %w", session, err)
	}
	return nil
}
