package cart

import (
	"context"
	"fmt"
	"time"

	"github.com/gebeyalink/storefront/pkg/logger"
	"github.com/gebeyalink/storefront/pkg/redis"
)

// RedisStore keeps one serialized cart per session under a namespaced key,
// expiring after the configured TTL of inactivity.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
	logger *logger.Logger
}

func NewRedisStore(client *redis.Client, ttl time.Duration, logg *logger.Logger) (*RedisStore, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &RedisStore{client: client, ttl: ttl, logger: logg}, nil
}

func (s *RedisStore) Load(ctx context.Context, sessionID string) (*Cart, error) {
	payload, err := s.client.Get(ctx, s.client.CartKey(sessionID))
	if err != nil {
		if redis.IsMissing(err) {
			return &Cart{}, nil
		}
		return nil, fmt.Errorf("loading cart snapshot: %w", err)
	}

	cart, ok := decodeCart([]byte(payload))
	if !ok {
		s.logger.Warn(s.logger.WithSessionID(ctx, sessionID), "discarding unreadable cart snapshot")
		return &Cart{}, nil
	}
	return cart, nil
}

func (s *RedisStore) Save(ctx context.Context, sessionID string, cart *Cart) error {
	payload, err := encodeCart(cart)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, s.client.CartKey(sessionID), payload, s.ttl); err != nil {
		return fmt.Errorf("saving cart snapshot: %w", err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, s.client.CartKey(sessionID)); err != nil {
		return fmt.Errorf("deleting cart snapshot: %w", err)
	}
	return nil
}
