package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/KNICEX/market-pulse/internal/service/market"
	"github.com/redis/go-redis/v9"
)

var _ Store = (*RedisStore)(nil)

// RedisStore keeps quotes as JSON strings so several instances can share one cache.
type RedisStore struct {
	client redis.UniversalClient
}

func NewRedisStore(client redis.UniversalClient) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) GetMany(ctx context.Context, keys []string) (map[string]market.Quote, error) {
	if len(keys) == 0 {
		return map[string]market.Quote{}, nil
	}

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("mget quotes: %w", err)
	}

	res := make(map[string]market.Quote, len(keys))
	for i, val := range values {
		payload, ok := val.(string)
		if !ok || payload == "" {
			continue
		}
		var quote market.Quote
		if err := json.Unmarshal([]byte(payload), &quote); err != nil {
			slog.Warn("drop malformed cached quote", "key", keys[i], "error", err)
			continue
		}
		res[keys[i]] = quote
	}
	return res, nil
}

func (s *RedisStore) SetMany(ctx context.Context, quotes map[string]market.Quote, ttl time.Duration) error {
	if len(quotes) == 0 {
		return nil
	}

	pipe := s.client.Pipeline()
	for key, quote := range quotes {
		payload, err := json.Marshal(quote)
		if err != nil {
			return fmt.Errorf("encode quote %s: %w", key, err)
		}
		pipe.Set(ctx, key, payload, ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("set quotes: %w", err)
	}
	return nil
}
