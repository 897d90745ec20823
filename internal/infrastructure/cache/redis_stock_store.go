package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gameshop/backend/internal/domain/stock"
	"github.com/redis/go-redis/v9"
)

// RedisStockStore implements stock.Repository using a Redis hash, one field per counter.
// This is suitable for deployments where several server nodes share trade limits.
type RedisStockStore struct {
	client *redis.Client
	key    string
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Addr      string
	Password  string
	DB        int
	KeyPrefix string
}

// NewRedisStockStore creates a new Redis-based stock store
func NewRedisStockStore(cfg RedisConfig) (*RedisStockStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:        cfg.Addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: 2 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewRedisStockStoreWithClient(client, cfg.KeyPrefix), nil
}

// NewRedisStockStoreWithClient creates a store with an existing Redis client
func NewRedisStockStoreWithClient(client *redis.Client, keyPrefix string) *RedisStockStore {
	return &RedisStockStore{
		client: client,
		key:    keyPrefix + "stock",
	}
}

func field(e stock.Entry) string {
	return e.ProductKey + "|" + e.TradeType.String() + "|" + e.PlayerID.String()
}

// Load reads every stored counter
func (s *RedisStockStore) Load(ctx context.Context) ([]stock.Entry, error) {
	values, err := s.client.HGetAll(ctx, s.key).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load stock counters: %w", err)
	}

	entries := make([]stock.Entry, 0, len(values))
	for f, raw := range values {
		var e stock.Entry
		if err := json.Unmarshal([]byte(raw), &e); err != nil {
			return nil, fmt.Errorf("failed to decode stock counter %s: %w", f, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// Save replaces the stored counters atomically
func (s *RedisStockStore) Save(ctx context.Context, entries []stock.Entry) error {
	values := make(map[string]any, len(entries))
	for _, e := range entries {
		raw, err := json.Marshal(e)
		if err != nil {
			return fmt.Errorf("failed to encode stock counter: %w", err)
		}
		values[field(e)] = raw
	}

	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, s.key)
		if len(values) > 0 {
			pipe.HSet(ctx, s.key, values)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to save stock counters: %w", err)
	}
	return nil
}

// Close closes the Redis client
func (s *RedisStockStore) Close() error {
	return s.client.Close()
}

// GetClient returns the underlying Redis client (for testing/monitoring)
func (s *RedisStockStore) GetClient() *redis.Client {
	return s.client
}

var _ stock.Repository = (*RedisStockStore)(nil)
