package cache

import (
	"fmt"

	"github.com/gameshop/backend/internal/domain/stock"
	"github.com/gameshop/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// StockStore is a stock.Repository holding a connection
type StockStore interface {
	stock.Repository
	Close() error
}

// StockStoreFactory creates stock stores based on configuration
type StockStoreFactory struct {
	redisConfig           config.RedisConfig
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// StockStoreFactoryOption is a functional option for configuring the factory
type StockStoreFactoryOption func(*StockStoreFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) StockStoreFactoryOption {
	return func(f *StockStoreFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether to fall back to in-memory store when Redis is unavailable
// Default is true (allow fallback)
func WithInMemoryFallback(allow bool) StockStoreFactoryOption {
	return func(f *StockStoreFactory) {
		f.allowInMemoryFallback = allow
	}
}

// NewStockStoreFactory creates a new factory
func NewStockStoreFactory(cfg config.RedisConfig, opts ...StockStoreFactoryOption) *StockStoreFactory {
	f := &StockStoreFactory{
		redisConfig:           cfg,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// CreateRedisStore creates a Redis-based stock store
func (f *StockStoreFactory) CreateRedisStore() (StockStore, error) {
	store, err := NewRedisStockStore(RedisConfig{
		Addr:      f.redisConfig.Addr(),
		Password:  f.redisConfig.Password,
		DB:        f.redisConfig.DB,
		KeyPrefix: f.redisConfig.KeyPrefix,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Redis stock store: %w", err)
	}
	return store, nil
}

// CreateInMemoryStore creates an in-memory stock store
// WARNING: in-memory stores do not share trade limits between server nodes
func (f *StockStoreFactory) CreateInMemoryStore() StockStore {
	return NewInMemoryStockStore()
}

// CreateStore creates a Redis store when Redis is enabled and reachable, and
// falls back to in-memory otherwise if AllowInMemoryFallback is true
func (f *StockStoreFactory) CreateStore() (StockStore, error) {
	if !f.redisConfig.Enabled {
		f.logger.Info("Redis disabled, using in-memory stock store")
		return f.CreateInMemoryStore(), nil
	}

	store, err := f.CreateRedisStore()
	if err == nil {
		f.logger.Info("using Redis stock store", zap.String("addr", f.redisConfig.Addr()))
		return store, nil
	}

	if !f.allowInMemoryFallback {
		return nil, fmt.Errorf("Redis required for stock limits but unavailable: %w", err)
	}

	f.logger.Warn("Redis unavailable, falling back to in-memory stock store. "+
		"Trade limits will not be shared between server nodes.",
		zap.Error(err),
	)
	return f.CreateInMemoryStore(), nil
}
