package memory

import (
	"context"
	"fmt"
	"time"

	"wallet-aggregator/internal/config"
	"wallet-aggregator/internal/domain/entity"
	domainRepo "wallet-aggregator/internal/domain/repository"

	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

// Compile-time check
var _ domainRepo.CacheRepository = (*CacheRepository)(nil)

const chainCheckedRPCsKeyPrefix = "chain_checked_rpcs_"

// CacheRepository implements domainRepo.CacheRepository using the go-cache in-memory library.
type CacheRepository struct {
	cache      *cache.Cache
	logger     *zap.Logger
	defaultTTL time.Duration
}

// NewCacheRepository creates a new in-memory cache repository instance.
func NewCacheRepository(cfg config.Config, logger *zap.Logger) *CacheRepository {
	defaultExpiration := cfg.Cache.GetDefaultExpiration()
	cleanupInterval := cfg.Cache.GetCleanupInterval()

	c := cache.New(defaultExpiration, cleanupInterval)
	logger.Info(
		"Initialized go-cache for memory storage",
		zap.Duration("defaultExpiration", defaultExpiration),
		zap.Duration("cleanupInterval", cleanupInterval),
	)

	defaultTTL := cfg.Checker.GetCacheTTL()
	if defaultTTL <= 0 {
		defaultTTL = defaultExpiration
	}

	return &CacheRepository{
		cache:      c,
		logger:     logger.Named("MemoryCacheStorage"),
		defaultTTL: defaultTTL,
	}
}

// GetChainCheckedRPCs retrieves cached checked RPCs for a chain, returning found status.
func (r *CacheRepository) GetChainCheckedRPCs(_ context.Context, chainKey string) ([]entity.RPCDetail, bool, error) {
	key := chainCheckedRPCsKeyPrefix + chainKey
	x, found := r.cache.Get(key)
	if !found {
		r.logger.Debug("Memory cache miss", zap.String("key", key))
		return nil, false, nil
	}

	rpcs, ok := x.([]entity.RPCDetail)
	if !ok {
		r.cache.Delete(key)
		return nil, false, fmt.Errorf("memory cache data type mismatch for key %s: %T", key, x)
	}
	r.logger.Debug("Memory cache hit", zap.String("key", key))
	return rpcs, true, nil
}

// SetChainCheckedRPCs caches the checked RPCs for a chain. A non-positive ttl uses the configured default.
func (r *CacheRepository) SetChainCheckedRPCs(
	_ context.Context,
	chainKey string,
	rpcs []entity.RPCDetail,
	ttl time.Duration,
) error {
	key := chainCheckedRPCsKeyPrefix + chainKey
	if ttl <= 0 {
		ttl = r.defaultTTL
	}
	r.cache.Set(key, rpcs, ttl)
	r.logger.Debug("Memory cache set", zap.String("key", key), zap.Duration("ttl", ttl))
	return nil
}
