package repository

import (
	"context"
	"time"

	"wallet-aggregator/internal/domain/entity"
)

// CacheRepository defines the interface for caching RPC endpoint check results.
type CacheRepository interface {
	// GetChainCheckedRPCs retrieves the cached checked RPC details for a chain key.
	GetChainCheckedRPCs(ctx context.Context, chainKey string) ([]entity.RPCDetail, bool, error)

	// SetChainCheckedRPCs stores the checked RPC details for a chain key with a specified TTL.
	SetChainCheckedRPCs(ctx context.Context, chainKey string, rpcs []entity.RPCDetail, ttl time.Duration) error
}
