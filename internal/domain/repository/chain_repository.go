package repository

import (
	"context"

	"wallet-aggregator/internal/domain/entity"
)

// ChainRepository defines the interface for accessing chain descriptors.
type ChainRepository interface {
	// GetAllChains retrieves the list of all configured chains from the underlying data source.
	GetAllChains(ctx context.Context) ([]entity.Chain, error)
}
