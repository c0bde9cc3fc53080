package port

import (
	"context"

	"wallet-aggregator/internal/domain/entity"
)

// EndpointService reports the health of a chain's candidate RPC endpoints.
type EndpointService interface {
	// CheckedRPCs probes every candidate URL of the chain, in candidate order.
	CheckedRPCs(ctx context.Context, chainKey string) ([]entity.RPCDetail, error)
}
