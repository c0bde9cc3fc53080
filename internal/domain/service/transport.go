package service

import (
	"context"

	"wallet-aggregator/internal/domain/entity"
)

// RPCTransport issues JSON-RPC requests against one chain's node.
// Implementations must be safe for concurrent use.
type RPCTransport interface {
	// Call invokes method with params and decodes the result into result.
	Call(ctx context.Context, result any, method string, params ...any) error
}

// ExplorerTransport queries one chain's block-explorer backend.
// Implementations must be safe for concurrent use.
type ExplorerTransport interface {
	// TxList returns normal transactions for an address, ordered by params.Sort.
	TxList(ctx context.Context, params entity.TxListParams) ([]entity.Transaction, error)
}
