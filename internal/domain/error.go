package domain

import (
	"fmt"

	"wallet-aggregator/internal/pkg/apperrors"
)

var (
	// ErrChainNotFound means the requested chain key is not registered.
	ErrChainNotFound = fmt.Errorf("%w: chain not found", apperrors.ErrNotFound)

	// ErrNoUsableRPC means none of a chain's candidate RPC URLs can be used.
	ErrNoUsableRPC = fmt.Errorf("%w: no usable rpc url", apperrors.ErrConfig)

	// ErrInvalidAddress means a wallet address is not a 20-byte hex address.
	ErrInvalidAddress = fmt.Errorf("%w: invalid address", apperrors.ErrInvalidInput)

	// ErrInvalidPagination means page or offset is out of range.
	ErrInvalidPagination = fmt.Errorf("%w: page and offset must be at least 1", apperrors.ErrInvalidInput)
)
