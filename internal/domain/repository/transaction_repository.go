package repository

import (
	"context"

	"wallet-aggregator/internal/domain/entity"
)

// TransactionRepository persists fetched transaction records.
type TransactionRepository interface {
	// SaveTransactions inserts records that are not stored yet, keyed by hash, and
	// returns how many rows were written. Records without a valid hash are skipped.
	SaveTransactions(ctx context.Context, chainKey string, txs []entity.Transaction) (int, error)
}
