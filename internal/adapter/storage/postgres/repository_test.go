package postgres

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"wallet-aggregator/internal/domain/entity"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// The sink is exercised against sqlite; the insert path uses only portable clauses.
func newTestRepository(t *testing.T) *TransactionRepository {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "sink.db")), &gorm.Config{
		Logger: NewGormLogger(zap.NewNop()),
	})
	require.NoError(t, err)

	repo, err := NewTransactionRepository(db, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func txWithHash(n int) entity.Transaction {
	return entity.Transaction{
		BlockNumber: fmt.Sprint(1000 - n),
		Hash:        "0x" + strings.Repeat("0", 62) + fmt.Sprintf("%02x", n),
		From:        "0xd8da6bf26964af9d7eed9e03e53415d37aa96045",
		Value:       "1",
	}
}

func TestTransactionRepository_SaveTransactions(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	genesis := entity.Transaction{Hash: "GENESIS_d8da6bf26964af9d7eed9e03e53415d37aa96045"}
	inserted, err := repo.SaveTransactions(ctx, "eth", []entity.Transaction{txWithHash(1), txWithHash(2), genesis})
	require.NoError(t, err)
	assert.Equal(t, 2, inserted, "records without a valid hash are skipped")

	inserted, err = repo.SaveTransactions(ctx, "eth", []entity.Transaction{txWithHash(2), txWithHash(3)})
	require.NoError(t, err)
	assert.Equal(t, 1, inserted, "already stored hashes are not inserted again")

	var records []TransactionRecord
	require.NoError(t, repo.db.Order("hash").Find(&records).Error)
	require.Len(t, records, 3)
	assert.Equal(t, "eth", records[0].Chain)
	assert.Equal(t, "999", records[0].BlockNumber)
	assert.False(t, records[0].CreatedAt.IsZero())
}

func TestTransactionRepository_SaveTransactions_Empty(t *testing.T) {
	repo := newTestRepository(t)

	inserted, err := repo.SaveTransactions(context.Background(), "eth", nil)
	require.NoError(t, err)
	assert.Zero(t, inserted)
}

func TestTransactionRepository_SaveTransactions_ManyBatches(t *testing.T) {
	repo := newTestRepository(t)

	txs := make([]entity.Transaction, 0, 250)
	for i := 0; i < 250; i++ {
		tx := txWithHash(i % 256)
		tx.Hash = fmt.Sprintf("0x%064x", i+1)
		txs = append(txs, tx)
	}

	inserted, err := repo.SaveTransactions(context.Background(), "poly", txs)
	require.NoError(t, err)
	assert.Equal(t, 250, inserted)

	var count int64
	require.NoError(t, repo.db.Model(&TransactionRecord{}).Where("chain = ?", "poly").Count(&count).Error)
	assert.Equal(t, int64(250), count)
}
