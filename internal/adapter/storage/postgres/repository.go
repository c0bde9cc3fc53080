package postgres

import (
	"context"
	"fmt"
	"time"

	"wallet-aggregator/internal/domain/entity"
	domainRepo "wallet-aggregator/internal/domain/repository"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormLogger "gorm.io/gorm/logger"
)

// Compile-time check
var _ domainRepo.TransactionRepository = (*TransactionRepository)(nil)

const insertBatchSize = 100

// Open connects to PostgreSQL. Slow queries and errors go to the given zap logger.
func Open(dsn string, logger *zap.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: NewGormLogger(logger)})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}
	return db, nil
}

// NewGormLogger adapts a zap logger to gorm's logger interface.
func NewGormLogger(logger *zap.Logger) gormLogger.Interface {
	return gormLogger.New(
		zap.NewStdLog(logger.Named("gorm")),
		gormLogger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  gormLogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
}

// TransactionRepository stores explorer transactions, at most once per hash.
type TransactionRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewTransactionRepository migrates the schema and returns the repository.
func NewTransactionRepository(db *gorm.DB, logger *zap.Logger) (*TransactionRepository, error) {
	if err := db.AutoMigrate(&TransactionRecord{}); err != nil {
		return nil, fmt.Errorf("failed to auto-migrate transactions: %w", err)
	}
	return &TransactionRepository{db: db, logger: logger.Named("TransactionStorage")}, nil
}

// SaveTransactions inserts records whose hash is not stored yet and returns the number inserted.
// Records without a valid transaction hash are skipped.
func (r *TransactionRepository) SaveTransactions(ctx context.Context, chainKey string, txs []entity.Transaction) (int, error) {
	records := make([]TransactionRecord, 0, len(txs))
	for _, tx := range txs {
		if !tx.HasValidHash() {
			r.logger.Debug("Skipping transaction without a valid hash",
				zap.String("chain", chainKey), zap.String("hash", tx.Hash),
			)
			continue
		}
		records = append(records, toRecord(chainKey, tx))
	}
	if len(records) == 0 {
		return 0, nil
	}

	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "hash"}}, DoNothing: true}).
		CreateInBatches(&records, insertBatchSize)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to insert transactions for %s: %w", chainKey, result.Error)
	}
	return int(result.RowsAffected), nil
}

// Close closes the underlying connection pool.
func (r *TransactionRepository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database connection: %w", err)
	}
	return sqlDB.Close()
}
