package application

import (
	"context"
	"fmt"
	"math/big"
	"sort"

	"wallet-aggregator/internal/application/port"
	"wallet-aggregator/internal/domain"
	"wallet-aggregator/internal/domain/entity"
	domainRepo "wallet-aggregator/internal/domain/repository"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
)

// Compile-time check to ensure walletService implements WalletService
var _ port.WalletService = (*walletService)(nil)

// walletService implements port.WalletService on top of a ClientRegistry.
type walletService struct {
	registry *ClientRegistry
	txRepo   domainRepo.TransactionRepository
	logger   *zap.Logger
}

// NewWalletService creates a new wallet service. txRepo may be nil, in which case
// fetched transactions are not persisted.
func NewWalletService(
	registry *ClientRegistry,
	txRepo domainRepo.TransactionRepository,
	logger *zap.Logger,
) port.WalletService {
	return &walletService{
		registry: registry,
		txRepo:   txRepo,
		logger:   logger.Named("WalletService"),
	}
}

func (s *walletService) Chains() []entity.ChainSummary {
	summaries := make([]entity.ChainSummary, 0, s.registry.Len())
	for _, key := range s.registry.Keys() {
		client, err := s.registry.Get(key)
		if err != nil {
			continue
		}
		summaries = append(summaries, summarize(client))
	}
	sort.Slice(summaries, func(i, j int) bool { return summaries[i].Key < summaries[j].Key })
	return summaries
}

func (s *walletService) Chain(chainKey string) (entity.ChainSummary, error) {
	client, err := s.registry.Get(chainKey)
	if err != nil {
		return entity.ChainSummary{}, err
	}
	return summarize(client), nil
}

func summarize(client *ChainClient) entity.ChainSummary {
	chain := client.Chain()
	return entity.ChainSummary{
		Key:        chain.Key(),
		Name:       chain.Name,
		ChainID:    chain.ChainID,
		NetworkID:  chain.NetworkID,
		Currency:   chain.Currency,
		RPC:        client.RPCURL(),
		TokenCount: client.TokenCount(),
	}
}

func (s *walletService) NativeBalance(ctx context.Context, chainKey string, address common.Address) (*big.Int, error) {
	client, err := s.registry.Get(chainKey)
	if err != nil {
		return nil, err
	}
	return client.GetNativeBalance(ctx, address)
}

func (s *walletService) TokenBalances(ctx context.Context, chainKey string, address common.Address) ([]entity.TokenBalance, error) {
	client, err := s.registry.Get(chainKey)
	if err != nil {
		return nil, err
	}
	return client.GetTokenBalances(ctx, address), nil
}

func (s *walletService) Transactions(
	ctx context.Context,
	chainKey string,
	address common.Address,
	page, offset uint64,
) (entity.TransactionPage, error) {
	if err := validatePage(page, offset); err != nil {
		return entity.TransactionPage{}, err
	}
	client, err := s.registry.Get(chainKey)
	if err != nil {
		return entity.TransactionPage{}, err
	}

	txs, hasMore, err := client.GetTransactions(ctx, address, page, offset)
	if err != nil {
		return entity.TransactionPage{}, err
	}

	s.persist(ctx, chainKey, txs)
	return entity.NewTransactionPage(txs, page, offset, hasMore), nil
}

func (s *walletService) Wallet(ctx context.Context, chainKey string, address common.Address) (entity.WalletSummary, error) {
	client, err := s.registry.Get(chainKey)
	if err != nil {
		return entity.WalletSummary{}, err
	}

	native, err := client.GetNativeBalance(ctx, address)
	if err != nil {
		return entity.WalletSummary{}, err
	}

	return entity.WalletSummary{
		ChainKey:      chainKey,
		Address:       address.Hex(),
		Currency:      client.Chain().Currency,
		NativeBalance: native,
		Tokens:        client.GetTokenBalances(ctx, address),
	}, nil
}

func (s *walletService) NativeBalances(ctx context.Context, address common.Address) map[string]*big.Int {
	return s.registry.GetNativeBalances(ctx, address)
}

func (s *walletService) AllTokenBalances(ctx context.Context, address common.Address) map[string][]entity.TokenBalance {
	return s.registry.GetTokenBalances(ctx, address)
}

func (s *walletService) AllTransactions(
	ctx context.Context,
	address common.Address,
	page, offset uint64,
) (map[string]entity.TransactionPage, error) {
	if err := validatePage(page, offset); err != nil {
		return nil, err
	}

	pages := s.registry.GetTransactionPages(ctx, address, page, offset)
	for key, p := range pages {
		s.persist(ctx, key, p.Transactions)
	}
	return pages, nil
}

// persist hands fetched records to the sink. Failures are logged only.
func (s *walletService) persist(ctx context.Context, chainKey string, txs []entity.Transaction) {
	if s.txRepo == nil || len(txs) == 0 {
		return
	}
	inserted, err := s.txRepo.SaveTransactions(ctx, chainKey, txs)
	if err != nil {
		s.logger.Warn("Failed to persist transactions",
			zap.String("chain", chainKey), zap.Int("count", len(txs)), zap.Error(err),
		)
		return
	}
	s.logger.Debug("Persisted transactions",
		zap.String("chain", chainKey), zap.Int("inserted", inserted), zap.Int("fetched", len(txs)),
	)
}

func validatePage(page, offset uint64) error {
	if page < 1 || offset < 1 {
		return fmt.Errorf("%w: page=%d offset=%d", domain.ErrInvalidPagination, page, offset)
	}
	return nil
}
