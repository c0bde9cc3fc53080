package port

import (
	"context"
	"math/big"

	"wallet-aggregator/internal/domain/entity"

	"github.com/ethereum/go-ethereum/common"
)

// WalletService defines the wallet queries served to the delivery layer.
type WalletService interface {
	// Chains lists the registered chains, sorted by key.
	Chains() []entity.ChainSummary

	// Chain returns the summary of one registered chain.
	Chain(chainKey string) (entity.ChainSummary, error)

	// NativeBalance returns the native balance on one chain.
	NativeBalance(ctx context.Context, chainKey string, address common.Address) (*big.Int, error)

	// TokenBalances returns the non-zero token balances on one chain.
	TokenBalances(ctx context.Context, chainKey string, address common.Address) ([]entity.TokenBalance, error)

	// Transactions returns one page of transactions on one chain.
	Transactions(ctx context.Context, chainKey string, address common.Address, page, offset uint64) (entity.TransactionPage, error)

	// Wallet returns the native and token balances on one chain.
	Wallet(ctx context.Context, chainKey string, address common.Address) (entity.WalletSummary, error)

	// NativeBalances returns the native balance on every chain; failed chains report zero.
	NativeBalances(ctx context.Context, address common.Address) map[string]*big.Int

	// AllTokenBalances returns token balances on every chain that tracks tokens.
	AllTokenBalances(ctx context.Context, address common.Address) map[string][]entity.TokenBalance

	// AllTransactions returns one page of transactions per chain; failed chains report an empty page.
	AllTransactions(ctx context.Context, address common.Address, page, offset uint64) (map[string]entity.TransactionPage, error)
}
