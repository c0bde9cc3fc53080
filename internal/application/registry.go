package application

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sort"
	"sync"
	"time"

	"wallet-aggregator/internal/domain"
	"wallet-aggregator/internal/domain/entity"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
)

// Operation names reported to a CallObserver.
const (
	OpNativeBalance = "native_balance"
	OpTokenBalances = "token_balances"
	OpTransactions  = "transactions"
)

// CallObserver is notified of the outcome of every per-chain dispatch.
type CallObserver interface {
	ObserveChainCall(chain, operation string, err error, elapsed time.Duration)
}

// ClientRegistry maps chain keys to their clients and fans aggregate queries out
// to every chain concurrently. The client set is fixed after construction.
type ClientRegistry struct {
	clients  map[string]*ChainClient
	keys     []string
	logger   *zap.Logger
	observer CallObserver
}

// NewClientRegistry builds a registry. When two clients share a key the first one is kept.
// observer may be nil.
func NewClientRegistry(clients []*ChainClient, logger *zap.Logger, observer CallObserver) *ClientRegistry {
	r := &ClientRegistry{
		clients:  make(map[string]*ChainClient, len(clients)),
		logger:   logger.Named("ClientRegistry"),
		observer: observer,
	}
	for _, client := range clients {
		key := client.Chain().Key()
		if _, exists := r.clients[key]; exists {
			r.logger.Warn("Duplicate chain key, keeping the first client", zap.String("chain", key))
			continue
		}
		r.clients[key] = client
		r.keys = append(r.keys, key)
	}
	sort.Strings(r.keys)
	return r
}

// Keys returns the registered chain keys in sorted order.
func (r *ClientRegistry) Keys() []string {
	out := make([]string, len(r.keys))
	copy(out, r.keys)
	return out
}

// Len returns the number of registered chains.
func (r *ClientRegistry) Len() int {
	return len(r.keys)
}

// Get looks up a chain client by key.
func (r *ClientRegistry) Get(key string) (*ChainClient, error) {
	client, ok := r.clients[key]
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrChainNotFound, key)
	}
	return client, nil
}

// MergeTokenDir loads {shortName}-tokens.json for every registered chain from dir and
// returns how many tokens were added. Chains without a file are skipped.
func (r *ClientRegistry) MergeTokenDir(dir string) (int, error) {
	var (
		added int
		errs  []error
	)
	for _, key := range r.keys {
		client := r.clients[key]
		path, ok := tokenFileIn(dir, client.Chain())
		if !ok {
			continue
		}
		n, err := client.AddTokensFromFile(path)
		if err != nil {
			r.logger.Warn("Failed to merge token file", zap.String("chain", key), zap.Error(err))
			errs = append(errs, err)
			continue
		}
		added += n
	}
	return added, errors.Join(errs...)
}

type chainResult[T any] struct {
	key   string
	value T
	err   error
}

// fanOut runs call for every client concurrently and waits for all of them.
func fanOut[T any](
	ctx context.Context,
	r *ClientRegistry,
	operation string,
	clients []*ChainClient,
	call func(context.Context, *ChainClient) (T, error),
) []chainResult[T] {
	resultsChan := make(chan chainResult[T], len(clients))
	var wg sync.WaitGroup

	for _, client := range clients {
		wg.Add(1)
		go func(client *ChainClient) {
			defer wg.Done()
			key := client.Chain().Key()
			start := time.Now()
			value, err := call(ctx, client)
			if r.observer != nil {
				r.observer.ObserveChainCall(key, operation, err, time.Since(start))
			}
			resultsChan <- chainResult[T]{key: key, value: value, err: err}
		}(client)
	}

	wg.Wait()
	close(resultsChan)

	results := make([]chainResult[T], 0, len(clients))
	for res := range resultsChan {
		results = append(results, res)
	}
	return results
}

func (r *ClientRegistry) all() []*ChainClient {
	out := make([]*ChainClient, 0, len(r.keys))
	for _, key := range r.keys {
		out = append(out, r.clients[key])
	}
	return out
}

// GetNativeBalances returns the native balance on every chain. A chain whose query
// fails reports zero; every registered key is present.
func (r *ClientRegistry) GetNativeBalances(ctx context.Context, address common.Address) map[string]*big.Int {
	results := fanOut(ctx, r, OpNativeBalance, r.all(),
		func(ctx context.Context, c *ChainClient) (*big.Int, error) {
			return c.GetNativeBalance(ctx, address)
		},
	)

	balances := make(map[string]*big.Int, len(results))
	for _, res := range results {
		if res.err != nil {
			r.logger.Warn("Native balance query failed, reporting zero",
				zap.String("chain", res.key), zap.String("address", address.Hex()), zap.Error(res.err),
			)
			balances[res.key] = new(big.Int)
			continue
		}
		balances[res.key] = res.value
	}
	return balances
}

// GetTokenBalances returns non-zero token balances for every chain that tracks at
// least one token. Chains with an empty catalog are not queried and not present.
func (r *ClientRegistry) GetTokenBalances(ctx context.Context, address common.Address) map[string][]entity.TokenBalance {
	var withTokens []*ChainClient
	for _, client := range r.all() {
		if client.TokenCount() > 0 {
			withTokens = append(withTokens, client)
		}
	}

	results := fanOut(ctx, r, OpTokenBalances, withTokens,
		func(ctx context.Context, c *ChainClient) ([]entity.TokenBalance, error) {
			return c.GetTokenBalances(ctx, address), nil
		},
	)

	balances := make(map[string][]entity.TokenBalance, len(results))
	for _, res := range results {
		balances[res.key] = res.value
	}
	return balances
}

// GetTransactionPages returns one page of transactions per chain. A chain whose
// query fails yields an empty page.
func (r *ClientRegistry) GetTransactionPages(
	ctx context.Context,
	address common.Address,
	page, offset uint64,
) map[string]entity.TransactionPage {
	type pageResult struct {
		txs     []entity.Transaction
		hasMore bool
	}

	results := fanOut(ctx, r, OpTransactions, r.all(),
		func(ctx context.Context, c *ChainClient) (pageResult, error) {
			txs, hasMore, err := c.GetTransactions(ctx, address, page, offset)
			return pageResult{txs: txs, hasMore: hasMore}, err
		},
	)

	pages := make(map[string]entity.TransactionPage, len(results))
	for _, res := range results {
		if res.err != nil {
			r.logger.Warn("Transaction query failed, reporting empty list",
				zap.String("chain", res.key), zap.String("address", address.Hex()), zap.Error(res.err),
			)
			pages[res.key] = entity.NewTransactionPage(nil, page, offset, false)
			continue
		}
		pages[res.key] = entity.NewTransactionPage(res.value.txs, page, offset, res.value.hasMore)
	}
	return pages
}

// GetTransactions is GetTransactionPages reduced to the transaction lists.
func (r *ClientRegistry) GetTransactions(
	ctx context.Context,
	address common.Address,
	page, offset uint64,
) map[string][]entity.Transaction {
	pages := r.GetTransactionPages(ctx, address, page, offset)
	out := make(map[string][]entity.Transaction, len(pages))
	for key, p := range pages {
		out[key] = p.Transactions
	}
	return out
}
