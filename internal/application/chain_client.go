package application

import (
	"context"
	"fmt"
	"math"
	"math/big"
	"sync"

	"wallet-aggregator/internal/domain/entity"
	domainService "wallet-aggregator/internal/domain/service"
	"wallet-aggregator/internal/pkg/apperrors"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"go.uber.org/zap"
)

// ChainClient answers balance and transaction queries for exactly one chain.
// Transports are shared by every concurrent call; the token catalog can only grow.
type ChainClient struct {
	chain    entity.Chain
	rpcURL   entity.RPCURL
	rpc      domainService.RPCTransport
	explorer domainService.ExplorerTransport
	logger   *zap.Logger

	mu     sync.RWMutex
	tokens []entity.Token
}

// NewChainClient binds a chain descriptor to its transports.
func NewChainClient(
	chain entity.Chain,
	rpcURL entity.RPCURL,
	rpc domainService.RPCTransport,
	explorer domainService.ExplorerTransport,
	logger *zap.Logger,
) *ChainClient {
	return &ChainClient{
		chain:    chain,
		rpcURL:   rpcURL,
		rpc:      rpc,
		explorer: explorer,
		logger:   logger.Named("ChainClient").With(zap.String("chain", chain.Key())),
	}
}

// Chain returns the descriptor the client was built from.
func (c *ChainClient) Chain() entity.Chain {
	return c.chain
}

// RPCURL returns the endpoint selected for this chain.
func (c *ChainClient) RPCURL() entity.RPCURL {
	return c.rpcURL
}

// Tokens returns a copy of the token catalog.
func (c *ChainClient) Tokens() []entity.Token {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]entity.Token, len(c.tokens))
	copy(out, c.tokens)
	return out
}

// TokenCount returns the catalog size.
func (c *ChainClient) TokenCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.tokens)
}

// AddTokens appends tokens to the catalog. Duplicates are kept.
func (c *ChainClient) AddTokens(tokens ...entity.Token) {
	if len(tokens) == 0 {
		return
	}
	c.mu.Lock()
	c.tokens = append(c.tokens, tokens...)
	c.mu.Unlock()
}

// AddTokensFromFile parses a token list file and appends its entries to the catalog.
// It returns the number of tokens added.
func (c *ChainClient) AddTokensFromFile(path string) (int, error) {
	tokens, err := ReadTokenFile(path)
	if err != nil {
		return 0, err
	}
	c.AddTokens(tokens...)
	c.logger.Debug("Loaded token file", zap.String("path", path), zap.Int("count", len(tokens)))
	return len(tokens), nil
}

// GetNativeBalance returns the balance of the chain's native currency at the latest block.
func (c *ChainClient) GetNativeBalance(ctx context.Context, address common.Address) (*big.Int, error) {
	var balance hexutil.Big
	if err := c.rpc.Call(ctx, &balance, "eth_getBalance", address, "latest"); err != nil {
		return nil, fmt.Errorf("%w: eth_getBalance on %s: %w", apperrors.ErrTransport, c.chain.Key(), err)
	}
	return balance.ToInt(), nil
}

// GetTokenBalances queries balanceOf for every catalog token concurrently.
// Failed queries and zero balances are left out; the rest keep catalog order.
func (c *ChainClient) GetTokenBalances(ctx context.Context, address common.Address) []entity.TokenBalance {
	tokens := c.Tokens()
	if len(tokens) == 0 {
		return []entity.TokenBalance{}
	}

	calldata, err := EncodeBalanceOf(address)
	if err != nil {
		c.logger.Error("Failed to encode balanceOf call", zap.Error(err))
		return []entity.TokenBalance{}
	}

	balances := make([]*big.Int, len(tokens))
	var wg sync.WaitGroup
	for i := range tokens {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			balance, err := c.balanceOf(ctx, tokens[i].Address, calldata)
			if err != nil {
				c.logger.Warn("Token balance query failed",
					zap.String("symbol", tokens[i].Symbol),
					zap.String("token", tokens[i].Address.Hex()),
					zap.Error(err),
				)
				return
			}
			balances[i] = balance
		}(i)
	}
	wg.Wait()

	result := make([]entity.TokenBalance, 0, len(tokens))
	for i, balance := range balances {
		if balance == nil || balance.Sign() == 0 {
			continue
		}
		result = append(result, entity.TokenBalance{Token: tokens[i], Balance: balance})
	}
	return result
}

func (c *ChainClient) balanceOf(ctx context.Context, token common.Address, calldata []byte) (*big.Int, error) {
	var output hexutil.Bytes
	if err := c.rpc.Call(ctx, &output, "eth_call", callArgs{To: token, Data: calldata}, "latest"); err != nil {
		return nil, err
	}
	return DecodeBalanceOf(output)
}

// GetTransactions returns one page of the address's transactions, newest first,
// and whether a further page exists. It asks the explorer for offset+1 records and
// uses the surplus record only as the has-more signal.
func (c *ChainClient) GetTransactions(
	ctx context.Context,
	address common.Address,
	page, offset uint64,
) ([]entity.Transaction, bool, error) {
	txs, err := c.explorer.TxList(ctx, entity.TxListParams{
		Address:    address.Hex(),
		StartBlock: 0,
		EndBlock:   math.MaxUint64,
		Page:       page,
		Offset:     offset + 1,
		Sort:       entity.SortDesc,
	})
	if err != nil {
		return nil, false, fmt.Errorf("%w: txlist on %s: %w", apperrors.ErrTransport, c.chain.Key(), err)
	}

	txs, hasMore := trimPage(txs, offset)
	return txs, hasMore, nil
}

// trimPage cuts an over-fetched result down to offset records.
func trimPage(txs []entity.Transaction, offset uint64) ([]entity.Transaction, bool) {
	if uint64(len(txs)) > offset {
		return txs[:offset], true
	}
	if txs == nil {
		txs = []entity.Transaction{}
	}
	return txs, false
}
