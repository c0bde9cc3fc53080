package application

import (
	"context"
	"math/big"
	"os"
	"path/filepath"
	"testing"

	"wallet-aggregator/internal/domain"
	"wallet-aggregator/internal/domain/entity"
	"wallet-aggregator/internal/pkg/apperrors"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func clientFor(key string, rpc *fakeRPC, explorer *fakeExplorer, tokens ...entity.Token) *ChainClient {
	chain := testChain(key)
	client := NewChainClient(chain, entity.RPCURL(chain.RPC[0]), rpc, explorer, zap.NewNop())
	client.AddTokens(tokens...)
	return client
}

func TestClientRegistry_GetNativeBalances_PartialFailure(t *testing.T) {
	observer := &recordingObserver{}
	registry := NewClientRegistry([]*ChainClient{
		clientFor("eth", &fakeRPC{native: big.NewInt(1000)}, &fakeExplorer{}),
		clientFor("poly", &fakeRPC{nativeErr: errUnreachable}, &fakeExplorer{}),
	}, zap.NewNop(), observer)

	balances := registry.GetNativeBalances(context.Background(), holder)
	require.Len(t, balances, 2)
	assert.Equal(t, int64(1000), balances["eth"].Int64())
	assert.Equal(t, int64(0), balances["poly"].Int64())

	assert.NoError(t, observer.calls["eth/"+OpNativeBalance])
	assert.ErrorIs(t, observer.calls["poly/"+OpNativeBalance], apperrors.ErrTransport)
}

func TestClientRegistry_GetNativeBalances_Idempotent(t *testing.T) {
	registry := NewClientRegistry([]*ChainClient{
		clientFor("eth", &fakeRPC{native: big.NewInt(1)}, &fakeExplorer{}),
		clientFor("bsc", &fakeRPC{native: big.NewInt(2)}, &fakeExplorer{}),
		clientFor("poly", &fakeRPC{nativeErr: errUnreachable}, &fakeExplorer{}),
	}, zap.NewNop(), nil)

	first := registry.GetNativeBalances(context.Background(), holder)
	second := registry.GetNativeBalances(context.Background(), holder)
	assert.Equal(t, first, second)
}

func TestClientRegistry_GetNativeBalances_AllFail(t *testing.T) {
	registry := NewClientRegistry([]*ChainClient{
		clientFor("a", &fakeRPC{nativeErr: errUnreachable}, &fakeExplorer{}),
		clientFor("b", &fakeRPC{nativeErr: errUnreachable}, &fakeExplorer{}),
	}, zap.NewNop(), nil)

	balances := registry.GetNativeBalances(context.Background(), holder)
	assert.Len(t, balances, 2)
	for key, b := range balances {
		assert.Zero(t, b.Sign(), key)
	}
}

func TestClientRegistry_GetTokenBalances_SkipsEmptyCatalogs(t *testing.T) {
	ethRPC := &fakeRPC{tokenBalances: map[common.Address]*big.Int{
		usdc.Address: big.NewInt(500),
		dai.Address:  big.NewInt(0),
	}}
	bareRPC := &fakeRPC{}
	registry := NewClientRegistry([]*ChainClient{
		clientFor("eth", ethRPC, &fakeExplorer{}, usdc, dai),
		clientFor("bare", bareRPC, &fakeExplorer{}),
	}, zap.NewNop(), nil)

	balances := registry.GetTokenBalances(context.Background(), holder)
	require.Len(t, balances, 1)
	require.Len(t, balances["eth"], 1)
	assert.Equal(t, "USDC", balances["eth"][0].Token.Symbol)
	assert.Equal(t, int64(500), balances["eth"][0].Balance.Int64())

	_, present := balances["bare"]
	assert.False(t, present)
	assert.Zero(t, bareRPC.callCount("eth_call"))
}

func TestClientRegistry_GetTokenBalances_AllZeroKeepsKey(t *testing.T) {
	rpc := &fakeRPC{tokenBalances: map[common.Address]*big.Int{usdc.Address: big.NewInt(0)}}
	registry := NewClientRegistry([]*ChainClient{clientFor("eth", rpc, &fakeExplorer{}, usdc)}, zap.NewNop(), nil)

	balances := registry.GetTokenBalances(context.Background(), holder)
	got, present := balances["eth"]
	assert.True(t, present)
	assert.Empty(t, got)
}

func TestClientRegistry_GetTransactions(t *testing.T) {
	registry := NewClientRegistry([]*ChainClient{
		clientFor("eth", &fakeRPC{}, &fakeExplorer{txs: descendingTxs(11)}),
		clientFor("poly", &fakeRPC{}, &fakeExplorer{err: errUnreachable}),
		clientFor("bsc", &fakeRPC{}, &fakeExplorer{txs: descendingTxs(2)}),
	}, zap.NewNop(), nil)

	txs := registry.GetTransactions(context.Background(), holder, 1, 10)
	require.Len(t, txs, 3)
	assert.Len(t, txs["eth"], 10)
	assert.Len(t, txs["bsc"], 2)
	assert.NotNil(t, txs["poly"])
	assert.Empty(t, txs["poly"])
}

func TestClientRegistry_GetTransactionPages(t *testing.T) {
	registry := NewClientRegistry([]*ChainClient{
		clientFor("eth", &fakeRPC{}, &fakeExplorer{txs: descendingTxs(11)}),
		clientFor("poly", &fakeRPC{}, &fakeExplorer{err: errUnreachable}),
	}, zap.NewNop(), nil)

	pages := registry.GetTransactionPages(context.Background(), holder, 1, 10)

	eth := pages["eth"]
	assert.True(t, eth.HasMore)
	require.NotNil(t, eth.NextPage)
	assert.Equal(t, uint64(2), *eth.NextPage)
	assert.Len(t, eth.Transactions, 10)

	poly := pages["poly"]
	assert.False(t, poly.HasMore)
	assert.Nil(t, poly.NextPage)
	assert.Empty(t, poly.Transactions)
}

func TestClientRegistry_Get(t *testing.T) {
	registry := NewClientRegistry([]*ChainClient{
		clientFor("eth", &fakeRPC{}, &fakeExplorer{}),
	}, zap.NewNop(), nil)

	client, err := registry.Get("eth")
	require.NoError(t, err)
	assert.Equal(t, "eth", client.Chain().Key())

	_, err = registry.Get("nope")
	assert.ErrorIs(t, err, domain.ErrChainNotFound)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestClientRegistry_DuplicateKeyKeepsFirst(t *testing.T) {
	first := clientFor("eth", &fakeRPC{native: big.NewInt(1)}, &fakeExplorer{})
	second := clientFor("eth", &fakeRPC{native: big.NewInt(2)}, &fakeExplorer{})
	registry := NewClientRegistry([]*ChainClient{first, second}, zap.NewNop(), nil)

	assert.Equal(t, 1, registry.Len())
	got, err := registry.Get("eth")
	require.NoError(t, err)
	assert.Same(t, first, got)
}

func TestClientRegistry_KeysSorted(t *testing.T) {
	registry := NewClientRegistry([]*ChainClient{
		clientFor("poly", &fakeRPC{}, &fakeExplorer{}),
		clientFor("arb", &fakeRPC{}, &fakeExplorer{}),
		clientFor("eth", &fakeRPC{}, &fakeExplorer{}),
	}, zap.NewNop(), nil)

	assert.Equal(t, []string{"arb", "eth", "poly"}, registry.Keys())
}

func TestClientRegistry_Empty(t *testing.T) {
	registry := NewClientRegistry(nil, zap.NewNop(), nil)

	assert.Empty(t, registry.GetNativeBalances(context.Background(), holder))
	assert.Empty(t, registry.GetTokenBalances(context.Background(), holder))
	assert.Empty(t, registry.GetTransactions(context.Background(), holder, 1, 10))
}

func TestClientRegistry_MergeTokenDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "eth-tokens.json"), []byte(`[
		{"name": "Dai Stablecoin", "address": "0x6B175474E89094C44Da98b954EedeAC495271d0F", "symbol": "DAI", "decimals": 18}
	]`), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "poly-tokens.json"), []byte(`not json`), 0o600))

	eth := clientFor("eth", &fakeRPC{}, &fakeExplorer{}, usdc)
	poly := clientFor("poly", &fakeRPC{}, &fakeExplorer{})
	bsc := clientFor("bsc", &fakeRPC{}, &fakeExplorer{})
	registry := NewClientRegistry([]*ChainClient{eth, poly, bsc}, zap.NewNop(), nil)

	added, err := registry.MergeTokenDir(dir)
	assert.Equal(t, 1, added)
	assert.ErrorIs(t, err, apperrors.ErrConfig)

	assert.Equal(t, 2, eth.TokenCount())
	assert.Zero(t, poly.TokenCount())
	assert.Zero(t, bsc.TokenCount())
}
