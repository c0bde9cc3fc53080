package application

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"sync"
	"time"

	"wallet-aggregator/internal/domain/entity"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/common/math"
)

var errUnreachable = errors.New("connection refused")

// fakeRPC answers eth_getBalance and eth_call from in-memory tables by
// round-tripping through JSON, the same way a real node response is decoded.
type fakeRPC struct {
	mu            sync.Mutex
	native        *big.Int
	nativeErr     error
	tokenBalances map[common.Address]*big.Int
	tokenErrs     map[common.Address]error
	calls         []string
}

func (f *fakeRPC) Call(_ context.Context, result any, method string, params ...any) error {
	f.mu.Lock()
	f.calls = append(f.calls, method)
	f.mu.Unlock()

	var raw any
	switch method {
	case "eth_getBalance":
		if f.nativeErr != nil {
			return f.nativeErr
		}
		raw = (*hexutil.Big)(f.native)
	case "eth_call":
		args, ok := params[0].(callArgs)
		if !ok {
			return fmt.Errorf("unexpected eth_call params %T", params[0])
		}
		if err := f.tokenErrs[args.To]; err != nil {
			return err
		}
		balance, ok := f.tokenBalances[args.To]
		if !ok {
			return errors.New("execution reverted")
		}
		raw = hexutil.Bytes(math.U256Bytes(new(big.Int).Set(balance)))
	default:
		return fmt.Errorf("unexpected method %s", method)
	}

	data, err := json.Marshal(raw)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, result)
}

func (f *fakeRPC) callCount(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, m := range f.calls {
		if m == method {
			n++
		}
	}
	return n
}

// fakeExplorer returns the first Offset records of txs and remembers the last query.
type fakeExplorer struct {
	mu   sync.Mutex
	txs  []entity.Transaction
	err  error
	last entity.TxListParams
}

func (f *fakeExplorer) TxList(_ context.Context, params entity.TxListParams) ([]entity.Transaction, error) {
	f.mu.Lock()
	f.last = params
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	n := min(uint64(len(f.txs)), params.Offset)
	return append([]entity.Transaction(nil), f.txs[:n]...), nil
}

func (f *fakeExplorer) lastParams() entity.TxListParams {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.last
}

// recordingObserver collects per-chain call outcomes.
type recordingObserver struct {
	mu    sync.Mutex
	calls map[string]error
}

func (o *recordingObserver) ObserveChainCall(chain, operation string, err error, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.calls == nil {
		o.calls = make(map[string]error)
	}
	o.calls[chain+"/"+operation] = err
}

func testChain(shortName string) entity.Chain {
	return entity.Chain{
		Name:      shortName + " network",
		ChainID:   1,
		ShortName: shortName,
		NetworkID: 1,
		Currency:  entity.Currency{Name: "Ether", Symbol: "ETH", Decimals: 18},
		RPC:       []string{"https://" + shortName + ".example.org"},
	}
}

// descendingTxs returns n records ordered from the highest block down.
func descendingTxs(n int) []entity.Transaction {
	txs := make([]entity.Transaction, n)
	for i := range txs {
		block := 1000 - i
		txs[i] = entity.Transaction{
			BlockNumber: strconv.Itoa(block),
			Hash:        fmt.Sprintf("0x%064x", block),
		}
	}
	return txs
}

var (
	holder = common.HexToAddress("0x00000000000000000000000000000000000000aa")
	usdc   = entity.Token{Name: "USD Coin", Address: common.HexToAddress("0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48"), Symbol: "USDC", Decimals: 6}
	dai    = entity.Token{Name: "Dai Stablecoin", Address: common.HexToAddress("0x6B175474E89094C44Da98b954EedeAC495271d0F"), Symbol: "DAI", Decimals: 18}
	weth   = entity.Token{Name: "Wrapped Ether", Address: common.HexToAddress("0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2"), Symbol: "WETH", Decimals: 18}
)
