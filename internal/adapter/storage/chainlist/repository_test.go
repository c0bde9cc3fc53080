package chainlist

import (
	"bytes"
	"compress/gzip"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"wallet-aggregator/internal/config"
	"wallet-aggregator/internal/pkg/apperrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const chainsJSON = `[
  {
    "name": "Ethereum Mainnet",
    "chain": "ETH",
    "rpc": ["https://mainnet.infura.io/v3/${INFURA_API_KEY}", "wss://mainnet.example.org", "https://eth.llamarpc.com"],
    "nativeCurrency": {"name": "Ether", "symbol": "ETH", "decimals": 18},
    "infoURL": "https://ethereum.org",
    "shortName": "eth",
    "chainId": 1,
    "networkId": 1
  },
  {
    "name": "Polygon Mainnet",
    "rpc": ["https://polygon-rpc.com/"],
    "nativeCurrency": {"name": "POL", "symbol": "POL", "decimals": 18},
    "shortName": "matic",
    "chainId": 137,
    "networkId": 137
  },
  {
    "name": "Broken",
    "rpc": ["https://broken.example.org"],
    "nativeCurrency": {"name": "X", "symbol": "X", "decimals": 300},
    "shortName": "broken",
    "chainId": 9,
    "networkId": 9
  }
]`

const chainsYAML = `
- name: Ethereum Mainnet
  shortName: eth
  chainId: 1
  networkId: 1
  nativeCurrency:
    name: Ether
    symbol: ETH
    decimals: 18
  rpc:
    - https://eth.llamarpc.com
- name: Base
  shortName: base
  chainId: 8453
  networkId: 8453
  nativeCurrency: {name: Ether, symbol: ETH, decimals: 18}
  rpc: ["https://mainnet.base.org"]
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestFileRepository_JSON(t *testing.T) {
	repo := NewFileRepository(writeFile(t, "chains.json", chainsJSON), nil, zap.NewNop())

	chains, err := repo.GetAllChains(context.Background())
	require.NoError(t, err)
	require.Len(t, chains, 2, "chain with out of range decimals is skipped")

	eth := chains[0]
	assert.Equal(t, "Ethereum Mainnet", eth.Name)
	assert.Equal(t, "eth", eth.ShortName)
	assert.Equal(t, uint64(1), eth.ChainID)
	assert.Equal(t, uint64(1), eth.NetworkID)
	assert.Equal(t, "ETH", eth.Currency.Symbol)
	assert.Equal(t, uint8(18), eth.Currency.Decimals)
	assert.Equal(t, []string{
		"https://mainnet.infura.io/v3/${INFURA_API_KEY}",
		"wss://mainnet.example.org",
		"https://eth.llamarpc.com",
	}, eth.RPC, "candidates are kept in order, templated ones included")
}

func TestFileRepository_YAML(t *testing.T) {
	repo := NewFileRepository(writeFile(t, "chains.yaml", chainsYAML), []string{"base"}, zap.NewNop())

	chains, err := repo.GetAllChains(context.Background())
	require.NoError(t, err)
	require.Len(t, chains, 1)
	assert.Equal(t, "base", chains[0].ShortName)
	assert.Equal(t, uint64(8453), chains[0].ChainID)
	assert.Equal(t, []string{"https://mainnet.base.org"}, chains[0].RPC)
}

func TestFileRepository_Errors(t *testing.T) {
	_, err := NewFileRepository(filepath.Join(t.TempDir(), "missing.json"), nil, zap.NewNop()).
		GetAllChains(context.Background())
	assert.ErrorIs(t, err, apperrors.ErrConfig)

	_, err = NewFileRepository(writeFile(t, "chains.json", `{"oops":`), nil, zap.NewNop()).
		GetAllChains(context.Background())
	assert.ErrorIs(t, err, apperrors.ErrConfig)
}

func TestRemoteRepository(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		var buf bytes.Buffer
		gz := gzip.NewWriter(&buf)
		_, _ = gz.Write([]byte(chainsJSON))
		_ = gz.Close()
		w.Header().Set("Content-Encoding", "gzip")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(buf.Bytes())
	}))
	t.Cleanup(srv.Close)

	repo := NewRepository(config.ChainsConfig{URL: srv.URL, Include: []string{"matic"}}, zap.NewNop())

	chains, err := repo.GetAllChains(context.Background())
	require.NoError(t, err)
	require.Len(t, chains, 1)
	assert.Equal(t, "matic", chains[0].ShortName)
	assert.Equal(t, uint64(137), chains[0].ChainID)
}

func TestRemoteRepository_BadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	t.Cleanup(srv.Close)

	_, err := NewRemoteRepository(srv.URL, nil, zap.NewNop()).GetAllChains(context.Background())
	assert.ErrorIs(t, err, apperrors.ErrConfig)
}

func TestNewRepository_PrefersFileWhenNoURL(t *testing.T) {
	repo := NewRepository(config.ChainsConfig{File: "chains.json"}, zap.NewNop())
	_, ok := repo.(*FileRepository)
	assert.True(t, ok)
}
