package application

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"wallet-aggregator/internal/config"
	"wallet-aggregator/internal/domain/entity"
	"wallet-aggregator/internal/pkg/apperrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeChecker struct {
	mu      sync.Mutex
	checked []string
	working map[string]time.Duration
}

func (c *fakeChecker) CheckRPC(_ context.Context, rpcURL entity.RPCURL) (bool, time.Duration, error) {
	c.mu.Lock()
	c.checked = append(c.checked, rpcURL.String())
	c.mu.Unlock()

	latency, ok := c.working[rpcURL.String()]
	if !ok {
		return false, 0, errors.New("unreachable")
	}
	return true, latency, nil
}

func (c *fakeChecker) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.checked)
}

type mapCache struct {
	mu      sync.Mutex
	entries map[string][]entity.RPCDetail
	ttls    map[string]time.Duration
}

func (m *mapCache) GetChainCheckedRPCs(_ context.Context, chainKey string) ([]entity.RPCDetail, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rpcs, ok := m.entries[chainKey]
	return rpcs, ok, nil
}

func (m *mapCache) SetChainCheckedRPCs(_ context.Context, chainKey string, rpcs []entity.RPCDetail, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.entries == nil {
		m.entries = make(map[string][]entity.RPCDetail)
		m.ttls = make(map[string]time.Duration)
	}
	m.entries[chainKey] = rpcs
	m.ttls[chainKey] = ttl
	return nil
}

func TestEndpointService_CheckedRPCs(t *testing.T) {
	chain := testChain("eth")
	chain.RPC = []string{
		"https://good.example.org",
		"https://rpc.example.org/{API_KEY}",
		"https://down.example.org",
		"wss://ws.example.org",
		"ftp://odd.example.org",
	}
	client := NewChainClient(chain, "https://good.example.org", &fakeRPC{}, &fakeExplorer{}, zap.NewNop())
	registry := NewClientRegistry([]*ChainClient{client}, zap.NewNop(), nil)

	checker := &fakeChecker{working: map[string]time.Duration{
		"https://good.example.org": 120 * time.Millisecond,
		"wss://ws.example.org":     30 * time.Millisecond,
	}}
	cache := &mapCache{}
	cfg := config.CheckerConfig{CheckTimeout: time.Second, MaxWorkers: 2, CacheTTL: time.Minute}
	svc := NewEndpointService(registry, cache, checker, zap.NewNop(), cfg)

	details, err := svc.CheckedRPCs(context.Background(), "eth")
	require.NoError(t, err)
	require.Len(t, details, 5)

	assert.Equal(t, "https://good.example.org", details[0].URL)
	assert.Equal(t, entity.ProtocolHTTPS, details[0].Protocol)
	require.NotNil(t, details[0].IsWorking)
	assert.True(t, *details[0].IsWorking)
	require.NotNil(t, details[0].LatencyMs)
	assert.Equal(t, int64(120), *details[0].LatencyMs)

	assert.True(t, details[1].Templated)
	assert.False(t, *details[1].IsWorking)

	assert.False(t, *details[2].IsWorking)
	assert.Nil(t, details[2].LatencyMs)

	assert.Equal(t, entity.ProtocolWSS, details[3].Protocol)
	assert.True(t, *details[3].IsWorking)

	assert.Equal(t, entity.ProtocolUnknown, details[4].Protocol)
	assert.False(t, *details[4].IsWorking)

	assert.Equal(t, 3, checker.count(), "templated and invalid urls are not probed")
	assert.Equal(t, time.Minute, cache.ttls["eth"])

	again, err := svc.CheckedRPCs(context.Background(), "eth")
	require.NoError(t, err)
	assert.Equal(t, details, again)
	assert.Equal(t, 3, checker.count(), "second call is served from cache")
}

func TestEndpointService_UnknownChain(t *testing.T) {
	registry := NewClientRegistry(nil, zap.NewNop(), nil)
	svc := NewEndpointService(registry, &mapCache{}, &fakeChecker{}, zap.NewNop(), config.CheckerConfig{})

	_, err := svc.CheckedRPCs(context.Background(), "eth")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}
