package metrics

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"
)

func TestCollector_ObserveChainCall(t *testing.T) {
	c := NewCollector()

	c.ObserveChainCall("eth", "native_balance", nil, 20*time.Millisecond)
	c.ObserveChainCall("eth", "native_balance", nil, 30*time.Millisecond)
	c.ObserveChainCall("poly", "native_balance", errors.New("unreachable"), time.Second)

	assert.Equal(t, 2.0, testutil.ToFloat64(c.calls.WithLabelValues("eth", "native_balance", OutcomeOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.calls.WithLabelValues("poly", "native_balance", OutcomeError)))
	assert.Equal(t, 0.0, testutil.ToFloat64(c.calls.WithLabelValues("poly", "native_balance", OutcomeOK)))
	assert.Equal(t, 2, testutil.CollectAndCount(c.duration))
}

func TestCollector_Handler(t *testing.T) {
	c := NewCollector()
	c.ObserveChainCall("eth", "transactions", nil, time.Millisecond)

	ctx := &fasthttp.RequestCtx{}
	ctx.Request.SetRequestURI("/metrics")
	c.Handler()(ctx)

	require.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
	body := string(ctx.Response.Body())
	assert.True(t, strings.Contains(body, `wallet_chain_calls_total{chain="eth",operation="transactions",outcome="ok"} 1`), body)
	assert.Contains(t, body, "go_goroutines")
}
