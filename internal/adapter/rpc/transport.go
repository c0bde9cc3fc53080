package rpc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"wallet-aggregator/internal/domain/entity"
	domainService "wallet-aggregator/internal/domain/service"
	"wallet-aggregator/internal/pkg/apperrors"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
)

// Compile-time check
var _ domainService.RPCTransport = (*Transport)(nil)

// Transport sends JSON-RPC requests to one node over HTTP. It is safe for concurrent use;
// one Transport is created per chain and shared by every call.
type Transport struct {
	client  *fasthttp.Client
	url     string
	timeout time.Duration
	nextID  atomic.Uint64
	logger  *zap.Logger
}

// NewTransport creates a transport for the given endpoint. timeout bounds every call.
func NewTransport(rpcURL entity.RPCURL, timeout time.Duration, logger *zap.Logger) *Transport {
	return &Transport{
		client: &fasthttp.Client{
			ReadTimeout:         timeout,
			WriteTimeout:        timeout,
			MaxIdleConnDuration: 30 * time.Second,
		},
		url:     rpcURL.String(),
		timeout: timeout,
		logger:  logger.Named("RPCTransport").With(zap.String("url", rpcURL.String())),
	}
}

// Call posts a JSON-RPC request and decodes its result into result.
func (t *Transport) Call(ctx context.Context, result any, method string, params ...any) error {
	if params == nil {
		params = []any{}
	}
	payload, err := json.Marshal(JSONRPCRequest{
		Jsonrpc: "2.0",
		ID:      t.nextID.Add(1),
		Method:  method,
		Params:  params,
	})
	if err != nil {
		return fmt.Errorf("%w: encode %s request: %w", apperrors.ErrInternal, method, err)
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(t.url)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	req.SetBody(payload)

	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("%w: %s: %w", apperrors.ErrTransport, method, ctxErr)
	}
	timeout := effectiveTimeout(ctx, t.timeout)

	if timeout > 0 {
		err = t.client.DoTimeout(req, resp, timeout)
	} else {
		err = t.client.Do(req, resp)
	}
	if err != nil {
		if errors.Is(err, fasthttp.ErrTimeout) {
			return fmt.Errorf("%w: %w: %s after %v", apperrors.ErrTransport, apperrors.ErrTimeout, method, timeout)
		}
		return fmt.Errorf("%w: %s request failed: %w", apperrors.ErrTransport, method, err)
	}

	if resp.StatusCode() != fasthttp.StatusOK {
		t.logger.Debug("RPC returned non-OK status",
			zap.String("method", method), zap.Int("statusCode", resp.StatusCode()),
		)
		return fmt.Errorf("%w: %s returned http status %d", apperrors.ErrTransport, method, resp.StatusCode())
	}

	var rpcResp JSONRPCResponse
	if err := json.Unmarshal(resp.Body(), &rpcResp); err != nil {
		return fmt.Errorf("%w: %s returned invalid JSON: %w", apperrors.ErrTransport, method, err)
	}
	if rpcResp.Error != nil {
		return fmt.Errorf("%w: %s: %w", apperrors.ErrTransport, method, rpcResp.Error)
	}
	if !rpcResp.hasResult() {
		return fmt.Errorf("%w: %s returned no result", apperrors.ErrTransport, method)
	}

	if err := json.Unmarshal(rpcResp.Result, result); err != nil {
		return fmt.Errorf("%w: decode %s result: %w", apperrors.ErrTransport, method, err)
	}
	return nil
}

// effectiveTimeout returns the smaller of the configured timeout and the time left until
// the context deadline. Zero means no bound.
func effectiveTimeout(ctx context.Context, configured time.Duration) time.Duration {
	timeout := configured
	if deadline, ok := ctx.Deadline(); ok {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return time.Nanosecond
		}
		if timeout <= 0 || remaining < timeout {
			timeout = remaining
		}
	}
	return timeout
}
