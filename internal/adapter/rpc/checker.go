package rpc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"wallet-aggregator/internal/domain/entity"
	domainService "wallet-aggregator/internal/domain/service"
	"wallet-aggregator/internal/pkg/apperrors"

	"github.com/gorilla/websocket"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
)

// Compile-time check
var _ domainService.RPCChecker = (*Checker)(nil)

// Checker probes RPC endpoints with eth_blockNumber over HTTP(S) or WS(S).
type Checker struct {
	client  *fasthttp.Client
	timeout time.Duration
	logger  *zap.Logger
}

// NewChecker creates a new RPC checker instance. timeout bounds a single probe.
func NewChecker(timeout time.Duration, logger *zap.Logger) *Checker {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Checker{
		client:  &fasthttp.Client{ReadTimeout: timeout},
		timeout: timeout,
		logger:  logger.Named("RPCCheckerAdapter"),
	}
}

// checkPayload is the standard JSON-RPC request to check node health.
var checkPayload = []byte(`{"jsonrpc":"2.0","method":"eth_blockNumber","params":[],"id":1}`)

// CheckRPC determines the protocol and calls the appropriate check function.
func (c *Checker) CheckRPC(ctx context.Context, rpcURL entity.RPCURL) (bool, time.Duration, error) {
	startTime := time.Now()
	rawURL := rpcURL.String()

	switch entity.ProtocolOf(rawURL) {
	case entity.ProtocolWS, entity.ProtocolWSS:
		return c.checkWS(ctx, rawURL, startTime)
	case entity.ProtocolHTTP, entity.ProtocolHTTPS:
		return c.checkHTTP(ctx, rawURL, startTime)
	default:
		return false, 0, fmt.Errorf("%w: unsupported protocol in URL %s", apperrors.ErrInvalidInput, rawURL)
	}
}

// checkHTTP performs the JSON-RPC check over HTTP/HTTPS.
func (c *Checker) checkHTTP(ctx context.Context, rpcURL string, startTime time.Time) (bool, time.Duration, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(rpcURL)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	req.SetBody(checkPayload)

	timeout := effectiveTimeout(ctx, c.timeout)
	requestErr := c.client.DoTimeout(req, resp, timeout)
	latency := time.Since(startTime)

	if requestErr != nil {
		if errors.Is(requestErr, fasthttp.ErrTimeout) {
			return false, latency, fmt.Errorf("%w: http request to %s timed out after %v",
				apperrors.ErrTimeout, rpcURL, timeout,
			)
		}
		return false, latency, fmt.Errorf("%w: http request to %s failed: %v",
			apperrors.ErrTransport, rpcURL, requestErr,
		)
	}

	if resp.StatusCode() != fasthttp.StatusOK {
		return false, latency, fmt.Errorf("%w: rpc %s returned non-OK http status: %d",
			apperrors.ErrTransport, rpcURL, resp.StatusCode(),
		)
	}

	if err := validateJSONRPCResponse(resp.Body()); err != nil {
		return false, latency, fmt.Errorf("rpc %s: %w", rpcURL, err)
	}
	return true, latency, nil
}

// checkWS performs the JSON-RPC check over WS/WSS.
func (c *Checker) checkWS(ctx context.Context, rpcURL string, startTime time.Time) (bool, time.Duration, error) {
	timeout := effectiveTimeout(ctx, c.timeout)
	dialer := websocket.Dialer{
		Proxy:            http.ProxyFromEnvironment,
		HandshakeTimeout: timeout,
	}

	conn, _, err := dialer.DialContext(ctx, rpcURL, nil)
	if err != nil {
		return false, time.Since(startTime), wsError(ctx, "dial", rpcURL, err)
	}
	defer conn.Close()

	deadline := time.Now().Add(timeout)
	_ = conn.SetWriteDeadline(deadline)
	_ = conn.SetReadDeadline(deadline)

	if err := conn.WriteMessage(websocket.TextMessage, checkPayload); err != nil {
		return false, time.Since(startTime), wsError(ctx, "write", rpcURL, err)
	}

	_, message, err := conn.ReadMessage()
	latency := time.Since(startTime)
	if err != nil {
		return false, latency, wsError(ctx, "read", rpcURL, err)
	}

	c.logger.Debug("WS received response", zap.String("url", rpcURL), zap.ByteString("body", message))

	if err := validateJSONRPCResponse(message); err != nil {
		return false, latency, fmt.Errorf("rpc %s: %w", rpcURL, err)
	}
	return true, latency, nil
}

func wsError(ctx context.Context, stage, rpcURL string, err error) error {
	var netErr interface{ Timeout() bool }
	if errors.Is(ctx.Err(), context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return fmt.Errorf("%w: ws %s %s timed out: %v", apperrors.ErrTimeout, stage, rpcURL, err)
	}
	return fmt.Errorf("%w: ws %s %s failed: %v", apperrors.ErrTransport, stage, rpcURL, err)
}

// validateJSONRPCResponse checks that body is a successful JSON-RPC 2.0 response.
func validateJSONRPCResponse(body []byte) error {
	var rpcResp JSONRPCResponse
	if err := json.Unmarshal(body, &rpcResp); err != nil {
		return fmt.Errorf("%w: invalid JSON response: %v", apperrors.ErrTransport, err)
	}
	if rpcResp.Error != nil {
		return fmt.Errorf("%w: %w", apperrors.ErrTransport, rpcResp.Error)
	}
	if rpcResp.Jsonrpc != "2.0" || !rpcResp.hasResult() {
		return fmt.Errorf("%w: invalid JSON-RPC structure", apperrors.ErrTransport)
	}
	return nil
}
