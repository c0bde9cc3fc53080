package explorer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"wallet-aggregator/internal/config"
	"wallet-aggregator/internal/domain/entity"
	domainService "wallet-aggregator/internal/domain/service"
	"wallet-aggregator/internal/pkg/apperrors"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
)

// Compile-time check
var _ domainService.ExplorerTransport = (*Etherscan)(nil)

const noTransactionsMessage = "No transactions found"

// apiResponse is the common envelope of Etherscan-style API responses.
// result is a list on success and a string on failure.
type apiResponse struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Result  json.RawMessage `json:"result"`
}

// Etherscan queries an Etherscan v2 compatible API for a single chain.
type Etherscan struct {
	client  *fasthttp.Client
	baseURL string
	apiKey  string
	chainID uint64
	timeout time.Duration
	logger  *zap.Logger
}

// NewEtherscan creates an explorer transport for the chain with the given id.
func NewEtherscan(cfg config.ExplorerConfig, chainID uint64, logger *zap.Logger) *Etherscan {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Etherscan{
		client:  &fasthttp.Client{ReadTimeout: timeout},
		baseURL: cfg.URL,
		apiKey:  cfg.APIKey,
		chainID: chainID,
		timeout: timeout,
		logger:  logger.Named("Etherscan").With(zap.Uint64("chainId", chainID)),
	}
}

// TxList returns the normal transactions of an address.
func (e *Etherscan) TxList(ctx context.Context, params entity.TxListParams) ([]entity.Transaction, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(e.baseURL)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set(fasthttp.HeaderAcceptEncoding, "gzip")

	args := req.URI().QueryArgs()
	args.Set("chainid", strconv.FormatUint(e.chainID, 10))
	args.Set("module", "account")
	args.Set("action", "txlist")
	args.Set("address", params.Address)
	args.Set("startblock", strconv.FormatUint(params.StartBlock, 10))
	args.Set("endblock", strconv.FormatUint(params.EndBlock, 10))
	args.Set("page", strconv.FormatUint(params.Page, 10))
	args.Set("offset", strconv.FormatUint(params.Offset, 10))
	args.Set("sort", string(params.Sort))
	if e.apiKey != "" {
		args.Set("apikey", e.apiKey)
	}

	body, err := e.do(ctx, req, resp)
	if err != nil {
		return nil, err
	}

	var envelope apiResponse
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("%w: explorer returned invalid JSON: %w", apperrors.ErrTransport, err)
	}

	if envelope.Status != "1" {
		if envelope.Message == noTransactionsMessage {
			e.logger.Debug("No transactions found", zap.String("address", params.Address))
			return []entity.Transaction{}, nil
		}
		return nil, fmt.Errorf("%w: explorer error: %s: %s",
			apperrors.ErrTransport, envelope.Message, resultText(envelope.Result),
		)
	}

	var txs []entity.Transaction
	if err := json.Unmarshal(envelope.Result, &txs); err != nil {
		return nil, fmt.Errorf("%w: decode txlist result: %w", apperrors.ErrTransport, err)
	}
	if txs == nil {
		txs = []entity.Transaction{}
	}
	return txs, nil
}

func (e *Etherscan) do(ctx context.Context, req *fasthttp.Request, resp *fasthttp.Response) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrTransport, err)
	}

	timeout := e.timeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			timeout = max(remaining, time.Nanosecond)
		}
	}

	if err := e.client.DoTimeout(req, resp, timeout); err != nil {
		if errors.Is(err, fasthttp.ErrTimeout) {
			return nil, fmt.Errorf("%w: %w: explorer request after %v", apperrors.ErrTransport, apperrors.ErrTimeout, timeout)
		}
		return nil, fmt.Errorf("%w: explorer request failed: %w", apperrors.ErrTransport, err)
	}

	if resp.StatusCode() != fasthttp.StatusOK {
		return nil, fmt.Errorf("%w: explorer returned http status %d", apperrors.ErrTransport, resp.StatusCode())
	}

	if strings.EqualFold(string(resp.Header.Peek(fasthttp.HeaderContentEncoding)), "gzip") {
		body, err := resp.BodyGunzip()
		if err != nil {
			return nil, fmt.Errorf("%w: decompress explorer response: %w", apperrors.ErrTransport, err)
		}
		return body, nil
	}
	return resp.Body(), nil
}

// resultText renders an error result, which is usually a JSON string.
func resultText(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}
