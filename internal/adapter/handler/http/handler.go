package http

import (
	"encoding/json"
	"errors"
	"fmt"

	"wallet-aggregator/internal/application/port"
	"wallet-aggregator/internal/domain"
	"wallet-aggregator/internal/domain/entity"
	"wallet-aggregator/internal/pkg/apperrors"

	"github.com/ethereum/go-ethereum/common"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
)

const (
	defaultPage   = 1
	defaultOffset = 10
)

// WalletHandler serves wallet and chain endpoints.
type WalletHandler struct {
	wallets   port.WalletService
	endpoints port.EndpointService
	logger    *zap.Logger
}

// NewWalletHandler creates a new handler.
func NewWalletHandler(wallets port.WalletService, endpoints port.EndpointService, logger *zap.Logger) *WalletHandler {
	return &WalletHandler{
		wallets:   wallets,
		endpoints: endpoints,
		logger:    logger.Named("WalletHandler"),
	}
}

// GetChains lists registered chains.
func (h *WalletHandler) GetChains(ctx *fasthttp.RequestCtx) {
	h.writeJSON(ctx, fasthttp.StatusOK, h.wallets.Chains())
}

// GetChainRPCs reports the health of a chain's candidate RPC endpoints.
func (h *WalletHandler) GetChainRPCs(ctx *fasthttp.RequestCtx) {
	chainKey := userValue(ctx, "chain")
	rpcs, err := h.endpoints.CheckedRPCs(ctx, chainKey)
	if err != nil {
		h.writeError(ctx, err)
		return
	}
	h.writeJSON(ctx, fasthttp.StatusOK, rpcs)
}

// GetWallet returns native and token balances on one chain.
func (h *WalletHandler) GetWallet(ctx *fasthttp.RequestCtx) {
	chainKey := userValue(ctx, "chain")
	address, err := parseAddress(ctx)
	if err != nil {
		h.writeError(ctx, err)
		return
	}

	summary, err := h.wallets.Wallet(ctx, chainKey, address)
	if err != nil {
		h.writeError(ctx, err)
		return
	}
	h.writeJSON(ctx, fasthttp.StatusOK, WalletResponse{
		Chain:   summary.ChainKey,
		Address: summary.Address,
		Native:  toAmount(summary.NativeBalance, summary.Currency),
		Tokens:  toTokenBalances(summary.Tokens),
	})
}

// GetBalance returns the native balance on one chain.
func (h *WalletHandler) GetBalance(ctx *fasthttp.RequestCtx) {
	chainKey := userValue(ctx, "chain")
	address, err := parseAddress(ctx)
	if err != nil {
		h.writeError(ctx, err)
		return
	}

	chain, err := h.wallets.Chain(chainKey)
	if err != nil {
		h.writeError(ctx, err)
		return
	}
	balance, err := h.wallets.NativeBalance(ctx, chainKey, address)
	if err != nil {
		h.writeError(ctx, err)
		return
	}
	h.writeJSON(ctx, fasthttp.StatusOK, BalanceResponse{
		Chain:          chainKey,
		Address:        address.Hex(),
		AmountResponse: toAmount(balance, chain.Currency),
	})
}

// GetTokens returns token holdings on one chain.
func (h *WalletHandler) GetTokens(ctx *fasthttp.RequestCtx) {
	chainKey := userValue(ctx, "chain")
	address, err := parseAddress(ctx)
	if err != nil {
		h.writeError(ctx, err)
		return
	}

	balances, err := h.wallets.TokenBalances(ctx, chainKey, address)
	if err != nil {
		h.writeError(ctx, err)
		return
	}
	h.writeJSON(ctx, fasthttp.StatusOK, TokensResponse{
		Chain:   chainKey,
		Address: address.Hex(),
		Tokens:  toTokenBalances(balances),
	})
}

// GetTransactions returns a page of transactions on one chain.
func (h *WalletHandler) GetTransactions(ctx *fasthttp.RequestCtx) {
	chainKey := userValue(ctx, "chain")
	address, err := parseAddress(ctx)
	if err != nil {
		h.writeError(ctx, err)
		return
	}
	page, offset, err := parsePagination(ctx)
	if err != nil {
		h.writeError(ctx, err)
		return
	}

	result, err := h.wallets.Transactions(ctx, chainKey, address, page, offset)
	if err != nil {
		h.writeError(ctx, err)
		return
	}
	h.writeJSON(ctx, fasthttp.StatusOK, TransactionsResponse{
		Chain:                   chainKey,
		Address:                 address.Hex(),
		TransactionPageResponse: toTransactionPage(result),
	})
}

// GetAllBalances returns native balances on every chain.
func (h *WalletHandler) GetAllBalances(ctx *fasthttp.RequestCtx) {
	address, err := parseAddress(ctx)
	if err != nil {
		h.writeError(ctx, err)
		return
	}

	currencies := make(map[string]entity.Currency)
	for _, chain := range h.wallets.Chains() {
		currencies[chain.Key] = chain.Currency
	}

	balances := h.wallets.NativeBalances(ctx, address)
	out := make(map[string]AmountResponse, len(balances))
	for key, balance := range balances {
		out[key] = toAmount(balance, currencies[key])
	}
	h.writeJSON(ctx, fasthttp.StatusOK, AllBalancesResponse{Address: address.Hex(), Balances: out})
}

// GetAllTokens returns token holdings on every chain that tracks tokens.
func (h *WalletHandler) GetAllTokens(ctx *fasthttp.RequestCtx) {
	address, err := parseAddress(ctx)
	if err != nil {
		h.writeError(ctx, err)
		return
	}

	balances := h.wallets.AllTokenBalances(ctx, address)
	out := make(map[string][]TokenBalanceResponse, len(balances))
	for key, tokens := range balances {
		out[key] = toTokenBalances(tokens)
	}
	h.writeJSON(ctx, fasthttp.StatusOK, AllTokensResponse{Address: address.Hex(), Tokens: out})
}

// GetAllTransactions returns a page of transactions on every chain.
func (h *WalletHandler) GetAllTransactions(ctx *fasthttp.RequestCtx) {
	address, err := parseAddress(ctx)
	if err != nil {
		h.writeError(ctx, err)
		return
	}
	page, offset, err := parsePagination(ctx)
	if err != nil {
		h.writeError(ctx, err)
		return
	}

	pages, err := h.wallets.AllTransactions(ctx, address, page, offset)
	if err != nil {
		h.writeError(ctx, err)
		return
	}
	out := make(map[string]TransactionPageResponse, len(pages))
	for key, p := range pages {
		out[key] = toTransactionPage(p)
	}
	h.writeJSON(ctx, fasthttp.StatusOK, AllTransactionsResponse{Address: address.Hex(), Transactions: out})
}

func userValue(ctx *fasthttp.RequestCtx, name string) string {
	s, _ := ctx.UserValue(name).(string)
	return s
}

func parseAddress(ctx *fasthttp.RequestCtx) (common.Address, error) {
	raw := userValue(ctx, "address")
	if !common.IsHexAddress(raw) {
		return common.Address{}, fmt.Errorf("%w: %q", domain.ErrInvalidAddress, raw)
	}
	return common.HexToAddress(raw), nil
}

// parsePagination reads page and offset, defaulting to 1 and 10.
func parsePagination(ctx *fasthttp.RequestCtx) (uint64, uint64, error) {
	page, err := uintArg(ctx, "page", defaultPage)
	if err != nil {
		return 0, 0, err
	}
	offset, err := uintArg(ctx, "offset", defaultOffset)
	if err != nil {
		return 0, 0, err
	}
	if page < 1 || offset < 1 {
		return 0, 0, domain.ErrInvalidPagination
	}
	return page, offset, nil
}

func uintArg(ctx *fasthttp.RequestCtx, name string, def uint64) (uint64, error) {
	args := ctx.QueryArgs()
	if !args.Has(name) {
		return def, nil
	}
	v, err := args.GetUint(name)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be a positive integer", apperrors.ErrInvalidInput, name)
	}
	return uint64(v), nil
}

// statusFor maps an error to its HTTP status code.
func statusFor(err error) int {
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		return fasthttp.StatusNotFound
	case errors.Is(err, apperrors.ErrInvalidInput):
		return fasthttp.StatusBadRequest
	case errors.Is(err, apperrors.ErrTransport):
		return fasthttp.StatusBadGateway
	default:
		return fasthttp.StatusInternalServerError
	}
}

func (h *WalletHandler) writeError(ctx *fasthttp.RequestCtx, err error) {
	status := statusFor(err)
	message := err.Error()
	if status >= fasthttp.StatusInternalServerError {
		h.logger.Error("Request failed",
			zap.ByteString("uri", ctx.RequestURI()), zap.Int("status", status), zap.Error(err),
		)
		if status == fasthttp.StatusInternalServerError {
			message = "internal server error"
		}
	} else {
		h.logger.Debug("Request rejected",
			zap.ByteString("uri", ctx.RequestURI()), zap.Int("status", status), zap.Error(err),
		)
	}
	h.writeJSON(ctx, status, ErrorResponse{Error: message})
}

func (h *WalletHandler) writeJSON(ctx *fasthttp.RequestCtx, status int, body any) {
	ctx.SetStatusCode(status)
	ctx.SetContentType("application/json")
	if err := json.NewEncoder(ctx).Encode(body); err != nil {
		h.logger.Error("Failed to encode response", zap.Error(err))
	}
}
