package http

import (
	handlerhttp "wallet-aggregator/internal/adapter/handler/http"

	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
)

const welcomeText = "Welcome to the wallet aggregator API"

// NewRouter registers every route and returns the router.
// metricsHandler may be nil, in which case /metrics is not exposed.
func NewRouter(h *handlerhttp.WalletHandler, metricsHandler fasthttp.RequestHandler, logger *zap.Logger) *router.Router {
	r := router.New()
	RegisterRoutes(r, h, metricsHandler, logger)
	return r
}

// RegisterRoutes sets up the wallet API routes, the health check and metrics.
func RegisterRoutes(r *router.Router, h *handlerhttp.WalletHandler, metricsHandler fasthttp.RequestHandler, logger *zap.Logger) {
	logger.Info("Setting up application-specific routes...")

	r.GET("/", func(ctx *fasthttp.RequestCtx) {
		ctx.SetContentType("text/plain; charset=utf-8")
		ctx.SetBodyString(welcomeText)
	})

	api := r.Group("/api")
	api.GET("/chains", h.GetChains)
	api.GET("/chains/{chain}/rpcs", h.GetChainRPCs)
	api.GET("/chains/{chain}/wallet/{address}", h.GetWallet)
	api.GET("/chains/{chain}/wallet/{address}/balance", h.GetBalance)
	api.GET("/chains/{chain}/wallet/{address}/tokens", h.GetTokens)
	api.GET("/chains/{chain}/wallet/{address}/transactions", h.GetTransactions)
	api.GET("/wallet/{address}/balances", h.GetAllBalances)
	api.GET("/wallet/{address}/tokens", h.GetAllTokens)
	api.GET("/wallet/{address}/transactions", h.GetAllTransactions)

	r.GET("/health", func(ctx *fasthttp.RequestCtx) {
		ctx.SetStatusCode(fasthttp.StatusOK)
		ctx.SetBodyString("OK")
	})

	if metricsHandler != nil {
		r.GET("/metrics", metricsHandler)
	}

	logger.Info("All routes registered.")
}
