// Package bootstrap wires configuration, adapters and services into a running application.
package bootstrap

import (
	"context"
	"errors"
	"fmt"

	deliveryhttp "wallet-aggregator/internal/adapter/delivery/http"
	"wallet-aggregator/internal/adapter/explorer"
	handlerhttp "wallet-aggregator/internal/adapter/handler/http"
	"wallet-aggregator/internal/adapter/rpc"
	"wallet-aggregator/internal/adapter/storage/chainlist"
	"wallet-aggregator/internal/adapter/storage/memory"
	"wallet-aggregator/internal/adapter/storage/postgres"
	"wallet-aggregator/internal/application"
	"wallet-aggregator/internal/application/port"
	"wallet-aggregator/internal/config"
	"wallet-aggregator/internal/domain/entity"
	domainRepo "wallet-aggregator/internal/domain/repository"
	domainService "wallet-aggregator/internal/domain/service"
	"wallet-aggregator/internal/metrics"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
)

// App holds the wired application.
type App struct {
	Config    *config.Config
	Logger    *zap.Logger
	Registry  *application.ClientRegistry
	Wallets   port.WalletService
	Endpoints port.EndpointService
	Metrics   *metrics.Collector

	closers []func() error
}

// New loads chain descriptors, builds the client registry and the services on top of it.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	chains, err := chainlist.NewRepository(cfg.Chains, logger).GetAllChains(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load chain descriptors: %w", err)
	}

	collector := metrics.NewCollector()
	registry := application.BuildRegistry(chains, cfg.Chains.TokenDirs, NewTransportFactory(cfg, logger), logger, collector)
	if registry.Len() == 0 {
		logger.Warn("No chain client could be built; every wallet query will be empty",
			zap.Int("descriptors", len(chains)),
		)
	}
	logger.Info("Client registry ready", zap.Strings("chains", registry.Keys()))

	app := &App{
		Config:   cfg,
		Logger:   logger,
		Registry: registry,
		Metrics:  collector,
	}

	var txRepo domainRepo.TransactionRepository
	if cfg.Storage.Enabled {
		db, err := postgres.Open(cfg.Storage.DSN, logger)
		if err != nil {
			return nil, err
		}
		repo, err := postgres.NewTransactionRepository(db, logger)
		if err != nil {
			if sqlDB, dbErr := db.DB(); dbErr == nil {
				_ = sqlDB.Close()
			}
			return nil, err
		}
		app.closers = append(app.closers, repo.Close)
		txRepo = repo
		logger.Info("Transaction storage enabled")
	}

	app.Wallets = application.NewWalletService(registry, txRepo, logger)
	app.Endpoints = application.NewEndpointService(
		registry,
		memory.NewCacheRepository(*cfg, logger),
		rpc.NewChecker(cfg.Checker.GetTimeout(), logger),
		logger,
		cfg.Checker,
	)
	return app, nil
}

// NewTransportFactory creates a JSON-RPC transport and an explorer client per chain.
func NewTransportFactory(cfg *config.Config, logger *zap.Logger) application.TransportFactory {
	return func(chain entity.Chain, rpcURL entity.RPCURL) (domainService.RPCTransport, domainService.ExplorerTransport, error) {
		if cfg.Explorer.URL == "" {
			return nil, nil, errors.New("explorer url is not configured")
		}
		return rpc.NewTransport(rpcURL, cfg.RPC.Timeout, logger),
			explorer.NewEtherscan(cfg.Explorer, chain.ChainID, logger),
			nil
	}
}

// Handler returns the HTTP handler with CORS and request logging applied.
func (a *App) Handler() fasthttp.RequestHandler {
	h := handlerhttp.NewWalletHandler(a.Wallets, a.Endpoints, a.Logger)
	r := deliveryhttp.NewRouter(h, a.Metrics.Handler(), a.Logger)
	return handlerhttp.Chain(r.Handler,
		handlerhttp.Logging(a.Logger),
		handlerhttp.CORS(a.Config.Server.AllowedOrigins),
	)
}

// Close releases resources held by the application.
func (a *App) Close() error {
	var errs []error
	for _, closeFn := range a.closers {
		if err := closeFn(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
