package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"wallet-aggregator/internal/bootstrap"
	"wallet-aggregator/internal/config"
	"wallet-aggregator/internal/logger"
	"wallet-aggregator/internal/pkg/units"

	"github.com/ethereum/go-ethereum/common"
	"github.com/urfave/cli/v2"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const shutdownTimeout = 10 * time.Second

func main() {
	app := &cli.App{
		Name:  "wallet-aggregator",
		Usage: "Multi-chain wallet balances and transaction history",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Value: "configs", Usage: "Directory containing config.yaml"},
			&cli.StringFlag{Name: "chains", Usage: "Chain descriptor file (JSON or YAML)"},
			&cli.StringSliceFlag{Name: "token-dir", Usage: "Directory with {shortName}-tokens.json files (repeatable)"},
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Start the HTTP API",
				Action: serve,
			},
			{
				Name:   "balances",
				Usage:  "Print native balances of an address on every chain",
				Flags:  []cli.Flag{addressFlag()},
				Action: printBalances,
			},
			{
				Name:   "tokens",
				Usage:  "Print token balances of an address on every chain",
				Flags:  []cli.Flag{addressFlag()},
				Action: printTokens,
			},
			{
				Name:  "transactions",
				Usage: "Print a page of transactions of an address on every chain",
				Flags: []cli.Flag{
					addressFlag(),
					&cli.Uint64Flag{Name: "page", Value: 1, Usage: "Page number, starting at 1"},
					&cli.Uint64Flag{Name: "offset", Value: 10, Usage: "Page size"},
				},
				Action: printTransactions,
			},
			{
				Name:  "probe",
				Usage: "Check every candidate RPC endpoint of a chain",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "chain", Required: true, Usage: "Chain short name"},
				},
				Action: probe,
			},
		},
		DefaultCommand: "serve",
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func addressFlag() cli.Flag {
	return &cli.StringFlag{Name: "address", Aliases: []string{"a"}, Required: true, Usage: "Wallet address"}
}

// loadConfig reads the configuration and applies command line overrides.
func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if c.IsSet("chains") {
		cfg.Chains.File = c.String("chains")
		cfg.Chains.URL = ""
	}
	if c.IsSet("token-dir") {
		cfg.Chains.TokenDirs = c.StringSlice("token-dir")
	}
	return cfg, nil
}

// setup builds the application. CLI commands log to stderr so stdout only carries results.
func setup(c *cli.Context, sink zapcore.WriteSyncer) (*bootstrap.App, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, err
	}

	zl, err := logger.NewLogger(cfg.Logger, sink)
	if err != nil {
		return nil, fmt.Errorf("failed to setup logger: %w", err)
	}

	app, err := bootstrap.New(c.Context, cfg, zl)
	if err != nil {
		_ = zl.Sync()
		return nil, err
	}
	return app, nil
}

func serve(c *cli.Context) error {
	app, err := setup(c, nil)
	if err != nil {
		return err
	}
	defer app.Logger.Sync() //nolint:errcheck
	defer app.Close()       //nolint:errcheck

	server := &fasthttp.Server{
		Handler: app.Handler(),
		Name:    app.Config.App.Name,
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	serverAddr := ":" + app.Config.Server.Port
	errCh := make(chan error, 1)
	go func() {
		app.Logger.Info("Starting HTTP server",
			zap.String("address", serverAddr), zap.String("version", app.Config.App.Version),
		)
		errCh <- server.ListenAndServe(serverAddr)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server stopped: %w", err)
	case <-ctx.Done():
	}

	app.Logger.Info("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.ShutdownWithContext(shutdownCtx); err != nil {
		return fmt.Errorf("http server shutdown: %w", err)
	}
	return nil
}

func cliAddress(c *cli.Context) (common.Address, error) {
	raw := c.String("address")
	if !common.IsHexAddress(raw) {
		return common.Address{}, fmt.Errorf("invalid address %q", raw)
	}
	return common.HexToAddress(raw), nil
}

func printBalances(c *cli.Context) error {
	address, err := cliAddress(c)
	if err != nil {
		return err
	}
	app, err := setup(c, zapcore.Lock(os.Stderr))
	if err != nil {
		return err
	}
	defer app.Close() //nolint:errcheck

	decimals := make(map[string]uint8)
	for _, chain := range app.Wallets.Chains() {
		decimals[chain.Key] = chain.Currency.Decimals
	}

	out := make(map[string]string)
	for key, balance := range app.Wallets.NativeBalances(c.Context, address) {
		out[key] = units.Format(balance, decimals[key])
	}
	return printJSON(out)
}

func printTokens(c *cli.Context) error {
	address, err := cliAddress(c)
	if err != nil {
		return err
	}
	app, err := setup(c, zapcore.Lock(os.Stderr))
	if err != nil {
		return err
	}
	defer app.Close() //nolint:errcheck

	out := make(map[string]map[string]string)
	for key, balances := range app.Wallets.AllTokenBalances(c.Context, address) {
		byToken := make(map[string]string, len(balances))
		for _, b := range balances {
			byToken[b.Token.Symbol+" "+b.Token.Address.Hex()] = units.Format(b.Balance, b.Token.Decimals)
		}
		out[key] = byToken
	}
	return printJSON(out)
}

func printTransactions(c *cli.Context) error {
	address, err := cliAddress(c)
	if err != nil {
		return err
	}
	app, err := setup(c, zapcore.Lock(os.Stderr))
	if err != nil {
		return err
	}
	defer app.Close() //nolint:errcheck

	pages, err := app.Wallets.AllTransactions(c.Context, address, c.Uint64("page"), c.Uint64("offset"))
	if err != nil {
		return err
	}
	return printJSON(pages)
}

func probe(c *cli.Context) error {
	app, err := setup(c, zapcore.Lock(os.Stderr))
	if err != nil {
		return err
	}
	defer app.Close() //nolint:errcheck

	details, err := app.Endpoints.CheckedRPCs(c.Context, c.String("chain"))
	if err != nil {
		return err
	}
	return printJSON(details)
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
