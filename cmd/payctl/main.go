package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/propdesk/fundedpay/internal/cli"
	"github.com/propdesk/fundedpay/internal/gateway"
	"github.com/propdesk/fundedpay/internal/orders"
	"github.com/propdesk/fundedpay/internal/payments"
	"github.com/propdesk/fundedpay/pkg/config"
	"github.com/propdesk/fundedpay/pkg/db"
	"github.com/propdesk/fundedpay/pkg/logger"
)

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cli.NewRootCommand(newRegistry).ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func newRegistry(ctx context.Context, opts *cli.RootOptions, listener func(payments.Snapshot)) (cli.SessionRegistry, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}

	logg := logger.Nop()
	if opts.Verbose {
		logg = logger.New(logger.Options{
			ServiceName: "payctl",
			Level:       zerolog.DebugLevel,
			Output:      os.Stderr,
			Format:      "console",
		})
	}

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		return nil, nil, fmt.Errorf("connect database: %w", err)
	}
	cleanup := func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}

	gatewayClient, err := gateway.NewHTTPClient(cfg.Gateway, nil, nil)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	loader, err := payments.NewLoader(orders.NewRepository(dbClient.DB()), gatewayClient, cfg.Session.Window)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	registry, err := payments.NewRegistry(payments.RegistryParams{
		Loader:   loader,
		Gateway:  gatewayClient,
		Session:  cfg.Session,
		Logger:   logg,
		Listener: listener,
	})
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	return registry, cleanup, nil
}
