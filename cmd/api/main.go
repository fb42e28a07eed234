package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/gofiber/fiber/v3"
	"github.com/joho/godotenv"

	"github.com/nulln0ne/uniswap-pair/internal/chain"
	"github.com/nulln0ne/uniswap-pair/internal/config"
	"github.com/nulln0ne/uniswap-pair/internal/contracts"
	"github.com/nulln0ne/uniswap-pair/internal/eth"
	"github.com/nulln0ne/uniswap-pair/internal/handler"
	"github.com/nulln0ne/uniswap-pair/internal/ledger"
	"github.com/nulln0ne/uniswap-pair/internal/logging"
	"github.com/nulln0ne/uniswap-pair/internal/service"
	"github.com/nulln0ne/uniswap-pair/internal/state"
)

// deployer owns the pool's deployment nonces, which fix the pool addresses
// across restarts on the same data dir.
var deployer = common.HexToAddress("0x000000000000000000000000000000000000dE91")

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	_ = godotenv.Load()

	cfg, err := config.FromEnv()
	if err != nil {
		return err
	}

	app := fiber.New()
	logger := logging.NewLogger(cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := state.Open(cfg.DataDir)
	if err != nil {
		return fmt.Errorf("failed to open state: %w", err)
	}
	defer db.Close()

	c, err := chain.New(db, logger)
	if err != nil {
		return fmt.Errorf("failed to open chain: %w", err)
	}
	pool, err := contracts.DeployPool(c, contracts.PoolConfig{
		Deployer: deployer,
		TokenA:   ledger.Metadata{Name: cfg.Token0Symbol, Symbol: cfg.Token0Symbol, Decimals: 18},
		TokenB:   ledger.Metadata{Name: cfg.Token1Symbol, Symbol: cfg.Token1Symbol, Decimals: 18},
		LP:       ledger.Metadata{Name: cfg.LPName, Symbol: cfg.LPSymbol, Decimals: 18},
		FeeTo:    cfg.FeeTo,
	}, logger)
	if err != nil {
		return fmt.Errorf("failed to deploy pool: %w", err)
	}

	rpcServer, err := eth.NewServer(eth.NewBackend(c, logger))
	if err != nil {
		return err
	}
	defer rpcServer.Stop()

	var ethereumClient *ethclient.Client
	if cfg.RPCEndpoint != "" {
		ethereumClient, err = eth.Dial(ctx, cfg.RPCEndpoint)
		if err != nil {
			return fmt.Errorf("failed to connect to Ethereum node: %w", err)
		}
	} else {
		ethereumClient = eth.DialInProc(rpcServer)
	}
	defer ethereumClient.Close()

	estimateService := service.NewEstimateService(logger, ethereumClient)
	estimateHandler := handler.NewEstimateHandler(logger, estimateService)
	app.Get("/estimate", estimateHandler.Handle())

	poolService := service.NewPoolService(logger, c, pool)
	handler.NewPoolHandler(logger, poolService).Register(app)
	app.Post("/rpc", handler.RPC(rpcServer))

	errCh := make(chan error, 1)
	go func() {
		errCh <- app.Listen(cfg.Addr)
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			_ = app.Shutdown()
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Warn("shutdown", "err", err)
	}
	return nil
}
