package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"woofi/config"
	"woofi/core"
	"woofi/core/events"
	"woofi/crypto"
	"woofi/observability/logging"
	"woofi/rpc"
	"woofi/storage"
)

func main() {
	configFile := flag.String("config", "./config.toml", "Path to the configuration file")
	envFile := flag.String("env-file", ".env", "Optional dotenv file loaded before the configuration")
	flag.Parse()

	if err := godotenv.Load(*envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Failed to load %s: %v\n", *envFile, err)
		os.Exit(1)
	}

	cfg, err := config.Load(*configFile)
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	logger := logging.SetupWithFile("woofid", cfg.LogEnv, logging.FileOptions{Path: cfg.LogFile})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("woofid stopped with error", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("woofid stopped")
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	allocs, err := genesisAllocs(cfg.Genesis.Alloc)
	if err != nil {
		return err
	}

	db, err := storage.NewLevelDB(cfg.DataDir)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	node, err := core.NewNode(db, core.Config{
		ChainID:       cfg.ChainID,
		PausedModules: cfg.PausedModules,
		Genesis:       allocs,
	})
	if err != nil {
		return fmt.Errorf("create node: %w", err)
	}
	node.SetLogger(logger)
	node.SetEmitter(logEmitter{logger: logger})

	logOperator(cfg, logger)
	logger.Info("ledger ready",
		slog.String("network", cfg.NetworkName),
		slog.Uint64("chain_id", cfg.ChainID),
		slog.String("root", node.StateRoot().Hex()))

	if addr := strings.TrimSpace(cfg.MetricsAddress); addr != "" && addr != cfg.RPCAddress {
		go serveMetrics(ctx, addr, logger)
	}

	server := rpc.NewServer(node, rpc.ServerConfig{
		AuthToken:         cfg.RPC.AuthToken,
		TxPerMinute:       cfg.RPC.TxPerMinute,
		Burst:             cfg.RPC.Burst,
		MaxRequestBytes:   cfg.RPC.MaxRequestBodySize,
		ReadHeaderTimeout: time.Duration(cfg.RPC.ReadHeaderTimeout) * time.Second,
		Logger:            logger,
	})
	return server.Start(ctx, cfg.RPCAddress)
}

func genesisAllocs(entries []config.GenesisAlloc) ([]core.GenesisAlloc, error) {
	out := make([]core.GenesisAlloc, 0, len(entries))
	for i, entry := range entries {
		addr, balance, err := entry.Parse()
		if err != nil {
			return nil, fmt.Errorf("genesis alloc %d: %w", i, err)
		}
		out = append(out, core.GenesisAlloc{Address: addr, Balance: balance})
	}
	return out, nil
}

func logOperator(cfg *config.Config, logger *slog.Logger) {
	if strings.TrimSpace(cfg.OperatorKeystorePath) == "" {
		return
	}
	addr, err := crypto.KeystoreAddress(cfg.OperatorKeystorePath)
	if err != nil {
		logger.Warn("operator keystore not readable", slog.Any("error", err))
		return
	}
	logger.Info("operator identity", slog.String("address", addr.String()))
}

func serveMetrics(ctx context.Context, addr string, logger *slog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	logger.Info("metrics server listening", slog.String("addr", addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("metrics server failed", slog.Any("error", err))
	}
}

type logEmitter struct {
	logger *slog.Logger
}

func (e logEmitter) Emit(evt events.Event) {
	if e.logger == nil || evt == nil {
		return
	}
	attrs := []any{slog.String("type", evt.EventType())}
	if payload := evt.Event(); payload != nil {
		attrs = append(attrs, slog.Any("attributes", payload.Attributes))
	}
	e.logger.Info("ledger event", attrs...)
}
