package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jessevdk/go-flags"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/NCrashed/mutinynet-indexer/internal/chain/headers"
	"github.com/NCrashed/mutinynet-indexer/internal/indexer"
	"github.com/NCrashed/mutinynet-indexer/internal/metrics"
	"github.com/NCrashed/mutinynet-indexer/internal/model"
	"github.com/NCrashed/mutinynet-indexer/internal/p2p"
	"github.com/NCrashed/mutinynet-indexer/internal/pubsub"
	"github.com/NCrashed/mutinynet-indexer/internal/repository/clickhouse"
	"github.com/NCrashed/mutinynet-indexer/internal/transport"
	"github.com/NCrashed/mutinynet-indexer/pkg/safe"
)

type config struct {
	Network          string `long:"network" short:"n" env:"VAULT_INDEXER_NETWORK" description:"network to index (mutinynet, signet, regtest)" default:"mutinynet"`
	Address          string `long:"address" short:"a" env:"VAULT_INDEXER_ADDRESS" description:"node address ip:port or domain:port" default:"45.79.52.207:38333"`
	Database         string `long:"database" short:"d" env:"VAULT_INDEXER_DATABASE" description:"ClickHouse DSN" default:"clickhouse://localhost:9000/default"`
	Batch            uint32 `long:"batch" short:"b" env:"VAULT_INDEXER_BATCH" description:"blocks per download window" default:"500"`
	StartHeight      uint32 `long:"start-height" short:"s" env:"VAULT_INDEXER_START_HEIGHT" description:"height scanning starts from; headers still sync from genesis" default:"1527651"`
	WebsocketAddress string `long:"websocket-address" short:"w" env:"VAULT_INDEXER_WEBSOCKET_ADDRESS" description:"WebSocket service bind address" default:"127.0.0.1:39987"`
	Rescan           bool   `long:"rescan" env:"VAULT_INDEXER_RESCAN" description:"rescan blocks from start height without redownloading headers"`
	MetricsAddr      string `long:"metrics-addr" env:"VAULT_INDEXER_METRICS_ADDR" description:"address for metrics server" default:":2112"`
}

func main() {
	cfg := config{}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger, err := zap.NewDevelopment()
	if err != nil {
		panic("can't initialize zap logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync()
	}()

	if _, err := flags.ParseArgs(&cfg, os.Args); err != nil {
		var ferr *flags.Error
		if errors.As(err, &ferr) && ferr.Type == flags.ErrHelp {
			return
		}
		logger.Fatal("failed to parse flags", zap.Error(err))
	}

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal("vault indexer failed", zap.Error(err))
	}
}

func run(ctx context.Context, cfg config, logger *zap.Logger) error {
	network, err := model.ParseNetwork(cfg.Network)
	if err != nil {
		return err
	}
	params, err := network.ChainParams()
	if err != nil {
		return err
	}
	announceHeight, err := safe.Int32(cfg.StartHeight)
	if err != nil {
		return fmt.Errorf("start height: %w", err)
	}

	startMetricsServer(ctx, cfg.MetricsAddr, logger)

	repo, err := clickhouse.NewRepository(cfg.Database, metrics.NewClickhouseRepository())
	if err != nil {
		return fmt.Errorf("init repository: %w", err)
	}
	defer func() {
		_ = repo.Close()
	}()

	cache := headers.New(params.GenesisBlock.Header, 0, params.PowLimit, logger)

	bus := pubsub.New[model.VaultEvent](logger, pubsub.DefaultSubscriberBacklog)
	defer bus.Close()

	sessionMetrics := metrics.NewSession(network)
	dial := func(ctx context.Context) (indexer.Session, error) {
		session, err := p2p.Dial(ctx, p2p.Config{
			Address:     cfg.Address,
			Magic:       params.Net,
			StartHeight: announceHeight,
			Logger:      logger,
			Metrics:     sessionMetrics,
		})
		if err != nil {
			return nil, err
		}
		return session, nil
	}

	svc, err := indexer.NewService(
		indexer.Config{
			Network:     network,
			StartHeight: cfg.StartHeight,
			BatchSize:   cfg.Batch,
			Rescan:      cfg.Rescan,
		},
		cache,
		repo,
		bus,
		dial,
		metrics.NewIndexer(network),
		logger,
	)
	if err != nil {
		return err
	}

	ws, err := transport.NewServer(
		cfg.WebsocketAddress,
		network,
		repo,
		bus,
		metrics.NewWebsocket(network),
		logger,
	)
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		if err := ws.Run(ctx); err != nil {
			errCh <- fmt.Errorf("websocket service: %w", err)
		}
	}()

	go func() {
		errCh <- svc.Run(ctx)
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
		return nil
	case err := <-errCh:
		return err
	}
}

func startMetricsServer(ctx context.Context, addr string, logger *zap.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info("starting metrics server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", zap.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("failed to shutdown metrics server", zap.Error(err))
		}
	}()
}
