package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"

	tourpay "github.com/vijay-talsangi/tourist-app"
	"github.com/vijay-talsangi/tourist-app/history"
	"github.com/vijay-talsangi/tourist-app/internal/config"
	"github.com/vijay-talsangi/tourist-app/internal/server"
	"github.com/vijay-talsangi/tourist-app/logger"
	"github.com/vijay-talsangi/tourist-app/metrics"
	"github.com/vijay-talsangi/tourist-app/wallet"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewZapLogger(cfg.LogLevel)

	ctx := context.Background()

	opts := []tourpay.Option{
		tourpay.WithLogger(log),
		tourpay.WithInclusionTimeout(cfg.InclusionTimeout),
	}
	if cfg.EnableMetrics {
		opts = append(opts, tourpay.WithMetrics(metrics.NewPrometheusRecorder()))
	}

	var cache *redis.Client
	if cfg.RedisURL != "" {
		rdbOpts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.Error("parse redis url", map[string]any{"error": err.Error()})
			os.Exit(1)
		}
		cache = redis.NewClient(rdbOpts)
		if err := cache.Ping(ctx).Err(); err != nil {
			log.Error("connect redis", map[string]any{"error": err.Error()})
			os.Exit(1)
		}
		defer func() {
			if err := cache.Close(); err != nil {
				log.Warn("close redis", map[string]any{"error": err.Error()})
			}
		}()
		opts = append(opts, tourpay.WithHistoryStore(history.NewRedisStore(cache, cfg.HistoryTTL)))
	}

	pay, err := tourpay.New(ctx, cfg.Core(), opts...)
	if err != nil {
		log.Error("build payment core", map[string]any{"error": err.Error()})
		os.Exit(1)
	}
	defer pay.Close()

	if cfg.WalletKey != "" {
		signer, err := wallet.NewKeyedSigner(cfg.WalletKey)
		if err != nil {
			log.Error("load wallet key", map[string]any{"error": err.Error()})
			os.Exit(1)
		}
		if err := pay.Connect(signer, cfg.ChainID); err != nil {
			log.Error("connect wallet session", map[string]any{"error": err.Error()})
			os.Exit(1)
		}
		log.Info("wallet session connected", map[string]any{"address": signer.Address().Hex()})
	}

	srv, err := server.New(cfg, pay, log)
	if err != nil {
		log.Error("build server", map[string]any{"error": err.Error()})
		os.Exit(1)
	}

	srvErrCh := make(chan error, 1)
	go func() {
		srvErrCh <- srv.Listen()
	}()

	log.Info("server listening", map[string]any{"addr": cfg.Address(), "chain_id": cfg.ChainID})

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info("shutdown signal received", map[string]any{"signal": sig.String()})
	case err := <-srvErrCh:
		if err != nil {
			log.Error("server error", map[string]any{"error": err.Error()})
			os.Exit(1)
		}
		return
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownPeriod)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", map[string]any{"error": err.Error()})
		os.Exit(1)
	}

	log.Info("server exited cleanly", nil)
}
