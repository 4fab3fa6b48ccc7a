package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"skillbridge.org/internal/auth"
	"skillbridge.org/internal/config"
	"skillbridge.org/internal/httpapi"
	"skillbridge.org/internal/obs"
	"skillbridge.org/internal/service"
	"skillbridge.org/internal/store"
	"skillbridge.org/internal/store/memory"
	"skillbridge.org/internal/store/pg"
	"skillbridge.org/internal/store/redis"
	"skillbridge.org/internal/verify"
)

var (
	version = "0.3.1"
	commit  = "dev"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		// no logger yet
		os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}

	logger := obs.InitLogger(cfg.Environment)
	defer func() { _ = logger.Sync() }()
	obs.Init()
	obs.InitBuildInfo(version, commit)

	ctx := context.Background()

	var (
		kv     store.KV
		probe  func(context.Context) error
		closer func() error
	)
	switch cfg.StoreBackend {
	case config.BackendRedis:
		rkv, err := redis.Open(ctx, cfg.RedisURL)
		if err != nil {
			logger.Fatal("open redis", zap.Error(err))
		}
		kv, probe, closer = rkv, rkv.Health, rkv.Close
	case config.BackendPostgres:
		pkv, err := pg.Open(ctx, cfg.PostgresDSN)
		if err != nil {
			logger.Fatal("open postgres", zap.Error(err))
		}
		kv, probe, closer = pkv, pkv.DB().PingContext, pkv.Close
	default:
		kv = memory.New()
	}

	var verifier verify.Verifier
	if cfg.VerifierURL != "" {
		verifier = verify.NewHTTPVerifier(cfg.VerifierURL)
	}

	tokens, err := auth.NewTokenService(cfg.AuthSecret, auth.WithTTL(cfg.TokenTTL))
	if err != nil {
		logger.Fatal("token service", zap.Error(err))
	}

	svc := service.New(store.NewIndexed(kv), verifier)
	api := httpapi.New(svc, tokens, httpapi.Options{
		Version:            version,
		RateLimitPerSecond: cfg.RateLimitPerSecond,
		RateLimitBurst:     cfg.RateLimitBurst,
		ReadyProbe:         probe,
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           api.Handler(),
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	logger.Info("starting skillbridge-api",
		zap.String("version", version),
		zap.String("addr", cfg.Addr),
		zap.String("backend", cfg.StoreBackend),
	)
	obs.SetReady(true)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("listen", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	<-stop
	logger.Info("shutting down")
	obs.SetReady(false)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_ = srv.Shutdown(shutdownCtx)
	if closer != nil {
		_ = closer()
	}
	logger.Info("stopped")
}
