// Command bootstrap provisions the initial super_admin account. Idempotent:
// rerunning against a store that already has the account is a no-op.
package main

import (
	"context"
	"os"
	"time"

	"go.uber.org/zap"

	"skillbridge.org/internal/config"
	"skillbridge.org/internal/obs"
	"skillbridge.org/internal/service"
	"skillbridge.org/internal/store"
	"skillbridge.org/internal/store/pg"
	"skillbridge.org/internal/store/redis"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}
	logger := obs.InitLogger(cfg.Environment)
	defer func() { _ = logger.Sync() }()

	email := os.Getenv("SKILLBRIDGE_ADMIN_EMAIL")
	password := os.Getenv("SKILLBRIDGE_ADMIN_PASSWORD")
	if email == "" || len(password) < 8 {
		logger.Fatal("SKILLBRIDGE_ADMIN_EMAIL and SKILLBRIDGE_ADMIN_PASSWORD (8+ chars) are required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var kv store.KV
	switch cfg.StoreBackend {
	case config.BackendRedis:
		rkv, err := redis.Open(ctx, cfg.RedisURL)
		if err != nil {
			logger.Fatal("open redis", zap.Error(err))
		}
		defer func() { _ = rkv.Close() }()
		kv = rkv
	case config.BackendPostgres:
		pkv, err := pg.Open(ctx, cfg.PostgresDSN)
		if err != nil {
			logger.Fatal("open postgres", zap.Error(err))
		}
		defer func() { _ = pkv.Close() }()
		kv = pkv
	default:
		logger.Fatal("bootstrap needs a durable backend", zap.String("backend", cfg.StoreBackend))
	}

	svc := service.New(store.NewIndexed(kv), nil)
	account, created, err := svc.Accounts.EnsureAdmin(ctx, email, password)
	if err != nil {
		logger.Fatal("ensure admin", zap.Error(err))
	}
	if created {
		logger.Info("admin account created", zap.String("id", account.ID), zap.String("email", account.Email))
	} else {
		logger.Info("admin account already exists", zap.String("id", account.ID), zap.String("email", account.Email))
	}
}
