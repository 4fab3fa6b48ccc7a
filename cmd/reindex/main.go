// Command reindex sweeps every record kind, removing dangling secondary
// index entries and rewriting missing or stale ones. Run it after a crash
// mid-write or a bulk import.
package main

import (
	"context"
	"os"
	"time"

	"go.uber.org/zap"

	"skillbridge.org/internal/config"
	"skillbridge.org/internal/model"
	"skillbridge.org/internal/obs"
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

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
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
		logger.Fatal("reindex needs a durable backend", zap.String("backend", cfg.StoreBackend))
	}

	st := store.NewIndexed(kv)
	for _, kind := range model.Kinds() {
		removed, rewritten, err := st.RebuildIndexes(ctx, kind)
		if err != nil {
			logger.Fatal("rebuild", zap.String("kind", string(kind)), zap.Error(err))
		}
		logger.Info("rebuilt indexes",
			zap.String("kind", string(kind)),
			zap.Int("removed", removed),
			zap.Int("rewritten", rewritten),
		)
	}
}
