// Package redis backs the record store with a Redis instance. Keys map
// one-to-one onto Redis keys; prefix listings use SCAN MATCH.
package redis

import (
	"context"
	"errors"
	"fmt"
	"sort"

	goredis "github.com/redis/go-redis/v9"

	"skillbridge.org/internal/store"
)

// KV implements store.KV over a go-redis client.
type KV struct {
	client *goredis.Client
}

var _ store.KV = (*KV)(nil)

// Open parses a redis URL, connects and pings.
func Open(ctx context.Context, url string) (*KV, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}
	client := goredis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &KV{client: client}, nil
}

// Health reports connection liveness for readiness probes.
func (s *KV) Health(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *KV) Close() error { return s.client.Close() }

func (s *KV) Get(ctx context.Context, key string) ([]byte, error) {
	v, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, store.ErrNotFound
	}
	return v, err
}

func (s *KV) Set(ctx context.Context, key string, value []byte) error {
	return s.client.Set(ctx, key, value, 0).Err()
}

func (s *KV) Delete(ctx context.Context, key string) error {
	n, err := s.client.Del(ctx, key).Result()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *KV) ListByPrefix(ctx context.Context, prefix string) ([]store.Entry, error) {
	keys, err := s.scanKeys(ctx, prefix)
	if err != nil {
		return nil, err
	}
	if len(keys) == 0 {
		return nil, nil
	}
	// SCAN order is unspecified; sort so listings match the other backends.
	sort.Strings(keys)

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}
	out := make([]store.Entry, 0, len(keys))
	for i, key := range keys {
		raw, ok := values[i].(string)
		if !ok {
			// Deleted between SCAN and MGET; a dangling key is not an error.
			continue
		}
		out = append(out, store.Entry{Key: key, Value: []byte(raw)})
	}
	return out, nil
}

func (s *KV) Count(ctx context.Context, prefix string) (int, error) {
	keys, err := s.scanKeys(ctx, prefix)
	if err != nil {
		return 0, err
	}
	return len(keys), nil
}

func (s *KV) scanKeys(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	iter := s.client.Scan(ctx, 0, escapeMatch(prefix)+"*", 0).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	return keys, iter.Err()
}

// escapeMatch quotes glob metacharacters so a key segment cannot widen the
// SCAN pattern.
func escapeMatch(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '*', '?', '[', ']', '\\':
			out = append(out, '\\')
		}
		out = append(out, s[i])
	}
	return string(out)
}
