// Package pg backs the record store with a single Postgres key/value table.
// The store deliberately does not use relational features beyond the primary
// key: index maintenance stays in the Indexed wrapper so behavior matches the
// other backends.
package pg

import (
	"context"
	"database/sql"
	"errors"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"skillbridge.org/internal/store"
)

const schema = `
create table if not exists kv_records (
	k text primary key,
	v bytea not null,
	updated_at timestamptz not null default now()
)`

// KV implements store.KV over Postgres.
type KV struct {
	db *sql.DB
}

var _ store.KV = (*KV)(nil)

// Open connects, tunes the pool and ensures the schema.
func Open(ctx context.Context, dsn string) (*KV, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(50)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(15 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, err
	}
	return &KV{db: db}, nil
}

// NewWithDB wraps an existing handle. Used by tests with sqlmock.
func NewWithDB(db *sql.DB) *KV { return &KV{db: db} }

func (s *KV) Close() error { return s.db.Close() }

// DB exposes the handle for readiness probes.
func (s *KV) DB() *sql.DB { return s.db }

func (s *KV) Get(ctx context.Context, key string) ([]byte, error) {
	var v []byte
	err := s.db.QueryRowContext(ctx, `select v from kv_records where k = $1`, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return v, nil
}

func (s *KV) Set(ctx context.Context, key string, value []byte) error {
	_, err := s.db.ExecContext(ctx, `
		insert into kv_records(k, v, updated_at) values ($1, $2, now())
		on conflict (k) do update set v = excluded.v, updated_at = now()
	`, key, value)
	return err
}

func (s *KV) Delete(ctx context.Context, key string) error {
	res, err := s.db.ExecContext(ctx, `delete from kv_records where k = $1`, key)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *KV) ListByPrefix(ctx context.Context, prefix string) ([]store.Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		`select k, v from kv_records where k like $1 || '%' order by k`, escapeLike(prefix))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []store.Entry
	for rows.Next() {
		var e store.Entry
		if err := rows.Scan(&e.Key, &e.Value); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *KV) Count(ctx context.Context, prefix string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`select count(*) from kv_records where k like $1 || '%'`, escapeLike(prefix)).Scan(&n)
	return n, err
}

// escapeLike quotes LIKE metacharacters inside key segments.
func escapeLike(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '%', '_', '\\':
			out = append(out, '\\')
		}
		out = append(out, s[i])
	}
	return string(out)
}
