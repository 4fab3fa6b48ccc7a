package store

import (
	"context"
	"errors"
	"strings"

	"skillbridge.org/internal/model"
)

// ErrNotFound is returned when a key has no value. Readers following a
// secondary index must treat a dangling pointer the same way.
var ErrNotFound = errors.New("store: not found")

// Entry is one key/value pair returned by a prefix listing.
type Entry struct {
	Key   string
	Value []byte
}

// KV is the durable keyed storage underneath the indexed record store. There
// are no cross-key transactions: every guarantee above single-key
// last-write-wins is the caller's responsibility.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	ListByPrefix(ctx context.Context, prefix string) ([]Entry, error)
	Count(ctx context.Context, prefix string) (int, error)
}

const keySep = ":"

// PrimaryKey is the authoritative location of a record: (kind, id).
func PrimaryKey(kind model.Kind, id string) string {
	return string(kind) + keySep + escapeSegment(id)
}

// IndexKey is the location of a secondary copy: (kind, "by-"+name, value) for
// unique indexes, with the record id appended for scoped listings.
func IndexKey(kind model.Kind, entry model.IndexEntry, id string) string {
	key := string(kind) + keySep + "by-" + entry.Name + keySep + escapeSegment(entry.Value)
	if !entry.Unique {
		key += keySep + escapeSegment(id)
	}
	return key
}

// IndexPrefix scans every record sharing an index value.
func IndexPrefix(kind model.Kind, name, value string) string {
	return string(kind) + keySep + "by-" + name + keySep + escapeSegment(value) + keySep
}

func primaryPrefix(kind model.Kind) string {
	return string(kind) + keySep
}

// isIndexKey reports whether a key under a kind's prefix is a secondary copy
// rather than a primary record.
func isIndexKey(kind model.Kind, key string) bool {
	rest := strings.TrimPrefix(key, primaryPrefix(kind))
	return strings.HasPrefix(rest, "by-")
}

// escapeSegment keeps caller-supplied values from injecting key separators.
func escapeSegment(v string) string {
	return strings.ReplaceAll(v, keySep, "%3A")
}
