package store

import (
	"context"
	"encoding/json"
	"fmt"

	"skillbridge.org/internal/model"
	"skillbridge.org/internal/obs"
)

// Indexed layers hand-maintained secondary indexes over a KV backend.
//
// Consistency contract: the primary record is the single source of truth.
// Secondary entries are byte-identical copies written sequentially after the
// primary, with no rollback: a crash partway through leaves the index stale
// until the next write to the same primary key (Put cleans up entries the new
// record no longer declares) or a RebuildIndexes sweep. Index entries are
// therefore advisory: every reader here re-fetches by primary key and
// treats a dangling pointer as not found.
type Indexed struct {
	kv KV
}

// NewIndexed wraps a KV backend. The backend handle is injected, never a
// process-wide singleton, so tests run against isolated memory instances.
func NewIndexed(kv KV) *Indexed {
	return &Indexed{kv: kv}
}

// Put writes the primary entry, then every secondary entry the record
// declares. Secondary entries left over from the previous version of the
// record (an indexed field changed value) are removed last.
func (s *Indexed) Put(ctx context.Context, rec model.Record) error {
	id := rec.RecordID()
	if id == "" {
		return fmt.Errorf("%s record has no id", rec.Kind())
	}

	raw, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode %s %s: %w", rec.Kind(), id, err)
	}

	prev, prevErr := s.decodeStored(ctx, rec.Kind(), id)

	if err := s.kv.Set(ctx, PrimaryKey(rec.Kind(), id), raw); err != nil {
		return fmt.Errorf("write primary %s %s: %w", rec.Kind(), id, err)
	}

	entries := rec.IndexEntries()
	declared := make(map[string]bool, len(entries))
	for _, entry := range entries {
		key := IndexKey(rec.Kind(), entry, id)
		declared[key] = true
		err := s.kv.Set(ctx, key, raw)
		obs.ObserveIndexWrite(string(rec.Kind()), err)
		if err != nil {
			return fmt.Errorf("write index %s: %w", key, err)
		}
	}

	if prevErr == nil {
		for _, entry := range prev.IndexEntries() {
			key := IndexKey(rec.Kind(), entry, id)
			if declared[key] {
				continue
			}
			if err := s.kv.Delete(ctx, key); err != nil && err != ErrNotFound {
				return fmt.Errorf("drop stale index %s: %w", key, err)
			}
		}
	}
	return nil
}

// Get fetches a record by primary key into dst.
func (s *Indexed) Get(ctx context.Context, kind model.Kind, id string, dst any) error {
	raw, err := s.kv.Get(ctx, PrimaryKey(kind, id))
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, dst)
}

// GetByIndex resolves a unique index entry and re-fetches the primary record
// into dst. An index copy whose primary no longer exists reads as not found.
func (s *Indexed) GetByIndex(ctx context.Context, kind model.Kind, name, value string, dst any) error {
	entry := model.IndexEntry{Name: name, Value: value, Unique: true}
	raw, err := s.kv.Get(ctx, IndexKey(kind, entry, ""))
	if err != nil {
		return err
	}
	rec := model.New(kind)
	if rec == nil {
		return fmt.Errorf("unknown record kind %q", kind)
	}
	if err := json.Unmarshal(raw, rec); err != nil {
		return fmt.Errorf("decode index copy %s by-%s: %w", kind, name, err)
	}
	return s.Get(ctx, kind, rec.RecordID(), dst)
}

// ListByIndex returns every live record sharing an index value. Each index
// copy is only a pointer: the primary is re-fetched, dangling entries are
// skipped, and so are entries the current primary no longer declares.
func (s *Indexed) ListByIndex(ctx context.Context, kind model.Kind, name, value string) ([]model.Record, error) {
	items, err := s.kv.ListByPrefix(ctx, IndexPrefix(kind, name, value))
	if err != nil {
		return nil, err
	}
	out := make([]model.Record, 0, len(items))
	for _, item := range items {
		pointer := model.New(kind)
		if err := json.Unmarshal(item.Value, pointer); err != nil {
			continue
		}
		rec := model.New(kind)
		if err := s.Get(ctx, kind, pointer.RecordID(), rec); err != nil {
			if err == ErrNotFound {
				continue
			}
			return nil, err
		}
		if !declaresEntry(rec, name, value) {
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

// List returns every primary record of a kind, in id (creation) order.
func (s *Indexed) List(ctx context.Context, kind model.Kind) ([]model.Record, error) {
	items, err := s.kv.ListByPrefix(ctx, primaryPrefix(kind))
	if err != nil {
		return nil, err
	}
	out := make([]model.Record, 0, len(items))
	for _, item := range items {
		if isIndexKey(kind, item.Key) {
			continue
		}
		rec := model.New(kind)
		if err := json.Unmarshal(item.Value, rec); err != nil {
			return nil, fmt.Errorf("decode %s: %w", item.Key, err)
		}
		out = append(out, rec)
	}
	return out, nil
}

// Count reports the number of primary records of a kind.
func (s *Indexed) Count(ctx context.Context, kind model.Kind) (int, error) {
	items, err := s.kv.ListByPrefix(ctx, primaryPrefix(kind))
	if err != nil {
		return 0, err
	}
	n := 0
	for _, item := range items {
		if !isIndexKey(kind, item.Key) {
			n++
		}
	}
	return n, nil
}

// CountByIndex reports how many index entries share a value. Advisory, like
// the entries themselves.
func (s *Indexed) CountByIndex(ctx context.Context, kind model.Kind, name, value string) (int, error) {
	return s.kv.Count(ctx, IndexPrefix(kind, name, value))
}

// Delete removes the primary entry and every secondary entry the STORED
// record declares. The stored bytes, not caller input, decide which index
// keys exist, so a caller holding a differently-shaped payload cannot orphan
// index entries.
func (s *Indexed) Delete(ctx context.Context, kind model.Kind, id string) error {
	stored, err := s.decodeStored(ctx, kind, id)
	if err != nil {
		return err
	}

	if err := s.kv.Delete(ctx, PrimaryKey(kind, id)); err != nil && err != ErrNotFound {
		return err
	}
	for _, entry := range stored.IndexEntries() {
		key := IndexKey(kind, entry, id)
		if err := s.kv.Delete(ctx, key); err != nil && err != ErrNotFound {
			return fmt.Errorf("drop index %s: %w", key, err)
		}
	}
	return nil
}

// RebuildIndexes sweeps one kind: every secondary entry not declared by a
// live primary is dropped, and every declared entry is rewritten from the
// primary bytes. Run from the reindex command after a crash window.
func (s *Indexed) RebuildIndexes(ctx context.Context, kind model.Kind) (removed, rewritten int, err error) {
	items, err := s.kv.ListByPrefix(ctx, primaryPrefix(kind))
	if err != nil {
		return 0, 0, err
	}

	declared := make(map[string][]byte)
	var indexKeys []string
	for _, item := range items {
		if isIndexKey(kind, item.Key) {
			indexKeys = append(indexKeys, item.Key)
			continue
		}
		rec := model.New(kind)
		if err := json.Unmarshal(item.Value, rec); err != nil {
			return removed, rewritten, fmt.Errorf("decode %s: %w", item.Key, err)
		}
		for _, entry := range rec.IndexEntries() {
			declared[IndexKey(kind, entry, rec.RecordID())] = item.Value
		}
	}

	for _, key := range indexKeys {
		if _, ok := declared[key]; ok {
			continue
		}
		if err := s.kv.Delete(ctx, key); err != nil && err != ErrNotFound {
			return removed, rewritten, err
		}
		removed++
	}
	for key, raw := range declared {
		if err := s.kv.Set(ctx, key, raw); err != nil {
			return removed, rewritten, err
		}
		rewritten++
	}
	return removed, rewritten, nil
}

// decodeStored loads and decodes the current primary record.
func (s *Indexed) decodeStored(ctx context.Context, kind model.Kind, id string) (model.Record, error) {
	raw, err := s.kv.Get(ctx, PrimaryKey(kind, id))
	if err != nil {
		return nil, err
	}
	rec := model.New(kind)
	if rec == nil {
		return nil, fmt.Errorf("unknown record kind %q", kind)
	}
	if err := json.Unmarshal(raw, rec); err != nil {
		return nil, fmt.Errorf("decode stored %s %s: %w", kind, id, err)
	}
	return rec, nil
}

func declaresEntry(rec model.Record, name, value string) bool {
	for _, entry := range rec.IndexEntries() {
		if entry.Name == name && entry.Value == value {
			return true
		}
	}
	return false
}
