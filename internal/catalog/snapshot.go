// Cinematch - Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package catalog

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
)

// Key layout for BadgerDB storage. Items live under a per-version prefix so a
// new snapshot can be written in full before the meta key points at it.
const (
	snapshotPrefix  = "catalog:"
	snapshotMetaKey = "catalog:meta"
)

func snapshotItemPrefix(version string) string {
	return snapshotPrefix + version + ":item:"
}

type snapshotMeta struct {
	Version      string    `json:"version"`
	Source       string    `json:"source"`
	LoadedAt     time.Time `json:"loaded_at"`
	SavedAt      time.Time `json:"saved_at"`
	FeatureNames []string  `json:"feature_names,omitempty"`
	Items        int       `json:"items"`
}

// SnapshotStore keeps the last good catalog in BadgerDB.
type SnapshotStore struct {
	db *badger.DB
}

// OpenSnapshotStore opens (or creates) a snapshot database in dir.
func OpenSnapshotStore(dir string) (*SnapshotStore, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open snapshot store: %w", err)
	}
	return &SnapshotStore{db: db}, nil
}

// OpenInMemorySnapshotStore opens a snapshot store that lives only in memory.
func OpenInMemorySnapshotStore() (*SnapshotStore, error) {
	opts := badger.DefaultOptions("").WithInMemory(true).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open in-memory snapshot store: %w", err)
	}
	return &SnapshotStore{db: db}, nil
}

// Close releases the database.
func (s *SnapshotStore) Close() error {
	return s.db.Close()
}

// Save replaces the stored snapshot with c. The previous snapshot stays
// loadable until the new one is fully flushed.
func (s *SnapshotStore) Save(c *Catalog) error {
	prefix := snapshotItemPrefix(c.version)

	wb := s.db.NewWriteBatch()
	defer wb.Cancel()

	for i := range c.items {
		data, err := json.Marshal(&c.items[i])
		if err != nil {
			return fmt.Errorf("marshal item %s: %w", c.items[i].ID, err)
		}
		if err := wb.Set([]byte(prefix+c.items[i].ID), data); err != nil {
			return fmt.Errorf("set item %s: %w", c.items[i].ID, err)
		}
	}
	if err := wb.Flush(); err != nil {
		return fmt.Errorf("flush snapshot items: %w", err)
	}

	meta, err := json.Marshal(snapshotMeta{
		Version:      c.version,
		Source:       c.source,
		LoadedAt:     c.loadedAt,
		SavedAt:      time.Now(),
		FeatureNames: c.featureNames,
		Items:        len(c.items),
	})
	if err != nil {
		return fmt.Errorf("marshal snapshot meta: %w", err)
	}
	if err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(snapshotMetaKey), meta)
	}); err != nil {
		return fmt.Errorf("set snapshot meta: %w", err)
	}

	return s.dropStale(c.version)
}

// dropStale removes items of every version other than keep, including
// leftovers from saves that failed before their meta was written.
func (s *SnapshotStore) dropStale(keep string) error {
	var stale [][]byte
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(snapshotPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		seen := map[string]bool{keep: true}
		for it.Rewind(); it.Valid(); it.Next() {
			key := string(it.Item().Key())
			if key == snapshotMetaKey {
				continue
			}
			version, _, ok := strings.Cut(strings.TrimPrefix(key, snapshotPrefix), ":")
			if !ok || seen[version] {
				continue
			}
			seen[version] = true
			stale = append(stale, []byte(snapshotPrefix+version+":"))
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("scan stale snapshots: %w", err)
	}
	if len(stale) == 0 {
		return nil
	}
	if err := s.db.DropPrefix(stale...); err != nil {
		return fmt.Errorf("drop stale snapshots: %w", err)
	}
	return nil
}

// Load rebuilds the stored catalog. The result goes through the same
// integrity checks as a file load.
func (s *SnapshotStore) Load() (*Catalog, error) {
	var (
		meta  snapshotMeta
		items []Item
	)

	err := s.db.View(func(txn *badger.Txn) error {
		entry, err := txn.Get([]byte(snapshotMetaKey))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNoSnapshot
		}
		if err != nil {
			return fmt.Errorf("get snapshot meta: %w", err)
		}
		if err := entry.Value(func(val []byte) error {
			return json.Unmarshal(val, &meta)
		}); err != nil {
			return fmt.Errorf("decode snapshot meta: %w", err)
		}

		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = true
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(snapshotItemPrefix(meta.Version))
		items = make([]Item, 0, meta.Items)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var item Item
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &item)
			}); err != nil {
				return fmt.Errorf("decode snapshot item: %w", err)
			}
			items = append(items, item)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if len(items) != meta.Items {
		return nil, &DataIntegrityError{
			Source: "snapshot",
			Reason: fmt.Sprintf("snapshot holds %d items, meta says %d", len(items), meta.Items),
		}
	}

	c, err := New(items, meta.FeatureNames, meta.Source)
	if err != nil {
		return nil, err
	}
	c.version = meta.Version
	c.loadedAt = meta.LoadedAt
	return c, nil
}
