package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"go.uber.org/zap"
)

const badgerGCDiscardRatio = 0.5

// BadgerStore is an embedded, durable backend. Keys are "<collection>:<id>".
type BadgerStore struct {
	db     *badger.DB
	logger *zap.Logger
}

// NewBadgerStore opens (or creates) a badger database at path.
func NewBadgerStore(path string, logger *zap.Logger) (*BadgerStore, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil
	opts.ValueLogFileSize = 64 << 20

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger db: %w", err)
	}
	return &BadgerStore{db: db, logger: logger}, nil
}

// NewBadgerStoreFromDB wraps an already open database.
func NewBadgerStoreFromDB(db *badger.DB, logger *zap.Logger) *BadgerStore {
	return &BadgerStore{db: db, logger: logger}
}

func badgerKey(collection, id string) []byte {
	return []byte(collection + ":" + id)
}

func (s *BadgerStore) Get(_ context.Context, collection, id string) ([]byte, error) {
	var doc []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(badgerKey(collection, id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("get %s/%s: %w", collection, id, err)
		}
		doc, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		return nil, err
	}
	return doc, nil
}

func (s *BadgerStore) Put(_ context.Context, collection, id string, doc []byte) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(badgerKey(collection, id), doc)
	})
}

func (s *BadgerStore) Delete(_ context.Context, collection, id string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		key := badgerKey(collection, id)
		if _, err := txn.Get(key); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return ErrNotFound
			}
			return err
		}
		return txn.Delete(key)
	})
}

func (s *BadgerStore) Scan(ctx context.Context, collection string, fn func(id string, doc []byte) error) error {
	prefix := []byte(collection + ":")
	return s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			item := it.Item()
			doc, err := item.ValueCopy(nil)
			if err != nil {
				return fmt.Errorf("read %s: %w", item.Key(), err)
			}
			id := string(item.Key()[len(prefix):])
			if err := fn(id, doc); err != nil {
				return err
			}
		}
		return nil
	})
}

// Update runs the read-modify-write in one transaction. Concurrent writers to
// the same key surface badger.ErrConflict.
func (s *BadgerStore) Update(_ context.Context, collection, id string, fn UpdateFunc) error {
	return s.db.Update(func(txn *badger.Txn) error {
		key := badgerKey(collection, id)
		var current []byte
		item, err := txn.Get(key)
		switch {
		case errors.Is(err, badger.ErrKeyNotFound):
		case err != nil:
			return err
		default:
			if current, err = item.ValueCopy(nil); err != nil {
				return err
			}
		}

		next, err := fn(current)
		if err != nil {
			return err
		}
		return txn.Set(key, next)
	})
}

// Maintain reclaims value log space until badger reports nothing to rewrite.
func (s *BadgerStore) Maintain(ctx context.Context) error {
	rewrites := 0
	for ctx.Err() == nil {
		err := s.db.RunValueLogGC(badgerGCDiscardRatio)
		if errors.Is(err, badger.ErrNoRewrite) || errors.Is(err, badger.ErrRejected) {
			break
		}
		if err != nil {
			return fmt.Errorf("value log gc: %w", err)
		}
		rewrites++
	}
	s.logger.Debug("Badger value log GC finished", zap.Int("rewrites", rewrites))
	return nil
}

func (s *BadgerStore) Close() error {
	return s.db.Close()
}
