// Package badgerstore keeps snapshots in an embedded Badger database, for single
// node deployments that want crash safe storage without a bucket.
package badgerstore

import (
	"context"
	"errors"
	"fmt"
	"os"

	"summarizer-session-be/internal/pkg/logger"
	"summarizer-session-be/pkg/snapshot"

	"github.com/dgraph-io/badger/v4"
)

const keyPrefix = "snapshot/"

type Config struct {
	Path     string
	InMemory bool
	Logger   logger.ILogger
}

type badgerLogger struct {
	logger logger.ILogger
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error("BADGER", fmt.Sprintf(format, args...), nil)
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn("BADGER", fmt.Sprintf(format, args...), nil)
}

func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Info("BADGER", fmt.Sprintf(format, args...), nil)
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debug("BADGER", fmt.Sprintf(format, args...), nil)
}

type Store struct {
	db *badger.DB
}

func Open(cfg Config) (*Store, error) {
	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if cfg.Path == "" {
			return nil, errors.New("path is required for persistent snapshot store")
		}
		if err := os.MkdirAll(cfg.Path, 0750); err != nil {
			return nil, fmt.Errorf("create snapshot directory %s: %w", cfg.Path, err)
		}
		opts = badger.DefaultOptions(cfg.Path).WithSyncWrites(true)
	}
	opts = opts.WithNumVersionsToKeep(1)
	if cfg.Logger != nil {
		opts = opts.WithLogger(&badgerLogger{logger: cfg.Logger})
	} else {
		opts = opts.WithLogger(nil)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger database: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Put(ctx context.Context, handle string, blob []byte) error {
	if err := snapshot.ValidateHandle(handle); err != nil {
		return err
	}
	key := []byte(keyPrefix + handle)

	for {
		err := s.db.Update(func(txn *badger.Txn) error {
			item, err := txn.Get(key)
			if err == nil {
				existing, err := item.ValueCopy(nil)
				if err != nil {
					return err
				}
				return snapshot.CompareExisting(handle, existing, blob)
			}
			if !errors.Is(err, badger.ErrKeyNotFound) {
				return err
			}
			return txn.Set(key, blob)
		})
		// a concurrent writer committed first; re-read and compare
		if errors.Is(err, badger.ErrConflict) {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			continue
		}
		if err != nil && !errors.Is(err, snapshot.ErrSnapshotExists) {
			return fmt.Errorf("write snapshot %s: %w", handle, err)
		}
		return err
	}
}

func (s *Store) Get(ctx context.Context, handle string) ([]byte, error) {
	if err := snapshot.ValidateHandle(handle); err != nil {
		return nil, err
	}
	var blob []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(keyPrefix + handle))
		if err != nil {
			return err
		}
		blob, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, snapshot.NotFound(handle)
		}
		return nil, fmt.Errorf("read snapshot %s: %w", handle, err)
	}
	return blob, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}
