package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"
	"go.uber.org/zap"

	"github.com/nathbrawlstatsr-afk/cours/internal/models"
)

const (
	badgerValuePrefix = "v:"
	badgerListPrefix  = "l:"

	badgerAppendRetries = 5
)

// BadgerStore implements Store on an embedded BadgerDB. Lists are JSON arrays under one
// key, rewritten inside an update transaction. Appends are serialised so concurrent
// writers to one list do not abort each other with ErrConflict.
type BadgerStore struct {
	db       *badger.DB
	appendMu sync.Mutex
}

// badgerLogger adapts zap to badger.Logger.
type badgerLogger struct {
	s *zap.SugaredLogger
}

var _ badger.Logger = (*badgerLogger)(nil)

func (l *badgerLogger) Errorf(msg string, args ...any)   { l.s.Errorf(msg, args...) }
func (l *badgerLogger) Warningf(msg string, args ...any) { l.s.Warnf(msg, args...) }
func (l *badgerLogger) Infof(msg string, args ...any)    { l.s.Debugf(msg, args...) }
func (l *badgerLogger) Debugf(msg string, args ...any)   { l.s.Debugf(msg, args...) }

// NewBadgerStore opens a BadgerDB at dir, creating it when missing, or an in-memory
// database when inMemory is set.
func NewBadgerStore(dir string, inMemory bool, logger *zap.Logger) (*BadgerStore, error) {
	var opts badger.Options
	if inMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create badger directory: %w", err)
		}
		opts = badger.DefaultOptions(dir)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	opts.Logger = &badgerLogger{s: logger.Named("badger").Sugar()}
	opts.Compression = options.None

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger: %w", err)
	}
	return &BadgerStore{db: db}, nil
}

func (s *BadgerStore) Get(_ context.Context, key string) (string, error) {
	var value string
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(badgerValuePrefix + key))
		if err != nil {
			return err
		}
		b, err := item.ValueCopy(nil)
		value = string(b)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return "", fmt.Errorf("key %q: %w", key, models.ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("get %q: %w", key, err)
	}
	return value, nil
}

func (s *BadgerStore) Set(_ context.Context, key, value string) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(badgerValuePrefix+key), []byte(value))
	})
	if err != nil {
		return fmt.Errorf("set %q: %w", key, err)
	}
	return nil
}

// Append adds value to the list at key. A transaction that still conflicts, for example
// with another process sharing the directory, is retried a bounded number of times.
func (s *BadgerStore) Append(ctx context.Context, key, value string, max int) error {
	s.appendMu.Lock()
	defer s.appendMu.Unlock()

	var err error
	for attempt := 0; attempt < badgerAppendRetries; attempt++ {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("append %q: %w", key, ctxErr)
		}
		err = s.db.Update(func(txn *badger.Txn) error {
			items, err := readList(txn, key)
			if err != nil {
				return err
			}
			data, err := json.Marshal(keepLast(append(items, value), max))
			if err != nil {
				return err
			}
			return txn.Set([]byte(badgerListPrefix+key), data)
		})
		if !errors.Is(err, badger.ErrConflict) {
			break
		}
	}
	if err != nil {
		return fmt.Errorf("append %q: %w", key, err)
	}
	return nil
}

func (s *BadgerStore) List(_ context.Context, key string) ([]string, error) {
	var items []string
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		items, err = readList(txn, key)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("list %q: %w", key, err)
	}
	return items, nil
}

func readList(txn *badger.Txn, key string) ([]string, error) {
	items := []string{}
	item, err := txn.Get([]byte(badgerListPrefix + key))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return items, nil
	}
	if err != nil {
		return nil, err
	}
	err = item.Value(func(val []byte) error {
		return json.Unmarshal(val, &items)
	})
	return items, err
}

func (s *BadgerStore) Close() error {
	return s.db.Close()
}
