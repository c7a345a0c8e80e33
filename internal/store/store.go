package store

import (
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/zeebo/blake3"
	"go.uber.org/zap"

	"github.com/siphonelee/walavie/internal/fstree"
	"github.com/siphonelee/walavie/internal/wire"
)

// ErrNotFound is returned by Load when no root exists for the authority.
var ErrNotFound = errors.New("store: root not found")

var keyPrefix = []byte("root/")

// Config holds store configuration.
type Config struct {
	Dir        string
	SyncWrites bool
}

// Store is a badger-backed repository of root snapshots.
type Store struct {
	db  *badger.DB
	log *zap.Logger
}

// Open opens (creating if needed) the badger database at cfg.Dir.
func Open(cfg Config, log *zap.Logger) (*Store, error) {
	opts := badger.DefaultOptions(cfg.Dir)
	opts.Logger = nil
	opts.SyncWrites = cfg.SyncWrites

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open store at %s: %w", cfg.Dir, err)
	}
	return &Store{db: db, log: log}, nil
}

// rootKey derives the storage key for an authority. The hash is the
// binding: only callers presenting the same identity resolve to the same
// root.
func rootKey(authority string) []byte {
	sum := blake3.Sum256([]byte(authority))
	return append(append([]byte{}, keyPrefix...), sum[:]...)
}

// Save writes the root's current snapshot in a single transaction.
func (s *Store) Save(root *fstree.Root) error {
	st := root.Snapshot()
	data, err := wire.EncodeState(st)
	if err != nil {
		return fmt.Errorf("encode root state: %w", err)
	}
	key := rootKey(st.Authority)

	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, data)
	})
	if err != nil {
		return fmt.Errorf("write root state: %w", err)
	}
	s.log.Debug("root saved",
		zap.String("authority", st.Authority),
		zap.Int("bytes", len(data)))
	return nil
}

// Load restores the root bound to authority. The rebuilt root is
// invariant-checked before it is returned.
func (s *Store) Load(authority string) (*fstree.Root, error) {
	var data []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(rootKey(authority))
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read root state: %w", err)
	}

	st, err := wire.DecodeState(data)
	if err != nil {
		return nil, err
	}
	root := fstree.FromState(st)
	if err := root.CheckInvariants(); err != nil {
		return nil, fmt.Errorf("restored root failed invariant check: %w", err)
	}
	return root, nil
}

// Exists reports whether a root is stored for authority.
func (s *Store) Exists(authority string) (bool, error) {
	err := s.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get(rootKey(authority))
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Close syncs, runs a value-log GC pass and closes the database.
func (s *Store) Close() error {
	if err := s.db.Sync(); err != nil {
		return fmt.Errorf("sync store: %w", err)
	}
	if err := s.db.RunValueLogGC(0.5); err != nil && !errors.Is(err, badger.ErrNoRewrite) {
		s.log.Warn("value log GC failed", zap.Error(err))
	}
	return s.db.Close()
}
