// Package store persists session state in Badger, one key namespace per browser profile.
package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/secretshows/secretshows-server/internal/session"
)

// Store wraps a Badger database instance.
type Store struct {
	db     *badger.DB
	logger *slog.Logger
}

// New opens (or creates) the Badger database at path.
func New(path string, logger *slog.Logger) (*Store, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil            // Disable Badger's internal logging
	opts.SyncWrites = true       // Every session write must survive a crash
	opts.CompactL0OnClose = true // Compact L0 tables on close for faster startup

	return open(opts, logger)
}

// NewInMemory opens a Badger database that never touches disk.
func NewInMemory(logger *slog.Logger) (*Store, error) {
	opts := badger.DefaultOptions("").WithInMemory(true)
	opts.Logger = nil

	return open(opts, logger)
}

func open(opts badger.Options, logger *slog.Logger) (*Store, error) {
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger db: %w", err)
	}

	if logger != nil {
		logger.Info("Badger database opened successfully", "path", opts.Dir, "in_memory", opts.InMemory)
	}

	return &Store{db: db, logger: logger}, nil
}

// Close gracefully closes the database connection.
func (s *Store) Close() error {
	if s.logger != nil {
		s.logger.Info("Closing database connection")
	}
	return s.db.Close()
}

// Ping performs a read to confirm the database is usable.
func (s *Store) Ping(_ context.Context) error {
	if s.db.IsClosed() {
		return ErrClosed
	}
	return s.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get([]byte(metaPrefix + "ping"))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		return err
	})
}

// Repository returns the session repository for profileID.
// Its signature matches session.RepositoryFactory.
func (s *Store) Repository(_ context.Context, profileID string) (session.Repository, error) {
	if profileID == "" {
		return nil, ErrEmptyProfile
	}
	return session.NewRepository(s.Profile(profileID)), nil
}

// Profile returns the raw key-value namespace of profileID.
func (s *Store) Profile(profileID string) session.KV {
	return &profileKV{store: s, prefix: profilePrefix + profileID + ":"}
}

// Profiles lists every profile that has at least one key stored.
func (s *Store) Profiles(_ context.Context) ([]string, error) {
	var ids []string
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(profilePrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			rest := strings.TrimPrefix(string(it.Item().Key()), profilePrefix)
			profileID, _, ok := strings.Cut(rest, ":")
			if !ok {
				continue
			}
			if len(ids) == 0 || ids[len(ids)-1] != profileID {
				ids = append(ids, profileID)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	return ids, nil
}

// DeleteProfile removes every key of profileID.
func (s *Store) DeleteProfile(_ context.Context, profileID string) error {
	if profileID == "" {
		return ErrEmptyProfile
	}
	prefix := []byte(profilePrefix + profileID + ":")
	if err := s.db.DropPrefix(prefix); err != nil {
		return fmt.Errorf("delete profile %s: %w", profileID, err)
	}
	return nil
}

// RunGC runs value log garbage collection every interval until ctx is done.
func (s *Store) RunGC(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			// One call rewrites at most one file; keep going while it finds work.
			for {
				if err := s.db.RunValueLogGC(0.5); err != nil {
					if !errors.Is(err, badger.ErrNoRewrite) && !errors.Is(err, badger.ErrRejected) && s.logger != nil {
						s.logger.Warn("value log GC failed", "error", err)
					}
					break
				}
			}
		}
	}
}

// Helper methods for database operations.

// get retrieves the raw value stored at key.
func (s *Store) get(key []byte) ([]byte, error) {
	var out []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		out, err = item.ValueCopy(nil)
		return err
	})
	return out, err
}

// set stores a raw value at key.
func (s *Store) set(key, value []byte) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, value)
	})
}

// delete removes a key from the database.
func (s *Store) delete(key []byte) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(key)
	})
}

// profileKV is one profile's slice of the keyspace.
type profileKV struct {
	store  *Store
	prefix string
}

func (p *profileKV) Get(_ context.Context, key string) ([]byte, error) {
	k := buildKey(p.prefix, key)
	defer releaseKey(k)

	v, err := p.store.get(k)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, session.ErrKeyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", key, err)
	}
	return v, nil
}

func (p *profileKV) Set(_ context.Context, key string, value []byte) error {
	// Badger keeps a reference to the key until the transaction commits,
	// so pooled buffers are released only after set returns.
	k := buildKey(p.prefix, key)
	defer releaseKey(k)

	if err := p.store.set(k, value); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

func (p *profileKV) Delete(_ context.Context, key string) error {
	k := buildKey(p.prefix, key)
	defer releaseKey(k)

	if err := p.store.delete(k); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}
