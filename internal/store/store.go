// Package store persists plugin state in an embedded Badger database.
//
// Every plugin gets its own Bucket, a key namespace "plugin:<id>:" inside the shared database.
// The bridge itself keeps its snapshots under "host:".
// Values are JSON encoded. The bucket API mirrors the host's key-value storage contract:
// Get reports absence instead of failing, Remove of an absent key is not an error.
package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dgraph-io/badger/v4"
)

// Store wraps a Badger database instance.
type Store struct {
	db     *badger.DB
	logger *slog.Logger
}

// New opens (or creates) the database at path.
func New(path string, logger *slog.Logger) (*Store, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil            // Disable Badger's internal logging
	opts.SyncWrites = true       // Overrides are tiny; durability over throughput
	opts.CompactL0OnClose = true // Compact L0 tables on close for faster startup

	return open(opts, logger)
}

// NewInMemory opens a database that lives only for the lifetime of the process.
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

// Ping performs a read transaction to check the database is usable.
func (s *Store) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := s.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get([]byte("health:ping"))
		return err
	})
	if err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
		return err
	}
	return nil
}

// Bucket returns the key namespace of a plugin.
func (s *Store) Bucket(plugin string) *Bucket {
	return s.Namespace("plugin:" + plugin + ":")
}

// Namespace returns a bucket over an arbitrary key prefix.
func (s *Store) Namespace(prefix string) *Bucket {
	return &Bucket{db: s.db, prefix: prefix}
}
