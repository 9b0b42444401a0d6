package store

import (
	"context"
	"encoding/json/jsontext"
	"encoding/json/v2"
	"errors"
	"fmt"
	"strings"

	"github.com/dgraph-io/badger/v4"
)

// Bucket is a namespaced view of the store.
type Bucket struct {
	db     *badger.DB
	prefix string
}

// Namespace returns the raw key prefix of the bucket.
func (b *Bucket) Namespace() string {
	return b.prefix
}

// Get decodes the value stored under key into dest.
// It returns false, nil when the key is absent.
func (b *Bucket) Get(ctx context.Context, key string, dest any) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(b.key(key))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, dest)
		})
	})

	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("get %s%s: %w", b.prefix, key, err)
	}
	return true, nil
}

// Load is Get for records that must exist; absence yields ErrNotFound.
func (b *Bucket) Load(ctx context.Context, key string, dest any) error {
	found, err := b.Get(ctx, key, dest)
	if err != nil {
		return err
	}
	if !found {
		return ErrNotFound.WithCause(fmt.Errorf("key %s%s", b.prefix, key))
	}
	return nil
}

// Set stores value under key.
func (b *Bucket) Set(ctx context.Context, key string, value any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if key == "" {
		return ErrInvalidKey
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}

	return b.db.Update(func(txn *badger.Txn) error {
		return txn.Set(b.key(key), data)
	})
}

// Remove deletes key. Removing an absent key is a no-op.
func (b *Bucket) Remove(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return b.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(b.key(key))
	})
}

// Scan returns every value whose key starts with prefix, keyed by the remainder of the key.
// Scan("backgroundImages.") over backgroundImages.21 and backgroundImages.30 yields {"21", "30"}.
func (b *Bucket) Scan(ctx context.Context, prefix string) (map[string]jsontext.Value, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	full := b.key(prefix)
	out := make(map[string]jsontext.Value)

	err := b.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = full
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(full); it.ValidForPrefix(full); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			item := it.Item()
			rest := strings.TrimPrefix(string(item.Key()), string(full))
			val, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			out[rest] = jsontext.Value(val)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan %s%s: %w", b.prefix, prefix, err)
	}
	return out, nil
}

func (b *Bucket) key(key string) []byte {
	return []byte(b.prefix + key)
}
