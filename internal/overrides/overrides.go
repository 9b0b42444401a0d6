// Package overrides maps per-entity image overrides onto a plugin's storage bucket.
package overrides

import (
	"context"
	"encoding/json/v2"
	"fmt"
	"strconv"

	"github.com/listenupapp/mediatray/internal/domain"
	"github.com/listenupapp/mediatray/internal/store"
)

// Kind selects which image an adapter manages.
type Kind string

const (
	// KindBanner stores banner image URLs under "backgroundImages.<id>".
	KindBanner Kind = "banner"
	// KindCover stores cover image URLs under "coverImages.<id>".
	KindCover Kind = "cover"
)

// Prefix returns the storage key prefix for the kind.
func (k Kind) Prefix() string {
	switch k {
	case KindCover:
		return "coverImages."
	default:
		return "backgroundImages."
	}
}

// ParseKind accepts "banner" or "cover".
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindBanner, KindCover:
		return Kind(s), nil
	}
	return "", fmt.Errorf("unknown override kind %q (want banner or cover)", s)
}

// Adapter reads and writes the override map of one plugin.
// An absent key and an empty value mean the same thing.
type Adapter struct {
	bucket *store.Bucket
	kind   Kind
}

// New binds an adapter to a bucket.
func New(bucket *store.Bucket, kind Kind) *Adapter {
	return &Adapter{bucket: bucket, kind: kind}
}

// Kind returns the image kind of the adapter.
func (a *Adapter) Kind() Kind {
	return a.kind
}

// Get returns the override for id.
func (a *Adapter) Get(ctx context.Context, id int) (string, bool, error) {
	var url string
	found, err := a.bucket.Get(ctx, a.key(id), &url)
	if err != nil {
		return "", false, err
	}
	if !found || url == "" {
		return "", false, nil
	}
	return url, true, nil
}

// Set stores url for id. An empty url removes the override.
func (a *Adapter) Set(ctx context.Context, id int, url string) error {
	if url == "" {
		return a.Remove(ctx, id)
	}
	if err := a.bucket.Set(ctx, a.key(id), url); err != nil {
		return fmt.Errorf("set %s override %d: %w", a.kind, id, err)
	}
	return nil
}

// Remove deletes the override for id.
func (a *Adapter) Remove(ctx context.Context, id int) error {
	if err := a.bucket.Remove(ctx, a.key(id)); err != nil {
		return fmt.Errorf("remove %s override %d: %w", a.kind, id, err)
	}
	return nil
}

// All returns the full override map with a single prefix scan.
func (a *Adapter) All(ctx context.Context) (domain.OverrideMap, error) {
	raw, err := a.bucket.Scan(ctx, a.kind.Prefix())
	if err != nil {
		return nil, fmt.Errorf("list %s overrides: %w", a.kind, err)
	}

	m := make(domain.OverrideMap, len(raw))
	for key, val := range raw {
		var url string
		if err := json.Unmarshal(val, &url); err != nil || url == "" {
			continue
		}
		m[key] = url
	}
	return m, nil
}

// SortedIDs returns the overridden keys in ascending lexicographic order.
func (a *Adapter) SortedIDs(ctx context.Context) ([]string, error) {
	m, err := a.All(ctx)
	if err != nil {
		return nil, err
	}
	return m.SortedKeys(), nil
}

func (a *Adapter) key(id int) string {
	return a.kind.Prefix() + strconv.Itoa(id)
}
