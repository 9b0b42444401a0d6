package host

import (
	"context"
	"encoding/json/jsontext"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/listenupapp/mediatray/internal/domain"
	"github.com/listenupapp/mediatray/internal/errors"
	"github.com/listenupapp/mediatray/internal/sse"
	"github.com/listenupapp/mediatray/internal/store"
)

// Collection kinds as named in collection.* events.
const (
	CollectionAnime = "anime"
	CollectionManga = "manga"
)

const defaultFetchTimeout = 10 * time.Second

// CollectionCache is the bridge's Collections. The host posts every collection it fetches
// through the hook endpoints; Record keeps the latest one per kind. Fetches that need fresh
// data emit a collection.fetch event and wait for the next Record.
type CollectionCache struct {
	bucket  *store.Bucket
	emitter Emitter
	logger  *slog.Logger
	timeout time.Duration

	mu      sync.Mutex
	waiters map[string]chan struct{}
}

var _ Collections = (*CollectionCache)(nil)

// NewCollectionCache creates a cache persisting snapshots in bucket.
func NewCollectionCache(bucket *store.Bucket, emitter Emitter, logger *slog.Logger) *CollectionCache {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &CollectionCache{
		bucket:  bucket,
		emitter: emitter,
		logger:  logger.With("component", "collections"),
		timeout: defaultFetchTimeout,
		waiters: make(map[string]chan struct{}),
	}
}

// SetFetchTimeout bounds how long a fetch waits for the host.
func (c *CollectionCache) SetFetchTimeout(d time.Duration) {
	if d > 0 {
		c.timeout = d
	}
}

// Record stores raw as the latest payload of kind and wakes pending fetches.
func (c *CollectionCache) Record(ctx context.Context, kind string, raw jsontext.Value) error {
	if !raw.IsValid() {
		return errors.Validationf("invalid %s collection payload", kind)
	}
	if err := c.bucket.Set(ctx, snapshotKey(kind), raw); err != nil {
		return fmt.Errorf("record %s collection: %w", kind, err)
	}

	c.mu.Lock()
	if ch, ok := c.waiters[kind]; ok {
		close(ch)
		delete(c.waiters, kind)
	}
	c.mu.Unlock()
	return nil
}

// AnimeCollection returns the anime collection.
func (c *CollectionCache) AnimeCollection(ctx context.Context, bypassCache bool) (*domain.MediaCollection, error) {
	return c.fetch(ctx, CollectionAnime, bypassCache)
}

// MangaCollection returns the manga collection.
func (c *CollectionCache) MangaCollection(ctx context.Context, bypassCache bool) (*domain.MediaCollection, error) {
	return c.fetch(ctx, CollectionManga, bypassCache)
}

// RefreshAnimeCollection asks the host to refetch the anime collection.
func (c *CollectionCache) RefreshAnimeCollection(context.Context) error {
	c.emitter.Emit(sse.NewCollectionRefreshEvent(CollectionAnime))
	return nil
}

// RefreshMangaCollection asks the host to refetch the manga collection.
func (c *CollectionCache) RefreshMangaCollection(context.Context) error {
	c.emitter.Emit(sse.NewCollectionRefreshEvent(CollectionManga))
	return nil
}

func (c *CollectionCache) fetch(ctx context.Context, kind string, bypassCache bool) (*domain.MediaCollection, error) {
	if !bypassCache {
		if col, ok, err := c.load(ctx, kind); err != nil || ok {
			return col, err
		}
	}

	wait := c.waiter(kind)
	c.emitter.Emit(sse.NewCollectionFetchEvent(kind, bypassCache))

	timer := time.NewTimer(c.timeout)
	defer timer.Stop()

	select {
	case <-wait:
	case <-timer.C:
		c.logger.Warn("host did not deliver collection in time", "collection", kind, "timeout", c.timeout)
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	col, ok, err := c.load(ctx, kind)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errors.Unavailable(kind + " collection not available from host")
	}
	return col, nil
}

func (c *CollectionCache) load(ctx context.Context, kind string) (*domain.MediaCollection, bool, error) {
	var col domain.MediaCollection
	found, err := c.bucket.Get(ctx, snapshotKey(kind), &col)
	if err != nil {
		return nil, false, fmt.Errorf("load %s collection: %w", kind, err)
	}
	if !found {
		return nil, false, nil
	}
	return &col, true, nil
}

func (c *CollectionCache) waiter(kind string) chan struct{} {
	c.mu.Lock()
	defer c.mu.Unlock()

	ch, ok := c.waiters[kind]
	if !ok {
		ch = make(chan struct{})
		c.waiters[kind] = ch
	}
	return ch
}

func snapshotKey(kind string) string {
	return "collections:" + kind
}
