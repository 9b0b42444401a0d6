package spoiler

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/listenupapp/mediatray/internal/host"
	"github.com/listenupapp/mediatray/internal/ratelimit"
)

const (
	rootPath    = "/"
	prefetchKey = "root-prefetch"
)

// RootPrefetcher refreshes the anime collection when the library root is shown with
// thumbnails or titles hidden, so the metadata cell is current before episodes render.
type RootPrefetcher struct {
	collections host.Collections
	settings    SettingsSource
	limiter     *ratelimit.KeyedRateLimiter
	logger      *slog.Logger

	wg sync.WaitGroup
}

// NewRootPrefetcher creates a prefetcher issuing at most one fetch per interval.
func NewRootPrefetcher(collections host.Collections, settings SettingsSource, interval time.Duration, logger *slog.Logger) *RootPrefetcher {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &RootPrefetcher{
		collections: collections,
		settings:    settings,
		limiter:     ratelimit.Every(interval),
		logger:      logger.With("component", "root-prefetch"),
	}
}

// HandleNavigation starts a background fetch when nav is the library root.
// It reports whether a fetch was started.
func (p *RootPrefetcher) HandleNavigation(ctx context.Context, nav host.Navigation) bool {
	if nav.Pathname != rootPath {
		return false
	}
	s, err := p.settings.Load(ctx)
	if err != nil {
		p.logger.Warn("failed to load settings", "error", err)
		return false
	}
	if !s.HideThumbnails && !s.HideTitles {
		return false
	}
	if !p.limiter.Allow(prefetchKey) {
		p.logger.Debug("root prefetch throttled")
		return false
	}

	// The fetch outlives the navigation request that triggered it.
	fetchCtx := context.WithoutCancel(ctx)
	p.wg.Go(func() {
		if _, err := p.collections.AnimeCollection(fetchCtx, true); err != nil {
			p.logger.Warn("root prefetch failed", "error", err)
		}
	})
	return true
}

// Wait blocks until every started fetch has returned.
func (p *RootPrefetcher) Wait() {
	p.wg.Wait()
}
