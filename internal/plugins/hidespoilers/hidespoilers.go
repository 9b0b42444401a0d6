// Package hidespoilers blurs episode artwork, titles and descriptions past the user's progress.
package hidespoilers

import (
	"context"
	"log/slog"
	"sync"

	"github.com/listenupapp/mediatray/internal/domain"
	"github.com/listenupapp/mediatray/internal/host"
	"github.com/listenupapp/mediatray/internal/overrides"
	"github.com/listenupapp/mediatray/internal/plugins"
	"github.com/listenupapp/mediatray/internal/reactive"
	"github.com/listenupapp/mediatray/internal/spoiler"
)

// Plugin wires the spoiler engine to the host.
type Plugin struct {
	env        plugins.Env
	settings   *overrides.Settings
	metadata   *reactive.Cell[domain.MediaMetadataSet]
	engine     *spoiler.Engine
	prefetcher *spoiler.RootPrefetcher
	tray       *spoiler.SettingsTray
	logger     *slog.Logger

	mu   sync.Mutex
	stop []func()
}

var _ plugins.Plugin = (*Plugin)(nil)

// New creates the plugin.
func New(env plugins.Env) *Plugin {
	logger := env.LoggerFor(plugins.HideSpoilersID)
	settings := overrides.NewSettings(env.Store.Bucket(plugins.HideSpoilersID))
	engine := spoiler.NewEngine(env.Document, settings, logger)

	return &Plugin{
		env:        env,
		settings:   settings,
		metadata:   reactive.NewCell(domain.MediaMetadataSet{}),
		engine:     engine,
		prefetcher: spoiler.NewRootPrefetcher(env.Collections, settings, env.PrefetchInterval, logger),
		tray:       spoiler.NewSettingsTray(plugins.HideSpoilersID, settings, engine, env.Notifier, logger),
		logger:     logger,
	}
}

// ID returns the plugin id.
func (p *Plugin) ID() string {
	return plugins.HideSpoilersID
}

// Settings returns the settings store.
func (p *Plugin) Settings() *overrides.Settings {
	return p.settings
}

// Metadata returns the derived metadata cell.
func (p *Plugin) Metadata() *reactive.Cell[domain.MediaMetadataSet] {
	return p.metadata
}

// Engine returns the DOM synchronization engine.
func (p *Plugin) Engine() *spoiler.Engine {
	return p.engine
}

// Tray returns the settings tray.
func (p *Plugin) Tray() *spoiler.SettingsTray {
	return p.tray
}

// Start registers the hook steps, the page observers and the navigation handler.
func (p *Plugin) Start(ctx context.Context) error {
	hooks := p.env.Hooks
	const id = plugins.HideSpoilersID

	const (
		metadataStep = id + ":metadata"
		watchingStep = id + ":continue-watching"
		missingStep  = id + ":missing-episodes"
	)

	metadata := spoiler.MetadataStep(p.metadata)
	hooks.AnimeCollection.Register(metadataStep, metadata)
	hooks.CachedAnimeCollection.Register(metadataStep, metadata)
	hooks.AnimeLibraryCollection.Register(watchingStep, spoiler.LibraryStep(p.settings))
	hooks.AnimeLibraryStreamCollection.Register(watchingStep, spoiler.StreamStep(p.settings))
	hooks.MissingEpisodes.Register(missingStep, spoiler.MissingEpisodesStep(p.settings))
	unregisterSteps := func() {
		hooks.AnimeCollection.Unregister(metadataStep)
		hooks.CachedAnimeCollection.Unregister(metadataStep)
		hooks.AnimeLibraryCollection.Unregister(watchingStep)
		hooks.AnimeLibraryStreamCollection.Unregister(watchingStep)
		hooks.MissingEpisodes.Unregister(missingStep)
	}

	unwatch := p.metadata.Watch(func(domain.MediaMetadataSet) {
		p.engine.RefreshCards()
	})

	p.engine.Attach(ctx)

	unregister := p.env.Screen.OnNavigate(func(ctx context.Context, nav host.Navigation) {
		p.prefetcher.HandleNavigation(ctx, nav)
		p.engine.RefreshAll()
	})

	p.mu.Lock()
	p.stop = append(p.stop, unregisterSteps, unwatch, unregister, p.engine.Detach)
	p.mu.Unlock()

	p.logger.Info("plugin started")
	return nil
}

// Stop detaches every handler and waits for background fetches.
func (p *Plugin) Stop() {
	p.mu.Lock()
	stop := p.stop
	p.stop = nil
	p.mu.Unlock()

	for _, fn := range stop {
		fn()
	}
	p.prefetcher.Wait()
}
