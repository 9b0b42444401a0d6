// Package imageoverride implements the per-entity image override extensions.
package imageoverride

import (
	"context"
	"log/slog"
	"sync"

	"github.com/listenupapp/mediatray/internal/domain"
	"github.com/listenupapp/mediatray/internal/hook"
	"github.com/listenupapp/mediatray/internal/host"
	"github.com/listenupapp/mediatray/internal/overrides"
	"github.com/listenupapp/mediatray/internal/plugins"
	"github.com/listenupapp/mediatray/internal/search"
	"github.com/listenupapp/mediatray/internal/transform"
	"github.com/listenupapp/mediatray/internal/tray"
)

// Options select what a plugin instance overrides.
type Options struct {
	ID     string
	Kind   overrides.Kind
	Field  transform.Field
	Labels tray.Labels
}

// Plugin rewrites one media image field from stored overrides and drives its tray.
type Plugin struct {
	opts    Options
	env     plugins.Env
	adapter *overrides.Adapter
	tray    *tray.Controller
	index   *search.Index
	logger  *slog.Logger

	mu         sync.Mutex
	unregister func()
}

var _ plugins.Plugin = (*Plugin)(nil)

// New creates a plugin instance. Its storage namespace is the plugin id.
func New(env plugins.Env, opts Options) (*Plugin, error) {
	logger := env.LoggerFor(opts.ID)

	idx, err := search.NewIndex(logger)
	if err != nil {
		return nil, err
	}

	adapter := overrides.New(env.Store.Bucket(opts.ID), opts.Kind)
	return &Plugin{
		opts:    opts,
		env:     env,
		adapter: adapter,
		index:   idx,
		logger:  logger,
		tray: tray.New(tray.Config{
			Plugin:      opts.ID,
			Labels:      opts.Labels,
			Adapter:     adapter,
			Collections: env.Collections,
			Screen:      env.Screen,
			Notifier:    env.Notifier,
			Validator:   env.Validator,
			Index:       idx,
			Logger:      logger,
		}),
	}, nil
}

// ID returns the plugin id.
func (p *Plugin) ID() string {
	return p.opts.ID
}

// Adapter returns the override store of this instance.
func (p *Plugin) Adapter() *overrides.Adapter {
	return p.adapter
}

// Tray returns the tray controller.
func (p *Plugin) Tray() *tray.Controller {
	return p.tray
}

// Start registers the collection steps and the navigation handler.
func (p *Plugin) Start(ctx context.Context) error {
	step := p.Step()
	for _, pipeline := range p.env.Hooks.Collections() {
		pipeline.Register(p.stepName(), step)
	}

	unregister := p.env.Screen.OnNavigate(p.tray.HandleNavigation)
	p.mu.Lock()
	p.unregister = unregister
	p.mu.Unlock()

	p.env.Notifier.Badge(p.opts.ID, host.Badge{})
	p.logger.Info("plugin started", "kind", p.opts.Kind, "field", p.opts.Field)
	return nil
}

// Stop removes the collection steps, detaches from navigation and releases the search index.
func (p *Plugin) Stop() {
	p.mu.Lock()
	unregister := p.unregister
	p.unregister = nil
	p.mu.Unlock()

	if unregister != nil {
		unregister()
	}
	for _, pipeline := range p.env.Hooks.Collections() {
		pipeline.Unregister(p.stepName())
	}
	if err := p.index.Close(); err != nil {
		p.logger.Warn("failed to close search index", "error", err)
	}
}

func (p *Plugin) stepName() string {
	return p.opts.ID + ":" + p.opts.Field.String()
}

// Step rewrites a collection from the overrides stored at the time of the call.
func (p *Plugin) Step() hook.StepFunc[*domain.MediaCollection] {
	return func(ctx context.Context, c *domain.MediaCollection) (hook.Outcome, error) {
		if !c.HasLists() {
			return hook.Skipped, nil
		}
		all, err := p.adapter.All(ctx)
		if err != nil {
			return hook.Skipped, err
		}
		if transform.Apply(c, all, p.opts.Field) == 0 {
			return hook.Skipped, nil
		}
		return hook.Transformed, nil
	}
}
