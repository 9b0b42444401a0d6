package providers

import (
	"context"
	"fmt"

	"github.com/samber/do/v2"

	"github.com/listenupapp/mediatray/internal/config"
	"github.com/listenupapp/mediatray/internal/dom"
	"github.com/listenupapp/mediatray/internal/hook"
	"github.com/listenupapp/mediatray/internal/host"
	"github.com/listenupapp/mediatray/internal/logger"
	"github.com/listenupapp/mediatray/internal/plugins"
	"github.com/listenupapp/mediatray/internal/plugins/bannerimages"
	"github.com/listenupapp/mediatray/internal/plugins/coverimages"
	"github.com/listenupapp/mediatray/internal/plugins/hidespoilers"
	"github.com/listenupapp/mediatray/internal/plugins/imageoverride"
	"github.com/listenupapp/mediatray/internal/validation"
)

// PluginsHandle holds the started plugins.
type PluginsHandle struct {
	Overrides []*imageoverride.Plugin
	// Spoilers is nil when hide-spoilers is disabled.
	Spoilers *hidespoilers.Plugin

	started []plugins.Plugin
	log     *logger.Logger
}

// Shutdown implements do.Shutdownable. Plugins stop in reverse start order.
func (h *PluginsHandle) Shutdown() error {
	for i := len(h.started) - 1; i >= 0; i-- {
		h.started[i].Stop()
		h.log.Info("Plugin stopped", "plugin", h.started[i].ID())
	}
	h.started = nil
	return nil
}

// ProvidePlugins creates and starts every enabled plugin.
func ProvidePlugins(i do.Injector) (*PluginsHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)

	env := plugins.Env{
		Hooks:            do.MustInvoke[*hook.Hooks](i),
		Screen:           do.MustInvoke[*host.Navigator](i),
		Document:         do.MustInvoke[*dom.Page](i),
		Collections:      do.MustInvoke[*host.CollectionCache](i),
		Notifier:         do.MustInvoke[*host.EventBridge](i),
		Store:            storeHandle.Store,
		Validator:        do.MustInvoke[*validation.Validator](i),
		Logger:           log.Logger,
		PrefetchInterval: cfg.Prefetch.Interval,
	}

	handle := &PluginsHandle{log: log}

	overrideCtors := []struct {
		id  string
		new func(plugins.Env) (*imageoverride.Plugin, error)
	}{
		{config.PluginBannerImages, bannerimages.New},
		{config.PluginCoverImages, coverimages.New},
	}
	var enabled []plugins.Plugin
	for _, c := range overrideCtors {
		if !cfg.Plugins.IsEnabled(c.id) {
			continue
		}
		p, err := c.new(env)
		if err != nil {
			return nil, fmt.Errorf("create plugin %s: %w", c.id, err)
		}
		handle.Overrides = append(handle.Overrides, p)
		enabled = append(enabled, p)
	}
	if cfg.Plugins.IsEnabled(config.PluginHideSpoilers) {
		handle.Spoilers = hidespoilers.New(env)
		enabled = append(enabled, handle.Spoilers)
	}

	// Plugin lifetimes are bounded by Shutdown, not by a request.
	ctx := context.Background()
	for _, p := range enabled {
		if err := p.Start(ctx); err != nil {
			_ = handle.Shutdown()
			return nil, fmt.Errorf("start plugin %s: %w", p.ID(), err)
		}
		handle.started = append(handle.started, p)
		log.Info("Plugin started", "plugin", p.ID())
	}

	return handle, nil
}
