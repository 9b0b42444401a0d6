// Package plugins holds what every extension receives from the bridge.
package plugins

import (
	"context"
	"log/slog"
	"time"

	"github.com/listenupapp/mediatray/internal/dom"
	"github.com/listenupapp/mediatray/internal/hook"
	"github.com/listenupapp/mediatray/internal/host"
	"github.com/listenupapp/mediatray/internal/store"
	"github.com/listenupapp/mediatray/internal/validation"
)

// Plugin ids. They double as storage namespaces and match the ids accepted by PLUGINS.
const (
	BannerImagesID = "custom-banner-images"
	CoverImagesID  = "custom-cover-images"
	HideSpoilersID = "hide-spoilers"
)

// Env is the host surface shared by every plugin instance.
type Env struct {
	Hooks       *hook.Hooks
	Screen      host.Screen
	Document    dom.Document
	Collections host.Collections
	Notifier    host.Notifier
	Store       *store.Store
	Validator   *validation.Validator
	Logger      *slog.Logger

	// PrefetchInterval throttles the spoiler root prefetch.
	PrefetchInterval time.Duration
}

// Plugin is one running extension.
type Plugin interface {
	ID() string
	Start(ctx context.Context) error
	Stop()
}

// LoggerFor returns env's logger scoped to plugin.
func (e Env) LoggerFor(plugin string) *slog.Logger {
	logger := e.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return logger.With("plugin", plugin)
}
