// Package di provides dependency injection configuration for the mediatray bridge.
package di

import (
	"github.com/samber/do/v2"

	"github.com/listenupapp/mediatray/internal/config"
	"github.com/listenupapp/mediatray/internal/di/providers"
	"github.com/listenupapp/mediatray/internal/dom"
	"github.com/listenupapp/mediatray/internal/hook"
	"github.com/listenupapp/mediatray/internal/host"
	"github.com/listenupapp/mediatray/internal/logger"
	"github.com/listenupapp/mediatray/internal/validation"
)

// NewContainer creates and configures the DI container with all providers.
// args are the command-line arguments without the program name.
func NewContainer(args []string) *do.RootScope {
	injector := do.New()

	do.ProvideValue(injector, providers.Args(args))

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)
	do.Provide(injector, providers.ProvideValidator)

	// Storage and event stream
	do.Provide(injector, providers.ProvideSSEManager)
	do.Provide(injector, providers.ProvideStore)

	// Host bridge
	do.Provide(injector, providers.ProvideLoop)
	do.Provide(injector, providers.ProvideEventBridge)
	do.Provide(injector, providers.ProvideNavigator)
	do.Provide(injector, providers.ProvidePage)
	do.Provide(injector, providers.ProvideCollections)
	do.Provide(injector, providers.ProvideHooks)

	// Plugins
	do.Provide(injector, providers.ProvidePlugins)

	// Server
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap initializes all services. Plugins start before the server accepts hooks.
func Bootstrap(injector *do.RootScope) error {
	if _, err := do.Invoke[*config.Config](injector); err != nil {
		return err
	}
	_ = do.MustInvoke[*logger.Logger](injector)
	_ = do.MustInvoke[*validation.Validator](injector)
	_ = do.MustInvoke[*providers.SSEManagerHandle](injector)
	if _, err := do.Invoke[*providers.StoreHandle](injector); err != nil {
		return err
	}
	_ = do.MustInvoke[*providers.LoopHandle](injector)
	_ = do.MustInvoke[*host.EventBridge](injector)
	_ = do.MustInvoke[*host.Navigator](injector)
	_ = do.MustInvoke[*dom.Page](injector)
	_ = do.MustInvoke[*host.CollectionCache](injector)
	_ = do.MustInvoke[*hook.Hooks](injector)

	if _, err := do.Invoke[*providers.PluginsHandle](injector); err != nil {
		return err
	}

	_ = do.MustInvoke[*providers.HTTPServerHandle](injector)

	return nil
}
