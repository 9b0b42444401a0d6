package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/listenupapp/mediatray/internal/dom"
	"github.com/listenupapp/mediatray/internal/hook"
	"github.com/listenupapp/mediatray/internal/host"
	"github.com/listenupapp/mediatray/internal/logger"
)

// LoopHandle wraps the reaction loop with its context.
type LoopHandle struct {
	*host.Loop
	cancel context.CancelFunc
}

// Shutdown implements do.Shutdownable. Queued reactions drain before the context is cancelled.
func (h *LoopHandle) Shutdown() error {
	defer h.cancel()
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return h.Loop.Shutdown(ctx)
}

// ProvideLoop provides the loop every host reaction runs on.
func ProvideLoop(i do.Injector) (*LoopHandle, error) {
	log := do.MustInvoke[*logger.Logger](i)

	loop := host.NewLoop(log.Logger)
	ctx, cancel := context.WithCancel(context.Background())
	go loop.Start(ctx)

	return &LoopHandle{Loop: loop, cancel: cancel}, nil
}

// ProvideEventBridge provides the notifier and DOM sink backed by the event stream.
func ProvideEventBridge(i do.Injector) (*host.EventBridge, error) {
	sseHandle := do.MustInvoke[*SSEManagerHandle](i)
	return host.NewEventBridge(sseHandle.Manager), nil
}

// ProvideNavigator provides the host screen.
func ProvideNavigator(i do.Injector) (*host.Navigator, error) {
	sseHandle := do.MustInvoke[*SSEManagerHandle](i)
	return host.NewNavigator(sseHandle.Manager), nil
}

// ProvidePage provides the mirrored host document.
func ProvidePage(i do.Injector) (*dom.Page, error) {
	log := do.MustInvoke[*logger.Logger](i)
	bridge := do.MustInvoke[*host.EventBridge](i)
	return dom.NewPage(bridge, log.Logger), nil
}

// ProvideCollections provides the host collection cache.
func ProvideCollections(i do.Injector) (*host.CollectionCache, error) {
	log := do.MustInvoke[*logger.Logger](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	sseHandle := do.MustInvoke[*SSEManagerHandle](i)

	return host.NewCollectionCache(storeHandle.Namespace(collectionsNamespace), sseHandle.Manager, log.Logger), nil
}

// ProvideHooks provides the interception pipelines.
func ProvideHooks(i do.Injector) (*hook.Hooks, error) {
	log := do.MustInvoke[*logger.Logger](i)
	return hook.NewHooks(log.Logger), nil
}
