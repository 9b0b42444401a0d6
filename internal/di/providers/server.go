package providers

import (
	"context"
	"errors"
	"net/http"

	"github.com/samber/do/v2"

	"github.com/listenupapp/mediatray/internal/api"
	"github.com/listenupapp/mediatray/internal/config"
	"github.com/listenupapp/mediatray/internal/dom"
	"github.com/listenupapp/mediatray/internal/hook"
	"github.com/listenupapp/mediatray/internal/host"
	"github.com/listenupapp/mediatray/internal/logger"
	"github.com/listenupapp/mediatray/internal/sse"
)

// HTTPServerHandle wraps http.Server with Shutdownable.
type HTTPServerHandle struct {
	*http.Server
}

// Shutdown implements do.Shutdownable.
func (h *HTTPServerHandle) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return h.Server.Shutdown(ctx)
}

// ProvideHTTPServer provides the HTTP server.
func ProvideHTTPServer(i do.Injector) (*HTTPServerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	sseHandle := do.MustInvoke[*SSEManagerHandle](i)
	loopHandle := do.MustInvoke[*LoopHandle](i)
	pluginsHandle := do.MustInvoke[*PluginsHandle](i)

	handler := api.NewServer(api.Deps{
		Store:       storeHandle.Store,
		Loop:        loopHandle.Loop,
		Hooks:       do.MustInvoke[*hook.Hooks](i),
		Navigator:   do.MustInvoke[*host.Navigator](i),
		Page:        do.MustInvoke[*dom.Page](i),
		Collections: do.MustInvoke[*host.CollectionCache](i),
		SSEManager:  sseHandle.Manager,
		SSEHandler:  sse.NewHandler(sseHandle.Manager, log.Logger),

		AllowedOrigins: cfg.Server.AllowedOrigins,

		Overrides: pluginsHandle.Overrides,
		Spoilers:  pluginsHandle.Spoilers,
	}, log.Logger)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info("HTTP server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("HTTP server error", "error", err)
		}
	}()

	return &HTTPServerHandle{Server: srv}, nil
}
