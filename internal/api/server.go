// Package api exposes the bridge to the host: hook interception, navigation and DOM reports,
// plugin trays, and the event stream.
package api

import (
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/listenupapp/mediatray/internal/dom"
	"github.com/listenupapp/mediatray/internal/hook"
	"github.com/listenupapp/mediatray/internal/host"
	"github.com/listenupapp/mediatray/internal/plugins/hidespoilers"
	"github.com/listenupapp/mediatray/internal/plugins/imageoverride"
	"github.com/listenupapp/mediatray/internal/sse"
	"github.com/listenupapp/mediatray/internal/store"
)

// Deps are the components the handlers drive.
type Deps struct {
	Store       *store.Store
	Loop        *host.Loop
	Hooks       *hook.Hooks
	Navigator   *host.Navigator
	Page        *dom.Page
	Collections *host.CollectionCache
	SSEManager  *sse.Manager
	SSEHandler  *sse.Handler

	// AllowedOrigins enables CORS for the host UI. Empty disables the middleware.
	AllowedOrigins []string

	Overrides []*imageoverride.Plugin
	// Spoilers is nil when hide-spoilers is disabled.
	Spoilers *hidespoilers.Plugin
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	deps      Deps
	overrides map[string]*imageoverride.Plugin
	router    *chi.Mux
	api       huma.API
	logger    *slog.Logger
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(deps Deps, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Recoverer)
	if len(deps.AllowedOrigins) > 0 {
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins: deps.AllowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Content-Type", "Last-Event-ID"},
			MaxAge:         300,
		}))
	}

	config := huma.DefaultConfig("Mediatray Bridge API", "1.0.0")
	config.Transformers = append(config.Transformers, EnvelopeTransformer)
	RegisterErrorHandler()

	s := &Server{
		deps:      deps,
		overrides: make(map[string]*imageoverride.Plugin, len(deps.Overrides)),
		router:    router,
		api:       humachi.New(router, config),
		logger:    logger,
	}
	for _, p := range deps.Overrides {
		s.overrides[p.ID()] = p
	}

	if deps.SSEHandler != nil {
		router.Get("/api/v1/events", deps.SSEHandler.ServeHTTP)
	}

	s.registerHealthRoutes()
	s.registerHookRoutes()
	s.registerScreenRoutes()
	s.registerPluginRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// API returns the huma API.
func (s *Server) API() huma.API {
	return s.api
}
