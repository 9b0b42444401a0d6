// Package host declares the host collaborators the extensions consume and the bridge's
// implementations of them.
package host

import (
	"context"

	"github.com/listenupapp/mediatray/internal/domain"
)

// Collections fetches the user's media collections through the host.
type Collections interface {
	AnimeCollection(ctx context.Context, bypassCache bool) (*domain.MediaCollection, error)
	MangaCollection(ctx context.Context, bypassCache bool) (*domain.MediaCollection, error)
	RefreshAnimeCollection(ctx context.Context) error
	RefreshMangaCollection(ctx context.Context) error
}

// Navigation is a screen change reported by the host.
type Navigation struct {
	Pathname     string            `json:"pathname"`
	SearchParams map[string]string `json:"searchParams,omitempty"`
}

// Param returns a search parameter or "".
func (n Navigation) Param(key string) string {
	return n.SearchParams[key]
}

// Screen reports and requests navigation.
type Screen interface {
	// OnNavigate registers fn for every navigation. The returned func unregisters it.
	OnNavigate(fn func(ctx context.Context, nav Navigation)) (unregister func())
	// Current returns the last reported navigation.
	Current() Navigation
	// NavigateTo asks the host to show path.
	NavigateTo(path string, params map[string]string)
}

// ToastLevel is the severity of a toast.
type ToastLevel string

const (
	ToastInfo    ToastLevel = "info"
	ToastSuccess ToastLevel = "success"
	ToastWarning ToastLevel = "warning"
	ToastError   ToastLevel = "error"
)

// Badge is the number shown on a tray icon. Number zero hides it.
type Badge struct {
	Number int    `json:"number"`
	Intent string `json:"intent,omitempty"`
}

// Notifier performs the host-side UI effects of a plugin.
type Notifier interface {
	Toast(plugin string, level ToastLevel, message string)
	Badge(plugin string, badge Badge)
	InvalidateQueries(keys ...string)
	CloseTray(plugin string)
	UpdateTray(plugin string)
}

// Emitter publishes bridge events. *sse.Manager satisfies it.
type Emitter interface {
	Emit(event any)
}
