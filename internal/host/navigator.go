package host

import (
	"context"
	"maps"
	"sync"

	"github.com/listenupapp/mediatray/internal/sse"
)

// Navigator is the bridge's Screen: navigation reported by the host fans out to
// registered handlers; navigation requests become screen.navigate events.
type Navigator struct {
	emitter Emitter

	mu       sync.RWMutex
	current  Navigation
	handlers []*navHandler
	nextID   int
}

type navHandler struct {
	id int
	fn func(context.Context, Navigation)
}

var _ Screen = (*Navigator)(nil)

// NewNavigator creates a navigator emitting requests to emitter.
func NewNavigator(emitter Emitter) *Navigator {
	return &Navigator{emitter: emitter}
}

// OnNavigate registers fn.
func (n *Navigator) OnNavigate(fn func(ctx context.Context, nav Navigation)) func() {
	n.mu.Lock()
	n.nextID++
	h := &navHandler{id: n.nextID, fn: fn}
	n.handlers = append(n.handlers, h)
	n.mu.Unlock()

	return func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		for i, existing := range n.handlers {
			if existing.id == h.id {
				n.handlers = append(n.handlers[:i], n.handlers[i+1:]...)
				return
			}
		}
	}
}

// Navigate records a navigation reported by the host and runs every handler in registration order.
func (n *Navigator) Navigate(ctx context.Context, nav Navigation) {
	nav.SearchParams = maps.Clone(nav.SearchParams)

	n.mu.Lock()
	n.current = nav
	handlers := make([]*navHandler, len(n.handlers))
	copy(handlers, n.handlers)
	n.mu.Unlock()

	for _, h := range handlers {
		h.fn(ctx, nav)
	}
}

// LoadCurrent replays the current navigation to every handler.
func (n *Navigator) LoadCurrent(ctx context.Context) {
	n.Navigate(ctx, n.Current())
}

// Current returns the last reported navigation.
func (n *Navigator) Current() Navigation {
	n.mu.RLock()
	defer n.mu.RUnlock()

	nav := n.current
	nav.SearchParams = maps.Clone(n.current.SearchParams)
	return nav
}

// NavigateTo emits a navigation request.
func (n *Navigator) NavigateTo(path string, params map[string]string) {
	n.emitter.Emit(sse.NewNavigateEvent(path, params))
}
