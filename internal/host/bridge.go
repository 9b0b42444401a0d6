package host

import (
	"github.com/listenupapp/mediatray/internal/dom"
	"github.com/listenupapp/mediatray/internal/sse"
)

// EventBridge turns plugin effects into SSE events for the host.
type EventBridge struct {
	emitter Emitter
}

var (
	_ Notifier = (*EventBridge)(nil)
	_ dom.Sink = (*EventBridge)(nil)
)

// NewEventBridge creates a bridge over emitter.
func NewEventBridge(emitter Emitter) *EventBridge {
	return &EventBridge{emitter: emitter}
}

func (b *EventBridge) Toast(plugin string, level ToastLevel, message string) {
	b.emitter.Emit(sse.NewToastEvent(plugin, string(level), message))
}

func (b *EventBridge) Badge(plugin string, badge Badge) {
	b.emitter.Emit(sse.NewBadgeEvent(plugin, badge.Number, badge.Intent))
}

func (b *EventBridge) InvalidateQueries(keys ...string) {
	b.emitter.Emit(sse.NewQueryInvalidateEvent(keys))
}

func (b *EventBridge) CloseTray(plugin string) {
	b.emitter.Emit(sse.NewTrayCloseEvent(plugin))
}

func (b *EventBridge) UpdateTray(plugin string) {
	b.emitter.Emit(sse.NewTrayUpdateEvent(plugin))
}

func (b *EventBridge) StyleSet(elementID, property, value string) {
	b.emitter.Emit(sse.NewStyleSetEvent(elementID, property, value))
}

func (b *EventBridge) StyleRemoved(elementID, property string) {
	b.emitter.Emit(sse.NewStyleRemovedEvent(elementID, property))
}

func (b *EventBridge) Observed(selector string, opts dom.ObserveOptions) {
	b.emitter.Emit(sse.NewObserveEvent(selector, opts.WithInnerHTML, opts.IdentifyChildren))
}

func (b *EventBridge) RefreshRequested(selector string) {
	b.emitter.Emit(sse.NewRefetchEvent(selector))
}
