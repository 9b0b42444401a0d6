// Package sse implements Server-Sent Events carrying the bridge's requests to the host.
package sse

import "time"

// The host pushes payloads and DOM snapshots to the bridge over HTTP.
// Everything flowing the other way (style patches, toasts, navigation) is an SSE event.

// EventType represents the type of SSE Event.
type EventType string

const (
	// EventDOMStyle asks the host to set or remove an inline style property.
	EventDOMStyle EventType = "dom.style"
	// EventDOMObserve announces a selector the bridge wants mutation batches for.
	EventDOMObserve EventType = "dom.observe"
	// EventDOMRefetch asks the host to resend the current elements of a selector.
	EventDOMRefetch EventType = "dom.refetch"

	// EventTrayBadge updates a plugin's tray badge.
	EventTrayBadge EventType = "tray.badge"
	// EventTrayToast shows a toast for a plugin.
	EventTrayToast EventType = "tray.toast"
	// EventTrayClose closes a plugin's tray.
	EventTrayClose EventType = "tray.close"
	// EventTrayUpdate tells the host to re-render a plugin's tray.
	EventTrayUpdate EventType = "tray.update"

	// EventScreenNavigate asks the host to navigate.
	EventScreenNavigate EventType = "screen.navigate"

	// EventCollectionRefresh asks the host to refetch a collection.
	EventCollectionRefresh EventType = "collection.refresh"
	// EventCollectionFetch asks the host to fetch a collection and pass it through the hooks.
	EventCollectionFetch EventType = "collection.fetch"

	// EventQueryInvalidate asks the host to invalidate client query caches.
	EventQueryInvalidate EventType = "query.invalidate"

	// EventBridgeConnected opens every stream.
	EventBridgeConnected EventType = "bridge.connected"

	// EventHeartbeat represents a connection keepalive event.
	EventHeartbeat EventType = "heartbeat"
)

// Event represents an SSE event to be sent to clients.
// The Data field contains the event payload as a JSON object for direct deserialization.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
	Type      EventType `json:"type"`

	// Plugin limits delivery to clients subscribed to that plugin.
	// Empty means broadcast to all.
	Plugin string `json:"plugin,omitempty"`
}

// StyleEventData is the payload of dom.style events. Removed events carry no value.
type StyleEventData struct {
	ElementID string `json:"elementId"`
	Property  string `json:"property"`
	Value     string `json:"value,omitempty"`
	Removed   bool   `json:"removed,omitempty"`
}

// ObserveEventData is the payload of dom.observe events.
type ObserveEventData struct {
	Selector         string `json:"selector"`
	WithInnerHTML    bool   `json:"withInnerHTML"`
	IdentifyChildren bool   `json:"identifyChildren"`
}

// SelectorEventData is the payload of dom.refetch events.
type SelectorEventData struct {
	Selector string `json:"selector"`
}

// BadgeEventData is the payload of tray.badge events.
type BadgeEventData struct {
	Number int    `json:"number"`
	Intent string `json:"intent,omitempty"`
}

// ToastEventData is the payload of tray.toast events.
type ToastEventData struct {
	Level   string `json:"level"`
	Message string `json:"message"`
}

// NavigateEventData is the payload of screen.navigate events.
type NavigateEventData struct {
	Pathname     string            `json:"pathname"`
	SearchParams map[string]string `json:"searchParams,omitempty"`
}

// CollectionEventData is the payload of collection.refresh and collection.fetch events.
type CollectionEventData struct {
	Collection  string `json:"collection"`
	BypassCache bool   `json:"bypassCache,omitempty"`
}

// QueryInvalidateEventData is the payload of query.invalidate events.
type QueryInvalidateEventData struct {
	Keys []string `json:"keys"`
}

// ConnectedEventData is the payload of bridge.connected events.
type ConnectedEventData struct {
	ClientID string `json:"clientId"`
	Plugin   string `json:"plugin,omitempty"`
}

// HeartbeatEventData is the data payload for heartbeat events.
type HeartbeatEventData struct {
	ServerTime time.Time `json:"server_time"`
}

func newEvent(t EventType, plugin string, data any) Event {
	return Event{
		Type:      t,
		Timestamp: time.Now(),
		Plugin:    plugin,
		Data:      data,
	}
}

// NewStyleSetEvent creates a dom.style event setting property on an element.
func NewStyleSetEvent(elementID, property, value string) Event {
	return newEvent(EventDOMStyle, "", StyleEventData{ElementID: elementID, Property: property, Value: value})
}

// NewStyleRemovedEvent creates a dom.style event removing property from an element.
func NewStyleRemovedEvent(elementID, property string) Event {
	return newEvent(EventDOMStyle, "", StyleEventData{ElementID: elementID, Property: property, Removed: true})
}

// NewObserveEvent creates a dom.observe event.
func NewObserveEvent(selector string, withInnerHTML, identifyChildren bool) Event {
	return newEvent(EventDOMObserve, "", ObserveEventData{
		Selector:         selector,
		WithInnerHTML:    withInnerHTML,
		IdentifyChildren: identifyChildren,
	})
}

// NewRefetchEvent creates a dom.refetch event.
func NewRefetchEvent(selector string) Event {
	return newEvent(EventDOMRefetch, "", SelectorEventData{Selector: selector})
}

// NewBadgeEvent creates a tray.badge event.
func NewBadgeEvent(plugin string, number int, intent string) Event {
	return newEvent(EventTrayBadge, plugin, BadgeEventData{Number: number, Intent: intent})
}

// NewToastEvent creates a tray.toast event.
func NewToastEvent(plugin, level, message string) Event {
	return newEvent(EventTrayToast, plugin, ToastEventData{Level: level, Message: message})
}

// NewTrayCloseEvent creates a tray.close event.
func NewTrayCloseEvent(plugin string) Event {
	return newEvent(EventTrayClose, plugin, nil)
}

// NewTrayUpdateEvent creates a tray.update event.
func NewTrayUpdateEvent(plugin string) Event {
	return newEvent(EventTrayUpdate, plugin, nil)
}

// NewNavigateEvent creates a screen.navigate event.
func NewNavigateEvent(pathname string, params map[string]string) Event {
	return newEvent(EventScreenNavigate, "", NavigateEventData{Pathname: pathname, SearchParams: params})
}

// NewCollectionRefreshEvent creates a collection.refresh event.
func NewCollectionRefreshEvent(collection string) Event {
	return newEvent(EventCollectionRefresh, "", CollectionEventData{Collection: collection})
}

// NewCollectionFetchEvent creates a collection.fetch event.
func NewCollectionFetchEvent(collection string, bypassCache bool) Event {
	return newEvent(EventCollectionFetch, "", CollectionEventData{Collection: collection, BypassCache: bypassCache})
}

// NewQueryInvalidateEvent creates a query.invalidate event.
func NewQueryInvalidateEvent(keys []string) Event {
	return newEvent(EventQueryInvalidate, "", QueryInvalidateEventData{Keys: keys})
}

// NewConnectedEvent creates the bridge.connected event opening a stream.
func NewConnectedEvent(clientID, plugin string) Event {
	return newEvent(EventBridgeConnected, plugin, ConnectedEventData{ClientID: clientID, Plugin: plugin})
}

// NewHeartbeatEvent creates a new heartbeat event.
func NewHeartbeatEvent() Event {
	return newEvent(EventHeartbeat, "", HeartbeatEventData{ServerTime: time.Now()})
}
