// Package dom models the host's rendered elements as seen by the extensions.
//
// Extensions only observe and restyle elements. They never create or remove them.
package dom

import (
	"strings"
	"sync"
)

// Element is a rendered element handle.
type Element interface {
	ID() string
	Attribute(name string) (string, bool)
	InnerHTML() string
	SetStyle(property, value string)
	RemoveStyle(property string)
}

// ObserveOptions mirror what the host attaches to each observed element.
type ObserveOptions struct {
	WithInnerHTML    bool `json:"withInnerHTML"`
	IdentifyChildren bool `json:"identifyChildren"`
}

// Document locates and observes elements.
type Document interface {
	// QueryOne returns the first element matching selector.
	QueryOne(selector string) (Element, bool)
	// AsElement returns a handle for the element with the given id.
	AsElement(id string) (Element, bool)
	// Observe calls fn with every batch of elements matching selector until the subscription stops.
	Observe(selector string, fn func([]Element), opts ObserveOptions) *Subscription
	// OnReady registers fn to run whenever the document finishes loading.
	OnReady(fn func())
}

// Subscription is the handle of one observer.
type Subscription struct {
	selector string
	stop     func()
	refresh  func()

	mu      sync.Mutex
	stopped bool
}

// NewSubscription wraps stop and refresh callbacks.
func NewSubscription(selector string, stop, refresh func()) *Subscription {
	return &Subscription{selector: selector, stop: stop, refresh: refresh}
}

// Selector returns the observed selector.
func (s *Subscription) Selector() string {
	return s.selector
}

// Stop ends the subscription. Further calls are no-ops.
func (s *Subscription) Stop() {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.stopped = true
	s.mu.Unlock()

	if s.stop != nil {
		s.stop()
	}
}

// Refresh re-delivers the current matching elements to the observer.
func (s *Subscription) Refresh() {
	s.mu.Lock()
	stopped := s.stopped
	s.mu.Unlock()

	if !stopped && s.refresh != nil {
		s.refresh()
	}
}

// Stopped reports whether Stop was called.
func (s *Subscription) Stopped() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stopped
}

// Selector is a parsed attribute selector: [attr] or [attr="value"].
type Selector struct {
	Attr     string
	Value    string
	HasValue bool
}

// ParseSelector parses an attribute selector.
func ParseSelector(s string) (Selector, bool) {
	s = strings.TrimSpace(s)
	if len(s) < 3 || s[0] != '[' || s[len(s)-1] != ']' {
		return Selector{}, false
	}
	body := s[1 : len(s)-1]

	name, value, hasValue := strings.Cut(body, "=")
	name = strings.TrimSpace(name)
	if name == "" {
		return Selector{}, false
	}
	if hasValue {
		value = strings.Trim(strings.TrimSpace(value), `"'`)
	}
	return Selector{Attr: name, Value: value, HasValue: hasValue}, true
}

// Matches reports whether attrs satisfy the selector.
func (sel Selector) Matches(attrs map[string]string) bool {
	v, ok := attrs[sel.Attr]
	if !ok {
		return false
	}
	return !sel.HasValue || v == sel.Value
}
