package dom

import (
	"log/slog"
	"slices"
	"strings"
	"sync"

	"golang.org/x/net/html"
)

// Snapshot is an element as reported by the host.
type Snapshot struct {
	ID         string            `json:"id"`
	Attributes map[string]string `json:"attributes,omitempty"`
	InnerHTML  string            `json:"innerHTML,omitempty"`
}

// Sink receives the changes the page asks the host to perform.
type Sink interface {
	StyleSet(elementID, property, value string)
	StyleRemoved(elementID, property string)
	Observed(selector string, opts ObserveOptions)
	RefreshRequested(selector string)
}

// NopSink discards every change.
type NopSink struct{}

func (NopSink) StyleSet(string, string, string) {}
func (NopSink) StyleRemoved(string, string)     {}
func (NopSink) Observed(string, ObserveOptions) {}
func (NopSink) RefreshRequested(string)         {}

var _ Document = (*Page)(nil)

// Page is an in-memory Document fed with host snapshots.
// Nested elements carrying an id inside a snapshot's innerHTML are indexed too, so that
// AsElement resolves ids found with FindMarked.
type Page struct {
	sink   Sink
	logger *slog.Logger

	mu        sync.RWMutex
	nodes     map[string]*node
	order     []string
	observers []*observer
	nextObs   int
	ready     []func()
}

type node struct {
	id     string
	parent string
	attrs  map[string]string
	inner  string
	styles map[string]string
}

type observer struct {
	id       int
	raw      string
	selector Selector
	fn       func([]Element)
	opts     ObserveOptions
}

// NewPage creates an empty page.
func NewPage(sink Sink, logger *slog.Logger) *Page {
	if sink == nil {
		sink = NopSink{}
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Page{
		sink:   sink,
		logger: logger.With("component", "dom"),
		nodes:  make(map[string]*node),
	}
}

// Upsert records the snapshots and returns handles for them.
func (p *Page) Upsert(snaps []Snapshot) []Element {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]Element, 0, len(snaps))
	for _, s := range snaps {
		if s.ID == "" {
			continue
		}
		p.dropChildren(s.ID)

		n, ok := p.nodes[s.ID]
		if !ok {
			n = &node{id: s.ID, styles: make(map[string]string)}
			p.nodes[s.ID] = n
			p.order = append(p.order, s.ID)
		}
		n.attrs = cloneAttrs(s.Attributes)
		n.inner = s.InnerHTML
		p.indexChildren(n)

		out = append(out, &handle{page: p, id: s.ID})
	}
	return out
}

// Remove forgets the elements and everything nested in them.
func (p *Page) Remove(ids ...string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, id := range ids {
		p.dropChildren(id)
		p.drop(id)
	}
}

// Reset forgets every element. Observers stay registered.
func (p *Page) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.nodes = make(map[string]*node)
	p.order = nil
}

// Batch records a mutation batch and delivers the matching elements to each observer.
func (p *Page) Batch(snaps []Snapshot) {
	handles := p.Upsert(snaps)
	if len(handles) == 0 {
		return
	}

	p.mu.RLock()
	type delivery struct {
		fn       func([]Element)
		elements []Element
	}
	var deliveries []delivery
	for _, o := range p.observers {
		var matched []Element
		for _, h := range handles {
			if n := p.nodes[h.ID()]; n != nil && o.selector.Matches(n.attrs) {
				matched = append(matched, h)
			}
		}
		if len(matched) > 0 {
			deliveries = append(deliveries, delivery{fn: o.fn, elements: matched})
		}
	}
	p.mu.RUnlock()

	for _, d := range deliveries {
		p.deliver(d.fn, d.elements)
	}
}

// Ready runs the OnReady callbacks.
func (p *Page) Ready() {
	p.mu.RLock()
	fns := slices.Clone(p.ready)
	p.mu.RUnlock()

	for _, fn := range fns {
		fn()
	}
}

// Style returns the inline style value the page last applied to an element.
func (p *Page) Style(id, property string) (string, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	n, ok := p.nodes[id]
	if !ok {
		return "", false
	}
	v, ok := n.styles[property]
	return v, ok
}

// Observed returns the selectors currently observed, with their options.
func (p *Page) Observed() map[string]ObserveOptions {
	p.mu.RLock()
	defer p.mu.RUnlock()

	out := make(map[string]ObserveOptions, len(p.observers))
	for _, o := range p.observers {
		out[o.raw] = o.opts
	}
	return out
}

// QueryOne returns the first recorded element matching selector.
func (p *Page) QueryOne(selector string) (Element, bool) {
	sel, ok := ParseSelector(selector)
	if !ok {
		return nil, false
	}

	p.mu.RLock()
	defer p.mu.RUnlock()

	for _, id := range p.order {
		if sel.Matches(p.nodes[id].attrs) {
			return &handle{page: p, id: id}, true
		}
	}
	return nil, false
}

// AsElement returns a handle for a recorded element.
func (p *Page) AsElement(id string) (Element, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if _, ok := p.nodes[id]; !ok {
		return nil, false
	}
	return &handle{page: p, id: id}, true
}

// Observe registers fn for selector. An unparsable selector yields a stopped subscription.
func (p *Page) Observe(selector string, fn func([]Element), opts ObserveOptions) *Subscription {
	sel, ok := ParseSelector(selector)
	if !ok {
		p.logger.Warn("unsupported selector", "selector", selector)
		sub := NewSubscription(selector, nil, nil)
		sub.Stop()
		return sub
	}

	p.mu.Lock()
	p.nextObs++
	o := &observer{id: p.nextObs, raw: selector, selector: sel, fn: fn, opts: opts}
	p.observers = append(p.observers, o)
	p.mu.Unlock()

	p.sink.Observed(selector, opts)

	return NewSubscription(selector,
		func() { p.unobserve(o.id) },
		func() { p.refresh(o) },
	)
}

// OnReady registers fn to run on every Ready call.
func (p *Page) OnReady(fn func()) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.ready = append(p.ready, fn)
}

func (p *Page) unobserve(id int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.observers = slices.DeleteFunc(p.observers, func(o *observer) bool { return o.id == id })
}

func (p *Page) refresh(o *observer) {
	p.sink.RefreshRequested(o.raw)

	p.mu.RLock()
	var matched []Element
	for _, id := range p.order {
		if o.selector.Matches(p.nodes[id].attrs) {
			matched = append(matched, &handle{page: p, id: id})
		}
	}
	p.mu.RUnlock()

	p.deliver(o.fn, matched)
}

func (p *Page) deliver(fn func([]Element), elements []Element) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("observer panicked", "panic", r)
		}
	}()
	fn(elements)
}

// indexChildren records id-carrying descendants of n. Caller holds the write lock.
func (p *Page) indexChildren(n *node) {
	if n.inner == "" {
		return
	}
	doc, err := html.Parse(strings.NewReader(n.inner))
	if err != nil {
		p.logger.Debug("unparsable innerHTML", "element", n.id, "error", err)
		return
	}

	walk(doc, func(c *html.Node) bool {
		id, ok := attr(c, "id")
		if !ok || id == "" || id == n.id {
			return true
		}
		if _, exists := p.nodes[id]; !exists {
			p.order = append(p.order, id)
		}
		p.nodes[id] = &node{
			id:     id,
			parent: n.id,
			attrs:  attrMap(c),
			inner:  innerHTML(c),
			styles: make(map[string]string),
		}
		return true
	})
}

// dropChildren removes nodes indexed from parent's innerHTML. Caller holds the write lock.
func (p *Page) dropChildren(parent string) {
	for id, n := range p.nodes {
		if n.parent == parent {
			p.drop(id)
		}
	}
}

func (p *Page) drop(id string) {
	if _, ok := p.nodes[id]; !ok {
		return
	}
	delete(p.nodes, id)
	p.order = slices.DeleteFunc(p.order, func(s string) bool { return s == id })
}

func cloneAttrs(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// handle is an Element backed by a Page node.
type handle struct {
	page *Page
	id   string
}

func (h *handle) ID() string { return h.id }

func (h *handle) Attribute(name string) (string, bool) {
	h.page.mu.RLock()
	defer h.page.mu.RUnlock()

	n, ok := h.page.nodes[h.id]
	if !ok {
		return "", false
	}
	v, ok := n.attrs[name]
	return v, ok
}

func (h *handle) InnerHTML() string {
	h.page.mu.RLock()
	defer h.page.mu.RUnlock()

	if n, ok := h.page.nodes[h.id]; ok {
		return n.inner
	}
	return ""
}

func (h *handle) SetStyle(property, value string) {
	h.page.mu.Lock()
	if n, ok := h.page.nodes[h.id]; ok {
		n.styles[property] = value
	}
	h.page.mu.Unlock()

	h.page.sink.StyleSet(h.id, property, value)
}

func (h *handle) RemoveStyle(property string) {
	h.page.mu.Lock()
	if n, ok := h.page.nodes[h.id]; ok {
		delete(n.styles, property)
	}
	h.page.mu.Unlock()

	h.page.sink.StyleRemoved(h.id, property)
}
