// Package reactive provides an observable value owned by one plugin instance.
package reactive

import "sync"

// Cell holds a value and notifies watchers whenever it is replaced.
type Cell[T any] struct {
	mu       sync.RWMutex
	value    T
	watchers []*watcher[T]
	nextID   int

	// notify serializes notification rounds so watchers never observe Set calls out of order.
	notify sync.Mutex
}

type watcher[T any] struct {
	id int
	fn func(T)
}

// NewCell creates a cell holding initial.
func NewCell[T any](initial T) *Cell[T] {
	return &Cell[T]{value: initial}
}

// Get returns the current value.
func (c *Cell[T]) Get() T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.value
}

// Set replaces the value, then calls every watcher in registration order before returning.
func (c *Cell[T]) Set(v T) {
	c.notify.Lock()
	defer c.notify.Unlock()

	c.mu.Lock()
	c.value = v
	watchers := make([]*watcher[T], len(c.watchers))
	copy(watchers, c.watchers)
	c.mu.Unlock()

	for _, w := range watchers {
		w.fn(v)
	}
}

// Watch registers fn and returns a function that unregisters it.
func (c *Cell[T]) Watch(fn func(T)) (unwatch func()) {
	c.mu.Lock()
	c.nextID++
	w := &watcher[T]{id: c.nextID, fn: fn}
	c.watchers = append(c.watchers, w)
	c.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			defer c.mu.Unlock()
			for i, existing := range c.watchers {
				if existing.id == w.id {
					c.watchers = append(c.watchers[:i], c.watchers[i+1:]...)
					return
				}
			}
		})
	}
}
