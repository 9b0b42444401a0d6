package host

import (
	"context"
	"log/slog"
	"sync"

	"github.com/listenupapp/mediatray/internal/errors"
)

type loopKey struct{}

type job struct {
	ctx  context.Context
	fn   func(context.Context)
	done chan struct{}
}

// Loop runs event reactions one at a time, in submission order.
type Loop struct {
	jobs   chan job
	logger *slog.Logger

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

// NewLoop creates a loop. Start must be called before jobs run.
func NewLoop(logger *slog.Logger) *Loop {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Loop{
		jobs:   make(chan job, 256),
		logger: logger.With("component", "loop"),
	}
}

// Start consumes jobs until the loop is shut down or ctx ends.
func (l *Loop) Start(ctx context.Context) {
	l.wg.Add(1)
	defer l.wg.Done()

	for {
		select {
		case j, ok := <-l.jobs:
			if !ok {
				return
			}
			l.run(j)
		case <-ctx.Done():
			return
		}
	}
}

// Do runs fn on the loop and waits for it. Called from inside a loop job, fn runs inline.
func (l *Loop) Do(ctx context.Context, fn func(context.Context)) error {
	if ctx.Value(loopKey{}) == l {
		fn(ctx)
		return nil
	}

	j := job{ctx: context.WithValue(ctx, loopKey{}, l), fn: fn, done: make(chan struct{})}
	if err := l.enqueue(ctx, j); err != nil {
		return err
	}

	select {
	case <-j.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Post queues fn without waiting for it.
func (l *Loop) Post(fn func(context.Context)) error {
	ctx := context.WithValue(context.Background(), loopKey{}, l)
	return l.enqueue(ctx, job{ctx: ctx, fn: fn})
}

// Shutdown stops accepting jobs and waits for queued ones.
func (l *Loop) Shutdown(ctx context.Context) error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return nil
	}
	l.closed = true
	close(l.jobs)
	l.mu.Unlock()

	done := make(chan struct{})
	go func() {
		l.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		l.logger.Warn("loop shutdown timed out with jobs pending")
		return ctx.Err()
	}
}

func (l *Loop) enqueue(ctx context.Context, j job) error {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if l.closed {
		return errors.Unavailable("event loop is shut down")
	}

	select {
	case l.jobs <- j:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (l *Loop) run(j job) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.Error("loop job panicked", "panic", r)
		}
		if j.done != nil {
			close(j.done)
		}
	}()
	j.fn(j.ctx)
}
