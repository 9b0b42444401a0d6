// Package hook runs the ordered interception steps attached to host events.
//
// A pipeline always hands the payload on: a failing or panicking step is recorded in the
// trace and the remaining steps still run. The host therefore never waits on a lost continuation.
package hook

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Outcome is what a step did with the payload.
type Outcome int

const (
	// Skipped means the step left the payload untouched.
	Skipped Outcome = iota
	// Transformed means the step rewrote the payload in place.
	Transformed
)

// State is a step's position in its lifecycle.
type State string

const (
	StatePending     State = "pending"
	StateTransformed State = "transformed"
	StateSkipped     State = "skipped"
	StateFailed      State = "failed"
	StateContinued   State = "continued"
)

// StepFunc inspects or rewrites a payload.
type StepFunc[T any] func(ctx context.Context, payload T) (Outcome, error)

// Step is a named StepFunc.
type Step[T any] struct {
	Name string
	Fn   StepFunc[T]
}

// StepTrace is the recorded lifecycle of one step.
type StepTrace struct {
	Name     string        `json:"name"`
	States   []State       `json:"states"`
	Error    string        `json:"error,omitempty"`
	Duration time.Duration `json:"duration"`
}

// Result returns the state the step settled in before continuing.
func (s StepTrace) Result() State {
	if len(s.States) < 2 {
		return StatePending
	}
	return s.States[len(s.States)-2]
}

// Trace records one pipeline run.
type Trace struct {
	ID        string      `json:"id"`
	Event     string      `json:"event"`
	StartedAt time.Time   `json:"startedAt"`
	Steps     []StepTrace `json:"steps"`
	Continued bool        `json:"continued"`
}

// Transformed reports whether any step rewrote the payload.
func (t Trace) Transformed() bool {
	for _, s := range t.Steps {
		if s.Result() == StateTransformed {
			return true
		}
	}
	return false
}

// Failed returns the traces of steps that errored or panicked.
func (t Trace) Failed() []StepTrace {
	var out []StepTrace
	for _, s := range t.Steps {
		if s.Result() == StateFailed {
			out = append(out, s)
		}
	}
	return out
}

// Pipeline is the ordered step list of one event.
type Pipeline[T any] struct {
	event  string
	logger *slog.Logger

	mu    sync.RWMutex
	steps []Step[T]
}

// NewPipeline creates an empty pipeline for event.
func NewPipeline[T any](event string, logger *slog.Logger) *Pipeline[T] {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Pipeline[T]{event: event, logger: logger.With("event", event)}
}

// Event returns the event name the pipeline serves.
func (p *Pipeline[T]) Event() string {
	return p.event
}

// Register appends a step. Steps run in registration order.
func (p *Pipeline[T]) Register(name string, fn StepFunc[T]) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.steps = append(p.steps, Step[T]{Name: name, Fn: fn})
}

// Unregister removes every step registered under name and reports whether one was found.
func (p *Pipeline[T]) Unregister(name string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := len(p.steps)
	p.steps = slices.DeleteFunc(p.steps, func(s Step[T]) bool { return s.Name == name })
	return len(p.steps) != n
}

// Len returns the number of registered steps.
func (p *Pipeline[T]) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.steps)
}

// Run executes every step synchronously against payload and returns the trace.
// Run never fails.
func (p *Pipeline[T]) Run(ctx context.Context, payload T) Trace {
	p.mu.RLock()
	steps := make([]Step[T], len(p.steps))
	copy(steps, p.steps)
	p.mu.RUnlock()

	trace := Trace{
		ID:        uuid.NewString(),
		Event:     p.event,
		StartedAt: time.Now(),
		Steps:     make([]StepTrace, 0, len(steps)),
	}

	for _, step := range steps {
		trace.Steps = append(trace.Steps, p.runStep(ctx, step, payload))
	}

	trace.Continued = true
	return trace
}

func (p *Pipeline[T]) runStep(ctx context.Context, step Step[T], payload T) (st StepTrace) {
	st = StepTrace{Name: step.Name, States: []State{StatePending}}
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			st.States = append(st.States, StateFailed)
			st.Error = fmt.Sprintf("panic: %v", r)
			p.logger.Error("hook step panicked", "step", step.Name, "panic", r)
		}
		st.States = append(st.States, StateContinued)
		st.Duration = time.Since(start)
	}()

	outcome, err := step.Fn(ctx, payload)
	switch {
	case err != nil:
		st.States = append(st.States, StateFailed)
		st.Error = err.Error()
		p.logger.Warn("hook step failed", "step", step.Name, "error", err)
	case outcome == Transformed:
		st.States = append(st.States, StateTransformed)
	default:
		st.States = append(st.States, StateSkipped)
	}
	return st
}
