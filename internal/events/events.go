// Package events is the boundary between the terminal node and detached
// side effects. The End node emits a typed event; a dispatcher goroutine
// owns the non-blocking work, decoupled from the runtime's state lifecycle.
package events

import (
	"sync"

	"github.com/joescharf/coda/internal/editblock"
)

// TurnCompleted is emitted by the End node once per closed turn. Handlers
// receive a snapshot; they must never reach back into conversation state.
type TurnCompleted struct {
	ThreadID string
	Agent    string
	Request  string
	Reply    string
	Blocks   []editblock.Block
}

// Handler consumes turn events off the critical path.
type Handler interface {
	Handle(e TurnCompleted) error
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc func(e TurnCompleted) error

func (f HandlerFunc) Handle(e TurnCompleted) error { return f(e) }

// Dispatcher fans events out to handlers on a background goroutine.
// Emit never blocks the turn; handler errors and panics are logged, never
// propagated.
type Dispatcher struct {
	ch       chan TurnCompleted
	handlers []Handler
	logf     func(format string, args ...any)
	wg       sync.WaitGroup

	mu     sync.Mutex
	closed bool
}

// NewDispatcher starts the consumer goroutine. logf receives handler
// failures; pass the UI's warning logger.
func NewDispatcher(logf func(format string, args ...any), handlers ...Handler) *Dispatcher {
	if logf == nil {
		logf = func(string, ...any) {}
	}
	d := &Dispatcher{
		ch:       make(chan TurnCompleted, 16),
		handlers: handlers,
		logf:     logf,
	}
	d.wg.Add(1)
	go d.consume()
	return d
}

func (d *Dispatcher) consume() {
	defer d.wg.Done()
	for e := range d.ch {
		for _, h := range d.handlers {
			d.dispatch(h, e)
		}
	}
}

func (d *Dispatcher) dispatch(h Handler, e TurnCompleted) {
	defer func() {
		if r := recover(); r != nil {
			d.logf("turn event handler panicked: %v", r)
		}
	}()
	if err := h.Handle(e); err != nil {
		d.logf("turn event handler: %v", err)
	}
}

// Emit queues an event without blocking. Events are dropped (with a log
// line) when the buffer is full or the dispatcher is closed; they are side
// effects, not state.
func (d *Dispatcher) Emit(e TurnCompleted) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		d.logf("turn event dropped: dispatcher closed")
		return
	}
	select {
	case d.ch <- e:
	default:
		d.logf("turn event dropped: queue full")
	}
}

// Close drains queued events and stops the consumer.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	close(d.ch)
	d.mu.Unlock()
	d.wg.Wait()
}
