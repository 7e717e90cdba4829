package event

import (
	"context"
	"log/slog"
	"sync"
)

// Sink receives events in publication order.
type Sink func(Event)

// Dispatcher fans events out to sinks from a single consumer goroutine, so
// sinks observe one ordered stream no matter which goroutine published.
type Dispatcher struct {
	inbox  chan Event
	mu     sync.RWMutex
	sinks  []Sink
	cancel context.CancelFunc
	wg     sync.WaitGroup
	logger *slog.Logger
}

// NewDispatcher creates a dispatcher with the given inbox buffer.
func NewDispatcher(buffer int) *Dispatcher {
	if buffer <= 0 {
		buffer = 256
	}
	return &Dispatcher{
		inbox:  make(chan Event, buffer),
		logger: slog.Default().With("module", "dispatcher"),
	}
}

// Subscribe registers a sink. Safe to call while running.
func (d *Dispatcher) Subscribe(s Sink) {
	d.mu.Lock()
	d.sinks = append(d.sinks, s)
	d.mu.Unlock()
}

// Publish enqueues an event without blocking. A full inbox drops the event;
// every consumer state is a snapshot, so the next refresh supersedes it.
func (d *Dispatcher) Publish(ev Event) {
	select {
	case d.inbox <- ev:
	default:
		d.logger.Warn("event inbox full, dropping", slog.Uint64("seq", ev.EventSeq()))
	}
}

// Start launches the consumer loop.
func (d *Dispatcher) Start(ctx context.Context) {
	ctx, d.cancel = context.WithCancel(ctx)
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case ev := <-d.inbox:
				d.dispatch(ev)
			}
		}
	}()
}

func (d *Dispatcher) dispatch(ev Event) {
	d.mu.RLock()
	sinks := d.sinks
	d.mu.RUnlock()
	for _, s := range sinks {
		s(ev)
	}
}

// Stop halts the consumer loop and waits for it to exit.
func (d *Dispatcher) Stop() {
	if d.cancel != nil {
		d.cancel()
	}
	d.wg.Wait()
}
