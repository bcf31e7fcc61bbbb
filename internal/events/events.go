// Package events carries progress and diagnostic events from background
// workers to a single foreground consumer over a bounded FIFO channel.
//
// Delivery is best-effort: publishing to a full or closed bus drops the
// event instead of blocking or panicking, so a torn-down consumer never
// stalls or crashes a worker.
package events

import "sync"

// Kind classifies an event.
type Kind int

// Event kinds.
const (
	KindLog Kind = iota
	KindStage
	KindProgress
	KindDone
)

// Event is one message from a worker.
type Event struct {
	Kind     Kind
	Message  string
	Progress int // percent, only meaningful for KindProgress
}

// DefaultCapacity is the bus buffer size used by NewBus.
const DefaultCapacity = 256

// Bus is a bounded, ordered event channel. Events published from one
// goroutine are received in publication order.
type Bus struct {
	ch     chan Event
	mu     sync.Mutex
	closed bool
}

// NewBus creates a Bus with DefaultCapacity.
func NewBus() *Bus { return NewBusSize(DefaultCapacity) }

// NewBusSize creates a Bus with an explicit buffer capacity.
func NewBusSize(capacity int) *Bus {
	if capacity < 1 {
		capacity = 1
	}
	return &Bus{ch: make(chan Event, capacity)}
}

// Publish delivers an event if the bus is open and has room; otherwise the
// event is dropped.
func (b *Bus) Publish(e Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	select {
	case b.ch <- e:
	default:
	}
}

// Log publishes a KindLog event.
func (b *Bus) Log(message string) {
	b.Publish(Event{Kind: KindLog, Message: message})
}

// Stage publishes a KindStage event.
func (b *Bus) Stage(name string) {
	b.Publish(Event{Kind: KindStage, Message: name})
}

// Progress publishes a KindProgress event.
func (b *Bus) Progress(percent int) {
	b.Publish(Event{Kind: KindProgress, Progress: percent})
}

// Done publishes a KindDone event.
func (b *Bus) Done(message string) {
	b.Publish(Event{Kind: KindDone, Message: message})
}

// Events returns the receive side of the bus.
func (b *Bus) Events() <-chan Event { return b.ch }

// Close marks the bus closed and closes the channel. Publishing after
// Close is a no-op.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	close(b.ch)
}
