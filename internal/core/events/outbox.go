package events

import (
	"context"
	"sync"
)

type outboxKey struct{}

// Outbox collects the events raised during one unit of work.
type Outbox struct {
	mu      sync.Mutex
	pending []Event
}

// WithOutbox starts collecting events published with the returned context.
func WithOutbox(ctx context.Context) (context.Context, *Outbox) {
	o := &Outbox{}
	return context.WithValue(ctx, outboxKey{}, o), o
}

func OutboxFromContext(ctx context.Context) (*Outbox, bool) {
	o, ok := ctx.Value(outboxKey{}).(*Outbox)
	return o, ok && o != nil
}

func (o *Outbox) add(e Event) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.pending = append(o.pending, e)
}

func (o *Outbox) Len() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.pending)
}

func (o *Outbox) drain() []Event {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := o.pending
	o.pending = nil
	return out
}

// Flush dispatches the collected events in publish order. Call it only
// after the unit of work committed.
func (o *Outbox) Flush(ctx context.Context, bus *EventBus) int {
	pending := o.drain()
	for _, e := range pending {
		bus.dispatch(ctx, e)
	}
	return len(pending)
}

// Discard drops the collected events after a rollback.
func (o *Outbox) Discard() int {
	return len(o.drain())
}
