package events

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/SscSPs/caisse_ledger/internal/core/domain"
	"github.com/google/uuid"
)

// Type names a ledger event.
type Type string

const (
	TransactionRecorded Type = "transaction.recorded"
	AccountCreated      Type = "account.created"
	AccountUpdated      Type = "account.updated"
	AccountDeleted      Type = "account.deleted"
	AccountReset        Type = "account.reset"
	AccountArchived     Type = "account.archived"
	HistorySnapshotted  Type = "history.snapshotted"
)

// Event is a change notification. Payload is the affected domain value.
type Event struct {
	ID         string            `json:"id"`
	Type       Type              `json:"type"`
	Account    domain.AccountRef `json:"account"`
	OccurredAt time.Time         `json:"occurredAt"`
	Payload    any               `json:"payload,omitempty"`
}

// New stamps an event with an id and the current time.
func New(t Type, account domain.AccountRef, payload any) Event {
	return Event{
		ID:         uuid.NewString(),
		Type:       t,
		Account:    account,
		OccurredAt: time.Now().UTC(),
		Payload:    payload,
	}
}

// Publisher is what services need to emit events.
type Publisher interface {
	Publish(ctx context.Context, evt Event)
}

// Broker fans events out to subscribers. Publishing never blocks: a subscriber
// whose buffer is full misses the event.
type Broker struct {
	mu         sync.RWMutex
	subs       map[uint64]*Subscription
	nextID     uint64
	bufferSize int
	closed     bool
}

// NewBroker creates a broker whose subscriptions buffer up to bufferSize events.
func NewBroker(bufferSize int) *Broker {
	if bufferSize <= 0 {
		bufferSize = 64
	}
	return &Broker{
		subs:       make(map[uint64]*Subscription),
		bufferSize: bufferSize,
	}
}

var _ Publisher = (*Broker)(nil)

// Publish delivers evt to every subscription interested in its type.
func (b *Broker) Publish(ctx context.Context, evt Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return
	}
	for _, s := range b.subs {
		if !s.wants(evt.Type) {
			continue
		}
		select {
		case s.ch <- evt:
		default:
			slog.WarnContext(ctx, "Dropping event for slow subscriber",
				slog.Uint64("subscription_id", s.id),
				slog.String("event_type", string(evt.Type)))
		}
	}
}

// Subscribe registers interest in the given event types, or all types when none
// are given. The subscription is released by Close or when ctx is done.
func (b *Broker) Subscribe(ctx context.Context, types ...Type) *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	s := &Subscription{
		id:     b.nextID,
		broker: b,
		ch:     make(chan Event, b.bufferSize),
		done:   make(chan struct{}),
	}
	if len(types) > 0 {
		s.types = make(map[Type]struct{}, len(types))
		for _, t := range types {
			s.types[t] = struct{}{}
		}
	}
	if b.closed {
		close(s.ch)
		close(s.done)
		s.closed = true
		return s
	}
	b.subs[s.id] = s

	go func() {
		select {
		case <-ctx.Done():
			s.Close()
		case <-s.done:
		}
	}()
	return s
}

// Close releases every subscription. Later publishes are ignored.
func (b *Broker) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for id, s := range b.subs {
		delete(b.subs, id)
		s.release()
	}
}

// Subscribers reports the number of live subscriptions.
func (b *Broker) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

func (b *Broker) unsubscribe(s *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.subs[s.id]; !ok {
		return
	}
	delete(b.subs, s.id)
	s.release()
}

// Subscription is a scoped stream of events.
type Subscription struct {
	id     uint64
	broker *Broker
	types  map[Type]struct{}
	ch     chan Event
	done   chan struct{}
	closed bool // guarded by broker.mu
}

// Events returns the stream. It is closed when the subscription is released.
func (s *Subscription) Events() <-chan Event {
	return s.ch
}

// Close releases the subscription. It is safe to call more than once.
func (s *Subscription) Close() {
	s.broker.unsubscribe(s)
}

func (s *Subscription) wants(t Type) bool {
	if s.types == nil {
		return true
	}
	_, ok := s.types[t]
	return ok
}

// release must be called with broker.mu held for writing.
func (s *Subscription) release() {
	if s.closed {
		return
	}
	s.closed = true
	close(s.ch)
	close(s.done)
}
