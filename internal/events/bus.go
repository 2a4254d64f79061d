// Package events is the in-process notification hub for definition changes.
//
// Stores and handlers publish what happened; subscribers registered at startup
// (background job enqueuer, Redis stream publisher) decide what to do about it.
package events

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Kind names what happened to a definition.
type Kind string

const (
	DefinitionSubmitted Kind = "definition.submitted"
	DefinitionApproved  Kind = "definition.approved"
	ReactionChanged     Kind = "reaction.changed"
)

// Event describes a single change. UserID is the actor.
type Event struct {
	Kind         Kind      `json:"kind"`
	DefinitionID string    `json:"definition_id"`
	UserID       string    `json:"user_id"`
	At           time.Time `json:"at"`
}

// Handler receives published events. It runs on the publishing goroutine.
type Handler func(ctx context.Context, e Event)

// Bus is an explicit observer registry. The zero value is not usable; a nil *Bus
// accepts Publish calls and drops them.
type Bus struct {
	mu     sync.RWMutex
	nextID int
	subs   map[int]Handler
	logger *slog.Logger
}

// NewBus creates an empty bus.
func NewBus(logger *slog.Logger) *Bus {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bus{
		subs:   make(map[int]Handler),
		logger: logger,
	}
}

// Subscribe registers h and returns a function that removes it again.
func (b *Bus) Subscribe(h Handler) (unsubscribe func()) {
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.subs[id] = h
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, id)
			b.mu.Unlock()
		})
	}
}

// Publish delivers e to every current subscriber. A panicking subscriber is logged
// and does not stop delivery to the others.
func (b *Bus) Publish(ctx context.Context, e Event) {
	if b == nil {
		return
	}
	if e.At.IsZero() {
		e.At = time.Now().UTC()
	}

	b.mu.RLock()
	handlers := make([]Handler, 0, len(b.subs))
	for _, h := range b.subs {
		handlers = append(handlers, h)
	}
	b.mu.RUnlock()

	for _, h := range handlers {
		b.deliver(ctx, h, e)
	}
}

func (b *Bus) deliver(ctx context.Context, h Handler, e Event) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("event subscriber panicked",
				"kind", e.Kind,
				"definition_id", e.DefinitionID,
				"panic", r,
			)
		}
	}()
	h(ctx, e)
}
