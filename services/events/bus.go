// Package events is the explicit change bus standing in for the
// document-store triggers the platform reacts to. Publishers hand every
// handler a before/after snapshot of the changed record; delivery is
// at-least-once, so handlers must be idempotent and act only on the
// delta between the snapshots.
package events

import (
	"log"
	"sync"
)

// Kind identifies the record type a change refers to.
type Kind string

const (
	KindGradeRecord Kind = "grade_record"
	KindProgress    Kind = "module_progress"
	KindEnrollment  Kind = "enrollment"
	KindRemediation Kind = "remediation_request"
)

// Change carries the before/after snapshots of one record mutation.
// Before is nil on create; After is nil on delete.
type Change struct {
	Kind   Kind
	Before interface{}
	After  interface{}
}

// Handler processes one change. A returned error is logged and the
// change may be redelivered; handlers must tolerate re-processing.
type Handler func(Change) error

type Bus struct {
	mu       sync.RWMutex
	handlers map[Kind][]Handler
}

func NewBus() *Bus {
	return &Bus{handlers: make(map[Kind][]Handler)}
}

func (b *Bus) Subscribe(kind Kind, h Handler) {
	b.mu.Lock()
	b.handlers[kind] = append(b.handlers[kind], h)
	b.mu.Unlock()
}

// Publish dispatches the change to every handler registered for its
// kind, in registration order. A failing handler does not stop the
// others; its error is logged and the caller may republish.
func (b *Bus) Publish(change Change) {
	b.mu.RLock()
	handlers := b.handlers[change.Kind]
	b.mu.RUnlock()

	for _, h := range handlers {
		if err := h(change); err != nil {
			log.Printf("[EVENTS] handler for %s failed: %v", change.Kind, err)
		}
	}
}
