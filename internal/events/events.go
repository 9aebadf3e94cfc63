// Package events carries the tagged change notifications that fan a mutation out
// from the component that owns a record to every component deriving state from it.
package events

import (
	"sync"

	"kasa/internal/models"
)

// Kind tags what changed.
type Kind string

const (
	LedgerChanged     Kind = "ledger_changed"
	CategoriesChanged Kind = "categories_changed"
	BudgetsChanged    Kind = "budgets_changed"
	SummaryReplaced   Kind = "summary_replaced"
)

// Op names the mutation behind an event.
type Op string

const (
	OpAdd     Op = "add"
	OpUpdate  Op = "update"
	OpDelete  Op = "delete"
	OpReplace Op = "replace"
	OpAdjust  Op = "adjust"
)

// Event describes one committed mutation. For ledger events Old is nil on add and
// New is nil on delete; a replace carries the full new ledger in Transactions.
type Event struct {
	Kind         Kind
	Op           Op
	ID           string
	Old          *models.Transaction
	New          *models.Transaction
	Transactions []models.Transaction
}

// Handler consumes an event. Handlers run synchronously on the publishing goroutine.
type Handler func(Event)

type subscription struct {
	id      int
	handler Handler
}

// Bus is a synchronous, ordered publish/subscribe hub. Handlers for a kind run in
// subscription order, after the publisher has committed its change.
type Bus struct {
	mu   sync.RWMutex
	subs map[Kind][]subscription
	next int
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{subs: make(map[Kind][]subscription)}
}

// Subscribe registers h for kind and returns a function that removes it.
func (b *Bus) Subscribe(kind Kind, h Handler) (unsubscribe func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.next++
	id := b.next
	b.subs[kind] = append(b.subs[kind], subscription{id: id, handler: h})

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		subs := b.subs[kind]
		for i, s := range subs {
			if s.id == id {
				b.subs[kind] = append(subs[:i:i], subs[i+1:]...)
				return
			}
		}
	}
}

// Publish delivers e to every handler subscribed to e.Kind. The handler list is
// snapshotted first so handlers may publish or subscribe without deadlocking.
func (b *Bus) Publish(e Event) {
	b.mu.RLock()
	subs := append([]subscription(nil), b.subs[e.Kind]...)
	b.mu.RUnlock()

	for _, s := range subs {
		s.handler(e)
	}
}

// Len returns the number of handlers subscribed to kind.
func (b *Bus) Len(kind Kind) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[kind])
}
