// Package engine wires the category store, transaction ledger, budget tracker and
// analysis aggregator over one event bus and snapshots them through a gateway.
package engine

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"kasa/internal/events"
	"kasa/internal/logger"
	"kasa/internal/models"
	"kasa/internal/persistence"
	"kasa/internal/services"
)

// saveTimeout bounds a single snapshot write.
const saveTimeout = 5 * time.Second

// Options configures an Engine.
type Options struct {
	Gateway      persistence.Gateway
	Debounce     time.Duration
	SeedDefaults bool
	Now          func() time.Time
}

// Engine is the single-process ledger. In-memory state is authoritative; every
// mutation marks the affected keys dirty and tries to write them. Keys that fail
// stay dirty and are retried on the next mutation, Flush or Close.
type Engine struct {
	bus        *events.Bus
	categories services.CategoryStorer
	ledger     services.TransactionLedgerer
	budgets    services.BudgetTracker
	analysis   services.AnalysisAggregator

	gateway      persistence.Gateway
	seedDefaults bool
	log          *zap.SugaredLogger

	mu      sync.Mutex
	dirty   map[string]bool
	loading bool

	// persistMu serializes snapshot writes.
	persistMu sync.Mutex
}

// New builds an engine. Derived stores subscribe before the persistence hook so
// a snapshot always sees fully updated aggregates.
func New(opts Options) *Engine {
	if opts.Gateway == nil {
		opts.Gateway = persistence.NewMemoryGateway()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	bus := events.NewBus()
	categories := services.NewCategoryStore(bus)
	ledger := services.NewTransactionLedger(categories, bus, opts.Now)
	budgets := services.NewBudgetTracker(ledger, categories, bus, opts.Now)
	analysis := services.NewAnalysisAggregator(ledger, categories, bus, opts.Debounce, opts.Now)

	e := &Engine{
		bus:          bus,
		categories:   categories,
		ledger:       ledger,
		budgets:      budgets,
		analysis:     analysis,
		gateway:      opts.Gateway,
		seedDefaults: opts.SeedDefaults,
		log:          logger.Named("engine"),
		dirty:        make(map[string]bool),
	}

	bus.Subscribe(events.LedgerChanged, categories.HandleLedgerEvent)
	bus.Subscribe(events.LedgerChanged, budgets.HandleLedgerEvent)
	bus.Subscribe(events.LedgerChanged, func(events.Event) { analysis.Invalidate() })
	bus.Subscribe(events.LedgerChanged, e.persistOn(persistence.KeyTransactions, persistence.KeyCategories, persistence.KeyBudgets))

	bus.Subscribe(events.CategoriesChanged, e.onCategoryChanged)
	bus.Subscribe(events.CategoriesChanged, budgets.HandleCategoryEvent)
	bus.Subscribe(events.CategoriesChanged, func(events.Event) { analysis.Invalidate() })
	bus.Subscribe(events.CategoriesChanged, e.persistOn(persistence.KeyCategories, persistence.KeyBudgets))

	bus.Subscribe(events.BudgetsChanged, e.persistOn(persistence.KeyBudgets))

	return e
}

func (e *Engine) Bus() *events.Bus {
	return e.bus
}

func (e *Engine) Categories() services.CategoryStorer {
	return e.categories
}

func (e *Engine) Ledger() services.TransactionLedgerer {
	return e.ledger
}

func (e *Engine) Budgets() services.BudgetTracker {
	return e.budgets
}

func (e *Engine) Analysis() services.AnalysisAggregator {
	return e.analysis
}

// Load restores categories, transactions and budgets, in that order, then rebuilds
// every derived cache from the ledger. Missing or unreadable keys leave the
// collection empty; default categories are seeded when the categories key is absent.
func (e *Engine) Load(ctx context.Context) {
	e.mu.Lock()
	e.loading = true
	e.mu.Unlock()

	seeded := false
	if categories, ok := persistence.Load[[]models.Category](ctx, e.gateway, persistence.KeyCategories); ok {
		e.categories.Replace(categories)
	} else if e.seedDefaults {
		seeded = e.categories.SeedDefaults() > 0
	}
	if txns, ok := persistence.Load[[]models.Transaction](ctx, e.gateway, persistence.KeyTransactions); ok {
		e.ledger.Replace(txns)
	}
	if budgets, ok := persistence.Load[[]models.Budget](ctx, e.gateway, persistence.KeyBudgets); ok {
		e.budgets.Replace(budgets)
	}

	all := e.ledger.All()
	e.categories.RebuildAggregates(all)
	e.budgets.RecomputeAll(all)

	e.mu.Lock()
	e.loading = false
	e.dirty = make(map[string]bool)
	if seeded {
		e.dirty[persistence.KeyCategories] = true
	}
	e.mu.Unlock()

	e.analysis.Refresh()
	e.log.Infow("engine loaded",
		"categories", len(e.categories.All()),
		"transactions", e.ledger.Len(),
		"budgets", len(e.budgets.List()),
		"seeded", seeded,
	)

	if seeded {
		e.persistDirty(ctx)
	}
}

// Flush runs any pending analysis recompute and writes every dirty key.
func (e *Engine) Flush(ctx context.Context) error {
	e.analysis.Flush()
	return e.persistDirty(ctx)
}

// Close stops background recomputes and makes a final attempt to persist.
func (e *Engine) Close(ctx context.Context) error {
	err := e.persistDirty(ctx)
	e.analysis.Close()
	return err
}

// Pending returns the keys that still need to be written.
func (e *Engine) Pending() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]string, 0, len(e.dirty))
	for _, key := range persistence.Keys {
		if e.dirty[key] {
			out = append(out, key)
		}
	}
	return out
}

// onCategoryChanged seeds a newly added category's spend from the ledger, which
// may already reference its id.
func (e *Engine) onCategoryChanged(ev events.Event) {
	if ev.Op == events.OpAdd {
		e.categories.RebuildAggregates(e.ledger.All())
	}
}

func (e *Engine) persistOn(keys ...string) events.Handler {
	return func(events.Event) {
		e.mu.Lock()
		for _, key := range keys {
			e.dirty[key] = true
		}
		loading := e.loading
		e.mu.Unlock()

		if loading {
			return
		}
		_ = e.persistDirty(context.Background())
	}
}

// persistDirty writes every dirty key. Failures are logged and the key stays
// dirty; in-memory state is never touched.
func (e *Engine) persistDirty(ctx context.Context) error {
	e.persistMu.Lock()
	defer e.persistMu.Unlock()

	// claim the dirty set up front so a key marked again mid-write is not lost
	e.mu.Lock()
	keys := make([]string, 0, len(e.dirty))
	for _, key := range persistence.Keys {
		if e.dirty[key] {
			keys = append(keys, key)
			delete(e.dirty, key)
		}
	}
	e.mu.Unlock()

	var errs []error
	for _, key := range keys {
		saveCtx, cancel := context.WithTimeout(ctx, saveTimeout)
		err := persistence.Save(saveCtx, e.gateway, key, e.snapshot(key))
		cancel()
		if err != nil {
			e.log.Warnw("snapshot write failed, will retry on next change", "key", key, "error", err)
			errs = append(errs, err)
			e.mu.Lock()
			e.dirty[key] = true
			e.mu.Unlock()
		}
	}
	return errors.Join(errs...)
}

func (e *Engine) snapshot(key string) any {
	switch key {
	case persistence.KeyTransactions:
		return e.ledger.All()
	case persistence.KeyCategories:
		return e.categories.All()
	default:
		return e.budgets.List()
	}
}
