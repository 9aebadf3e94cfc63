package services

import (
	"testing"
	"time"

	"go.uber.org/zap"

	"kasa/internal/events"
	"kasa/internal/logger"
	"kasa/internal/models"
	"kasa/internal/testutil"
)

func init() {
	logger.Set(zap.NewNop().Sugar())
}

// harness wires the stores over one bus the same way the engine does.
type harness struct {
	bus        *events.Bus
	categories CategoryStorer
	ledger     TransactionLedgerer
	budgets    BudgetTracker
	analysis   AnalysisAggregator
}

func newHarness(t *testing.T, now time.Time) *harness {
	t.Helper()
	clock := testutil.Clock(now)
	bus := events.NewBus()
	categories := NewCategoryStore(bus)
	ledger := NewTransactionLedger(categories, bus, clock)
	budgets := NewBudgetTracker(ledger, categories, bus, clock)
	analysis := NewAnalysisAggregator(ledger, categories, bus, 0, clock)

	bus.Subscribe(events.LedgerChanged, categories.HandleLedgerEvent)
	bus.Subscribe(events.LedgerChanged, budgets.HandleLedgerEvent)
	bus.Subscribe(events.LedgerChanged, func(events.Event) { analysis.Invalidate() })
	bus.Subscribe(events.CategoriesChanged, budgets.HandleCategoryEvent)
	bus.Subscribe(events.CategoriesChanged, func(events.Event) { analysis.Invalidate() })
	t.Cleanup(analysis.Close)

	return &harness{bus: bus, categories: categories, ledger: ledger, budgets: budgets, analysis: analysis}
}

func (h *harness) addCategory(t *testing.T, name string, isIncome bool) models.Category {
	t.Helper()
	c, err := h.categories.Add(testutil.NewCategory(name, isIncome))
	testutil.AssertNoError(t, err)
	return *c
}

func (h *harness) addTx(t *testing.T, cat models.Category, amount int64, date time.Time) models.Transaction {
	t.Helper()
	tx, err := h.ledger.Add(testutil.NewTransaction(cat, amount, date))
	testutil.AssertNoError(t, err)
	return *tx
}

func (h *harness) spent(t *testing.T, id string) string {
	t.Helper()
	c, ok := h.categories.Get(id)
	if !ok {
		t.Fatalf("category %s not found", id)
	}
	return c.Spent().String()
}
