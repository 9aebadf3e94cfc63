package services

import (
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	apperrors "kasa/internal/errors"
	"kasa/internal/events"
	"kasa/internal/models"
)

// budgetTracker owns budgets and keeps each budget's spent amount derived from the ledger.
type budgetTracker struct {
	mu         sync.RWMutex
	budgets    []models.Budget
	ledger     LedgerReader
	categories CategoryResolver
	bus        *events.Bus
	now        func() time.Time
}

// NewBudgetTracker creates a new BudgetTracker.
func NewBudgetTracker(ledger LedgerReader, categories CategoryResolver, bus *events.Bus, now func() time.Time) BudgetTracker {
	if now == nil {
		now = time.Now
	}
	return &budgetTracker{ledger: ledger, categories: categories, bus: bus, now: now}
}

// AddBudget inserts a budget with spent computed from the current ledger. A zero
// start defaults to today and a zero end is derived from the period.
func (t *budgetTracker) AddBudget(budget models.Budget) (*models.Budget, error) {
	if !budget.Period.IsValid() {
		return nil, apperrors.ErrInvalidBudgetPeriod
	}
	if budget.Amount.IsNegative() {
		return nil, apperrors.ErrNegativeAmount
	}
	budget.CategoryName = strings.TrimSpace(budget.CategoryName)
	if budget.CategoryName == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "budget category is required")
	}
	if budget.StartDate.IsZero() {
		budget.StartDate = models.StartOfDay(t.now())
	}
	if budget.EndDate.IsZero() {
		budget.EndDate = budget.Period.EndFrom(budget.StartDate)
	}
	if budget.EndDate.Before(budget.StartDate) {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "end date must not be before start date")
	}
	budget.EnsureID()
	budget.Spent = spentFor(budget, t.ledger.All(), t.categories)

	t.mu.Lock()
	if t.indexOf(budget.ID) >= 0 {
		t.mu.Unlock()
		return nil, apperrors.ErrDuplicateID
	}
	t.budgets = append(t.budgets, budget)
	t.mu.Unlock()

	t.publish(events.OpAdd, budget.ID)
	return &budget, nil
}

// UpdateBudget replaces the stored budget as given, including spent. A zero end
// date keeps the existing one; the end is never re-derived from an edited period.
// Spent is not recomputed here, so an edited category or window only shows up
// in spent on the next ledger or category change.
func (t *budgetTracker) UpdateBudget(budget models.Budget) (*models.Budget, error) {
	if !budget.Period.IsValid() {
		return nil, apperrors.ErrInvalidBudgetPeriod
	}
	if budget.Amount.IsNegative() {
		return nil, apperrors.ErrNegativeAmount
	}
	budget.CategoryName = strings.TrimSpace(budget.CategoryName)
	if budget.CategoryName == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "budget category is required")
	}

	t.mu.Lock()
	i := t.indexOf(budget.ID)
	if i < 0 {
		t.mu.Unlock()
		return nil, apperrors.ErrBudgetNotFound
	}
	if budget.StartDate.IsZero() {
		budget.StartDate = t.budgets[i].StartDate
	}
	if budget.EndDate.IsZero() {
		budget.EndDate = t.budgets[i].EndDate
	}
	if budget.EndDate.Before(budget.StartDate) {
		t.mu.Unlock()
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "end date must not be before start date")
	}
	t.budgets[i] = budget
	t.mu.Unlock()

	t.publish(events.OpUpdate, budget.ID)
	return &budget, nil
}

func (t *budgetTracker) DeleteBudget(id string) error {
	t.mu.Lock()
	i := t.indexOf(id)
	if i < 0 {
		t.mu.Unlock()
		return apperrors.ErrBudgetNotFound
	}
	t.budgets = append(t.budgets[:i], t.budgets[i+1:]...)
	t.mu.Unlock()

	t.publish(events.OpDelete, id)
	return nil
}

func (t *budgetTracker) Get(id string) (*models.Budget, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	i := t.indexOf(id)
	if i < 0 {
		return nil, false
	}
	b := t.budgets[i]
	return &b, true
}

// List returns every budget in insertion order.
func (t *budgetTracker) List() []models.Budget {
	return t.filter(func(models.Budget) bool { return true })
}

// ByCategoryName returns the budgets tracking the named category.
func (t *budgetTracker) ByCategoryName(name string) []models.Budget {
	return t.filter(func(b models.Budget) bool { return b.CategoryName == name })
}

// GetActiveBudgets returns budgets whose window contains now, both ends included.
func (t *budgetTracker) GetActiveBudgets(now time.Time) []models.Budget {
	return t.filter(func(b models.Budget) bool { return b.IsActive(now) })
}

// RecomputeAll rederives spent for every budget from txns.
func (t *budgetTracker) RecomputeAll(txns []models.Transaction) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i := range t.budgets {
		t.budgets[i].Spent = spentFor(t.budgets[i], txns, t.categories)
	}
}

// Replace swaps in a loaded budget set and recomputes spent from the current ledger.
func (t *budgetTracker) Replace(budgets []models.Budget) {
	next := make([]models.Budget, 0, len(budgets))
	seen := make(map[string]bool, len(budgets))
	for _, b := range budgets {
		b.EnsureID()
		if seen[b.ID] {
			continue
		}
		seen[b.ID] = true
		next = append(next, b)
	}

	t.mu.Lock()
	t.budgets = next
	t.mu.Unlock()

	t.RecomputeAll(t.ledger.All())
	t.publish(events.OpReplace, "")
}

// HandleLedgerEvent recomputes every budget after any ledger change.
func (t *budgetTracker) HandleLedgerEvent(e events.Event) {
	if e.Op == events.OpReplace {
		t.RecomputeAll(e.Transactions)
		return
	}
	t.RecomputeAll(t.ledger.All())
}

// HandleCategoryEvent recomputes after a category change, since a rename or
// delete changes which transactions match a budget by name.
func (t *budgetTracker) HandleCategoryEvent(e events.Event) {
	if e.Op == events.OpAdjust {
		return
	}
	t.RecomputeAll(t.ledger.All())
}

func (t *budgetTracker) filter(keep func(models.Budget) bool) []models.Budget {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]models.Budget, 0, len(t.budgets))
	for _, b := range t.budgets {
		if keep(b) {
			out = append(out, b)
		}
	}
	return out
}

func (t *budgetTracker) indexOf(id string) int {
	for i := range t.budgets {
		if t.budgets[i].ID == id {
			return i
		}
	}
	return -1
}

func (t *budgetTracker) publish(op events.Op, id string) {
	if t.bus == nil {
		return
	}
	t.bus.Publish(events.Event{Kind: events.BudgetsChanged, Op: op, ID: id})
}

// spentFor sums expense transactions whose resolved category name equals the
// budget's category and whose date lies in [StartDate, EndDate]. Transactions
// whose category no longer exists never match.
func spentFor(b models.Budget, txns []models.Transaction, categories CategoryResolver) decimal.Decimal {
	window := models.DateRange{From: b.StartDate, To: b.EndDate}
	total := decimal.Zero
	for _, tx := range txns {
		if tx.IsIncome || !window.Contains(tx.Date) {
			continue
		}
		category, ok := categories.Get(tx.CategoryID)
		if !ok || category.Name != b.CategoryName {
			continue
		}
		total = total.Add(tx.Amount)
	}
	return total
}
