package services

import (
	"strings"
	"sync"

	"github.com/shopspring/decimal"

	apperrors "kasa/internal/errors"
	"kasa/internal/events"
	"kasa/internal/models"
)

// categoryStore owns the category set and the running per-category aggregates.
type categoryStore struct {
	mu         sync.RWMutex
	categories []models.Category
	bus        *events.Bus
}

// NewCategoryStore creates a new CategoryStorer publishing on bus.
func NewCategoryStore(bus *events.Bus) CategoryStorer {
	return &categoryStore{bus: bus}
}

// Add inserts a new category. Aggregates start at zero.
func (s *categoryStore) Add(category models.Category) (*models.Category, error) {
	category.Name = strings.TrimSpace(category.Name)
	if category.Name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "category name is required")
	}

	category.EnsureID()
	category.MonthlySpent = nil
	category.MonthlyIncome = nil
	category.Normalize()

	s.mu.Lock()
	if s.indexOf(category.ID) >= 0 {
		s.mu.Unlock()
		return nil, apperrors.ErrDuplicateID
	}
	if s.indexOfName(category.Name) >= 0 {
		s.mu.Unlock()
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "category with this name already exists")
	}
	s.categories = append(s.categories, category)
	out := category.Clone()
	s.mu.Unlock()

	s.publish(events.OpAdd, out.ID)
	return &out, nil
}

// Update replaces the user-editable fields of an existing category. IsIncome is
// immutable; IsSystem and the engine-maintained aggregates are kept.
func (s *categoryStore) Update(category models.Category) (*models.Category, error) {
	category.Name = strings.TrimSpace(category.Name)
	if category.Name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "category name is required")
	}

	s.mu.Lock()
	i := s.indexOf(category.ID)
	if i < 0 {
		s.mu.Unlock()
		return nil, apperrors.ErrCategoryNotFound
	}
	existing := &s.categories[i]
	if existing.IsIncome != category.IsIncome {
		s.mu.Unlock()
		return nil, apperrors.ErrCategoryTypeChange
	}
	if j := s.indexOfName(category.Name); j >= 0 && j != i {
		s.mu.Unlock()
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "category with this name already exists")
	}

	existing.Name = category.Name
	existing.Icon = category.Icon
	existing.Color = category.Color
	if !existing.IsIncome {
		existing.MonthlyBudget = cloneDecimal(category.MonthlyBudget)
	}
	out := existing.Clone()
	s.mu.Unlock()

	s.publish(events.OpUpdate, out.ID)
	return &out, nil
}

// Delete removes a category. System categories are rejected. Transactions still
// referencing the category resolve to the unknown category afterwards.
func (s *categoryStore) Delete(id string) error {
	s.mu.Lock()
	i := s.indexOf(id)
	if i < 0 {
		s.mu.Unlock()
		return apperrors.ErrCategoryNotFound
	}
	if s.categories[i].IsSystem {
		s.mu.Unlock()
		return apperrors.ErrSystemCategory
	}
	s.categories = append(s.categories[:i], s.categories[i+1:]...)
	s.mu.Unlock()

	s.publish(events.OpDelete, id)
	return nil
}

// Get returns a copy of the category with the given id.
func (s *categoryStore) Get(id string) (*models.Category, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.indexOf(id)
	if i < 0 {
		return nil, false
	}
	out := s.categories[i].Clone()
	return &out, true
}

// FindByName returns the category with exactly the given name.
func (s *categoryStore) FindByName(name string) (*models.Category, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.indexOfName(name)
	if i < 0 {
		return nil, false
	}
	out := s.categories[i].Clone()
	return &out, true
}

// ResolveName returns the category's name, or models.UnknownCategoryName for a stale id.
func (s *categoryStore) ResolveName(id string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.indexOf(id); i >= 0 {
		return s.categories[i].Name
	}
	return models.UnknownCategoryName
}

func (s *categoryStore) All() []models.Category {
	return s.list(func(models.Category) bool { return true })
}

func (s *categoryStore) Income() []models.Category {
	return s.list(func(c models.Category) bool { return c.IsIncome })
}

func (s *categoryStore) Expense() []models.Category {
	return s.list(func(c models.Category) bool { return !c.IsIncome })
}

// ApplySpend adds amount to an expense category's monthly spend.
func (s *categoryStore) ApplySpend(id string, amount decimal.Decimal) error {
	return s.adjustAndPublish(id, amount, false)
}

// ReverseSpend subtracts amount from an expense category's monthly spend, clamped at 0.
func (s *categoryStore) ReverseSpend(id string, amount decimal.Decimal) error {
	return s.adjustAndPublish(id, amount.Neg(), false)
}

// ApplyIncome adds amount to an income category's monthly income.
func (s *categoryStore) ApplyIncome(id string, amount decimal.Decimal) error {
	return s.adjustAndPublish(id, amount, true)
}

// ReverseIncome subtracts amount from an income category's monthly income, clamped at 0.
func (s *categoryStore) ReverseIncome(id string, amount decimal.Decimal) error {
	return s.adjustAndPublish(id, amount.Neg(), true)
}

// SetIncomeForNamedCategory sets the named income category's monthly income to
// amount. Setting the same value again changes nothing.
func (s *categoryStore) SetIncomeForNamedCategory(name string, amount decimal.Decimal) error {
	if amount.IsNegative() {
		return apperrors.ErrNegativeAmount
	}

	s.mu.Lock()
	i := s.indexOfName(name)
	if i < 0 || !s.categories[i].IsIncome {
		s.mu.Unlock()
		return apperrors.WithMessage(apperrors.ErrCategoryNotFound, "income category not found: "+name)
	}
	c := &s.categories[i]
	if c.Income().Equal(amount) {
		s.mu.Unlock()
		return nil
	}
	v := amount
	c.MonthlyIncome = &v
	id := c.ID
	s.mu.Unlock()

	s.publish(events.OpAdjust, id)
	return nil
}

// TotalIncome sums monthly income across income categories.
func (s *categoryStore) TotalIncome() decimal.Decimal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	total := decimal.Zero
	for _, c := range s.categories {
		if c.IsIncome {
			total = total.Add(c.Income())
		}
	}
	return total
}

// TotalSpent sums monthly spend across expense categories.
func (s *categoryStore) TotalSpent() decimal.Decimal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	total := decimal.Zero
	for _, c := range s.categories {
		if !c.IsIncome {
			total = total.Add(c.Spent())
		}
	}
	return total
}

// RebuildAggregates recomputes every expense category's monthly spend from a full
// ledger scan. Income aggregates are set explicitly and are left alone.
func (s *categoryStore) RebuildAggregates(txns []models.Transaction) {
	sums := make(map[string]decimal.Decimal)
	for _, tx := range txns {
		if tx.IsIncome {
			continue
		}
		sums[tx.CategoryID] = sums[tx.CategoryID].Add(tx.Amount)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.categories {
		c := &s.categories[i]
		if c.IsIncome {
			continue
		}
		v := sums[c.ID]
		c.MonthlySpent = &v
	}
}

// Replace swaps in a loaded category set.
func (s *categoryStore) Replace(categories []models.Category) {
	next := make([]models.Category, 0, len(categories))
	seen := make(map[string]bool, len(categories))
	for _, c := range categories {
		c.EnsureID()
		if seen[c.ID] {
			continue
		}
		seen[c.ID] = true
		c = c.Clone()
		c.Normalize()
		next = append(next, c)
	}

	s.mu.Lock()
	s.categories = next
	s.mu.Unlock()

	s.publish(events.OpReplace, "")
}

// SeedDefaults adds every default category whose name is not taken yet and
// returns how many were added.
func (s *categoryStore) SeedDefaults() int {
	s.mu.Lock()
	added := 0
	for _, c := range DefaultCategories() {
		if s.indexOfName(c.Name) >= 0 {
			continue
		}
		s.categories = append(s.categories, c)
		added++
	}
	s.mu.Unlock()

	if added > 0 {
		s.publish(events.OpReplace, "")
	}
	return added
}

// HandleLedgerEvent keeps monthly spend in step with the ledger. Only expense
// transactions contribute; an update reverses the old amount before applying the new one.
func (s *categoryStore) HandleLedgerEvent(e events.Event) {
	switch e.Op {
	case events.OpAdd:
		s.applyExpense(e.New, 1)
	case events.OpDelete:
		s.applyExpense(e.Old, -1)
	case events.OpUpdate:
		s.applyExpense(e.Old, -1)
		s.applyExpense(e.New, 1)
	case events.OpReplace:
		s.RebuildAggregates(e.Transactions)
	}
}

func (s *categoryStore) applyExpense(tx *models.Transaction, sign int64) {
	if tx == nil || tx.IsIncome {
		return
	}
	amount := tx.Amount
	if sign < 0 {
		amount = amount.Neg()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	// stale category references contribute nothing
	_ = s.adjustLocked(tx.CategoryID, amount, false)
}

func (s *categoryStore) adjustAndPublish(id string, delta decimal.Decimal, income bool) error {
	s.mu.Lock()
	err := s.adjustLocked(id, delta, income)
	s.mu.Unlock()
	if err != nil {
		return err
	}
	s.publish(events.OpAdjust, id)
	return nil
}

// adjustLocked moves the matching aggregate by delta, clamping at 0. Adjusting the
// wrong side of a category is a no-op.
func (s *categoryStore) adjustLocked(id string, delta decimal.Decimal, income bool) error {
	i := s.indexOf(id)
	if i < 0 {
		return apperrors.ErrCategoryNotFound
	}
	c := &s.categories[i]
	if c.IsIncome != income {
		return nil
	}

	var current decimal.Decimal
	if income {
		current = c.Income()
	} else {
		current = c.Spent()
	}
	next := decimal.Max(current.Add(delta), decimal.Zero)
	if income {
		c.MonthlyIncome = &next
	} else {
		c.MonthlySpent = &next
	}
	return nil
}

func (s *categoryStore) list(keep func(models.Category) bool) []models.Category {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Category, 0, len(s.categories))
	for _, c := range s.categories {
		if keep(c) {
			out = append(out, c.Clone())
		}
	}
	return out
}

func (s *categoryStore) indexOf(id string) int {
	for i := range s.categories {
		if s.categories[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *categoryStore) indexOfName(name string) int {
	for i := range s.categories {
		if s.categories[i].Name == name {
			return i
		}
	}
	return -1
}

func (s *categoryStore) publish(op events.Op, id string) {
	if s.bus == nil {
		return
	}
	s.bus.Publish(events.Event{Kind: events.CategoriesChanged, Op: op, ID: id})
}

func cloneDecimal(d *decimal.Decimal) *decimal.Decimal {
	if d == nil {
		return nil
	}
	v := *d
	return &v
}
