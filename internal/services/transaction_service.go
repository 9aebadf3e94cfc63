package services

import (
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	apperrors "kasa/internal/errors"
	"kasa/internal/events"
	"kasa/internal/models"
)

type ledgerEntry struct {
	tx  models.Transaction
	seq uint64
}

// transactionLedger owns the canonical transaction log, ordered by date
// descending with ties in insertion order.
type transactionLedger struct {
	mu         sync.RWMutex
	entries    []ledgerEntry
	seq        uint64
	categories CategoryResolver
	bus        *events.Bus
	now        func() time.Time
}

// NewTransactionLedger creates a new TransactionLedgerer.
func NewTransactionLedger(categories CategoryResolver, bus *events.Bus, now func() time.Time) TransactionLedgerer {
	if now == nil {
		now = time.Now
	}
	return &transactionLedger{categories: categories, bus: bus, now: now}
}

// Add appends a transaction. Its category must exist and agree on IsIncome.
func (l *transactionLedger) Add(tx models.Transaction) (*models.Transaction, error) {
	if err := l.validate(&tx); err != nil {
		return nil, err
	}
	tx.EnsureID()

	l.mu.Lock()
	if l.indexOf(tx.ID) >= 0 {
		l.mu.Unlock()
		return nil, apperrors.ErrDuplicateID
	}
	l.seq++
	l.entries = append(l.entries, ledgerEntry{tx: tx, seq: l.seq})
	l.sortLocked()
	l.mu.Unlock()

	added := tx
	l.publish(events.Event{Kind: events.LedgerChanged, Op: events.OpAdd, ID: tx.ID, New: &added})
	return &tx, nil
}

// Update replaces the transaction with the same id. Subscribers receive both
// versions so they can reverse the old contribution before applying the new one.
func (l *transactionLedger) Update(tx models.Transaction) (*models.Transaction, error) {
	if tx.ID == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "transaction id is required")
	}
	if err := l.validate(&tx); err != nil {
		return nil, err
	}

	l.mu.Lock()
	i := l.indexOf(tx.ID)
	if i < 0 {
		l.mu.Unlock()
		return nil, apperrors.ErrTransactionNotFound
	}
	old := l.entries[i].tx
	l.entries[i].tx = tx
	l.sortLocked()
	l.mu.Unlock()

	updated := tx
	l.publish(events.Event{Kind: events.LedgerChanged, Op: events.OpUpdate, ID: tx.ID, Old: &old, New: &updated})
	return &tx, nil
}

// Delete removes a transaction.
func (l *transactionLedger) Delete(id string) error {
	l.mu.Lock()
	i := l.indexOf(id)
	if i < 0 {
		l.mu.Unlock()
		return apperrors.ErrTransactionNotFound
	}
	old := l.entries[i].tx
	l.entries = slices.Delete(l.entries, i, i+1)
	l.mu.Unlock()

	l.publish(events.Event{Kind: events.LedgerChanged, Op: events.OpDelete, ID: id, Old: &old})
	return nil
}

// Replace swaps in a loaded ledger. Entries are not validated: stale category
// references are tolerated and duplicate ids keep the first occurrence.
func (l *transactionLedger) Replace(txns []models.Transaction) {
	l.mu.Lock()
	l.entries = l.entries[:0]
	seen := make(map[string]bool, len(txns))
	for _, tx := range txns {
		tx.EnsureID()
		if seen[tx.ID] {
			continue
		}
		seen[tx.ID] = true
		l.seq++
		l.entries = append(l.entries, ledgerEntry{tx: tx, seq: l.seq})
	}
	l.sortLocked()
	snapshot := l.snapshotLocked()
	l.mu.Unlock()

	l.publish(events.Event{Kind: events.LedgerChanged, Op: events.OpReplace, Transactions: snapshot})
}

// Get returns a copy of the transaction with the given id.
func (l *transactionLedger) Get(id string) (*models.Transaction, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	i := l.indexOf(id)
	if i < 0 {
		return nil, false
	}
	tx := l.entries[i].tx
	return &tx, true
}

// All returns the ledger in canonical order.
func (l *transactionLedger) All() []models.Transaction {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.snapshotLocked()
}

func (l *transactionLedger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}

// Filter returns the matching transactions in canonical order without touching the ledger.
func (l *transactionLedger) Filter(f TransactionFilter) []models.Transaction {
	query := strings.ToLower(strings.TrimSpace(f.Search))
	out := make([]models.Transaction, 0)
	for _, tx := range l.All() {
		if f.FromDate != nil && tx.Date.Before(*f.FromDate) {
			continue
		}
		if f.ToDate != nil && tx.Date.After(*f.ToDate) {
			continue
		}
		if f.Type != nil && tx.Type() != *f.Type {
			continue
		}
		if f.CategoryID != nil && tx.CategoryID != *f.CategoryID {
			continue
		}
		if f.MinAmount != nil && tx.Amount.LessThan(*f.MinAmount) {
			continue
		}
		if f.MaxAmount != nil && tx.Amount.GreaterThan(*f.MaxAmount) {
			continue
		}
		if query != "" &&
			!strings.Contains(strings.ToLower(tx.Title), query) &&
			!strings.Contains(strings.ToLower(l.resolveName(tx.CategoryID)), query) {
			continue
		}
		out = append(out, tx)
	}
	return out
}

// Search matches query against the title or the resolved category name, ignoring case.
func (l *transactionLedger) Search(query string) []models.Transaction {
	return l.Filter(TransactionFilter{Search: query})
}

// TotalIncome sums income transactions, optionally within an inclusive range.
func (l *transactionLedger) TotalIncome(r *models.DateRange) decimal.Decimal {
	income, _ := splitByDirection(l.inRange(r))
	return sumAmounts(income)
}

// TotalExpense sums expense transactions, optionally within an inclusive range.
func (l *transactionLedger) TotalExpense(r *models.DateRange) decimal.Decimal {
	_, expense := splitByDirection(l.inRange(r))
	return sumAmounts(expense)
}

func (l *transactionLedger) ExpenseByCategory(r *models.DateRange) []models.CategorySegment {
	_, expense := splitByDirection(l.inRange(r))
	segments, _ := groupByCategory(expense, l.resolveName)
	return segments
}

func (l *transactionLedger) IncomeByCategory(r *models.DateRange) []models.CategorySegment {
	income, _ := splitByDirection(l.inRange(r))
	segments, _ := groupByCategory(income, l.resolveName)
	return segments
}

func (l *transactionLedger) inRange(r *models.DateRange) []models.Transaction {
	all := l.All()
	if r == nil {
		return all
	}
	out := all[:0]
	for _, tx := range all {
		if r.Contains(tx.Date) {
			out = append(out, tx)
		}
	}
	return out
}

func (l *transactionLedger) validate(tx *models.Transaction) error {
	tx.Title = strings.TrimSpace(tx.Title)
	if tx.Amount.IsNegative() {
		return apperrors.ErrNegativeAmount
	}
	if tx.CategoryID == "" {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "category ID is required")
	}
	if tx.Date.IsZero() {
		tx.Date = l.now()
	}

	category, ok := l.categories.Get(tx.CategoryID)
	if !ok {
		return apperrors.ErrCategoryNotFound
	}
	if category.IsIncome != tx.IsIncome {
		return apperrors.ErrCategoryTypeMismatch
	}
	return nil
}

func (l *transactionLedger) resolveName(id string) string {
	if l.categories == nil {
		return models.UnknownCategoryName
	}
	return l.categories.ResolveName(id)
}

func (l *transactionLedger) sortLocked() {
	slices.SortFunc(l.entries, func(a, b ledgerEntry) int {
		if c := b.tx.Date.Compare(a.tx.Date); c != 0 {
			return c
		}
		switch {
		case a.seq < b.seq:
			return -1
		case a.seq > b.seq:
			return 1
		}
		return 0
	})
}

func (l *transactionLedger) snapshotLocked() []models.Transaction {
	out := make([]models.Transaction, len(l.entries))
	for i, e := range l.entries {
		out[i] = e.tx
	}
	return out
}

func (l *transactionLedger) indexOf(id string) int {
	for i := range l.entries {
		if l.entries[i].tx.ID == id {
			return i
		}
	}
	return -1
}

func (l *transactionLedger) publish(e events.Event) {
	if l.bus == nil {
		return
	}
	l.bus.Publish(e)
}
