package services

import (
	"time"

	"github.com/shopspring/decimal"

	"kasa/internal/events"
	"kasa/internal/models"
)

// CategoryResolver resolves a transaction's category reference.
type CategoryResolver interface {
	Get(id string) (*models.Category, bool)
	ResolveName(id string) string
}

// LedgerReader exposes the canonical, ordered transaction log.
type LedgerReader interface {
	All() []models.Transaction
}

// CategoryStorer defines the contract for the category store.
type CategoryStorer interface {
	CategoryResolver

	Add(category models.Category) (*models.Category, error)
	Update(category models.Category) (*models.Category, error)
	Delete(id string) error
	FindByName(name string) (*models.Category, bool)
	All() []models.Category
	Income() []models.Category
	Expense() []models.Category

	ApplySpend(id string, amount decimal.Decimal) error
	ReverseSpend(id string, amount decimal.Decimal) error
	ApplyIncome(id string, amount decimal.Decimal) error
	ReverseIncome(id string, amount decimal.Decimal) error
	SetIncomeForNamedCategory(name string, amount decimal.Decimal) error
	TotalIncome() decimal.Decimal
	TotalSpent() decimal.Decimal

	RebuildAggregates(txns []models.Transaction)
	Replace(categories []models.Category)
	SeedDefaults() int
	HandleLedgerEvent(e events.Event)
}

// TransactionFilter holds optional filter parameters for listing transactions.
// Search is a case-insensitive substring match on the title or the resolved category name.
type TransactionFilter struct {
	FromDate   *time.Time
	ToDate     *time.Time
	Type       *models.TransactionType
	CategoryID *string
	MinAmount  *decimal.Decimal
	MaxAmount  *decimal.Decimal
	Search     string
}

// TransactionLedgerer defines the contract for the transaction ledger.
type TransactionLedgerer interface {
	LedgerReader

	Add(tx models.Transaction) (*models.Transaction, error)
	Update(tx models.Transaction) (*models.Transaction, error)
	Delete(id string) error
	Get(id string) (*models.Transaction, bool)
	Len() int
	Filter(f TransactionFilter) []models.Transaction
	Search(query string) []models.Transaction
	TotalIncome(r *models.DateRange) decimal.Decimal
	TotalExpense(r *models.DateRange) decimal.Decimal
	ExpenseByCategory(r *models.DateRange) []models.CategorySegment
	IncomeByCategory(r *models.DateRange) []models.CategorySegment
	Replace(txns []models.Transaction)
}

// BudgetTracker defines the contract for budget tracking.
type BudgetTracker interface {
	AddBudget(budget models.Budget) (*models.Budget, error)
	UpdateBudget(budget models.Budget) (*models.Budget, error)
	DeleteBudget(id string) error
	Get(id string) (*models.Budget, bool)
	List() []models.Budget
	ByCategoryName(name string) []models.Budget
	GetActiveBudgets(now time.Time) []models.Budget
	RecomputeAll(txns []models.Transaction)
	Replace(budgets []models.Budget)
	HandleLedgerEvent(e events.Event)
	HandleCategoryEvent(e events.Event)
}

// AnalysisState is the aggregator's current selection.
type AnalysisState struct {
	Period     models.AnalysisPeriod `json:"period"`
	Page       models.AnalysisPage   `json:"page"`
	TimeOffset int                   `json:"time_offset"`
}

// AnalysisAggregator defines the contract for period-scoped ledger summaries.
type AnalysisAggregator interface {
	State() AnalysisState
	SetPeriod(period models.AnalysisPeriod) error
	SetPage(page models.AnalysisPage) error
	SetTimeOffset(offset int) error
	NextPeriod()
	PreviousPeriod()
	DateRange() models.DateRange
	Current() models.AnalysisSummary
	Refresh() models.AnalysisSummary
	Invalidate()
	Flush()
	Close()
}
