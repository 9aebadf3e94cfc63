package testutil

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"

	"kasa/internal/models"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// Date returns midnight UTC on the given day.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// Clock returns a now func pinned to t.
func Clock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

// NewCategory builds an unsaved category with a fresh id.
func NewCategory(name string, isIncome bool) models.Category {
	c := models.Category{
		Name:     name,
		Icon:     "tag",
		Color:    models.NewColor(0.2, 0.4, 0.6, 1),
		IsIncome: isIncome,
	}
	c.EnsureID()
	c.Normalize()
	return c
}

// NewExpenseCategory builds an expense category with a unique name.
func NewExpenseCategory() models.Category {
	return NewCategory(fmt.Sprintf("Test Expense %d", nextID()), false)
}

// NewIncomeCategory builds an income category with a unique name.
func NewIncomeCategory() models.Category {
	return NewCategory(fmt.Sprintf("Test Income %d", nextID()), true)
}

// NewTransaction builds an unsaved transaction against cat. The amount is in whole units.
func NewTransaction(cat models.Category, amount int64, date time.Time) models.Transaction {
	tx := models.Transaction{
		Title:      fmt.Sprintf("%s #%d", cat.Name, nextID()),
		Amount:     decimal.NewFromInt(amount),
		Date:       date,
		CategoryID: cat.ID,
		IsIncome:   cat.IsIncome,
	}
	tx.EnsureID()
	return tx
}

// NewBudget builds an unsaved budget whose end date is derived from period.
func NewBudget(categoryName string, amount int64, start time.Time, period models.BudgetPeriod) models.Budget {
	b := models.Budget{
		Name:         fmt.Sprintf("Test Budget %d", nextID()),
		Amount:       decimal.NewFromInt(amount),
		CategoryName: categoryName,
		Period:       period,
		StartDate:    start,
		EndDate:      period.EndFrom(start),
	}
	b.EnsureID()
	return b
}
