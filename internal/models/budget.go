package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// BudgetPeriod represents the window length of a budget
type BudgetPeriod string

const (
	BudgetPeriodWeekly   BudgetPeriod = "weekly"
	BudgetPeriodMonthly  BudgetPeriod = "monthly"
	BudgetPeriodHalfYear BudgetPeriod = "half_year"
	BudgetPeriodYearly   BudgetPeriod = "yearly"
)

// IsValid reports whether p is a known budget period.
func (p BudgetPeriod) IsValid() bool {
	switch p {
	case BudgetPeriodWeekly, BudgetPeriodMonthly, BudgetPeriodHalfYear, BudgetPeriodYearly:
		return true
	}
	return false
}

// EndFrom derives the window end for a budget starting at start.
func (p BudgetPeriod) EndFrom(start time.Time) time.Time {
	switch p {
	case BudgetPeriodWeekly:
		return start.AddDate(0, 0, 7)
	case BudgetPeriodHalfYear:
		return start.AddDate(0, 6, 0)
	case BudgetPeriodYearly:
		return start.AddDate(1, 0, 0)
	default:
		return start.AddDate(0, 1, 0)
	}
}

// Budget is a spending target for one expense category over [StartDate, EndDate].
// Spent is derived from the ledger. CategoryName is matched by name against each
// transaction's resolved category.
type Budget struct {
	Base
	Name         string          `json:"name"`
	Amount       decimal.Decimal `json:"amount"`
	Spent        decimal.Decimal `json:"spent"`
	CategoryName string          `json:"category"`
	Period       BudgetPeriod    `json:"period"`
	StartDate    time.Time       `json:"start_date"`
	EndDate      time.Time       `json:"end_date"`
}

// PercentageSpent returns spent/amount clamped to [0, 1]. A non-positive amount
// yields 1 when anything has been spent and 0 otherwise.
func (b Budget) PercentageSpent() float64 {
	if !b.Amount.IsPositive() {
		if b.Spent.IsPositive() {
			return 1
		}
		return 0
	}
	ratio := b.Spent.Div(b.Amount).InexactFloat64()
	if ratio > 1 {
		return 1
	}
	if ratio < 0 {
		return 0
	}
	return ratio
}

// RemainingAmount returns max(amount-spent, 0).
func (b Budget) RemainingAmount() decimal.Decimal {
	return decimal.Max(b.Amount.Sub(b.Spent), decimal.Zero)
}

// IsOverBudget reports whether spent exceeds the target.
func (b Budget) IsOverBudget() bool {
	return b.Spent.GreaterThan(b.Amount)
}

// IsActive reports whether now falls inside the budget window, both ends included.
func (b Budget) IsActive(now time.Time) bool {
	return !now.Before(b.StartDate) && !now.After(b.EndDate)
}
