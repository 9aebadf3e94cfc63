package models

import (
	"github.com/shopspring/decimal"
)

// CategoryType represents the side of the ledger a category belongs to
type CategoryType string

const (
	CategoryTypeIncome  CategoryType = "income"
	CategoryTypeExpense CategoryType = "expense"
)

// UnknownCategoryName is what a transaction resolves to when its category no longer exists.
const UnknownCategoryName = "Unknown"

// Category is a named income or expense bucket. IsIncome never changes after creation.
// MonthlyBudget and MonthlySpent are only meaningful on expense categories,
// MonthlyIncome only on income categories.
type Category struct {
	Base
	Name          string           `json:"name"`
	Icon          string           `json:"icon"`
	Color         Color            `json:"color"`
	IsIncome      bool             `json:"is_income"`
	IsSystem      bool             `json:"is_system"`
	MonthlyBudget *decimal.Decimal `json:"monthly_budget,omitempty"`
	MonthlySpent  *decimal.Decimal `json:"monthly_spent,omitempty"`
	MonthlyIncome *decimal.Decimal `json:"monthly_income,omitempty"`
}

// Type returns the category's side.
func (c Category) Type() CategoryType {
	if c.IsIncome {
		return CategoryTypeIncome
	}
	return CategoryTypeExpense
}

// Normalize clears the aggregates that do not apply to the category's side and
// zero-initializes the ones that do.
func (c *Category) Normalize() {
	zero := decimal.Zero
	if c.IsIncome {
		c.MonthlyBudget = nil
		c.MonthlySpent = nil
		if c.MonthlyIncome == nil {
			c.MonthlyIncome = &zero
		}
		return
	}
	c.MonthlyIncome = nil
	if c.MonthlySpent == nil {
		c.MonthlySpent = &zero
	}
}

// Spent returns MonthlySpent, or zero when unset.
func (c Category) Spent() decimal.Decimal {
	if c.MonthlySpent == nil {
		return decimal.Zero
	}
	return *c.MonthlySpent
}

// Income returns MonthlyIncome, or zero when unset.
func (c Category) Income() decimal.Decimal {
	if c.MonthlyIncome == nil {
		return decimal.Zero
	}
	return *c.MonthlyIncome
}

// Clone returns a deep copy so callers never share aggregate pointers with the store.
func (c Category) Clone() Category {
	out := c
	out.MonthlyBudget = cloneDecimal(c.MonthlyBudget)
	out.MonthlySpent = cloneDecimal(c.MonthlySpent)
	out.MonthlyIncome = cloneDecimal(c.MonthlyIncome)
	return out
}

func cloneDecimal(d *decimal.Decimal) *decimal.Decimal {
	if d == nil {
		return nil
	}
	v := *d
	return &v
}
