package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType represents the direction of a transaction
type TransactionType string

const (
	TransactionTypeIncome  TransactionType = "income"
	TransactionTypeExpense TransactionType = "expense"
)

// Transaction is a single dated money movement tied to one category.
type Transaction struct {
	Base
	Title      string          `json:"title"`
	Amount     decimal.Decimal `json:"amount"`
	Date       time.Time       `json:"date"`
	CategoryID string          `json:"category_id"`
	IsIncome   bool            `json:"is_income"`
	Notes      string          `json:"notes,omitempty"`
}

// Type returns the transaction's direction.
func (t Transaction) Type() TransactionType {
	if t.IsIncome {
		return TransactionTypeIncome
	}
	return TransactionTypeExpense
}

// DateRange is an inclusive [From, To] window.
type DateRange struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// Contains reports whether t falls inside the range, both ends included.
func (r DateRange) Contains(t time.Time) bool {
	return !t.Before(r.From) && !t.After(r.To)
}

// StartOfDay truncates t to midnight in its own location.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// EndOfDay returns the last representable instant of t's day.
func EndOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 999999999, t.Location())
}
