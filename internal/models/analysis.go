package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// AnalysisPeriod is the granularity of an analysis window.
type AnalysisPeriod string

const (
	AnalysisPeriodWeekly  AnalysisPeriod = "weekly"
	AnalysisPeriodMonthly AnalysisPeriod = "monthly"
	AnalysisPeriodYearly  AnalysisPeriod = "yearly"
)

// IsValid reports whether p is a known analysis period.
func (p AnalysisPeriod) IsValid() bool {
	switch p {
	case AnalysisPeriodWeekly, AnalysisPeriodMonthly, AnalysisPeriodYearly:
		return true
	}
	return false
}

// AnalysisPage selects which side of the summary a viewer is looking at.
type AnalysisPage string

const (
	AnalysisPageExpense AnalysisPage = "expense"
	AnalysisPageIncome  AnalysisPage = "income"
)

// IsValid reports whether p is a known page.
func (p AnalysisPage) IsValid() bool {
	return p == AnalysisPageExpense || p == AnalysisPageIncome
}

// CategorySegment is one category's share of a side of the ledger.
type CategorySegment struct {
	Name       string          `json:"name"`
	Value      decimal.Decimal `json:"value"`
	Percentage float64         `json:"percentage"`
}

// AnalysisSummary is an immutable, period-scoped view of the ledger.
type AnalysisSummary struct {
	Period            AnalysisPeriod    `json:"period"`
	Page              AnalysisPage      `json:"page"`
	TimeOffset        int               `json:"time_offset"`
	Label             string            `json:"label"`
	Range             DateRange         `json:"range"`
	TotalIncome       decimal.Decimal   `json:"total_income"`
	TotalExpense      decimal.Decimal   `json:"total_expense"`
	NetAmount         decimal.Decimal   `json:"net_amount"`
	SavingsPercentage float64           `json:"savings_percentage"`
	IncomeCategories  []CategorySegment `json:"income_categories"`
	ExpenseCategories []CategorySegment `json:"expense_categories"`
	GeneratedAt       time.Time         `json:"generated_at"`
}

// Segments returns the segment list for the summary's selected page.
func (s AnalysisSummary) Segments() []CategorySegment {
	if s.Page == AnalysisPageIncome {
		return s.IncomeCategories
	}
	return s.ExpenseCategories
}
