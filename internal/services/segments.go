package services

import (
	"github.com/shopspring/decimal"

	"kasa/internal/models"
)

// groupByCategory sums amounts per resolved category name, keeping the order in
// which each name is first seen. Percentages are of the group total, 0 when it is 0.
func groupByCategory(txns []models.Transaction, resolve func(id string) string) ([]models.CategorySegment, decimal.Decimal) {
	segments := make([]models.CategorySegment, 0)
	index := make(map[string]int)
	total := decimal.Zero

	for _, tx := range txns {
		name := resolve(tx.CategoryID)
		if i, ok := index[name]; ok {
			segments[i].Value = segments[i].Value.Add(tx.Amount)
		} else {
			index[name] = len(segments)
			segments = append(segments, models.CategorySegment{Name: name, Value: tx.Amount})
		}
		total = total.Add(tx.Amount)
	}

	if total.IsPositive() {
		for i := range segments {
			segments[i].Percentage = segments[i].Value.Div(total).Mul(decimal.NewFromInt(100)).InexactFloat64()
		}
	}
	return segments, total
}

// sumAmounts totals tx.Amount over txns.
func sumAmounts(txns []models.Transaction) decimal.Decimal {
	total := decimal.Zero
	for _, tx := range txns {
		total = total.Add(tx.Amount)
	}
	return total
}

// splitByDirection partitions txns into income and expense, preserving order.
func splitByDirection(txns []models.Transaction) (income, expense []models.Transaction) {
	for _, tx := range txns {
		if tx.IsIncome {
			income = append(income, tx)
		} else {
			expense = append(expense, tx)
		}
	}
	return income, expense
}
