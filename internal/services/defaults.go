package services

import "kasa/internal/models"

type defaultCategory struct {
	name     string
	icon     string
	color    models.Color
	isIncome bool
}

// defaultCategories are seeded as system categories on first launch.
var defaultCategories = []defaultCategory{
	{"Maaş", "banknote", models.NewColor(0.20, 0.78, 0.35, 1), true},
	{"Ek Gelir", "plus.circle", models.NewColor(0.19, 0.69, 0.78, 1), true},
	{"Yatırım", "chart.line.uptrend", models.NewColor(0.35, 0.34, 0.84, 1), true},
	{"Yemek", "fork.knife", models.NewColor(1.00, 0.58, 0.00, 1), false},
	{"Ulaşım", "car", models.NewColor(0.00, 0.48, 1.00, 1), false},
	{"Faturalar", "doc.text", models.NewColor(1.00, 0.23, 0.19, 1), false},
	{"Alışveriş", "bag", models.NewColor(1.00, 0.18, 0.33, 1), false},
	{"Eğlence", "gamecontroller", models.NewColor(0.69, 0.32, 0.87, 1), false},
	{"Sağlık", "cross.case", models.NewColor(0.20, 0.78, 0.35, 1), false},
	{"Diğer", "ellipsis.circle", models.NewColor(0.56, 0.56, 0.58, 1), false},
}

// DefaultCategories returns fresh copies of the system categories.
func DefaultCategories() []models.Category {
	out := make([]models.Category, 0, len(defaultCategories))
	for _, d := range defaultCategories {
		c := models.Category{
			Name:     d.name,
			Icon:     d.icon,
			Color:    d.color,
			IsIncome: d.isIncome,
			IsSystem: true,
		}
		c.EnsureID()
		c.Normalize()
		out = append(out, c)
	}
	return out
}
