// Package validator provides custom validation functions for Gin's binding engine.
package validator

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"kasa/internal/models"
)

// Register registers all custom validators with the Gin binding engine.
func Register() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("transaction_type", validateTransactionType)
		_ = v.RegisterValidation("category_type", validateCategoryType)
		_ = v.RegisterValidation("budget_period", validateBudgetPeriod)
		_ = v.RegisterValidation("analysis_period", validateAnalysisPeriod)
		_ = v.RegisterValidation("analysis_page", validateAnalysisPage)
		_ = v.RegisterValidation("color_channel", validateColorChannel)
	}
}

func validateTransactionType(fl validator.FieldLevel) bool {
	switch models.TransactionType(fl.Field().String()) {
	case models.TransactionTypeIncome, models.TransactionTypeExpense:
		return true
	}
	return false
}

func validateCategoryType(fl validator.FieldLevel) bool {
	switch models.CategoryType(fl.Field().String()) {
	case models.CategoryTypeIncome, models.CategoryTypeExpense:
		return true
	}
	return false
}

func validateBudgetPeriod(fl validator.FieldLevel) bool {
	return models.BudgetPeriod(fl.Field().String()).IsValid()
}

func validateAnalysisPeriod(fl validator.FieldLevel) bool {
	return models.AnalysisPeriod(fl.Field().String()).IsValid()
}

func validateAnalysisPage(fl validator.FieldLevel) bool {
	return models.AnalysisPage(fl.Field().String()).IsValid()
}

func validateColorChannel(fl validator.FieldLevel) bool {
	v := fl.Field().Float()
	return v >= 0 && v <= 1
}
