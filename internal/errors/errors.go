// Package errors provides the structured error type returned across the engine's
// public boundary and rendered by the HTTP surface.
package errors

import "net/http"

// AppError represents a structured application error with an error code,
// human-readable message, HTTP status code, and optional internal error.
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	Internal   error  `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string { return e.Message }

// Unwrap returns the internal error for use with errors.Is/As.
func (e *AppError) Unwrap() error { return e.Internal }

// Is matches any AppError carrying the same code, so wrapped sentinels still
// compare equal with errors.Is.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	return ok && t.Code == e.Code
}

// Wrap creates a new AppError with the same code/message/status but wraps an internal error.
func Wrap(sentinel *AppError, internal error) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    sentinel.Message,
		StatusCode: sentinel.StatusCode,
		Internal:   internal,
	}
}

// WithMessage creates a new AppError with a custom message.
func WithMessage(sentinel *AppError, message string) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    message,
		StatusCode: sentinel.StatusCode,
		Internal:   sentinel.Internal,
	}
}

// General errors.
var (
	ErrInvalidInput   = &AppError{Code: "INVALID_INPUT", Message: "Invalid input", StatusCode: http.StatusBadRequest}
	ErrNotFound       = &AppError{Code: "NOT_FOUND", Message: "Resource not found", StatusCode: http.StatusNotFound}
	ErrDuplicateID    = &AppError{Code: "DUPLICATE_ID", Message: "A record with this id already exists", StatusCode: http.StatusConflict}
	ErrInternalServer = &AppError{Code: "INTERNAL_ERROR", Message: "An internal error occurred", StatusCode: http.StatusInternalServerError}
)

// Category errors.
var (
	ErrCategoryNotFound     = &AppError{Code: "CATEGORY_NOT_FOUND", Message: "Category not found", StatusCode: http.StatusNotFound}
	ErrSystemCategory       = &AppError{Code: "SYSTEM_CATEGORY", Message: "System categories cannot be deleted", StatusCode: http.StatusConflict}
	ErrCategoryTypeMismatch = &AppError{Code: "CATEGORY_TYPE_MISMATCH", Message: "Transaction and category disagree on income/expense", StatusCode: http.StatusBadRequest}
	ErrCategoryTypeChange   = &AppError{Code: "CATEGORY_TYPE_CHANGE", Message: "A category cannot switch between income and expense", StatusCode: http.StatusBadRequest}
)

// Transaction errors.
var (
	ErrTransactionNotFound = &AppError{Code: "TRANSACTION_NOT_FOUND", Message: "Transaction not found", StatusCode: http.StatusNotFound}
	ErrNegativeAmount      = &AppError{Code: "NEGATIVE_AMOUNT", Message: "Amount must not be negative", StatusCode: http.StatusBadRequest}
)

// Budget errors.
var (
	ErrBudgetNotFound      = &AppError{Code: "BUDGET_NOT_FOUND", Message: "Budget not found", StatusCode: http.StatusNotFound}
	ErrInvalidBudgetPeriod = &AppError{Code: "INVALID_BUDGET_PERIOD", Message: "Unsupported budget period", StatusCode: http.StatusBadRequest}
)

// Analysis errors.
var (
	ErrInvalidAnalysisPeriod = &AppError{Code: "INVALID_ANALYSIS_PERIOD", Message: "Unsupported analysis period", StatusCode: http.StatusBadRequest}
	ErrInvalidAnalysisPage   = &AppError{Code: "INVALID_ANALYSIS_PAGE", Message: "Unsupported analysis page", StatusCode: http.StatusBadRequest}
)
