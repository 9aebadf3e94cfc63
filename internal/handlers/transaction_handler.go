package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "kasa/internal/errors"
	"kasa/internal/models"
	"kasa/internal/pagination"
	"kasa/internal/services"
)

// openEnded stands in for a missing upper bound.
var openEnded = time.Date(9999, time.December, 31, 23, 59, 59, 0, time.UTC)

// TransactionHandler handles transaction-related requests.
type TransactionHandler struct {
	ledger services.TransactionLedgerer
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(ledger services.TransactionLedgerer) *TransactionHandler {
	return &TransactionHandler{ledger: ledger}
}

// CreateTransactionRequest represents the request payload for creating a transaction.
// Type must match the referenced category's side.
type CreateTransactionRequest struct {
	Title      string           `json:"title" binding:"required,max=200"`
	Amount     *decimal.Decimal `json:"amount" binding:"required"`
	Date       *time.Time       `json:"date"`
	CategoryID string           `json:"category_id" binding:"required,uuid"`
	Type       string           `json:"type" binding:"required,transaction_type"`
	Notes      string           `json:"notes" binding:"max=1000"`
}

// UpdateTransactionRequest represents the request payload for updating a transaction.
type UpdateTransactionRequest struct {
	Title      string           `json:"title" binding:"omitempty,max=200"`
	Amount     *decimal.Decimal `json:"amount"`
	Date       *time.Time       `json:"date"`
	CategoryID string           `json:"category_id" binding:"omitempty,uuid"`
	Type       string           `json:"type" binding:"omitempty,transaction_type"`
	Notes      *string          `json:"notes" binding:"omitempty,max=1000"`
}

// TotalsResponse summarizes the ledger over an optional date range.
type TotalsResponse struct {
	TotalIncome       decimal.Decimal          `json:"total_income"`
	TotalExpense      decimal.Decimal          `json:"total_expense"`
	NetAmount         decimal.Decimal          `json:"net_amount"`
	IncomeByCategory  []models.CategorySegment `json:"income_by_category"`
	ExpenseByCategory []models.CategorySegment `json:"expense_by_category"`
}

// CreateTransaction handles the creation of a new transaction.
// @Summary     Create a transaction
// @Description Record an income or expense against a category
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Param       request body CreateTransactionRequest true "Transaction details"
// @Success     201 {object} models.Transaction "Transaction created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Category not found"
// @Router      /transactions [post]
func (h *TransactionHandler) CreateTransaction(c *gin.Context) {
	var req CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	tx := models.Transaction{
		Title:      req.Title,
		Amount:     *req.Amount,
		CategoryID: req.CategoryID,
		IsIncome:   models.TransactionType(req.Type) == models.TransactionTypeIncome,
		Notes:      req.Notes,
	}
	if req.Date != nil {
		tx.Date = *req.Date
	}

	created, err := h.ledger.Add(tx)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"transaction": created})
}

// GetTransactions handles listing transactions, newest first.
// @Summary     Get transactions
// @Description Get a paginated, filtered list of transactions ordered by date descending
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Param       from_date   query string false "From date (RFC3339 or YYYY-MM-DD)"
// @Param       to_date     query string false "To date (RFC3339 or YYYY-MM-DD, inclusive)"
// @Param       type        query string false "Transaction type (income/expense)"
// @Param       category_id query string false "Category ID"
// @Param       min_amount  query string false "Minimum amount"
// @Param       max_amount  query string false "Maximum amount"
// @Param       search      query string false "Case-insensitive match on title or category name"
// @Param       page        query int    false "Page number (default 1)"
// @Param       page_size   query int    false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.Transaction] "Paginated transactions"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Router      /transactions [get]
func (h *TransactionHandler) GetTransactions(c *gin.Context) {
	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	filter, err := parseTransactionFilter(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, pagination.Slice(h.ledger.Filter(filter), page))
}

func parseTransactionFilter(c *gin.Context) (services.TransactionFilter, error) {
	var (
		f   services.TransactionFilter
		err error
	)
	if f.FromDate, err = parseDateQuery(c, "from_date", false); err != nil {
		return f, err
	}
	if f.ToDate, err = parseDateQuery(c, "to_date", true); err != nil {
		return f, err
	}
	if v := c.Query("type"); v != "" {
		t := models.TransactionType(v)
		if t != models.TransactionTypeIncome && t != models.TransactionTypeExpense {
			return f, apperrors.WithMessage(apperrors.ErrInvalidInput, "type must be 'income' or 'expense'")
		}
		f.Type = &t
	}
	if v := c.Query("category_id"); v != "" {
		f.CategoryID = &v
	}
	if f.MinAmount, err = parseDecimalQuery(c, "min_amount"); err != nil {
		return f, err
	}
	if f.MaxAmount, err = parseDecimalQuery(c, "max_amount"); err != nil {
		return f, err
	}
	f.Search = c.Query("search")
	return f, nil
}

// GetTransaction handles retrieving a specific transaction.
// @Summary     Get transaction by ID
// @Tags        transactions
// @Produce     json
// @Param       id path string true "Transaction ID"
// @Success     200 {object} models.Transaction "Transaction details"
// @Failure     400 {object} ErrorResponse "Invalid transaction ID"
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Router      /transactions/{id} [get]
func (h *TransactionHandler) GetTransaction(c *gin.Context) {
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	tx, ok := h.ledger.Get(id)
	if !ok {
		respondWithError(c, apperrors.ErrTransactionNotFound)
		return
	}

	c.JSON(http.StatusOK, gin.H{"transaction": tx})
}

// UpdateTransaction handles updating an existing transaction.
// @Summary     Update transaction
// @Description Update any field of a transaction; aggregates are reversed and reapplied
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Param       id      path string                   true "Transaction ID"
// @Param       request body UpdateTransactionRequest true "Updated transaction details"
// @Success     200 {object} models.Transaction "Updated transaction"
// @Failure     400 {object} ErrorResponse "Invalid input or transaction ID"
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Router      /transactions/{id} [put]
func (h *TransactionHandler) UpdateTransaction(c *gin.Context) {
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	tx, ok := h.ledger.Get(id)
	if !ok {
		respondWithError(c, apperrors.ErrTransactionNotFound)
		return
	}
	if req.Title != "" {
		tx.Title = req.Title
	}
	if req.Amount != nil {
		tx.Amount = *req.Amount
	}
	if req.Date != nil {
		tx.Date = *req.Date
	}
	if req.CategoryID != "" {
		tx.CategoryID = req.CategoryID
	}
	if req.Type != "" {
		tx.IsIncome = models.TransactionType(req.Type) == models.TransactionTypeIncome
	}
	if req.Notes != nil {
		tx.Notes = *req.Notes
	}

	updated, err := h.ledger.Update(*tx)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"transaction": updated})
}

// DeleteTransaction handles deleting a transaction.
// @Summary     Delete transaction
// @Tags        transactions
// @Produce     json
// @Param       id path string true "Transaction ID"
// @Success     200 {object} MessageResponse "Transaction deleted"
// @Failure     400 {object} ErrorResponse "Invalid transaction ID"
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Router      /transactions/{id} [delete]
func (h *TransactionHandler) DeleteTransaction(c *gin.Context) {
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.ledger.Delete(id); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Transaction deleted successfully"})
}

// GetTotals handles summarizing the ledger.
// @Summary     Get ledger totals
// @Description Income and expense totals plus per-category breakdowns over an optional inclusive range
// @Tags        transactions
// @Produce     json
// @Param       from_date query string false "From date (RFC3339 or YYYY-MM-DD)"
// @Param       to_date   query string false "To date (RFC3339 or YYYY-MM-DD, inclusive)"
// @Success     200 {object} TotalsResponse "Totals"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Router      /transactions/totals [get]
func (h *TransactionHandler) GetTotals(c *gin.Context) {
	from, err := parseDateQuery(c, "from_date", false)
	if err != nil {
		respondWithError(c, err)
		return
	}
	to, err := parseDateQuery(c, "to_date", true)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var window *models.DateRange
	if from != nil || to != nil {
		window = &models.DateRange{To: openEnded}
		if from != nil {
			window.From = *from
		}
		if to != nil {
			window.To = *to
		}
	}

	income := h.ledger.TotalIncome(window)
	expense := h.ledger.TotalExpense(window)
	c.JSON(http.StatusOK, gin.H{"totals": TotalsResponse{
		TotalIncome:       income,
		TotalExpense:      expense,
		NetAmount:         income.Sub(expense),
		IncomeByCategory:  h.ledger.IncomeByCategory(window),
		ExpenseByCategory: h.ledger.ExpenseByCategory(window),
	}})
}
