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

// BudgetHandler handles budget-related requests.
type BudgetHandler struct {
	budgets services.BudgetTracker
	now     func() time.Time
}

// NewBudgetHandler creates a new BudgetHandler.
func NewBudgetHandler(budgets services.BudgetTracker, now func() time.Time) *BudgetHandler {
	if now == nil {
		now = time.Now
	}
	return &BudgetHandler{budgets: budgets, now: now}
}

// CreateBudgetRequest represents the request payload for creating a budget.
// EndDate defaults to StartDate plus one period.
type CreateBudgetRequest struct {
	Name      string              `json:"name" binding:"required,min=1,max=100"`
	Category  string              `json:"category" binding:"required,min=1,max=50"`
	Amount    *decimal.Decimal    `json:"amount" binding:"required"`
	Period    models.BudgetPeriod `json:"period" binding:"required,budget_period"`
	StartDate *time.Time          `json:"start_date"`
	EndDate   *time.Time          `json:"end_date"`
}

// UpdateBudgetRequest represents the request payload for updating a budget.
// The stored budget is replaced as given; the end date is never re-derived.
type UpdateBudgetRequest struct {
	Name      string               `json:"name" binding:"omitempty,min=1,max=100"`
	Category  string               `json:"category" binding:"omitempty,min=1,max=50"`
	Amount    *decimal.Decimal     `json:"amount"`
	Spent     *decimal.Decimal     `json:"spent"`
	Period    *models.BudgetPeriod `json:"period" binding:"omitempty,budget_period"`
	StartDate *time.Time           `json:"start_date"`
	EndDate   *time.Time           `json:"end_date"`
}

// BudgetResponse is a budget with its derived progress.
type BudgetResponse struct {
	models.Budget
	PercentageSpent float64         `json:"percentage_spent"`
	RemainingAmount decimal.Decimal `json:"remaining_amount"`
	IsOverBudget    bool            `json:"is_over_budget"`
	IsActive        bool            `json:"is_active"`
}

func (h *BudgetHandler) respond(b models.Budget) BudgetResponse {
	return BudgetResponse{
		Budget:          b,
		PercentageSpent: b.PercentageSpent(),
		RemainingAmount: b.RemainingAmount(),
		IsOverBudget:    b.IsOverBudget(),
		IsActive:        b.IsActive(h.now()),
	}
}

func (h *BudgetHandler) respondAll(list []models.Budget) []BudgetResponse {
	out := make([]BudgetResponse, len(list))
	for i, b := range list {
		out[i] = h.respond(b)
	}
	return out
}

// CreateBudget handles the creation of a new budget.
// @Summary     Create a budget
// @Description Create a spending target for an expense category, matched by category name
// @Tags        budgets
// @Accept      json
// @Produce     json
// @Param       request body CreateBudgetRequest true "Budget details"
// @Success     201 {object} BudgetResponse "Budget created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Router      /budgets [post]
func (h *BudgetHandler) CreateBudget(c *gin.Context) {
	var req CreateBudgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	budget := models.Budget{
		Name:         req.Name,
		Amount:       *req.Amount,
		CategoryName: req.Category,
		Period:       req.Period,
	}
	if req.StartDate != nil {
		budget.StartDate = *req.StartDate
	}
	if req.EndDate != nil {
		budget.EndDate = *req.EndDate
	}

	created, err := h.budgets.AddBudget(budget)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"budget": h.respond(*created)})
}

// GetBudgets handles listing budgets.
// @Summary     Get budgets
// @Description Get a paginated list of budgets
// @Tags        budgets
// @Accept      json
// @Produce     json
// @Param       category  query string false "Filter by category name"
// @Param       period    query string false "Filter by period (weekly/monthly/half_year/yearly)"
// @Param       page      query int    false "Page number (default 1)"
// @Param       page_size query int    false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[BudgetResponse] "Paginated budgets"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Router      /budgets [get]
func (h *BudgetHandler) GetBudgets(c *gin.Context) {
	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	var list []models.Budget
	if name := c.Query("category"); name != "" {
		list = h.budgets.ByCategoryName(name)
	} else {
		list = h.budgets.List()
	}

	if v := c.Query("period"); v != "" {
		p := models.BudgetPeriod(v)
		if !p.IsValid() {
			respondWithError(c, apperrors.ErrInvalidBudgetPeriod)
			return
		}
		filtered := list[:0]
		for _, b := range list {
			if b.Period == p {
				filtered = append(filtered, b)
			}
		}
		list = filtered
	}

	c.JSON(http.StatusOK, pagination.Slice(h.respondAll(list), page))
}

// GetActiveBudgets handles listing the budgets whose window contains now.
// @Summary     Get active budgets
// @Tags        budgets
// @Produce     json
// @Success     200 {object} []BudgetResponse "Active budgets"
// @Router      /budgets/active [get]
func (h *BudgetHandler) GetActiveBudgets(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"budgets": h.respondAll(h.budgets.GetActiveBudgets(h.now()))})
}

// GetBudget handles retrieving a specific budget.
// @Summary     Get budget by ID
// @Tags        budgets
// @Produce     json
// @Param       id path string true "Budget ID"
// @Success     200 {object} BudgetResponse "Budget details"
// @Failure     400 {object} ErrorResponse "Invalid budget ID"
// @Failure     404 {object} ErrorResponse "Budget not found"
// @Router      /budgets/{id} [get]
func (h *BudgetHandler) GetBudget(c *gin.Context) {
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	budget, ok := h.budgets.Get(id)
	if !ok {
		respondWithError(c, apperrors.ErrBudgetNotFound)
		return
	}

	c.JSON(http.StatusOK, gin.H{"budget": h.respond(*budget)})
}

// UpdateBudget handles updating an existing budget.
// @Summary     Update budget
// @Description Replace a budget's fields; spent is recomputed on the next ledger change
// @Tags        budgets
// @Accept      json
// @Produce     json
// @Param       id      path string              true "Budget ID"
// @Param       request body UpdateBudgetRequest true "Updated budget details"
// @Success     200 {object} BudgetResponse "Updated budget"
// @Failure     400 {object} ErrorResponse "Invalid input or budget ID"
// @Failure     404 {object} ErrorResponse "Budget not found"
// @Router      /budgets/{id} [put]
func (h *BudgetHandler) UpdateBudget(c *gin.Context) {
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateBudgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	budget, ok := h.budgets.Get(id)
	if !ok {
		respondWithError(c, apperrors.ErrBudgetNotFound)
		return
	}
	if req.Name != "" {
		budget.Name = req.Name
	}
	if req.Category != "" {
		budget.CategoryName = req.Category
	}
	if req.Amount != nil {
		budget.Amount = *req.Amount
	}
	if req.Spent != nil {
		budget.Spent = *req.Spent
	}
	if req.Period != nil {
		budget.Period = *req.Period
	}
	if req.StartDate != nil {
		budget.StartDate = *req.StartDate
	}
	if req.EndDate != nil {
		budget.EndDate = *req.EndDate
	}

	updated, err := h.budgets.UpdateBudget(*budget)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"budget": h.respond(*updated)})
}

// DeleteBudget handles deleting a budget.
// @Summary     Delete budget
// @Tags        budgets
// @Produce     json
// @Param       id path string true "Budget ID"
// @Success     200 {object} MessageResponse "Budget deleted"
// @Failure     400 {object} ErrorResponse "Invalid budget ID"
// @Failure     404 {object} ErrorResponse "Budget not found"
// @Router      /budgets/{id} [delete]
func (h *BudgetHandler) DeleteBudget(c *gin.Context) {
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.budgets.DeleteBudget(id); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Budget deleted successfully"})
}
