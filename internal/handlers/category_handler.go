package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "kasa/internal/errors"
	"kasa/internal/models"
	"kasa/internal/pagination"
	"kasa/internal/services"
)

// CategoryHandler handles category-related requests.
type CategoryHandler struct {
	categories services.CategoryStorer
}

// NewCategoryHandler creates a new CategoryHandler.
func NewCategoryHandler(categories services.CategoryStorer) *CategoryHandler {
	return &CategoryHandler{categories: categories}
}

// CreateCategoryRequest represents the request payload for creating a category.
type CreateCategoryRequest struct {
	Name          string           `json:"name" binding:"required,min=1,max=50"`
	Type          string           `json:"type" binding:"required,category_type"`
	Icon          string           `json:"icon" binding:"max=50"`
	Color         *models.Color    `json:"color"`
	MonthlyBudget *decimal.Decimal `json:"monthly_budget"`
}

// UpdateCategoryRequest represents the request payload for updating a category.
// The income/expense side cannot be changed.
type UpdateCategoryRequest struct {
	Name          string           `json:"name" binding:"omitempty,min=1,max=50"`
	Icon          *string          `json:"icon" binding:"omitempty,max=50"`
	Color         *models.Color    `json:"color"`
	MonthlyBudget *decimal.Decimal `json:"monthly_budget"`
}

// SetNamedIncomeRequest sets the monthly income of a named income category.
type SetNamedIncomeRequest struct {
	Name   string           `json:"name" binding:"required"`
	Amount *decimal.Decimal `json:"amount" binding:"required"`
}

// CreateCategory handles the creation of a new category.
// @Summary     Create a category
// @Description Create a new income or expense category
// @Tags        categories
// @Accept      json
// @Produce     json
// @Param       request body CreateCategoryRequest true "Category details"
// @Success     201 {object} models.Category "Category created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /categories [post]
func (h *CategoryHandler) CreateCategory(c *gin.Context) {
	var req CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}
	if req.MonthlyBudget != nil && req.MonthlyBudget.IsNegative() {
		respondWithError(c, apperrors.ErrNegativeAmount)
		return
	}

	category := models.Category{
		Name:          req.Name,
		Icon:          req.Icon,
		IsIncome:      models.CategoryType(req.Type) == models.CategoryTypeIncome,
		MonthlyBudget: req.MonthlyBudget,
	}
	if req.Color != nil {
		category.Color = *req.Color
	}

	created, err := h.categories.Add(category)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"category": created})
}

// GetCategories handles listing categories.
// @Summary     Get categories
// @Description Get a paginated list of categories, optionally filtered by type
// @Tags        categories
// @Accept      json
// @Produce     json
// @Param       type      query string false "Filter by type (income/expense)"
// @Param       page      query int    false "Page number (default 1)"
// @Param       page_size query int    false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.Category] "Paginated categories"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Router      /categories [get]
func (h *CategoryHandler) GetCategories(c *gin.Context) {
	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	var list []models.Category
	switch models.CategoryType(c.Query("type")) {
	case "":
		list = h.categories.All()
	case models.CategoryTypeIncome:
		list = h.categories.Income()
	case models.CategoryTypeExpense:
		list = h.categories.Expense()
	default:
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "type must be 'income' or 'expense'"))
		return
	}

	c.JSON(http.StatusOK, pagination.Slice(list, page))
}

// GetCategory handles retrieving a specific category.
// @Summary     Get category by ID
// @Tags        categories
// @Produce     json
// @Param       id path string true "Category ID"
// @Success     200 {object} models.Category "Category details"
// @Failure     400 {object} ErrorResponse "Invalid category ID"
// @Failure     404 {object} ErrorResponse "Category not found"
// @Router      /categories/{id} [get]
func (h *CategoryHandler) GetCategory(c *gin.Context) {
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	category, ok := h.categories.Get(id)
	if !ok {
		respondWithError(c, apperrors.ErrCategoryNotFound)
		return
	}

	c.JSON(http.StatusOK, gin.H{"category": category})
}

// UpdateCategory handles updating an existing category.
// @Summary     Update category
// @Description Update a category's name, icon, color or monthly budget
// @Tags        categories
// @Accept      json
// @Produce     json
// @Param       id      path string                true "Category ID"
// @Param       request body UpdateCategoryRequest true "Updated category details"
// @Success     200 {object} models.Category "Updated category"
// @Failure     400 {object} ErrorResponse "Invalid input or category ID"
// @Failure     404 {object} ErrorResponse "Category not found"
// @Router      /categories/{id} [put]
func (h *CategoryHandler) UpdateCategory(c *gin.Context) {
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}
	if req.MonthlyBudget != nil && req.MonthlyBudget.IsNegative() {
		respondWithError(c, apperrors.ErrNegativeAmount)
		return
	}

	category, ok := h.categories.Get(id)
	if !ok {
		respondWithError(c, apperrors.ErrCategoryNotFound)
		return
	}
	if req.Name != "" {
		category.Name = req.Name
	}
	if req.Icon != nil {
		category.Icon = *req.Icon
	}
	if req.Color != nil {
		category.Color = *req.Color
	}
	if req.MonthlyBudget != nil {
		category.MonthlyBudget = req.MonthlyBudget
	}

	updated, err := h.categories.Update(*category)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"category": updated})
}

// DeleteCategory handles deleting a category.
// @Summary     Delete category
// @Description Delete a category. System categories cannot be deleted.
// @Tags        categories
// @Produce     json
// @Param       id path string true "Category ID"
// @Success     200 {object} MessageResponse "Category deleted"
// @Failure     404 {object} ErrorResponse "Category not found"
// @Failure     409 {object} ErrorResponse "System category"
// @Router      /categories/{id} [delete]
func (h *CategoryHandler) DeleteCategory(c *gin.Context) {
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.categories.Delete(id); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Category deleted successfully"})
}

// SetNamedIncome handles setting the monthly income of a named income category.
// @Summary     Set monthly income by category name
// @Description Absolute set; repeating the same value changes nothing
// @Tags        categories
// @Accept      json
// @Produce     json
// @Param       request body SetNamedIncomeRequest true "Category name and amount"
// @Success     200 {object} models.Category "Updated category"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Income category not found"
// @Router      /categories/income/named [put]
func (h *CategoryHandler) SetNamedIncome(c *gin.Context) {
	var req SetNamedIncomeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	if err := h.categories.SetIncomeForNamedCategory(req.Name, *req.Amount); err != nil {
		respondWithError(c, err)
		return
	}

	category, _ := h.categories.FindByName(req.Name)
	c.JSON(http.StatusOK, gin.H{"category": category})
}

// GetCategoryTotals handles reading the running category aggregates.
// @Summary     Get category totals
// @Tags        categories
// @Produce     json
// @Success     200 {object} map[string]string "Total income and spent"
// @Router      /categories/totals [get]
func (h *CategoryHandler) GetCategoryTotals(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"total_income": h.categories.TotalIncome(),
		"total_spent":  h.categories.TotalSpent(),
	})
}
