package handlers

import (
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "kasa/internal/errors"
	"kasa/internal/models"
	"kasa/internal/services"
)

const testBudgetID = "0190c3a4-7a3b-7c2d-8e9f-000000000201"

var budgetNow = time.Date(2024, 1, 20, 12, 0, 0, 0, time.UTC)

// --- mock budget tracker ---

type mockBudgetTracker struct {
	services.BudgetTracker

	addFn    func(budget models.Budget) (*models.Budget, error)
	updateFn func(budget models.Budget) (*models.Budget, error)
	deleteFn func(id string) error
	getFn    func(id string) (*models.Budget, bool)
	list     []models.Budget
}

func (m *mockBudgetTracker) AddBudget(budget models.Budget) (*models.Budget, error) {
	if m.addFn != nil {
		return m.addFn(budget)
	}
	budget.EnsureID()
	return &budget, nil
}

func (m *mockBudgetTracker) UpdateBudget(budget models.Budget) (*models.Budget, error) {
	if m.updateFn != nil {
		return m.updateFn(budget)
	}
	return &budget, nil
}

func (m *mockBudgetTracker) DeleteBudget(id string) error {
	if m.deleteFn != nil {
		return m.deleteFn(id)
	}
	return nil
}

func (m *mockBudgetTracker) Get(id string) (*models.Budget, bool) {
	if m.getFn != nil {
		return m.getFn(id)
	}
	return nil, false
}

func (m *mockBudgetTracker) List() []models.Budget {
	return append([]models.Budget(nil), m.list...)
}

func (m *mockBudgetTracker) ByCategoryName(name string) []models.Budget {
	var out []models.Budget
	for _, b := range m.list {
		if b.CategoryName == name {
			out = append(out, b)
		}
	}
	return out
}

func (m *mockBudgetTracker) GetActiveBudgets(now time.Time) []models.Budget {
	var out []models.Budget
	for _, b := range m.list {
		if b.IsActive(now) {
			out = append(out, b)
		}
	}
	return out
}

func setupBudgetRouter(handler *BudgetHandler) *gin.Engine {
	r := gin.New()
	r.POST("/budgets", handler.CreateBudget)
	r.GET("/budgets", handler.GetBudgets)
	r.GET("/budgets/active", handler.GetActiveBudgets)
	r.GET("/budgets/:id", handler.GetBudget)
	r.PUT("/budgets/:id", handler.UpdateBudget)
	r.DELETE("/budgets/:id", handler.DeleteBudget)
	return r
}

func sampleBudgets() []models.Budget {
	jan := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return []models.Budget{
		{
			Base: models.Base{ID: testBudgetID}, Name: "Groceries", CategoryName: "Market",
			Amount: decimal.NewFromInt(200), Spent: decimal.NewFromInt(250),
			Period: models.BudgetPeriodMonthly, StartDate: jan, EndDate: jan.AddDate(0, 1, 0),
		},
		{
			Name: "Rent", CategoryName: "Kira",
			Amount: decimal.NewFromInt(1000), Spent: decimal.NewFromInt(400),
			Period: models.BudgetPeriodYearly, StartDate: jan, EndDate: jan.AddDate(1, 0, 0),
		},
		{
			Name: "Last year", CategoryName: "Market",
			Amount: decimal.NewFromInt(100),
			Period: models.BudgetPeriodWeekly, StartDate: jan.AddDate(-1, 0, 0), EndDate: jan.AddDate(-1, 0, 7),
		},
	}
}

func TestBudgetHandler_CreateBudget(t *testing.T) {
	t.Run("returns 201 with derived progress", func(t *testing.T) {
		var got models.Budget
		tracker := &mockBudgetTracker{
			addFn: func(budget models.Budget) (*models.Budget, error) {
				got = budget
				budget.ID = testBudgetID
				budget.StartDate = budgetNow
				budget.EndDate = budget.Period.EndFrom(budgetNow)
				budget.Spent = decimal.NewFromInt(50)
				return &budget, nil
			},
		}
		r := setupBudgetRouter(NewBudgetHandler(tracker, func() time.Time { return budgetNow }))

		rec := doRequest(r, "POST", "/budgets",
			`{"name":"Groceries","category":"Market","amount":"200","period":"monthly"}`)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		if got.CategoryName != "Market" || !got.StartDate.IsZero() {
			t.Errorf("unexpected budget passed to tracker: %+v", got)
		}
		budget := parseJSON(t, rec)["budget"].(map[string]interface{})
		if budget["percentage_spent"].(float64) != 0.25 {
			t.Errorf("expected 0.25 spent, got %v", budget["percentage_spent"])
		}
		if budget["remaining_amount"] != "150" {
			t.Errorf("expected 150 remaining, got %v", budget["remaining_amount"])
		}
		if budget["is_over_budget"] != false || budget["is_active"] != true {
			t.Errorf("unexpected flags: %v", budget)
		}
	})

	tests := []struct {
		name string
		body string
		code string
	}{
		{"missing name", `{"category":"Market","amount":1,"period":"monthly"}`, "INVALID_INPUT"},
		{"missing amount", `{"name":"x","category":"Market","period":"monthly"}`, "INVALID_INPUT"},
		{"unknown period", `{"name":"x","category":"Market","amount":1,"period":"daily"}`, "INVALID_INPUT"},
		{"missing category", `{"name":"x","amount":1,"period":"weekly"}`, "INVALID_INPUT"},
	}
	for _, tt := range tests {
		t.Run("returns 400 on "+tt.name, func(t *testing.T) {
			r := setupBudgetRouter(NewBudgetHandler(&mockBudgetTracker{}, nil))

			rec := doRequest(r, "POST", "/budgets", tt.body)

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", rec.Code)
			}
			assertErrorCode(t, parseJSON(t, rec), tt.code)
		})
	}

	t.Run("maps tracker errors", func(t *testing.T) {
		tracker := &mockBudgetTracker{
			addFn: func(models.Budget) (*models.Budget, error) { return nil, apperrors.ErrNegativeAmount },
		}
		r := setupBudgetRouter(NewBudgetHandler(tracker, nil))

		rec := doRequest(r, "POST", "/budgets", `{"name":"x","category":"Market","amount":"-5","period":"monthly"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "NEGATIVE_AMOUNT")
	})
}

func TestBudgetHandler_GetBudgets(t *testing.T) {
	tracker := &mockBudgetTracker{list: sampleBudgets()}
	r := setupBudgetRouter(NewBudgetHandler(tracker, func() time.Time { return budgetNow }))

	tests := []struct {
		path      string
		wantCode  int
		wantTotal float64
	}{
		{path: "/budgets", wantCode: http.StatusOK, wantTotal: 3},
		{path: "/budgets?category=Market", wantCode: http.StatusOK, wantTotal: 2},
		{path: "/budgets?period=yearly", wantCode: http.StatusOK, wantTotal: 1},
		{path: "/budgets?category=Market&period=weekly", wantCode: http.StatusOK, wantTotal: 1},
		{path: "/budgets?period=daily", wantCode: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := doRequest(r, "GET", tt.path, "")
			if rec.Code != tt.wantCode {
				t.Fatalf("expected %d, got %d: %s", tt.wantCode, rec.Code, rec.Body.String())
			}
			if tt.wantCode != http.StatusOK {
				assertErrorCode(t, parseJSON(t, rec), "INVALID_BUDGET_PERIOD")
				return
			}
			if got := parseJSON(t, rec)["total_items"].(float64); got != tt.wantTotal {
				t.Errorf("expected %v budgets, got %v", tt.wantTotal, got)
			}
		})
	}
}

func TestBudgetHandler_GetActiveBudgets(t *testing.T) {
	tracker := &mockBudgetTracker{list: sampleBudgets()}
	r := setupBudgetRouter(NewBudgetHandler(tracker, func() time.Time { return budgetNow }))

	rec := doRequest(r, "GET", "/budgets/active", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	budgets := parseJSON(t, rec)["budgets"].([]interface{})
	if len(budgets) != 2 {
		t.Fatalf("expected 2 active budgets, got %d", len(budgets))
	}
	first := budgets[0].(map[string]interface{})
	if first["is_over_budget"] != true || first["percentage_spent"].(float64) != 1 || first["remaining_amount"] != "0" {
		t.Errorf("unexpected over-budget progress: %v", first)
	}
}

func TestBudgetHandler_GetBudget(t *testing.T) {
	tracker := &mockBudgetTracker{
		getFn: func(id string) (*models.Budget, bool) {
			if id != testBudgetID {
				return nil, false
			}
			b := sampleBudgets()[0]
			return &b, true
		},
	}
	r := setupBudgetRouter(NewBudgetHandler(tracker, nil))

	t.Run("returns 200 when found", func(t *testing.T) {
		rec := doRequest(r, "GET", "/budgets/"+testBudgetID, "")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		budget := parseJSON(t, rec)["budget"].(map[string]interface{})
		if budget["category"] != "Market" {
			t.Errorf("expected category Market, got %v", budget["category"])
		}
	})

	t.Run("returns 404 when missing", func(t *testing.T) {
		rec := doRequest(r, "GET", "/budgets/"+testCategoryID, "")
		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "BUDGET_NOT_FOUND")
	})

	t.Run("returns 400 on malformed id", func(t *testing.T) {
		rec := doRequest(r, "GET", "/budgets/1", "")
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}

func TestBudgetHandler_UpdateBudget(t *testing.T) {
	t.Run("replaces the given fields and keeps the rest", func(t *testing.T) {
		var got models.Budget
		tracker := &mockBudgetTracker{
			getFn: func(string) (*models.Budget, bool) {
				b := sampleBudgets()[0]
				return &b, true
			},
			updateFn: func(budget models.Budget) (*models.Budget, error) {
				got = budget
				return &budget, nil
			},
		}
		r := setupBudgetRouter(NewBudgetHandler(tracker, nil))

		rec := doRequest(r, "PUT", "/budgets/"+testBudgetID, `{"amount":"300","period":"yearly"}`)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if !got.Amount.Equal(decimal.NewFromInt(300)) || got.Period != models.BudgetPeriodYearly {
			t.Errorf("unexpected update: %+v", got)
		}
		// The window is not re-derived from the new period.
		if !got.EndDate.Equal(time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)) {
			t.Errorf("expected end date kept, got %v", got.EndDate)
		}
		if !got.Spent.Equal(decimal.NewFromInt(250)) || got.Name != "Groceries" {
			t.Errorf("expected untouched fields kept: %+v", got)
		}
	})

	t.Run("returns 404 when missing", func(t *testing.T) {
		r := setupBudgetRouter(NewBudgetHandler(&mockBudgetTracker{}, nil))

		rec := doRequest(r, "PUT", "/budgets/"+testBudgetID, `{"name":"x"}`)

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
	})

	t.Run("returns 400 on unknown period", func(t *testing.T) {
		r := setupBudgetRouter(NewBudgetHandler(&mockBudgetTracker{}, nil))

		rec := doRequest(r, "PUT", "/budgets/"+testBudgetID, `{"period":"daily"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}

func TestBudgetHandler_DeleteBudget(t *testing.T) {
	t.Run("returns 200 on success", func(t *testing.T) {
		r := setupBudgetRouter(NewBudgetHandler(&mockBudgetTracker{}, nil))

		rec := doRequest(r, "DELETE", "/budgets/"+testBudgetID, "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
	})

	t.Run("returns 404 when missing", func(t *testing.T) {
		tracker := &mockBudgetTracker{deleteFn: func(string) error { return apperrors.ErrBudgetNotFound }}
		r := setupBudgetRouter(NewBudgetHandler(tracker, nil))

		rec := doRequest(r, "DELETE", "/budgets/"+testBudgetID, "")

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "BUDGET_NOT_FOUND")
	})
}
