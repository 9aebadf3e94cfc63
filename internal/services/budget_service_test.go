package services

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"kasa/internal/models"
	"kasa/internal/testutil"
)

func janBudget(category string, amount int64) models.Budget {
	b := testutil.NewBudget(category, amount, testutil.Date(2024, time.January, 1), models.BudgetPeriodMonthly)
	b.EndDate = testutil.Date(2024, time.January, 31)
	return b
}

func TestAddBudget(t *testing.T) {
	t.Run("spent_computed_on_insert", func(t *testing.T) {
		h := newHarness(t, jan15)
		food := h.addCategory(t, "Yemek", false)
		h.addTx(t, food, 70, testutil.Date(2024, time.January, 5))

		in := janBudget("Yemek", 1000)
		in.Spent = decimal.NewFromInt(9999)
		b, err := h.budgets.AddBudget(in)
		testutil.AssertNoError(t, err)
		testutil.AssertDecimal(t, "spent", b.Spent, "70")
	})

	t.Run("derives_end_date", func(t *testing.T) {
		start := testutil.Date(2024, time.January, 31)
		tests := []struct {
			period models.BudgetPeriod
			want   time.Time
		}{
			{models.BudgetPeriodWeekly, testutil.Date(2024, time.February, 7)},
			{models.BudgetPeriodMonthly, testutil.Date(2024, time.March, 2)},
			{models.BudgetPeriodHalfYear, testutil.Date(2024, time.July, 31)},
			{models.BudgetPeriodYearly, testutil.Date(2025, time.January, 31)},
		}
		for _, tt := range tests {
			t.Run(string(tt.period), func(t *testing.T) {
				h := newHarness(t, jan15)
				b, err := h.budgets.AddBudget(models.Budget{Name: "b", Amount: decimal.NewFromInt(1), CategoryName: "Yemek", Period: tt.period, StartDate: start})
				testutil.AssertNoError(t, err)
				if !b.EndDate.Equal(tt.want) {
					t.Errorf("expected %s, got %s", tt.want, b.EndDate)
				}
			})
		}
	})

	t.Run("defaults_start_to_today", func(t *testing.T) {
		h := newHarness(t, jan15.Add(13*time.Hour))
		b, err := h.budgets.AddBudget(models.Budget{Name: "b", CategoryName: "Yemek", Period: models.BudgetPeriodWeekly})
		testutil.AssertNoError(t, err)
		if !b.StartDate.Equal(jan15) {
			t.Errorf("expected %s, got %s", jan15, b.StartDate)
		}
	})

	t.Run("invalid_period", func(t *testing.T) {
		h := newHarness(t, jan15)
		_, err := h.budgets.AddBudget(models.Budget{Name: "b", CategoryName: "Yemek", Period: "daily"})
		testutil.AssertAppError(t, err, "INVALID_BUDGET_PERIOD")
	})

	t.Run("negative_amount", func(t *testing.T) {
		h := newHarness(t, jan15)
		in := janBudget("Yemek", 0)
		in.Amount = decimal.NewFromInt(-1)
		_, err := h.budgets.AddBudget(in)
		testutil.AssertAppError(t, err, "NEGATIVE_AMOUNT")
	})

	t.Run("end_before_start", func(t *testing.T) {
		h := newHarness(t, jan15)
		in := janBudget("Yemek", 10)
		in.EndDate = testutil.Date(2023, time.December, 1)
		_, err := h.budgets.AddBudget(in)
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})
}

func TestBudgetRecomputeOnEdit(t *testing.T) {
	h := newHarness(t, jan15)
	food := h.addCategory(t, "Yemek", false)
	b, err := h.budgets.AddBudget(janBudget("Yemek", 1000))
	testutil.AssertNoError(t, err)

	tx := h.addTx(t, food, 200, testutil.Date(2024, time.January, 10))
	got, _ := h.budgets.Get(b.ID)
	testutil.AssertDecimal(t, "after add", got.Spent, "200")

	tx.Amount = decimal.NewFromInt(300)
	_, err = h.ledger.Update(tx)
	testutil.AssertNoError(t, err)
	got, _ = h.budgets.Get(b.ID)
	testutil.AssertDecimal(t, "after edit", got.Spent, "300")

	testutil.AssertNoError(t, h.ledger.Delete(tx.ID))
	got, _ = h.budgets.Get(b.ID)
	testutil.AssertDecimal(t, "after delete", got.Spent, "0")
}

func TestBudgetMatching(t *testing.T) {
	t.Run("inclusive_window_expense_only", func(t *testing.T) {
		h := newHarness(t, jan15)
		food := h.addCategory(t, "Yemek", false)
		fun := h.addCategory(t, "Eğlence", false)
		salary := h.addCategory(t, "Yemek Kartı", true)
		b, _ := h.budgets.AddBudget(janBudget("Yemek", 1000))

		h.addTx(t, food, 1, testutil.Date(2024, time.January, 1))  // start day
		h.addTx(t, food, 2, testutil.Date(2024, time.January, 31)) // end instant
		h.addTx(t, food, 4, testutil.Date(2024, time.February, 1)) // outside
		h.addTx(t, food, 8, testutil.Date(2023, time.December, 31))
		h.addTx(t, fun, 16, testutil.Date(2024, time.January, 10))
		h.addTx(t, salary, 32, testutil.Date(2024, time.January, 10))

		got, _ := h.budgets.Get(b.ID)
		testutil.AssertDecimal(t, "spent", got.Spent, "3")
	})

	// Budgets follow the category name, so a rename orphans them.
	t.Run("rename_orphans_budget", func(t *testing.T) {
		h := newHarness(t, jan15)
		food := h.addCategory(t, "Yemek", false)
		b, _ := h.budgets.AddBudget(janBudget("Yemek", 1000))
		h.addTx(t, food, 50, testutil.Date(2024, time.January, 10))

		food.Name = "Mutfak"
		_, err := h.categories.Update(food)
		testutil.AssertNoError(t, err)

		got, _ := h.budgets.Get(b.ID)
		testutil.AssertDecimal(t, "spent after rename", got.Spent, "0")
	})

	t.Run("deleted_category_excluded", func(t *testing.T) {
		h := newHarness(t, jan15)
		food := h.addCategory(t, "Yemek", false)
		unknown, _ := h.budgets.AddBudget(janBudget(models.UnknownCategoryName, 1000))
		b, _ := h.budgets.AddBudget(janBudget("Yemek", 1000))
		h.addTx(t, food, 50, testutil.Date(2024, time.January, 10))

		testutil.AssertNoError(t, h.categories.Delete(food.ID))

		got, _ := h.budgets.Get(b.ID)
		testutil.AssertDecimal(t, "spent", got.Spent, "0")
		got, _ = h.budgets.Get(unknown.ID)
		testutil.AssertDecimal(t, "unknown budget", got.Spent, "0")
	})
}

func TestUpdateBudget(t *testing.T) {
	t.Run("raw_replace_keeps_end_date", func(t *testing.T) {
		h := newHarness(t, jan15)
		b, _ := h.budgets.AddBudget(janBudget("Yemek", 1000))

		edit := *b
		edit.Period = models.BudgetPeriodYearly
		edit.EndDate = time.Time{}
		edit.Spent = decimal.NewFromInt(12)
		got, err := h.budgets.UpdateBudget(edit)
		testutil.AssertNoError(t, err)
		if !got.EndDate.Equal(b.EndDate) {
			t.Errorf("end date should not be re-derived, got %s", got.EndDate)
		}
		testutil.AssertDecimal(t, "raw spent", got.Spent, "12")
	})

	t.Run("not_found", func(t *testing.T) {
		h := newHarness(t, jan15)
		_, err := h.budgets.UpdateBudget(janBudget("Yemek", 1))
		testutil.AssertAppError(t, err, "BUDGET_NOT_FOUND")
	})

	t.Run("empty_category", func(t *testing.T) {
		h := newHarness(t, jan15)
		b, _ := h.budgets.AddBudget(janBudget("Yemek", 1000))

		edit := *b
		edit.CategoryName = "  "
		_, err := h.budgets.UpdateBudget(edit)
		testutil.AssertAppError(t, err, "INVALID_INPUT")
		got, _ := h.budgets.Get(b.ID)
		if got.CategoryName != "Yemek" {
			t.Errorf("stored budget changed to %q", got.CategoryName)
		}
	})

	t.Run("end_before_start", func(t *testing.T) {
		h := newHarness(t, jan15)
		b, _ := h.budgets.AddBudget(janBudget("Yemek", 1000))

		edit := *b
		edit.EndDate = testutil.Date(2023, time.December, 1)
		_, err := h.budgets.UpdateBudget(edit)
		testutil.AssertAppError(t, err, "INVALID_INPUT")

		edit = *b
		edit.EndDate = time.Time{}
		edit.StartDate = testutil.Date(2024, time.February, 1)
		_, err = h.budgets.UpdateBudget(edit)
		testutil.AssertAppError(t, err, "INVALID_INPUT")
		got, _ := h.budgets.Get(b.ID)
		if !got.StartDate.Equal(b.StartDate) {
			t.Errorf("stored start changed to %s", got.StartDate)
		}
	})

	t.Run("spent_stale_until_next_change", func(t *testing.T) {
		h := newHarness(t, jan15)
		food := h.addCategory(t, "Yemek", false)
		fun := h.addCategory(t, "Eğlence", false)
		h.addTx(t, food, 40, testutil.Date(2024, time.January, 5))
		h.addTx(t, fun, 70, testutil.Date(2024, time.January, 6))
		b, _ := h.budgets.AddBudget(janBudget("Yemek", 1000))
		testutil.AssertDecimal(t, "initial", b.Spent, "40")

		edit := *b
		edit.CategoryName = "Eğlence"
		got, err := h.budgets.UpdateBudget(edit)
		testutil.AssertNoError(t, err)
		testutil.AssertDecimal(t, "after edit", got.Spent, "40")

		h.addTx(t, food, 5, testutil.Date(2024, time.January, 7))
		got, _ = h.budgets.Get(b.ID)
		testutil.AssertDecimal(t, "after ledger change", got.Spent, "70")
	})
}

func TestDeleteBudget(t *testing.T) {
	h := newHarness(t, jan15)
	b, _ := h.budgets.AddBudget(janBudget("Yemek", 1000))

	testutil.AssertNoError(t, h.budgets.DeleteBudget(b.ID))
	if len(h.budgets.List()) != 0 {
		t.Error("expected no budgets")
	}
	testutil.AssertAppError(t, h.budgets.DeleteBudget(b.ID), "BUDGET_NOT_FOUND")
}

func TestGetActiveBudgets(t *testing.T) {
	h := newHarness(t, jan15)
	jan, _ := h.budgets.AddBudget(janBudget("Yemek", 1000))
	feb := testutil.NewBudget("Yemek", 1000, testutil.Date(2024, time.February, 1), models.BudgetPeriodMonthly)
	_, err := h.budgets.AddBudget(feb)
	testutil.AssertNoError(t, err)

	tests := []struct {
		name string
		now  time.Time
		want int
	}{
		{"start_inclusive", testutil.Date(2024, time.January, 1), 1},
		{"end_inclusive", testutil.Date(2024, time.January, 31), 1},
		{"gap", testutil.Date(2024, time.January, 31).Add(time.Hour), 0},
		{"before", testutil.Date(2023, time.December, 31), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := h.budgets.GetActiveBudgets(tt.now)
			if len(got) != tt.want {
				t.Fatalf("expected %d active, got %d", tt.want, len(got))
			}
			if tt.want == 1 && got[0].ID != jan.ID {
				t.Errorf("expected january budget")
			}
		})
	}

	if got := h.budgets.ByCategoryName("Yemek"); len(got) != 2 {
		t.Errorf("expected 2 budgets for Yemek, got %d", len(got))
	}
}

func TestBudgetMath(t *testing.T) {
	tests := []struct {
		name      string
		amount    string
		spent     string
		pct       float64
		remaining string
		over      bool
	}{
		{"zero_zero", "0", "0", 0, "0", false},
		{"zero_amount_spent", "0", "50", 1, "0", true},
		{"half", "200", "100", 0.5, "100", false},
		{"exact", "200", "200", 1, "0", false},
		{"over_clamped", "200", "300", 1, "0", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := models.Budget{Amount: decimal.RequireFromString(tt.amount), Spent: decimal.RequireFromString(tt.spent)}
			if got := b.PercentageSpent(); got != tt.pct {
				t.Errorf("percentage: expected %v, got %v", tt.pct, got)
			}
			testutil.AssertDecimal(t, "remaining", b.RemainingAmount(), tt.remaining)
			if got := b.IsOverBudget(); got != tt.over {
				t.Errorf("over budget: expected %v, got %v", tt.over, got)
			}
		})
	}
}
