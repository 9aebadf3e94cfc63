package handlers

import (
	"context"
	"net/http"
	"testing"
	"time"

	"kasa/internal/engine"
	"kasa/internal/persistence"
)

func newTestEngine(t *testing.T, now time.Time) (*engine.Engine, *persistence.MemoryGateway) {
	t.Helper()
	gw := persistence.NewMemoryGateway()
	eng := engine.New(engine.Options{
		Gateway: gw,
		Now:     func() time.Time { return now },
	})
	eng.Load(context.Background())
	t.Cleanup(func() { _ = eng.Close(context.Background()) })
	return eng, gw
}

func TestRouter_LedgerFlow(t *testing.T) {
	now := time.Date(2024, 1, 20, 12, 0, 0, 0, time.UTC)
	eng, gw := newTestEngine(t, now)
	r := NewRouter(eng, RouterConfig{CORSOrigins: []string{"*"}, Now: func() time.Time { return now }})

	rec := doRequest(r, "POST", "/api/v1/categories", `{"name":"Market","type":"expense"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create category: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	market := parseJSON(t, rec)["category"].(map[string]interface{})["id"].(string)

	rec = doRequest(r, "POST", "/api/v1/categories", `{"name":"Maaş","type":"income"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create category: expected 201, got %d", rec.Code)
	}
	salary := parseJSON(t, rec)["category"].(map[string]interface{})["id"].(string)

	rec = doRequest(r, "POST", "/api/v1/budgets",
		`{"name":"Groceries","category":"Market","amount":"200","period":"monthly","start_date":"2024-01-01T00:00:00Z"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create budget: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	budgetID := parseJSON(t, rec)["budget"].(map[string]interface{})["id"].(string)

	rec = doRequest(r, "POST", "/api/v1/transactions",
		`{"title":"Haftalık","amount":"120","category_id":"`+market+`","type":"expense","date":"2024-01-10T09:00:00Z"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create expense: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	rec = doRequest(r, "POST", "/api/v1/transactions",
		`{"title":"Ocak","amount":"1000","category_id":"`+salary+`","type":"income","date":"2024-01-05T09:00:00Z"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create income: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	t.Run("a mismatched side is rejected", func(t *testing.T) {
		rec := doRequest(r, "POST", "/api/v1/transactions",
			`{"title":"x","amount":"1","category_id":"`+market+`","type":"income"}`)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("budget spent follows the ledger", func(t *testing.T) {
		rec := doRequest(r, "GET", "/api/v1/budgets/"+budgetID, "")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		budget := parseJSON(t, rec)["budget"].(map[string]interface{})
		if budget["spent"] != "120" || budget["remaining_amount"] != "80" {
			t.Errorf("unexpected budget progress: %v", budget)
		}
	})

	t.Run("category totals follow the ledger", func(t *testing.T) {
		rec := doRequest(r, "GET", "/api/v1/categories/totals", "")
		result := parseJSON(t, rec)
		if result["total_spent"] != "120" {
			t.Errorf("expected 120 spent, got %v", result["total_spent"])
		}
	})

	t.Run("analysis reflects the month", func(t *testing.T) {
		rec := doRequest(r, "GET", "/api/v1/analysis?period=monthly&page=expense&offset=0", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		analysis := parseJSON(t, rec)["analysis"].(map[string]interface{})
		if analysis["total_income"] != "1000" || analysis["total_expense"] != "120" || analysis["net_amount"] != "880" {
			t.Errorf("unexpected summary: %v", analysis)
		}
		if analysis["label"] != "January 2024" {
			t.Errorf("expected January 2024, got %v", analysis["label"])
		}

		rec = doRequest(r, "POST", "/api/v1/analysis/previous", "")
		analysis = parseJSON(t, rec)["analysis"].(map[string]interface{})
		if analysis["total_expense"] != "0" || analysis["label"] != "December 2023" {
			t.Errorf("unexpected previous month: %v", analysis)
		}
	})

	t.Run("mutations reach the gateway", func(t *testing.T) {
		if err := eng.Flush(context.Background()); err != nil {
			t.Fatalf("flush: %v", err)
		}
		for _, key := range []string{persistence.KeyCategories, persistence.KeyTransactions, persistence.KeyBudgets} {
			if _, ok, _ := gw.Read(context.Background(), key); !ok {
				t.Errorf("expected %s to be written", key)
			}
		}
	})

	t.Run("health reports no pending writes", func(t *testing.T) {
		rec := doRequest(r, "GET", "/api/health", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if pending := parseJSON(t, rec)["pending_writes"].([]interface{}); len(pending) != 0 {
			t.Errorf("expected nothing pending, got %v", pending)
		}
	})
}

func TestRouter_UnknownRoute(t *testing.T) {
	eng, _ := newTestEngine(t, time.Now())
	r := NewRouter(eng, RouterConfig{})

	rec := doRequest(r, "GET", "/api/v1/accounts", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}
