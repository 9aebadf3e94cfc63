package persistence

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"kasa/internal/logger"
	"kasa/internal/models"
)

func init() {
	logger.Set(zap.NewNop().Sugar())
}

type brokenGateway struct{}

func (brokenGateway) Read(context.Context, string) ([]byte, bool, error) {
	return nil, false, errors.New("storage unavailable")
}

func (brokenGateway) Write(context.Context, string, []byte) error {
	return errors.New("storage unavailable")
}

func sampleTransactions() []models.Transaction {
	return []models.Transaction{
		{
			Base:       models.Base{ID: "t-1"},
			Title:      "Market",
			Amount:     decimal.RequireFromString("42.35"),
			Date:       time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC),
			CategoryID: "c-1",
			Notes:      "weekly shop",
		},
		{
			Base:       models.Base{ID: "t-2"},
			Title:      "Salary",
			Amount:     decimal.NewFromInt(2500),
			Date:       time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			CategoryID: "c-2",
			IsIncome:   true,
		},
	}
}

func assertSameTransactions(t *testing.T, want, got []models.Transaction) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("expected %d transactions, got %d", len(want), len(got))
	}
	for i := range want {
		w, g := want[i], got[i]
		if w.ID != g.ID || w.Title != g.Title || w.CategoryID != g.CategoryID ||
			w.IsIncome != g.IsIncome || w.Notes != g.Notes {
			t.Errorf("transaction %d mismatch: want %+v, got %+v", i, w, g)
		}
		if !w.Amount.Equal(g.Amount) {
			t.Errorf("transaction %d amount: want %s, got %s", i, w.Amount, g.Amount)
		}
		if !w.Date.Equal(g.Date) {
			t.Errorf("transaction %d date: want %s, got %s", i, w.Date, g.Date)
		}
	}
}

func TestMemoryGatewayRoundTrip(t *testing.T) {
	ctx := context.Background()
	g := NewMemoryGateway()

	if _, ok := Load[[]models.Transaction](ctx, g, KeyTransactions); ok {
		t.Fatal("expected absent key to load as not found")
	}

	want := sampleTransactions()
	if err := Save(ctx, g, KeyTransactions, want); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, ok := Load[[]models.Transaction](ctx, g, KeyTransactions)
	if !ok {
		t.Fatal("expected stored snapshot")
	}
	assertSameTransactions(t, want, got)
}

func TestLoadSwallowsFailures(t *testing.T) {
	ctx := context.Background()

	t.Run("read_error", func(t *testing.T) {
		if _, ok := Load[[]models.Budget](ctx, brokenGateway{}, KeyBudgets); ok {
			t.Error("expected ok=false on read error")
		}
	})

	t.Run("decode_error", func(t *testing.T) {
		g := NewMemoryGateway()
		_ = g.Write(ctx, KeyCategories, []byte("{not json"))
		if _, ok := Load[[]models.Category](ctx, g, KeyCategories); ok {
			t.Error("expected ok=false on corrupt payload")
		}
	})

	t.Run("save_error_reported", func(t *testing.T) {
		if err := Save(ctx, brokenGateway{}, KeyBudgets, []models.Budget{}); err == nil {
			t.Error("expected Save to report the write failure")
		}
	})
}

func TestFileGateway(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "snapshots")

	g, err := NewFileGateway(dir)
	if err != nil {
		t.Fatalf("new file gateway: %v", err)
	}

	want := sampleTransactions()
	if err := Save(ctx, g, KeyTransactions, want); err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "transactions.json")); err != nil {
		t.Fatalf("expected snapshot file: %v", err)
	}

	got, ok := Load[[]models.Transaction](ctx, g, KeyTransactions)
	if !ok {
		t.Fatal("expected stored snapshot")
	}
	assertSameTransactions(t, want, got)

	if err := g.Write(ctx, "../escape", []byte("x")); err == nil {
		t.Error("expected invalid key to be rejected")
	}

	entries, _ := os.ReadDir(dir)
	for _, e := range entries {
		if filepath.Ext(e.Name()) == ".tmp" {
			t.Errorf("temp file left behind: %s", e.Name())
		}
	}
}
