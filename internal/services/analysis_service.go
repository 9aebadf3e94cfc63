package services

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"

	apperrors "kasa/internal/errors"
	"kasa/internal/events"
	"kasa/internal/models"
	"kasa/internal/scheduler"
)

// DefaultRecomputeWindow coalesces bursts of input changes into one recompute.
const DefaultRecomputeWindow = 300 * time.Millisecond

// analysisAggregator derives period-scoped summaries from the ledger. Inputs mark
// the summary dirty; the debouncer recomputes once per quiet window and the new
// summary replaces the old one atomically.
type analysisAggregator struct {
	mu     sync.Mutex
	period models.AnalysisPeriod
	page   models.AnalysisPage
	offset int

	ledger     LedgerReader
	categories CategoryResolver
	bus        *events.Bus
	now        func() time.Time

	debouncer *scheduler.Debouncer
	current   atomic.Pointer[models.AnalysisSummary]
}

// NewAnalysisAggregator creates a new AnalysisAggregator starting on the current
// month's expense page. A window of 0 recomputes synchronously on every change.
func NewAnalysisAggregator(ledger LedgerReader, categories CategoryResolver, bus *events.Bus, window time.Duration, now func() time.Time) AnalysisAggregator {
	if now == nil {
		now = time.Now
	}
	a := &analysisAggregator{
		period:     models.AnalysisPeriodMonthly,
		page:       models.AnalysisPageExpense,
		ledger:     ledger,
		categories: categories,
		bus:        bus,
		now:        now,
	}
	a.debouncer = scheduler.NewDebouncer(window, func() { a.generate() })
	return a
}

func (a *analysisAggregator) State() AnalysisState {
	a.mu.Lock()
	defer a.mu.Unlock()
	return AnalysisState{Period: a.period, Page: a.page, TimeOffset: a.offset}
}

func (a *analysisAggregator) SetPeriod(period models.AnalysisPeriod) error {
	if !period.IsValid() {
		return apperrors.ErrInvalidAnalysisPeriod
	}
	a.update(func() bool {
		changed := a.period != period
		a.period = period
		return changed
	})
	return nil
}

func (a *analysisAggregator) SetPage(page models.AnalysisPage) error {
	if !page.IsValid() {
		return apperrors.ErrInvalidAnalysisPage
	}
	a.update(func() bool {
		changed := a.page != page
		a.page = page
		return changed
	})
	return nil
}

// SetTimeOffset selects how many periods back to look; 0 is the current period.
func (a *analysisAggregator) SetTimeOffset(offset int) error {
	if offset < 0 {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "time offset must not be negative")
	}
	a.update(func() bool {
		changed := a.offset != offset
		a.offset = offset
		return changed
	})
	return nil
}

// NextPeriod moves one period toward the present. It stops at the current period.
func (a *analysisAggregator) NextPeriod() {
	a.update(func() bool {
		if a.offset == 0 {
			return false
		}
		a.offset--
		return true
	})
}

// PreviousPeriod moves one period further into the past.
func (a *analysisAggregator) PreviousPeriod() {
	a.update(func() bool {
		a.offset++
		return true
	})
}

// DateRange returns the inclusive window for the current selection.
func (a *analysisAggregator) DateRange() models.DateRange {
	s := a.State()
	return DateRangeFor(s.Period, s.TimeOffset, a.now())
}

// Current returns the latest summary, computing one if none exists yet. It may
// lag behind inputs changed within the debounce window.
func (a *analysisAggregator) Current() models.AnalysisSummary {
	if s := a.current.Load(); s != nil {
		return *s
	}
	return a.Refresh()
}

// Refresh recomputes synchronously and returns the new summary.
func (a *analysisAggregator) Refresh() models.AnalysisSummary {
	return *a.generate()
}

// Invalidate marks the summary dirty after a ledger or category change.
func (a *analysisAggregator) Invalidate() {
	a.debouncer.Mark()
}

// Flush runs any pending recompute now.
func (a *analysisAggregator) Flush() {
	a.debouncer.Flush()
}

// Close cancels pending recomputes.
func (a *analysisAggregator) Close() {
	a.debouncer.Stop()
}

func (a *analysisAggregator) update(mutate func() bool) {
	a.mu.Lock()
	changed := mutate()
	a.mu.Unlock()
	if changed {
		a.debouncer.Mark()
	}
}

func (a *analysisAggregator) generate() *models.AnalysisSummary {
	state := a.State()
	now := a.now()
	window := DateRangeFor(state.Period, state.TimeOffset, now)

	inWindow := make([]models.Transaction, 0)
	for _, tx := range a.ledger.All() {
		if window.Contains(tx.Date) {
			inWindow = append(inWindow, tx)
		}
	}
	income, expense := splitByDirection(inWindow)

	resolve := func(id string) string { return models.UnknownCategoryName }
	if a.categories != nil {
		resolve = a.categories.ResolveName
	}
	incomeSegments, totalIncome := groupByCategory(income, resolve)
	expenseSegments, totalExpense := groupByCategory(expense, resolve)

	net := totalIncome.Sub(totalExpense)
	savings := 0.0
	if totalIncome.IsPositive() {
		savings = net.Div(totalIncome).Mul(decimal.NewFromInt(100)).InexactFloat64()
	}

	summary := &models.AnalysisSummary{
		Period:            state.Period,
		Page:              state.Page,
		TimeOffset:        state.TimeOffset,
		Label:             PeriodLabel(state.Period, window),
		Range:             window,
		TotalIncome:       totalIncome,
		TotalExpense:      totalExpense,
		NetAmount:         net,
		SavingsPercentage: savings,
		IncomeCategories:  incomeSegments,
		ExpenseCategories: expenseSegments,
		GeneratedAt:       now,
	}
	a.current.Store(summary)

	if a.bus != nil {
		a.bus.Publish(events.Event{Kind: events.SummaryReplaced, Op: events.OpReplace})
	}
	return summary
}

// DateRangeFor computes the inclusive window for period, shifted offset periods
// back from the one containing now. Weeks start on Monday.
func DateRangeFor(period models.AnalysisPeriod, offset int, now time.Time) models.DateRange {
	loc := now.Location()
	switch period {
	case models.AnalysisPeriodWeekly:
		daysSinceMonday := (int(now.Weekday()) + 6) % 7
		start := models.StartOfDay(now).AddDate(0, 0, -daysSinceMonday-7*offset)
		return models.DateRange{From: start, To: models.EndOfDay(start.AddDate(0, 0, 6))}
	case models.AnalysisPeriodYearly:
		year := now.Year() - offset
		return models.DateRange{
			From: time.Date(year, time.January, 1, 0, 0, 0, 0, loc),
			To:   models.EndOfDay(time.Date(year, time.December, 31, 0, 0, 0, 0, loc)),
		}
	default:
		start := time.Date(now.Year(), now.Month()-time.Month(offset), 1, 0, 0, 0, 0, loc)
		return models.DateRange{From: start, To: models.EndOfDay(start.AddDate(0, 1, -1))}
	}
}

// PeriodLabel renders a window as "January 2024", "2024" or "Jan 8 - Jan 14, 2024".
func PeriodLabel(period models.AnalysisPeriod, r models.DateRange) string {
	switch period {
	case models.AnalysisPeriodWeekly:
		if r.From.Year() != r.To.Year() {
			return fmt.Sprintf("%s - %s", r.From.Format("Jan 2, 2006"), r.To.Format("Jan 2, 2006"))
		}
		return fmt.Sprintf("%s - %s", r.From.Format("Jan 2"), r.To.Format("Jan 2, 2006"))
	case models.AnalysisPeriodYearly:
		return r.From.Format("2006")
	default:
		return r.From.Format("January 2006")
	}
}
