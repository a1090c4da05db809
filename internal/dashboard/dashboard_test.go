package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"finance-dashboard/internal/config"
	"finance-dashboard/internal/core"
	"finance-dashboard/internal/store"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(context.Background(), store.Options{
		Driver:     config.DriverSQLite,
		SQLitePath: filepath.Join(t.TempDir(), "dashboard.db"),
	})
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

type fixture struct {
	t *testing.T
	s *store.Store
}

func (f fixture) category(name, color string, income bool) core.Category {
	f.t.Helper()
	c, err := f.s.CreateCategory(context.Background(), core.Category{Name: name, Color: color, Icon: "*", IsIncome: income})
	if err != nil {
		f.t.Fatalf("create category %s: %v", name, err)
	}
	return c
}

func (f fixture) transaction(name, amount string, c core.Category, typ core.TransactionType, date time.Time) {
	f.t.Helper()
	_, err := f.s.CreateTransaction(context.Background(), core.Transaction{
		Name:       name,
		Amount:     decimal.RequireFromString(amount),
		CategoryID: c.ID,
		Type:       typ,
		Date:       date,
	})
	if err != nil {
		f.t.Fatalf("create transaction %s: %v", name, err)
	}
}

func TestSnapshotTotalsAndBreakdown(t *testing.T) {
	s := newTestStore(t)
	f := fixture{t: t, s: s}
	salary := f.category("Salary", "#4CAF50", true)
	food := f.category("Food", "#F44336", false)
	fun := f.category("Fun", "#E91E63", false)

	day := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	f.transaction("Pay", "100", salary, core.Income, day)
	f.transaction("Groceries", "40", food, core.Expense, day.AddDate(0, 0, 1))
	f.transaction("Cinema", "10", fun, core.Expense, day.AddDate(0, 0, 2))

	snap, err := NewAggregator(s, nil).Snapshot(context.Background())
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}

	if !snap.TotalIncome.Equal(decimal.NewFromInt(100)) ||
		!snap.TotalExpenses.Equal(decimal.NewFromInt(50)) ||
		!snap.Balance.Equal(decimal.NewFromInt(50)) {
		t.Fatalf("unexpected totals income=%s expenses=%s balance=%s",
			snap.TotalIncome, snap.TotalExpenses, snap.Balance)
	}

	if len(snap.Breakdown) != 2 || snap.Breakdown[0].Name != "Food" || snap.Breakdown[1].Name != "Fun" {
		t.Fatalf("breakdown must be ordered largest first, got %+v", snap.Breakdown)
	}
	if food := snap.Breakdown[0]; !food.Amount.Equal(decimal.NewFromInt(40)) || food.Color != "#F44336" {
		t.Fatalf("unexpected Food total %+v", food)
	}

	if len(snap.Recent) != 3 {
		t.Fatalf("expected 3 recent transactions, got %d", len(snap.Recent))
	}
	first := snap.Recent[0]
	if first.Name != "Cinema" || first.Amount != -10 || first.Date != "2025-03-03" || first.Category != "Fun" || first.Type != "expense" {
		t.Fatalf("unexpected most recent entry %+v", first)
	}
	if last := snap.Recent[2]; last.Name != "Pay" || last.Amount != 100 {
		t.Fatalf("income must display positive, got %+v", last)
	}
}

func TestSnapshotEmptyStore(t *testing.T) {
	snap, err := NewAggregator(newTestStore(t), nil).Snapshot(context.Background())
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if !snap.TotalIncome.IsZero() || !snap.TotalExpenses.IsZero() || !snap.Balance.IsZero() {
		t.Fatalf("expected zero totals, got %+v", snap)
	}
	if len(snap.Recent) != 0 || len(snap.Breakdown) != 0 {
		t.Fatalf("expected empty lists, got %+v", snap)
	}

	ctx, err := snap.Context()
	if err != nil {
		t.Fatalf("context: %v", err)
	}
	if ctx.AnalyticsData != "{}" {
		t.Fatalf("expected empty analytics object, got %q", ctx.AnalyticsData)
	}
	body, _ := json.Marshal(ctx)
	if !strings.Contains(string(body), `"recent_transactions":[]`) {
		t.Fatalf("recent list must encode as an empty array: %s", body)
	}
}

func TestSnapshotLimitsRecent(t *testing.T) {
	s := newTestStore(t)
	f := fixture{t: t, s: s}
	food := f.category("Food", "#F44336", false)
	start := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 8; i++ {
		f.transaction("Meal", "1.25", food, core.Expense, start.AddDate(0, 0, i))
	}

	snap, err := NewAggregator(s, nil).Snapshot(context.Background())
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if len(snap.Recent) != RecentLimit {
		t.Fatalf("expected %d recent transactions, got %d", RecentLimit, len(snap.Recent))
	}
	if snap.Recent[0].Date != "2025-03-08" {
		t.Fatalf("expected newest first, got %s", snap.Recent[0].Date)
	}
	if !snap.TotalExpenses.Equal(decimal.RequireFromString("10.00")) {
		t.Fatalf("expected exact total 10.00, got %s", snap.TotalExpenses)
	}
}

func TestBreakdownJSONKeepsOrder(t *testing.T) {
	b := Breakdown{
		{Name: "Utilities", Color: "#607D8B", Amount: decimal.RequireFromString("165")},
		{Name: "Food & Dining", Color: "#F44336", Amount: decimal.RequireFromString("155")},
		{Name: "Abc", Color: "#000000", Amount: decimal.RequireFromString("0.5")},
	}
	got, err := json.Marshal(b)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	// encoding/json escapes & in keys; the decoded name is unchanged.
	want := `{"Utilities":{"amount":165,"color":"#607D8B"},"Food \u0026 Dining":{"amount":155,"color":"#F44336"},"Abc":{"amount":0.5,"color":"#000000"}}`
	if string(got) != want {
		t.Fatalf("unexpected JSON\n got: %s\nwant: %s", got, want)
	}
}

func TestContextProjection(t *testing.T) {
	snap := Snapshot{
		TotalIncome:   decimal.RequireFromString("4970.50"),
		TotalExpenses: decimal.RequireFromString("657.48"),
		Balance:       decimal.RequireFromString("4313.02"),
		Breakdown: Breakdown{
			{Name: "Food", Color: "#F44336", Amount: decimal.RequireFromString("155")},
		},
		UpcomingPayments: UpcomingPayments(),
	}
	ctx, err := snap.Context()
	if err != nil {
		t.Fatalf("context: %v", err)
	}
	if ctx.Balance != 4313.02 || ctx.Income != 4970.5 || ctx.Expenses != 657.48 {
		t.Fatalf("unexpected numbers %+v", ctx)
	}
	if ctx.AnalyticsData != `{"Food":{"amount":155,"color":"#F44336"}}` {
		t.Fatalf("unexpected analytics data %s", ctx.AnalyticsData)
	}
	if len(ctx.UpcomingPayments) != 3 || ctx.UpcomingPayments[0].Name != "Netflix" {
		t.Fatalf("unexpected upcoming payments %+v", ctx.UpcomingPayments)
	}
}

func TestUpcomingPaymentsReturnsCopy(t *testing.T) {
	p := UpcomingPayments()
	p[0].Name = "changed"
	if UpcomingPayments()[0].Name != "Netflix" {
		t.Fatal("caller mutation leaked into the static list")
	}
}

type failingReader struct{ err error }

func (r failingReader) SumByType(context.Context, core.TransactionType) (decimal.Decimal, error) {
	return decimal.Zero, r.err
}

func (r failingReader) ListTransactions(context.Context, int) ([]core.TransactionWithCategory, error) {
	return nil, r.err
}

func (r failingReader) ExpenseBreakdown(context.Context) ([]core.CategoryTotal, error) {
	return nil, r.err
}

func TestSnapshotPropagatesErrors(t *testing.T) {
	boom := errors.New("db down")
	if _, err := NewAggregator(failingReader{err: boom}, nil).Snapshot(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped storage error, got %v", err)
	}
}
