package seed

import (
	"context"
	"errors"
	"math/rand/v2"
	"path/filepath"
	"testing"
	"time"

	"finance-dashboard/internal/config"
	"finance-dashboard/internal/core"
	"finance-dashboard/internal/store"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(context.Background(), store.Options{
		Driver:     config.DriverSQLite,
		SQLitePath: filepath.Join(t.TempDir(), "seed.db"),
	})
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestCatalogShape(t *testing.T) {
	income, expense := 0, 0
	names := map[string]bool{}
	for _, c := range Categories {
		if err := c.Validate(); err != nil {
			t.Fatalf("category %q invalid: %v", c.Name, err)
		}
		names[c.Name] = true
		if c.IsIncome {
			income++
		} else {
			expense++
		}
	}
	if len(Categories) != 9 || income != 3 || expense != 6 {
		t.Fatalf("expected 9 categories (3/6), got %d (%d/%d)", len(Categories), income, expense)
	}

	income, expense = 0, 0
	for _, tx := range Transactions {
		if !names[tx.Category] {
			t.Fatalf("transaction %q references unknown category %q", tx.Name, tx.Category)
		}
		if tx.Type == core.Income {
			income++
		} else {
			expense++
		}
	}
	if len(Transactions) != 15 || income != 4 || expense != 11 {
		t.Fatalf("expected 15 transactions (4/11), got %d (%d/%d)", len(Transactions), income, expense)
	}
}

func TestRunPopulatesEmptyStore(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	now := time.Date(2025, 6, 30, 15, 4, 5, 0, time.UTC)

	res, err := New(s, WithClock(func() time.Time { return now }), WithRand(rand.New(rand.NewPCG(1, 2)))).Run(ctx)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if res.CategoriesCreated != 9 || res.TransactionsCreated != 15 {
		t.Fatalf("unexpected result %+v", res)
	}

	if n, _ := s.CountCategories(ctx); n != 9 {
		t.Fatalf("expected 9 categories, got %d", n)
	}
	if n, _ := s.CountTransactions(ctx); n != 15 {
		t.Fatalf("expected 15 transactions, got %d", n)
	}

	rows, err := s.ListTransactions(ctx, 100)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	start := now.Add(-Window)
	for _, tx := range rows {
		if tx.Date.Before(start) || tx.Date.After(now) {
			t.Fatalf("%q dated %v outside [%v, %v]", tx.Name, tx.Date, start, now)
		}
		want := "Sample " + string(tx.Type) + " transaction"
		if tx.Description == nil || *tx.Description != want {
			t.Fatalf("%q: unexpected description %v", tx.Name, tx.Description)
		}
	}
}

func TestRunIsIdempotent(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	if _, err := New(s).Run(ctx); err != nil {
		t.Fatalf("first run: %v", err)
	}
	res, err := New(s).Run(ctx)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if res.CategoriesCreated != 0 || res.TransactionsCreated != 0 {
		t.Fatalf("second run must not create rows, got %+v", res)
	}
	if res.CategoriesTotal != 9 || res.TransactionsTotal != 15 {
		t.Fatalf("unexpected totals %+v", res)
	}
	if n, _ := s.CountCategories(ctx); n != 9 {
		t.Fatalf("expected 9 categories, got %d", n)
	}
	if n, _ := s.CountTransactions(ctx); n != 15 {
		t.Fatalf("expected 15 transactions, got %d", n)
	}
}

func TestRunFillsPartialStore(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	// A pre-existing category keeps its own display fields.
	if _, err := s.CreateCategory(ctx, core.Category{Name: "Salary", Color: "#000000", Icon: "$", IsIncome: true}); err != nil {
		t.Fatalf("create: %v", err)
	}
	res, err := New(s).Run(ctx)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if res.CategoriesCreated != 8 || res.TransactionsCreated != 15 {
		t.Fatalf("unexpected result %+v", res)
	}
	salary, err := s.GetCategoryByName(ctx, "Salary")
	if err != nil || salary.Color != "#000000" {
		t.Fatalf("existing category must be untouched: %+v err=%v", salary, err)
	}
}

func TestSampleDatesAreReproducible(t *testing.T) {
	now := time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC)
	a := New(nil, WithClock(func() time.Time { return now }), WithRand(rand.New(rand.NewPCG(7, 7))))
	b := New(nil, WithClock(func() time.Time { return now }), WithRand(rand.New(rand.NewPCG(7, 7))))
	base := now.Add(-Window)
	for i := 0; i < 50; i++ {
		da, db := a.sampleDate(base), b.sampleDate(base)
		if !da.Equal(db) {
			t.Fatalf("draw %d differs: %v vs %v", i, da, db)
		}
		if da.Before(base) || da.After(now) {
			t.Fatalf("draw %d outside window: %v", i, da)
		}
	}
}

type failingStore struct{ err error }

func (f failingStore) UpsertCategory(ctx context.Context, c core.Category) (core.Category, bool, error) {
	return core.Category{}, false, f.err
}

func (f failingStore) GetOrCreateTransaction(ctx context.Context, t core.Transaction) (core.TransactionWithCategory, bool, error) {
	return core.TransactionWithCategory{}, false, f.err
}

func TestRunPropagatesStorageErrors(t *testing.T) {
	boom := errors.New("connection refused")
	_, err := New(failingStore{err: boom}).Run(context.Background())
	if !errors.Is(err, boom) {
		t.Fatalf("expected storage error to propagate, got %v", err)
	}
}
