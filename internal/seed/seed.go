// Package seed populates storage with the sample categories and transactions
// used for demos and local development.
package seed

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"finance-dashboard/internal/core"
	applog "finance-dashboard/internal/log"
)

// Window is the span before "now" that sample transaction dates fall into.
const Window = 30 * 24 * time.Hour

const windowDays = 30

// Store is the storage the seeder needs: insert-if-absent by natural key.
type Store interface {
	UpsertCategory(ctx context.Context, c core.Category) (core.Category, bool, error)
	GetOrCreateTransaction(ctx context.Context, t core.Transaction) (core.TransactionWithCategory, bool, error)
}

// Result reports what a run created and how large the catalog is.
type Result struct {
	CategoriesCreated   int
	CategoriesTotal     int
	TransactionsCreated int
	TransactionsTotal   int
}

func (r Result) String() string {
	return fmt.Sprintf("Created %d of %d categories and %d of %d transactions.",
		r.CategoriesCreated, r.CategoriesTotal, r.TransactionsCreated, r.TransactionsTotal)
}

type Seeder struct {
	store  Store
	rand   *rand.Rand
	now    func() time.Time
	logger *applog.Logger
}

type Option func(*Seeder)

// WithRand sets the random source used to spread transaction dates.
func WithRand(r *rand.Rand) Option {
	return func(s *Seeder) { s.rand = r }
}

// WithClock sets the time source that anchors the date window.
func WithClock(now func() time.Time) Option {
	return func(s *Seeder) { s.now = now }
}

func WithLogger(logger *applog.Logger) Option {
	return func(s *Seeder) { s.logger = logger }
}

func New(store Store, opts ...Option) *Seeder {
	s := &Seeder{
		store:  store,
		now:    time.Now,
		logger: applog.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.rand == nil {
		s.rand = rand.New(rand.NewPCG(uint64(s.now().UnixNano()), 0x5eed))
	}
	s.logger = s.logger.WithComponent(applog.ComponentSeeder)
	return s
}

// Run inserts every catalog category and transaction that is not already
// present. Running it again is a no-op. The first storage error aborts the run.
func (s *Seeder) Run(ctx context.Context) (Result, error) {
	res := Result{
		CategoriesTotal:   len(Categories),
		TransactionsTotal: len(Transactions),
	}

	s.logger.InfoContext(ctx, "Creating sample categories...", applog.FieldOperation, applog.OpSeed)
	byName := make(map[string]core.Category, len(Categories))
	for _, c := range Categories {
		category, created, err := s.store.UpsertCategory(ctx, c)
		if err != nil {
			return res, fmt.Errorf("seed category %q: %w", c.Name, err)
		}
		byName[c.Name] = category
		if created {
			res.CategoriesCreated++
			s.logger.InfoContext(ctx, "Created category", applog.FieldCategory, category.Name)
		}
	}

	s.logger.InfoContext(ctx, "Creating sample transactions...", applog.FieldOperation, applog.OpSeed)
	base := s.now().Add(-Window)
	for _, st := range Transactions {
		category, ok := byName[st.Category]
		if !ok {
			return res, fmt.Errorf("seed transaction %q: unknown category %q", st.Name, st.Category)
		}
		description := fmt.Sprintf("Sample %s transaction", st.Type)
		_, created, err := s.store.GetOrCreateTransaction(ctx, core.Transaction{
			Name:        st.Name,
			Amount:      st.Amount,
			CategoryID:  category.ID,
			Type:        st.Type,
			Date:        s.sampleDate(base),
			Description: &description,
		})
		if err != nil {
			return res, fmt.Errorf("seed transaction %q: %w", st.Name, err)
		}
		if created {
			res.TransactionsCreated++
			s.logger.DebugContext(ctx, "Created transaction", applog.FieldTransaction, st.Name)
		}
	}

	return res, nil
}

// sampleDate draws a whole-day offset uniformly from [0, 30].
func (s *Seeder) sampleDate(base time.Time) time.Time {
	return base.Add(time.Duration(s.rand.IntN(windowDays+1)) * 24 * time.Hour)
}
