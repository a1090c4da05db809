// Package dashboard computes the read-only summary shown on the main page:
// totals, balance, recent activity and the expense breakdown by category.
package dashboard

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"

	"finance-dashboard/internal/core"
	applog "finance-dashboard/internal/log"
)

// RecentLimit is how many transactions the recent list shows.
const RecentLimit = 5

const dateLayout = "2006-01-02"

// Reader is the storage the aggregator reads from.
type Reader interface {
	SumByType(ctx context.Context, typ core.TransactionType) (decimal.Decimal, error)
	ListTransactions(ctx context.Context, limit int) ([]core.TransactionWithCategory, error)
	ExpenseBreakdown(ctx context.Context) ([]core.CategoryTotal, error)
}

type (
	// RecentTransaction is a transaction projected for display.
	RecentTransaction struct {
		Name     string  `json:"name"`
		Amount   float64 `json:"amount"`
		Type     string  `json:"type"`
		Date     string  `json:"date"`
		Category string  `json:"category"`
		Icon     string  `json:"icon"`
	}

	// CategoryShare is one entry of the expense breakdown.
	CategoryShare struct {
		Amount float64 `json:"amount"`
		Color  string  `json:"color"`
	}

	UpcomingPayment struct {
		Name   string  `json:"name"`
		Amount float64 `json:"amount"`
		Date   string  `json:"date"`
	}

	// Snapshot holds the exact decimal results of one aggregation pass.
	Snapshot struct {
		TotalIncome      decimal.Decimal
		TotalExpenses    decimal.Decimal
		Balance          decimal.Decimal
		Recent           []RecentTransaction
		Breakdown        Breakdown
		UpcomingPayments []UpcomingPayment
	}

	// Context is the key/value view consumed by the page renderer.
	Context struct {
		Balance            float64             `json:"balance"`
		Income             float64             `json:"income"`
		Expenses           float64             `json:"expenses"`
		RecentTransactions []RecentTransaction `json:"recent_transactions"`
		AnalyticsData      string              `json:"analytics_data"`
		UpcomingPayments   []UpcomingPayment   `json:"upcoming_payments"`
	}
)

// upcomingPayments is fixed sample data; it is not derived from storage.
var upcomingPayments = []UpcomingPayment{
	{Name: "Netflix", Amount: 15.99, Date: "2024-01-15"},
	{Name: "Spotify", Amount: 9.99, Date: "2024-01-20"},
	{Name: "Gym Membership", Amount: 49.99, Date: "2024-01-25"},
}

// UpcomingPayments returns a copy of the static upcoming payment list.
func UpcomingPayments() []UpcomingPayment {
	out := make([]UpcomingPayment, len(upcomingPayments))
	copy(out, upcomingPayments)
	return out
}

type Aggregator struct {
	reader Reader
	logger *applog.Logger
}

func NewAggregator(reader Reader, logger *applog.Logger) *Aggregator {
	if logger == nil {
		logger = applog.Discard()
	}
	return &Aggregator{
		reader: reader,
		logger: logger.WithComponent(applog.ComponentDashboard),
	}
}

// Snapshot reads the current totals, recent transactions and expense
// breakdown. Empty storage yields zeros and empty lists.
func (a *Aggregator) Snapshot(ctx context.Context) (Snapshot, error) {
	income, err := a.reader.SumByType(ctx, core.Income)
	if err != nil {
		return Snapshot{}, fmt.Errorf("total income: %w", err)
	}
	expenses, err := a.reader.SumByType(ctx, core.Expense)
	if err != nil {
		return Snapshot{}, fmt.Errorf("total expenses: %w", err)
	}

	latest, err := a.reader.ListTransactions(ctx, RecentLimit)
	if err != nil {
		return Snapshot{}, fmt.Errorf("recent transactions: %w", err)
	}
	recent := make([]RecentTransaction, 0, len(latest))
	for _, tx := range latest {
		recent = append(recent, RecentTransaction{
			Name:     tx.Name,
			Amount:   tx.SignedAmount().InexactFloat64(),
			Type:     string(tx.Type),
			Date:     tx.Date.Format(dateLayout),
			Category: tx.CategoryName,
			Icon:     tx.CategoryIcon,
		})
	}

	totals, err := a.reader.ExpenseBreakdown(ctx)
	if err != nil {
		return Snapshot{}, fmt.Errorf("expense breakdown: %w", err)
	}
	if totals == nil {
		totals = []core.CategoryTotal{}
	}

	snap := Snapshot{
		TotalIncome:      income,
		TotalExpenses:    expenses,
		Balance:          income.Sub(expenses),
		Recent:           recent,
		Breakdown:        Breakdown(totals),
		UpcomingPayments: UpcomingPayments(),
	}
	a.logger.DebugContext(ctx, "Dashboard snapshot computed",
		"income", income.StringFixed(2),
		"expenses", expenses.StringFixed(2),
		"recent", len(recent),
		"categories", len(totals))
	return snap, nil
}

// Context projects the snapshot onto the renderer's key/value contract.
func (s Snapshot) Context() (Context, error) {
	analytics, err := json.Marshal(s.Breakdown)
	if err != nil {
		return Context{}, fmt.Errorf("encode analytics data: %w", err)
	}
	recent := s.Recent
	if recent == nil {
		recent = []RecentTransaction{}
	}
	upcoming := s.UpcomingPayments
	if upcoming == nil {
		upcoming = []UpcomingPayment{}
	}
	return Context{
		Balance:            s.Balance.InexactFloat64(),
		Income:             s.TotalIncome.InexactFloat64(),
		Expenses:           s.TotalExpenses.InexactFloat64(),
		RecentTransactions: recent,
		AnalyticsData:      string(analytics),
		UpcomingPayments:   upcoming,
	}, nil
}
