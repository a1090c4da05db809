package store

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"finance-dashboard/internal/core"
)

// SumByType totals the amounts of every transaction of the given type.
// An empty set sums to zero.
func (s *Store) SumByType(ctx context.Context, typ core.TransactionType) (decimal.Decimal, error) {
	if !typ.Valid() {
		return decimal.Zero, core.ErrInvalidType
	}
	var cents int64
	err := s.db.QueryRowContext(ctx, s.rebind(`
		SELECT CAST(COALESCE(SUM(amount_cents), 0) AS BIGINT)
		FROM transactions
		WHERE transaction_type = ?`), string(typ),
	).Scan(&cents)
	if err != nil {
		return decimal.Zero, fmt.Errorf("sum %s: %w", typ, err)
	}
	return core.CentsToDecimal(cents), nil
}

// ExpenseBreakdown sums expense amounts per category, largest first. Only
// categories with at least one expense appear.
func (s *Store) ExpenseBreakdown(ctx context.Context) ([]core.CategoryTotal, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(`
		SELECT c.id, c.name, c.color, CAST(SUM(t.amount_cents) AS BIGINT) AS total
		FROM transactions t
		JOIN categories c ON c.id = t.category_id
		WHERE t.transaction_type = ?
		GROUP BY c.id, c.name, c.color
		ORDER BY total DESC, c.name`), string(core.Expense))
	if err != nil {
		return nil, fmt.Errorf("expense breakdown: %w", err)
	}
	defer rows.Close()

	totals := make([]core.CategoryTotal, 0)
	for rows.Next() {
		var (
			ct    core.CategoryTotal
			cents int64
		)
		if err := rows.Scan(&ct.CategoryID, &ct.Name, &ct.Color, &cents); err != nil {
			return nil, fmt.Errorf("scan expense breakdown: %w", err)
		}
		ct.Amount = core.CentsToDecimal(cents)
		totals = append(totals, ct)
	}
	return totals, rows.Err()
}
