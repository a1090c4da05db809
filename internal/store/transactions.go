package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"finance-dashboard/internal/config"
	"finance-dashboard/internal/core"
	applog "finance-dashboard/internal/log"
)

const transactionColumns = `t.id, t.user_id, t.name, t.amount_cents, t.category_id, t.transaction_type,
	t.description, t.occurred_at, t.created_at, t.updated_at, c.name, c.color, c.icon`

const transactionFrom = ` FROM transactions t JOIN categories c ON c.id = t.category_id`

// DefaultListLimit is used when a caller asks for a non-positive limit.
const DefaultListLimit = 100

func scanTransaction(row rowScanner) (core.TransactionWithCategory, error) {
	var (
		tx          core.TransactionWithCategory
		userID      sql.NullInt64
		cents       int64
		typ         string
		description sql.NullString
	)
	err := row.Scan(
		&tx.ID, &userID, &tx.Name, &cents, &tx.CategoryID, &typ,
		&description, &tx.Date, &tx.CreatedAt, &tx.UpdatedAt,
		&tx.CategoryName, &tx.CategoryColor, &tx.CategoryIcon,
	)
	if err != nil {
		return core.TransactionWithCategory{}, err
	}
	if userID.Valid {
		id := userID.Int64
		tx.UserID = &id
	}
	if description.Valid {
		d := description.String
		tx.Description = &d
	}
	tx.Amount = core.CentsToDecimal(cents)
	tx.Type = core.TransactionType(typ)
	tx.Date = tx.Date.UTC()
	tx.CreatedAt = tx.CreatedAt.UTC()
	tx.UpdatedAt = tx.UpdatedAt.UTC()
	return tx, nil
}

func nullableInt64(p *int64) sql.NullInt64 {
	if p == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *p, Valid: true}
}

func nullableString(p *string) sql.NullString {
	if p == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *p, Valid: true}
}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *Store) categoryExists(ctx context.Context, q queryer, id int64) error {
	var one int
	err := q.QueryRowContext(ctx, s.rebind(`SELECT 1 FROM categories WHERE id = ?`), id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: category %d does not exist", core.ErrMissingCategory, id)
	}
	if err != nil {
		return fmt.Errorf("check category: %w", err)
	}
	return nil
}

// CreateTransaction validates and inserts t. A zero Date defaults to now.
func (s *Store) CreateTransaction(ctx context.Context, t core.Transaction) (core.TransactionWithCategory, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return core.TransactionWithCategory{}, fmt.Errorf("begin: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	id, err := s.insertTransaction(ctx, tx, t)
	if err != nil {
		return core.TransactionWithCategory{}, err
	}
	created, err := s.getTransaction(ctx, tx, id)
	if err != nil {
		return core.TransactionWithCategory{}, err
	}
	if err := tx.Commit(); err != nil {
		return core.TransactionWithCategory{}, fmt.Errorf("commit: %w", err)
	}

	s.log.InfoContext(ctx, "Transaction created",
		applog.FieldOperation, applog.OpCreate,
		"id", created.ID,
		applog.FieldTransaction, created.Name,
		applog.FieldAmount, created.Amount.StringFixed(2),
		applog.FieldType, created.Type)
	return created, nil
}

func (s *Store) insertTransaction(ctx context.Context, tx *sql.Tx, t core.Transaction) (int64, error) {
	if err := t.Validate(); err != nil {
		return 0, err
	}
	cents, err := core.DecimalToCents(t.Amount)
	if err != nil {
		return 0, err
	}
	if err := s.categoryExists(ctx, tx, t.CategoryID); err != nil {
		return 0, err
	}

	now := s.timestamp(s.now())
	date := now
	if !t.Date.IsZero() {
		date = s.timestamp(t.Date)
	}

	var id int64
	err = tx.QueryRowContext(ctx, s.rebind(`
		INSERT INTO transactions
			(user_id, name, amount_cents, category_id, transaction_type, description, occurred_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id`),
		nullableInt64(t.UserID), t.Name, cents, t.CategoryID, string(t.Type),
		nullableString(t.Description), date, now, now,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert transaction: %w", err)
	}
	return id, nil
}

func (s *Store) GetTransaction(ctx context.Context, id int64) (core.TransactionWithCategory, error) {
	t, err := s.getTransaction(ctx, s.db, id)
	if err != nil {
		return core.TransactionWithCategory{}, err
	}
	s.log.DebugContext(ctx, "Transaction read", applog.FieldOperation, applog.OpRead, "id", id)
	return t, nil
}

func (s *Store) getTransaction(ctx context.Context, q queryer, id int64) (core.TransactionWithCategory, error) {
	t, err := scanTransaction(q.QueryRowContext(ctx, s.rebind(`SELECT `+transactionColumns+transactionFrom+` WHERE t.id = ?`), id))
	if errors.Is(err, sql.ErrNoRows) {
		return core.TransactionWithCategory{}, fmt.Errorf("transaction %d: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return core.TransactionWithCategory{}, fmt.Errorf("get transaction: %w", err)
	}
	return t, nil
}

// UpdateTransaction overwrites the mutable fields of the transaction with
// t.ID and bumps updated_at. created_at is preserved.
func (s *Store) UpdateTransaction(ctx context.Context, t core.Transaction) (core.TransactionWithCategory, error) {
	if err := t.Validate(); err != nil {
		return core.TransactionWithCategory{}, err
	}
	cents, err := core.DecimalToCents(t.Amount)
	if err != nil {
		return core.TransactionWithCategory{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return core.TransactionWithCategory{}, fmt.Errorf("begin: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	current, err := s.getTransaction(ctx, tx, t.ID)
	if err != nil {
		return core.TransactionWithCategory{}, err
	}
	if err := s.categoryExists(ctx, tx, t.CategoryID); err != nil {
		return core.TransactionWithCategory{}, err
	}

	date := current.Date
	if !t.Date.IsZero() {
		date = s.timestamp(t.Date)
	}
	_, err = tx.ExecContext(ctx, s.rebind(`
		UPDATE transactions
		SET user_id = ?, name = ?, amount_cents = ?, category_id = ?, transaction_type = ?,
			description = ?, occurred_at = ?, updated_at = ?
		WHERE id = ?`),
		nullableInt64(t.UserID), t.Name, cents, t.CategoryID, string(t.Type),
		nullableString(t.Description), date, s.timestamp(s.now()), t.ID,
	)
	if err != nil {
		return core.TransactionWithCategory{}, fmt.Errorf("update transaction: %w", err)
	}

	updated, err := s.getTransaction(ctx, tx, t.ID)
	if err != nil {
		return core.TransactionWithCategory{}, err
	}
	if err := tx.Commit(); err != nil {
		return core.TransactionWithCategory{}, fmt.Errorf("commit: %w", err)
	}
	s.log.InfoContext(ctx, "Transaction updated", applog.FieldOperation, applog.OpUpdate, "id", updated.ID, applog.FieldTransaction, updated.Name)
	return updated, nil
}

func (s *Store) DeleteTransaction(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, s.rebind(`DELETE FROM transactions WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("transaction %d: %w", id, core.ErrNotFound)
	}
	s.log.InfoContext(ctx, "Transaction deleted", applog.FieldOperation, applog.OpDelete, "id", id)
	return nil
}

// ListTransactions returns up to limit transactions, newest date first.
func (s *Store) ListTransactions(ctx context.Context, limit int) ([]core.TransactionWithCategory, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	rows, err := s.db.QueryContext(ctx, s.rebind(`SELECT `+transactionColumns+transactionFrom+`
		ORDER BY t.occurred_at DESC, t.id DESC
		LIMIT ?`), limit)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	// ensure empty slice ([]) instead of null when no rows
	transactions := make([]core.TransactionWithCategory, 0)
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		transactions = append(transactions, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	s.log.DebugContext(ctx, "Transactions listed", applog.FieldOperation, applog.OpList, "count", len(transactions))
	return transactions, nil
}

// GetOrCreateTransaction looks the transaction up by its natural key
// (name, amount, category, type). When absent it is inserted with the Date
// and Description of t. created reports whether a row was inserted.
func (s *Store) GetOrCreateTransaction(ctx context.Context, t core.Transaction) (core.TransactionWithCategory, bool, error) {
	cents, err := core.DecimalToCents(t.Amount)
	if err != nil {
		return core.TransactionWithCategory{}, false, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return core.TransactionWithCategory{}, false, fmt.Errorf("begin: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Postgres runs concurrent callers in parallel; serialise them per natural
	// key until commit. SQLite has a single connection and needs no lock.
	if s.driver == config.DriverPostgres {
		key := fmt.Sprintf("%s|%d|%d|%s", t.Name, cents, t.CategoryID, t.Type)
		if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`, key); err != nil {
			return core.TransactionWithCategory{}, false, fmt.Errorf("lock transaction key: %w", err)
		}
	}

	var id int64
	err = tx.QueryRowContext(ctx, s.rebind(`
		SELECT id FROM transactions
		WHERE name = ? AND amount_cents = ? AND category_id = ? AND transaction_type = ?
		ORDER BY id
		LIMIT 1`),
		t.Name, cents, t.CategoryID, string(t.Type),
	).Scan(&id)

	created := false
	switch {
	case errors.Is(err, sql.ErrNoRows):
		if id, err = s.insertTransaction(ctx, tx, t); err != nil {
			return core.TransactionWithCategory{}, false, err
		}
		created = true
	case err != nil:
		return core.TransactionWithCategory{}, false, fmt.Errorf("lookup transaction %q: %w", t.Name, err)
	}

	row, err := s.getTransaction(ctx, tx, id)
	if err != nil {
		return core.TransactionWithCategory{}, false, err
	}
	if err := tx.Commit(); err != nil {
		return core.TransactionWithCategory{}, false, fmt.Errorf("commit: %w", err)
	}
	return row, created, nil
}

func (s *Store) CountTransactions(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM transactions`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count transactions: %w", err)
	}
	return n, nil
}

// SetClock overrides the time source used for audit timestamps.
func (s *Store) SetClock(now func() time.Time) {
	s.now = now
}
