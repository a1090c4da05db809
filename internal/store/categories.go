package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"finance-dashboard/internal/core"
	applog "finance-dashboard/internal/log"
)

// DeletePolicy decides what happens to transactions that reference a category
// being deleted.
type DeletePolicy int

const (
	// DeleteRestrict refuses to delete a category that still has transactions.
	DeleteRestrict DeletePolicy = iota
	// DeleteCascade removes the dependent transactions together with the category.
	DeleteCascade
)

const categoryColumns = `id, name, color, icon, is_income`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCategory(row rowScanner) (core.Category, error) {
	var c core.Category
	err := row.Scan(&c.ID, &c.Name, &c.Color, &c.Icon, &c.IsIncome)
	return c, err
}

// CreateCategory inserts a new category. A duplicate name yields core.ErrDuplicateName.
func (s *Store) CreateCategory(ctx context.Context, c core.Category) (core.Category, error) {
	c = c.WithDefaults()
	if err := c.Validate(); err != nil {
		return core.Category{}, err
	}

	err := s.db.QueryRowContext(ctx, s.rebind(`
		INSERT INTO categories (name, color, icon, is_income)
		VALUES (?, ?, ?, ?)
		RETURNING id`),
		c.Name, c.Color, c.Icon, c.IsIncome,
	).Scan(&c.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return core.Category{}, fmt.Errorf("category %q: %w", c.Name, core.ErrDuplicateName)
		}
		return core.Category{}, fmt.Errorf("create category: %w", err)
	}

	s.log.InfoContext(ctx, "Category created", applog.FieldOperation, applog.OpCreate, "id", c.ID, applog.FieldCategory, c.Name)
	return c, nil
}

// UpsertCategory inserts c unless a category with the same name exists, in
// which case the stored row is returned untouched. created reports whether a
// row was inserted.
func (s *Store) UpsertCategory(ctx context.Context, c core.Category) (core.Category, bool, error) {
	c = c.WithDefaults()
	if err := c.Validate(); err != nil {
		return core.Category{}, false, err
	}

	err := s.db.QueryRowContext(ctx, s.rebind(`
		INSERT INTO categories (name, color, icon, is_income)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (name) DO NOTHING
		RETURNING id`),
		c.Name, c.Color, c.Icon, c.IsIncome,
	).Scan(&c.ID)
	switch {
	case err == nil:
		return c, true, nil
	case errors.Is(err, sql.ErrNoRows):
		existing, err := s.GetCategoryByName(ctx, c.Name)
		if err != nil {
			return core.Category{}, false, err
		}
		return existing, false, nil
	default:
		return core.Category{}, false, fmt.Errorf("upsert category %q: %w", c.Name, err)
	}
}

func (s *Store) GetCategory(ctx context.Context, id int64) (core.Category, error) {
	c, err := scanCategory(s.db.QueryRowContext(ctx, s.rebind(`SELECT `+categoryColumns+` FROM categories WHERE id = ?`), id))
	if errors.Is(err, sql.ErrNoRows) {
		return core.Category{}, fmt.Errorf("category %d: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return core.Category{}, fmt.Errorf("get category: %w", err)
	}
	return c, nil
}

func (s *Store) GetCategoryByName(ctx context.Context, name string) (core.Category, error) {
	c, err := scanCategory(s.db.QueryRowContext(ctx, s.rebind(`SELECT `+categoryColumns+` FROM categories WHERE name = ?`), name))
	if errors.Is(err, sql.ErrNoRows) {
		return core.Category{}, fmt.Errorf("category %q: %w", name, core.ErrNotFound)
	}
	if err != nil {
		return core.Category{}, fmt.Errorf("get category by name: %w", err)
	}
	return c, nil
}

// ListCategories returns all categories ordered by name.
func (s *Store) ListCategories(ctx context.Context) ([]core.Category, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+categoryColumns+` FROM categories ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	categories := make([]core.Category, 0)
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// DeleteCategory removes a category according to policy and returns how many
// transactions were removed with it.
func (s *Store) DeleteCategory(ctx context.Context, id int64, policy DeletePolicy) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var exists int
	err = tx.QueryRowContext(ctx, s.rebind(`SELECT 1 FROM categories WHERE id = ?`), id).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("category %d: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return 0, fmt.Errorf("check category: %w", err)
	}

	var refs int64
	if err := tx.QueryRowContext(ctx, s.rebind(`SELECT COUNT(*) FROM transactions WHERE category_id = ?`), id).Scan(&refs); err != nil {
		return 0, fmt.Errorf("count category transactions: %w", err)
	}

	var removed int64
	if refs > 0 {
		if policy != DeleteCascade {
			return 0, fmt.Errorf("category %d has %d transactions: %w", id, refs, core.ErrCategoryInUse)
		}
		res, err := tx.ExecContext(ctx, s.rebind(`DELETE FROM transactions WHERE category_id = ?`), id)
		if err != nil {
			return 0, fmt.Errorf("delete category transactions: %w", err)
		}
		removed, _ = res.RowsAffected()
	}

	if _, err := tx.ExecContext(ctx, s.rebind(`DELETE FROM categories WHERE id = ?`), id); err != nil {
		return 0, fmt.Errorf("delete category: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}

	s.log.InfoContext(ctx, "Category deleted", applog.FieldOperation, applog.OpDelete, "id", id, "transactions_removed", removed)
	return removed, nil
}

func (s *Store) CountCategories(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM categories`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count categories: %w", err)
	}
	return n, nil
}
