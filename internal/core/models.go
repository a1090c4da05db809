// Package core holds the finance domain: categories, transactions and the
// field-level rules that every storage backend relies on.
package core

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"
)

const (
	DefaultCategoryColor = "#6C63FF"
	DefaultCategoryIcon  = "💰"

	MaxCategoryNameLen    = 100
	MaxCategoryIconLen    = 10
	MaxTransactionNameLen = 200
)

type (
	// TransactionType is the income/expense tag carried by every transaction.
	TransactionType string

	// Category represents a transaction category
	Category struct {
		ID       int64  `json:"id"`
		Name     string `json:"name"`
		Color    string `json:"color"`
		Icon     string `json:"icon"`
		IsIncome bool   `json:"is_income"`
	}

	// Transaction represents a financial transaction
	Transaction struct {
		ID          int64           `json:"id"`
		UserID      *int64          `json:"user_id,omitempty"`
		Name        string          `json:"name"`
		Amount      decimal.Decimal `json:"amount"`
		CategoryID  int64           `json:"category_id"`
		Type        TransactionType `json:"transaction_type"`
		Description *string         `json:"description,omitempty"`
		Date        time.Time       `json:"date"`
		CreatedAt   time.Time       `json:"created_at"`
		UpdatedAt   time.Time       `json:"updated_at"`
	}
)

var (
	ErrNotFound        = errors.New("not found")
	ErrCategoryInUse   = errors.New("category is referenced by transactions")
	ErrDuplicateName   = errors.New("name already exists")
	ErrInvalidType     = errors.New("transaction type must be income or expense")
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrEmptyName       = errors.New("empty name")
	ErrNameTooLong     = errors.New("name too long")
	ErrInvalidColor    = errors.New("color must be a hex value like #A1B2C3")
	ErrInvalidIcon     = errors.New("icon too long")
	ErrMissingCategory = errors.New("missing category")
)

var hexColor = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// Valid reports whether t is one of the two enumerated tags.
func (t TransactionType) Valid() bool {
	return t == Income || t == Expense
}

func (c Category) Validate() error {
	name := strings.TrimSpace(c.Name)
	if name == "" {
		return ErrEmptyName
	}
	if utf8.RuneCountInString(name) > MaxCategoryNameLen {
		return fmt.Errorf("%w (max %d characters)", ErrNameTooLong, MaxCategoryNameLen)
	}
	if !hexColor.MatchString(c.Color) {
		return ErrInvalidColor
	}
	if utf8.RuneCountInString(c.Icon) > MaxCategoryIconLen {
		return ErrInvalidIcon
	}
	return nil
}

// WithDefaults fills the display fields the same way a freshly created
// category row would.
func (c Category) WithDefaults() Category {
	if c.Color == "" {
		c.Color = DefaultCategoryColor
	}
	if c.Icon == "" {
		c.Icon = DefaultCategoryIcon
	}
	return c
}

func (t Transaction) Validate() error {
	name := strings.TrimSpace(t.Name)
	if name == "" {
		return ErrEmptyName
	}
	if utf8.RuneCountInString(name) > MaxTransactionNameLen {
		return fmt.Errorf("%w (max %d characters)", ErrNameTooLong, MaxTransactionNameLen)
	}
	if !t.Type.Valid() {
		return ErrInvalidType
	}
	if t.CategoryID <= 0 {
		return ErrMissingCategory
	}
	if err := ValidateAmount(t.Amount); err != nil {
		return err
	}
	return nil
}

// SignedAmount returns the amount with polarity applied: negative for
// expenses, positive for income. The stored sign is ignored.
func (t Transaction) SignedAmount() decimal.Decimal {
	abs := t.Amount.Abs()
	if t.Type == Expense {
		return abs.Neg()
	}
	return abs
}

func (t Transaction) String() string {
	return fmt.Sprintf("%s - $%s (%s)", t.Name, t.Amount.StringFixed(2), t.Type)
}
