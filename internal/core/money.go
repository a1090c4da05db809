package core

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Amounts are persisted as integer cents so that SUM() in the database is
// exact on every backend.

var hundred = decimal.NewFromInt(100)

// maxAmount mirrors a DECIMAL(10,2) column.
var maxAmount = decimal.RequireFromString("99999999.99")

// ValidateAmount enforces the non-negative, two-place shape of a stored amount.
func ValidateAmount(d decimal.Decimal) error {
	if d.IsNegative() {
		return fmt.Errorf("%w: must not be negative", ErrInvalidAmount)
	}
	if d.Exponent() < -2 && !d.Equal(d.Round(2)) {
		return fmt.Errorf("%w: at most two decimal places", ErrInvalidAmount)
	}
	if d.GreaterThan(maxAmount) {
		return fmt.Errorf("%w: exceeds %s", ErrInvalidAmount, maxAmount.StringFixed(2))
	}
	return nil
}

// ParseAmount parses a decimal string such as "85.50".
func ParseAmount(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	if err := ValidateAmount(d); err != nil {
		return decimal.Zero, err
	}
	return d, nil
}

// CentsToDecimal converts stored cents back to a two-place decimal.
func CentsToDecimal(cents int64) decimal.Decimal {
	return decimal.New(cents, -2)
}

// DecimalToCents converts an amount to cents. Values with more than two
// decimal places are rejected rather than rounded.
func DecimalToCents(d decimal.Decimal) (int64, error) {
	scaled := d.Mul(hundred)
	if !scaled.IsInteger() {
		return 0, fmt.Errorf("%w: %s has more than two decimal places", ErrInvalidAmount, d.String())
	}
	return scaled.IntPart(), nil
}
