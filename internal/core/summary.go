package core

import "github.com/shopspring/decimal"

// CategoryTotal is an amount aggregated by category, carrying the colour the
// dashboard chart uses for it.
type CategoryTotal struct {
	CategoryID int64
	Name       string
	Color      string
	Amount     decimal.Decimal
}

// TransactionWithCategory is a transaction joined with the display fields of
// its category.
type TransactionWithCategory struct {
	Transaction
	CategoryName  string `json:"category_name"`
	CategoryColor string `json:"category_color"`
	CategoryIcon  string `json:"category_icon"`
}
