package seed

import (
	"github.com/shopspring/decimal"

	"finance-dashboard/internal/core"
)

// SampleTransaction names a catalog transaction by its category name; the
// category ID is resolved at seeding time.
type SampleTransaction struct {
	Name     string
	Amount   decimal.Decimal
	Category string
	Type     core.TransactionType
}

// Categories is the sample category catalog: 3 income, 6 expense.
var Categories = []core.Category{
	{Name: "Salary", Color: "#4CAF50", Icon: "💰", IsIncome: true},
	{Name: "Freelance", Color: "#2196F3", Icon: "💼", IsIncome: true},
	{Name: "Investment", Color: "#FF9800", Icon: "📈", IsIncome: true},

	{Name: "Food & Dining", Color: "#F44336", Icon: "🍽️", IsIncome: false},
	{Name: "Transportation", Color: "#9C27B0", Icon: "🚗", IsIncome: false},
	{Name: "Entertainment", Color: "#E91E63", Icon: "🎬", IsIncome: false},
	{Name: "Utilities", Color: "#607D8B", Icon: "⚡", IsIncome: false},
	{Name: "Shopping", Color: "#795548", Icon: "🛍️", IsIncome: false},
	{Name: "Healthcare", Color: "#3F51B5", Icon: "🏥", IsIncome: false},
}

// Transactions is the sample transaction catalog: 4 income, 11 expense.
var Transactions = []SampleTransaction{
	{"Monthly Salary", amount("3500.00"), "Salary", core.Income},
	{"Freelance Project", amount("850.00"), "Freelance", core.Income},
	{"Stock Dividends", amount("120.50"), "Investment", core.Income},
	{"Bonus Payment", amount("500.00"), "Salary", core.Income},

	{"Grocery Shopping", amount("85.50"), "Food & Dining", core.Expense},
	{"Gas Station", amount("45.00"), "Transportation", core.Expense},
	{"Netflix Subscription", amount("15.99"), "Entertainment", core.Expense},
	{"Electric Bill", amount("120.00"), "Utilities", core.Expense},
	{"Coffee Shop", amount("4.50"), "Food & Dining", core.Expense},
	{"Clothing Store", amount("89.99"), "Shopping", core.Expense},
	{"Doctor Visit", amount("150.00"), "Healthcare", core.Expense},
	{"Restaurant Dinner", amount("65.00"), "Food & Dining", core.Expense},
	{"Uber Ride", amount("12.50"), "Transportation", core.Expense},
	{"Movie Tickets", amount("24.00"), "Entertainment", core.Expense},
	{"Water Bill", amount("45.00"), "Utilities", core.Expense},
}

func amount(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
