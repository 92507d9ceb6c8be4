package entity

// ExpenseRecord is the structured result of one receipt extraction. All four
// fields are always present; Amount is never negative and Category is never
// empty (unrecognized input collapses to "Other" before a record is built).
type ExpenseRecord struct {
	Amount      float64 `json:"amount"`
	Category    string  `json:"category"`
	Vendor      string  `json:"vendor"`
	Description string  `json:"description"`
}

// Expense is a stored ledger row.
type Expense struct {
	ID          string  `json:"id"`
	Amount      float64 `json:"amount"`
	Category    string  `json:"category"`
	Vendor      string  `json:"vendor"`
	Date        string  `json:"date"` // YYYY-MM-DD
	Description string  `json:"description"`
	PhotoURL    string  `json:"photoUrl"`
	CreatedAt   string  `json:"createdAt"`
}

// ExpenseStats aggregates the ledger for the dashboard.
type ExpenseStats struct {
	Total        float64            `json:"total"`
	MonthlyTotal float64            `json:"monthlyTotal"`
	ByCategory   map[string]float64 `json:"byCategory"`
	ExpenseCount int                `json:"expenseCount"`
}
