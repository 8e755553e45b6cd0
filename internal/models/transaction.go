package models

import "github.com/shopspring/decimal"

// Transaction represents a single ledger entry recovered from a statement.
type Transaction struct {
	Date        string              `json:"date"` // YYYY-MM-DD
	Description string              `json:"description"`
	Amount      decimal.Decimal     `json:"amount"` // positive = inflow, negative = outflow
	Balance     decimal.NullDecimal `json:"balance"`
}

// HasBalance reports whether the running balance is known.
func (t Transaction) HasBalance() bool {
	return t.Balance.Valid
}

// Account is a named ledger within one statement. Transactions are kept in
// document order, which is chronological.
type Account struct {
	Name         string        `json:"name"`
	Last4        *string       `json:"last4"`
	Currency     string        `json:"currency"`
	Transactions []Transaction `json:"transactions"`
}

// ExtractionResult holds everything recovered from one statement document.
type ExtractionResult struct {
	Bank          string    `json:"bank"`
	StatementYear *int      `json:"statement_year"`
	Accounts      []Account `json:"accounts"`
}

// TransactionCount returns the number of transactions across all accounts.
func (r *ExtractionResult) TransactionCount() int {
	n := 0
	for _, a := range r.Accounts {
		n += len(a.Transactions)
	}
	return n
}
