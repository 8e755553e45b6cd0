package parser

import (
	"github.com/shopspring/decimal"

	"github.com/insightdelivered/statement-extractor/internal/models"
)

// ForwardFill sets every missing balance to the nearest earlier known
// balance. Transactions before the first known balance stay unset so the
// gap remains visible to callers.
func ForwardFill(transactions []models.Transaction) []models.Transaction {
	out := make([]models.Transaction, len(transactions))
	var last decimal.NullDecimal
	for i, txn := range transactions {
		if txn.Balance.Valid {
			last = txn.Balance
		} else {
			txn.Balance = last
		}
		out[i] = txn
	}
	return out
}
