package writer

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/insightdelivered/statement-extractor/internal/models"
)

// JSONWriter writes an extraction result as a JSON document with stable
// snake_case field names. Money is written as numbers with two decimals.
type JSONWriter struct {
	Indent bool
}

type resultJSON struct {
	Bank          string        `json:"bank"`
	StatementYear *int          `json:"statement_year"`
	Accounts      []accountJSON `json:"accounts"`
}

type accountJSON struct {
	Name         string            `json:"name"`
	Last4        *string           `json:"last4"`
	Currency     string            `json:"currency"`
	Transactions []transactionJSON `json:"transactions"`
}

type transactionJSON struct {
	Date        string       `json:"date"`
	Description string       `json:"description"`
	Amount      json.Number  `json:"amount"`
	Balance     *json.Number `json:"balance"`
}

// WriteToFile writes the result to a JSON file at the given path.
func (w *JSONWriter) WriteToFile(path string, result *models.ExtractionResult) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file %q: %w", path, err)
	}
	defer f.Close()

	return w.Write(f, result)
}

// Write encodes the result to out.
func (w *JSONWriter) Write(out io.Writer, result *models.ExtractionResult) error {
	enc := json.NewEncoder(out)
	if w.Indent {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(toJSON(result)); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

func toJSON(result *models.ExtractionResult) resultJSON {
	doc := resultJSON{
		Bank:          result.Bank,
		StatementYear: result.StatementYear,
		Accounts:      make([]accountJSON, 0, len(result.Accounts)),
	}

	for _, acc := range result.Accounts {
		a := accountJSON{
			Name:         acc.Name,
			Last4:        acc.Last4,
			Currency:     acc.Currency,
			Transactions: make([]transactionJSON, 0, len(acc.Transactions)),
		}
		for _, txn := range acc.Transactions {
			t := transactionJSON{
				Date:        txn.Date,
				Description: txn.Description,
				Amount:      json.Number(formatAmount(txn.Amount)),
			}
			if txn.Balance.Valid {
				b := json.Number(formatBalance(txn.Balance))
				t.Balance = &b
			}
			a.Transactions = append(a.Transactions, t)
		}
		doc.Accounts = append(doc.Accounts, a)
	}

	return doc
}
