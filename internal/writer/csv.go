package writer

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/insightdelivered/statement-extractor/internal/models"
)

// CSVWriter writes extracted transactions as one flat CSV table, one row per
// transaction, with the owning account in the first column.
type CSVWriter struct {
	IncludeHeader bool
}

// WriteToFile writes the result to a CSV file at the given path.
func (w *CSVWriter) WriteToFile(path string, result *models.ExtractionResult) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file %q: %w", path, err)
	}
	defer f.Close()

	return w.Write(f, result)
}

// Write writes the result in CSV format to the given writer.
func (w *CSVWriter) Write(out io.Writer, result *models.ExtractionResult) error {
	writer := csv.NewWriter(out)

	// Statement metadata as leading comment rows
	if w.IncludeHeader {
		if result.Bank != "" {
			writer.Write([]string{"# Bank", result.Bank})
		}
		if result.StatementYear != nil {
			writer.Write([]string{"# Statement Year", strconv.Itoa(*result.StatementYear)})
		}
	}

	header := []string{"Account", "Date", "Description", "Amount", "Balance"}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, acc := range result.Accounts {
		for _, txn := range acc.Transactions {
			row := []string{
				acc.Name,
				txn.Date,
				txn.Description,
				formatAmount(txn.Amount),
				formatBalance(txn.Balance),
			}
			if err := writer.Write(row); err != nil {
				return fmt.Errorf("failed to write CSV row: %w", err)
			}
		}
	}

	writer.Flush()
	return writer.Error()
}

func formatAmount(amount decimal.Decimal) string {
	return amount.StringFixed(2)
}

func formatBalance(balance decimal.NullDecimal) string {
	if !balance.Valid {
		return ""
	}
	return balance.Decimal.StringFixed(2)
}
