package statement

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/insightdelivered/statement-extractor/internal/models"
)

// reconcileTolerance is the largest accepted rounding difference.
var reconcileTolerance = decimal.RequireFromString("0.01")

// CheckAccount validates one extracted account: every balance is set, no
// amount is zero, dates are ISO shaped and the beginning balance implied by
// the first row plus all amounts equals the last balance.
func CheckAccount(acc models.Account) error {
	if len(acc.Transactions) == 0 {
		return fmt.Errorf("account %s: no transactions", acc.Name)
	}

	var errs []error
	for i, txn := range acc.Transactions {
		if !txn.Balance.Valid {
			errs = append(errs, fmt.Errorf("transaction %d (%s): balance not resolved", i, txn.Date))
		}
		if txn.Amount.IsZero() {
			errs = append(errs, fmt.Errorf("transaction %d (%s): zero amount", i, txn.Date))
		}
		if !isISODate(txn.Date) {
			errs = append(errs, fmt.Errorf("transaction %d: malformed date %q", i, txn.Date))
		}
	}

	first := acc.Transactions[0]
	last := acc.Transactions[len(acc.Transactions)-1]
	if first.Balance.Valid && last.Balance.Valid {
		begin := first.Balance.Decimal.Sub(first.Amount)
		expected := begin.Add(SumAmounts(acc.Transactions)).Round(2)
		end := last.Balance.Decimal.Round(2)
		if expected.Sub(end).Abs().GreaterThan(reconcileTolerance) {
			errs = append(errs, fmt.Errorf("reconciliation failed: begin=%s sum=%s expected_end=%s end=%s",
				begin.StringFixed(2), SumAmounts(acc.Transactions).StringFixed(2), expected.StringFixed(2), end.StringFixed(2)))
		}
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("account %s: %w", acc.Name, err)
	}
	return nil
}

// SumAmounts adds up the signed amounts of txns.
func SumAmounts(txns []models.Transaction) decimal.Decimal {
	sum := decimal.Zero
	for _, t := range txns {
		sum = sum.Add(t.Amount)
	}
	return sum
}

func isISODate(s string) bool {
	if len(s) != 10 || s[4] != '-' || s[7] != '-' {
		return false
	}
	for i, c := range s {
		if i == 4 || i == 7 {
			continue
		}
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// BalanceMark is a balance printed in the statement summary.
type BalanceMark struct {
	Date   string          `json:"date"` // M/D as printed
	Amount decimal.Decimal `json:"amount"`
}

// Summary holds the beginning and ending balances printed for one account.
type Summary struct {
	Beginning *BalanceMark `json:"beginning,omitempty"`
	Ending    *BalanceMark `json:"ending,omitempty"`
}

var (
	beginningBalancePattern = regexp.MustCompile(`(?i)Beginning balance on\s+(\d{1,2}/\d{1,2})\s+\$?([0-9,]+\.\d{2})`)
	endingBalancePattern    = regexp.MustCompile(`(?i)Ending balance on\s+(\d{1,2}/\d{1,2})\s+\$?([0-9,]+\.\d{2})`)
)

// StatementSummaries collects the printed beginning and ending balances per
// account. A page is attributed to Savings when it mentions savings, else to
// Checking. The first value found for an account wins.
func StatementSummaries(doc *models.Document) map[string]Summary {
	out := map[string]Summary{
		"Checking": {},
		"Savings":  {},
	}

	for _, page := range doc.Pages {
		if strings.TrimSpace(page.Text) == "" {
			continue
		}
		acct := "Checking"
		if strings.Contains(strings.ToLower(page.Text), "savings") {
			acct = "Savings"
		}

		s := out[acct]
		if s.Beginning == nil {
			s.Beginning = findBalanceMark(beginningBalancePattern, page.Text)
		}
		if s.Ending == nil {
			s.Ending = findBalanceMark(endingBalancePattern, page.Text)
		}
		out[acct] = s
	}

	return out
}

func findBalanceMark(re *regexp.Regexp, text string) *BalanceMark {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	amount, err := decimal.NewFromString(strings.ReplaceAll(m[2], ",", ""))
	if err != nil {
		return nil
	}
	return &BalanceMark{Date: m[1], Amount: amount}
}

// Verification compares one extracted account with its printed summary.
// Matched is true when both summary balances were found and beginning plus
// the sum of amounts equals the printed ending balance.
type Verification struct {
	Account      string              `json:"account"`
	Transactions int                 `json:"transactions"`
	Sum          decimal.Decimal     `json:"sum"`
	LastBalance  decimal.NullDecimal `json:"last_balance"`
	Summary      Summary             `json:"summary"`
	ExpectedEnd  decimal.NullDecimal `json:"expected_end"`
	Matched      bool                `json:"matched"`
	Problem      string              `json:"problem,omitempty"`
}

// Verify checks every account of result against the printed summaries and
// the internal accounting invariant.
func Verify(result *models.ExtractionResult, summaries map[string]Summary) []Verification {
	out := make([]Verification, 0, len(result.Accounts))
	for _, acc := range result.Accounts {
		v := Verification{
			Account:      acc.Name,
			Transactions: len(acc.Transactions),
			Sum:          SumAmounts(acc.Transactions).Round(2),
			Summary:      summaries[acc.Name],
		}
		if n := len(acc.Transactions); n > 0 {
			v.LastBalance = acc.Transactions[n-1].Balance
		}
		if v.Summary.Beginning != nil && v.Summary.Ending != nil {
			expected := v.Summary.Beginning.Amount.Add(v.Sum).Round(2)
			v.ExpectedEnd = decimal.NewNullDecimal(expected)
			v.Matched = expected.Equal(v.Summary.Ending.Amount.Round(2))
		}
		if err := CheckAccount(acc); err != nil {
			v.Problem = err.Error()
		}
		out = append(out, v)
	}
	return out
}
