package parser

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Date and money patterns found in Wells Fargo statements.
var (
	// M/D at the start of a line, e.g. "3/14 Purchase authorized on ..."
	datePrefixPattern = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})\b`)
	// A whole token in M/D form, as printed in the date column.
	dateTokenPattern = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})$`)
	// 1,234.56 style amounts. A leading digit is rejected in moneyTokens.
	moneyPattern = regexp.MustCompile(`\d{1,3}(?:,\d{3})*\.\d{2}`)
	// Strict column value: digits with exactly two decimals, separators removed.
	moneyCellPattern = regexp.MustCompile(`^\d+\.\d{2}$`)
	// Leading date of a block's first line.
	leadingDatePattern = regexp.MustCompile(`^\d{1,2}/\d{1,2}\s*`)
	// Up to two trailing amounts (amount, balance).
	trailingMoneyPattern = regexp.MustCompile(
		`\s+\d{1,3}(?:,\d{3})*\.\d{2}(?:\s+\d{1,3}(?:,\d{3})*\.\d{2})?\s*$`,
	)
)

const isoDate = "2006-01-02"

// moneyTokens returns every money-shaped token in line, left to right.
// A candidate directly preceded by a digit is not a token ("1234.56" yields
// nothing, "1234,567.89" yields "567.89").
func moneyTokens(line string) []string {
	var out []string
	for i := 0; i < len(line); {
		loc := moneyPattern.FindStringIndex(line[i:])
		if loc == nil {
			break
		}
		start, end := i+loc[0], i+loc[1]
		if start > 0 && isDigit(line[start-1]) {
			i = start + 1
			continue
		}
		out = append(out, line[start:end])
		i = end
	}
	return out
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

// parseMoney converts "1,234.56" to a decimal.
func parseMoney(s string) (decimal.Decimal, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return decimal.Zero, fmt.Errorf("empty amount")
	}
	return decimal.NewFromString(s)
}

// parseMoneyCell validates a column token. Anything other than a plain
// two-decimal number (after dropping thousands separators) is not a value.
func parseMoneyCell(s string) (decimal.Decimal, bool) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if !moneyCellPattern.MatchString(s) {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// isoDateFromMonthDay combines a "M"/"D" pair with year. ok is false when the
// result is not a real calendar date (2/30, 13/1, ...).
func isoDateFromMonthDay(month, day string, year int) (string, bool) {
	m, err := strconv.Atoi(month)
	if err != nil {
		return "", false
	}
	d, err := strconv.Atoi(day)
	if err != nil {
		return "", false
	}
	if m < 1 || m > 12 || d < 1 || d > 31 {
		return "", false
	}
	t := time.Date(year, time.Month(m), d, 0, 0, 0, 0, time.UTC)
	if t.Month() != time.Month(m) || t.Day() != d {
		return "", false
	}
	return t.Format(isoDate), true
}

// cleanDescription strips the leading date and the trailing amount/balance
// pair from a block's first line.
func cleanDescription(firstLine string) string {
	s := strings.TrimSpace(leadingDatePattern.ReplaceAllString(firstLine, ""))
	s = trailingMoneyPattern.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}
