package parser

import (
	"strings"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/insightdelivered/statement-extractor/internal/models"
)

// LineParser recovers transactions from the text lines of a segmented
// section. A line starting with M/D opens a block; following lines without a
// date continue its description.
//
// Wells Fargo prints the amount and, on some rows, the running balance at the
// end of the block's first line:
//
//	3/4 Purchase authorized on 03/01 Amazon.com 25.46 1,040.00
//	    Amzn.com/Bill WA S384060683871190 Card 1234
type LineParser struct {
	Logger zerolog.Logger
}

// Parse turns lines into transactions using year for month/day dates.
// Malformed blocks are dropped; parsing never fails as a whole.
func (p *LineParser) Parse(lines []string, year int) []models.Transaction {
	var transactions []models.Transaction
	var lastBalance decimal.NullDecimal

	for _, block := range splitBlocks(lines) {
		txn, ok := p.parseBlock(block, year)
		if !ok {
			continue
		}

		if txn.Balance.Valid {
			lastBalance = txn.Balance
		} else {
			txn.Balance = lastBalance
		}
		transactions = append(transactions, txn)
	}

	return transactions
}

// splitBlocks groups lines into blocks. Lines before the first dated line
// belong to no block and are ignored.
func splitBlocks(lines []string) [][]string {
	var blocks [][]string
	var current []string

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if datePrefixPattern.MatchString(line) {
			if current != nil {
				blocks = append(blocks, current)
			}
			current = []string{line}
			continue
		}

		if current != nil {
			current = append(current, line)
		}
	}

	if current != nil {
		blocks = append(blocks, current)
	}
	return blocks
}

func (p *LineParser) parseBlock(block []string, year int) (models.Transaction, bool) {
	first := block[0]

	m := datePrefixPattern.FindStringSubmatch(first)
	if m == nil {
		return models.Transaction{}, false
	}
	date, ok := isoDateFromMonthDay(m[1], m[2], year)
	if !ok {
		p.Logger.Debug().Str("line", first).Int("year", year).Msg("dropping block with invalid date")
		return models.Transaction{}, false
	}

	tokens := moneyTokens(first)
	var amountToken, balanceToken string
	switch {
	case len(tokens) >= 2:
		amountToken = tokens[len(tokens)-2]
		balanceToken = tokens[len(tokens)-1]
	case len(tokens) == 1:
		amountToken = tokens[0]
	default:
		p.Logger.Debug().Str("line", first).Msg("dropping block without amount")
		return models.Transaction{}, false
	}

	amount, err := parseMoney(amountToken)
	if err != nil {
		p.Logger.Debug().Err(err).Str("token", amountToken).Msg("dropping block with bad amount")
		return models.Transaction{}, false
	}
	if amount.IsZero() {
		p.Logger.Debug().Str("line", first).Msg("dropping block with zero amount")
		return models.Transaction{}, false
	}

	txn := models.Transaction{
		Date:        date,
		Description: blockDescription(block),
		Amount:      amount,
	}

	if balanceToken != "" {
		if bal, err := parseMoney(balanceToken); err == nil {
			txn.Balance = decimal.NewNullDecimal(bal)
		}
	}

	return txn, true
}

func blockDescription(block []string) string {
	parts := []string{cleanDescription(block[0])}
	for _, line := range block[1:] {
		parts = append(parts, strings.TrimSpace(line))
	}
	return strings.TrimSpace(strings.Join(parts, " "))
}
