package parser

import (
	"strings"

	"github.com/insightdelivered/statement-extractor/internal/models"
)

// Description cues for money coming in. Checked before outflow cues, so
// "eDeposit" or "Zelle From" always wins.
var inflowKeywords = []string{
	"deposit",
	"edeposit",
	"zelle from",
	"refund",
	"interest",
	"credit",
}

// Description cues for money going out.
var outflowKeywords = []string{
	"purchase",
	"payment",
	"zelle to",
	"withdrawal",
	"fee",
	"debit",
	"transfer debit",
	// Substring match, so "position" reads as an outflow too.
	"pos",
}

// NormalizeSigns assigns the final polarity of each amount from its
// description. Descriptions with no known cue keep the sign the parser gave
// them. This is a heuristic and can misread phrasing it has not seen.
func NormalizeSigns(transactions []models.Transaction) []models.Transaction {
	out := make([]models.Transaction, len(transactions))
	for i, txn := range transactions {
		switch Polarity(txn.Description) {
		case Inflow:
			txn.Amount = txn.Amount.Abs()
		case Outflow:
			txn.Amount = txn.Amount.Abs().Neg()
		}
		out[i] = txn
	}
	return out
}

// Direction is the money flow implied by a description.
type Direction int

const (
	Unknown Direction = iota
	Inflow
	Outflow
)

// Polarity classifies a description by keyword, inflow cues first.
func Polarity(description string) Direction {
	d := strings.ToLower(description)
	if containsAny(d, inflowKeywords) {
		return Inflow
	}
	if containsAny(d, outflowKeywords) {
		return Outflow
	}
	return Unknown
}

func containsAny(text string, needles []string) bool {
	for _, needle := range needles {
		if strings.Contains(text, needle) {
			return true
		}
	}
	return false
}
