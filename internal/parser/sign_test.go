package parser

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/insightdelivered/statement-extractor/internal/models"
)

func TestNormalizeSigns(t *testing.T) {
	tests := []struct {
		description string
		amount      string
		expected    string
	}{
		{"eDeposit IN Branch/Store 03/04/24", "-500.00", "500.00"},
		{"Purchase authorized on 03/02 Amazon", "25.46", "-25.46"},
		{"Zelle From Jane Doe on 03/05 Ref # abc", "-40.00", "40.00"},
		{"Zelle to John Smith on 03/06 Ref # xyz", "40.00", "-40.00"},
		{"Mobile Check 1234", "-12.00", "-12.00"},
		{"Mobile Check 1234", "12.00", "12.00"},
		{"Interest Payment", "-0.12", "0.12"},
		{"Monthly Service Fee", "10.00", "-10.00"},
		{"Pos 0304 Corner Store", "7.25", "-7.25"},
		{"Position adjustment", "7.25", "-7.25"},
		{"ATM Withdrawal authorized on 03/04", "100.00", "-100.00"},
		{"Recurring Transfer Debit to Savings", "50.00", "-50.00"},
		{"Amazon Refund", "-19.99", "19.99"},
	}

	for _, tt := range tests {
		t.Run(tt.description, func(t *testing.T) {
			in := []models.Transaction{{
				Date:        "2024-03-04",
				Description: tt.description,
				Amount:      decimal.RequireFromString(tt.amount),
			}}
			got := NormalizeSigns(in)
			if got[0].Amount.StringFixed(2) != tt.expected {
				t.Errorf("got %s, want %s", got[0].Amount.StringFixed(2), tt.expected)
			}
		})
	}
}

func TestNormalizeSigns_DoesNotModifyInput(t *testing.T) {
	in := []models.Transaction{{Description: "Purchase", Amount: decimal.RequireFromString("1.00")}}
	out := NormalizeSigns(in)

	if in[0].Amount.StringFixed(2) != "1.00" {
		t.Errorf("input changed: got %s", in[0].Amount.StringFixed(2))
	}
	if out[0].Amount.StringFixed(2) != "-1.00" {
		t.Errorf("output: got %s, want -1.00", out[0].Amount.StringFixed(2))
	}

	again := NormalizeSigns(out)
	if !again[0].Amount.Equal(out[0].Amount) {
		t.Errorf("second pass changed amount: got %s", again[0].Amount)
	}
}

func TestPolarity(t *testing.T) {
	tests := []struct {
		input    string
		expected Direction
	}{
		{"Direct Deposit Payroll", Inflow},
		{"Credit Card Payment", Inflow},
		{"Bill Payment", Outflow},
		{"pos 1234", Outflow},
		{"Check 101", Unknown},
		{"", Unknown},
	}

	for _, tt := range tests {
		if got := Polarity(tt.input); got != tt.expected {
			t.Errorf("Polarity(%q): got %d, want %d", tt.input, got, tt.expected)
		}
	}
}
