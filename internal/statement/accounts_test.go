package statement

import (
	"testing"

	"github.com/insightdelivered/statement-extractor/internal/models"
)

func TestResolveAccountName(t *testing.T) {
	header := func(s string) *string { return &s }

	tests := []struct {
		name     string
		section  models.TableSection
		expected string
	}{
		{
			name: "generic header, savings context",
			section: models.TableSection{
				HeaderLine:   header("Date Number Description Deposits/Additions"),
				ContextLines: []string{"Way2Save Savings", "Transaction history"},
			},
			expected: "Savings",
		},
		{
			name: "generic header, checking context",
			section: models.TableSection{
				HeaderLine:   header("Date Description Amount"),
				ContextLines: []string{"Everyday CHECKING"},
			},
			expected: "Checking",
		},
		{
			name: "savings wins over checking",
			section: models.TableSection{
				HeaderLine:   header("Date Description"),
				ContextLines: []string{"Everyday Checking", "Linked savings account"},
			},
			expected: "Savings",
		},
		{
			name: "generic header, no cue",
			section: models.TableSection{
				HeaderLine:   header("Date Description"),
				ContextLines: []string{"Transaction history"},
			},
			expected: "Business",
		},
		{
			name: "descriptive header is the name",
			section: models.TableSection{
				HeaderLine:   header("  Date of Platinum Card activity  "),
				ContextLines: []string{"Everyday Checking"},
			},
			expected: "Date of Platinum Card activity",
		},
		{
			name: "missing header uses context",
			section: models.TableSection{
				ContextLines: []string{"Way2Save Savings"},
			},
			expected: "Savings",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ResolveAccountName(tt.section, "Business"); got != tt.expected {
				t.Errorf("got %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestFindLast4(t *testing.T) {
	tests := []struct {
		name     string
		lines    []string
		expected string // empty = nil
	}{
		{"plain number", []string{"Account number: 1234567890"}, "7890"},
		{"masked number", []string{"Account Number XXXXXX4321"}, "4321"},
		{"dashed number", []string{"account number: 123-456-9876 page 1"}, "9876"},
		{"nearest line wins", []string{"Account number: 1111111111", "Account number: 2222222222"}, "2222"},
		{"no account number", []string{"Everyday Checking", "Page 1 of 4"}, ""},
		{"no context", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FindLast4(tt.lines)
			switch {
			case tt.expected == "" && got != nil:
				t.Errorf("got %q, want nil", *got)
			case tt.expected != "" && got == nil:
				t.Errorf("got nil, want %q", tt.expected)
			case tt.expected != "" && *got != tt.expected:
				t.Errorf("got %q, want %q", *got, tt.expected)
			}
		})
	}
}
