package statement

import (
	"regexp"
	"strings"

	"github.com/insightdelivered/statement-extractor/internal/models"
)

// ResolveAccountName names the account a section belongs to. A generic
// column header ("Date ... Description ...") says nothing about the account,
// so the context above it is searched for "savings" then "checking".
func ResolveAccountName(section models.TableSection, fallback string) string {
	header := ""
	if section.HeaderLine != nil {
		header = strings.TrimSpace(*section.HeaderLine)
	}

	lower := strings.ToLower(header)
	if header != "" && !(strings.Contains(lower, "date") && strings.Contains(lower, "description")) {
		return header
	}

	ctx := strings.ToLower(strings.Join(section.ContextLines, " "))
	switch {
	case strings.Contains(ctx, "savings"):
		return "Savings"
	case strings.Contains(ctx, "checking"):
		return "Checking"
	default:
		return fallback
	}
}

// accountNumberPattern matches "Account number: 1234567890" and masked
// variants such as "Account number: XXXXXX1234".
var accountNumberPattern = regexp.MustCompile(`(?i)account\s+number:?\s*[x*\d\- ]*?(\d{4})\b`)

// FindLast4 returns the last four digits of the account number printed in
// the section context, if any.
func FindLast4(contextLines []string) *string {
	for i := len(contextLines) - 1; i >= 0; i-- {
		if m := accountNumberPattern.FindStringSubmatch(contextLines[i]); m != nil {
			last4 := m[1]
			return &last4
		}
	}
	return nil
}
