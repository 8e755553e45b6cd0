package parser

import (
	"strings"

	"github.com/insightdelivered/statement-extractor/internal/models"
)

const (
	historyMarker = "Transaction history"
	// contextLineCount is how many lines before the data are kept so callers
	// can tell a Checking section from a Savings one.
	contextLineCount = 40
)

// Segment returns one TableSection per page that carries a transaction
// history table. Pages without the marker, the column header or any data
// contribute nothing.
func Segment(doc *models.Document) []models.TableSection {
	var sections []models.TableSection
	for _, page := range doc.Pages {
		if section, ok := SegmentPage(page.Index, page.Text); ok {
			sections = append(sections, section)
		}
	}
	return sections
}

// SegmentPage locates the transaction history region in one page's text.
func SegmentPage(pageIndex int, text string) (models.TableSection, bool) {
	lines := splitLines(text)

	marker := -1
	for i, line := range lines {
		if strings.Contains(line, historyMarker) {
			marker = i
			break
		}
	}
	if marker < 0 {
		return models.TableSection{}, false
	}

	start := -1
	var header string
	for i := marker + 1; i < len(lines); i++ {
		if strings.HasPrefix(lines[i], "Date") {
			header = lines[i]
			start = i + 1
			break
		}
	}
	if start < 0 {
		return models.TableSection{}, false
	}

	end := len(lines)
	for i := start; i < len(lines); i++ {
		if isSectionEnd(lines[i]) {
			end = i
			break
		}
	}

	contextStart := start - contextLineCount
	if contextStart < 0 {
		contextStart = 0
	}

	return models.TableSection{
		PageIndex:    pageIndex,
		ContextLines: append([]string(nil), lines[contextStart:start]...),
		HeaderLine:   &header,
		Lines:        append([]string(nil), lines[start:end]...),
	}, true
}

// HistoryPages returns the indexes of pages mentioning the transaction
// history marker anywhere in their text.
func HistoryPages(doc *models.Document) []int {
	var pages []int
	for _, page := range doc.Pages {
		if strings.Contains(page.Text, historyMarker) {
			pages = append(pages, page.Index)
		}
	}
	return pages
}

func isSectionEnd(line string) bool {
	return strings.HasPrefix(line, "Totals") || strings.HasPrefix(line, "Ending balance on")
}

func splitLines(text string) []string {
	raw := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	lines := make([]string, len(raw))
	for i, line := range raw {
		lines[i] = strings.TrimSpace(line)
	}
	return lines
}
