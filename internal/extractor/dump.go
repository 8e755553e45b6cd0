package extractor

import (
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/insightdelivered/statement-extractor/internal/models"
)

var (
	dumpDatePattern  = regexp.MustCompile(`^\d{1,2}/\d{1,2}$`)
	dumpMoneyPattern = regexp.MustCompile(`^[\d,]+\.\d{2}$`)
)

// DumpPage writes a page's numbered text lines followed by the positions of
// the words that drive column detection: table anchors, dates and amounts.
// It is a calibration aid for the coordinate strategy.
func DumpPage(w io.Writer, page models.Page) error {
	fmt.Fprintf(w, "=== page %d (%.0fx%.0f) ===\n", page.Index, page.Width, page.Height)
	for i, line := range strings.Split(page.Text, "\n") {
		fmt.Fprintf(w, "%3d: %s\n", i, line)
	}

	fmt.Fprintln(w, "--- words ---")
	for _, word := range page.Words {
		if !interestingWord(word.Text) {
			continue
		}
		if _, err := fmt.Fprintf(w, "%-14s left=%6.1f right=%6.1f top=%6.1f bottom=%6.1f\n",
			word.Text, word.Left, word.Right, word.Top, word.Bottom); err != nil {
			return err
		}
	}
	return nil
}

func interestingWord(text string) bool {
	switch text {
	case "Date", "Ending", "Totals":
		return true
	}
	return dumpDatePattern.MatchString(text) || dumpMoneyPattern.MatchString(text)
}
