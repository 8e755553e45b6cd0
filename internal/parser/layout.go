package parser

import (
	"math"
	"sort"
	"strings"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/insightdelivered/statement-extractor/internal/models"
)

// ColumnBands are the horizontal ranges (by word left edge, in points) that
// hold each field of a transaction row. Lower bounds are inclusive, upper
// bounds exclusive.
type ColumnBands struct {
	DateMax         float64
	DescriptionMin  float64
	DescriptionMax  float64
	AdditionsMin    float64
	AdditionsMax    float64
	SubtractionsMin float64
	SubtractionsMax float64
	BalanceMin      float64
}

// LayoutConfig tunes the coordinate strategy to a page geometry.
type LayoutConfig struct {
	Bands ColumnBands
	// RowTolerance is the largest top-coordinate difference between words
	// of the same row.
	RowTolerance float64
	// AnchorMaxLeft bounds where the "Date" header and "Ending" footer
	// tokens may sit to count as table anchors.
	AnchorMaxLeft float64
	// HeaderOffset is added below the header anchor, FooterOffset is kept
	// above the footer anchor.
	HeaderOffset float64
	FooterOffset float64
}

// DefaultLayoutConfig is calibrated to the 612pt-wide Wells Fargo statement.
func DefaultLayoutConfig() LayoutConfig {
	return LayoutConfig{
		Bands: ColumnBands{
			DateMax:         100,
			DescriptionMin:  100,
			DescriptionMax:  400,
			AdditionsMin:    400,
			AdditionsMax:    455,
			SubtractionsMin: 455,
			SubtractionsMax: 525,
			BalanceMin:      525,
		},
		RowTolerance:  2.0,
		AnchorMaxLeft: 120,
		HeaderOffset:  6,
		FooterOffset:  2,
	}
}

// LayoutParser recovers transactions from positioned words, assigning
// fields by column band. The sign comes from the column: additions are
// inflows, subtractions are outflows.
type LayoutParser struct {
	Config LayoutConfig
	Logger zerolog.Logger
}

// row is one visual line of words, sorted left to right.
type row []models.Word

// pendingTxn accumulates a transaction across its wrapped rows.
type pendingTxn struct {
	date    string // empty when the printed date was not a calendar date
	desc    []string
	amount  decimal.NullDecimal
	balance decimal.NullDecimal
}

// Parse extracts transactions from the given pages of doc, in page order.
// Balances missing on a row are filled from the nearest earlier row across
// all pages, since the statement only prints the daily ending balance.
func (p *LayoutParser) Parse(doc *models.Document, pageIndexes []int, year int) []models.Transaction {
	var transactions []models.Transaction

	for _, pi := range pageIndexes {
		if pi < 0 || pi >= len(doc.Pages) {
			p.Logger.Warn().Int("page", pi).Int("pages", len(doc.Pages)).Msg("skipping page outside document")
			continue
		}
		transactions = append(transactions, p.parsePage(doc.Pages[pi], year)...)
	}

	return ForwardFill(transactions)
}

func (p *LayoutParser) parsePage(page models.Page, year int) []models.Transaction {
	var transactions []models.Transaction
	var current *pendingTxn

	flush := func() {
		if current != nil && current.date != "" && current.amount.Valid {
			transactions = append(transactions, models.Transaction{
				Date:        current.date,
				Description: joinNonEmpty(current.desc),
				Amount:      current.amount.Decimal,
				Balance:     current.balance,
			})
		} else if current != nil {
			p.Logger.Debug().Int("page", page.Index).Strs("description", current.desc).Msg("dropping row without date or amount")
		}
		current = nil
	}

	bands := p.Config.Bands
	top, bottom := p.tableWindow(page)

	for _, r := range groupRows(wordsInWindow(page.Words, top, bottom), p.Config.RowTolerance) {
		var dateTokens, descTokens, addTokens, subTokens, balTokens []string
		for _, w := range r {
			switch {
			case w.Left < bands.DateMax:
				dateTokens = append(dateTokens, w.Text)
			case w.Left >= bands.DescriptionMin && w.Left < bands.DescriptionMax:
				descTokens = append(descTokens, w.Text)
			case w.Left >= bands.AdditionsMin && w.Left < bands.AdditionsMax:
				addTokens = append(addTokens, w.Text)
			case w.Left >= bands.SubtractionsMin && w.Left < bands.SubtractionsMax:
				subTokens = append(subTokens, w.Text)
			case w.Left >= bands.BalanceMin:
				balTokens = append(balTokens, w.Text)
			}
		}

		var m []string
		if len(dateTokens) > 0 {
			m = dateTokenPattern.FindStringSubmatch(dateTokens[0])
		}

		if m == nil {
			// Wrapped merchant or address text of the open transaction.
			if current != nil && current.date != "" && len(descTokens) > 0 {
				current.desc = append(current.desc, strings.Join(descTokens, " "))
			}
			continue
		}

		flush()
		current = &pendingTxn{}
		if date, ok := isoDateFromMonthDay(m[1], m[2], year); ok {
			current.date = date
		} else {
			p.Logger.Debug().Str("token", dateTokens[0]).Int("year", year).Msg("invalid row date")
		}
		if len(descTokens) > 0 {
			current.desc = append(current.desc, strings.Join(descTokens, " "))
		}

		if v, ok := lastMoneyCell(addTokens); ok {
			current.amount = decimal.NewNullDecimal(v)
		} else if v, ok := lastMoneyCell(subTokens); ok {
			current.amount = decimal.NewNullDecimal(v.Neg())
		}
		if current.amount.Valid && current.amount.Decimal.IsZero() {
			current.amount = decimal.NullDecimal{}
		}
		if v, ok := lastMoneyCell(balTokens); ok {
			current.balance = decimal.NewNullDecimal(v)
		}
	}
	flush()

	return transactions
}

// tableWindow returns the vertical range holding the table rows: just below
// the "Date" column header and just above the "Ending balance" footer.
func (p *LayoutParser) tableWindow(page models.Page) (float64, float64) {
	top := 0.0
	if y, ok := minAnchorTop(page.Words, "Date", p.Config.AnchorMaxLeft, math.Inf(-1)); ok {
		top = y + p.Config.HeaderOffset
	}

	bottom := page.Height
	if bottom <= 0 {
		bottom = math.Inf(1)
	}
	if y, ok := minAnchorTop(page.Words, "Ending", p.Config.AnchorMaxLeft, top); ok {
		bottom = y - p.Config.FooterOffset
	}
	return top, bottom
}

func minAnchorTop(words []models.Word, text string, maxLeft, below float64) (float64, bool) {
	found := false
	best := 0.0
	for _, w := range words {
		if w.Text != text || w.Left >= maxLeft || w.Top <= below {
			continue
		}
		if !found || w.Top < best {
			best = w.Top
			found = true
		}
	}
	return best, found
}

func wordsInWindow(words []models.Word, top, bottom float64) []models.Word {
	var out []models.Word
	for _, w := range words {
		if w.Top >= top && w.Top <= bottom {
			out = append(out, w)
		}
	}
	return out
}

// groupRows clusters words into rows by top coordinate. A word joins the
// current row when its top is within tolerance of the row's first word.
func groupRows(words []models.Word, tolerance float64) []row {
	if len(words) == 0 {
		return nil
	}

	sorted := append([]models.Word(nil), words...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Top != sorted[j].Top {
			return sorted[i].Top < sorted[j].Top
		}
		return sorted[i].Left < sorted[j].Left
	})

	var rows []row
	current := row{sorted[0]}
	anchor := sorted[0].Top

	for _, w := range sorted[1:] {
		if math.Abs(w.Top-anchor) <= tolerance {
			current = append(current, w)
			continue
		}
		rows = append(rows, sortByLeft(current))
		current = row{w}
		anchor = w.Top
	}
	rows = append(rows, sortByLeft(current))

	return rows
}

func sortByLeft(r row) row {
	sort.SliceStable(r, func(i, j int) bool {
		return r[i].Left < r[j].Left
	})
	return r
}

func lastMoneyCell(tokens []string) (decimal.Decimal, bool) {
	if len(tokens) == 0 {
		return decimal.Zero, false
	}
	return parseMoneyCell(tokens[len(tokens)-1])
}

func joinNonEmpty(parts []string) string {
	var kept []string
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			kept = append(kept, s)
		}
	}
	return strings.Join(kept, " ")
}
