package extractor

import (
	"math"
	"sort"
	"strings"
	"unicode"

	"github.com/ledongthuc/pdf"
	"golang.org/x/text/unicode/norm"

	"github.com/insightdelivered/statement-extractor/internal/models"
)

const (
	// wordGapFactor is the gap between glyphs, as a fraction of the font
	// size, above which a new word starts.
	wordGapFactor = 0.3
	// fallbackWordGap applies when the library reports no font size.
	fallbackWordGap = 3.0
	// estimatedAdvance is the glyph width, as a fraction of the font size,
	// assumed for fonts that carry no /Widths array.
	estimatedAdvance = 0.5
)

// buildRows groups glyphs into visual rows by baseline, top to bottom, and
// merges each row's glyphs into words. Coordinates are flipped so that the
// origin is the top-left corner of the page.
func buildRows(glyphs []pdf.Text, pageTop float64) [][]models.Word {
	rowMap := make(map[int][]pdf.Text)
	for _, g := range glyphs {
		if g.S == "" {
			continue
		}
		// Round Y to nearest integer to group into rows
		yKey := int(math.Round(g.Y))
		rowMap[yKey] = append(rowMap[yKey], g)
	}

	// PDF Y grows upwards, so the first row has the largest Y.
	yKeys := make([]int, 0, len(rowMap))
	for y := range rowMap {
		yKeys = append(yKeys, y)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(yKeys)))

	var rows [][]models.Word
	for _, y := range yKeys {
		row := rowMap[y]
		sort.SliceStable(row, func(a, b int) bool {
			return row[a].X < row[b].X
		})
		spreadZeroWidth(row)
		if words := mergeGlyphs(row, pageTop); len(words) > 0 {
			rows = append(rows, words)
		}
	}
	return rows
}

// spreadZeroWidth lays out glyphs of fonts without /Widths. The library
// reports them with zero width and does not advance the pen, so a whole text
// run lands on one X. Each run of such glyphs is spaced out by an estimated
// advance, in content order.
func spreadZeroWidth(row []pdf.Text) {
	for i := 0; i < len(row); {
		j := i + 1
		for j < len(row) && row[j].X == row[i].X && row[j].W <= 0 {
			j++
		}
		if row[i].W <= 0 {
			w := estimatedAdvance * row[i].FontSize
			if w <= 0 {
				w = fallbackWordGap
			}
			for k := i; k < j; k++ {
				row[k].X = row[i].X + float64(k-i)*w
				row[k].W = w
			}
		}
		i = j
	}
}

// mergeGlyphs joins a row's glyphs (sorted by X) into words. Whitespace
// glyphs and gaps wider than a fraction of the font size end a word.
func mergeGlyphs(row []pdf.Text, pageTop float64) []models.Word {
	var words []models.Word
	var current *models.Word
	var prevRight float64

	closeWord := func() {
		if current != nil && current.Text != "" {
			words = append(words, *current)
		}
		current = nil
	}

	for _, g := range row {
		s := normalizeGlyph(g.S)
		if strings.TrimSpace(s) == "" {
			closeWord()
			continue
		}

		gap := g.X - prevRight
		threshold := wordGapFactor * g.FontSize
		if g.FontSize <= 0 {
			threshold = fallbackWordGap
		}
		if current != nil && gap > threshold {
			closeWord()
		}

		top := pageTop - (g.Y + g.FontSize)
		bottom := pageTop - g.Y

		// A glyph string may itself carry spaces, e.g. "Ending balance".
		// Its width is shared out evenly by character position.
		runes := []rune(s)
		advance := g.W / float64(len(runes))
		for i := 0; i < len(runes); {
			if unicode.IsSpace(runes[i]) {
				closeWord()
				i++
				continue
			}
			j := i
			for j < len(runes) && !unicode.IsSpace(runes[j]) {
				j++
			}
			if current == nil {
				current = &models.Word{Left: g.X + float64(i)*advance, Top: top, Bottom: bottom}
			}
			current.Text += string(runes[i:j])
			current.Right = g.X + float64(j)*advance
			if top < current.Top {
				current.Top = top
			}
			if bottom > current.Bottom {
				current.Bottom = bottom
			}
			i = j
		}
		prevRight = g.X + g.W
	}
	closeWord()

	return words
}

// normalizeGlyph applies NFKC so ligatures ("ﬁ") and no-break spaces come
// out as plain text.
func normalizeGlyph(s string) string {
	s = norm.NFKC.String(s)
	return strings.Map(func(r rune) rune {
		switch r {
		case '\t', '\u200b':
			return ' '
		}
		return r
	}, s)
}

// flattenRows returns all words in reading order.
func flattenRows(rows [][]models.Word) []models.Word {
	var words []models.Word
	for _, row := range rows {
		words = append(words, row...)
	}
	return words
}

// rowsText renders rows as line-break separated text, one line per row.
func rowsText(rows [][]models.Word) string {
	lines := make([]string, 0, len(rows))
	for _, row := range rows {
		parts := make([]string, len(row))
		for i, w := range row {
			parts[i] = w.Text
		}
		lines = append(lines, strings.Join(parts, " "))
	}
	return strings.Join(lines, "\n")
}
