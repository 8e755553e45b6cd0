package parser

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/insightdelivered/statement-extractor/internal/models"
)

// Strategy selects how transaction rows are recovered from a section.
type Strategy string

const (
	// StrategyText parses the section's plain text lines.
	StrategyText Strategy = "text"
	// StrategyLayout parses the positioned words of the section's page.
	StrategyLayout Strategy = "layout"
)

// ErrUnknownStrategy is returned by New for an unsupported strategy name.
var ErrUnknownStrategy = errors.New("unknown extraction strategy")

// Parser recovers the transactions of one table section. Both strategies
// produce amounts and optional balances; sign normalization and balance
// reconciliation happen afterwards and do not depend on the strategy.
type Parser interface {
	// Parse returns the section's transactions in document order.
	Parse(doc *models.Document, section models.TableSection, year int) []models.Transaction
	// Name returns the strategy name.
	Name() string
}

// New returns the parser for the given strategy. There is no fallback from
// one strategy to the other: they read different inputs.
func New(strategy Strategy, layout LayoutConfig, log zerolog.Logger) (Parser, error) {
	switch strategy {
	case StrategyText:
		return &textSectionParser{lines: LineParser{Logger: log}}, nil
	case StrategyLayout:
		return &layoutSectionParser{layout: LayoutParser{Config: layout, Logger: log}}, nil
	default:
		return nil, fmt.Errorf("%w: %q (supported: text, layout)", ErrUnknownStrategy, strategy)
	}
}

// ParseStrategy maps a flag or form value to a Strategy.
func ParseStrategy(s string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "text", "lines":
		return StrategyText, nil
	case "layout", "words", "columns":
		return StrategyLayout, nil
	default:
		return "", fmt.Errorf("%w: %q (supported: text, layout)", ErrUnknownStrategy, s)
	}
}

type textSectionParser struct {
	lines LineParser
}

func (p *textSectionParser) Parse(_ *models.Document, section models.TableSection, year int) []models.Transaction {
	return p.lines.Parse(section.Lines, year)
}

func (p *textSectionParser) Name() string {
	return string(StrategyText)
}

type layoutSectionParser struct {
	layout LayoutParser
}

func (p *layoutSectionParser) Parse(doc *models.Document, section models.TableSection, year int) []models.Transaction {
	return p.layout.Parse(doc, []int{section.PageIndex}, year)
}

func (p *layoutSectionParser) Name() string {
	return string(StrategyLayout)
}
