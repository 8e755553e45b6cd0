package statement

import (
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/insightdelivered/statement-extractor/internal/models"
	"github.com/insightdelivered/statement-extractor/internal/parser"
)

// ErrNotDigital is returned when a document has no extractable text.
var ErrNotDigital = errors.New("document has no extractable text")

// Options configures an Extractor. Zero values fall back to the package
// defaults, except FallbackYear which falls back to the current year.
type Options struct {
	Strategy           parser.Strategy
	Bank               string
	Currency           string
	DefaultAccountName string
	// FallbackYear resolves month/day dates when the document does not
	// print a statement year.
	FallbackYear int
	Layout       parser.LayoutConfig
	Logger       zerolog.Logger
}

// DefaultOptions returns options for the text strategy with the default
// layout calibration and a silent logger.
func DefaultOptions() Options {
	return Options{
		Strategy:           parser.StrategyText,
		Bank:               DefaultBank,
		Currency:           DefaultCurrency,
		DefaultAccountName: DefaultAccountName,
		FallbackYear:       time.Now().Year(),
		Layout:             parser.DefaultLayoutConfig(),
		Logger:             zerolog.Nop(),
	}
}

// Extractor turns a materialized statement document into accounts of
// signed, balance-filled transactions. It holds no per-document state and
// may be reused.
type Extractor struct {
	opts   Options
	parser parser.Parser
}

// New validates opts and returns an Extractor.
func New(opts Options) (*Extractor, error) {
	if opts.Strategy == "" {
		opts.Strategy = parser.StrategyText
	}
	if opts.Bank == "" {
		opts.Bank = DefaultBank
	}
	if opts.Currency == "" {
		opts.Currency = DefaultCurrency
	}
	if opts.DefaultAccountName == "" {
		opts.DefaultAccountName = DefaultAccountName
	}
	if opts.FallbackYear == 0 {
		opts.FallbackYear = time.Now().Year()
	}
	if opts.Layout == (parser.LayoutConfig{}) {
		opts.Layout = parser.DefaultLayoutConfig()
	}

	p, err := parser.New(opts.Strategy, opts.Layout, opts.Logger)
	if err != nil {
		return nil, err
	}
	return &Extractor{opts: opts, parser: p}, nil
}

// Detect reports whether doc is digital and which year it covers.
func (e *Extractor) Detect(doc *models.Document) models.DocumentInfo {
	return parser.Detect(doc)
}

// Extract runs the full pipeline. Each transaction history section becomes
// its own Account, in the order found; sections of the same account on
// different pages are not merged.
func (e *Extractor) Extract(doc *models.Document) (*models.ExtractionResult, error) {
	log := e.opts.Logger.With().Str("strategy", e.parser.Name()).Logger()

	info := parser.Detect(doc)
	if !info.IsDigital {
		return nil, fmt.Errorf("extract %s: %w", doc.Path, ErrNotDigital)
	}
	year := parser.ResolveYear(info, e.opts.FallbackYear)
	if info.StatementYear == nil {
		log.Warn().Int("fallback_year", year).Msg("statement year not found, using fallback")
	}

	result := &models.ExtractionResult{
		Bank:          e.opts.Bank,
		StatementYear: info.StatementYear,
		Accounts:      []models.Account{},
	}

	for _, section := range parser.Segment(doc) {
		name := ResolveAccountName(section, e.opts.DefaultAccountName)

		txns := e.parser.Parse(doc, section, year)
		txns = parser.NormalizeSigns(txns)
		txns = parser.ForwardFill(txns)
		if txns == nil {
			txns = []models.Transaction{}
		}

		log.Info().
			Int("page", section.PageIndex).
			Str("account", name).
			Int("transactions", len(txns)).
			Msg("parsed transaction history section")

		result.Accounts = append(result.Accounts, models.Account{
			Name:         name,
			Last4:        FindLast4(section.ContextLines),
			Currency:     e.opts.Currency,
			Transactions: txns,
		})
	}

	return result, nil
}
