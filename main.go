package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/insightdelivered/statement-extractor/internal/api"
	"github.com/insightdelivered/statement-extractor/internal/config"
	"github.com/insightdelivered/statement-extractor/internal/extractor"
	"github.com/insightdelivered/statement-extractor/internal/logger"
	"github.com/insightdelivered/statement-extractor/internal/models"
	"github.com/insightdelivered/statement-extractor/internal/statement"
	"github.com/insightdelivered/statement-extractor/internal/writer"
)

const version = "1.0.0"

type runOptions struct {
	format   string
	output   string
	header   bool
	indent   bool
	verify   bool
	dumpPage int
}

func main() {
	cfg := config.Load()
	log := logger.New(logger.ParseLevel(cfg.LogLevel))

	// CLI flags
	strategyFlag := flag.String("strategy", cfg.Strategy, "Extraction strategy: text or layout")
	formatFlag := flag.String("format", "json", "Output format: json or csv")
	outputFlag := flag.String("out", "", "Output file path (defaults to stdout)")
	headerFlag := flag.Bool("header", true, "Include statement metadata rows in CSV")
	indentFlag := flag.Bool("indent", true, "Indent JSON output")
	verifyFlag := flag.Bool("verify", false, "Check each account against the printed statement balances")
	dumpFlag := flag.Int("dump-page", -1, "Print the lines and column-relevant word positions of page N (0-based) and exit")
	serveFlag := flag.Bool("serve", false, "Start the HTTP API instead of processing files")
	versionFlag := flag.Bool("version", false, "Print version and exit")
	helpFlag := flag.Bool("help", false, "Show usage help")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `Bank Statement Transaction Extractor
by Insight Delivered (QEA AutoLens)

Recovers the transactions of Wells Fargo statement PDFs as signed,
balance-reconciled ledger entries grouped by account.

Usage:
  statement-extractor [flags] <statement.pdf> [statement2.pdf ...]
  statement-extractor --serve

Flags:
`)
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  # Extract to JSON on stdout
  statement-extractor statement.pdf

  # Use word coordinates instead of text lines
  statement-extractor --strategy=layout statement.pdf

  # CSV file output, checked against the printed balances
  statement-extractor --format=csv --out=march.csv --verify statement.pdf

  # Inspect page 2 when calibrating column bands
  statement-extractor --dump-page=2 statement.pdf

Environment:
  PORT, LOG_LEVEL, EXTRACT_STRATEGY, BANK_NAME, CURRENCY, DEFAULT_ACCOUNT,
  FALLBACK_YEAR, LAYOUT_ROW_TOLERANCE, LAYOUT_BANDS, CACHE_TTL,
  MAX_UPLOAD_SIZE_BYTES (also read from .env)
`)
	}

	flag.Parse()

	if *versionFlag {
		fmt.Printf("statement-extractor v%s\n", version)
		os.Exit(0)
	}

	cfg.Strategy = *strategyFlag
	opts, err := cfg.ExtractOptions(log)
	if err != nil {
		fatalf("%v\n", err)
	}

	if *serveFlag {
		if err := serve(cfg, opts, log); err != nil {
			fatalf("server error: %v\n", err)
		}
		return
	}

	if *helpFlag || flag.NArg() == 0 {
		flag.Usage()
		os.Exit(0)
	}

	format := strings.ToLower(*formatFlag)
	if format != "json" && format != "csv" {
		fatalf("Unknown format %q. Supported: json, csv\n", *formatFlag)
	}

	inputFiles := flag.Args()
	if *outputFlag != "" && len(inputFiles) > 1 {
		fatalf("--out accepts a single input file, got %d\n", len(inputFiles))
	}

	ex, err := statement.New(opts)
	if err != nil {
		fatalf("%v\n", err)
	}

	run := runOptions{
		format:   format,
		output:   *outputFlag,
		header:   *headerFlag,
		indent:   *indentFlag,
		verify:   *verifyFlag,
		dumpPage: *dumpFlag,
	}

	// Process each input file
	failed := false
	for _, inputPath := range inputFiles {
		fileLog := log.With().Str("file", inputPath).Logger()
		if err := processFile(ex, inputPath, run, fileLog); err != nil {
			fileLog.Error().Err(err).Msg("processing failed")
			failed = true
		}
	}
	if failed {
		os.Exit(1)
	}
}

func processFile(ex *statement.Extractor, inputPath string, run runOptions, log zerolog.Logger) error {
	ext := strings.ToLower(filepath.Ext(inputPath))
	if ext != ".pdf" {
		return fmt.Errorf("expected .pdf file, got %q", ext)
	}

	doc, err := extractor.Load(inputPath)
	if err != nil {
		return fmt.Errorf("PDF extraction failed: %w", err)
	}
	log.Debug().Int("pages", len(doc.Pages)).Msg("loaded document")

	if run.dumpPage >= 0 {
		if run.dumpPage >= len(doc.Pages) {
			return fmt.Errorf("page %d out of range (document has %d pages)", run.dumpPage, len(doc.Pages))
		}
		return extractor.DumpPage(os.Stdout, doc.Pages[run.dumpPage])
	}

	result, err := ex.Extract(doc)
	if err != nil {
		return err
	}

	if result.TransactionCount() == 0 {
		log.Warn().Msg("no transactions found; the PDF may not be a supported statement layout")
	}

	if err := writeResult(result, run); err != nil {
		return err
	}

	if run.verify {
		return verify(os.Stderr, doc, result)
	}
	return nil
}

func writeResult(result *models.ExtractionResult, run runOptions) error {
	if run.format == "csv" {
		w := &writer.CSVWriter{IncludeHeader: run.header}
		if run.output != "" {
			return w.WriteToFile(run.output, result)
		}
		return w.Write(os.Stdout, result)
	}

	w := &writer.JSONWriter{Indent: run.indent}
	if run.output != "" {
		return w.WriteToFile(run.output, result)
	}
	return w.Write(os.Stdout, result)
}

// verify prints one line per account comparing the extracted ledger with the
// balances printed on the statement, and fails when any account is off.
func verify(out io.Writer, doc *models.Document, result *models.ExtractionResult) error {
	checks := statement.Verify(result, statement.StatementSummaries(doc))

	bad := 0
	for _, v := range checks {
		status := "OK"
		if !v.Matched || v.Problem != "" {
			status = "MISMATCH"
			bad++
		}

		fmt.Fprintf(out, "%-10s %-8s txns=%d sum=%s", v.Account, status, v.Transactions, v.Sum.StringFixed(2))
		if v.LastBalance.Valid {
			fmt.Fprintf(out, " last_balance=%s", v.LastBalance.Decimal.StringFixed(2))
		}
		if v.Summary.Beginning != nil {
			fmt.Fprintf(out, " begin=%s", v.Summary.Beginning.Amount.StringFixed(2))
		}
		if v.ExpectedEnd.Valid {
			fmt.Fprintf(out, " expected_end=%s printed_end=%s",
				v.ExpectedEnd.Decimal.StringFixed(2), v.Summary.Ending.Amount.StringFixed(2))
		} else {
			fmt.Fprint(out, " (no printed summary)")
		}
		fmt.Fprintln(out)
		if v.Problem != "" {
			fmt.Fprintf(out, "  %s\n", v.Problem)
		}
	}

	if bad > 0 {
		return fmt.Errorf("verification failed for %d of %d account(s)", bad, len(checks))
	}
	return nil
}

func serve(cfg *config.Config, opts statement.Options, log zerolog.Logger) error {
	h := api.NewHandler(opts, cfg.CacheTTL, log, version)
	app := api.NewApp(h, int(cfg.MaxUploadSizeBytes))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("strategy", string(opts.Strategy)).Msg("starting API server")
		errCh <- app.Listen(":" + cfg.Port)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return nil
}

func fatalf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format, args...)
	os.Exit(1)
}
