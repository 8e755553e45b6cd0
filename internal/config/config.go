package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/insightdelivered/statement-extractor/internal/parser"
	"github.com/insightdelivered/statement-extractor/internal/statement"
)

// Config holds runtime settings read from the environment and an optional
// .env file.
type Config struct {
	Port               string
	LogLevel           string
	Strategy           string
	BankName           string
	Currency           string
	DefaultAccount     string
	FallbackYear       int
	LayoutRowTolerance float64
	LayoutBands        parser.ColumnBands
	CacheTTL           time.Duration
	MaxUploadSizeBytes int64
}

// Load reads .env (if present) and then the process environment. Invalid
// values are reported and replaced by their defaults. A missing .env is
// silent.
func Load() *Config {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Warn().Err(err).Msg("could not read .env file, using environment and defaults")
	}

	layout := parser.DefaultLayoutConfig()

	return &Config{
		Port:               getEnv("PORT", "8080"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		Strategy:           getEnv("EXTRACT_STRATEGY", string(parser.StrategyText)),
		BankName:           getEnv("BANK_NAME", statement.DefaultBank),
		Currency:           getEnv("CURRENCY", statement.DefaultCurrency),
		DefaultAccount:     getEnv("DEFAULT_ACCOUNT", statement.DefaultAccountName),
		FallbackYear:       getEnvAsInt("FALLBACK_YEAR", time.Now().Year()),
		LayoutRowTolerance: getEnvAsFloat("LAYOUT_ROW_TOLERANCE", layout.RowTolerance),
		LayoutBands:        getEnvAsBands("LAYOUT_BANDS", layout.Bands),
		CacheTTL:           getEnvAsDuration("CACHE_TTL", 15*time.Minute),
		MaxUploadSizeBytes: getEnvAsInt64("MAX_UPLOAD_SIZE_BYTES", 32<<20),
	}
}

// ExtractOptions builds extractor options from the configuration.
func (c *Config) ExtractOptions(logger zerolog.Logger) (statement.Options, error) {
	strategy, err := parser.ParseStrategy(c.Strategy)
	if err != nil {
		return statement.Options{}, err
	}

	layout := parser.DefaultLayoutConfig()
	layout.Bands = c.LayoutBands
	if c.LayoutRowTolerance > 0 {
		layout.RowTolerance = c.LayoutRowTolerance
	}

	opts := statement.DefaultOptions()
	opts.Strategy = strategy
	opts.Bank = c.BankName
	opts.Currency = c.Currency
	opts.DefaultAccountName = c.DefaultAccount
	opts.FallbackYear = c.FallbackYear
	opts.Layout = layout
	opts.Logger = logger
	return opts, nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	log.Warn().Str("key", key).Str("value", valueStr).Int("default", fallback).Msg("invalid integer, using default")
	return fallback
}

func getEnvAsInt64(key string, fallback int64) int64 {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	if value, err := strconv.ParseInt(valueStr, 10, 64); err == nil && value > 0 {
		return value
	}
	log.Warn().Str("key", key).Str("value", valueStr).Int64("default", fallback).Msg("invalid size, using default")
	return fallback
}

func getEnvAsFloat(key string, fallback float64) float64 {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	log.Warn().Str("key", key).Str("value", valueStr).Float64("default", fallback).Msg("invalid number, using default")
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	log.Warn().Str("key", key).Str("value", valueStr).Stringer("default", fallback).Msg("invalid duration, using default")
	return fallback
}

func getEnvAsBands(key string, fallback parser.ColumnBands) parser.ColumnBands {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	bands, err := ParseBands(valueStr)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("invalid column bands, using default")
		return fallback
	}
	return bands
}

// ParseBands reads eight comma-separated edges in the order DateMax,
// DescriptionMin, DescriptionMax, AdditionsMin, AdditionsMax,
// SubtractionsMin, SubtractionsMax, BalanceMin.
func ParseBands(s string) (parser.ColumnBands, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 8 {
		return parser.ColumnBands{}, fmt.Errorf("expected 8 band edges, got %d", len(parts))
	}

	var v [8]float64
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return parser.ColumnBands{}, fmt.Errorf("band edge %d: %w", i+1, err)
		}
		v[i] = f
	}

	return parser.ColumnBands{
		DateMax:         v[0],
		DescriptionMin:  v[1],
		DescriptionMax:  v[2],
		AdditionsMin:    v[3],
		AdditionsMax:    v[4],
		SubtractionsMin: v[5],
		SubtractionsMax: v[6],
		BalanceMin:      v[7],
	}, nil
}
