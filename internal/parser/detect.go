package parser

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/insightdelivered/statement-extractor/internal/models"
)

const (
	// detectSamplePages is how many leading pages the detector reads.
	detectSamplePages = 3
	// digitalTextThreshold is the minimum amount of sampled text (exclusive)
	// for a document to count as text-extractable.
	digitalTextThreshold = 200
	// statementPeriodWindow bounds the year search after the period marker.
	statementPeriodWindow = 500

	statementPeriodMarker = "Statement period"
)

var yearPattern = regexp.MustCompile(`\b(20\d{2})\b`)

// Detect classifies a document as digital (text-extractable) and infers the
// reference year used to resolve month/day dates. It does not modify doc.
func Detect(doc *models.Document) models.DocumentInfo {
	var sample strings.Builder
	for i := 0; i < len(doc.Pages) && i < detectSamplePages; i++ {
		sample.WriteString("\n")
		sample.WriteString(doc.Pages[i].Text)
	}
	text := sample.String()

	info := models.DocumentInfo{
		IsDigital: utf8.RuneCountInString(strings.TrimSpace(text)) > digitalTextThreshold,
		Pages:     len(doc.Pages),
	}

	if idx := strings.Index(text, statementPeriodMarker); idx >= 0 {
		end := idx + statementPeriodWindow
		if end > len(text) {
			end = len(text)
		}
		info.StatementYear = findYear(text[idx:end])
	}
	if info.StatementYear == nil {
		info.StatementYear = findYear(text)
	}

	return info
}

func findYear(text string) *int {
	m := yearPattern.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	year, err := strconv.Atoi(m[1])
	if err != nil {
		return nil
	}
	return &year
}

// ResolveYear returns the detected statement year, or fallback when the
// detector could not find one.
func ResolveYear(info models.DocumentInfo, fallback int) int {
	if info.StatementYear != nil {
		return *info.StatementYear
	}
	return fallback
}
