// Package extract turns scored documents into typed candidate records
// using small, independently testable heuristics. Every extractor returns
// nil when a document does not plausibly describe its entity type; a nil
// result is a silent drop, never an error.
package extract

import (
	"regexp"
	"strconv"
	"strings"
)

var currencyAmountRe = regexp.MustCompile(`([$€£])\s*(\d+(?:,\d{3})*(?:\.\d+)?)`)

var currencyCodes = map[string]string{
	"$": "USD",
	"€": "EUR",
	"£": "GBP",
}

// currencyAmounts finds all currency-formatted numbers in text and the
// currency code of the first match. Unparseable matches are skipped.
func currencyAmounts(text string) ([]float64, string) {
	matches := currencyAmountRe.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return nil, ""
	}

	amounts := make([]float64, 0, len(matches))
	code := ""
	for _, m := range matches {
		raw := strings.ReplaceAll(m[2], ",", "")
		value, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			continue
		}
		amounts = append(amounts, value)
		if code == "" {
			code = currencyCodes[m[1]]
		}
	}
	return amounts, code
}

// minMax returns the smallest and largest values. A single value yields
// an equal pair.
func minMax(values []float64) (float64, float64) {
	if len(values) == 0 {
		return 0, 0
	}
	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return lo, hi
}

// stripCurrency removes currency substrings and tidies leftover
// separators, used to derive a part name from a listing title.
func stripCurrency(text string) string {
	cleaned := currencyAmountRe.ReplaceAllString(text, "")
	cleaned = strings.TrimSpace(cleaned)
	cleaned = strings.Trim(cleaned, "-–|,: ")
	return strings.TrimSpace(cleaned)
}
