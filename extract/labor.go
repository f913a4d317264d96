package extract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/wrenchwise/autosearch/models"
)

var hourlyRateRe = regexp.MustCompile(`(?i)\$\s*(\d+(?:\.\d+)?)\s*(?:per\s+hour|/\s*hour|/?\s*hr\b)`)

// The place must be capitalized so phrases like "in stock" do not match.
var locationRe = regexp.MustCompile(`\b(?:[Ii]n|[Nn]ear|[Aa]round)\s+([A-Z][A-Za-z]+(?:\s+[A-Z][A-Za-z]+)*)`)

// repairCategories is probed in order; the first match wins.
var repairCategories = []string{
	"brake", "engine", "transmission", "suspension", "electrical", "exhaust",
}

// LaborRate extracts an hourly labor rate from a document. It requires at
// least one "$N per hour" style pattern; other dollar figures (part
// prices, totals) are ignored.
func LaborRate(doc models.RetrievedDocument, relevance models.RelevanceScore) *models.LaborRateCandidate {
	combined := doc.Title + " " + doc.Body
	matches := hourlyRateRe.FindAllStringSubmatch(combined, -1)
	if len(matches) == 0 {
		return nil
	}

	rates := make([]float64, 0, len(matches))
	for _, m := range matches {
		value, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			continue
		}
		rates = append(rates, value)
	}
	if len(rates) == 0 {
		return nil
	}
	rateMin, rateMax := minMax(rates)

	return &models.LaborRateCandidate{
		Location:       matchLocation(combined),
		RateMin:        rateMin,
		RateMax:        rateMax,
		Currency:       "USD",
		RepairCategory: matchCategory(combined),
		Confidence:     relevance.Overall,
		Source:         doc.OriginDomain,
	}
}

// matchLocation is a best-effort "in/near/around <Place>" probe; absence
// is fine.
func matchLocation(text string) string {
	if m := locationRe.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1])
	}
	return ""
}

func matchCategory(text string) string {
	lower := strings.ToLower(text)
	for _, category := range repairCategories {
		if strings.Contains(lower, category) {
			return category
		}
	}
	return ""
}
