package extract

import (
	"regexp"
	"strings"

	"github.com/wrenchwise/autosearch/models"
)

// knownBrands is the short list of component manufacturers matched when
// attributing a part listing to a brand.
var knownBrands = []string{
	"Denso", "Bosch", "ACDelco", "Motorcraft", "NGK", "Moog", "Monroe",
	"Gates", "Dorman", "Duralast", "Bendix", "KYB", "Walker",
}

var partNumberRe = regexp.MustCompile(`(?i)(?:part\s*#|part\s*number|p/n)\s*:?\s*([A-Za-z0-9][A-Za-z0-9-]*)`)

// Part extracts a part listing from a document. It requires at least one
// currency-formatted number in the combined title and body; without one
// the document is not a listing and nil is returned.
func Part(doc models.RetrievedDocument, relevance models.RelevanceScore) *models.PartCandidate {
	combined := doc.Title + " " + doc.Body
	amounts, currency := currencyAmounts(combined)
	if len(amounts) == 0 {
		return nil
	}
	priceMin, priceMax := minMax(amounts)

	name := stripCurrency(doc.Title)
	if name == "" {
		name = doc.Title
	}

	return &models.PartCandidate{
		Name:         name,
		PriceMin:     priceMin,
		PriceMax:     priceMax,
		Currency:     currency,
		Brand:        matchBrand(combined),
		PartNumber:   matchPartNumber(combined),
		Availability: matchAvailability(combined),
		Confidence:   relevance.Overall,
		Source:       doc.OriginDomain,
	}
}

func matchBrand(text string) string {
	lower := strings.ToLower(text)
	for _, brand := range knownBrands {
		if strings.Contains(lower, strings.ToLower(brand)) {
			return brand
		}
	}
	return ""
}

func matchPartNumber(text string) string {
	if m := partNumberRe.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	return ""
}

func matchAvailability(text string) models.Availability {
	lower := strings.ToLower(text)
	// "unavailable" contains "available", so the negative markers are
	// checked first.
	if strings.Contains(lower, "out of stock") || strings.Contains(lower, "unavailable") {
		return models.AvailabilityOutOfStock
	}
	if strings.Contains(lower, "in stock") || strings.Contains(lower, "available") {
		return models.AvailabilityInStock
	}
	return models.AvailabilityUnknown
}
