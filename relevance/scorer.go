// Package relevance scores retrieved documents for automotive relevance
// and source trust. Scoring is a pure function of the document and the
// clock; it never fails, and malformed text only yields a low score.
package relevance

import (
	"strings"
	"time"

	"github.com/wrenchwise/autosearch/models"
)

// Factor weights. Five keyword hits saturate the keyword factor.
const (
	weightKeywordMatch    = 0.4
	weightDomainAuthority = 0.3
	weightContentQuality  = 0.2
	weightRecency         = 0.1

	keywordSaturation = 5
)

// DefaultKeywords is the automotive vocabulary used for keyword matching.
var DefaultKeywords = []string{
	"vehicle", "car", "truck", "engine", "brake", "transmission",
	"suspension", "exhaust", "alternator", "starter", "battery",
	"radiator", "repair", "maintenance", "oil", "filter", "tire",
	"rotor", "spark plug", "mechanic",
}

// DefaultTrustedDomains is the curated allow-list of known parts and
// repair-reference sites.
var DefaultTrustedDomains = []string{
	"autozone.com", "oreillyauto.com", "rockauto.com", "partsgeek.com",
	"advanceautoparts.com", "napaonline.com", "repairpal.com",
	"yourmechanic.com", "ifixit.com", "2carpros.com", "nhtsa.gov",
	"charm.li",
}

// Config carries the scorer's vocabulary and trust lists so tests can
// substitute fixtures without touching package state.
type Config struct {
	AutomotiveKeywords []string
	TrustedDomains     []string
}

// DefaultScorerConfig returns the production keyword and domain lists.
func DefaultScorerConfig() Config {
	return Config{
		AutomotiveKeywords: DefaultKeywords,
		TrustedDomains:     DefaultTrustedDomains,
	}
}

// Scorer computes relevance scores. The clock is injectable so recency
// tests can freeze time.
type Scorer struct {
	keywords []string
	trusted  map[string]struct{}
	now      func() time.Time
}

// NewScorer builds a scorer from cfg. A nil now falls back to time.Now.
func NewScorer(cfg Config, now func() time.Time) *Scorer {
	if now == nil {
		now = time.Now
	}
	trusted := make(map[string]struct{}, len(cfg.TrustedDomains))
	for _, domain := range cfg.TrustedDomains {
		trusted[strings.ToLower(domain)] = struct{}{}
	}
	keywords := make([]string, len(cfg.AutomotiveKeywords))
	for i, kw := range cfg.AutomotiveKeywords {
		keywords[i] = strings.ToLower(kw)
	}
	return &Scorer{keywords: keywords, trusted: trusted, now: now}
}

// Score maps one document to its relevance score. Total over any input.
func (s *Scorer) Score(doc models.RetrievedDocument) models.RelevanceScore {
	score := models.RelevanceScore{
		KeywordMatch:    s.keywordMatch(doc),
		DomainAuthority: s.domainAuthority(doc.OriginDomain),
		ContentQuality:  contentQuality(doc.Body),
		Recency:         s.recency(doc.PublishedAt),
	}
	overall := weightKeywordMatch*score.KeywordMatch +
		weightDomainAuthority*score.DomainAuthority +
		weightContentQuality*score.ContentQuality +
		weightRecency*score.Recency
	score.Overall = clamp01(overall)
	return score
}

func (s *Scorer) keywordMatch(doc models.RetrievedDocument) float64 {
	text := strings.ToLower(doc.Title + " " + doc.Body)
	count := 0
	for _, kw := range s.keywords {
		if strings.Contains(text, kw) {
			count++
		}
	}
	if count >= keywordSaturation {
		return 1.0
	}
	return float64(count) / float64(keywordSaturation)
}

// domainAuthority rewards known-good sources without fully excluding
// unknown ones: curated list 1.0, automotive-looking name 0.7, else 0.3.
func (s *Scorer) domainAuthority(domain string) float64 {
	domain = strings.ToLower(domain)
	if _, ok := s.trusted[domain]; ok {
		return 1.0
	}
	for _, marker := range []string{"auto", "car", "repair"} {
		if strings.Contains(domain, marker) {
			return 0.7
		}
	}
	return 0.3
}

// contentQuality rewards documents that look information-dense over
// marketing copy. An empty body sits at the 0.3 floor.
func contentQuality(body string) float64 {
	quality := 0.3
	if strings.ContainsAny(body, "$€£") {
		quality += 0.2
	}
	if strings.ContainsAny(body, "0123456789") {
		quality += 0.2
	}
	if len(body) > 100 {
		quality += 0.2
	}
	lower := strings.ToLower(body)
	if strings.Contains(lower, "step") || strings.Contains(lower, "procedure") {
		quality += 0.1
	}
	return clamp01(quality)
}

// recency tiers the publication age. A missing date is neutral, not
// stale.
func (s *Scorer) recency(published *time.Time) float64 {
	if published == nil {
		return 0.5
	}
	age := s.now().Sub(*published)
	switch {
	case age <= 30*24*time.Hour:
		return 1.0
	case age <= 90*24*time.Hour:
		return 0.8
	case age <= 365*24*time.Hour:
		return 0.6
	default:
		return 0.3
	}
}

func clamp01(v float64) float64 {
	if v > 1.0 {
		return 1.0
	}
	if v < 0 {
		return 0
	}
	return v
}
