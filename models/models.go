// Package models defines data structures shared across the search core.
package models

import "time"

// Intent is the category of automotive question being asked. It selects
// the source domains to search, the result budget, and which extractor
// interprets the hits.
type Intent string

const (
	IntentParts      Intent = "parts"
	IntentLaborRates Intent = "labor_rates"
	IntentProcedures Intent = "procedures"
	IntentVINLookup  Intent = "vin_lookup"
)

// Valid reports whether the intent is one of the known categories.
func (i Intent) Valid() bool {
	switch i {
	case IntentParts, IntentLaborRates, IntentProcedures, IntentVINLookup:
		return true
	}
	return false
}

// VehicleContext identifies the vehicle a query is about. All fields are
// optional; Empty reports whether nothing usable was supplied.
type VehicleContext struct {
	Year  int    `json:"year,omitempty"`
	Make  string `json:"make,omitempty"`
	Model string `json:"model,omitempty"`
}

// Empty reports whether the context carries no identifying information.
func (vc VehicleContext) Empty() bool {
	return vc.Year == 0 && vc.Make == "" && vc.Model == ""
}

// RetrievedDocument is one search hit, mapped from a provider result.
// Immutable after creation; discarded after scoring and extraction.
type RetrievedDocument struct {
	Title        string     `json:"title"`
	Body         string     `json:"body"`
	URL          string     `json:"url"`
	OriginDomain string     `json:"origin_domain"`
	PublishedAt  *time.Time `json:"published_at,omitempty"`
	ProviderRank float64    `json:"provider_rank"`
}

// RelevanceScore is the trust/relevance estimate for one document.
// Computed fresh per document; never persisted.
type RelevanceScore struct {
	Overall         float64 `json:"overall"`
	KeywordMatch    float64 `json:"keyword_match"`
	DomainAuthority float64 `json:"domain_authority"`
	ContentQuality  float64 `json:"content_quality"`
	Recency         float64 `json:"recency"`
}

// Availability describes stock status extracted from part listings.
type Availability string

const (
	AvailabilityInStock    Availability = "in-stock"
	AvailabilityOutOfStock Availability = "out-of-stock"
	AvailabilityUnknown    Availability = "unknown"
)

// Difficulty grades a repair procedure.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
	DifficultyExpert Difficulty = "expert"
)

// PartCandidate is a structured part listing extracted from one document.
type PartCandidate struct {
	Name         string       `json:"name"`
	PriceMin     float64      `json:"price_min"`
	PriceMax     float64      `json:"price_max"`
	Currency     string       `json:"currency"`
	Brand        string       `json:"brand,omitempty"`
	PartNumber   string       `json:"part_number,omitempty"`
	Availability Availability `json:"availability"`
	Confidence   float64      `json:"confidence"`
	Source       string       `json:"source"`
}

// LaborRateCandidate is an hourly labor rate extracted from one document.
type LaborRateCandidate struct {
	Location       string  `json:"location,omitempty"`
	RateMin        float64 `json:"rate_min"`
	RateMax        float64 `json:"rate_max"`
	Currency       string  `json:"currency"`
	RepairCategory string  `json:"repair_category,omitempty"`
	Confidence     float64 `json:"confidence"`
	Source         string  `json:"source"`
}

// RepairProcedureCandidate is a step-by-step procedure extracted from one
// document. Steps is never empty for an emitted candidate.
type RepairProcedureCandidate struct {
	Title         string     `json:"title"`
	Steps         []string   `json:"steps"`
	Difficulty    Difficulty `json:"difficulty"`
	EstimatedTime string     `json:"estimated_time,omitempty"`
	ToolsRequired []string   `json:"tools_required"`
	Confidence    float64    `json:"confidence"`
	Source        string     `json:"source"`
}

// SearchResult bundles the outcome of one intent's search for a caller:
// the scored documents, the typed candidates that survived the confidence
// filter, and whether the data was served from cache after a retrieval
// failure.
type SearchResult struct {
	Intent      Intent                     `json:"intent"`
	Query       string                     `json:"query"`
	Documents   []RetrievedDocument        `json:"documents,omitempty"`
	Parts       []PartCandidate            `json:"parts,omitempty"`
	LaborRates  []LaborRateCandidate       `json:"labor_rates,omitempty"`
	Procedures  []RepairProcedureCandidate `json:"procedures,omitempty"`
	FromCache   bool                       `json:"from_cache,omitempty"`
	RetrievedAt time.Time                  `json:"retrieved_at"`
}
