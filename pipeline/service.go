// Package pipeline wires retrieval, scoring, and extraction into the
// per-intent search operations exposed to callers.
package pipeline

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/wrenchwise/autosearch/cache"
	"github.com/wrenchwise/autosearch/config"
	"github.com/wrenchwise/autosearch/extract"
	"github.com/wrenchwise/autosearch/models"
	"github.com/wrenchwise/autosearch/relevance"
	"github.com/wrenchwise/autosearch/search"
)

// Retriever is the slice of the search client the service depends on.
type Retriever interface {
	Retrieve(ctx context.Context, intent models.Intent, queryText string, vehicle models.VehicleContext) ([]models.RetrievedDocument, *search.Failure)
}

// Enricher optionally replaces thin snippets with fetched page text.
type Enricher interface {
	Enrich(ctx context.Context, docs []models.RetrievedDocument, minLen int) []models.RetrievedDocument
}

// ScoredDocument pairs a retrieved document with its relevance score.
type ScoredDocument struct {
	Document models.RetrievedDocument
	Score    models.RelevanceScore
}

// Service runs the stateless retrieve → score → extract transaction for
// one intent at a time. Nothing is shared between concurrent calls
// except the result cache, which is safe for concurrent use.
type Service struct {
	cfg       *config.Config
	retriever Retriever
	scorer    *relevance.Scorer
	results   *cache.ResultCache
	enricher  Enricher
	metrics   *search.Metrics
	now       func() time.Time
}

// NewService assembles the pipeline. enricher and metrics may be nil.
func NewService(cfg *config.Config, retriever Retriever, scorer *relevance.Scorer, results *cache.ResultCache, enricher Enricher, metrics *search.Metrics) *Service {
	return &Service{
		cfg:       cfg,
		retriever: retriever,
		scorer:    scorer,
		results:   results,
		enricher:  enricher,
		metrics:   metrics,
		now:       time.Now,
	}
}

// Documents retrieves and scores documents for any intent without
// extraction. VIN lookups use this path, since no typed extractor exists
// for vehicle-history pages.
func (s *Service) Documents(ctx context.Context, intent models.Intent, queryText string, vehicle models.VehicleContext) ([]ScoredDocument, *search.Failure) {
	docs, failure := s.retriever.Retrieve(ctx, intent, queryText, vehicle)
	if failure != nil {
		return nil, failure
	}
	if s.enricher != nil && s.cfg.EnrichContent {
		docs = s.enricher.Enrich(ctx, docs, s.cfg.EnrichMinBodyLen)
	}

	scored := make([]ScoredDocument, len(docs))
	for i, doc := range docs {
		scored[i] = ScoredDocument{Document: doc, Score: s.scorer.Score(doc)}
	}
	return scored, nil
}

// Parts searches for part listings matching the query.
func (s *Service) Parts(ctx context.Context, queryText string, vehicle models.VehicleContext) (models.SearchResult, *search.Failure) {
	return s.run(ctx, models.IntentParts, queryText, vehicle, func(result *models.SearchResult, scored []ScoredDocument) int {
		result.Parts = filterSort(scored, extract.Part, s.cfg.ConfidenceThreshold, func(c *models.PartCandidate) float64 { return c.Confidence })
		s.metrics.IncEntities("part", len(result.Parts))
		return len(result.Parts)
	})
}

// LaborRates searches for hourly labor rates matching the query.
func (s *Service) LaborRates(ctx context.Context, queryText string, vehicle models.VehicleContext) (models.SearchResult, *search.Failure) {
	return s.run(ctx, models.IntentLaborRates, queryText, vehicle, func(result *models.SearchResult, scored []ScoredDocument) int {
		result.LaborRates = filterSort(scored, extract.LaborRate, s.cfg.ConfidenceThreshold, func(c *models.LaborRateCandidate) float64 { return c.Confidence })
		s.metrics.IncEntities("labor_rate", len(result.LaborRates))
		return len(result.LaborRates)
	})
}

// Procedures searches for step-by-step repair procedures matching the
// query.
func (s *Service) Procedures(ctx context.Context, queryText string, vehicle models.VehicleContext) (models.SearchResult, *search.Failure) {
	return s.run(ctx, models.IntentProcedures, queryText, vehicle, func(result *models.SearchResult, scored []ScoredDocument) int {
		result.Procedures = filterSort(scored, extract.Procedure, s.cfg.ConfidenceThreshold, func(c *models.RepairProcedureCandidate) float64 { return c.Confidence })
		s.metrics.IncEntities("procedure", len(result.Procedures))
		return len(result.Procedures)
	})
}

// IntentOutcome carries one intent's result or failure from SearchAll.
type IntentOutcome struct {
	Result  models.SearchResult
	Failure *search.Failure
}

// SearchAll issues the three extracting intents concurrently for one
// user turn. Each call is independent; there is no ordering constraint
// or cross-intent deduplication.
func (s *Service) SearchAll(ctx context.Context, queryText string, vehicle models.VehicleContext) map[models.Intent]IntentOutcome {
	type op struct {
		intent models.Intent
		fn     func(context.Context, string, models.VehicleContext) (models.SearchResult, *search.Failure)
	}
	ops := []op{
		{models.IntentParts, s.Parts},
		{models.IntentLaborRates, s.LaborRates},
		{models.IntentProcedures, s.Procedures},
	}

	outcomes := make(map[models.Intent]IntentOutcome, len(ops))
	var mu sync.Mutex
	var wg sync.WaitGroup
	for _, o := range ops {
		wg.Add(1)
		go func(o op) {
			defer wg.Done()
			result, failure := o.fn(ctx, queryText, vehicle)
			mu.Lock()
			outcomes[o.intent] = IntentOutcome{Result: result, Failure: failure}
			mu.Unlock()
		}(o)
	}
	wg.Wait()
	return outcomes
}

func (s *Service) run(ctx context.Context, intent models.Intent, queryText string, vehicle models.VehicleContext, extractInto func(*models.SearchResult, []ScoredDocument) int) (models.SearchResult, *search.Failure) {
	result := models.SearchResult{
		Intent:      intent,
		Query:       queryText,
		RetrievedAt: s.now(),
	}

	scored, failure := s.Documents(ctx, intent, queryText, vehicle)
	if failure != nil {
		if cached, ok := s.cachedFallback(intent, queryText, failure); ok {
			return cached, nil
		}
		return result, failure
	}

	docs := make([]models.RetrievedDocument, len(scored))
	for i := range scored {
		docs[i] = scored[i].Document
	}
	result.Documents = docs

	count := extractInto(&result, scored)
	slog.Debug("search completed",
		slog.String("intent", string(intent)),
		slog.Int("documents", len(scored)),
		slog.Int("entities", count),
	)

	s.results.Put(intent, queryText, result)
	return result, nil
}

// cachedFallback serves a stale result when the failure hints at cached
// data and a live entry exists. Callers only see the FromCache flag.
func (s *Service) cachedFallback(intent models.Intent, queryText string, failure *search.Failure) (models.SearchResult, bool) {
	if failure.Fallback != search.FallbackCachedData {
		return models.SearchResult{}, false
	}
	cached, ok := s.results.Get(intent, queryText)
	if !ok {
		s.metrics.IncCacheLookup("miss")
		return models.SearchResult{}, false
	}
	s.metrics.IncCacheLookup("hit")
	cached.FromCache = true
	slog.Info("serving cached results after retrieval failure",
		slog.String("intent", string(intent)),
		slog.String("kind", string(failure.Kind)),
	)
	return cached, true
}

// filterSort applies one extractor to every scored document, drops
// candidates at or below the confidence threshold, and orders the rest
// by confidence descending with provider order breaking ties.
func filterSort[T any](scored []ScoredDocument, extractOne func(models.RetrievedDocument, models.RelevanceScore) *T, threshold float64, confidence func(*T) float64) []T {
	var out []T
	for _, sd := range scored {
		candidate := extractOne(sd.Document, sd.Score)
		if candidate == nil {
			continue
		}
		if confidence(candidate) <= threshold {
			continue
		}
		out = append(out, *candidate)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return confidence(&out[i]) > confidence(&out[j])
	})
	return out
}
