package pipeline

import (
	"context"
	"testing"
	"time"

	"github.com/wrenchwise/autosearch/cache"
	"github.com/wrenchwise/autosearch/config"
	"github.com/wrenchwise/autosearch/models"
	"github.com/wrenchwise/autosearch/relevance"
	"github.com/wrenchwise/autosearch/search"
)

type fakeRetriever struct {
	docs    []models.RetrievedDocument
	failure *search.Failure
	calls   int
}

func (f *fakeRetriever) Retrieve(_ context.Context, _ models.Intent, _ string, _ models.VehicleContext) ([]models.RetrievedDocument, *search.Failure) {
	f.calls++
	return f.docs, f.failure
}

func newTestService(retriever Retriever) *Service {
	cfg := config.DefaultConfig()
	scorer := relevance.NewScorer(relevance.DefaultScorerConfig(), func() time.Time {
		return time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)
	})
	return NewService(cfg, retriever, scorer, cache.New(16, time.Minute), nil, nil)
}

func partsDoc(title, body, domain string) models.RetrievedDocument {
	return models.RetrievedDocument{Title: title, Body: body, URL: "https://" + domain + "/x", OriginDomain: domain}
}

func TestPartsFiltersLowConfidence(t *testing.T) {
	retriever := &fakeRetriever{docs: []models.RetrievedDocument{
		partsDoc("Honda Civic Starter Motor - $450", "Denso starter motor... Price $400-$500. In stock.", "autozone.com"),
		partsDoc("Random gadget $20", "A gadget for the kitchen.", "kitchen-stuff.example"),
	}}
	service := newTestService(retriever)

	result, failure := service.Parts(context.Background(), "starter motor", models.VehicleContext{Year: 2018, Make: "Honda", Model: "Civic"})
	if failure != nil {
		t.Fatalf("unexpected failure: %v", failure)
	}

	if len(result.Parts) != 1 {
		t.Fatalf("parts = %d, want 1 (low-confidence candidate dropped)", len(result.Parts))
	}
	part := result.Parts[0]
	if part.Confidence <= 0.5 {
		t.Fatalf("surviving part confidence = %v, want > 0.5", part.Confidence)
	}
	if part.Brand != "Denso" {
		t.Fatalf("brand = %q, want Denso", part.Brand)
	}
	if part.PriceMin != 400 || part.PriceMax != 500 {
		t.Fatalf("price range = %v-%v, want 400-500", part.PriceMin, part.PriceMax)
	}
	if part.Availability != models.AvailabilityInStock {
		t.Fatalf("availability = %q, want in-stock", part.Availability)
	}
}

func TestPartsSortedByConfidenceDescending(t *testing.T) {
	retriever := &fakeRetriever{docs: []models.RetrievedDocument{
		partsDoc("Brake rotor $80", "Brake rotor with digits 80.", "carparts.example"),
		partsDoc("Brake pads $45", "Brake pads for your vehicle engine bay, repair and maintenance ready. Premium transmission-safe compound with teflon coating applied.", "autozone.com"),
	}}
	service := newTestService(retriever)

	result, failure := service.Parts(context.Background(), "brakes", models.VehicleContext{})
	if failure != nil {
		t.Fatalf("unexpected failure: %v", failure)
	}
	if len(result.Parts) != 2 {
		t.Fatalf("parts = %d, want 2", len(result.Parts))
	}
	for i := 1; i < len(result.Parts); i++ {
		if result.Parts[i-1].Confidence < result.Parts[i].Confidence {
			t.Fatalf("parts not sorted by confidence descending: %v then %v",
				result.Parts[i-1].Confidence, result.Parts[i].Confidence)
		}
	}
	if result.Parts[0].Source != "autozone.com" {
		t.Fatalf("highest-confidence part should come from the trusted domain")
	}
}

func TestRunReturnsFailureWhenNoCacheEntry(t *testing.T) {
	failure := &search.Failure{
		Kind:     search.KindTimeout,
		Message:  "deadline",
		Provider: "test",
		Fallback: search.FallbackCachedData,
	}
	service := newTestService(&fakeRetriever{failure: failure})

	_, got := service.Parts(context.Background(), "starter motor", models.VehicleContext{})
	if got == nil || got.Kind != search.KindTimeout {
		t.Fatalf("failure = %v, want the retriever's timeout", got)
	}
}

func TestCachedFallbackServesStaleResults(t *testing.T) {
	retriever := &fakeRetriever{docs: []models.RetrievedDocument{
		partsDoc("Honda Civic Starter Motor - $450", "Denso starter motor... Price $400-$500. In stock.", "autozone.com"),
	}}
	service := newTestService(retriever)

	if _, failure := service.Parts(context.Background(), "starter motor", models.VehicleContext{}); failure != nil {
		t.Fatalf("warm-up search failed: %v", failure)
	}

	retriever.docs = nil
	retriever.failure = &search.Failure{
		Kind:     search.KindRateLimited,
		Message:  "429",
		Provider: "test",
		Fallback: search.FallbackCachedData,
	}

	result, failure := service.Parts(context.Background(), "starter motor", models.VehicleContext{})
	if failure != nil {
		t.Fatalf("cached fallback should swallow the failure, got %v", failure)
	}
	if !result.FromCache {
		t.Fatalf("result should be marked as served from cache")
	}
	if len(result.Parts) != 1 {
		t.Fatalf("cached parts = %d, want 1", len(result.Parts))
	}
}

func TestOfflineFallbackDoesNotTouchCache(t *testing.T) {
	retriever := &fakeRetriever{failure: &search.Failure{
		Kind:     search.KindNoResults,
		Message:  "nothing",
		Provider: "test",
		Fallback: search.FallbackOfflineKnowledge,
	}}
	service := newTestService(retriever)

	_, failure := service.Parts(context.Background(), "starter motor", models.VehicleContext{})
	if failure == nil || failure.Kind != search.KindNoResults {
		t.Fatalf("failure = %v, want no_results passed through", failure)
	}
}

func TestDocumentsScoresWithoutExtraction(t *testing.T) {
	retriever := &fakeRetriever{docs: []models.RetrievedDocument{
		partsDoc("VIN history report", "Vehicle history for VIN 1HGBH41JXMN109186 with 3 records.", "vehiclehistory.com"),
	}}
	service := newTestService(retriever)

	scored, failure := service.Documents(context.Background(), models.IntentVINLookup, "VIN 1HGBH41JXMN109186", models.VehicleContext{})
	if failure != nil {
		t.Fatalf("unexpected failure: %v", failure)
	}
	if len(scored) != 1 {
		t.Fatalf("scored documents = %d, want 1", len(scored))
	}
	if scored[0].Score.Overall <= 0 || scored[0].Score.Overall > 1 {
		t.Fatalf("overall = %v, want within (0,1]", scored[0].Score.Overall)
	}
}

func TestSearchAllRunsEveryExtractingIntent(t *testing.T) {
	retriever := &fakeRetriever{failure: &search.Failure{
		Kind:     search.KindConnectionFailed,
		Message:  "down",
		Provider: "test",
		Fallback: search.FallbackOfflineKnowledge,
	}}
	service := newTestService(retriever)

	outcomes := service.SearchAll(context.Background(), "brake job", models.VehicleContext{})
	if len(outcomes) != 3 {
		t.Fatalf("outcomes = %d, want 3", len(outcomes))
	}
	for _, intent := range []models.Intent{models.IntentParts, models.IntentLaborRates, models.IntentProcedures} {
		outcome, ok := outcomes[intent]
		if !ok {
			t.Fatalf("missing outcome for %s", intent)
		}
		if outcome.Failure == nil || outcome.Failure.Kind != search.KindConnectionFailed {
			t.Fatalf("%s failure = %v, want connection_failed", intent, outcome.Failure)
		}
	}
}
