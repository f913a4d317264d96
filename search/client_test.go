package search

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/jarcoal/httpmock"

	"github.com/wrenchwise/autosearch/config"
	"github.com/wrenchwise/autosearch/models"
)

func mockedClient(t *testing.T) (*Client, *httpmock.MockTransport) {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.ProviderBaseURL = "https://provider.test/search"
	cfg.APIKey = "test-key"

	client, err := NewClient(cfg)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	transport := httpmock.NewMockTransport()
	client.WithHTTPClient(&http.Client{Transport: transport})
	return client, transport
}

func TestRetrieveMapsHits(t *testing.T) {
	client, transport := mockedClient(t)
	transport.RegisterResponder("POST", "https://provider.test/search",
		httpmock.NewStringResponder(200, `{
			"results": [
				{"title": "Brake pads", "url": "https://www.autozone.com/brakes", "content": "Ceramic pads $45", "score": 0.91, "published_date": "2024-06-01"},
				{"title": "", "url": "::bad::", "content": ""},
				{"title": "Rotor kit", "url": "https://shop.example.com/rotors", "content": "Front rotor kit"}
			]
		}`))

	docs, failure := client.Retrieve(context.Background(), models.IntentParts, "brake pads", models.VehicleContext{})
	if failure != nil {
		t.Fatalf("unexpected failure: %v", failure)
	}
	if len(docs) != 3 {
		t.Fatalf("documents = %d, want 3", len(docs))
	}

	if docs[0].OriginDomain != "autozone.com" {
		t.Fatalf("origin domain = %q, want autozone.com (www stripped)", docs[0].OriginDomain)
	}
	if docs[0].PublishedAt == nil {
		t.Fatalf("published date should be parsed")
	}
	if docs[0].ProviderRank != 0.91 {
		t.Fatalf("provider rank = %v, want 0.91", docs[0].ProviderRank)
	}

	if docs[1].Title != placeholderTitle || docs[1].Body != placeholderBody {
		t.Fatalf("missing title/body should get placeholders, got %q / %q", docs[1].Title, docs[1].Body)
	}
	if docs[1].OriginDomain != "unknown" {
		t.Fatalf("unparseable URL should yield origin domain unknown, got %q", docs[1].OriginDomain)
	}

	if docs[2].ProviderRank >= docs[1].ProviderRank {
		t.Fatalf("position-derived ranks should decrease: %v then %v", docs[1].ProviderRank, docs[2].ProviderRank)
	}
}

func TestRetrieveComposesScopedRequest(t *testing.T) {
	client, transport := mockedClient(t)

	var captured providerRequest
	transport.RegisterResponder("POST", "https://provider.test/search",
		func(req *http.Request) (*http.Response, error) {
			if err := json.NewDecoder(req.Body).Decode(&captured); err != nil {
				t.Fatalf("decode request: %v", err)
			}
			return httpmock.NewStringResponse(200, `{"results": [{"title": "t", "url": "https://repairpal.com/x", "content": "c"}]}`), nil
		})

	vehicle := models.VehicleContext{Year: 2018, Make: "Honda", Model: "Civic"}
	if _, failure := client.Retrieve(context.Background(), models.IntentLaborRates, "brake job cost", vehicle); failure != nil {
		t.Fatalf("unexpected failure: %v", failure)
	}

	if captured.Query != "2018 Honda Civic brake job cost" {
		t.Fatalf("query = %q, want vehicle-enriched text", captured.Query)
	}
	if captured.MaxResults != 3 {
		t.Fatalf("max results = %d, want 3 for labor rates", captured.MaxResults)
	}
	found := false
	for _, domain := range captured.IncludeDomains {
		if domain == "repairpal.com" {
			found = true
		}
	}
	if !found {
		t.Fatalf("include domains %v should contain repairpal.com", captured.IncludeDomains)
	}
	if captured.APIKey != "test-key" {
		t.Fatalf("api key should be forwarded to the provider")
	}
}

func TestRetrieveGenericQualifierWithoutVehicle(t *testing.T) {
	query := ComposeQuery("alternator noise", models.VehicleContext{})
	if !strings.Contains(query, "automotive") {
		t.Fatalf("query %q should carry the generic automotive qualifier", query)
	}
}

func TestRetrieveFailureClassification(t *testing.T) {
	tests := []struct {
		name      string
		responder httpmock.Responder
		wantKind  FailureKind
	}{
		{
			name:      "rate limited",
			responder: httpmock.NewStringResponder(429, "slow down"),
			wantKind:  KindRateLimited,
		},
		{
			name:      "server error",
			responder: httpmock.NewStringResponder(500, "boom"),
			wantKind:  KindConnectionFailed,
		},
		{
			name:      "timeout",
			responder: httpmock.NewErrorResponder(&net.DNSError{IsTimeout: true}),
			wantKind:  KindTimeout,
		},
		{
			name:      "malformed payload",
			responder: httpmock.NewStringResponder(200, "{not json"),
			wantKind:  KindInvalidResponse,
		},
		{
			name:      "zero hits",
			responder: httpmock.NewStringResponder(200, `{"results": []}`),
			wantKind:  KindNoResults,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, transport := mockedClient(t)
			transport.RegisterResponder("POST", "https://provider.test/search", tt.responder)

			docs, failure := client.Retrieve(context.Background(), models.IntentParts, "brake pads", models.VehicleContext{})
			if docs != nil {
				t.Fatalf("documents should be nil on failure")
			}
			if failure == nil {
				t.Fatalf("expected a failure")
			}
			if failure.Kind != tt.wantKind {
				t.Fatalf("kind = %q, want %q", failure.Kind, tt.wantKind)
			}
		})
	}
}

func TestRetrieveHonorsCallerDeadline(t *testing.T) {
	client, transport := mockedClient(t)
	transport.RegisterResponder("POST", "https://provider.test/search",
		func(req *http.Request) (*http.Response, error) {
			<-req.Context().Done()
			return nil, req.Context().Err()
		})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, failure := client.Retrieve(ctx, models.IntentParts, "brake pads", models.VehicleContext{})
	if failure == nil || failure.Kind != KindTimeout {
		t.Fatalf("failure = %v, want timeout", failure)
	}
	if failure.Fallback != FallbackCachedData {
		t.Fatalf("fallback = %q, want %q", failure.Fallback, FallbackCachedData)
	}
}

func TestFailureMessageOmitsAPIKey(t *testing.T) {
	client, transport := mockedClient(t)
	transport.RegisterResponder("POST", "https://provider.test/search",
		httpmock.NewStringResponder(500, "boom"))

	_, failure := client.Retrieve(context.Background(), models.IntentParts, "brake pads", models.VehicleContext{})
	if failure == nil {
		t.Fatalf("expected a failure")
	}
	if strings.Contains(failure.Error(), "test-key") {
		t.Fatalf("failure message must not leak the API key: %q", failure.Error())
	}
}
