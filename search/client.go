// Package search implements the intent-scoped retrieval client for the
// external search provider, including query composition and the failure
// taxonomy returned to callers in place of raw transport errors.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/wrenchwise/autosearch/config"
	"github.com/wrenchwise/autosearch/models"
)

const (
	placeholderTitle = "Untitled result"
	placeholderBody  = "No description available"
)

// Client issues single round-trip searches against the provider. It
// performs no retries and no caching; both are caller concerns.
type Client struct {
	cfg     *config.Config
	http    *http.Client
	Metrics *Metrics
}

// NewClient builds a retrieval client configured from cfg.
func NewClient(cfg *config.Config) (*Client, error) {
	parsed, err := url.Parse(cfg.ProviderBaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse provider base url: %w", err)
	}
	if parsed.Host == "" {
		return nil, fmt.Errorf("provider base url must include a host")
	}

	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   cfg.Timeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        100,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	}

	return &Client{
		cfg:     cfg,
		http:    &http.Client{Transport: transport},
		Metrics: NewMetrics(),
	}, nil
}

// WithHTTPClient swaps the underlying HTTP client. Tests use this to
// install a mock transport.
func (c *Client) WithHTTPClient(hc *http.Client) {
	c.http = hc
}

type providerRequest struct {
	APIKey         string   `json:"api_key"`
	Query          string   `json:"query"`
	MaxResults     int      `json:"max_results"`
	IncludeDomains []string `json:"include_domains,omitempty"`
}

type providerHit struct {
	Title         string  `json:"title"`
	URL           string  `json:"url"`
	Content       string  `json:"content"`
	Score         float64 `json:"score"`
	PublishedDate string  `json:"published_date"`
}

type providerResponse struct {
	Results []providerHit `json:"results"`
}

// Retrieve composes an intent-scoped query, issues one bounded provider
// call, and maps hits into documents. On any failure it returns a
// *Failure carrying the classification and fallback hint; it never
// surfaces a raw transport error.
func (c *Client) Retrieve(ctx context.Context, intent models.Intent, queryText string, vehicle models.VehicleContext) ([]models.RetrievedDocument, *Failure) {
	if ctx == nil {
		ctx = context.Background()
	}
	scope := scopeFor(intent)
	query := ComposeQuery(queryText, vehicle)

	c.Metrics.IncSearch(string(intent))
	slog.Debug("issuing provider search",
		slog.String("intent", string(intent)),
		slog.String("query", query),
		slog.Int("max_results", scope.maxResults),
	)

	reqCtx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	body, err := json.Marshal(providerRequest{
		APIKey:         c.cfg.APIKey,
		Query:          query,
		MaxResults:     scope.maxResults,
		IncludeDomains: scope.domains,
	})
	if err != nil {
		return nil, c.failure(KindInvalidResponse, "encode provider request", err)
	}

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, c.cfg.ProviderBaseURL, bytes.NewReader(body))
	if err != nil {
		return nil, c.failure(KindInvalidResponse, "build provider request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", c.cfg.UserAgent)

	start := time.Now()
	resp, err := c.http.Do(req)
	c.Metrics.ObserveDuration(time.Since(start))
	if err != nil {
		failure := c.classify(err, 0)
		c.logFailure(intent, failure)
		return nil, failure
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		failure := c.classify(nil, resp.StatusCode)
		c.logFailure(intent, failure)
		return nil, failure
	}

	var decoded providerResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		failure := c.failure(KindInvalidResponse, "malformed provider response", err)
		c.logFailure(intent, failure)
		return nil, failure
	}

	if len(decoded.Results) == 0 {
		failure := c.failure(KindNoResults, fmt.Sprintf("no results for %q", query), nil)
		c.logFailure(intent, failure)
		return nil, failure
	}

	docs := make([]models.RetrievedDocument, 0, len(decoded.Results))
	for i, hit := range decoded.Results {
		docs = append(docs, mapHit(hit, i))
	}
	c.Metrics.AddDocuments(len(docs))
	return docs, nil
}

// Probe issues a lightweight connectivity check against the provider
// host, bounded by the probe timeout.
func (c *Client) Probe(ctx context.Context) *Failure {
	if ctx == nil {
		ctx = context.Background()
	}
	reqCtx, cancel := context.WithTimeout(ctx, c.cfg.ProbeTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodHead, c.cfg.ProviderBaseURL, nil)
	if err != nil {
		return c.failure(KindInvalidResponse, "build probe request", err)
	}
	req.Header.Set("User-Agent", c.cfg.UserAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return c.classify(err, 0)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusInternalServerError {
		return c.classify(nil, resp.StatusCode)
	}
	return nil
}

// mapHit converts one provider hit into a document. A missing title or
// body gets a placeholder instead of failing the batch; a hit whose URL
// cannot be parsed gets origin domain "unknown".
func mapHit(hit providerHit, position int) models.RetrievedDocument {
	doc := models.RetrievedDocument{
		Title:        strings.TrimSpace(hit.Title),
		Body:         strings.TrimSpace(hit.Content),
		URL:          hit.URL,
		OriginDomain: originDomain(hit.URL),
		ProviderRank: hit.Score,
	}
	if doc.Title == "" {
		doc.Title = placeholderTitle
	}
	if doc.Body == "" {
		doc.Body = placeholderBody
	}
	if doc.ProviderRank == 0 {
		// Position-derived fallback so later hits still rank lower.
		doc.ProviderRank = 1.0 / float64(position+1)
	}
	if ts, ok := parsePublished(hit.PublishedDate); ok {
		doc.PublishedAt = &ts
	}
	return doc
}

func originDomain(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" {
		return "unknown"
	}
	return strings.TrimPrefix(strings.ToLower(parsed.Host), "www.")
}

func parsePublished(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02", "Mon, 02 Jan 2006 15:04:05 MST"} {
		if ts, err := time.Parse(layout, value); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}

func (c *Client) logFailure(intent models.Intent, failure *Failure) {
	c.Metrics.IncFailure(string(failure.Kind))
	slog.Error("retrieval failed",
		slog.String("intent", string(intent)),
		slog.String("kind", string(failure.Kind)),
		slog.String("fallback", string(failure.Fallback)),
		slog.Any("error", failure.Err),
	)
}
