// Package enrich fetches the full page behind a search hit when the
// provider snippet is too thin for extraction to work with.
package enrich

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"

	"github.com/wrenchwise/autosearch/config"
	"github.com/wrenchwise/autosearch/models"
)

// maxBodyRunes caps how much page text replaces a snippet.
const maxBodyRunes = 4000

// Fetcher downloads pages and reduces them to plain text.
type Fetcher struct {
	cfg       *config.Config
	transport http.RoundTripper
}

// NewFetcher builds a page fetcher configured from cfg.
func NewFetcher(cfg *config.Config) *Fetcher {
	return &Fetcher{
		cfg: cfg,
		transport: &http.Transport{
			Proxy: http.ProxyFromEnvironment,
			DialContext: (&net.Dialer{
				Timeout:   cfg.Timeout,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			MaxIdleConns:        100,
			IdleConnTimeout:     90 * time.Second,
			TLSHandshakeTimeout: 10 * time.Second,
		},
	}
}

// WithTransport swaps the HTTP transport. Tests use this to install a
// mock.
func (f *Fetcher) WithTransport(rt http.RoundTripper) {
	f.transport = rt
}

// Enrich replaces the body of documents whose snippet is shorter than
// minLen with text fetched from the hit's page. Fetch failures leave the
// original snippet in place; enrichment is best-effort.
func (f *Fetcher) Enrich(ctx context.Context, docs []models.RetrievedDocument, minLen int) []models.RetrievedDocument {
	out := make([]models.RetrievedDocument, len(docs))
	copy(out, docs)

	for i := range out {
		if ctx.Err() != nil {
			break
		}
		if len(out[i].Body) >= minLen || out[i].OriginDomain == "unknown" {
			continue
		}
		text, err := f.Fetch(ctx, out[i].URL)
		if err != nil {
			slog.Debug("enrichment fetch failed",
				slog.String("url", out[i].URL),
				slog.Any("error", err),
			)
			continue
		}
		if text != "" {
			out[i].Body = text
		}
	}
	return out
}

// Fetch downloads one page and returns its visible text.
func (f *Fetcher) Fetch(ctx context.Context, pageURL string) (string, error) {
	parsed, err := url.Parse(pageURL)
	if err != nil || parsed.Host == "" {
		return "", fmt.Errorf("unusable page url %q", pageURL)
	}

	collector := colly.NewCollector(
		colly.AllowedDomains(parsed.Host, strings.TrimPrefix(parsed.Host, "www.")),
		colly.UserAgent(f.cfg.UserAgent),
		colly.MaxDepth(1),
	)
	collector.SetRequestTimeout(f.cfg.Timeout)
	collector.IgnoreRobotsTxt = true
	collector.WithTransport(f.transport)

	var text string
	var fetchErr error

	collector.OnResponse(func(r *colly.Response) {
		extracted, err := ExtractText(bytes.NewReader(r.Body))
		if err != nil {
			fetchErr = fmt.Errorf("parse page: %w", err)
			return
		}
		text = extracted
	})
	collector.OnError(func(_ *colly.Response, err error) {
		fetchErr = err
	})

	if err := collector.Visit(pageURL); err != nil {
		return "", fmt.Errorf("visit page: %w", err)
	}
	collector.Wait()

	if fetchErr != nil {
		return "", fetchErr
	}
	return text, nil
}

// ExtractText reduces an HTML document to visible text, one line per
// block element so downstream line-based heuristics keep working, capped
// at maxBodyRunes.
func ExtractText(r io.Reader) (string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return "", err
	}
	doc.Find("script, style, nav, footer, noscript").Remove()

	var lines []string
	doc.Find("h1, h2, h3, p, li, td").Each(func(_ int, sel *goquery.Selection) {
		line := strings.Join(strings.Fields(sel.Text()), " ")
		if line != "" {
			lines = append(lines, line)
		}
	})

	text := strings.Join(lines, "\n")
	if text == "" {
		text = strings.Join(strings.Fields(doc.Find("body").Text()), " ")
	}

	runes := []rune(text)
	if len(runes) > maxBodyRunes {
		text = string(runes[:maxBodyRunes])
	}
	return text, nil
}
