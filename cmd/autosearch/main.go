package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wrenchwise/autosearch/cache"
	"github.com/wrenchwise/autosearch/config"
	"github.com/wrenchwise/autosearch/enrich"
	"github.com/wrenchwise/autosearch/models"
	"github.com/wrenchwise/autosearch/pipeline"
	"github.com/wrenchwise/autosearch/relevance"
	"github.com/wrenchwise/autosearch/search"
)

func main() {
	defaultCfg := config.DefaultConfig()
	apiKeyDefault := defaultCfg.APIKey
	if value, ok := config.EnvString("AUTOSEARCH_API_KEY"); ok {
		apiKeyDefault = value
	}
	providerDefault := defaultCfg.ProviderBaseURL
	if value, ok := config.EnvString("AUTOSEARCH_PROVIDER_URL"); ok {
		providerDefault = value
	}
	cacheSizeDefault := defaultCfg.CacheSize
	if value, ok, err := config.EnvInt("AUTOSEARCH_CACHE_SIZE"); err != nil {
		fmt.Fprintf(os.Stderr, "invalid AUTOSEARCH_CACHE_SIZE: %v\n", err)
		os.Exit(1)
	} else if ok {
		cacheSizeDefault = value
	}

	intentFlag := flag.String("intent", "all", "Search intent: parts, labor_rates, procedures, vin_lookup, or all")
	query := flag.String("query", "", "Free-text automotive query")
	year := flag.Int("year", 0, "Vehicle year")
	vehicleMake := flag.String("make", "", "Vehicle make")
	vehicleModel := flag.String("model", "", "Vehicle model")
	timeoutSec := flag.Int("timeout", int(defaultCfg.Timeout/time.Second), "Provider request timeout (seconds)")
	threshold := flag.Float64("threshold", defaultCfg.ConfidenceThreshold, "Minimum entity confidence")
	enrichContent := flag.Bool("enrich", false, "Fetch full pages when snippets are too thin")
	providerURL := flag.String("provider-url", providerDefault, "Search provider endpoint")
	apiKey := flag.String("api-key", apiKeyDefault, "Search provider API key")
	outputFile := flag.String("output", "", "Optional JSON output file")
	metricsAddr := flag.String("metrics-addr", defaultCfg.MetricsAddr, "Prometheus metrics listen address (e.g. :9090)")
	verbose := flag.Bool("v", false, "Enable verbose logging")

	flag.Parse()

	logger, level := newLogger(*verbose)
	slog.SetDefault(logger)
	slog.SetLogLoggerLevel(level.Level())

	if *query == "" {
		fmt.Fprintln(os.Stderr, "a -query is required")
		os.Exit(1)
	}

	cfg := config.DefaultConfig()
	cfg.ProviderBaseURL = *providerURL
	cfg.APIKey = *apiKey
	cfg.Timeout = time.Duration(*timeoutSec) * time.Second
	cfg.ConfidenceThreshold = *threshold
	cfg.EnrichContent = *enrichContent
	cfg.CacheSize = cacheSizeDefault
	cfg.MetricsAddr = *metricsAddr
	cfg.Verbose = *verbose
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", slog.Any("error", err))
		os.Exit(1)
	}

	client, err := search.NewClient(cfg)
	if err != nil {
		slog.Error("initialising search client", slog.Any("error", err))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var metricsServer *http.Server
	if cfg.MetricsAddr != "" {
		metricsServer = &http.Server{
			Addr:    cfg.MetricsAddr,
			Handler: promhttp.HandlerFor(client.Metrics.Registry, promhttp.HandlerOpts{}),
		}
		go func() {
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				slog.Error("metrics server failed", slog.Any("error", err))
			}
		}()
		slog.Info("metrics server enabled", slog.String("addr", cfg.MetricsAddr))
	}

	scorer := relevance.NewScorer(relevance.DefaultScorerConfig(), nil)
	results := cache.New(cfg.CacheSize, cfg.CacheTTL)
	var enricher pipeline.Enricher
	if cfg.EnrichContent {
		enricher = enrich.NewFetcher(cfg)
	}
	service := pipeline.NewService(cfg, client, scorer, results, enricher, client.Metrics)

	vehicle := models.VehicleContext{Year: *year, Make: *vehicleMake, Model: *vehicleModel}

	start := time.Now()
	outcomes := runSearches(ctx, service, models.Intent(*intentFlag), *query, vehicle)
	duration := time.Since(start)

	if *outputFile != "" {
		if err := writeJSON(*outputFile, outcomes); err != nil {
			slog.Error("writing output", slog.Any("error", err))
			os.Exit(1)
		}
	}

	if metricsServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			slog.Error("metrics server shutdown failed", slog.Any("error", err))
		}
		cancel()
	}

	printSummary(outcomes, duration)
}

func runSearches(ctx context.Context, service *pipeline.Service, intent models.Intent, query string, vehicle models.VehicleContext) map[models.Intent]pipeline.IntentOutcome {
	switch intent {
	case models.IntentParts:
		result, failure := service.Parts(ctx, query, vehicle)
		return map[models.Intent]pipeline.IntentOutcome{intent: {Result: result, Failure: failure}}
	case models.IntentLaborRates:
		result, failure := service.LaborRates(ctx, query, vehicle)
		return map[models.Intent]pipeline.IntentOutcome{intent: {Result: result, Failure: failure}}
	case models.IntentProcedures:
		result, failure := service.Procedures(ctx, query, vehicle)
		return map[models.Intent]pipeline.IntentOutcome{intent: {Result: result, Failure: failure}}
	case models.IntentVINLookup:
		scored, failure := service.Documents(ctx, intent, query, vehicle)
		result := models.SearchResult{Intent: intent, Query: query, RetrievedAt: time.Now()}
		for _, sd := range scored {
			result.Documents = append(result.Documents, sd.Document)
		}
		return map[models.Intent]pipeline.IntentOutcome{intent: {Result: result, Failure: failure}}
	default:
		return service.SearchAll(ctx, query, vehicle)
	}
}

func writeJSON(filename string, outcomes map[models.Intent]pipeline.IntentOutcome) error {
	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}
	defer f.Close()

	encoder := json.NewEncoder(f)
	encoder.SetIndent("", "  ")
	payload := make(map[models.Intent]models.SearchResult, len(outcomes))
	for intent, outcome := range outcomes {
		if outcome.Failure == nil {
			payload[intent] = outcome.Result
		}
	}
	if err := encoder.Encode(payload); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return nil
}

func printSummary(outcomes map[models.Intent]pipeline.IntentOutcome, duration time.Duration) {
	separator := "--------------------------------------------------"
	fmt.Println("\n" + separator)
	fmt.Println("Search complete")

	for intent, outcome := range outcomes {
		if outcome.Failure != nil {
			fmt.Printf("  %-12s FAILED: %s (fallback: %s)\n", intent, outcome.Failure.Kind, outcome.Failure.Fallback)
			continue
		}
		r := outcome.Result
		stale := ""
		if r.FromCache {
			stale = " (cached)"
		}
		fmt.Printf("  %-12s docs=%d parts=%d rates=%d procedures=%d%s\n",
			intent, len(r.Documents), len(r.Parts), len(r.LaborRates), len(r.Procedures), stale)
	}
	fmt.Printf("  Duration:      %v\n", duration)
	fmt.Println(separator)
}

func newLogger(verbose bool) (*slog.Logger, *slog.LevelVar) {
	level := &slog.LevelVar{}
	if verbose {
		level.Set(slog.LevelDebug)
	} else {
		level.Set(slog.LevelInfo)
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if isTerminal(os.Stdout) {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	return slog.New(handler), level
}

func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}
