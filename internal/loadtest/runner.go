package loadtest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/okian/courtquote/pkg/logger"
)

// File permission constants.
const (
	directoryPermission = 0750
	outputPermission    = 0600
)

// Run executes the complete load test.
func Run(ctx context.Context, config *Config) error {
	stats := &Stats{StartTime: time.Now()}
	client := newHTTPClient(config.Timeout)

	logger.Get().Info(ctx, "starting quotation load test",
		logger.String("baseURL", config.BaseURL),
		logger.Int("quotations", config.NumQuotations),
		logger.Int("workers", config.Workers),
		logger.Duration("timeout", config.Timeout),
		logger.Int("legacyPercent", config.LegacyPercent),
		logger.Int("replayPercent", config.ReplayPercent),
		logger.Bool("verbose", config.Verbose))

	// Step 1: Check service health
	if err := checkServiceHealth(ctx, client, config); err != nil {
		return fmt.Errorf("service health check failed: %w", err)
	}

	// Step 2: Read the catalog the requests are priced against
	pricing, sports, err := fetchCatalog(ctx, client, config)
	if err != nil {
		return fmt.Errorf("catalog retrieval failed: %w", err)
	}

	// Step 3: Generate requests
	requests, err := generateRequests(ctx, config, pricing, sports, stats)
	if err != nil {
		return fmt.Errorf("request generation failed: %w", err)
	}

	// Step 4: Submit concurrently
	results := submitQuotations(ctx, config, requests, stats)

	// Step 5: Read back the stored list
	var listed []Quotation
	if err := client.getJSON(ctx, config.BaseURL+"/quotations?limit="+strconv.Itoa(MaxListLimit), &listed); err != nil {
		logger.Get().Warn(ctx, "failed to list quotations", logger.Error(err))
		listed = nil
	}
	stats.Listed = len(listed)

	// Step 6: Verify results
	if err := verifyResults(ctx, results, listed); err != nil {
		return fmt.Errorf("result verification failed: %w", err)
	}

	// Step 7: Fetch one rendered document
	if err := checkDocument(ctx, client, config, results); err != nil {
		return fmt.Errorf("document check failed: %w", err)
	}

	// Step 8: Save created quotations to file
	if config.OutputFile != "-" {
		if err := saveResults(ctx, config, results); err != nil {
			logger.Get().Warn(ctx, "failed to save results to file", logger.Error(err))
		}
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(stats)

	if stats.Failed > 0 {
		return fmt.Errorf("%d of %d submissions failed", stats.Failed, stats.RequestsSubmitted)
	}
	logger.Get().Info(ctx, "test completed successfully")
	return nil
}

// checkServiceHealth verifies the service is running.
func checkServiceHealth(ctx context.Context, client *HTTPClient, config *Config) error {
	logger.Get().Info(ctx, "checking service health")

	resp, err := client.Get(ctx, config.BaseURL+"/healthz")
	if err != nil {
		return fmt.Errorf("failed to connect to service: %w", err)
	}
	if _, err := readResponseBody(resp); err != nil {
		return err
	}

	// The service answers with Prometheus metrics.
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("service health check failed with status: %d", resp.StatusCode)
	}

	logger.Get().Info(ctx, "service is healthy")
	return nil
}

// fetchCatalog returns the pricing tables and the offered sport ids.
func fetchCatalog(ctx context.Context, client *HTTPClient, config *Config) (Pricing, []string, error) {
	var pricing Pricing
	if err := client.getJSON(ctx, config.BaseURL+"/debug/pricing", &pricing); err != nil {
		return Pricing{}, nil, err
	}

	var cfg struct {
		Sports []struct {
			ID string `json:"id"`
		} `json:"sports"`
	}
	if err := client.getJSON(ctx, config.BaseURL+"/sports-config", &cfg); err != nil {
		return Pricing{}, nil, err
	}
	sports := make([]string, 0, len(cfg.Sports))
	for _, s := range cfg.Sports {
		sports = append(sports, s.ID)
	}

	logger.Get().Info(ctx, "catalog loaded",
		logger.String("version", pricing.Version),
		logger.Int("sports", len(sports)))
	return pricing, sports, nil
}

// checkDocument downloads the PDF of the first created quotation.
func checkDocument(ctx context.Context, client *HTTPClient, config *Config, results []Result) error {
	for _, r := range results {
		if outcome(r) != outcomeCreated {
			continue
		}
		url := config.BaseURL + "/quotations/" + r.Quotation.QuotationNumber + "/document?format=pdf"
		resp, err := client.Get(ctx, url)
		if err != nil {
			return err
		}
		body, err := readResponseBody(resp)
		if err != nil {
			return err
		}
		if resp.StatusCode != http.StatusOK || len(body) < 4 || string(body[:4]) != "%PDF" {
			return fmt.Errorf("GET %s: status %d, %d bytes", url, resp.StatusCode, len(body))
		}
		logger.Get().Info(ctx, "document rendered",
			logger.String("number", r.Quotation.QuotationNumber),
			logger.Int("bytes", len(body)))
		return nil
	}
	return nil
}

// saveResults writes the created quotations to a JSON file.
func saveResults(ctx context.Context, config *Config, results []Result) error {
	created := make([]Quotation, 0, len(results))
	for _, r := range results {
		if outcome(r) == outcomeCreated {
			created = append(created, r.Quotation)
		}
	}
	if len(created) == 0 {
		return fmt.Errorf("no quotations to save")
	}

	filename := config.OutputFile
	if filename == "" {
		filename = "quotations_" + time.Now().Format("20060102_150405") + ".json"
	}

	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	data, err := json.MarshalIndent(created, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal quotations: %w", err)
	}
	if err := os.WriteFile(filename, data, outputPermission); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	logger.Get().Info(ctx, "quotations saved to file", logger.String("filename", filename))
	return nil
}

// displayFinalStats logs the final test statistics.
func displayFinalStats(stats *Stats) {
	var successRate, requestsPerSecond float64

	if stats.RequestsSubmitted > 0 {
		successRate = float64(stats.Created+stats.Replayed) / float64(stats.RequestsSubmitted) * PercentageMultiplier
	}
	if stats.Duration > 0 {
		requestsPerSecond = float64(stats.RequestsSubmitted) / stats.Duration.Seconds()
	}

	logger.Get().Info(context.Background(), "final statistics",
		logger.Int("requestsGenerated", stats.RequestsGenerated),
		logger.Int("requestsSubmitted", stats.RequestsSubmitted),
		logger.Int("created", stats.Created),
		logger.Int("replayed", stats.Replayed),
		logger.Int("failed", stats.Failed),
		logger.Int("listed", stats.Listed),
		logger.Duration("duration", stats.Duration),
		logger.Float64("successRate", successRate),
		logger.Float64("requestsPerSecond", requestsPerSecond))
}
