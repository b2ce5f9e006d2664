package loadtest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/courtquote/pkg/logger"
)

// submitQuotations posts every original request concurrently, then every
// replay. Replays run second so their key is no longer in flight.
func submitQuotations(ctx context.Context, config *Config, requests []Request, stats *Stats) []Result {
	var originals, replays []Request
	for _, r := range requests {
		if r.Replay {
			replays = append(replays, r)
		} else {
			originals = append(originals, r)
		}
	}

	results := submitBatch(ctx, config, originals)
	results = append(results, submitBatch(ctx, config, replays)...)

	for _, r := range results {
		switch outcome(r) {
		case outcomeCreated:
			stats.Created++
		case outcomeReplayed:
			stats.Replayed++
		default:
			stats.Failed++
		}
	}
	stats.RequestsSubmitted = len(results)

	logger.Get().Info(ctx, "submission completed",
		logger.Int("created", stats.Created),
		logger.Int("replayed", stats.Replayed),
		logger.Int("failed", stats.Failed))
	return results
}

func outcome(r Result) string {
	switch {
	case r.Err != nil:
		return outcomeFailed
	case r.StatusCode == http.StatusCreated:
		return outcomeCreated
	case r.StatusCode == http.StatusOK:
		return outcomeReplayed
	default:
		return outcomeFailed
	}
}

// submitBatch fans requests out to config.Workers goroutines.
func submitBatch(ctx context.Context, config *Config, requests []Request) []Result {
	if len(requests) == 0 {
		return nil
	}
	client := newHTTPClient(config.Timeout)
	url := config.BaseURL + "/quotations"

	results := make([]Result, len(requests))
	var (
		submitted  atomic.Int64
		lastReport atomic.Int64
	)

	type job struct {
		index int
		req   Request
	}
	jobs := make(chan job, config.Workers*WorkerChannelMultiplier)

	var wg sync.WaitGroup
	for i := 0; i < config.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				results[j.index] = submitSingle(ctx, client, url, j.req)

				total := submitted.Add(1)
				now := time.Now().UnixNano()
				last := lastReport.Load()
				if now-last >= int64(ProgressInterval) && lastReport.CompareAndSwap(last, now) && config.Verbose {
					logger.Get().Info(ctx, "progress",
						logger.Int64("submitted", total),
						logger.Int("batch", len(requests)))
				}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for i, r := range requests {
			select {
			case <-ctx.Done():
				return
			case jobs <- job{index: i, req: r}:
			}
		}
	}()

	wg.Wait()

	// Requests never dispatched because ctx ended.
	for i := range results {
		if results[i].StatusCode == 0 && results[i].Err == nil {
			results[i] = Result{IdempotencyKey: requests[i].IdempotencyKey, Replay: requests[i].Replay, Err: ctx.Err()}
		}
	}
	return results
}

// submitSingle posts one request and decodes the stored quotation.
func submitSingle(ctx context.Context, client *HTTPClient, url string, req Request) Result {
	res := Result{IdempotencyKey: req.IdempotencyKey, Replay: req.Replay}

	resp, err := client.Post(ctx, url, req.Body, req.IdempotencyKey)
	if err != nil {
		res.Err = err
		return res
	}
	body, err := readResponseBody(resp)
	if err != nil {
		res.Err = err
		return res
	}
	res.StatusCode = resp.StatusCode

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		res.Err = fmt.Errorf("status %d: %s", resp.StatusCode, body)
		return res
	}
	if err := json.Unmarshal(body, &res.Quotation); err != nil {
		res.Err = fmt.Errorf("decode quotation: %w", err)
	}
	return res
}
