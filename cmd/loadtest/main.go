// Command loadtest drives a running search server with a mix of ranked
// searches, batch requests and document matches, optionally seeding it with
// generated documents first.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"math"
	"math/rand/v2"
	"net/http"
	"net/url"
	"os"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
)

var vocabulary = strings.Fields(`cat dog rat parrot fluffy curly nasty funny white black
	tail collar hair eyes ring big small good very new pet city garden house`)

type Config struct {
	BaseURL     string
	Concurrency int
	Duration    time.Duration
	SeedDocs    int
	BatchSize   int
}

type op string

const (
	opSearch op = "search"
	opBatch  op = "batch"
	opMatch  op = "match"
)

type opStats struct {
	requests  atomic.Int64
	errors    atomic.Int64
	mu        sync.Mutex
	latencies []time.Duration
}

type Stats struct {
	ops         map[op]*opStats
	statusCodes sync.Map
}

func NewStats() *Stats {
	return &Stats{ops: map[op]*opStats{
		opSearch: {},
		opBatch:  {},
		opMatch:  {},
	}}
}

// RecordRequest counts a 404 from match as a success: generated ids may have
// been removed or never seeded.
func (s *Stats) RecordRequest(kind op, duration time.Duration, statusCode int, err error) {
	st := s.ops[kind]
	st.requests.Add(1)
	if err != nil {
		st.errors.Add(1)
		return
	}
	ok := statusCode >= 200 && statusCode < 300 || kind == opMatch && statusCode == http.StatusNotFound
	if !ok {
		st.errors.Add(1)
	}
	st.mu.Lock()
	st.latencies = append(st.latencies, duration)
	st.mu.Unlock()

	counter, _ := s.statusCodes.LoadOrStore(statusCode, &atomic.Int64{})
	counter.(*atomic.Int64).Add(1)
}

func main() {
	baseURL := flag.String("url", "http://localhost:8080", "base URL of the search server")
	concurrency := flag.Int("concurrency", 10, "number of concurrent workers")
	duration := flag.Duration("duration", 30*time.Second, "test duration")
	seed := flag.Int("seed-docs", 0, "generated documents to add before the run")
	batchSize := flag.Int("batch-size", 8, "queries per batch request")
	flag.Parse()

	cfg := Config{
		BaseURL:     strings.TrimRight(*baseURL, "/"),
		Concurrency: *concurrency,
		Duration:    *duration,
		SeedDocs:    *seed,
		BatchSize:   *batchSize,
	}

	fmt.Println("=== Search Server Load Test ===")
	fmt.Printf("Target:      %s\n", cfg.BaseURL)
	fmt.Printf("Concurrency: %d\n", cfg.Concurrency)
	fmt.Printf("Duration:    %s\n", cfg.Duration)
	fmt.Println()

	client := &http.Client{
		Timeout: 10 * time.Second,
		Transport: &http.Transport{
			MaxIdleConns:        cfg.Concurrency * 2,
			MaxIdleConnsPerHost: cfg.Concurrency * 2,
			IdleConnTimeout:     90 * time.Second,
		},
	}

	if cfg.SeedDocs > 0 {
		added, err := seedDocuments(context.Background(), client, cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "seeding failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Seeded %d documents\n\n", added)
	}

	stats := runLoadTest(client, cfg)
	if !printReport(stats, cfg.Duration) {
		os.Exit(1)
	}
}

// randomText returns n words drawn from the vocabulary.
func randomText(r *rand.Rand, n int) string {
	words := make([]string, n)
	for i := range words {
		words[i] = vocabulary[r.IntN(len(vocabulary))]
	}
	return strings.Join(words, " ")
}

// randomQuery returns two to four plus-words and, one time in four, a
// minus-word.
func randomQuery(r *rand.Rand) string {
	q := randomText(r, 2+r.IntN(3))
	if r.IntN(4) == 0 {
		q += " -" + vocabulary[r.IntN(len(vocabulary))]
	}
	return q
}

func seedDocuments(ctx context.Context, client *http.Client, cfg Config) (int, error) {
	var added atomic.Int64
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Concurrency)
	for id := range cfg.SeedDocs {
		g.Go(func() error {
			r := rand.New(rand.NewPCG(uint64(id), 1))
			body, err := json.Marshal(map[string]any{
				"id":      id,
				"text":    randomText(r, 5+r.IntN(20)),
				"ratings": []int{r.IntN(11) - 5, r.IntN(11) - 5},
			})
			if err != nil {
				return err
			}
			status, err := send(ctx, client, http.MethodPost, cfg.BaseURL+"/api/v1/documents", body)
			if err != nil {
				return fmt.Errorf("document %d: %w", id, err)
			}
			if status == http.StatusCreated || status == http.StatusAccepted {
				added.Add(1)
			}
			return nil
		})
	}
	err := g.Wait()
	return int(added.Load()), err
}

func runLoadTest(client *http.Client, cfg Config) *Stats {
	stats := NewStats()
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Duration)
	defer cancel()

	var wg sync.WaitGroup
	fmt.Print("Running")
	for w := range cfg.Concurrency {
		wg.Go(func() {
			r := rand.New(rand.NewPCG(uint64(w), uint64(time.Now().UnixNano())))
			for ctx.Err() == nil {
				kind, method, target, body := nextRequest(r, cfg)
				start := time.Now()
				status, err := send(ctx, client, method, target, body)
				if ctx.Err() != nil {
					return
				}
				stats.RecordRequest(kind, time.Since(start), status, err)
			}
		})
	}

	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				fmt.Print(".")
			}
		}
	}()

	wg.Wait()
	fmt.Println(" done!")
	fmt.Println()
	return stats
}

// nextRequest picks searches 70% of the time, batches 10% and matches 20%.
func nextRequest(r *rand.Rand, cfg Config) (op, string, string, []byte) {
	switch n := r.IntN(10); {
	case n < 7:
		return opSearch, http.MethodGet,
			fmt.Sprintf("%s/api/v1/search?q=%s", cfg.BaseURL, url.QueryEscape(randomQuery(r))), nil
	case n < 8:
		queries := make([]string, cfg.BatchSize)
		for i := range queries {
			queries[i] = randomQuery(r)
		}
		body, _ := json.Marshal(map[string]any{"queries": queries})
		return opBatch, http.MethodPost, cfg.BaseURL + "/api/v1/search/batch", body
	default:
		id := r.IntN(max(cfg.SeedDocs, 1))
		return opMatch, http.MethodGet,
			fmt.Sprintf("%s/api/v1/documents/%d/match?q=%s", cfg.BaseURL, id, url.QueryEscape(randomQuery(r))), nil
	}
}

func send(ctx context.Context, client *http.Client, method, target string, body []byte) (int, error) {
	req, err := http.NewRequestWithContext(ctx, method, target, bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("creating request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.StatusCode, nil
}

func printReport(stats *Stats, duration time.Duration) bool {
	var total int64
	for _, kind := range []op{opSearch, opBatch, opMatch} {
		st := stats.ops[kind]
		requests, errors := st.requests.Load(), st.errors.Load()
		total += requests

		fmt.Printf("=== %s ===\n", kind)
		fmt.Printf("Requests:     %d\n", requests)
		fmt.Printf("Errors:       %d\n", errors)
		if requests == 0 {
			fmt.Println()
			continue
		}
		fmt.Printf("Error Rate:   %.2f%%\n", float64(errors)/float64(requests)*100)
		fmt.Printf("Requests/sec: %.2f\n", float64(requests)/duration.Seconds())

		st.mu.Lock()
		latencies := slices.Clone(st.latencies)
		st.mu.Unlock()
		if len(latencies) > 0 {
			slices.Sort(latencies)
			fmt.Printf("Min: %s  Avg: %s  Max: %s\n", latencies[0], mean(latencies), latencies[len(latencies)-1])
			fmt.Printf("P50: %s  P90: %s  P99: %s\n",
				percentile(latencies, 50), percentile(latencies, 90), percentile(latencies, 99))
		}
		fmt.Println()
	}

	fmt.Println("=== Status Codes ===")
	var codes []int
	stats.statusCodes.Range(func(k, _ any) bool {
		codes = append(codes, k.(int))
		return true
	})
	slices.Sort(codes)
	for _, code := range codes {
		counter, _ := stats.statusCodes.Load(code)
		fmt.Printf("  %d: %d\n", code, counter.(*atomic.Int64).Load())
	}

	if total == 0 {
		fmt.Println()
		fmt.Println("WARNING: No requests completed. Is the server running?")
		return false
	}
	return true
}

func mean(latencies []time.Duration) time.Duration {
	var sum time.Duration
	for _, l := range latencies {
		sum += l
	}
	return sum / time.Duration(len(latencies))
}

func percentile(sorted []time.Duration, p float64) time.Duration {
	if len(sorted) == 0 {
		return 0
	}
	idx := int(math.Ceil(p/100*float64(len(sorted)))) - 1
	idx = max(0, min(idx, len(sorted)-1))
	return sorted[idx]
}
