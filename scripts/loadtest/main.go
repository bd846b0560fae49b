// Loadtest drives concurrent traffic at the gateway API and reports latency
// percentiles per route together with the live/demo mode it ended in.
//
// Usage:
//
//	go run ./scripts/loadtest -url http://localhost:8080 -concurrency 20 -requests 2000
//	go run ./scripts/loadtest -url http://localhost:8080 -out summary.json
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

var routes = []string{
	"/api/highlights/recommended",
	"/api/leagues",
	"/api/search?q=madrid",
	"/api/teams/arsenal/highlights",
	"/api/competitions/england-premier-league/highlights",
	"/api/matches/demo-01",
}

type routeStats struct {
	Count     int32           `json:"count"`
	Success   int32           `json:"success"`
	Failure   int32           `json:"failure"`
	Latencies []time.Duration `json:"-"`
}

type routeSummary struct {
	Total   int32   `json:"total"`
	Success int32   `json:"success"`
	Failure int32   `json:"failure"`
	P50     float64 `json:"p50_ms"`
	P90     float64 `json:"p90_ms"`
	P99     float64 `json:"p99_ms"`
}

func percentile(sorted []time.Duration, pct float64) time.Duration {
	if len(sorted) == 0 {
		return 0
	}
	return sorted[int(float64(len(sorted)-1)*pct)]
}

func main() {
	var (
		base        = flag.String("url", "http://localhost:8080", "Gateway base URL")
		concurrency = flag.Int("concurrency", 10, "Number of concurrent workers")
		requests    = flag.Int("requests", 500, "Total number of requests to send")
		timeout     = flag.Duration("timeout", 15*time.Second, "Per-request timeout")
		outJSON     = flag.String("out", "", "Write JSON summary to this file (optional)")
	)
	flag.Parse()

	client := &http.Client{Timeout: *timeout}

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		failure atomic.Int32
		stats   = make(map[string]*routeStats)
	)

	jobs := make(chan int)
	start := time.Now()

	for range *concurrency {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				route := routes[idx%len(routes)]
				began := time.Now()
				resp, err := client.Get(*base + route)
				dur := time.Since(began)

				ok := err == nil && resp.StatusCode < 300
				if err == nil {
					io.Copy(io.Discard, resp.Body)
					resp.Body.Close()
				}
				if !ok {
					failure.Add(1)
				}

				mu.Lock()
				rs, found := stats[route]
				if !found {
					rs = &routeStats{}
					stats[route] = rs
				}
				rs.Count++
				if ok {
					rs.Success++
				} else {
					rs.Failure++
				}
				rs.Latencies = append(rs.Latencies, dur)
				mu.Unlock()
			}
		}()
	}

	go func() {
		for i := range *requests {
			jobs <- i
		}
		close(jobs)
	}()

	wg.Wait()
	elapsed := time.Since(start)

	fmt.Println("--- Load Test Summary ---")
	fmt.Printf("Target: %s  Requests: %d  Concurrency: %d\n", *base, *requests, *concurrency)
	fmt.Printf("Duration: %v  Throughput: %.2f req/s  Failures: %d\n",
		elapsed, float64(*requests)/elapsed.Seconds(), failure.Load())

	keys := make([]string, 0, len(stats))
	for k := range stats {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	summary := make(map[string]routeSummary, len(stats))
	fmt.Println("\nRoutes:")
	for _, k := range keys {
		rs := stats[k]
		sorted := append([]time.Duration(nil), rs.Latencies...)
		sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

		p50, p90, p99 := percentile(sorted, 0.50), percentile(sorted, 0.90), percentile(sorted, 0.99)
		fmt.Printf("  %s -> total=%d success=%d failure=%d p50=%v p90=%v p99=%v\n",
			k, rs.Count, rs.Success, rs.Failure, p50, p90, p99)

		summary[k] = routeSummary{
			Total:   rs.Count,
			Success: rs.Success,
			Failure: rs.Failure,
			P50:     float64(p50.Microseconds()) / 1000,
			P90:     float64(p90.Microseconds()) / 1000,
			P99:     float64(p99.Microseconds()) / 1000,
		}
	}

	var gateway map[string]any
	if resp, err := client.Get(*base + "/api/status"); err == nil {
		_ = json.NewDecoder(resp.Body).Decode(&gateway)
		resp.Body.Close()
		fmt.Printf("\nGateway mode: %v\n", gateway["mode"])
	}

	if *outJSON != "" {
		report := map[string]any{
			"target":         *base,
			"requests":       *requests,
			"concurrency":    *concurrency,
			"duration_ms":    elapsed.Milliseconds(),
			"throughput_rps": float64(*requests) / elapsed.Seconds(),
			"failures":       failure.Load(),
			"routes":         summary,
			"gateway":        gateway,
		}

		f, err := os.Create(*outJSON)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to create json file: %v\n", err)
			os.Exit(1)
		}
		enc := json.NewEncoder(f)
		enc.SetIndent("", "  ")
		enc.Encode(report)
		f.Close()
		fmt.Printf("\nWrote JSON summary to %s\n", *outJSON)
	}

	if failure.Load() > 0 {
		os.Exit(2)
	}
}
