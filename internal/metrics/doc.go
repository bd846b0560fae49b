// Package metrics collects counters about remote feed fetches and fallbacks.
//
// It uses a channel-based event pipeline to asynchronously collect, per query shape:
//   - Remote attempts and successes
//   - Failures broken down by category (timeout, access denied, network, ...)
//   - Calls the circuit tracker skipped
//   - Fallback responses served from the demo dataset
//   - Remote latency with percentile calculations (P50, P95, P99)
//
// plus the health of each remote feed endpoint.
//
// The collector runs in a dedicated goroutine. Emit never blocks the fetch
// path; when the buffer is full the event is dropped.
//
// Example usage:
//
//	collector := metrics.NewCollector(1000, logger)
//	collector.Start(ctx)
//
//	collector.Emit(metrics.FetchEvent{
//		Type:     metrics.EventRemoteFailure,
//		Query:    "recommended",
//		Category: "timeout",
//		Duration: 10 * time.Second,
//	})
//
//	snapshot := collector.Snapshot("round-robin")
//
// Pending events are drained when the context passed to Start is cancelled.
package metrics
