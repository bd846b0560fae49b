package metrics

import (
	"sort"
	"sync"
	"time"
)

const maxLatencySamples = 1000

type Metrics struct {
	mutex      sync.RWMutex
	attempts   map[string]int64
	successes  map[string]int64
	skipped    map[string]int64
	fallbacks  map[string]int64
	misses     map[string]int64
	failures   map[string]map[string]int64
	latencies  map[string][]time.Duration
	endpointUp map[string]bool
	startTime  time.Time
}

type Snapshot struct {
	TotalFetches int64                   `json:"total_fetches"`
	Uptime       time.Duration           `json:"uptime"`
	Strategy     string                  `json:"strategy"`
	Queries      map[string]QueryMetrics `json:"queries"`
	Endpoints    map[string]bool         `json:"endpoints"`
}

// QueryMetrics describes one query shape such as "recommended" or "search".
type QueryMetrics struct {
	RemoteAttempts  int64            `json:"remote_attempts"`
	RemoteSuccesses int64            `json:"remote_successes"`
	RemoteSkipped   int64            `json:"remote_skipped"`
	FallbacksServed int64            `json:"fallbacks_served"`
	RemoteMisses    int64            `json:"remote_misses"`
	Failures        map[string]int64 `json:"failures"`
	AvgLatency      time.Duration    `json:"avg_latency"`
	P50Latency      time.Duration    `json:"p50_latency"`
	P95Latency      time.Duration    `json:"p95_latency"`
	P99Latency      time.Duration    `json:"p99_latency"`
}

func (m *Metrics) RecordAttempt(query string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.attempts[query]++
}

func (m *Metrics) RecordSuccess(query string, latency time.Duration) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.successes[query]++
	m.recordLatencyLocked(query, latency)
}

func (m *Metrics) RecordFailure(query, category string, latency time.Duration) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if m.failures[query] == nil {
		m.failures[query] = make(map[string]int64)
	}
	m.failures[query][category]++
	m.recordLatencyLocked(query, latency)
}

func (m *Metrics) RecordSkipped(query string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.skipped[query]++
}

func (m *Metrics) RecordFallback(query string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.fallbacks[query]++
}

// RecordMiss counts a lookup the remote feed answered without the requested item.
func (m *Metrics) RecordMiss(query string, latency time.Duration) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.misses[query]++
	m.recordLatencyLocked(query, latency)
}

func (m *Metrics) UpdateEndpointHealth(endpoint string, healthy bool) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.endpointUp[endpoint] = healthy
}

func (m *Metrics) recordLatencyLocked(query string, latency time.Duration) {
	if latency <= 0 {
		return
	}

	m.latencies[query] = append(m.latencies[query], latency)

	if len(m.latencies[query]) > maxLatencySamples {
		m.latencies[query] = m.latencies[query][1:]
	}
}

func (m *Metrics) Snapshot(strategy string) Snapshot {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	snap := Snapshot{
		Uptime:    time.Since(m.startTime),
		Strategy:  strategy,
		Queries:   make(map[string]QueryMetrics),
		Endpoints: make(map[string]bool, len(m.endpointUp)),
	}

	for endpoint, up := range m.endpointUp {
		snap.Endpoints[endpoint] = up
	}

	// Collect every query name seen by any counter
	allQueries := make(map[string]bool)
	for _, counter := range []map[string]int64{m.attempts, m.successes, m.skipped, m.fallbacks, m.misses} {
		for query := range counter {
			allQueries[query] = true
		}
	}
	for query := range m.failures {
		allQueries[query] = true
	}

	for query := range allQueries {
		snap.TotalFetches += m.attempts[query] + m.skipped[query]

		qm := QueryMetrics{
			RemoteAttempts:  m.attempts[query],
			RemoteSuccesses: m.successes[query],
			RemoteSkipped:   m.skipped[query],
			FallbacksServed: m.fallbacks[query],
			RemoteMisses:    m.misses[query],
			Failures:        make(map[string]int64, len(m.failures[query])),
		}
		for category, n := range m.failures[query] {
			qm.Failures[category] = n
		}

		latencies := m.latencies[query]
		if len(latencies) > 0 {
			sorted := make([]time.Duration, len(latencies))
			copy(sorted, latencies)
			sort.Slice(sorted, func(i, j int) bool {
				return sorted[i] < sorted[j]
			})

			qm.AvgLatency = average(sorted)
			qm.P50Latency = percentile(sorted, 0.50)
			qm.P95Latency = percentile(sorted, 0.95)
			qm.P99Latency = percentile(sorted, 0.99)
		}

		snap.Queries[query] = qm
	}

	return snap
}

func NewMetrics() *Metrics {
	return &Metrics{
		attempts:   make(map[string]int64),
		successes:  make(map[string]int64),
		skipped:    make(map[string]int64),
		fallbacks:  make(map[string]int64),
		misses:     make(map[string]int64),
		failures:   make(map[string]map[string]int64),
		latencies:  make(map[string][]time.Duration),
		endpointUp: make(map[string]bool),
		startTime:  time.Now(),
	}
}

func average(durations []time.Duration) time.Duration {
	if len(durations) == 0 {
		return 0
	}

	var sum time.Duration
	for _, d := range durations {
		sum += d
	}

	return sum / time.Duration(len(durations))
}

func percentile(sorted []time.Duration, p float64) time.Duration {
	if len(sorted) == 0 {
		return 0
	}

	index := int(float64(len(sorted)) * p)
	if index >= len(sorted) {
		index = len(sorted) - 1
	}

	return sorted[index]
}
