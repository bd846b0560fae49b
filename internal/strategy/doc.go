// Package strategy implements the ways the remote feed client picks a mirror:
//
//   - Round Robin: Sequential distribution across endpoints
//   - Random: Random endpoint selection
//   - Least Connections: Endpoint with the fewest in-flight requests
//   - Least Response Time: Lowest exponentially weighted moving average (EWMA) latency
//
// Strategies only ever see the healthy endpoints handed to them by the pool.
package strategy
