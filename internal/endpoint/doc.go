// Package endpoint tracks the mirrors of the remote highlights feed. Each
// Endpoint carries its health, the number of in-flight requests and an
// exponentially weighted moving average (EWMA) of its response time; a Pool
// picks the next healthy mirror through a pluggable Selector.
package endpoint
