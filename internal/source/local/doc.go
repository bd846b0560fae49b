// Package local serves the bundled demo highlights. It is the fallback for
// every query the live feed cannot answer and never needs the network.
package local
