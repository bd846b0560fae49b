// Package highlight defines the match highlight entities served to clients
// and the small set of filters the data sources share.
package highlight
