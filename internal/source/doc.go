// Package source defines what a highlight data source must provide and the
// error kinds a remote source reports. The live feed client and the bundled
// demo dataset both implement Source.
package source
