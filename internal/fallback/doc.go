// Package fallback fetches from the live remote feed and falls back to the
// bundled demo data when the feed is failing, slow, or returns too little.
//
// Every remote exit path ends in either validated remote data or local data.
// Callers never see a remote error; the only error Fetch returns comes from the
// local source, which is expected never to fail.
package fallback
