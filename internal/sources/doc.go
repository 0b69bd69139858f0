// Package sources parses the three non-PDF event sources: the
// JS-rendered childcare portal listing, the semi-structured municipal
// page and the static event-calendar site. Each adapter consumes
// already-fetched markup and returns normalized events; fetching and
// render-waiting live in internal/fetch.
package sources
