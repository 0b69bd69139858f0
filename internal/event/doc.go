// Package event defines the normalized childcare-event record that every
// source adapter produces, and the aggregation step that merges, dedupes
// and sorts the per-source lists into the published feed.
package event
