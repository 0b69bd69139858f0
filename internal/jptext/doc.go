// Package jptext normalizes Japanese source text: width folding,
// imperial/western date resolution and clock-range canonicalization.
//
// Every resolver degrades instead of failing: an unrecognized date falls
// back to the caller-supplied year/month, an unrecognized clock becomes
// the empty string, and out-of-range calendar days report ok=false so
// callers can drop the record silently.
package jptext
