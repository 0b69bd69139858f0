package facility

import (
	"strings"

	"github.com/tkumagai/kosodate-events/internal/event"
)

// AudienceFilter keeps only events aimed at the feed's age groups.
// Deny keywords take precedence; when an allow list is present a match
// against it is then required.
type AudienceFilter struct {
	Allow []string
	Deny  []string
}

// Match applies the deny-then-allow rule to the given text.
func (f *AudienceFilter) Match(text string) bool {
	for _, keyword := range f.Deny {
		if strings.Contains(text, keyword) {
			return false
		}
	}
	if len(f.Allow) == 0 {
		return true
	}
	for _, keyword := range f.Allow {
		if strings.Contains(text, keyword) {
			return true
		}
	}
	return false
}

// Apply filters events on their title plus description.
func (f *AudienceFilter) Apply(events []event.Event) []event.Event {
	kept := events[:0]
	for _, e := range events {
		if f.Match(e.Title + " " + e.Description) {
			kept = append(kept, e)
		}
	}
	return kept
}
