package event

import (
	"crypto/sha1"
	"fmt"
	"time"
)

// DateLayout is the wire format for event dates.
const DateLayout = "2006-01-02"

// Event is one childcare event normalized from any source. Date is the
// event's start date; a zero Date means the source published the event
// without a resolvable date (link-based sources only — calendar parsers
// drop such records instead).
type Event struct {
	ID               string    `json:"id"`
	Title            string    `json:"title"`
	Date             time.Time `json:"-"`
	DateISO          string    `json:"date"`
	TimeRange        string    `json:"time_range,omitempty"`
	Location         string    `json:"location,omitempty"`
	Description      string    `json:"description,omitempty"`
	Category         string    `json:"category"`
	TargetAge        string    `json:"target_age"`
	SourceName       string    `json:"source_name"`
	SourceURL        string    `json:"source_url"`
	URL              string    `json:"url,omitempty"`
	NeedsReservation bool      `json:"needs_reservation"`
}

// GenerateID creates a deterministic ID from an event's dedup key so
// the front end can key records across regenerated feeds. Hashing the
// key keeps IDs as unique as the records themselves: URL-keyed records
// sharing a date and title still get distinct IDs.
func GenerateID(key string) string {
	h := sha1.New()
	h.Write([]byte(key))
	return fmt.Sprintf("%x", h.Sum(nil))
}

// Key returns the dedup key. Link-based sources carry a detail-page URL
// which is a stronger per-source identity than (source, date, title).
func (e *Event) Key() string {
	if e.URL != "" {
		return e.SourceName + "|" + e.URL
	}
	return e.SourceName + "|" + e.dateISO() + "|" + e.Title
}

func (e *Event) dateISO() string {
	if e.Date.IsZero() {
		return ""
	}
	return e.Date.Format(DateLayout)
}

// Feed is the aggregate published to the static site.
type Feed struct {
	GeneratedAt string  `json:"generated_at"`
	Count       int     `json:"count"`
	Events      []Event `json:"events"`
}

// NewFeed wraps an aggregated event list with its generation metadata.
func NewFeed(events []Event, generatedAt time.Time) Feed {
	if events == nil {
		events = []Event{}
	}
	return Feed{
		GeneratedAt: generatedAt.UTC().Format(time.RFC3339),
		Count:       len(events),
		Events:      events,
	}
}
