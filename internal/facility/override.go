package facility

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/tkumagai/kosodate-events/internal/classify"
	"github.com/tkumagai/kosodate-events/internal/event"
	"github.com/tkumagai/kosodate-events/internal/jptext"
)

// OverrideEvent is one human-curated entry substituted when a facility's
// newsletter cannot be parsed (scanned pages).
type OverrideEvent struct {
	Day         int    `yaml:"day"`
	Title       string `yaml:"title"`
	Time        string `yaml:"time,omitempty"`
	Description string `yaml:"description,omitempty"`
	Age         string `yaml:"age,omitempty"`
	Reservation bool   `yaml:"reservation,omitempty"`
}

// OverrideStore holds manual event lists keyed by facility.
type OverrideStore struct {
	entries map[string][]OverrideEvent
}

// LoadOverrides reads the YAML override file. A missing file is not an
// error: it yields an empty store, since overrides are optional.
func LoadOverrides(path string) (*OverrideStore, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &OverrideStore{entries: map[string][]OverrideEvent{}}, nil
		}
		return nil, fmt.Errorf("reading overrides: %w", err)
	}
	var entries map[string][]OverrideEvent
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parsing overrides: %w", err)
	}
	if entries == nil {
		entries = map[string][]OverrideEvent{}
	}
	return &OverrideStore{entries: entries}, nil
}

// Events materializes the manual list for one facility against the
// target month. Entries with out-of-range days are dropped silently,
// matching the calendar walk.
func (s *OverrideStore) Events(def Definition, year, month int) []event.Event {
	var events []event.Event
	for _, o := range s.entries[def.Key] {
		date, ok := jptext.CalendarDate(year, month, o.Day)
		if !ok {
			continue
		}
		age := o.Age
		if age == "" {
			age = classify.Age(o.Title + " " + o.Description)
		}
		timeRange := o.Time
		if timeRange == "" {
			timeRange = def.DefaultTime
		}
		events = append(events, event.Event{
			Title:            o.Title,
			Date:             date,
			TimeRange:        timeRange,
			Description:      o.Description,
			Category:         classify.Category(o.Title + " " + o.Description),
			TargetAge:        age,
			SourceName:       def.Name,
			SourceURL:        def.URL,
			NeedsReservation: o.Reservation,
		})
	}
	return events
}
