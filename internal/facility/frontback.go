package facility

import (
	"go.uber.org/zap"

	"github.com/tkumagai/kosodate-events/internal/classify"
	"github.com/tkumagai/kosodate-events/internal/event"
	"github.com/tkumagai/kosodate-events/internal/jptext"
	"github.com/tkumagai/kosodate-events/internal/logger"
	"github.com/tkumagai/kosodate-events/internal/pdfdoc"
)

// frontBackParser handles the facility publishing a calendar-only front
// document and a detail-only back document each month. Events are
// joined on (month, day); back-page detail wins where present, and
// back-only entries (typically next month's first week) are emitted
// on their own.
type frontBackParser struct {
	grid gridParser
}

func (p *frontBackParser) Key() string  { return p.grid.def.Key }
func (p *frontBackParser) Name() string { return p.grid.def.Name }

func (p *frontBackParser) Parse(doc []byte, extra ...[]byte) ([]event.Event, error) {
	events, err := p.grid.Parse(doc)
	if err != nil {
		return nil, err
	}
	if len(extra) == 0 || len(extra[0]) == 0 {
		return events, nil
	}

	back, err := pdfdoc.Open(extra[0])
	if err != nil {
		logger.L().Warn("back page unreadable, keeping calendar side only",
			zap.String("facility", p.grid.def.Key), zap.Error(err))
		return events, nil
	}
	details := parseDetailEntries(back.Text())
	year, month := p.grid.opts.Year, p.grid.opts.Month
	if len(events) > 0 {
		year, month = events[0].Date.Year(), int(events[0].Date.Month())
	}
	return p.join(events, details, year, month), nil
}

func (p *frontBackParser) join(events []event.Event, details []detailEntry, year, month int) []event.Event {
	matched := make(map[int]bool, len(details))

	for i := range events {
		for j, d := range details {
			if d.Month != month || d.Day != events[i].Date.Day() {
				continue
			}
			matched[j] = true
			if d.Title != "" {
				events[i].Title = d.Title
				events[i].Category = classify.Category(d.Title)
			}
			if d.Time != "" {
				events[i].TimeRange = d.Time
			}
			if d.Audience != classify.DefaultAge {
				events[i].TargetAge = d.Audience
			}
			break
		}
	}

	// Back-only entries: events the calendar side does not show, such
	// as next month's first days. A month before the calendar month
	// wraps into the following year.
	for j, d := range details {
		if matched[j] || d.Title == "" {
			continue
		}
		y := year
		if d.Month < month {
			y++
		}
		date, ok := jptext.CalendarDate(y, d.Month, d.Day)
		if !ok {
			continue
		}
		audience := d.Audience
		if audience == "" {
			audience = classify.Age(d.Title)
		}
		events = append(events, event.Event{
			Title:      d.Title,
			Date:       date,
			TimeRange:  d.Time,
			Category:   classify.Category(d.Title),
			TargetAge:  audience,
			SourceName: p.grid.def.Name,
			SourceURL:  p.grid.def.URL,
		})
	}
	return events
}
