package sources

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/tkumagai/kosodate-events/internal/classify"
	"github.com/tkumagai/kosodate-events/internal/event"
	"github.com/tkumagai/kosodate-events/internal/jptext"
)

// EventCalName labels the static event-calendar site source.
const EventCalName = "イベントカレンダー"

var reMonthDayLabel = regexp.MustCompile(`(\d{1,2})月(\d{1,2})日`)

// ParseEventCalendar extracts events from the static calendar site. Day
// cells carry either a machine-readable data-date attribute
// ("2006-01-02") or a M月D日 label; the target year disambiguates
// label-only cells.
func ParseEventCalendar(markup, baseURL string, year int) ([]event.Event, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return nil, fmt.Errorf("parsing calendar HTML: %w", err)
	}

	var events []event.Event
	seen := make(map[string]struct{})

	doc.Find("td a, li a").Each(func(_ int, a *goquery.Selection) {
		title := jptext.Normalize(a.Text())
		if title == "" {
			return
		}
		date, ok := cellDate(a, year)
		if !ok {
			return
		}

		detailURL := ""
		if href, exists := a.Attr("href"); exists && href != "" && !strings.HasPrefix(href, "#") {
			detailURL = resolveURL(baseURL, href)
		}
		key := title + "|" + date.Format(event.DateLayout)
		if _, dup := seen[key]; dup {
			return
		}
		seen[key] = struct{}{}

		events = append(events, event.Event{
			Title:            title,
			Date:             date,
			Category:         classify.Category(title),
			TargetAge:        classify.Age(title),
			SourceName:       EventCalName,
			SourceURL:        baseURL,
			URL:              detailURL,
			NeedsReservation: needsReservation(title),
		})
	})
	return events, nil
}

// cellDate resolves the anchor's date from the nearest data-date
// attribute or a month-day label on the surrounding cell.
func cellDate(a *goquery.Selection, year int) (time.Time, bool) {
	cell := a.Closest("td, li")
	if attr, exists := cell.Attr("data-date"); exists {
		if t, err := time.Parse(event.DateLayout, attr); err == nil {
			return t, true
		}
	}
	m := reMonthDayLabel.FindStringSubmatch(jptext.Normalize(cell.Text()))
	if m == nil {
		return time.Time{}, false
	}
	month, _ := strconv.Atoi(m[1])
	day, _ := strconv.Atoi(m[2])
	return jptext.CalendarDate(year, month, day)
}
