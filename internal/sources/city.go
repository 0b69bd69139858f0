package sources

import (
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/tkumagai/kosodate-events/internal/classify"
	"github.com/tkumagai/kosodate-events/internal/event"
	"github.com/tkumagai/kosodate-events/internal/jptext"
)

// CityPageName labels the municipal what's-on page source.
const CityPageName = "市イベント情報"

// ParseCityPage extracts events from the semi-structured municipal page:
// table rows (or definition-list pairs) where one cell holds a full
// date and another the linked event title.
func ParseCityPage(markup, baseURL string) ([]event.Event, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return nil, fmt.Errorf("parsing city page HTML: %w", err)
	}

	var events []event.Event
	seen := make(map[string]struct{})
	add := func(rowText, title string, date time.Time, link *goquery.Selection) {
		if title == "" {
			return
		}
		detailURL := ""
		if href, exists := link.Attr("href"); exists {
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
			TimeRange:        jptext.NormalizeClockRange(rowText),
			Category:         classify.Category(title),
			TargetAge:        classify.Age(rowText),
			SourceName:       CityPageName,
			SourceURL:        baseURL,
			URL:              detailURL,
			NeedsReservation: needsReservation(rowText),
		})
	}

	doc.Find("tr").Each(func(_ int, row *goquery.Selection) {
		rowText := row.Text()
		date, ok := parseFullDate(rowText)
		if !ok {
			return
		}
		link := row.Find("a").First()
		title := jptext.Normalize(link.Text())
		if title == "" {
			// Rows without a link still announce events; use the cell
			// after the date cell as the title.
			cells := row.Find("td")
			if cells.Length() >= 2 {
				title = jptext.Normalize(cells.Eq(1).Text())
			}
		}
		add(rowText, title, date, link)
	})

	// Definition-list markup: the date lives in a dt, the linked title
	// in the dd that follows it.
	doc.Find("dl dt").Each(func(_ int, dt *goquery.Selection) {
		date, ok := parseFullDate(dt.Text())
		if !ok {
			return
		}
		dd := dt.NextFiltered("dd")
		if dd.Length() == 0 {
			return
		}
		link := dd.Find("a").First()
		title := jptext.Normalize(link.Text())
		if title == "" {
			title = jptext.Normalize(dd.Text())
		}
		add(dt.Text()+" "+dd.Text(), title, date, link)
	})
	return events, nil
}
