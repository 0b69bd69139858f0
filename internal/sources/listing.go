package sources

import (
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/tkumagai/kosodate-events/internal/classify"
	"github.com/tkumagai/kosodate-events/internal/event"
	"github.com/tkumagai/kosodate-events/internal/jptext"
)

// ListingName labels the childcare portal source.
const ListingName = "子育て支援ポータル"

var (
	reArticleLink = regexp.MustCompile(`/page\d+\.html`)
	reFullDate    = regexp.MustCompile(`(\d{4})年(\d{1,2})月(\d{1,2})日`)
)

// ParseListing extracts event links from the rendered portal listing.
// Article anchors live under #maincont and point at /pageNNNN.html
// detail pages; the event date sits in a 期日 block within the next few
// sibling elements.
func ParseListing(markup, baseURL string) ([]event.Event, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return nil, fmt.Errorf("parsing listing HTML: %w", err)
	}

	root := doc.Find("#maincont")
	if root.Length() == 0 {
		root = doc.Find("main")
	}
	if root.Length() == 0 {
		root = doc.Selection
	}

	var events []event.Event
	seen := make(map[string]struct{})
	root.Find("a").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		if !reArticleLink.MatchString(href) {
			return
		}
		detailURL := resolveURL(baseURL, href)
		if _, dup := seen[detailURL]; dup {
			return
		}
		seen[detailURL] = struct{}{}

		title := jptext.Normalize(a.Text())
		if title == "" {
			return
		}

		events = append(events, event.Event{
			Title:            title,
			Date:             findKidate(a),
			Category:         classify.Category(title),
			TargetAge:        classify.Age(title),
			SourceName:       ListingName,
			SourceURL:        baseURL,
			URL:              detailURL,
			NeedsReservation: needsReservation(title),
		})
	})
	return events, nil
}

// findKidate walks up to three sibling elements after the anchor's
// parent looking for a 期日 block with a full date. A zero time means
// the listing published the event without one.
func findKidate(a *goquery.Selection) time.Time {
	sibling := a.Parent().Next()
	for i := 0; i < 3 && sibling.Length() > 0; i++ {
		text := sibling.Text()
		if strings.Contains(text, "期日") {
			if d, ok := parseFullDate(text); ok {
				return d
			}
		}
		sibling = sibling.Next()
	}
	return time.Time{}
}

// parseFullDate resolves the first YYYY年M月D日 occurrence.
func parseFullDate(text string) (time.Time, bool) {
	m := reFullDate.FindStringSubmatch(jptext.Normalize(text))
	if m == nil {
		return time.Time{}, false
	}
	year, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	day, _ := strconv.Atoi(m[3])
	return jptext.CalendarDate(year, month, day)
}

func resolveURL(base, href string) string {
	if strings.HasPrefix(href, "http") {
		return href
	}
	b, err := url.Parse(base)
	if err != nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return b.ResolveReference(ref).String()
}

func needsReservation(text string) bool {
	return strings.Contains(text, "要予約") || strings.Contains(text, "予約制") ||
		strings.Contains(text, "申込")
}
