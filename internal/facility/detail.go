package facility

import (
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/tkumagai/kosodate-events/internal/classify"
	"github.com/tkumagai/kosodate-events/internal/event"
	"github.com/tkumagai/kosodate-events/internal/jptext"
	"github.com/tkumagai/kosodate-events/internal/logger"
	"github.com/tkumagai/kosodate-events/internal/pdfdoc"
)

// detailEntry is one dated line from a detail text region: the back page
// of a front/back pair, or the program notes beside an abbreviated
// calendar.
type detailEntry struct {
	Month    int
	Day      int
	Title    string
	Time     string
	Audience string
}

var (
	reMonthDay      = regexp.MustCompile(`(\d{1,2})月(\d{1,2})日`)
	reParenthetical = regexp.MustCompile(`[（(][^）)]*[）)]`)
	reClockish      = regexp.MustCompile(`(午前|午後)?\d{1,2}(:\d{2}|時(\d{1,2}分)?)(まで)?([〜~−–―ー-](午前|午後)?\d{1,2}(:\d{2}|時(\d{1,2}分)?)?(まで)?)?`)
)

// parseDetailEntries extracts one entry per line bearing a "M月D日"
// date. The title is the line with date, clock and parenthetical
// substrings removed.
func parseDetailEntries(text string) []detailEntry {
	var entries []detailEntry
	for _, line := range strings.Split(text, "\n") {
		line = jptext.Normalize(line)
		m := reMonthDay.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		month, _ := strconv.Atoi(m[1])
		day, _ := strconv.Atoi(m[2])
		if month < 1 || month > 12 || day < 1 || day > 31 {
			continue
		}

		title := reMonthDay.ReplaceAllString(line, "")
		title = reParenthetical.ReplaceAllString(title, "")
		title = reClockish.ReplaceAllString(title, "")
		title = strings.TrimLeft(jptext.Normalize(title), "・:： ")

		entries = append(entries, detailEntry{
			Month:    month,
			Day:      day,
			Title:    title,
			Time:     jptext.NormalizeClockRange(line),
			Audience: classify.Age(line),
		})
	}
	return entries
}

// detailRefParser handles facilities whose calendar cells carry only
// abbreviated "★event" titles: exact time and audience live in a
// separate program-notes region, matched by keyword plus day proximity.
type detailRefParser struct {
	grid gridParser
}

func (p *detailRefParser) Key() string  { return p.grid.def.Key }
func (p *detailRefParser) Name() string { return p.grid.def.Name }

func (p *detailRefParser) Parse(doc []byte, _ ...[]byte) ([]event.Event, error) {
	d, err := pdfdoc.Open(doc)
	if err != nil {
		logger.L().Warn("facility document unreadable",
			zap.String("facility", p.grid.def.Key), zap.Error(err))
		return p.grid.overrideEvents(), nil
	}
	events, structured := p.grid.parseDocument(d)
	if !structured {
		logger.L().Warn("no calendar structure extracted",
			zap.String("facility", p.grid.def.Key))
		return p.grid.overrideEvents(), nil
	}

	details := parseDetailEntries(d.Text())
	for i := range events {
		enrichFromDetails(&events[i], details)
	}
	return events, nil
}

// enrichFromDetails resolves an abbreviated calendar title against the
// detail entries. The best match shares a keyword and lies closest by
// day-of-month; without one the event keeps the walk's default time.
func enrichFromDetails(evt *event.Event, details []detailEntry) {
	keyword := strings.TrimPrefix(evt.Title, "★")
	evt.Title = keyword

	best := -1
	bestDist := 0
	for i, d := range details {
		if d.Title == "" {
			continue
		}
		if !strings.Contains(d.Title, keyword) && !strings.Contains(keyword, d.Title) {
			continue
		}
		dist := evt.Date.Day() - d.Day
		if dist < 0 {
			dist = -dist
		}
		if best < 0 || dist < bestDist {
			best, bestDist = i, dist
		}
	}
	if best < 0 {
		return
	}
	d := details[best]
	if d.Time != "" {
		evt.TimeRange = d.Time
	}
	if d.Audience != classify.DefaultAge {
		evt.TargetAge = d.Audience
	}
}
