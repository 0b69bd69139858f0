// Package calendar reconstructs events from monthly calendar tables and
// exports the aggregated feed as an iCalendar document.
//
// A Grid is the 2-D cell structure extracted from one PDF page. The walk
// locates the weekday header row, derives per-weekday column spans and
// then reads alternating date/content row pairs, emitting one or more
// candidate events per day cell.
package calendar

import (
	"regexp"
	"strings"

	"github.com/tkumagai/kosodate-events/internal/classify"
	"github.com/tkumagai/kosodate-events/internal/event"
	"github.com/tkumagai/kosodate-events/internal/jptext"
)

// Grid is a table of text cells; cells may hold multiple lines.
type Grid [][]string

// WeekdaySpan is the half-open column range [Start, End) belonging to
// one weekday, fixed once per grid from the header row.
type WeekdaySpan struct {
	Label string
	Start int
	End   int
}

// Weekday header orders seen across facilities.
var (
	WeekdaysMonday = []string{"月", "火", "水", "木", "金", "土", "日"}
	WeekdaysSunday = []string{"日", "月", "火", "水", "木", "金", "土"}
)

// Config parameterizes the grid walk for one facility's layout.
type Config struct {
	Year  int
	Month int

	SourceName string
	SourceURL  string

	// Weekdays is the header label order; defaults to Monday-start.
	Weekdays []string

	// ColumnOffset shifts every weekday span horizontally. Facilities
	// whose data column sits one left of its weekday label use -1.
	ColumnOffset int

	// DefaultTime is used when a cell carries no clock of its own.
	DefaultTime string

	// SplitMultiple splits a cell into sub-events at embedded clock
	// lines instead of emitting a single event per cell.
	SplitMultiple bool
}

const minHeaderCells = 5
const minDateCells = 4

var (
	reBareDay  = regexp.MustCompile(`^(\d{1,2})$`)
	reNonEvent = regexp.MustCompile(`自由来館|自由あそび|休館|閉館|お休み|年末年始`)
	// Lines opening with these glyphs are annotations, not titles.
	annotationPrefixes = []string{"※", "(", "（", "[", "【", "・", "→"}

	reParenthetical = regexp.MustCompile(`[（(][^）)]*[）)]`)
	reClockSpan     = regexp.MustCompile(`(午前|午後)?\d{1,2}(:\d{2}|時(\d{1,2}分)?)(まで)?([〜~−–―ー-](午前|午後)?\d{1,2}(:\d{2}|時(\d{1,2}分)?)?(まで)?)?`)
)

// FindHeader scans rows top-down for the first row where at least five
// cells exactly match a weekday label, and derives the column spans.
// ok is false when no such row exists (structural mismatch).
func FindHeader(g Grid, weekdays []string) (headerRow int, spans []WeekdaySpan, ok bool) {
	labels := make(map[string]struct{}, len(weekdays))
	for _, w := range weekdays {
		labels[w] = struct{}{}
	}
	width := 0
	for _, row := range g {
		if len(row) > width {
			width = len(row)
		}
	}

	for r, row := range g {
		var found []WeekdaySpan
		for c, cell := range row {
			label := jptext.Normalize(cell)
			if _, isDay := labels[label]; isDay {
				found = append(found, WeekdaySpan{Label: label, Start: c})
			}
		}
		if len(found) < minHeaderCells {
			continue
		}
		for i := range found {
			if i+1 < len(found) {
				found[i].End = found[i+1].Start
			} else {
				found[i].End = width
			}
		}
		return r, found, true
	}
	return 0, nil, false
}

// Walk reconstructs events from a grid. A missing header or a grid with
// no date rows yields an empty slice, never an error.
func Walk(g Grid, cfg Config) []event.Event {
	weekdays := cfg.Weekdays
	if weekdays == nil {
		weekdays = WeekdaysMonday
	}
	headerRow, spans, ok := FindHeader(g, weekdays)
	if !ok {
		return nil
	}
	if cfg.ColumnOffset != 0 {
		for i := range spans {
			spans[i].Start += cfg.ColumnOffset
			spans[i].End += cfg.ColumnOffset
			if spans[i].Start < 0 {
				spans[i].Start = 0
			}
		}
	}

	var events []event.Event
	r := headerRow + 1
	for r < len(g) {
		days, isDateRow := dateCells(g[r], spans)
		if !isDateRow {
			r++
			continue
		}
		for spanIndex, day := range days {
			if day == 0 {
				continue
			}
			content := ""
			if r+1 < len(g) {
				content = spanContent(g[r+1], spans[spanIndex])
			}
			events = append(events, CellEvents(day, content, cfg)...)
		}
		r += 2
	}
	return events
}

// dateCells maps span index → day-of-month for a candidate date row.
// A row qualifies when at least four cells are bare day numbers that
// land inside a weekday span.
func dateCells(row []string, spans []WeekdaySpan) (map[int]int, bool) {
	days := make(map[int]int)
	for c, cell := range row {
		m := reBareDay.FindStringSubmatch(jptext.Normalize(cell))
		if m == nil {
			continue
		}
		day := atoi(m[1])
		if day < 1 || day > 31 {
			continue
		}
		for i, span := range spans {
			if c >= span.Start && c < span.End {
				days[i] = day
				break
			}
		}
	}
	if len(days) < minDateCells {
		return nil, false
	}
	return days, true
}

// spanContent joins the non-empty lines of every cell inside the span's
// column range, deduplicating identical lines.
func spanContent(row []string, span WeekdaySpan) string {
	var lines []string
	seen := make(map[string]struct{})
	for c := span.Start; c < span.End && c < len(row); c++ {
		if c < 0 {
			continue
		}
		for _, line := range strings.Split(row[c], "\n") {
			line = jptext.Normalize(line)
			if line == "" {
				continue
			}
			if _, dup := seen[line]; dup {
				continue
			}
			seen[line] = struct{}{}
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}

// CellEvents converts one day cell's content into zero or more events.
func CellEvents(day int, content string, cfg Config) []event.Event {
	if strings.TrimSpace(content) == "" {
		return nil
	}
	segments := []string{content}
	if cfg.SplitMultiple {
		segments = splitAtClockLines(content)
	}
	var events []event.Event
	for _, segment := range segments {
		if ev, ok := cellEvent(day, segment, cfg); ok {
			events = append(events, ev)
		}
	}
	return events
}

// cellEvent implements the title/description split and time resolution
// for a single candidate. Lines bearing a clock or opening with an
// annotation glyph become description; the rest become the title. If no
// title line survives, the title is recovered by stripping
// parentheticals and clock spans from the raw content.
func cellEvent(day int, content string, cfg Config) (event.Event, bool) {
	if isNonEventOnly(content) {
		return event.Event{}, false
	}

	var titleParts, descParts []string
	for _, line := range strings.Split(content, "\n") {
		line = jptext.Normalize(line)
		if line == "" {
			continue
		}
		if jptext.HasClock(line) || hasAnnotationPrefix(line) {
			descParts = append(descParts, line)
		} else {
			titleParts = append(titleParts, line)
		}
	}
	title := strings.Join(titleParts, " ")
	if title == "" {
		title = recoverTitle(content)
	}
	if title == "" || reNonEvent.MatchString(title) {
		return event.Event{}, false
	}

	date, ok := jptext.CalendarDate(cfg.Year, cfg.Month, day)
	if !ok {
		// Day number out of range for the target month: drop silently.
		return event.Event{}, false
	}

	timeRange := jptext.NormalizeClockRange(content)
	if timeRange == "" {
		timeRange = cfg.DefaultTime
	}
	description := strings.Join(descParts, " ")

	return event.Event{
		Title:            title,
		Date:             date,
		TimeRange:        timeRange,
		Description:      description,
		Category:         classify.Category(title + " " + description),
		TargetAge:        classify.Age(title + " " + description),
		SourceName:       cfg.SourceName,
		SourceURL:        cfg.SourceURL,
		NeedsReservation: needsReservation(content),
	}, true
}

// splitAtClockLines cuts stacked sub-events apart: a clock-bearing line
// closes the current segment, so the next non-clock line opens a new one.
func splitAtClockLines(content string) []string {
	var segments []string
	var current []string
	closed := false
	for _, line := range strings.Split(content, "\n") {
		if line == "" {
			continue
		}
		if closed && !jptext.HasClock(line) {
			segments = append(segments, strings.Join(current, "\n"))
			current = nil
			closed = false
		}
		current = append(current, line)
		if jptext.HasClock(line) {
			closed = true
		}
	}
	if len(current) > 0 {
		segments = append(segments, strings.Join(current, "\n"))
	}
	return segments
}

func isNonEventOnly(content string) bool {
	s := jptext.Normalize(strings.ReplaceAll(content, "\n", " "))
	return s == "" || (reNonEvent.MatchString(s) && jptext.Normalize(reNonEvent.ReplaceAllString(s, "")) == "")
}

func hasAnnotationPrefix(line string) bool {
	for _, p := range annotationPrefixes {
		if strings.HasPrefix(line, p) {
			return true
		}
	}
	return false
}

func recoverTitle(content string) string {
	s := strings.ReplaceAll(content, "\n", " ")
	s = reParenthetical.ReplaceAllString(s, "")
	s = reClockSpan.ReplaceAllString(s, "")
	return jptext.Normalize(s)
}

func needsReservation(content string) bool {
	return strings.Contains(content, "要予約") ||
		strings.Contains(content, "予約制") ||
		strings.Contains(content, "申込") ||
		strings.Contains(content, event.ReservationMarker)
}

func atoi(s string) int {
	n := 0
	for _, r := range s {
		n = n*10 + int(r-'0')
	}
	return n
}
