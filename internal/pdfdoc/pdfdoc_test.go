package pdfdoc

import (
	"testing"
	"time"

	"github.com/tkumagai/kosodate-events/internal/calendar"
)

// wordsFor lays out a miniature one-week calendar: a weekday header
// row, a date row and a content row, in PDF coordinates (Y up).
func calendarWords() []Word {
	labels := []string{"月", "火", "水", "木", "金", "土", "日"}
	var words []Word
	for i, l := range labels {
		words = append(words, Word{Text: l, X: float64(50 + i*80), Y: 700})
	}
	for i := 0; i < 7; i++ {
		words = append(words, Word{Text: string(rune('1' + i)), X: float64(50 + i*80), Y: 660})
	}
	words = append(words, Word{Text: "おはなし会", X: 210, Y: 620})
	words = append(words, Word{Text: "10:30〜11:00", X: 210, Y: 612})
	return words
}

func TestGridFromWords(t *testing.T) {
	grid := GridFromWords(calendarWords())
	if len(grid) < 3 {
		t.Fatalf("expected at least 3 rows, got %d", len(grid))
	}
	if len(grid[0]) != 7 {
		t.Fatalf("expected 7 columns, got %d", len(grid[0]))
	}
	if grid[0][0] != "月" || grid[0][6] != "日" {
		t.Errorf("header row = %v", grid[0])
	}
	if grid[1][2] != "3" {
		t.Errorf("date cell = %q, expected 3", grid[1][2])
	}
	// Both content words share column 2; close baselines may land in
	// one row or two, but the cell content must include both lines.
	var cell string
	for _, row := range grid[2:] {
		if row[2] != "" {
			if cell != "" {
				cell += "\n"
			}
			cell += row[2]
		}
	}
	if cell != "おはなし会\n10:30〜11:00" {
		t.Errorf("content cell = %q", cell)
	}
}

func TestGridFromWordsEmpty(t *testing.T) {
	if grid := GridFromWords(nil); grid != nil {
		t.Errorf("expected nil grid for no words, got %v", grid)
	}
}

func TestWordsText(t *testing.T) {
	words := []Word{
		{Text: "4月15日", X: 50, Y: 700},
		{Text: "ベビーマッサージ", X: 120, Y: 700},
		{Text: "要予約", X: 50, Y: 680},
	}
	got := WordsText(words)
	expected := "4月15日 ベビーマッサージ\n要予約"
	if got != expected {
		t.Errorf("WordsText = %q, expected %q", got, expected)
	}
}

func TestSplitHalves(t *testing.T) {
	words := []Word{
		{Text: "左の予定", X: 40, Y: 700},
		{Text: "火", X: 100, Y: 700},
		{Text: "右の予定", X: 400, Y: 700},
		{Text: "水", X: 460, Y: 680},
	}
	left, right := SplitHalves(words)
	if len(left) != 2 || len(right) != 2 {
		t.Fatalf("split = %d/%d, expected 2/2", len(left), len(right))
	}
	if left[0].Text != "左の予定" || right[0].Text != "右の予定" {
		t.Errorf("left = %v, right = %v", left, right)
	}

	left, right = SplitHalves(nil)
	if left != nil || right != nil {
		t.Error("no words must yield empty halves")
	}
}

// miniCalendarWords lays out one week of a calendar starting at x0:
// weekday header, date row, and a title/clock pair in the given day's
// column.
func miniCalendarWords(x0 float64, day int, title, clock string) []Word {
	labels := []string{"月", "火", "水", "木", "金", "土", "日"}
	var words []Word
	for i, l := range labels {
		words = append(words, Word{Text: l, X: x0 + float64(i*40), Y: 700})
	}
	for i := 0; i < 7; i++ {
		words = append(words, Word{Text: string(rune('1' + i)), X: x0 + float64(i*40), Y: 660})
	}
	col := x0 + float64((day-1)*40)
	words = append(words, Word{Text: title, X: col, Y: 620})
	words = append(words, Word{Text: clock, X: col, Y: 616})
	return words
}

// Two side-by-side calendars must come out as independent event sets
// once the page is cropped at its midpoint.
func TestTwoColumnPageWalk(t *testing.T) {
	words := append(
		miniCalendarWords(50, 3, "おはなし会", "10:30〜11:00"),
		miniCalendarWords(400, 5, "工作教室", "14:00〜15:00")...,
	)

	left, right := SplitHalves(words)
	cfg := calendar.Config{
		Year: 2024, Month: 4,
		SourceName: "南部児童館",
		Weekdays:   calendar.WeekdaysMonday,
	}

	leftEvents := calendar.Walk(GridFromWords(left), cfg)
	if len(leftEvents) != 1 {
		t.Fatalf("left half: expected 1 event, got %d", len(leftEvents))
	}
	if leftEvents[0].Title != "おはなし会" || leftEvents[0].TimeRange != "10:30〜11:00" {
		t.Errorf("left event = %+v", leftEvents[0])
	}
	if leftEvents[0].Date.Day() != 3 {
		t.Errorf("left day = %d, expected 3", leftEvents[0].Date.Day())
	}

	rightEvents := calendar.Walk(GridFromWords(right), cfg)
	if len(rightEvents) != 1 {
		t.Fatalf("right half: expected 1 event, got %d", len(rightEvents))
	}
	if rightEvents[0].Title != "工作教室" || rightEvents[0].TimeRange != "14:00〜15:00" {
		t.Errorf("right event = %+v", rightEvents[0])
	}
	if rightEvents[0].Date.Day() != 5 {
		t.Errorf("right day = %d, expected 5", rightEvents[0].Date.Day())
	}
}

func TestParsePDFDate(t *testing.T) {
	tests := []struct {
		raw      string
		expected time.Time
	}{
		{"D:20240425093000+09'00'", time.Date(2024, 4, 25, 9, 30, 0, 0, time.UTC)},
		{"D:20240425093000", time.Date(2024, 4, 25, 9, 30, 0, 0, time.UTC)},
		{"D:20240425", time.Date(2024, 4, 25, 0, 0, 0, 0, time.UTC)},
		{"garbage", time.Time{}},
		{"", time.Time{}},
	}
	for _, tt := range tests {
		if got := ParsePDFDate(tt.raw); !got.Equal(tt.expected) {
			t.Errorf("ParsePDFDate(%q) = %v, expected %v", tt.raw, got, tt.expected)
		}
	}
}

func TestOpenRejectsGarbage(t *testing.T) {
	if _, err := Open([]byte("not a pdf")); err == nil {
		t.Error("expected error for non-PDF bytes")
	}
	if _, err := Open(nil); err == nil {
		t.Error("expected error for empty bytes")
	}
}
