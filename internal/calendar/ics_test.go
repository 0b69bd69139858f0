package calendar

import (
	"strings"
	"testing"
	"time"

	"github.com/tkumagai/kosodate-events/internal/event"
)

func TestGenerateICS(t *testing.T) {
	events := []event.Event{
		{
			ID:         "abc123",
			Title:      "親子リトミック, 春の回",
			Date:       time.Date(2024, 4, 10, 0, 0, 0, 0, time.UTC),
			TimeRange:  "10:30〜11:15",
			SourceName: "中央児童館",
			URL:        "https://example.jp/rhythm",
		},
		{
			Title:      "日付未定のイベント",
			SourceName: "市イベント情報",
		},
	}

	ics := GenerateICS(events)

	if !strings.HasPrefix(ics, "BEGIN:VCALENDAR\r\n") || !strings.HasSuffix(ics, "END:VCALENDAR\r\n") {
		t.Fatalf("malformed calendar envelope:\n%s", ics)
	}
	if got := strings.Count(ics, "BEGIN:VEVENT"); got != 1 {
		t.Errorf("dateless events must be skipped, got %d VEVENTs", got)
	}
	if !strings.Contains(ics, "DTSTART:20240410T103000Z") {
		t.Error("start must come from the parsed time range")
	}
	if !strings.Contains(ics, "DTEND:20240410T111500Z") {
		t.Error("end must come from the parsed time range")
	}
	if !strings.Contains(ics, "SUMMARY:親子リトミック\\, 春の回") {
		t.Error("summary comma must be escaped")
	}
	if !strings.Contains(ics, "UID:abc123@kosodate-events") {
		t.Error("UID carries the stable event ID")
	}
	if !strings.Contains(ics, "LOCATION:中央児童館") {
		t.Error("location falls back to the source name")
	}
	if !strings.Contains(ics, "URL:https://example.jp/rhythm") {
		t.Error("event URL must be exported")
	}
}

func TestEventSpanDefaults(t *testing.T) {
	evt := event.Event{Date: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)}
	start, end := eventSpan(&evt)
	if start.Hour() != 9 || end.Sub(start) != time.Hour {
		t.Errorf("no time range must default to 9:00 + 1h, got %v-%v", start, end)
	}

	evt.TimeRange = "14:00〜"
	start, end = eventSpan(&evt)
	if start.Hour() != 14 || end.Sub(start) != time.Hour {
		t.Errorf("open-ended range must use default duration, got %v-%v", start, end)
	}
}
