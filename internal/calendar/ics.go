package calendar

import (
	"fmt"
	"strings"
	"time"

	"github.com/tkumagai/kosodate-events/internal/event"
)

const defaultEventDuration = time.Hour

// GenerateICS renders the aggregated feed as a single iCalendar
// document with one VEVENT per record. Records without a resolvable
// date are skipped; records without a time range become all-day-style
// 9:00 entries with the default duration.
func GenerateICS(events []event.Event) string {
	var ics strings.Builder

	ics.WriteString("BEGIN:VCALENDAR\r\n")
	ics.WriteString("VERSION:2.0\r\n")
	ics.WriteString("PRODID:-//kosodate-events//kosodate-events//JA\r\n")
	ics.WriteString("CALSCALE:GREGORIAN\r\n")
	ics.WriteString("METHOD:PUBLISH\r\n")

	stamp := formatICSTime(time.Now().UTC())
	for i := range events {
		writeVEvent(&ics, &events[i], stamp)
	}

	ics.WriteString("END:VCALENDAR\r\n")
	return ics.String()
}

func writeVEvent(ics *strings.Builder, evt *event.Event, stamp string) {
	if evt.Date.IsZero() {
		return
	}

	start, end := eventSpan(evt)

	ics.WriteString("BEGIN:VEVENT\r\n")
	fmt.Fprintf(ics, "UID:%s@kosodate-events\r\n", evt.ID)
	fmt.Fprintf(ics, "DTSTAMP:%s\r\n", stamp)
	fmt.Fprintf(ics, "DTSTART:%s\r\n", formatICSTime(start))
	fmt.Fprintf(ics, "DTEND:%s\r\n", formatICSTime(end))
	fmt.Fprintf(ics, "SUMMARY:%s\r\n", escapeICS(evt.Title))

	description := evt.Description
	if evt.TimeRange != "" {
		description = strings.TrimSpace("時間: " + evt.TimeRange + "\n" + description)
	}
	if description != "" {
		fmt.Fprintf(ics, "DESCRIPTION:%s\r\n", escapeICS(description))
	}
	location := evt.Location
	if location == "" {
		location = evt.SourceName
	}
	fmt.Fprintf(ics, "LOCATION:%s\r\n", escapeICS(location))
	if evt.URL != "" {
		fmt.Fprintf(ics, "URL:%s\r\n", evt.URL)
	} else if evt.SourceURL != "" {
		fmt.Fprintf(ics, "URL:%s\r\n", evt.SourceURL)
	}
	ics.WriteString("STATUS:CONFIRMED\r\n")
	ics.WriteString("TRANSP:OPAQUE\r\n")
	ics.WriteString("END:VEVENT\r\n")
}

// eventSpan derives concrete start and end times from the canonical
// "HH:MM〜HH:MM" / "HH:MM〜" range, defaulting to 9:00 plus one hour.
func eventSpan(evt *event.Event) (time.Time, time.Time) {
	day := evt.Date
	start := time.Date(day.Year(), day.Month(), day.Day(), 9, 0, 0, 0, time.UTC)
	end := start.Add(defaultEventDuration)

	parts := strings.SplitN(evt.TimeRange, "〜", 2)
	if t, err := time.Parse("15:04", strings.TrimSpace(parts[0])); err == nil {
		start = time.Date(day.Year(), day.Month(), day.Day(), t.Hour(), t.Minute(), 0, 0, time.UTC)
		end = start.Add(defaultEventDuration)
	}
	if len(parts) == 2 {
		if t, err := time.Parse("15:04", strings.TrimSpace(parts[1])); err == nil {
			end = time.Date(day.Year(), day.Month(), day.Day(), t.Hour(), t.Minute(), 0, 0, time.UTC)
		}
	}
	return start, end
}

func formatICSTime(t time.Time) string {
	return t.UTC().Format("20060102T150405Z")
}

// escapeICS escapes text per RFC 5545.
func escapeICS(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, ",", "\\,")
	s = strings.ReplaceAll(s, ";", "\\;")
	s = strings.ReplaceAll(s, "\n", "\\n")
	return s
}
