// Package sitegen writes the aggregated feed to disk: a JSON snapshot,
// an optional inline embed into a static HTML page, and an optional
// ICS file. Output failures are the only fatal errors in a run; every
// upstream source failure degrades to fewer events instead.
package sitegen

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tkumagai/kosodate-events/internal/calendar"
	"github.com/tkumagai/kosodate-events/internal/event"
)

const (
	FeedFileName = "events.json"
	ICSFileName  = "events.ics"

	// Sentinel comments in the static page mark the script block the
	// generator owns. Everything between them is replaced on each run.
	beginMarker = "// EVENTS_JSON_BEGIN"
	endMarker   = "// EVENTS_JSON_END"
)

// WriteFeed writes the feed snapshot as indented JSON under dir.
// Japanese text stays readable: HTML escaping is off.
func WriteFeed(feed event.Feed, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating output dir: %w", err)
	}
	path := filepath.Join(dir, FeedFileName)

	data, err := marshalFeed(feed)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing feed: %w", err)
	}
	return path, nil
}

// WriteICS writes the calendar export under dir.
func WriteICS(events []event.Event, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating output dir: %w", err)
	}
	path := filepath.Join(dir, ICSFileName)
	if err := os.WriteFile(path, []byte(calendar.GenerateICS(events)), 0o644); err != nil {
		return "", fmt.Errorf("writing ICS: %w", err)
	}
	return path, nil
}

// EmbedFeed splices the feed into the static page at htmlPath,
// replacing the script block between the sentinel comments with a
// fresh `const EVENTS = ...;` declaration.
func EmbedFeed(feed event.Feed, htmlPath string) error {
	page, err := os.ReadFile(htmlPath)
	if err != nil {
		return fmt.Errorf("reading page: %w", err)
	}

	updated, err := spliceFeed(string(page), feed)
	if err != nil {
		return err
	}
	if err := os.WriteFile(htmlPath, []byte(updated), 0o644); err != nil {
		return fmt.Errorf("writing page: %w", err)
	}
	return nil
}

func spliceFeed(page string, feed event.Feed) (string, error) {
	begin := strings.Index(page, beginMarker)
	end := strings.Index(page, endMarker)
	if begin < 0 || end < 0 || end < begin {
		return "", fmt.Errorf("page is missing the %s/%s markers", beginMarker, endMarker)
	}

	data, err := marshalFeed(feed)
	if err != nil {
		return "", err
	}

	var block strings.Builder
	block.WriteString(beginMarker)
	block.WriteString("\nconst EVENTS = ")
	block.Write(bytes.TrimRight(data, "\n"))
	block.WriteString(";\n")

	return page[:begin] + block.String() + page[end:], nil
}

func marshalFeed(feed event.Feed) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(feed); err != nil {
		return nil, fmt.Errorf("encoding feed: %w", err)
	}
	return buf.Bytes(), nil
}
