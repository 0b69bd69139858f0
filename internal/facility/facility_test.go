package facility

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/tkumagai/kosodate-events/internal/event"
)

func TestDefinitionsRegistry(t *testing.T) {
	defs := Definitions()
	if len(defs) != 10 {
		t.Fatalf("expected 10 facilities, got %d", len(defs))
	}
	seen := make(map[string]bool)
	for _, def := range defs {
		if def.Key == "" || def.Name == "" || def.URL == "" {
			t.Errorf("incomplete definition: %+v", def)
		}
		if seen[def.Key] {
			t.Errorf("duplicate key %q", def.Key)
		}
		seen[def.Key] = true
	}
}

func TestNewSelectsStrategy(t *testing.T) {
	opts := Options{Year: 2024, Month: 4}
	for _, def := range Definitions() {
		p := New(def, opts)
		if p.Key() != def.Key || p.Name() != def.Name {
			t.Errorf("parser identity mismatch for %q", def.Key)
		}
		switch def.Strategy {
		case StrategyFrontBack:
			if _, ok := p.(*frontBackParser); !ok {
				t.Errorf("%q: expected frontBackParser", def.Key)
			}
		case StrategyDetailRef:
			if _, ok := p.(*detailRefParser); !ok {
				t.Errorf("%q: expected detailRefParser", def.Key)
			}
		default:
			if _, ok := p.(*gridParser); !ok {
				t.Errorf("%q: expected gridParser", def.Key)
			}
		}
	}
}

func TestGridParserUnreadableFallsBackToOverrides(t *testing.T) {
	overrides := &OverrideStore{entries: map[string][]OverrideEvent{
		"hanazono": {
			{Day: 10, Title: "おたのしみ会", Time: "11:00〜12:00"},
			{Day: 31, Title: "範囲外の日"}, // April has 30 days
		},
	}}
	def := Definition{Key: "hanazono", Name: "花園児童館", URL: "https://example.jp/h.pdf"}
	p := New(def, Options{Year: 2024, Month: 4, Overrides: overrides})

	events, err := p.Parse([]byte("not a pdf at all"))
	if err != nil {
		t.Fatalf("degraded mode must not error: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 override event (out-of-range day dropped), got %d", len(events))
	}
	ev := events[0]
	if ev.Title != "おたのしみ会" || ev.Date.Day() != 10 || ev.TimeRange != "11:00〜12:00" {
		t.Errorf("unexpected override event: %+v", ev)
	}
	if ev.SourceName != "花園児童館" {
		t.Errorf("source = %q", ev.SourceName)
	}
}

func TestGridParserUnreadableWithoutOverrides(t *testing.T) {
	def := Definition{Key: "hanazono", Name: "花園児童館", URL: "https://example.jp/h.pdf"}
	p := New(def, Options{Year: 2024, Month: 4})
	events, err := p.Parse(nil)
	if err != nil {
		t.Fatalf("degraded mode must not error: %v", err)
	}
	if len(events) != 0 {
		t.Fatalf("expected empty list, got %d", len(events))
	}
}

func TestLoadOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "overrides.yaml")
	content := `hanazono:
  - day: 5
    title: 読み聞かせ会
    time: 10:30〜11:00
    reservation: true
  - day: 12
    title: ベビー体操
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	store, err := LoadOverrides(path)
	if err != nil {
		t.Fatalf("LoadOverrides: %v", err)
	}
	def := Definition{Key: "hanazono", Name: "花園児童館", URL: "u", DefaultTime: "10:00〜"}
	events := store.Events(def, 2024, 4)
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if !events[0].NeedsReservation {
		t.Error("expected reservation flag from YAML")
	}
	if events[1].TimeRange != "10:00〜" {
		t.Errorf("expected facility default time, got %q", events[1].TimeRange)
	}
	if events[0].Category != "親子ふれあい" {
		t.Errorf("category = %q", events[0].Category)
	}
}

func TestLoadOverridesMissingFile(t *testing.T) {
	store, err := LoadOverrides(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("missing file must not error: %v", err)
	}
	if got := store.Events(Definition{Key: "x"}, 2024, 4); len(got) != 0 {
		t.Errorf("expected empty events, got %d", len(got))
	}
}

func TestAudienceFilter(t *testing.T) {
	f := &AudienceFilter{
		Allow: []string{"乳幼児", "親子"},
		Deny:  []string{"中学生"},
	}
	tests := []struct {
		text     string
		expected bool
	}{
		{"乳幼児ふれあいあそび", true},
		{"親子リトミック", true},
		{"中学生と乳幼児の交流会", false}, // deny wins over allow
		{"小学生将棋教室", false},       // no allow match
	}
	for _, tt := range tests {
		if got := f.Match(tt.text); got != tt.expected {
			t.Errorf("Match(%q) = %v, expected %v", tt.text, got, tt.expected)
		}
	}
}

func TestAudienceFilterApply(t *testing.T) {
	f := &AudienceFilter{Allow: []string{"親子"}}
	events := []event.Event{
		{Title: "親子体操"},
		{Title: "シニア体操"},
	}
	kept := f.Apply(events)
	if len(kept) != 1 || kept[0].Title != "親子体操" {
		t.Errorf("unexpected filter result: %+v", kept)
	}
}

func TestAudienceFilterEmptyAllowKeepsAll(t *testing.T) {
	f := &AudienceFilter{Deny: []string{"大人"}}
	if !f.Match("だれでも歓迎") {
		t.Error("no allow list should keep non-denied events")
	}
}

func TestParseDetailEntries(t *testing.T) {
	text := "おしらせ\n" +
		"4月10日(水) ベビーマッサージ 10:30〜11:30 0歳対象\n" +
		"4月24日 おはなし会 午後2時〜午後3時\n" +
		"5月1日 こいのぼり工作\n" +
		"日時未定のおしらせ\n"
	entries := parseDetailEntries(text)
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	first := entries[0]
	if first.Month != 4 || first.Day != 10 {
		t.Errorf("first entry date = %d月%d日", first.Month, first.Day)
	}
	if first.Title != "ベビーマッサージ 0歳対象" {
		t.Errorf("first title = %q", first.Title)
	}
	if first.Time != "10:30〜11:30" {
		t.Errorf("first time = %q", first.Time)
	}
	if first.Audience != "0歳" {
		t.Errorf("first audience = %q", first.Audience)
	}
	if entries[1].Time != "14:00〜15:00" {
		t.Errorf("second time = %q", entries[1].Time)
	}
	if entries[2].Month != 5 || entries[2].Time != "" {
		t.Errorf("third entry = %+v", entries[2])
	}
}

func TestFrontBackJoin(t *testing.T) {
	def := Definition{Key: "hokubu", Name: "北部児童館", URL: "u"}
	p := &frontBackParser{grid: gridParser{def: def, opts: Options{Year: 2024, Month: 12}}}

	front := []event.Event{
		{Title: "★こうさく", Date: time.Date(2024, 12, 10, 0, 0, 0, 0, time.UTC), SourceName: def.Name, SourceURL: def.URL},
		{Title: "おはなし会", Date: time.Date(2024, 12, 20, 0, 0, 0, 0, time.UTC), SourceName: def.Name, SourceURL: def.URL},
	}
	details := []detailEntry{
		{Month: 12, Day: 10, Title: "クリスマスこうさく", Time: "14:00〜15:00", Audience: "3〜5歳"},
		{Month: 1, Day: 7, Title: "お正月あそび", Time: "10:30〜"},
	}

	got := p.join(front, details, 2024, 12)
	if len(got) != 3 {
		t.Fatalf("expected 2 front + 1 back-only event, got %d", len(got))
	}
	if got[0].Title != "クリスマスこうさく" || got[0].TimeRange != "14:00〜15:00" || got[0].TargetAge != "3〜5歳" {
		t.Errorf("back detail should win: %+v", got[0])
	}
	if got[1].Title != "おはなし会" {
		t.Errorf("unmatched front event must stay: %+v", got[1])
	}
	backOnly := got[2]
	if backOnly.Title != "お正月あそび" {
		t.Errorf("back-only title = %q", backOnly.Title)
	}
	if backOnly.Date.Year() != 2025 || backOnly.Date.Month() != time.January || backOnly.Date.Day() != 7 {
		t.Errorf("January entry on a December newsletter must roll the year: %v", backOnly.Date)
	}
}

func TestEnrichFromDetails(t *testing.T) {
	details := []detailEntry{
		{Month: 4, Day: 9, Title: "おはなし会", Time: "11:00〜11:30", Audience: "1〜2歳"},
		{Month: 4, Day: 23, Title: "おはなし会", Time: "14:00〜14:30", Audience: "3〜5歳"},
	}

	evt := event.Event{
		Title:     "★おはなし会",
		Date:      time.Date(2024, 4, 22, 0, 0, 0, 0, time.UTC),
		TimeRange: "10:30〜",
	}
	enrichFromDetails(&evt, details)
	if evt.Title != "おはなし会" {
		t.Errorf("star prefix must be stripped, got %q", evt.Title)
	}
	if evt.TimeRange != "14:00〜14:30" {
		t.Errorf("expected nearest-day detail time, got %q", evt.TimeRange)
	}
	if evt.TargetAge != "3〜5歳" {
		t.Errorf("audience = %q", evt.TargetAge)
	}

	unmatched := event.Event{
		Title:     "★えいがかい",
		Date:      time.Date(2024, 4, 5, 0, 0, 0, 0, time.UTC),
		TimeRange: "10:30〜",
	}
	enrichFromDetails(&unmatched, details)
	if unmatched.TimeRange != "10:30〜" {
		t.Errorf("unmatched event keeps default time, got %q", unmatched.TimeRange)
	}
}
