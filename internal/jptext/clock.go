package jptext

import (
	"fmt"
	"regexp"
	"strings"
)

// RangeSeparator joins the start and end of a canonical clock range.
const RangeSeparator = "〜"

// reClock matches one clock token: an optional 午前/午後 prefix with
// either a colon form ("10:30") or a kanji form ("3時", "3時15分"),
// or the 正午 literal.
var reClock = regexp.MustCompile(`(午前|午後)?\s*(\d{1,2})(?::(\d{2})|時(?:\s*(\d{1,2})分)?)|正午`)

var rangeSeparators = []string{"〜", "~", "から", "より", "−", "–", "―", "ー", "-"}

// HasClock reports whether the text contains a recognizable clock token.
func HasClock(text string) bool {
	_, _, ok := findClock(Normalize(text))
	return ok
}

// NormalizeClockRange canonicalizes the first clock range found in the
// text as "HH:MM〜HH:MM", or "HH:MM〜" when only a start is present.
// 午後 adds twelve hours except for 12 itself, 午前12時 maps to 0:00 and
// 正午 to 12:00. A trailing まで is ignored. Text with no clock token
// yields the empty string.
func NormalizeClockRange(text string) string {
	s := strings.ReplaceAll(Normalize(text), "まで", "")

	start, rest, ok := findClock(s)
	if !ok {
		return ""
	}
	open := fmt.Sprintf("%02d:%02d%s", start/60, start%60, RangeSeparator)

	rest = strings.TrimLeft(rest, " ")
	sep := false
	for _, cand := range rangeSeparators {
		if strings.HasPrefix(rest, cand) {
			rest = rest[len(cand):]
			sep = true
			break
		}
	}
	if !sep {
		return open
	}
	end, _, ok := findClock(rest)
	if !ok {
		return open
	}
	return open + fmt.Sprintf("%02d:%02d", end/60, end%60)
}

// findClock locates the first valid clock token in s, returning its
// minutes since midnight and the text following the token.
func findClock(s string) (minutes int, rest string, ok bool) {
	for offset := 0; offset < len(s); {
		loc := reClock.FindStringSubmatchIndex(s[offset:])
		if loc == nil {
			return 0, "", false
		}
		match := s[offset+loc[0] : offset+loc[1]]
		after := offset + loc[1]

		if match == "正午" {
			return 12 * 60, s[after:], true
		}

		group := func(i int) string {
			if loc[2*i] < 0 {
				return ""
			}
			return s[offset+loc[2*i] : offset+loc[2*i+1]]
		}
		hour := atoi(group(2))
		var minute int
		switch {
		case group(3) != "":
			minute = atoi(group(3))
		case group(4) != "":
			minute = atoi(group(4))
		}
		switch group(1) {
		case "午後":
			if hour != 12 {
				hour += 12
			}
		case "午前":
			if hour == 12 {
				hour = 0
			}
		}
		if hour <= 23 && minute <= 59 {
			return hour*60 + minute, s[after:], true
		}
		offset += loc[1]
	}
	return 0, "", false
}
