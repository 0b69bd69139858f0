package jptext

import (
	"regexp"
	"strconv"
	"time"
)

// eraOffsets maps era names to the offset added to the era year to get
// the Gregorian year (令和6年 → 2018+6 = 2024).
var eraOffsets = []struct {
	name   string
	offset int
}{
	{"令和", 2018},
	{"平成", 1988},
}

var (
	reEraYearMonth = regexp.MustCompile(`(令和|平成)(\d{1,2})年(\d{1,2})月`)
	reYearMonth    = regexp.MustCompile(`(\d{4})年(\d{1,2})月`)
	reParenYear    = regexp.MustCompile(`[（(](\d{4})年[）)]`)
	reIssueMonth   = regexp.MustCompile(`(\d{1,2})月号`)
	reFiscalYear   = regexp.MustCompile(`(令和|平成)(\d{1,2})年度`)
	reBareMonth    = regexp.MustCompile(`(\d{1,2})月`)
)

func eraOffset(name string) int {
	for _, e := range eraOffsets {
		if e.name == name {
			return e.offset
		}
	}
	return 0
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

// ResolveYearMonth extracts the publication year and month from free
// text. Strategies are tried in order and the first hit wins:
//
//  1. era year+month ("令和6年4月")
//  2. western year+month ("2024年4月")
//  3. a parenthesized Gregorian year paired with an issue month
//     ("(2024年) … 5月号"); the parentheses keep a stray year mention
//     elsewhere in the text from being paired with the issue month
//  4. a fiscal year ("令和6年度") paired with a bare month, where
//     months January–March belong to the next calendar year because the
//     fiscal year starts in April
//
// When nothing matches the fallback pair is returned unchanged.
func ResolveYearMonth(text string, fallbackYear, fallbackMonth int) (int, int) {
	s := Normalize(text)

	if m := reEraYearMonth.FindStringSubmatch(s); m != nil {
		if month := atoi(m[3]); month >= 1 && month <= 12 {
			return eraOffset(m[1]) + atoi(m[2]), month
		}
	}
	if m := reYearMonth.FindStringSubmatch(s); m != nil {
		if month := atoi(m[2]); month >= 1 && month <= 12 {
			return atoi(m[1]), month
		}
	}
	if im := reIssueMonth.FindStringSubmatch(s); im != nil {
		if month := atoi(im[1]); month >= 1 && month <= 12 {
			if y := reParenYear.FindStringSubmatch(s); y != nil {
				return atoi(y[1]), month
			}
		}
	}
	if fy := reFiscalYear.FindStringSubmatch(s); fy != nil {
		// 年度 itself matches the bare-month pattern, so search the text
		// with the fiscal token removed.
		rest := reFiscalYear.ReplaceAllString(s, "")
		if bm := reBareMonth.FindStringSubmatch(rest); bm != nil {
			if month := atoi(bm[1]); month >= 1 && month <= 12 {
				year := eraOffset(fy[1]) + atoi(fy[2])
				if month <= 3 {
					year++
				}
				return year, month
			}
		}
	}
	return fallbackYear, fallbackMonth
}

// ResolveYearMonthFromMeta resolves year and month for documents whose
// page text carries no usable date, typically because the title is an
// embedded image. Strategy order:
//
//  1. the text-based resolver
//  2. an issue month in the text paired with the document creation
//     year, rolling the year forward when the issue month precedes the
//     creation month
//  3. the month after the creation date, rolling the year at December
//  4. the supplied fallback
func ResolveYearMonthFromMeta(created time.Time, text string, fallbackYear, fallbackMonth int) (int, int) {
	if y, m := ResolveYearMonth(text, 0, 0); y != 0 {
		return y, m
	}
	if !created.IsZero() {
		s := Normalize(text)
		if im := reIssueMonth.FindStringSubmatch(s); im != nil {
			if month := atoi(im[1]); month >= 1 && month <= 12 {
				year := created.Year()
				if month < int(created.Month()) {
					year++
				}
				return year, month
			}
		}
		year, month := created.Year(), int(created.Month())+1
		if month > 12 {
			year, month = year+1, 1
		}
		return year, month
	}
	return fallbackYear, fallbackMonth
}

// CalendarDate builds a calendar date, reporting ok=false when the day
// or month is out of range for that year (day 31 in a 30-day month,
// Feb 30 and so on). Callers drop the record rather than erroring.
func CalendarDate(year, month, day int) (time.Time, bool) {
	if year < 1 || month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, false
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Year() != year || int(t.Month()) != month || t.Day() != day {
		return time.Time{}, false
	}
	return t, true
}
