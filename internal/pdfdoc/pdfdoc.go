// Package pdfdoc wraps ledongthuc/pdf with the extraction primitives the
// facility parsers need: plain page text, positioned words, word
// clustering into a calendar grid, horizontal-half cropping for
// two-column layouts and creation-date metadata.
//
// Extraction never promises structure: scanned or image-only pages yield
// empty text and empty grids, which callers treat as a degraded mode.
package pdfdoc

import (
	"bytes"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/ledongthuc/pdf"

	"github.com/tkumagai/kosodate-events/internal/calendar"
)

// Clustering tolerances in PDF points. Words closer than these are
// considered to share a row or column.
const (
	defaultRowTolerance = 6.0
	defaultColTolerance = 14.0
)

// Document is one opened PDF.
type Document struct {
	reader *pdf.Reader
}

// Open parses the document structure. Unreadable bytes are an error;
// readable documents with no extractable text are not.
func Open(data []byte) (*Document, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty document")
	}
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("opening pdf: %w", err)
	}
	return &Document{reader: reader}, nil
}

// NumPages returns the page count.
func (d *Document) NumPages() int {
	return d.reader.NumPage()
}

// PageText extracts the plain text of a 1-based page. Pages the reader
// cannot decode yield an empty string, not an error.
func (d *Document) PageText(pageNum int) string {
	defer func() { recover() }() // the decoder panics on some damaged streams
	page := d.reader.Page(pageNum)
	if page.V.IsNull() {
		return ""
	}
	text, err := page.GetPlainText(nil)
	if err != nil {
		return ""
	}
	return text
}

// Text concatenates the plain text of every page.
func (d *Document) Text() string {
	var b strings.Builder
	for i := 1; i <= d.NumPages(); i++ {
		t := d.PageText(i)
		if t == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString(t)
	}
	return b.String()
}

// Word is one extracted text fragment with its page position. X grows
// rightward, Y grows upward (PDF coordinates).
type Word struct {
	Text string
	X    float64
	Y    float64
}

// PageWords extracts positioned words from a 1-based page by merging
// adjacent glyph runs that share a baseline.
func (d *Document) PageWords(pageNum int) []Word {
	defer func() { recover() }() // Content() panics on malformed content streams
	page := d.reader.Page(pageNum)
	if page.V.IsNull() {
		return nil
	}
	content := page.Content()
	texts := make([]pdf.Text, len(content.Text))
	copy(texts, content.Text)
	sort.SliceStable(texts, func(i, j int) bool {
		if texts[i].Y != texts[j].Y {
			return texts[i].Y > texts[j].Y
		}
		return texts[i].X < texts[j].X
	})

	var words []Word
	for _, t := range texts {
		if strings.TrimSpace(t.S) == "" {
			continue
		}
		if n := len(words); n > 0 {
			prev := &words[n-1]
			if sameBaseline(prev.Y, t.Y) && t.X-wordEnd(prev, t) < glyphGap(t) {
				prev.Text += t.S
				continue
			}
		}
		words = append(words, Word{Text: t.S, X: t.X, Y: t.Y})
	}
	return words
}

func sameBaseline(a, b float64) bool {
	diff := a - b
	if diff < 0 {
		diff = -diff
	}
	return diff < 2.0
}

// wordEnd estimates where the previous word's glyphs end.
func wordEnd(w *Word, next pdf.Text) float64 {
	return w.X + float64(len([]rune(w.Text)))*next.FontSize
}

func glyphGap(t pdf.Text) float64 {
	if t.FontSize > 0 {
		return t.FontSize * 1.2
	}
	return 10
}

// LeftWords and RightWords crop a page at the midpoint of its word
// extent so two-column layouts can be read as independent halves.
func (d *Document) LeftWords(pageNum int) []Word {
	return d.halfWords(pageNum, false)
}

func (d *Document) RightWords(pageNum int) []Word {
	return d.halfWords(pageNum, true)
}

func (d *Document) halfWords(pageNum int, right bool) []Word {
	left, rightHalf := SplitHalves(d.PageWords(pageNum))
	if right {
		return rightHalf
	}
	return left
}

// SplitHalves partitions words at the midpoint of their X extent.
func SplitHalves(words []Word) (left, right []Word) {
	if len(words) == 0 {
		return nil, nil
	}
	minX, maxX := words[0].X, words[0].X
	for _, w := range words {
		if w.X < minX {
			minX = w.X
		}
		if w.X > maxX {
			maxX = w.X
		}
	}
	mid := (minX + maxX) / 2
	for _, w := range words {
		if w.X >= mid {
			right = append(right, w)
		} else {
			left = append(left, w)
		}
	}
	return left, right
}

// WordsText joins words into reading-order text, one physical row per
// line, for regex search over a cropped region.
func WordsText(words []Word) string {
	rows := clusterRows(words, defaultRowTolerance)
	var lines []string
	for _, row := range rows {
		parts := make([]string, len(row))
		for i, w := range row {
			parts[i] = w.Text
		}
		lines = append(lines, strings.Join(parts, " "))
	}
	return strings.Join(lines, "\n")
}

// GridFromWords reconstructs a calendar grid from positioned words:
// rows are clustered by baseline, columns by the X positions observed
// across the whole word set. Words landing in the same cell stack as
// separate lines.
func GridFromWords(words []Word) calendar.Grid {
	if len(words) == 0 {
		return nil
	}
	rows := clusterRows(words, defaultRowTolerance)
	columns := clusterColumns(words, defaultColTolerance)
	if len(columns) == 0 {
		return nil
	}

	grid := make(calendar.Grid, len(rows))
	for r, row := range rows {
		cells := make([]string, len(columns))
		for _, w := range row {
			c := columnIndex(columns, w.X)
			if cells[c] == "" {
				cells[c] = w.Text
			} else {
				cells[c] += "\n" + w.Text
			}
		}
		grid[r] = cells
	}
	return grid
}

// clusterRows groups words by baseline, top of page first, left to
// right inside a row.
func clusterRows(words []Word, tolerance float64) [][]Word {
	sorted := make([]Word, len(words))
	copy(sorted, words)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Y != sorted[j].Y {
			return sorted[i].Y > sorted[j].Y
		}
		return sorted[i].X < sorted[j].X
	})

	var rows [][]Word
	for _, w := range sorted {
		if n := len(rows); n > 0 {
			rowY := rows[n-1][0].Y
			if rowY-w.Y <= tolerance {
				rows[n-1] = append(rows[n-1], w)
				continue
			}
		}
		rows = append(rows, []Word{w})
	}
	for _, row := range rows {
		sort.SliceStable(row, func(i, j int) bool { return row[i].X < row[j].X })
	}
	return rows
}

// clusterColumns derives column anchor positions from all word X
// coordinates, merging anchors closer than the tolerance.
func clusterColumns(words []Word, tolerance float64) []float64 {
	xs := make([]float64, 0, len(words))
	for _, w := range words {
		xs = append(xs, w.X)
	}
	sort.Float64s(xs)

	var columns []float64
	for _, x := range xs {
		if n := len(columns); n > 0 && x-columns[n-1] <= tolerance {
			continue
		}
		columns = append(columns, x)
	}
	return columns
}

func columnIndex(columns []float64, x float64) int {
	best := 0
	bestDist := -1.0
	for i, c := range columns {
		dist := x - c
		if dist < 0 {
			dist = -dist
		}
		if bestDist < 0 || dist < bestDist {
			best, bestDist = i, dist
		}
	}
	return best
}

// CreationDate reads the document creation timestamp from the Info
// dictionary, returning the zero time when absent or malformed.
func (d *Document) CreationDate() time.Time {
	defer func() { recover() }() // trailer access panics on damaged xrefs

	info := d.reader.Trailer().Key("Info")
	if info.IsNull() {
		return time.Time{}
	}
	raw := info.Key("CreationDate").RawString()
	return ParsePDFDate(raw)
}

// ParsePDFDate parses the "D:YYYYMMDDHHmmSS" timestamp format, ignoring
// any timezone suffix.
func ParsePDFDate(raw string) time.Time {
	s := strings.TrimPrefix(raw, "D:")
	if len(s) > 14 {
		s = s[:14]
	}
	for _, layout := range []string{"20060102150405", "200601021504", "20060102"} {
		if len(s) < len(layout) {
			continue
		}
		if t, err := time.Parse(layout, s[:len(layout)]); err == nil {
			return t
		}
	}
	return time.Time{}
}
