package facility

import (
	"go.uber.org/zap"

	"github.com/tkumagai/kosodate-events/internal/calendar"
	"github.com/tkumagai/kosodate-events/internal/event"
	"github.com/tkumagai/kosodate-events/internal/jptext"
	"github.com/tkumagai/kosodate-events/internal/logger"
	"github.com/tkumagai/kosodate-events/internal/pdfdoc"
)

// gridParser is the shared strategy: extract a grid per page (or per
// page half), walk it, and fall back to the manual override list when
// the document yields no calendar structure at all.
type gridParser struct {
	def  Definition
	opts Options
}

func (p *gridParser) Key() string  { return p.def.Key }
func (p *gridParser) Name() string { return p.def.Name }

func (p *gridParser) Parse(doc []byte, _ ...[]byte) ([]event.Event, error) {
	d, err := pdfdoc.Open(doc)
	if err != nil {
		logger.L().Warn("facility document unreadable",
			zap.String("facility", p.def.Key), zap.Error(err))
		return p.overrideEvents(), nil
	}
	events, structured := p.parseDocument(d)
	if !structured {
		logger.L().Warn("no calendar structure extracted",
			zap.String("facility", p.def.Key))
		return p.overrideEvents(), nil
	}
	return events, nil
}

// parseDocument walks every extractable grid. structured reports whether
// any page produced a recognizable weekday header; false means the
// document is scanned or otherwise non-extractable.
func (p *gridParser) parseDocument(d *pdfdoc.Document) (events []event.Event, structured bool) {
	cfg := p.walkConfig(p.targetMonth(d))
	for page := 1; page <= d.NumPages(); page++ {
		for _, g := range p.pageGrids(d, page) {
			if _, _, ok := calendar.FindHeader(g, cfg.Weekdays); !ok {
				continue
			}
			structured = true
			events = append(events, calendar.Walk(g, cfg)...)
		}
	}
	if p.def.Audience != nil {
		events = p.def.Audience.Apply(events)
	}
	return events, structured
}

// targetMonth resolves the newsletter's year and month from the first
// page text, or from document metadata for image-title facilities,
// falling back to the run's target month.
func (p *gridParser) targetMonth(d *pdfdoc.Document) (int, int) {
	text := d.PageText(1)
	if p.def.MetadataDates {
		return jptext.ResolveYearMonthFromMeta(d.CreationDate(), text, p.opts.Year, p.opts.Month)
	}
	return jptext.ResolveYearMonth(text, p.opts.Year, p.opts.Month)
}

func (p *gridParser) walkConfig(year, month int) calendar.Config {
	weekdays := p.def.Weekdays
	if weekdays == nil {
		weekdays = calendar.WeekdaysMonday
	}
	return calendar.Config{
		Year:          year,
		Month:         month,
		SourceName:    p.def.Name,
		SourceURL:     p.def.URL,
		Weekdays:      weekdays,
		ColumnOffset:  p.def.ColumnOffset,
		DefaultTime:   p.def.DefaultTime,
		SplitMultiple: p.def.SplitMultiple,
	}
}

// pageGrids builds the candidate grids for one page. Two-column pages
// are cropped into halves first so unrelated side-by-side text does not
// interleave.
func (p *gridParser) pageGrids(d *pdfdoc.Document, page int) []calendar.Grid {
	if p.def.TwoColumn {
		var grids []calendar.Grid
		if g := pdfdoc.GridFromWords(d.LeftWords(page)); g != nil {
			grids = append(grids, g)
		}
		if g := pdfdoc.GridFromWords(d.RightWords(page)); g != nil {
			grids = append(grids, g)
		}
		return grids
	}
	if g := pdfdoc.GridFromWords(d.PageWords(page)); g != nil {
		return []calendar.Grid{g}
	}
	return nil
}

// overrideEvents is the degraded mode: the curated list for this
// facility, or nothing.
func (p *gridParser) overrideEvents() []event.Event {
	if p.opts.Overrides == nil {
		return nil
	}
	return p.opts.Overrides.Events(p.def, p.opts.Year, p.opts.Month)
}
