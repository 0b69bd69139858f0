// Package cli wires the whole run: fetch every source, parse, merge,
// and write the feed outputs. Individual sources fail soft; only the
// output writes can abort the run.
package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tkumagai/kosodate-events/internal/event"
	"github.com/tkumagai/kosodate-events/internal/facility"
	"github.com/tkumagai/kosodate-events/internal/fetch"
	"github.com/tkumagai/kosodate-events/internal/logger"
	"github.com/tkumagai/kosodate-events/internal/sitegen"
	"github.com/tkumagai/kosodate-events/internal/sources"
)

const (
	ExitSuccess = 0
	ExitError   = 1

	// The three non-PDF sources.
	listingURL  = "https://kosodate.city.kumamoto.jp/kiji/list"
	cityPageURL = "https://www.city.kumamoto.jp/kosodate/event/calendar.html"
	eventCalURL = "https://kumamoto-kosodate-cal.jp/"

	// Article links under the rendered listing root; the page is empty
	// until its scripts populate this.
	listingWaitSelector = "#maincont a"

	monthLayout = "2006-01"
)

var (
	flagOutDir     string
	flagHTML       string
	flagICS        bool
	flagOverrides  string
	flagMonth      string
	flagVerbose    bool
	flagSkipRender bool
)

// NewRootCmd creates the root command.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "kosodate-events",
		Short: "Aggregate Kumamoto childcare events into one feed",
		Long: `Aggregates childcare events from the municipal childcare portal, the
city event page, the event-calendar site, and the monthly PDF
newsletters of the ten community children's centers into a single
normalized JSON feed.`,
		RunE: runAggregate,
	}

	cmd.Flags().StringVar(&flagOutDir, "out-dir", "public", "Directory for events.json and events.ics")
	cmd.Flags().StringVar(&flagHTML, "html", "", "Static page to splice the feed into (optional)")
	cmd.Flags().BoolVar(&flagICS, "ics", false, "Also write an ICS calendar export")
	cmd.Flags().StringVar(&flagOverrides, "overrides", "overrides.yaml", "Manual override file for unreadable newsletters")
	cmd.Flags().StringVar(&flagMonth, "month", "", "Target month as YYYY-MM (default: current month)")
	cmd.Flags().BoolVar(&flagVerbose, "verbose", false, "Enable verbose logging")
	cmd.Flags().BoolVar(&flagSkipRender, "skip-render", false, "Fetch the portal listing without a headless browser")

	return cmd
}

func runAggregate(cmd *cobra.Command, args []string) error {
	if err := logger.Init(flagVerbose); err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}

	year, month, err := targetMonth(flagMonth)
	if err != nil {
		return err
	}

	overrides, err := facility.LoadOverrides(flagOverrides)
	if err != nil {
		// A broken override file degrades the unreadable facilities,
		// nothing else.
		logger.L().Warn("loading overrides", zap.String("path", flagOverrides), zap.Error(err))
		overrides = &facility.OverrideStore{}
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	client := fetch.New()

	lists := [][]event.Event{
		fetchListing(ctx, client),
		fetchCityPage(ctx, client),
		fetchEventCalendar(ctx, client, year),
	}
	lists = append(lists, fetchFacilities(ctx, client, facility.Options{
		Year:      year,
		Month:     month,
		Overrides: overrides,
	})...)

	merged := event.Aggregate(lists...)
	feed := event.NewFeed(merged, time.Now())
	logger.L().Info("aggregated feed",
		zap.Int("events", feed.Count),
		zap.Int("year", year),
		zap.Int("month", month))

	feedPath, err := sitegen.WriteFeed(feed, flagOutDir)
	if err != nil {
		return err
	}
	logger.L().Info("wrote feed", zap.String("path", feedPath))

	if flagHTML != "" {
		if err := sitegen.EmbedFeed(feed, flagHTML); err != nil {
			return err
		}
		logger.L().Info("updated page", zap.String("path", flagHTML))
	}

	if flagICS {
		icsPath, err := sitegen.WriteICS(feed.Events, flagOutDir)
		if err != nil {
			return err
		}
		logger.L().Info("wrote calendar", zap.String("path", icsPath))
	}
	return nil
}

// targetMonth resolves the --month flag, defaulting to the wall-clock
// month.
func targetMonth(flag string) (int, int, error) {
	if flag == "" {
		now := time.Now()
		return now.Year(), int(now.Month()), nil
	}
	t, err := time.Parse(monthLayout, flag)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid --month %q (want YYYY-MM): %w", flag, err)
	}
	return t.Year(), int(t.Month()), nil
}

// fetchListing pulls the JS-rendered portal listing. The page needs a
// browser unless --skip-render asked for a plain fetch.
func fetchListing(ctx context.Context, client *fetch.Client) []event.Event {
	var (
		markup string
		err    error
	)
	if flagSkipRender {
		var body []byte
		body, err = client.Get(ctx, listingURL)
		markup = string(body)
	} else {
		markup, err = fetch.Rendered(ctx, listingURL, listingWaitSelector)
	}
	if err != nil {
		logger.L().Warn("portal listing unavailable", zap.Error(err))
		return nil
	}
	events, err := sources.ParseListing(markup, listingURL)
	if err != nil {
		logger.L().Warn("portal listing unparseable", zap.Error(err))
		return nil
	}
	logger.L().Debug("portal listing", zap.Int("events", len(events)))
	return events
}

func fetchCityPage(ctx context.Context, client *fetch.Client) []event.Event {
	body, err := client.Get(ctx, cityPageURL)
	if err != nil {
		logger.L().Warn("city page unavailable", zap.Error(err))
		return nil
	}
	events, err := sources.ParseCityPage(string(body), cityPageURL)
	if err != nil {
		logger.L().Warn("city page unparseable", zap.Error(err))
		return nil
	}
	logger.L().Debug("city page", zap.Int("events", len(events)))
	return events
}

func fetchEventCalendar(ctx context.Context, client *fetch.Client, year int) []event.Event {
	body, err := client.Get(ctx, eventCalURL)
	if err != nil {
		logger.L().Warn("event calendar unavailable", zap.Error(err))
		return nil
	}
	events, err := sources.ParseEventCalendar(string(body), eventCalURL, year)
	if err != nil {
		logger.L().Warn("event calendar unparseable", zap.Error(err))
		return nil
	}
	logger.L().Debug("event calendar", zap.Int("events", len(events)))
	return events
}

// fetchFacilities runs the ten newsletter parsers. A failed download is
// handed to the parser as an unreadable document so the facility's
// manual overrides still apply.
func fetchFacilities(ctx context.Context, client *fetch.Client, opts facility.Options) [][]event.Event {
	var lists [][]event.Event
	for _, def := range facility.Definitions() {
		doc, err := client.Get(ctx, def.URL)
		if err != nil {
			logger.L().Warn("newsletter unavailable",
				zap.String("facility", def.Name), zap.Error(err))
			doc = nil
		}

		var extra [][]byte
		if def.BackURL != "" {
			back, err := client.Get(ctx, def.BackURL)
			if err != nil {
				logger.L().Warn("newsletter back page unavailable",
					zap.String("facility", def.Name), zap.Error(err))
			} else {
				extra = append(extra, back)
			}
		}

		parser := facility.New(def, opts)
		events, err := parser.Parse(doc, extra...)
		if err != nil {
			logger.L().Warn("newsletter unparseable",
				zap.String("facility", def.Name), zap.Error(err))
			continue
		}
		logger.L().Debug("newsletter parsed",
			zap.String("facility", def.Name), zap.Int("events", len(events)))
		lists = append(lists, events)
	}
	return lists
}

// Execute runs the CLI.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(ExitError)
	}
}
