// Package fetch retrieves source documents: plain HTTP for static
// pages and PDFs, and a headless browser for the portal listing, which
// renders its article links with JavaScript.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/tkumagai/kosodate-events/internal/logger"
)

const (
	UserAgent = "kosodate-events/1.0 (github.com/tkumagai/kosodate-events)"
	Timeout   = 30 * time.Second

	// renderTimeout bounds a full browser round trip including page
	// scripts; municipal pages can be slow.
	renderTimeout = 60 * time.Second

	maxBodySize = 32 << 20
)

// Client fetches source documents over HTTP.
type Client struct {
	http *http.Client
}

// New creates a Client with the default timeout.
func New() *Client {
	return &Client{
		http: &http.Client{
			Timeout: Timeout,
		},
	}
}

// Get fetches a URL and returns the response body.
func (c *Client) Get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", UserAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching %s: unexpected status code %d", url, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", url, err)
	}
	return body, nil
}

// Rendered fetches a URL through a headless browser and returns the
// page HTML after scripts have populated the given selector.
func Rendered(ctx context.Context, pageURL, waitSelector string) (string, error) {
	allocCtx, allocCancel := chromedp.NewExecAllocator(
		ctx,
		append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", true),
			chromedp.Flag("disable-gpu", true),
		)...,
	)
	defer allocCancel()

	browserCtx, browserCancel := chromedp.NewContext(allocCtx)
	defer browserCancel()

	runCtx, runCancel := context.WithTimeout(browserCtx, renderTimeout)
	defer runCancel()

	logger.L().Debug("rendering page", zap.String("url", pageURL))

	var pageHTML string
	err := chromedp.Run(
		runCtx,
		chromedp.Navigate(pageURL),
		chromedp.WaitVisible(waitSelector, chromedp.ByQuery),
		chromedp.OuterHTML("html", &pageHTML, chromedp.ByQuery),
	)
	if err != nil {
		return "", fmt.Errorf("rendering %s: %w", pageURL, err)
	}
	return pageHTML, nil
}
