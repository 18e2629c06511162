package fetcher

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"
)

// ChromeRenderer fetches pages through a headless Chrome instance. Each call
// launches a fresh browser and tears it down unconditionally, so renderer
// failures never leak browser processes.
type ChromeRenderer struct {
	userAgent string
	timeout   time.Duration
}

// NewChromeRenderer creates a renderer with the given navigation timeout.
func NewChromeRenderer(userAgent string, timeout time.Duration) *ChromeRenderer {
	return &ChromeRenderer{userAgent: userAgent, timeout: timeout}
}

// Render navigates to the URL, waits for the document to be ready, and
// returns the fully rendered HTML.
func (r *ChromeRenderer) Render(ctx context.Context, pageURL string) (string, error) {
	opts := append(
		chromedp.DefaultExecAllocatorOptions[:],
		chromedp.NoSandbox,
		chromedp.Flag("disable-setuid-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.DisableGPU,
		chromedp.UserAgent(r.userAgent),
	)

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	runCtx, cancelRun := context.WithTimeout(browserCtx, r.timeout)
	defer cancelRun()

	var html string
	err := chromedp.Run(runCtx,
		chromedp.Navigate(pageURL),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	if err != nil {
		return "", fmt.Errorf("render %s: %w", pageURL, err)
	}

	return html, nil
}
