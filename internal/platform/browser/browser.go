// Package browser provides the page-rendering capability consumed by the
// crawler: a headless Chromium launched once per crawl, with an isolated
// browsing context per fetch so cookies, storage, and listeners cannot leak
// between pages.
package browser

import (
	"context"
	"fmt"
	"time"

	"github.com/playwright-community/playwright-go"

	"seoauditor/internal/logger"
)

// Snapshot is one rendered document: final HTML after client-side rendering
// settled, plus the navigation status.
type Snapshot struct {
	URL    string
	HTML   string
	Status int
}

// RenderOptions bound a single fetch.
type RenderOptions struct {
	Timeout     time.Duration // navigation deadline
	SettleDelay time.Duration // post-navigation wait for client-side rendering
	UserAgent   string
}

// Renderer launches browser processes. The crawler asks for one Browser per
// crawl invocation and closes it on every exit path.
type Renderer interface {
	Launch(ctx context.Context) (Browser, error)
}

// Browser renders pages in isolated sessions until closed.
type Browser interface {
	Render(ctx context.Context, url string, opts RenderOptions) (*Snapshot, error)
	Close() error
}

type playwrightRenderer struct {
	log *logger.Logger
}

// NewPlaywright returns the playwright-backed Renderer.
func NewPlaywright() Renderer {
	return &playwrightRenderer{log: logger.New("Browser")}
}

func (r *playwrightRenderer) Launch(ctx context.Context) (Browser, error) {
	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("playwright run: %w", err)
	}
	chromium, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(true),
		Args: []string{
			"--no-sandbox",
			"--disable-dev-shm-usage",
			"--disable-blink-features=AutomationControlled",
			"--no-first-run",
			"--disable-default-apps",
			"--disable-extensions",
		},
	})
	if err != nil {
		_ = pw.Stop()
		return nil, fmt.Errorf("launch: %w", err)
	}
	return &playwrightBrowser{pw: pw, browser: chromium, log: r.log}, nil
}

type playwrightBrowser struct {
	pw      *playwright.Playwright
	browser playwright.Browser
	log     *logger.Logger
}

func (b *playwrightBrowser) Render(ctx context.Context, url string, opts RenderOptions) (*Snapshot, error) {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 20 * time.Second
	}

	bctx, err := b.browser.NewContext(playwright.BrowserNewContextOptions{
		UserAgent: playwright.String(opts.UserAgent),
	})
	if err != nil {
		return nil, fmt.Errorf("new context: %w", err)
	}
	defer bctx.Close()

	page, err := bctx.NewPage()
	if err != nil {
		return nil, fmt.Errorf("new page: %w", err)
	}

	resp, err := page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
		Timeout:   playwright.Float(float64(timeout.Milliseconds())),
	})
	if err != nil {
		return nil, fmt.Errorf("goto failed: %w", err)
	}

	// Short settle so client-side rendering has a chance to fill the DOM.
	settle := opts.SettleDelay
	if settle <= 0 {
		settle = 1500 * time.Millisecond
	}
	select {
	case <-time.After(settle):
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	html, err := page.Content()
	if err != nil {
		return nil, fmt.Errorf("content: %w", err)
	}

	status := 200
	if resp != nil {
		status = resp.Status()
	}
	return &Snapshot{URL: url, HTML: html, Status: status}, nil
}

func (b *playwrightBrowser) Close() error {
	err := b.browser.Close()
	if stopErr := b.pw.Stop(); err == nil {
		err = stopErr
	}
	return err
}
