package fetcher

import (
	"context"
	"fmt"
	"sync"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/Birgy1002/rezept-pwa/internal/entity"
	"github.com/Birgy1002/rezept-pwa/internal/repository"
)

// Browser renders pages in headless Chrome before returning their HTML.
// Use it for recipe sites that build the ingredient list client side.
// One Chrome process serves all fetches; each fetch runs in its own tab.
type Browser struct {
	opts        Options
	logger      *zap.Logger
	allocCtx    context.Context
	allocCancel context.CancelFunc

	launchMu      sync.Mutex
	browserCtx    context.Context
	browserCancel context.CancelFunc
}

// NewBrowser creates a browser fetcher. Chrome is started lazily on first use.
func NewBrowser(opts Options, logger *zap.Logger) *Browser {
	opts = opts.withDefaults()
	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.UserAgent(opts.UserAgent),
	)
	allocCtx, cancel := chromedp.NewExecAllocator(context.Background(), allocOpts...)
	return &Browser{opts: opts, logger: logger, allocCtx: allocCtx, allocCancel: cancel}
}

// Fetch navigates to rawURL and returns the rendered document.
func (b *Browser) Fetch(ctx context.Context, rawURL string) (*entity.Page, error) {
	target, err := CheckTarget(rawURL, b.opts.Allowlist)
	if err != nil {
		return nil, err
	}

	browserCtx, err := b.browser()
	if err != nil {
		return nil, fmt.Errorf("%w: starting chrome: %w", repository.ErrNetwork, err)
	}

	// A context derived from the browser context opens a new tab; cancelling it closes only the tab.
	taskCtx, cancel := chromedp.NewContext(browserCtx)
	defer cancel()
	taskCtx, cancelTimeout := context.WithTimeout(taskCtx, b.opts.Timeout)
	defer cancelTimeout()

	// The tab context is not derived from ctx, so propagate caller cancellation by hand.
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	var (
		mu       sync.Mutex
		document *network.Response
	)
	chromedp.ListenTarget(taskCtx, func(ev interface{}) {
		if resp, ok := ev.(*network.EventResponseReceived); ok && resp.Type == network.ResourceTypeDocument {
			mu.Lock()
			if document == nil {
				document = resp.Response
			}
			mu.Unlock()
		}
	})

	var html string
	err = chromedp.Run(taskCtx,
		network.Enable(),
		network.SetExtraHTTPHeaders(network.Headers{"Accept-Language": b.opts.AcceptLanguage}),
		chromedp.Navigate(target.String()),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = ctxErr
		}
		return nil, fmt.Errorf("%w: %w", repository.ErrNetwork, err)
	}

	mu.Lock()
	defer mu.Unlock()
	page := &entity.Page{URL: target.String(), Body: html, ContentType: "text/html; charset=utf-8", StatusCode: 200}
	if document != nil {
		page.StatusCode = int(document.Status)
		page.URL = document.URL
	}
	if page.StatusCode < 200 || page.StatusCode > 299 {
		return nil, &repository.UpstreamError{Status: page.StatusCode}
	}

	b.logger.Debug("page rendered", zap.String("url", page.URL), zap.Int("status", page.StatusCode))
	return page, nil
}

// browser returns the shared browser context, launching Chrome on first use.
// A failed launch is retried by the next call.
func (b *Browser) browser() (context.Context, error) {
	b.launchMu.Lock()
	defer b.launchMu.Unlock()

	if b.browserCtx != nil {
		return b.browserCtx, nil
	}
	ctx, cancel := chromedp.NewContext(b.allocCtx, chromedp.WithLogf(b.logger.Sugar().Debugf))
	if err := chromedp.Run(ctx); err != nil {
		cancel()
		return nil, err
	}
	b.logger.Info("headless chrome started")
	b.browserCtx, b.browserCancel = ctx, cancel
	return ctx, nil
}

// Launched reports whether Chrome is running.
func (b *Browser) Launched() bool {
	b.launchMu.Lock()
	defer b.launchMu.Unlock()
	return b.browserCtx != nil
}

// Close shuts down Chrome and the allocator.
func (b *Browser) Close() {
	b.launchMu.Lock()
	if b.browserCancel != nil {
		b.browserCancel()
		b.browserCtx, b.browserCancel = nil, nil
	}
	b.launchMu.Unlock()
	b.allocCancel()
}
