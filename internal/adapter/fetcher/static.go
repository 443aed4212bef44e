package fetcher

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"strings"

	"github.com/gocolly/colly/v2"
	"go.uber.org/zap"

	"github.com/Birgy1002/rezept-pwa/internal/entity"
	"github.com/Birgy1002/rezept-pwa/internal/repository"
)

// Static fetches pages with a single colly request per call.
type Static struct {
	opts   Options
	logger *zap.Logger
}

// NewStatic creates a static fetcher.
func NewStatic(opts Options, logger *zap.Logger) *Static {
	return &Static{opts: opts.withDefaults(), logger: logger}
}

// Fetch retrieves rawURL. Non-2xx responses yield *repository.UpstreamError;
// nothing is retried.
func (f *Static) Fetch(ctx context.Context, rawURL string) (*entity.Page, error) {
	target, err := CheckTarget(rawURL, f.opts.Allowlist)
	if err != nil {
		return nil, err
	}

	options := []colly.CollectorOption{
		colly.UserAgent(f.opts.UserAgent),
		colly.AllowURLRevisit(),
		colly.ParseHTTPErrorResponse(),
		colly.StdlibContext(ctx),
	}
	if len(f.opts.Allowlist) > 0 {
		// Redirects leaving the allow-list are refused by colly as well.
		options = append(options, colly.AllowedDomains(f.opts.Allowlist.Hosts()...))
	}
	c := colly.NewCollector(options...)
	c.SetRequestTimeout(f.opts.Timeout)
	c.MaxBodySize = f.opts.MaxBodyBytes
	if f.opts.Transport != nil {
		c.WithTransport(f.opts.Transport)
	}

	c.OnRequest(func(r *colly.Request) {
		r.Headers.Set("Accept", acceptHeader)
		r.Headers.Set("Accept-Language", f.opts.AcceptLanguage)
	})

	var page *entity.Page
	c.OnResponse(func(r *colly.Response) {
		if len(r.Body) >= f.opts.MaxBodyBytes {
			f.logger.Warn("page body reached the size limit and was truncated",
				zap.String("url", r.Request.URL.String()),
				zap.Int("max_body_bytes", f.opts.MaxBodyBytes),
			)
		}
		page = &entity.Page{
			URL:         r.Request.URL.String(),
			Body:        string(r.Body),
			ContentType: utf8ContentType(r.Headers.Get("Content-Type")),
			StatusCode:  r.StatusCode,
		}
	})

	f.logger.Debug("fetching page", zap.String("url", target.String()))
	if err := c.Visit(target.String()); err != nil {
		if errors.Is(err, colly.ErrForbiddenDomain) {
			return nil, fmt.Errorf("%w: %v", repository.ErrForbiddenHost, err)
		}
		return nil, fmt.Errorf("%w: %w", repository.ErrNetwork, err)
	}
	if page == nil {
		return nil, fmt.Errorf("%w: no response for %s", repository.ErrNetwork, target)
	}
	if page.StatusCode < 200 || page.StatusCode > 299 {
		return nil, &repository.UpstreamError{Status: page.StatusCode}
	}

	f.logger.Debug("page fetched",
		zap.String("url", page.URL),
		zap.Int("status", page.StatusCode),
		zap.String("content_type", page.ContentType),
		zap.Int("body_size", len(page.Body)),
	)
	return page, nil
}

// utf8ContentType relabels a content type as UTF-8. colly decodes bodies with
// a declared charset to UTF-8, so the upstream charset no longer applies.
func utf8ContentType(contentType string) string {
	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return "text/html; charset=utf-8"
	}
	if strings.HasPrefix(mediaType, "text/") || params["charset"] != "" {
		params["charset"] = "utf-8"
	}
	return mime.FormatMediaType(mediaType, params)
}
