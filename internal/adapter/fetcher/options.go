// Package fetcher implements repository.PageFetcher with a static HTTP
// collector and a headless browser.
package fetcher

import (
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/Birgy1002/rezept-pwa/internal/repository"
	"github.com/Birgy1002/rezept-pwa/pkg/config"
)

const (
	ModeStatic  = "static"
	ModeBrowser = "browser"
)

const acceptHeader = "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8"

// Options configures both fetcher implementations.
type Options struct {
	Allowlist      HostAllowlist
	UserAgent      string
	AcceptLanguage string
	Timeout        time.Duration
	MaxBodyBytes   int
	// Transport replaces the HTTP transport of the static fetcher, mainly for tests.
	Transport http.RoundTripper
}

func (o Options) withDefaults() Options {
	if o.UserAgent == "" {
		o.UserAgent = config.DefaultUserAgent
	}
	if o.AcceptLanguage == "" {
		o.AcceptLanguage = "de-DE,de;q=0.9,en-US;q=0.8,en;q=0.7"
	}
	if o.Timeout <= 0 {
		o.Timeout = 30 * time.Second
	}
	if o.MaxBodyBytes <= 0 {
		o.MaxBodyBytes = 10 * 1024 * 1024
	}
	return o
}

// OptionsFromConfig maps the service configuration onto fetcher options.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Allowlist:      NewHostAllowlist(cfg.AllowList()),
		UserAgent:      cfg.UserAgent,
		AcceptLanguage: cfg.AcceptLanguage,
		Timeout:        cfg.FetchTimeout(),
		MaxBodyBytes:   cfg.FetchMaxBodyBytes,
	}
}

// New returns the fetcher for mode and a func that releases its resources.
func New(mode string, opts Options, logger *zap.Logger) (repository.PageFetcher, func(), error) {
	switch mode {
	case ModeStatic, "":
		return NewStatic(opts, logger), func() {}, nil
	case ModeBrowser:
		b := NewBrowser(opts, logger)
		return b, b.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown fetch mode %q", mode)
	}
}
