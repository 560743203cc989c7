// Package scrape renders a page in a headless browser and extracts its
// sections.
package scrape

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/entrhq/sectionforge/pkg/browser"
	"github.com/entrhq/sectionforge/pkg/logging"
	"github.com/entrhq/sectionforge/pkg/sections"
	"github.com/entrhq/sectionforge/pkg/types"
)

// Scraper turns a URL into page sections. Every call renders into its own
// browser page, which is closed before Scrape returns.
type Scraper struct {
	opener  browser.Opener
	hosts   *HostMatcher
	timeout time.Duration
	logger  *logging.Logger
}

// Option configures a Scraper.
type Option func(*Scraper)

// WithHostMatcher restricts which hosts may be scraped.
func WithHostMatcher(hm *HostMatcher) Option {
	return func(s *Scraper) {
		s.hosts = hm
	}
}

// WithNavigationTimeout bounds page navigation. Zero keeps the default.
func WithNavigationTimeout(d time.Duration) Option {
	return func(s *Scraper) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(s *Scraper) {
		if l != nil {
			s.logger = l
		}
	}
}

// New creates a Scraper rendering pages through opener.
func New(opener browser.Opener, opts ...Option) *Scraper {
	s := &Scraper{
		opener:  opener,
		timeout: browser.DefaultNavigationTimeout,
		logger:  logging.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ValidateURL checks that raw is an absolute http(s) URL on an allowed host.
func (s *Scraper) ValidateURL(raw string) (*url.URL, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, types.NewValidationError("URL is required")
	}

	u, err := url.Parse(raw)
	if err != nil {
		return nil, types.NewValidationError(fmt.Sprintf("invalid URL: %v", err))
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, types.NewValidationError(fmt.Sprintf("invalid URL %q: scheme must be http or https", raw))
	}
	if u.Hostname() == "" {
		return nil, types.NewValidationError(fmt.Sprintf("invalid URL %q: missing host", raw))
	}
	if !s.hosts.IsAllowed(u.Hostname()) {
		return nil, types.NewValidationError(fmt.Sprintf("host %q is not allowed", u.Hostname()))
	}
	return u, nil
}

// Scrape renders rawURL and returns its sections in extraction order.
// Failures after validation are reported as extraction errors and never
// carry partial results.
func (s *Scraper) Scrape(ctx context.Context, rawURL string) ([]types.Section, error) {
	target, err := s.ValidateURL(rawURL)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	s.logger.Infof("Scraping %s", target)

	page, err := s.opener.Open(ctx, target.String(), s.timeout)
	if err != nil {
		s.logger.Errorf("Failed to render %s: %v", target, err)
		return nil, types.NewExtractionError(fmt.Errorf("failed to render page: %w", err))
	}
	defer func() {
		if cerr := page.Close(); cerr != nil {
			s.logger.Warnf("Failed to close browser for %s: %v", target, cerr)
		}
	}()

	found, err := s.extract(ctx, page)
	if err != nil {
		s.logger.Errorf("Failed to extract sections from %s: %v", target, err)
		return nil, types.NewExtractionError(err)
	}

	s.logger.Infof("Extracted %d sections from %s in %s", len(found), target, time.Since(start).Round(time.Millisecond))
	return found, nil
}

func (s *Scraper) extract(ctx context.Context, page browser.Page) ([]types.Section, error) {
	result, err := page.Evaluate(ctx, sections.SnapshotScript)
	if err != nil {
		return nil, fmt.Errorf("failed to snapshot page: %w", err)
	}

	doc, err := sections.DecodeValue(result)
	if err != nil {
		return nil, err
	}

	return sections.Extract(doc)
}
