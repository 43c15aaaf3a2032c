// Package osint implements the free open-data collector. One Lookup fans a
// query across several public search endpoints, pacing requests so the
// collector stays a polite citizen of the sources it scrapes.
package osint

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/teddybearwork/pickme/internal/provider"
	"github.com/teddybearwork/pickme/internal/query"
)

const (
	// maxBodyBytes bounds how much of a source response is read.
	maxBodyBytes = 256 * 1024

	// snippetLen bounds the per-source excerpt kept in the payload.
	snippetLen = 240

	defaultUserAgent = "pickme-osint/1.0"
)

var (
	tagRe        = regexp.MustCompile(`<[^>]*>`)
	whitespaceRe = regexp.MustCompile(`\s+`)
)

// Source is one public search endpoint. The normalized query value is
// appended as the q parameter. An empty Kinds list means the source serves
// every kind.
type Source struct {
	Name    string
	BaseURL string
	Kinds   []query.Kind
}

func (s Source) serves(kind query.Kind) bool {
	if len(s.Kinds) == 0 {
		return true
	}
	for _, k := range s.Kinds {
		if k == kind {
			return true
		}
	}
	return false
}

// DefaultSources returns the standing open-data endpoints.
func DefaultSources() []Source {
	return []Source{
		{Name: "web", BaseURL: "https://html.duckduckgo.com/html/"},
		{Name: "social", BaseURL: "https://searx.be/search", Kinds: []query.Kind{
			query.KindUsername, query.KindEmail, query.KindPhone, query.KindGeneral,
		}},
	}
}

// Collector is the free-tier provider. Always reports zero cost.
type Collector struct {
	client    *http.Client
	limiter   *rate.Limiter
	sources   []Source
	logger    *slog.Logger
	userAgent string
}

type Option func(*Collector)

func WithHTTPClient(client *http.Client) Option {
	return func(c *Collector) {
		if client != nil {
			c.client = client
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Collector) {
		c.logger = logger
	}
}

// WithRateLimit overrides the pacing applied between source requests.
func WithRateLimit(limit rate.Limit, burst int) Option {
	return func(c *Collector) {
		c.limiter = rate.NewLimiter(limit, burst)
	}
}

func New(sources []Source, opts ...Option) (*Collector, error) {
	if len(sources) == 0 {
		return nil, errors.New("at least one source is required")
	}
	c := &Collector{
		client:    &http.Client{Timeout: 15 * time.Second},
		limiter:   rate.NewLimiter(rate.Every(500*time.Millisecond), 1),
		sources:   sources,
		userAgent: defaultUserAgent,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *Collector) Name() string { return "osint" }

// Lookup runs the query against every applicable source sequentially. A
// source failure is recorded and skipped; the lookup as a whole fails only
// when no source produced anything.
func (c *Collector) Lookup(ctx context.Context, q query.Query) (provider.Payload, error) {
	fields := make(map[string]string)
	hits := 0

	for _, src := range c.sources {
		if !src.serves(q.Kind) {
			continue
		}
		if err := c.limiter.Wait(ctx); err != nil {
			return provider.Payload{}, err
		}
		snippet, err := c.search(ctx, src, q.NormalizedValue)
		if err != nil {
			if c.logger != nil {
				c.logger.WarnContext(ctx, "osint source failed",
					"source", src.Name, "kind", q.Kind.String(), "error", err)
			}
			continue
		}
		fields[src.Name] = snippet
		hits++
	}

	if hits == 0 {
		return provider.Payload{}, errors.New("no open-data source responded")
	}
	return provider.Payload{Fields: fields, CostCredits: 0}, nil
}

func (c *Collector) search(ctx context.Context, src Source, value string) (string, error) {
	searchURL := src.BaseURL + "?q=" + url.QueryEscape(value)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("source returned %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", err
	}
	snippet := cleanSnippet(string(body))
	if snippet == "" {
		return "", errors.New("empty response")
	}
	return snippet, nil
}

// cleanSnippet strips markup and collapses whitespace so the payload carries
// a readable excerpt instead of raw HTML.
func cleanSnippet(body string) string {
	text := tagRe.ReplaceAllString(body, " ")
	text = whitespaceRe.ReplaceAllString(text, " ")
	text = strings.TrimSpace(text)
	if len(text) > snippetLen {
		text = text[:snippetLen]
	}
	return text
}
