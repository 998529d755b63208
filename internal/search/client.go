package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/gocolly/colly"
	"github.com/jaki95/lyrics-relay/internal/domain"
)

const (
	DefaultBaseURL   = "https://duckduckgo.com/lite"
	DefaultMarker    = "歌詞"
	DefaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10.14; rv:70.0) Gecko/20100101 Firefox/70.0"
)

// Searcher fetches the raw results page for a player state.
type Searcher interface {
	Search(ctx context.Context, state domain.PlayerState) (string, error)
}

// Client queries the lite HTML endpoint of the search provider.
type Client struct {
	baseURL   string
	marker    string
	userAgent string
	transport http.RoundTripper
}

// Option customises a Client.
type Option func(*Client)

// WithMarker replaces the lyrics marker prepended to every query.
func WithMarker(marker string) Option {
	return func(c *Client) { c.marker = marker }
}

// WithUserAgent replaces the browser identification header.
func WithUserAgent(userAgent string) Option {
	return func(c *Client) { c.userAgent = userAgent }
}

// WithTransport sets the round tripper used by each collector.
func WithTransport(transport http.RoundTripper) Option {
	return func(c *Client) { c.transport = transport }
}

// NewClient creates a search client for baseURL, which must be https.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid search base url: %w", err)
	}
	if parsed.Scheme != "https" {
		return nil, fmt.Errorf("search base url must use https, got %q", parsed.Scheme)
	}

	c := &Client{
		baseURL:   baseURL,
		marker:    DefaultMarker,
		userAgent: DefaultUserAgent,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Query builds the search terms for a state. The album is never included.
func Query(marker string, state domain.PlayerState) string {
	return fmt.Sprintf("%s %s %s", marker, state.Artist, state.Track)
}

// URL builds the full request URL for a state.
func URL(baseURL, marker string, state domain.PlayerState) string {
	sep := "?"
	if strings.Contains(baseURL, "?") {
		sep = "&"
	}
	return baseURL + sep + "q=" + url.QueryEscape(Query(marker, state))
}

// Search issues one GET and returns the full response body. Every failure
// wraps domain.ErrSearchFailed.
func (c *Client) Search(ctx context.Context, state domain.PlayerState) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrSearchFailed, err)
	}

	searchURL := URL(c.baseURL, c.marker, state)
	slog.Info("Making search request", "url", searchURL)

	collector := colly.NewCollector(
		colly.AllowURLRevisit(),
		colly.UserAgent(c.userAgent),
		// The page is read whole; a capped read would look like a short page.
		colly.MaxBodySize(0),
	)
	// No client-side deadline: a slow search is superseded, not timed out.
	collector.SetRequestTimeout(0)
	if c.transport != nil {
		collector.WithTransport(c.transport)
	}

	var body string
	var received bool
	collector.OnResponse(func(r *colly.Response) {
		body = string(r.Body)
		received = true
	})
	collector.OnError(func(r *colly.Response, err error) {
		slog.Debug("Search response error", "url", searchURL, "status", r.StatusCode, "error", err)
	})

	if err := collector.Visit(searchURL); err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrSearchFailed, err)
	}
	if !received {
		return "", fmt.Errorf("%w: %w", domain.ErrSearchFailed, errors.New("no response received"))
	}

	slog.Debug("Search response received", "url", searchURL, "bytes", len(body))
	return body, nil
}
