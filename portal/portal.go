// Package portal looks up levy payments on the NAPPS member portal.
package portal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/nappsnasarawa/levyreceipt"
	"github.com/rs/zerolog"
)

const searchPath = "/api/payments/search"

// Errors returned by Search.
var (
	ErrEmptyQuery = errors.New("portal: empty search query")
	ErrRejected   = errors.New("portal: search rejected")
	ErrNotFound   = errors.New("portal: no matching payment")
	ErrAmbiguous  = errors.New("portal: query matches several payments")
)

// searchResponse is the portal's response envelope.
type searchResponse struct {
	Success bool                        `json:"success"`
	Data    []levyreceipt.PaymentRecord `json:"data"`
	Message string                      `json:"message"`
}

// Client searches the portal payment API.
type Client struct {
	baseURL string
	http    *http.Client
	cache   Cache
	ttl     time.Duration
	logger  zerolog.Logger
}

// Option is a functional option for configuring a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// WithCache caches successful search results for ttl.
func WithCache(cache Cache, ttl time.Duration) Option {
	return func(c *Client) {
		c.cache = cache
		c.ttl = ttl
	}
}

// WithLogger sets the logger for cache and request events.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) {
		c.logger = l
	}
}

// NewClient creates a Client for the portal at baseURL.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("portal: invalid base URL %q", baseURL)
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 15 * time.Second},
		logger:  zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Search returns the payments matching query (a receipt number, reference,
// email or phone). A cached result is served when a cache is configured;
// cache failures fall through to the portal.
func (c *Client) Search(ctx context.Context, query string) ([]levyreceipt.PaymentRecord, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyQuery
	}

	key := cacheKey(query)
	if c.cache != nil {
		data, ok, err := c.cache.Get(ctx, key)
		switch {
		case err != nil:
			c.logger.Warn().Err(err).Str("query", query).Msg("lookup cache read failed")
		case ok:
			var records []levyreceipt.PaymentRecord
			if err := json.Unmarshal(data, &records); err == nil {
				c.logger.Debug().Str("query", query).Msg("lookup cache hit")
				return records, nil
			}
		}
	}

	records, err := c.fetch(ctx, query)
	if err != nil {
		return nil, err
	}

	if c.cache != nil {
		data, err := json.Marshal(records)
		if err == nil {
			err = c.cache.Set(ctx, key, data, c.ttl)
		}
		if err != nil {
			c.logger.Warn().Err(err).Str("query", query).Msg("lookup cache write failed")
		}
	}
	return records, nil
}

// Find returns the single payment whose receipt number or reference equals
// query, or the only search result when there is no exact match.
func (c *Client) Find(ctx context.Context, query string) (levyreceipt.PaymentRecord, error) {
	records, err := c.Search(ctx, query)
	if err != nil {
		return levyreceipt.PaymentRecord{}, err
	}
	for _, r := range records {
		if strings.EqualFold(r.ReceiptNumber, query) || strings.EqualFold(r.Reference, query) {
			return r, nil
		}
	}
	switch len(records) {
	case 0:
		return levyreceipt.PaymentRecord{}, fmt.Errorf("%w: %q", ErrNotFound, query)
	case 1:
		return records[0], nil
	}
	return levyreceipt.PaymentRecord{}, fmt.Errorf("%w: %d payments match %q", ErrAmbiguous, len(records), query)
}

func (c *Client) fetch(ctx context.Context, query string) ([]levyreceipt.PaymentRecord, error) {
	endpoint := c.baseURL + searchPath + "?query=" + url.QueryEscape(query)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	res, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("portal: search %q: %w", query, err)
	}
	defer func() {
		if err := res.Body.Close(); err != nil {
			c.logger.Warn().Err(err).Msg("closing portal response")
		}
	}()

	body, err := io.ReadAll(io.LimitReader(res.Body, 8<<20))
	if err != nil {
		return nil, fmt.Errorf("portal: reading response: %w", err)
	}
	c.logger.Debug().
		Str("query", query).
		Int("status", res.StatusCode).
		Dur("took", time.Since(start)).
		Msg("portal search")

	var sr searchResponse
	if err := json.Unmarshal(body, &sr); err != nil {
		if res.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("portal: search %q: HTTP status %d", query, res.StatusCode)
		}
		return nil, fmt.Errorf("portal: decoding response: %w", err)
	}
	if res.StatusCode != http.StatusOK || !sr.Success {
		msg := sr.Message
		if msg == "" {
			msg = http.StatusText(res.StatusCode)
		}
		return nil, fmt.Errorf("%w: %s", ErrRejected, msg)
	}
	if sr.Data == nil {
		sr.Data = []levyreceipt.PaymentRecord{}
	}
	return sr.Data, nil
}
