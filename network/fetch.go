package network

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/brotli"
	"github.com/raidenhub/phim/apperr"
	"github.com/raidenhub/phim/key"
	"github.com/spf13/viper"
	"golang.org/x/time/rate"
)

const maxBodySize = 16 << 20

// Fetcher sends paced requests with a fixed header set and returns decoded bodies.
// Transport failures and 429/5xx statuses come back as transient errors, other statuses as resolve errors.
type Fetcher struct {
	client  *http.Client
	limiter *rate.Limiter
	header  http.Header
}

type Option func(*Fetcher)

// WithHeader adds a header sent with every request.
func WithHeader(k, v string) Option {
	return func(f *Fetcher) { f.header.Set(k, v) }
}

// WithRateLimit paces requests to rps per second. Zero disables pacing.
func WithRateLimit(rps float64, burst int) Option {
	return func(f *Fetcher) {
		if rps <= 0 {
			f.limiter = nil
			return
		}
		f.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// BrowserHeaders is the header set sent to scraped HTML sites.
func BrowserHeaders(userAgent string) []Option {
	return []Option{
		WithHeader("User-Agent", userAgent),
		WithHeader("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8"),
		WithHeader("Accept-Language", "vi-VN,vi;q=0.9,en-US;q=0.8,en;q=0.7"),
	}
}

func NewFetcher(client *http.Client, opts ...Option) *Fetcher {
	f := &Fetcher{
		client: client,
		header: make(http.Header),
	}
	f.header.Set("Accept-Encoding", "gzip, br")
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// NewScrapeFetcher builds the fetcher for HTML providers from the network.* configuration.
func NewScrapeFetcher() *Fetcher {
	timeout := time.Duration(viper.GetInt(key.NetworkTimeout)) * time.Second
	client := NewClient(timeout, viper.GetBool(key.NetworkTLSFingerprint))

	opts := BrowserHeaders(viper.GetString(key.NetworkUserAgent))
	opts = append(opts, WithRateLimit(float64(viper.GetInt(key.NetworkRateLimit)), 4))
	return NewFetcher(client, opts...)
}

// NewAPIFetcher builds a fetcher for JSON APIs with the configured timeout and no fingerprinting.
func NewAPIFetcher(opts ...Option) *Fetcher {
	timeout := time.Duration(viper.GetInt(key.NetworkTimeout)) * time.Second
	return NewFetcher(NewClient(timeout, false), opts...)
}

// Client exposes the underlying client, for callers that need it for another library.
func (f *Fetcher) Client() *http.Client {
	return f.client
}

// Do sends req with the fetcher headers. Headers already set on req win.
func (f *Fetcher) Do(req *http.Request) ([]byte, error) {
	op := req.Method + " " + req.URL.Host

	if f.limiter != nil {
		if err := f.limiter.Wait(req.Context()); err != nil {
			return nil, apperr.Transient(op, err)
		}
	}

	for k, values := range f.header {
		if req.Header.Get(k) == "" {
			req.Header[k] = values
		}
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, apperr.Transient(op, err)
	}
	defer resp.Body.Close()

	body, err := decodeBody(resp)
	if err != nil {
		return nil, apperr.Transient(op, fmt.Errorf("read body: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		statusErr := &StatusError{URL: req.URL.String(), StatusCode: resp.StatusCode}
		if statusErr.Temporary() {
			return body, apperr.Transient(op, statusErr)
		}
		return body, &apperr.Error{Kind: apperr.KindResolve, Op: op, Err: statusErr}
	}

	return body, nil
}

func decodeBody(resp *http.Response) ([]byte, error) {
	var reader io.Reader = resp.Body

	switch strings.ToLower(resp.Header.Get("Content-Encoding")) {
	case "br":
		reader = brotli.NewReader(resp.Body)
	case "gzip":
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, err
		}
		defer gz.Close()
		reader = gz
	}

	return io.ReadAll(io.LimitReader(reader, maxBodySize))
}

// Get fetches url.
func (f *Fetcher) Get(ctx context.Context, rawURL string, header http.Header) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, apperr.Resolve("network.Get", err.Error())
	}
	for k, values := range header {
		req.Header[k] = values
	}
	return f.Do(req)
}

// Document fetches url and parses it as HTML.
func (f *Fetcher) Document(ctx context.Context, rawURL string) (*goquery.Document, error) {
	body, err := f.Get(ctx, rawURL, nil)
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, apperr.Resolve("network.Document", err.Error())
	}
	doc.Url, _ = url.Parse(rawURL)
	return doc, nil
}

// GetJSON fetches url and decodes the body into v.
func (f *Fetcher) GetJSON(ctx context.Context, rawURL string, header http.Header, v any) error {
	body, err := f.Get(ctx, rawURL, header)
	if err != nil {
		return err
	}
	return decodeJSON(rawURL, body, v)
}

// PostJSON sends payload as JSON and returns the raw response body.
func (f *Fetcher) PostJSON(ctx context.Context, rawURL string, header http.Header, payload any) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, apperr.Resolve("network.PostJSON", err.Error())
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, rawURL, bytes.NewReader(data))
	if err != nil {
		return nil, apperr.Resolve("network.PostJSON", err.Error())
	}
	req.Header.Set("Content-Type", "application/json")
	for k, values := range header {
		req.Header[k] = values
	}
	return f.Do(req)
}

// PostForm sends an url-encoded form and returns the raw response body.
func (f *Fetcher) PostForm(ctx context.Context, rawURL string, header http.Header, form string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, rawURL, strings.NewReader(form))
	if err != nil {
		return nil, apperr.Resolve("network.PostForm", err.Error())
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for k, values := range header {
		req.Header[k] = values
	}
	return f.Do(req)
}

func decodeJSON(source string, body []byte, v any) error {
	if err := json.Unmarshal(body, v); err != nil {
		return apperr.Resolve("network.decode", fmt.Sprintf("invalid JSON from %s: %v", source, err))
	}
	return nil
}
