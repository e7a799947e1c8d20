// Package network provides the HTTP plumbing shared by every provider: a tuned client,
// a Chrome-fingerprint transport and a paced, decoding fetcher.
package network

import (
	"net/http"
	"time"
)

// Client is the shared client for API-style providers that do not need fingerprinting.
var Client = &http.Client{
	Timeout:   time.Minute,
	Transport: newTransport(),
}

func newTransport() *http.Transport {
	t := http.DefaultTransport.(*http.Transport).Clone()
	t.MaxIdleConns = 100
	t.MaxIdleConnsPerHost = 100
	t.MaxConnsPerHost = 200
	t.IdleConnTimeout = 30 * time.Second
	t.ResponseHeaderTimeout = 30 * time.Second
	t.ExpectContinueTimeout = 30 * time.Second
	return t
}

// NewClient returns a client with the given timeout. With fingerprint set, HTTPS requests go through ChromeTransport.
func NewClient(timeout time.Duration, fingerprint bool) *http.Client {
	var transport http.RoundTripper = newTransport()
	if fingerprint {
		transport = NewChromeTransport(timeout)
	}
	return &http.Client{Timeout: timeout, Transport: transport}
}
