// Package httpclient builds the outbound HTTP clients used for upstream APIs.
package httpclient

import (
	"io"
	"net"
	"net/http"
	"time"
)

const (
	// DefaultTimeout bounds connect and read phases separately.
	DefaultTimeout = 30 * time.Second
	// MaxBodyBytes caps how much of an upstream body is read.
	MaxBodyBytes = 1 << 20
)

// NewTransport returns a transport with bounded connect and response-header
// timeouts.
func NewTransport(connectTimeout, readTimeout time.Duration) *http.Transport {
	if connectTimeout <= 0 {
		connectTimeout = DefaultTimeout
	}
	if readTimeout <= 0 {
		readTimeout = DefaultTimeout
	}
	tr := http.DefaultTransport.(*http.Transport).Clone()
	tr.DialContext = (&net.Dialer{
		Timeout:   connectTimeout,
		KeepAlive: 30 * time.Second,
	}).DialContext
	tr.ResponseHeaderTimeout = readTimeout
	return tr
}

// New returns a client over rt. The overall timeout covers connect plus read.
func New(timeout time.Duration, rt http.RoundTripper) *http.Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if rt == nil {
		rt = NewTransport(timeout, timeout)
	}
	return &http.Client{
		Timeout:   2 * timeout,
		Transport: rt,
	}
}

// ReadBody reads at most MaxBodyBytes from r.
func ReadBody(r io.Reader) ([]byte, error) {
	return io.ReadAll(io.LimitReader(r, MaxBodyBytes))
}
