package auth

import (
	"context"
	"errors"
	"io"
	"net/http"
)

const authorizationHeader = "Authorization"

// TokenSource is the subset of TokenProvider the transport depends on.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
	InvalidateToken(ctx context.Context, rejected string)
}

// BearerTransport attaches the current bearer token to every request. When the
// upstream answers 401 it invalidates the rejected token, fetches a fresh one
// and retries exactly once; a 401 on the retried request is returned as an
// AuthError.
type BearerTransport struct {
	Base   http.RoundTripper
	Tokens TokenSource
}

// NewBearerTransport wraps base (http.DefaultTransport when nil).
func NewBearerTransport(base http.RoundTripper, tokens TokenSource) *BearerTransport {
	return &BearerTransport{Base: base, Tokens: tokens}
}

// RoundTrip implements http.RoundTripper.
func (t *BearerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.Tokens == nil {
		closeBody(req)
		return nil, &AuthError{Err: errors.New("bearer transport has no token source")}
	}
	ctx := req.Context()

	token, err := t.Tokens.Token(ctx)
	if err != nil {
		closeBody(req)
		return nil, err
	}

	resp, err := t.base().RoundTrip(authorize(req, req.Body, token))
	if err != nil || resp.StatusCode != http.StatusUnauthorized {
		return resp, err
	}
	discard(resp)

	t.Tokens.InvalidateToken(ctx, token)
	token, err = t.Tokens.Token(ctx)
	if err != nil {
		closeBody(req)
		return nil, err
	}

	body, err := rewindBody(req)
	if err != nil {
		closeBody(req)
		return nil, &AuthError{Status: http.StatusUnauthorized, Err: err}
	}

	retry := authorize(req, body, token)
	resp, err = t.base().RoundTrip(retry)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusUnauthorized && retry.Header.Get(authorizationHeader) != "" {
		discard(resp)
		return nil, &AuthError{Status: http.StatusUnauthorized, Err: errors.New("refreshed token rejected")}
	}
	return resp, nil
}

func (t *BearerTransport) base() http.RoundTripper {
	if t.Base == nil {
		return http.DefaultTransport
	}
	return t.Base
}

func authorize(req *http.Request, body io.ReadCloser, token string) *http.Request {
	out := req.Clone(req.Context())
	out.Body = body
	out.Header.Set(authorizationHeader, "Bearer "+token)
	return out
}

func rewindBody(req *http.Request) (io.ReadCloser, error) {
	if req.Body == nil || req.Body == http.NoBody {
		return req.Body, nil
	}
	if req.GetBody == nil {
		return nil, errors.New("request body cannot be replayed")
	}
	return req.GetBody()
}

func closeBody(req *http.Request) {
	if req.Body != nil {
		_ = req.Body.Close()
	}
}

func discard(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
	_ = resp.Body.Close()
}
