package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/petpalfinder/backend/internal/logging"
)

// SkewWindow is subtracted from every token lifetime so a token is never
// handed out when it could expire mid-request.
const SkewWindow = 60 * time.Second

// AccessToken is a bearer token and the instant it stops being usable.
type AccessToken struct {
	Value     string
	ExpiresAt time.Time
}

// Valid reports whether the token can be used at now.
func (t AccessToken) Valid(now time.Time) bool {
	return t.Value != "" && now.Before(t.ExpiresAt)
}

// TokenStore persists the issued token so it can survive process restarts.
type TokenStore interface {
	Load(ctx context.Context) (AccessToken, error)
	Save(ctx context.Context, token AccessToken) error
	Clear(ctx context.Context) error
}

// Credentials identify this application to the token endpoint.
type Credentials struct {
	ClientID     string
	ClientSecret string
	TokenURL     string
}

// TokenProvider hands out client-credentials bearer tokens. Check-and-fetch
// runs under one mutex, so concurrent callers during a refresh wait for it and
// reuse its token instead of issuing parallel grants.
type TokenProvider struct {
	config     clientcredentials.Config
	httpClient *http.Client
	store      TokenStore
	logger     *slog.Logger
	now        func() time.Time

	mu     sync.Mutex
	cached *AccessToken
}

// NewTokenProvider constructs a provider for the given credentials. A nil store
// keeps the token in memory only.
func NewTokenProvider(creds Credentials, httpClient *http.Client, store TokenStore, logger *slog.Logger) *TokenProvider {
	if store == nil {
		store = NewInMemoryTokenStore()
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &TokenProvider{
		config: clientcredentials.Config{
			ClientID:     strings.TrimSpace(creds.ClientID),
			ClientSecret: strings.TrimSpace(creds.ClientSecret),
			TokenURL:     creds.TokenURL,
			AuthStyle:    oauth2.AuthStyleInParams,
		},
		httpClient: httpClient,
		store:      store,
		logger:     logger,
		now:        time.Now,
	}
}

// WithClock overrides the time source. Intended for tests.
func (p *TokenProvider) WithClock(now func() time.Time) *TokenProvider {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.now = now
	return p
}

// Token returns a token valid for at least SkewWindow, fetching a new one when
// none is cached or the cached one has expired.
func (p *TokenProvider) Token(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := p.now()
	if p.cached != nil && p.cached.Valid(now) {
		return p.cached.Value, nil
	}

	if p.cached == nil {
		stored, err := p.store.Load(ctx)
		switch {
		case err == nil && stored.Valid(now):
			p.cached = &stored
			return stored.Value, nil
		case err != nil && !errors.Is(err, ErrTokenNotFound):
			p.logger.Warn("load persisted token", "error", err)
		}
	}

	token, err := p.fetch(ctx, now)
	if err != nil {
		return "", err
	}

	p.cached = &token
	if err := p.store.Save(ctx, token); err != nil {
		p.logger.Warn("persist token", "error", err)
	}
	return token.Value, nil
}

// Invalidate drops the cached token so the next Token call fetches a new one.
func (p *TokenProvider) Invalidate(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.cached = nil
	if err := p.store.Clear(ctx); err != nil {
		p.logger.Warn("clear persisted token", "error", err)
	}
}

// InvalidateToken drops the cached token only while it is still the rejected
// one. Callers that saw a 401 after another caller already refreshed keep the
// fresh token instead of forcing another grant.
func (p *TokenProvider) InvalidateToken(ctx context.Context, rejected string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cached != nil && p.cached.Value != rejected {
		return
	}
	p.cached = nil
	if err := p.store.Clear(ctx); err != nil {
		p.logger.Warn("clear persisted token", "error", err)
	}
}

func (p *TokenProvider) fetch(ctx context.Context, now time.Time) (AccessToken, error) {
	if p.config.ClientID == "" || p.config.ClientSecret == "" {
		return AccessToken{}, &AuthError{Err: ErrMissingCredentials}
	}

	ctx, span := logging.StartSpan(ctx, "auth.fetch_token")
	defer span.End()

	ctx = context.WithValue(ctx, oauth2.HTTPClient, p.httpClient)
	tok, err := p.config.Token(ctx)
	if err != nil {
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) && retrieveErr.Response != nil {
			return AccessToken{}, &AuthError{Status: retrieveErr.Response.StatusCode, Err: err}
		}
		return AccessToken{}, &AuthError{Err: err}
	}

	// Expiry is computed by oauth2 against the wall clock; only the lifetime
	// is carried over to this provider's clock.
	var lifetime time.Duration
	if !tok.Expiry.IsZero() {
		lifetime = time.Until(tok.Expiry)
	}
	expiresAt := now.Add(lifetime - SkewWindow)
	if expiresAt.Before(now) {
		expiresAt = now
	}

	logging.FromContext(ctx).Info("access token issued", "expires_at", expiresAt)
	return AccessToken{Value: tok.AccessToken, ExpiresAt: expiresAt}, nil
}
