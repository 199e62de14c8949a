// Package petfinder is a client for the animal search API.
package petfinder

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"golang.org/x/time/rate"

	"github.com/petpalfinder/backend/internal/auth"
	"github.com/petpalfinder/backend/internal/httpclient"
	"github.com/petpalfinder/backend/internal/logging"
	"github.com/petpalfinder/backend/internal/models"
)

// DefaultBaseURL is the production API root.
const DefaultBaseURL = "https://api.petfinder.com/v2"

// Client issues authenticated requests against the API. Authentication is the
// job of the http.Client's transport (see auth.BearerTransport).
type Client struct {
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
	logger  *slog.Logger
}

// Options configures a Client. A zero RatePerSecond disables pacing.
type Options struct {
	BaseURL       string
	HTTPClient    *http.Client
	RatePerSecond float64
	Burst         int
	Logger        *slog.Logger
}

// NewClient constructs a Client.
func NewClient(opts Options) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if base == "" {
		base = DefaultBaseURL
	}
	if _, err := url.ParseRequestURI(base); err != nil {
		return nil, fmt.Errorf("petfinder: invalid base url: %w", err)
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = httpclient.New(httpclient.DefaultTimeout, nil)
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	var limiter *rate.Limiter
	if opts.RatePerSecond > 0 {
		burst := opts.Burst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(opts.RatePerSecond), burst)
	}

	return &Client{
		baseURL: base,
		http:    opts.HTTPClient,
		limiter: limiter,
		logger:  opts.Logger,
	}, nil
}

// SearchAnimals runs GET /animals with the given query.
func (c *Client) SearchAnimals(ctx context.Context, query url.Values) (models.AnimalPage, error) {
	var page models.AnimalPage
	if err := c.getJSON(ctx, "search animals", "/animals", query, &page); err != nil {
		return models.AnimalPage{}, err
	}
	return page, nil
}

// GetAnimal fetches a single animal by id.
func (c *Client) GetAnimal(ctx context.Context, id int64) (models.Animal, error) {
	var payload struct {
		Animal *models.Animal `json:"animal"`
	}
	if err := c.getJSON(ctx, "get animal", "/animals/"+strconv.FormatInt(id, 10), nil, &payload); err != nil {
		return models.Animal{}, err
	}
	if payload.Animal == nil {
		return models.Animal{}, &APIError{Status: http.StatusNotFound, Body: "animal missing from response"}
	}
	return *payload.Animal, nil
}

// GetOrganization fetches a single organization by id.
func (c *Client) GetOrganization(ctx context.Context, id string) (models.Organization, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return models.Organization{}, errors.New("petfinder: organization id required")
	}
	var payload struct {
		Organization *models.Organization `json:"organization"`
	}
	if err := c.getJSON(ctx, "get organization", "/organizations/"+url.PathEscape(id), nil, &payload); err != nil {
		return models.Organization{}, err
	}
	if payload.Organization == nil {
		return models.Organization{}, &APIError{Status: http.StatusNotFound, Body: "organization missing from response"}
	}
	return *payload.Organization, nil
}

func (c *Client) getJSON(ctx context.Context, op, path string, query url.Values, out any) (err error) {
	if c == nil || c.http == nil {
		return ErrClientUnavailable
	}

	ctx, span := logging.StartSpan(ctx, "petfinder."+strings.ReplaceAll(op, " ", "_"), "path", path)
	defer func() { span.EndWithError(err) }()

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return &NetworkError{Op: op, Err: err}
		}
	}

	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("petfinder %s: new request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		var authErr *auth.AuthError
		if errors.As(err, &authErr) {
			return authErr
		}
		return &NetworkError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	raw, err := httpclient.ReadBody(resp.Body)
	if err != nil {
		return &NetworkError{Op: op, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{Status: resp.StatusCode, Body: strings.TrimSpace(string(raw))}
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("petfinder %s: decode response: %w", op, err)
	}
	span.Annotate("status", resp.StatusCode)
	return nil
}
