package geocode

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

	"github.com/petpalfinder/backend/internal/httpclient"
	"github.com/petpalfinder/backend/internal/logging"
)

// DefaultOpenCageURL is the production OpenCage API root.
const DefaultOpenCageURL = "https://api.opencagedata.com"

// OpenCageClient implements Geocoder against the OpenCage JSON API.
type OpenCageClient struct {
	baseURL string
	apiKey  string
	http    *http.Client
	logger  *slog.Logger
}

// NewOpenCageClient constructs a client. apiKey is required.
func NewOpenCageClient(baseURL, apiKey string, httpClient *http.Client, logger *slog.Logger) (*OpenCageClient, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("geocode: opencage api key required")
	}
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = DefaultOpenCageURL
	}
	if httpClient == nil {
		httpClient = httpclient.New(httpclient.DefaultTimeout, nil)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &OpenCageClient{baseURL: baseURL, apiKey: apiKey, http: httpClient, logger: logger}, nil
}

type openCageResponse struct {
	Results []struct {
		Formatted string `json:"formatted"`
		Geometry  struct {
			Lat float64 `json:"lat"`
			Lng float64 `json:"lng"`
		} `json:"geometry"`
	} `json:"results"`
}

// Forward geocodes an address.
func (c *OpenCageClient) Forward(ctx context.Context, query string) (Place, bool, error) {
	return c.lookup(ctx, "forward", query)
}

// Reverse geocodes a coordinate.
func (c *OpenCageClient) Reverse(ctx context.Context, lat, lng float64) (Place, bool, error) {
	q := strconv.FormatFloat(lat, 'f', -1, 64) + "," + strconv.FormatFloat(lng, 'f', -1, 64)
	return c.lookup(ctx, "reverse", q)
}

func (c *OpenCageClient) lookup(ctx context.Context, op, q string) (place Place, ok bool, err error) {
	ctx, span := logging.StartSpan(ctx, "geocode."+op)
	defer func() { span.EndWithError(err) }()

	params := url.Values{}
	params.Set("q", q)
	params.Set("key", c.apiKey)
	params.Set("limit", "1")
	params.Set("no_annotations", "1")
	endpoint := c.baseURL + "/geocode/v1/json?" + params.Encode()

	logger := logging.FromContext(ctx)
	logger.Debug("geocode request", "url", c.mask(endpoint))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Place{}, false, fmt.Errorf("geocode %s: new request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return Place{}, false, fmt.Errorf("geocode %s: %s", op, c.mask(err.Error()))
	}
	defer resp.Body.Close()

	raw, err := httpclient.ReadBody(resp.Body)
	if err != nil {
		return Place{}, false, fmt.Errorf("geocode %s: read body: %w", op, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Place{}, false, &StatusError{Status: resp.StatusCode, Body: strings.TrimSpace(string(raw))}
	}

	var payload openCageResponse
	if err := json.Unmarshal(raw, &payload); err != nil {
		return Place{}, false, fmt.Errorf("geocode %s: decode response: %w", op, err)
	}
	if len(payload.Results) == 0 {
		logger.Debug("geocode miss", "query", q)
		return Place{}, false, nil
	}

	first := payload.Results[0]
	place = Place{Formatted: first.Formatted}
	place.Lat = first.Geometry.Lat
	place.Lng = first.Geometry.Lng
	return place, true, nil
}

// mask hides the API key in anything that may reach a log line.
func (c *OpenCageClient) mask(s string) string {
	s = strings.ReplaceAll(s, url.QueryEscape(c.apiKey), "****")
	return strings.ReplaceAll(s, c.apiKey, "****")
}
