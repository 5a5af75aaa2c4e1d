// Package geocode resolves free-text addresses to coordinates through a
// Nominatim-style HTTP API.
package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const (
	defaultBaseURL   = "https://nominatim.openstreetmap.org/search"
	defaultUserAgent = "WanderlustApp/1.0"
	defaultTimeout   = 10 * time.Second
)

// Point is a resolved coordinate pair.
type Point struct {
	Lat float64
	Lon float64
}

// Client calls the geocoding service. The zero value is not usable; use New.
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the geocoding endpoint (used by tests and
// self-hosted Nominatim instances).
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func New(opts ...Option) *Client {
	c := &Client{
		baseURL:    defaultBaseURL,
		userAgent:  defaultUserAgent,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// candidate mirrors the service's JSON; lat/lon arrive as strings.
type candidate struct {
	Lat string `json:"lat"`
	Lon string `json:"lon"`
}

// Forward resolves an address to a point. Returns (nil, nil) when the
// service has no candidates; the caller decides how to degrade.
func (c *Client) Forward(ctx context.Context, address string) (*Point, error) {
	q := url.Values{}
	q.Set("format", "json")
	q.Set("q", address)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build geocode request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("geocode %q: %w", address, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("geocode %q: unexpected status %d", address, resp.StatusCode)
	}

	var candidates []candidate
	if err := json.NewDecoder(resp.Body).Decode(&candidates); err != nil {
		return nil, fmt.Errorf("decode geocode response for %q: %w", address, err)
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	lat, err := strconv.ParseFloat(candidates[0].Lat, 64)
	if err != nil {
		return nil, fmt.Errorf("parse geocode lat %q: %w", candidates[0].Lat, err)
	}
	lon, err := strconv.ParseFloat(candidates[0].Lon, 64)
	if err != nil {
		return nil, fmt.Errorf("parse geocode lon %q: %w", candidates[0].Lon, err)
	}
	return &Point{Lat: lat, Lon: lon}, nil
}
