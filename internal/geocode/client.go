// Package geocode reverse geocodes coordinates with a Nominatim compatible service.
package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"piperoute/internal/geo"
)

// DefaultURL is the public Nominatim instance
const DefaultURL = "https://nominatim.openstreetmap.org"

// ErrLookup is returned when the geocoder could not be reached or answered with an error status.
// An address that simply does not exist is not an error.
var ErrLookup = errors.New("reverse geocode lookup failed")

// Address is the administrative part of a reverse geocode result
type Address struct {
	Road        string `json:"road"`
	City        string `json:"city"`
	Town        string `json:"town"`
	County      string `json:"county"`
	State       string `json:"state"`
	Postcode    string `json:"postcode"`
	Country     string `json:"country"`
	CountryCode string `json:"country_code"`
}

// reverseResponse is shaped for the jsonv2 reverse API response
type reverseResponse struct {
	PlaceID     int64    `json:"place_id"`
	Lat         string   `json:"lat"`
	Lon         string   `json:"lon"`
	DisplayName string   `json:"display_name"`
	Address     *Address `json:"address"`
	Error       string   `json:"error"`
}

// Client performs reverse lookups
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTimeout sets a per-request timeout; zero disables it
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// New creates a client for the geocoder at baseURL
func New(baseURL, userAgent string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultURL
	}
	if userAgent == "" {
		userAgent = "piperoute/1.0"
	}

	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		userAgent:  userAgent,
		httpClient: &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Reverse finds the address at coord. It returns a nil address and no error when
// the geocoder has nothing at that location, e.g. open ocean.
func (c *Client) Reverse(ctx context.Context, coord geo.Coordinate) (*Address, error) {
	params := url.Values{}
	params.Set("format", "jsonv2")
	params.Set("lat", strconv.FormatFloat(coord.Lat, 'f', -1, 64))
	params.Set("lon", strconv.FormatFloat(coord.Lon, 'f', -1, 64))
	params.Set("accept-language", "en")

	reqURL := fmt.Sprintf("%s/reverse?%s", c.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLookup, err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLookup, err)
	}
	defer resp.Body.Close()

	log.Debug().
		Str("coord", coord.String()).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("Reverse geocode")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: unexpected status: %s", ErrLookup, resp.Status)
	}

	var result reverseResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", ErrLookup, err)
	}

	// Nominatim reports "Unable to geocode" with a 200 and no address
	return result.Address, nil
}
