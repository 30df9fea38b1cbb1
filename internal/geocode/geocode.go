// Package geocode resolves free-form place names to coordinates using
// the OpenStreetMap Nominatim search API.
package geocode

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/Pegasus1106/Ecohealth/internal/httputil"
	"github.com/Pegasus1106/Ecohealth/internal/metrics"
)

const DefaultBaseURL = "https://nominatim.openstreetmap.org"

type Coordinates struct {
	Lat float64
	Lon float64
}

// Client looks up coordinates for "City, State, Country" queries.
// Results are cached for the life of the process since city coordinates
// do not change.
type Client struct {
	httpClient *http.Client
	baseURL    string

	mu    sync.RWMutex
	cache map[string]Coordinates
}

func NewClient() *Client {
	return &Client{
		httpClient: httputil.NewClient(),
		baseURL:    DefaultBaseURL,
		cache:      make(map[string]Coordinates),
	}
}

// NewClientWithBaseURL is used by tests to point at a stub server.
func NewClientWithBaseURL(baseURL string) *Client {
	c := NewClient()
	c.baseURL = baseURL
	return c
}

// Query joins the non-empty location parts with ", ".
func Query(city, state, country string) string {
	parts := make([]string, 0, 3)
	for _, p := range []string{city, state, country} {
		if strings.TrimSpace(p) != "" {
			parts = append(parts, strings.TrimSpace(p))
		}
	}
	return strings.Join(parts, ", ")
}

type searchResult struct {
	Lat string `json:"lat"`
	Lon string `json:"lon"`
}

// Lookup resolves a location to coordinates. A query that matches
// nothing returns (nil, nil).
func (c *Client) Lookup(ctx context.Context, city, state, country string) (*Coordinates, error) {
	q := Query(city, state, country)
	if q == "" {
		return nil, fmt.Errorf("empty location query")
	}

	c.mu.RLock()
	if coords, ok := c.cache[q]; ok {
		c.mu.RUnlock()
		metrics.GeocodeLookupsTotal.WithLabelValues("cached").Inc()
		return &coords, nil
	}
	c.mu.RUnlock()

	u := fmt.Sprintf("%s/search?q=%s&format=json&limit=1", c.baseURL, url.QueryEscape(q))

	var results []searchResult
	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, "GET", u, nil)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("create request: %w", err))
		}
		err = httputil.GetJSON(c.httpClient, req, &results)
		if err == nil {
			return nil
		}
		var se *httputil.StatusError
		if errors.As(err, &se) && (se.Code == http.StatusTooManyRequests || se.Code >= 500) {
			return err
		}
		return backoff.Permanent(fmt.Errorf("geocode %q: %w", q, err))
	}

	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = 30 * time.Second
	if err := backoff.Retry(operation, backoff.WithContext(bo, ctx)); err != nil {
		metrics.GeocodeLookupsTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	if len(results) == 0 {
		metrics.GeocodeLookupsTotal.WithLabelValues("miss").Inc()
		return nil, nil
	}

	lat, err := strconv.ParseFloat(results[0].Lat, 64)
	if err != nil {
		return nil, fmt.Errorf("parse lat %q: %w", results[0].Lat, err)
	}
	lon, err := strconv.ParseFloat(results[0].Lon, 64)
	if err != nil {
		return nil, fmt.Errorf("parse lon %q: %w", results[0].Lon, err)
	}

	coords := Coordinates{Lat: lat, Lon: lon}
	c.mu.Lock()
	c.cache[q] = coords
	c.mu.Unlock()

	metrics.GeocodeLookupsTotal.WithLabelValues("ok").Inc()
	return &coords, nil
}
