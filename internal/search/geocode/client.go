// Package geocode is the HTTP client for the upstream Photon-compatible
// geocoding API. It is an opaque dependency: this package only shapes
// requests and decodes feature collections.
package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"localist_backend/internal/geo"
	"localist_backend/internal/osm"
	"localist_backend/platform/config"
	"localist_backend/platform/logger"

	"golang.org/x/sync/singleflight"
)

const userAgent = "Localist/1.0"

// Client queries the geocode API. Concurrent identical queries are collapsed
// into a single upstream request.
type Client struct {
	httpClient *http.Client
	baseURL    string
	reverseURL string
	lang       string
	limit      int
	log        *logger.Logger
	group      singleflight.Group
}

// NewClient builds a client from configuration.
func NewClient(cfg config.GeocodeConfig, log *logger.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 5 * time.Second},
		baseURL:    cfg.GetGeocodeBaseURL(),
		reverseURL: cfg.GetGeocodeReverseURL(),
		lang:       cfg.GetGeocodeLang(),
		limit:      cfg.GetGeocodeResultLimit(),
		log:        log,
	}
}

// Search geocodes the query. The optional bias coordinate (the current map
// viewport center) is forwarded as a ranking hint. On a non-success
// response the request is retried exactly once with the lang parameter
// stripped; a second failure is returned to the caller.
func (c *Client) Search(ctx context.Context, query string, bias *geo.Point) ([]osm.Place, error) {
	key := c.searchKey(query, bias)
	v, err, _ := c.group.Do(key, func() (interface{}, error) {
		return c.search(ctx, query, bias)
	})
	if err != nil {
		return nil, err
	}
	return v.([]osm.Place), nil
}

func (c *Client) search(ctx context.Context, query string, bias *geo.Point) ([]osm.Place, error) {
	fc, err := c.fetch(ctx, c.buildSearchURL(query, bias, true))
	if err == nil {
		return fc.Places(), nil
	}

	if c.lang == "" {
		return nil, err
	}

	// Single fallback without the locale hint; no further retries.
	c.log.GeocodeError(query, false, err)
	fc, fallbackErr := c.fetch(ctx, c.buildSearchURL(query, bias, false))
	if fallbackErr != nil {
		c.log.GeocodeError(query, true, fallbackErr)
		return nil, fallbackErr
	}
	return fc.Places(), nil
}

// Reverse converts coordinates to the nearest feature's properties. Returns
// nil without error when the upstream has nothing for the location; the
// address is optional everywhere it is used.
func (c *Client) Reverse(ctx context.Context, lat, lon float64) (*osm.FeatureProperties, error) {
	params := url.Values{}
	params.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	params.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))

	fc, err := c.fetch(ctx, c.reverseURL+"?"+params.Encode())
	if err != nil {
		return nil, err
	}
	if len(fc.Features) == 0 {
		return nil, nil
	}

	props := fc.Features[0].Properties
	return &props, nil
}

func (c *Client) buildSearchURL(query string, bias *geo.Point, withLang bool) string {
	params := url.Values{}
	params.Set("q", query)
	params.Set("limit", strconv.Itoa(c.limit))
	if withLang && c.lang != "" {
		params.Set("lang", c.lang)
	}
	if bias != nil {
		params.Set("lat", strconv.FormatFloat(bias.Lat, 'f', -1, 64))
		params.Set("lon", strconv.FormatFloat(bias.Lon, 'f', -1, 64))
	}
	return c.baseURL + "?" + params.Encode()
}

func (c *Client) searchKey(query string, bias *geo.Point) string {
	if bias == nil {
		return query
	}
	return fmt.Sprintf("%s|%.4f|%.4f", query, bias.Lat, bias.Lon)
}

func (c *Client) fetch(ctx context.Context, reqURL string) (*osm.FeatureCollection, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("upstream api error: %d", resp.StatusCode)
	}

	var fc osm.FeatureCollection
	if err := json.NewDecoder(resp.Body).Decode(&fc); err != nil {
		return nil, err
	}
	return &fc, nil
}
