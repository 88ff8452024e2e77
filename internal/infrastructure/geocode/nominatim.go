// Package geocode resolves coordinates to street addresses through a
// Nominatim compatible reverse endpoint.
package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/laporpak/report-service/internal/core/domain"
)

const (
	DefaultURL     = "https://nominatim.openstreetmap.org/reverse"
	defaultTimeout = 5 * time.Second
)

// Client calls GET <url>?format=json&lat=..&lon=.. and returns display_name.
type Client struct {
	baseURL   string
	userAgent string
	language  string
	http      *http.Client
}

func NewClient(baseURL, userAgent string) *Client {
	if baseURL == "" {
		baseURL = DefaultURL
	}
	return &Client{
		baseURL:   baseURL,
		userAgent: userAgent,
		language:  "id",
		http:      &http.Client{Timeout: defaultTimeout},
	}
}

func (c *Client) Reverse(ctx context.Context, coords domain.Coordinates) (string, error) {
	q := url.Values{}
	q.Set("format", "json")
	q.Set("lat", strconv.FormatFloat(coords.Lat, 'f', 7, 64))
	q.Set("lon", strconv.FormatFloat(coords.Lng, 'f', 7, 64))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrGeocodingFailure, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Accept-Language", c.language)
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrGeocodingFailure, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: status %s", domain.ErrGeocodingFailure, resp.Status)
	}

	var result struct {
		DisplayName string `json:"display_name"`
		Error       string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("%w: decode: %v", domain.ErrGeocodingFailure, err)
	}
	if result.Error != "" {
		return "", fmt.Errorf("%w: %s", domain.ErrGeocodingFailure, result.Error)
	}
	address := strings.TrimSpace(result.DisplayName)
	if address == "" {
		return "", fmt.Errorf("%w: no address for %s", domain.ErrGeocodingFailure, coords)
	}
	return address, nil
}
