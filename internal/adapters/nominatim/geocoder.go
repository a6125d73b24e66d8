package nominatim

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/samirrijal/mapnav/internal/core/domain"
)

// DefaultBaseURL is the public OpenStreetMap Nominatim instance.
const DefaultBaseURL = "https://nominatim.openstreetmap.org"

const resultLimit = 5

// searchResult is the subset of a Nominatim /search entry we use. lat and lon are strings.
type searchResult struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

// Geocoder resolves free text through a Nominatim /search endpoint.
type Geocoder struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
}

// New creates a Geocoder. Nominatim's usage policy requires an identifying User-Agent.
func New(baseURL, userAgent string, timeout time.Duration) *Geocoder {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Geocoder{
		baseURL:    strings.TrimRight(baseURL, "/"),
		userAgent:  userAgent,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Resolve returns candidates in provider order. No match yields an empty slice and no error.
func (g *Geocoder) Resolve(ctx context.Context, query string) ([]domain.Place, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("format", "json")
	params.Set("limit", strconv.Itoa(resultLimit))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"/search?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build geocode request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if g.userAgent != "" {
		req.Header.Set("User-Agent", g.userAgent)
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, &domain.NetworkError{Op: "geocode", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &domain.NetworkError{Op: "geocode", Err: fmt.Errorf("unexpected status %s", resp.Status)}
	}

	var results []searchResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return nil, &domain.NetworkError{Op: "geocode", Err: fmt.Errorf("decode response: %w", err)}
	}

	places := make([]domain.Place, 0, len(results))
	for _, r := range results {
		lat, err := strconv.ParseFloat(r.Lat, 64)
		if err != nil {
			continue
		}
		lon, err := strconv.ParseFloat(r.Lon, 64)
		if err != nil {
			continue
		}
		places = append(places, domain.Place{
			Position:    domain.LatLng{Lat: lat, Lng: lon},
			DisplayName: r.DisplayName,
		})
	}
	return places, nil
}
