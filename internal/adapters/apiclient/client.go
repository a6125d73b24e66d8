package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/samirrijal/mapnav/internal/core/domain"
)

// Client talks to the mapnav HTTP API. It satisfies ports.LocationStore and
// ports.RouteCalculator so the navigator can run against a remote server.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a Client for the API rooted at baseURL (e.g. http://localhost:5000).
func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

type apiError struct {
	Message string `json:"message"`
}

type routeRequest struct {
	StartLat float64 `json:"startLat"`
	StartLng float64 `json:"startLng"`
	EndLat   float64 `json:"endLat"`
	EndLng   float64 `json:"endLng"`
}

type routeResponse struct {
	Distance string        `json:"distance"`
	Start    domain.LatLng `json:"start"`
	End      domain.LatLng `json:"end"`
}

// ListLocations fetches every saved location.
func (c *Client) ListLocations(ctx context.Context) ([]domain.Location, error) {
	var locs []domain.Location
	if err := c.do(ctx, "list", http.MethodGet, "/api/locations", nil, &locs); err != nil {
		return nil, err
	}
	if locs == nil {
		locs = []domain.Location{}
	}
	return locs, nil
}

// CreateLocation saves a location and returns it with the server-assigned id.
func (c *Client) CreateLocation(ctx context.Context, in domain.LocationInput) (*domain.Location, error) {
	var loc domain.Location
	if err := c.do(ctx, "create", http.MethodPost, "/api/locations", in, &loc); err != nil {
		return nil, err
	}
	return &loc, nil
}

// BuildRoute asks the server for the straight-line distance between start and end.
func (c *Client) BuildRoute(ctx context.Context, start, end domain.LatLng) (domain.RouteResult, error) {
	req := routeRequest{StartLat: start.Lat, StartLng: start.Lng, EndLat: end.Lat, EndLng: end.Lng}
	var resp routeResponse
	if err := c.do(ctx, "route", http.MethodPost, "/api/route", req, &resp); err != nil {
		return domain.RouteResult{}, err
	}

	km, err := strconv.ParseFloat(resp.Distance, 64)
	if err != nil {
		return domain.RouteResult{}, &domain.NetworkError{Op: "route", Err: fmt.Errorf("bad distance %q: %w", resp.Distance, err)}
	}
	return domain.RouteResult{DistanceKm: km, Start: resp.Start, End: resp.End}, nil
}

// do sends body as JSON and decodes a 2xx response into out.
// 400 maps to *domain.ValidationError, 5xx to *domain.StorageError and
// transport failures to *domain.NetworkError.
func (c *Client) do(ctx context.Context, op, method, path string, body, out any) error {
	var rdr io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s request: %w", op, err)
		}
		rdr = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rdr)
	if err != nil {
		return fmt.Errorf("build %s request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &domain.NetworkError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return statusError(op, resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &domain.NetworkError{Op: op, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

func statusError(op string, resp *http.Response) error {
	var apiErr apiError
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err := json.Unmarshal(data, &apiErr); err != nil || apiErr.Message == "" {
		apiErr.Message = resp.Status
	}

	switch {
	case resp.StatusCode == http.StatusBadRequest:
		return &domain.ValidationError{Reason: apiErr.Message}
	case resp.StatusCode >= 500:
		return &domain.StorageError{Op: op, Err: errors.New(apiErr.Message)}
	default:
		return &domain.NetworkError{Op: op, Err: fmt.Errorf("unexpected status %s: %s", resp.Status, apiErr.Message)}
	}
}
