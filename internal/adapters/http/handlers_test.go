package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	handler "github.com/samirrijal/mapnav/internal/adapters/http"
	"github.com/samirrijal/mapnav/internal/core/domain"
	"github.com/samirrijal/mapnav/internal/core/usecases"
)

// ---- Mock repository ----

type mockLocationRepo struct {
	mu       sync.Mutex
	stored   []domain.Location
	insertFn func(ctx context.Context, l *domain.Location) error
	listFn   func(ctx context.Context) ([]domain.Location, error)
	pingFn   func(ctx context.Context) error
}

func (m *mockLocationRepo) Insert(ctx context.Context, l *domain.Location) error {
	if m.insertFn != nil {
		return m.insertFn(ctx, l)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	l.ID = fmt.Sprintf("loc-%d", len(m.stored)+1)
	l.CreatedAt = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	m.stored = append(m.stored, *l)
	return nil
}

func (m *mockLocationRepo) List(ctx context.Context) ([]domain.Location, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.Location(nil), m.stored...), nil
}

func (m *mockLocationRepo) Ping(ctx context.Context) error {
	if m.pingFn != nil {
		return m.pingFn(ctx)
	}
	return nil
}

// ---- Test helpers ----

func setupApp(deps *handler.Dependencies) *fiber.App {
	app := fiber.New(fiber.Config{DisableStartupMessage: true, ErrorHandler: handler.ErrorHandler})
	handler.SetupRoutes(app, deps)
	return app
}

func makeDeps(repo *mockLocationRepo) *handler.Dependencies {
	return &handler.Dependencies{
		Locations: usecases.NewLocationService(repo, nil, nil),
		Distance:  usecases.NewDistanceService(),
	}
}

func readBody(t *testing.T, body io.Reader) []byte {
	t.Helper()
	b, err := io.ReadAll(body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return b
}

func jsonRequest(method, path, body string) *http.Request {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func decodeError(t *testing.T, body io.Reader) handler.APIError {
	t.Helper()
	var apiErr handler.APIError
	if err := json.NewDecoder(body).Decode(&apiErr); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	return apiErr
}

// ---- Location handler tests ----

func TestListLocations_EmptyStore(t *testing.T) {
	app := setupApp(makeDeps(&mockLocationRepo{}))

	resp, err := app.Test(httptest.NewRequest("GET", "/api/locations", nil), -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if body := strings.TrimSpace(string(readBody(t, resp.Body))); body != "[]" {
		t.Errorf("expected empty array, got %s", body)
	}
}

func TestCreateThenList_RoundTrip(t *testing.T) {
	app := setupApp(makeDeps(&mockLocationRepo{}))

	body := `{"name":"Eiffel Tower","latitude":48.8584,"longitude":2.2945,"type":"landmark"}`
	resp, err := app.Test(jsonRequest("POST", "/api/locations", body), -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 201 {
		t.Fatalf("expected 201, got %d: %s", resp.StatusCode, readBody(t, resp.Body))
	}

	var created domain.Location
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		t.Fatal(err)
	}
	if created.ID == "" {
		t.Error("expected store-assigned id")
	}
	if created.Name != "Eiffel Tower" || created.Type != domain.TypeLandmark {
		t.Errorf("unexpected location %+v", created)
	}

	resp, _ = app.Test(httptest.NewRequest("GET", "/api/locations", nil), -1)
	var listed []domain.Location
	if err := json.NewDecoder(resp.Body).Decode(&listed); err != nil {
		t.Fatal(err)
	}
	if len(listed) != 1 || listed[0].ID != created.ID {
		t.Fatalf("expected created location in list, got %+v", listed)
	}
}

func TestCreateLocation_DefaultsTypeToOther(t *testing.T) {
	app := setupApp(makeDeps(&mockLocationRepo{}))

	resp, _ := app.Test(jsonRequest("POST", "/api/locations", `{"name":"Somewhere","latitude":0,"longitude":0}`), -1)
	if resp.StatusCode != 201 {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	var created domain.Location
	json.NewDecoder(resp.Body).Decode(&created)
	if created.Type != domain.TypeOther {
		t.Errorf("expected type other, got %q", created.Type)
	}
}

func TestCreateLocation_ValidationFailures(t *testing.T) {
	cases := []struct {
		name    string
		body    string
		message string
	}{
		{"latitude out of range", `{"name":"X","latitude":91,"longitude":0}`, "latitude"},
		{"longitude out of range", `{"name":"X","latitude":0,"longitude":-180.5}`, "longitude"},
		{"missing latitude", `{"name":"X","longitude":0}`, "latitude"},
		{"blank name", `{"name":"   ","latitude":1,"longitude":1}`, "name"},
		{"unknown type", `{"name":"X","latitude":1,"longitude":1,"type":"castle"}`, "type"},
		{"malformed json", `{"name":`, "invalid request body"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo := &mockLocationRepo{}
			app := setupApp(makeDeps(repo))

			resp, _ := app.Test(jsonRequest("POST", "/api/locations", tc.body), -1)
			if resp.StatusCode != 400 {
				t.Fatalf("expected 400, got %d", resp.StatusCode)
			}
			apiErr := decodeError(t, resp.Body)
			if !strings.Contains(apiErr.Message, tc.message) {
				t.Errorf("expected message mentioning %q, got %q", tc.message, apiErr.Message)
			}
			if len(repo.stored) != 0 {
				t.Errorf("expected no write, store has %d records", len(repo.stored))
			}
		})
	}
}

func TestCreateLocation_StorageError(t *testing.T) {
	repo := &mockLocationRepo{
		insertFn: func(ctx context.Context, l *domain.Location) error {
			return errors.New("connection refused")
		},
	}
	app := setupApp(makeDeps(repo))

	resp, _ := app.Test(jsonRequest("POST", "/api/locations", `{"name":"X","latitude":1,"longitude":1}`), -1)
	if resp.StatusCode != 500 {
		t.Fatalf("expected 500, got %d", resp.StatusCode)
	}
	if apiErr := decodeError(t, resp.Body); apiErr.Message == "" {
		t.Error("expected non-empty message")
	}
}

func TestListLocations_StorageError(t *testing.T) {
	repo := &mockLocationRepo{
		listFn: func(ctx context.Context) ([]domain.Location, error) {
			return nil, errors.New("db down")
		},
	}
	app := setupApp(makeDeps(repo))

	resp, _ := app.Test(httptest.NewRequest("GET", "/api/locations", nil), -1)
	if resp.StatusCode != 500 {
		t.Fatalf("expected 500, got %d", resp.StatusCode)
	}
	apiErr := decodeError(t, resp.Body)
	if apiErr.Code != "internal_error" || apiErr.Message == "" {
		t.Errorf("unexpected error body %+v", apiErr)
	}
}

func TestListLocations_Pagination(t *testing.T) {
	repo := &mockLocationRepo{}
	for i := 0; i < 5; i++ {
		repo.stored = append(repo.stored, domain.Location{ID: fmt.Sprintf("l%d", i), Name: fmt.Sprintf("Place %d", i)})
	}
	app := setupApp(makeDeps(repo))

	resp, _ := app.Test(httptest.NewRequest("GET", "/api/locations?offset=2&limit=2", nil), -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var page []domain.Location
	json.NewDecoder(resp.Body).Decode(&page)
	if len(page) != 2 || page[0].ID != "l2" {
		t.Errorf("expected l2,l3 page, got %+v", page)
	}
	if got := resp.Header.Get("X-Total-Count"); got != "5" {
		t.Errorf("expected X-Total-Count 5, got %q", got)
	}

	link := resp.Header.Get("Link")
	for _, rel := range []string{`rel="first"`, `rel="prev"`, `rel="next"`, `rel="last"`} {
		if !strings.Contains(link, rel) {
			t.Errorf("expected %s in Link header, got %s", rel, link)
		}
	}
}

func TestLocationsGeoJSON(t *testing.T) {
	repo := &mockLocationRepo{stored: []domain.Location{
		{ID: "a", Name: "Times Square", Latitude: 40.758, Longitude: -73.9855, Type: domain.TypeLandmark},
	}}
	app := setupApp(makeDeps(repo))

	resp, _ := app.Test(httptest.NewRequest("GET", "/api/locations/geojson", nil), -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/geo+json" {
		t.Errorf("expected geo+json content type, got %q", ct)
	}

	var fc struct {
		Type     string `json:"type"`
		Features []struct {
			Geometry struct {
				Coordinates []float64 `json:"coordinates"`
			} `json:"geometry"`
		} `json:"features"`
	}
	json.NewDecoder(resp.Body).Decode(&fc)
	if fc.Type != "FeatureCollection" || len(fc.Features) != 1 {
		t.Fatalf("unexpected collection %+v", fc)
	}
	if c := fc.Features[0].Geometry.Coordinates; len(c) != 2 || c[0] != -73.9855 {
		t.Errorf("expected lng,lat coordinates, got %v", c)
	}
}

func TestLocations_CacheControlHeader(t *testing.T) {
	app := setupApp(makeDeps(&mockLocationRepo{}))

	resp, _ := app.Test(httptest.NewRequest("GET", "/api/locations", nil), -1)
	if cc := resp.Header.Get("Cache-Control"); cc != "no-cache" {
		t.Errorf("expected Cache-Control no-cache, got %q", cc)
	}
}

func TestLocations_ETagNotModified(t *testing.T) {
	app := setupApp(makeDeps(&mockLocationRepo{}))

	resp, _ := app.Test(httptest.NewRequest("GET", "/api/locations", nil), -1)
	etag := resp.Header.Get("ETag")
	if etag == "" {
		t.Fatal("expected ETag header")
	}

	req := httptest.NewRequest("GET", "/api/locations", nil)
	req.Header.Set("If-None-Match", etag)
	resp, _ = app.Test(req, -1)
	if resp.StatusCode != 304 {
		t.Errorf("expected 304, got %d", resp.StatusCode)
	}
}

// ---- Route handler tests ----

func TestRoute_NewYorkToLosAngeles(t *testing.T) {
	app := setupApp(makeDeps(&mockLocationRepo{}))

	body := `{"startLat":40.7128,"startLng":-74.0060,"endLat":34.0522,"endLng":-118.2437}`
	resp, _ := app.Test(jsonRequest("POST", "/api/route", body), -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var result struct {
		Distance string        `json:"distance"`
		Start    domain.LatLng `json:"start"`
		End      domain.LatLng `json:"end"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(result.Distance, "393") || !strings.Contains(result.Distance, ".") {
		t.Errorf("expected ~3935 km with two decimals, got %q", result.Distance)
	}
	if parts := strings.SplitN(result.Distance, ".", 2); len(parts[1]) != 2 {
		t.Errorf("expected two decimals, got %q", result.Distance)
	}
	if result.Start.Lat != 40.7128 || result.End.Lng != -118.2437 {
		t.Errorf("expected endpoints echoed, got %+v %+v", result.Start, result.End)
	}
}

func TestRoute_SamePoint(t *testing.T) {
	app := setupApp(makeDeps(&mockLocationRepo{}))

	body := `{"startLat":10,"startLng":10,"endLat":10,"endLng":10}`
	resp, _ := app.Test(jsonRequest("POST", "/api/route", body), -1)
	var result map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&result)
	if result["distance"] != "0.00" {
		t.Errorf("expected 0.00, got %v", result["distance"])
	}
}

func TestRoute_InvalidRequests(t *testing.T) {
	cases := map[string]string{
		"missing endLng":     `{"startLat":1,"startLng":1,"endLat":1}`,
		"startLat too large": `{"startLat":95,"startLng":1,"endLat":1,"endLng":1}`,
		"endLng too small":   `{"startLat":1,"startLng":1,"endLat":1,"endLng":-181}`,
		"malformed":          `not json`,
	}
	app := setupApp(makeDeps(&mockLocationRepo{}))

	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			resp, _ := app.Test(jsonRequest("POST", "/api/route", body), -1)
			if resp.StatusCode != 400 {
				t.Fatalf("expected 400, got %d", resp.StatusCode)
			}
			if apiErr := decodeError(t, resp.Body); apiErr.Message == "" {
				t.Error("expected message")
			}
		})
	}
}

// ---- GraphQL ----

func TestGraphQL_DistanceQuery(t *testing.T) {
	app := setupApp(makeDeps(&mockLocationRepo{}))

	body := `{"query":"{ distance(startLat: 0, startLng: 0, endLat: 0, endLng: 1) { distance geojson } }"}`
	resp, _ := app.Test(jsonRequest("POST", "/graphql", body), -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var result struct {
		Data struct {
			Distance struct {
				Distance string `json:"distance"`
				GeoJSON  string `json:"geojson"`
			} `json:"distance"`
		} `json:"data"`
	}
	json.NewDecoder(resp.Body).Decode(&result)
	if result.Data.Distance.Distance != "111.19" {
		t.Errorf("expected 111.19, got %q", result.Data.Distance.Distance)
	}
	if !strings.Contains(result.Data.Distance.GeoJSON, `"LineString"`) {
		t.Errorf("expected LineString feature, got %s", result.Data.Distance.GeoJSON)
	}
}

func TestGraphQL_CreateLocationMutation(t *testing.T) {
	repo := &mockLocationRepo{}
	app := setupApp(makeDeps(repo))

	body := `{"query":"mutation { createLocation(name: \"Cafe\", latitude: 1.5, longitude: 2.5, type: restaurant) { id name type } }"}`
	resp, _ := app.Test(jsonRequest("POST", "/graphql", body), -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if len(repo.stored) != 1 || repo.stored[0].Type != domain.TypeRestaurant {
		t.Fatalf("expected one restaurant stored, got %+v", repo.stored)
	}
}

// ---- Health handler tests ----

func TestHealth_Connected(t *testing.T) {
	app := setupApp(makeDeps(&mockLocationRepo{}))

	resp, _ := app.Test(httptest.NewRequest("GET", "/health", nil), -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var result map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&result)
	if result["status"] != "OK" {
		t.Errorf("expected OK status, got %v", result["status"])
	}
	if result["database"] != "Connected" {
		t.Errorf("expected Connected, got %v", result["database"])
	}
	if _, ok := result["timestamp"].(string); !ok {
		t.Error("expected timestamp")
	}
}

func TestHealth_DatabaseDown(t *testing.T) {
	repo := &mockLocationRepo{pingFn: func(ctx context.Context) error { return errors.New("down") }}
	app := setupApp(makeDeps(repo))

	resp, _ := app.Test(httptest.NewRequest("GET", "/health", nil), -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var result map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&result)
	if result["database"] != "Disconnected" {
		t.Errorf("expected Disconnected, got %v", result["database"])
	}
}

func TestReady_DatabaseDown(t *testing.T) {
	repo := &mockLocationRepo{pingFn: func(ctx context.Context) error { return errors.New("down") }}
	app := setupApp(makeDeps(repo))

	resp, _ := app.Test(httptest.NewRequest("GET", "/ready", nil), -1)
	if resp.StatusCode != 503 {
		t.Fatalf("expected 503, got %d", resp.StatusCode)
	}
}

func TestReady_OptionalDepsMissing(t *testing.T) {
	app := setupApp(makeDeps(&mockLocationRepo{}))

	resp, _ := app.Test(httptest.NewRequest("GET", "/ready", nil), -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
}

func TestAPIVersionHeader(t *testing.T) {
	app := setupApp(makeDeps(&mockLocationRepo{}))

	resp, _ := app.Test(httptest.NewRequest("GET", "/health", nil), -1)
	if v := resp.Header.Get("X-API-Version"); v != "1.0.0" {
		t.Errorf("expected X-API-Version 1.0.0, got %q", v)
	}
}

func TestUnknownRoute_JSONError(t *testing.T) {
	app := setupApp(makeDeps(&mockLocationRepo{}))

	resp, _ := app.Test(httptest.NewRequest("GET", "/api/nope", nil), -1)
	if resp.StatusCode != 404 {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
	if apiErr := decodeError(t, resp.Body); apiErr.Code != "not_found" {
		t.Errorf("expected not_found code, got %q", apiErr.Code)
	}
}

// ---- CORS ----

func TestCORS_AllowList(t *testing.T) {
	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	app.Use(handler.CORSMiddleware([]string{"http://localhost:3000", "http://127.0.0.1:3000"}, 600))
	handler.SetupRoutes(app, makeDeps(&mockLocationRepo{}))

	cases := []struct {
		origin  string
		allowed bool
	}{
		{"http://localhost:3000", true},
		{"http://127.0.0.1:3000", true},
		{"http://evil.example", false},
	}

	for _, tc := range cases {
		t.Run(tc.origin, func(t *testing.T) {
			req := httptest.NewRequest("OPTIONS", "/api/locations", nil)
			req.Header.Set("Origin", tc.origin)
			req.Header.Set("Access-Control-Request-Method", "POST")
			resp, err := app.Test(req, -1)
			if err != nil {
				t.Fatal(err)
			}

			got := resp.Header.Get("Access-Control-Allow-Origin")
			if tc.allowed && got != tc.origin {
				t.Errorf("expected origin %s echoed, got %q", tc.origin, got)
			}
			if !tc.allowed && got != "" {
				t.Errorf("expected no allow-origin header, got %q", got)
			}
			if resp.Header.Get("Access-Control-Allow-Credentials") == "true" {
				t.Error("credentials must not be allowed")
			}
		})
	}
}

// TestAccessLogMiddleware verifies handler errors are rendered before logging.
func TestAccessLogMiddleware(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: handler.ErrorHandler})
	app.Use(handler.AccessLogMiddleware())

	app.Get("/ok", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"ok": true})
	})
	app.Get("/fail", func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusRequestTimeout, "took too long")
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/ok", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}
	if body := readBody(t, resp.Body); !strings.Contains(string(body), "ok") {
		t.Errorf("expected response body to contain 'ok', got %s", body)
	}

	resp, _ = app.Test(httptest.NewRequest("GET", "/fail", nil))
	if resp.StatusCode != fiber.StatusRequestTimeout {
		t.Fatalf("expected 408, got %d", resp.StatusCode)
	}
	if apiErr := decodeError(t, resp.Body); apiErr.Code != "timeout" {
		t.Errorf("expected timeout code, got %q", apiErr.Code)
	}
}
