package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/geolocator/backend/internal/config"
	"github.com/geolocator/backend/internal/geocode"
)

type fakeGeocoder struct {
	configured bool
	body       []byte
	err        error
	calls      int
	lastText   string
}

func (f *fakeGeocoder) Configured() bool { return f.configured }

func (f *fakeGeocoder) Autocomplete(ctx context.Context, text string) ([]byte, error) {
	f.calls++
	f.lastText = text
	return f.body, f.err
}

func newTestRouter(h *Handler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/healthz", h.Healthz)
	r.GET("/api/geoapihide", h.GeoapiHide)
	r.GET("/api/map/config", h.MapConfig)
	return r
}

func newHandler(g Autocompleter) *Handler {
	return &Handler{Geocoder: g, Validator: NewValidator(), Logger: zerolog.Nop()}
}

func doGet(r *gin.Engine, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body geocode.ErrorBody
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode error body %q: %v", w.Body.String(), err)
	}
	return body.Error
}

func TestGeoapiHideMissingKey(t *testing.T) {
	g := &fakeGeocoder{configured: false}
	w := doGet(newTestRouter(newHandler(g)), "/api/geoapihide?query=london")

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
	if msg := decodeError(t, w); msg != "API key is missing." {
		t.Fatalf("unexpected error message: %q", msg)
	}
	if g.calls != 0 {
		t.Fatalf("expected no outbound call, got %d", g.calls)
	}
}

func TestGeoapiHideMissingKeyWithRealClient(t *testing.T) {
	hits := 0
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { hits++ }))
	defer upstream.Close()

	h := newHandler(&geocode.GeoapifyClient{BaseURL: upstream.URL})
	w := doGet(newTestRouter(h), "/api/geoapihide?query=london")

	if w.Code != http.StatusInternalServerError || decodeError(t, w) != "API key is missing." {
		t.Fatalf("unexpected response: %d %s", w.Code, w.Body.String())
	}
	if hits != 0 {
		t.Fatalf("expected provider to be untouched, got %d hits", hits)
	}
}

func TestGeoapiHideUpstreamFailure(t *testing.T) {
	g := &fakeGeocoder{configured: true, err: fmt.Errorf("%w: dial tcp: connection refused", geocode.ErrUpstream)}
	w := doGet(newTestRouter(newHandler(g)), "/api/geoapihide?query=london")

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
	if msg := decodeError(t, w); msg != "Failed to fetch suggestions. Please try again." {
		t.Fatalf("unexpected error message: %q", msg)
	}
	if strings.Contains(w.Body.String(), "connection refused") {
		t.Fatalf("response leaks upstream detail: %s", w.Body.String())
	}
}

func TestGeoapiHideUnexpectedErrorIsGeneric(t *testing.T) {
	g := &fakeGeocoder{configured: true, err: errors.New("boom")}
	w := doGet(newTestRouter(newHandler(g)), "/api/geoapihide?query=x")

	if w.Code != http.StatusInternalServerError || decodeError(t, w) != "Failed to fetch suggestions. Please try again." {
		t.Fatalf("unexpected response: %d %s", w.Code, w.Body.String())
	}
}

func TestGeoapiHideRelaysBodyVerbatim(t *testing.T) {
	raw := []byte(`{"type":"FeatureCollection","features":[{"properties":{"address_line1":"10 Main St","lat":51.5}}],"query":{"text":"main"}}`)
	g := &fakeGeocoder{configured: true, body: raw}
	w := doGet(newTestRouter(newHandler(g)), "/api/geoapihide?query=main")

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if w.Body.String() != string(raw) {
		t.Fatalf("body not relayed verbatim: %s", w.Body.String())
	}
	if g.lastText != "main" {
		t.Fatalf("unexpected forwarded text: %q", g.lastText)
	}
}

func TestGeoapiHideEndToEndWithProvider(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("apiKey") != "k" {
			t.Errorf("api key not forwarded")
		}
		_, _ = w.Write([]byte(`{"features":[]}`))
	}))
	defer upstream.Close()

	h := newHandler(&geocode.GeoapifyClient{BaseURL: upstream.URL, APIKey: "k"})
	w := doGet(newTestRouter(h), "/api/geoapihide?query=paris")
	if w.Code != http.StatusOK || w.Body.String() != `{"features":[]}` {
		t.Fatalf("unexpected response: %d %s", w.Code, w.Body.String())
	}
}

func TestGeoapiHideProviderStatusError(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"statusCode":401,"message":"Invalid apiKey"}`, http.StatusUnauthorized)
	}))
	defer upstream.Close()

	h := newHandler(&geocode.GeoapifyClient{BaseURL: upstream.URL, APIKey: "bad"})
	w := doGet(newTestRouter(h), "/api/geoapihide?query=paris")
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
	if strings.Contains(w.Body.String(), "Invalid apiKey") {
		t.Fatalf("provider detail leaked: %s", w.Body.String())
	}
}

func TestGeoapiHideRejectsLongQuery(t *testing.T) {
	g := &fakeGeocoder{configured: true}
	w := doGet(newTestRouter(newHandler(g)), "/api/geoapihide?query="+strings.Repeat("a", 513))

	if w.Code != http.StatusBadRequest || decodeError(t, w) != "Query is too long." {
		t.Fatalf("unexpected response: %d %s", w.Code, w.Body.String())
	}
	if g.calls != 0 {
		t.Fatalf("expected no outbound call")
	}
}

func TestGeoapiHideQueryLimitCountsBytes(t *testing.T) {
	cases := []struct {
		query string
		want  int
		calls int
	}{
		{strings.Repeat("a", 512), http.StatusOK, 1},
		{strings.Repeat("東", 170), http.StatusOK, 1},
		{strings.Repeat("東", 171), http.StatusBadRequest, 0},
		{strings.Repeat("東", 300), http.StatusBadRequest, 0},
	}
	for _, tc := range cases {
		g := &fakeGeocoder{configured: true, body: []byte(`{"features":[]}`)}
		w := doGet(newTestRouter(newHandler(g)), "/api/geoapihide?query="+url.QueryEscape(tc.query))
		if w.Code != tc.want {
			t.Fatalf("%d bytes: expected %d, got %d %s", len(tc.query), tc.want, w.Code, w.Body.String())
		}
		if g.calls != tc.calls {
			t.Fatalf("%d bytes: expected %d outbound calls, got %d", len(tc.query), tc.calls, g.calls)
		}
	}
}

func TestHealthz(t *testing.T) {
	w := doGet(newTestRouter(newHandler(&fakeGeocoder{})), "/healthz")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}

func TestMapConfig(t *testing.T) {
	h := newHandler(&fakeGeocoder{})
	h.Map = config.MapConfig{TileURL: "https://tiles/{z}/{x}/{y}.png", TileMaxZoom: 25, DefaultLat: 51.505, DefaultLon: -0.09, DefaultZoom: 15}

	w := doGet(newTestRouter(h), "/api/map/config")
	var got config.MapConfig
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got != h.Map {
		t.Fatalf("unexpected map config: %+v", got)
	}
}
