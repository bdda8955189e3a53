package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"

	"tripdash/internal/adapter/storage"
	"tripdash/internal/config"
	"tripdash/internal/server/handlers"
	chartService "tripdash/internal/service/chart"
	"tripdash/internal/service/export"
	"tripdash/internal/service/render"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	store, err := storage.LoadTripStore("../adapter/storage/testdata/trips.csv", "")
	if err != nil {
		t.Fatalf("load dataset: %v", err)
	}

	s := NewServer(
		config.ServerConfig{Host: "127.0.0.1", Port: 0, CorsOrigins: []string{"*"}},
		handlers.DefaultWebSocketConfig(),
		chartService.NewService(store, chartService.DefaultConfig()),
		render.NewRenderer(chartService.BackgroundColor, chartService.FontColor),
		export.NewExporter(store, 0),
	)

	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)
	return srv
}

func TestRoutes(t *testing.T) {
	srv := newTestServer(t)

	cases := []struct {
		path   string
		status int
		ctype  string
	}{
		{"/", http.StatusOK, "text/html"},
		{"/api/health", http.StatusOK, "text/plain"},
		{"/api/v1/options", http.StatusOK, "application/json"},
		{"/api/v1/figures", http.StatusOK, "application/json"},
		{"/api/v1/figures/hours-histogram?weekday=Sunday", http.StatusOK, "application/json"},
		{"/api/v1/figures/unknown", http.StatusNotFound, "application/json"},
		{"/api/v1/figures?month=abc", http.StatusBadRequest, "application/json"},
		{"/api/v1/charts/rush-hour-line-chart.png", http.StatusOK, "image/png"},
		{"/api/v1/export/trips.xlsx?base=Hinter", http.StatusOK, "application/vnd.openxmlformats"},
		{"/api/v2/figures", http.StatusNotFound, ""},
	}

	for _, c := range cases {
		t.Run(c.path, func(t *testing.T) {
			resp, err := http.Get(srv.URL + c.path)
			if err != nil {
				t.Fatal(err)
			}
			defer resp.Body.Close()

			if resp.StatusCode != c.status {
				t.Fatalf("status %d want %d", resp.StatusCode, c.status)
			}
			if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, c.ctype) {
				t.Fatalf("content type %q want prefix %q", ct, c.ctype)
			}
		})
	}
}

func TestCompressedAPI(t *testing.T) {
	srv := newTestServer(t)

	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/api/v1/figures", nil)
	req.Header.Set("Accept-Encoding", "gzip")

	// A transport with compression disabled leaves the encoding visible
	client := &http.Client{Transport: &http.Transport{DisableCompression: true}}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if enc := resp.Header.Get("Content-Encoding"); enc != "gzip" {
		t.Fatalf("content encoding %q", enc)
	}
}

func TestCORS(t *testing.T) {
	srv := newTestServer(t)

	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/api/health", nil)
	req.Header.Set("Origin", "http://example.test")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("allow origin %q", got)
	}
}

func TestWebSocketRoute(t *testing.T) {
	srv := newTestServer(t)

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws", nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	var welcome struct {
		Type string `json:"type"`
	}
	if err := conn.ReadJSON(&welcome); err != nil {
		t.Fatal(err)
	}
	if welcome.Type != handlers.MessageWelcome {
		t.Fatalf("unexpected first message %q", welcome.Type)
	}
}
