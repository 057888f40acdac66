package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"media-gallery/internal/startup"
)

func TestHealthCheck(t *testing.T) {
	tests := []struct {
		name       string
		pingErr    error
		wantCode   int
		wantStatus string
	}{
		{"database reachable", nil, http.StatusOK, statusHealthy},
		{"database down", errors.New("unable to open database file"), http.StatusServiceUnavailable, statusDegraded},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := New(&mockGallery{}, mockPinger{err: tt.pingErr}, Config{})
			w := httptest.NewRecorder()
			h.HealthCheck(w, httptest.NewRequest(http.MethodGet, "/health", http.NoBody))

			if w.Code != tt.wantCode {
				t.Errorf("status = %d, want %d", w.Code, tt.wantCode)
			}
			var resp HealthResponse
			if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if resp.Status != tt.wantStatus || resp.Ready != (tt.pingErr == nil) {
				t.Errorf("response = %+v", resp)
			}
			if resp.Version != startup.Version || resp.GoVersion == "" || resp.NumCPU < 1 {
				t.Errorf("system fields = %+v", resp)
			}
		})
	}
}

func TestLivenessCheck(t *testing.T) {
	h := New(&mockGallery{}, mockPinger{err: errors.New("down")}, Config{})

	w := httptest.NewRecorder()
	h.LivenessCheck(w, httptest.NewRequest(http.MethodGet, "/livez", http.NoBody))
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "alive") {
		t.Errorf("GET /livez = %d %s", w.Code, w.Body.String())
	}

	w = httptest.NewRecorder()
	h.LivenessCheck(w, httptest.NewRequest(http.MethodHead, "/livez", http.NoBody))
	if w.Code != http.StatusOK || w.Body.Len() != 0 {
		t.Errorf("HEAD /livez = %d with %d body bytes", w.Code, w.Body.Len())
	}
}

func TestReadinessCheck(t *testing.T) {
	tests := []struct {
		pingErr  error
		wantCode int
		wantBody string
	}{
		{nil, http.StatusOK, "ready"},
		{errors.New("locked"), http.StatusServiceUnavailable, "not_ready"},
	}
	for _, tt := range tests {
		h := New(&mockGallery{}, mockPinger{err: tt.pingErr}, Config{})
		w := httptest.NewRecorder()
		h.ReadinessCheck(w, httptest.NewRequest(http.MethodGet, "/readyz", http.NoBody))

		var resp map[string]string
		if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
			t.Fatal(err)
		}
		if w.Code != tt.wantCode || resp["status"] != tt.wantBody {
			t.Errorf("readyz = %d %v, want %d %s", w.Code, resp, tt.wantCode, tt.wantBody)
		}
	}
}

func TestGetVersion(t *testing.T) {
	h := newTestHandlers(&mockGallery{})
	w := httptest.NewRecorder()
	h.GetVersion(w, httptest.NewRequest(http.MethodGet, "/version", http.NoBody))

	if w.Code != http.StatusOK {
		t.Errorf("status = %d", w.Code)
	}
	if w.Header().Get("Cache-Control") != "no-cache" {
		t.Errorf("Cache-Control = %q", w.Header().Get("Cache-Control"))
	}
	var info startup.BuildInfo
	if err := json.NewDecoder(w.Body).Decode(&info); err != nil {
		t.Fatal(err)
	}
	if info != startup.GetBuildInfo() {
		t.Errorf("build info = %+v", info)
	}
}

func TestMetricsHandler(t *testing.T) {
	h := newTestHandlers(&mockGallery{})
	w := httptest.NewRecorder()
	h.MetricsHandler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", http.NoBody))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "gallery_app_info") && !strings.Contains(w.Body.String(), "go_goroutines") {
		t.Error("expected Prometheus exposition output")
	}
}
