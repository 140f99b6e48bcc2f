package api_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/tinylab/thumb16vm/api"
)

type versionBody struct {
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
}

func getVersion(t *testing.T, server *api.Server) (*httptest.ResponseRecorder, versionBody) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/version", nil)
	w := httptest.NewRecorder()
	server.Handler().ServeHTTP(w, req)

	var body versionBody
	if w.Code == http.StatusOK {
		if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
			t.Fatalf("decoding version response: %v", err)
		}
	}
	return w, body
}

func TestVersionEndpoint_ReportsBuildInfo(t *testing.T) {
	tests := []struct {
		name                  string
		version, commit, date string
	}{
		{"release build", "v1.0.0", "abc123def456", "2026-01-07 12:00:00 UTC"},
		{"development build", "dev", "unknown", "unknown"},
		{"git describe build", "v1.1.2-123-g1e713a3-dirty", "1e713a3006ca", "2026-01-07T09:34:45Z"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := api.NewServerWithVersion(8080, tt.version, tt.commit, tt.date)
			w, body := getVersion(t, server)

			if w.Code != http.StatusOK {
				t.Fatalf("status: got %d", w.Code)
			}
			if ct := w.Header().Get("Content-Type"); ct != "application/json" {
				t.Errorf("content type: got %s", ct)
			}
			if body.Version != tt.version || body.Commit != tt.commit || body.Date != tt.date {
				t.Errorf("version body: got %+v", body)
			}
		})
	}
}

func TestVersionEndpoint_GetOnly(t *testing.T) {
	server := api.NewServerWithVersion(8080, "v1.0.0", "abc123", "2026-01-07")

	for _, method := range []string{http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch} {
		t.Run(method, func(t *testing.T) {
			req := httptest.NewRequest(method, "/api/v1/version", nil)
			w := httptest.NewRecorder()
			server.Handler().ServeHTTP(w, req)
			if w.Code != http.StatusMethodNotAllowed {
				t.Errorf("%s: got %d, want 405", method, w.Code)
			}
		})
	}
}

func TestVersionEndpoint_NewServerDefaults(t *testing.T) {
	// NewServer without explicit build info reports the dev placeholders.
	server := api.NewServer(8080)
	w, body := getVersion(t, server)

	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d", w.Code)
	}
	if body.Version != "dev" || body.Commit != "unknown" || body.Date != "unknown" {
		t.Errorf("defaults: got %+v", body)
	}
}
