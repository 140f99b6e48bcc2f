package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/tinylab/thumb16vm/api"
)

const benchProgram = ".org 0x8000\n    MOV R0, #42\n    MOV R1, #1\n    ADD R2, R0, R1\n    SWI #0\n"

func benchRequest(tb testing.TB, server *api.Server, method, path string, body []byte) *httptest.ResponseRecorder {
	tb.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	server.Handler().ServeHTTP(w, req)
	return w
}

func benchSession(tb testing.TB, server *api.Server) string {
	tb.Helper()
	w := benchRequest(tb, server, http.MethodPost, "/api/v1/session", []byte("{}"))
	if w.Code != http.StatusCreated {
		tb.Fatalf("session create: status %d", w.Code)
	}
	var resp struct {
		SessionID string `json:"sessionId"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		tb.Fatalf("decoding session: %v", err)
	}
	return resp.SessionID
}

func loadBench(tb testing.TB, server *api.Server, sessionID string) {
	tb.Helper()
	body := []byte(fmt.Sprintf(`{"source":%q}`, benchProgram))
	w := benchRequest(tb, server, http.MethodPost,
		fmt.Sprintf("/api/v1/session/%s/load", sessionID), body)
	if w.Code != http.StatusOK {
		tb.Fatalf("load: status %d: %s", w.Code, w.Body.String())
	}
}

func BenchmarkCreateSession(b *testing.B) {
	server := api.NewServer(8080)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if w := benchRequest(b, server, http.MethodPost, "/api/v1/session", []byte("{}")); w.Code != http.StatusCreated {
			b.Fatalf("status %d", w.Code)
		}
	}
}

func BenchmarkLoadProgram(b *testing.B) {
	server := api.NewServer(8080)
	sessionID := benchSession(b, server)
	body := []byte(fmt.Sprintf(`{"source":%q}`, benchProgram))
	path := fmt.Sprintf("/api/v1/session/%s/load", sessionID)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if w := benchRequest(b, server, http.MethodPost, path, body); w.Code != http.StatusOK {
			b.Fatalf("status %d: %s", w.Code, w.Body.String())
		}
	}
}

func BenchmarkStepExecution(b *testing.B) {
	server := api.NewServer(8080)
	sessionID := benchSession(b, server)
	loadBench(b, server, sessionID)

	resetPath := fmt.Sprintf("/api/v1/session/%s/reset", sessionID)
	stepPath := fmt.Sprintf("/api/v1/session/%s/step", sessionID)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if i%3 == 0 {
			benchRequest(b, server, http.MethodPost, resetPath, nil)
		}
		if w := benchRequest(b, server, http.MethodPost, stepPath, nil); w.Code != http.StatusOK {
			b.Fatalf("status %d", w.Code)
		}
	}
}

func BenchmarkGetRegisters(b *testing.B) {
	server := api.NewServer(8080)
	sessionID := benchSession(b, server)
	path := fmt.Sprintf("/api/v1/session/%s/registers", sessionID)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if w := benchRequest(b, server, http.MethodGet, path, nil); w.Code != http.StatusOK {
			b.Fatalf("status %d", w.Code)
		}
	}
}

func BenchmarkGetMemory(b *testing.B) {
	server := api.NewServer(8080)
	sessionID := benchSession(b, server)
	path := fmt.Sprintf("/api/v1/session/%s/memory?address=0x8000&length=64", sessionID)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if w := benchRequest(b, server, http.MethodGet, path, nil); w.Code != http.StatusOK {
			b.Fatalf("status %d", w.Code)
		}
	}
}

// TestConcurrentSessions drives separate sessions from parallel
// goroutines; the session manager must keep them isolated.
func TestConcurrentSessions(t *testing.T) {
	server := api.NewServer(8080)
	const workers = 8

	var wg sync.WaitGroup
	errs := make(chan error, workers)
	wg.Add(workers)

	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()

			w := benchRequest(t, server, http.MethodPost, "/api/v1/session", []byte("{}"))
			if w.Code != http.StatusCreated {
				errs <- fmt.Errorf("create: status %d", w.Code)
				return
			}
			var resp struct {
				SessionID string `json:"sessionId"`
			}
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				errs <- err
				return
			}

			body := []byte(fmt.Sprintf(`{"source":%q}`, benchProgram))
			w = benchRequest(t, server, http.MethodPost,
				fmt.Sprintf("/api/v1/session/%s/load", resp.SessionID), body)
			if w.Code != http.StatusOK {
				errs <- fmt.Errorf("load: status %d", w.Code)
				return
			}

			for s := 0; s < 4; s++ {
				w = benchRequest(t, server, http.MethodPost,
					fmt.Sprintf("/api/v1/session/%s/step", resp.SessionID), nil)
				if w.Code != http.StatusOK {
					errs <- fmt.Errorf("step: status %d", w.Code)
					return
				}
			}
		}()
	}

	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}
}

// TestMalformedRequests sends broken payloads and verifies the server
// rejects them rather than panicking or accepting garbage.
func TestMalformedRequests(t *testing.T) {
	server := api.NewServer(8080)
	sessionID := benchSession(t, server)

	tests := []struct {
		name string
		path string
		body string
	}{
		{"truncated JSON", "/api/v1/session/" + sessionID + "/load", `{"source": "MOV`},
		{"wrong field type", "/api/v1/session/" + sessionID + "/load", `{"source": 42}`},
		{"empty body", "/api/v1/session/" + sessionID + "/load", ``},
		{"bad breakpoint body", "/api/v1/session/" + sessionID + "/breakpoint", `not json`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := benchRequest(t, server, http.MethodPost, tt.path, []byte(tt.body))
			if w.Code == http.StatusOK {
				t.Errorf("malformed request accepted with 200: %s", w.Body.String())
			}
		})
	}
}
