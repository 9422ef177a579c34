package docs

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/sanashii/Simple-CRUD-API/internal/openapi"
)

func setupRouter(t *testing.T) *chi.Mux {
	t.Helper()
	doc, err := openapi.Load(context.Background(), "")
	if err != nil {
		t.Fatalf("Load err: %v", err)
	}
	r := chi.NewRouter()
	New(doc).RegisterRoutes(r)
	return r
}

func TestServeJSON(t *testing.T) {
	r := setupRouter(t)

	for _, path := range []string{"/api-docs", "/api-docs/openapi.json"} {
		resp := httptest.NewRecorder()
		r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, path, nil))

		if resp.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", path, resp.Code)
		}
		var body map[string]any
		if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
			t.Fatalf("%s: decode err: %v", path, err)
		}
		if body["openapi"] != "3.0.3" {
			t.Fatalf("%s: unexpected openapi version %v", path, body["openapi"])
		}
	}
}

func TestServeYAML(t *testing.T) {
	r := setupRouter(t)

	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api-docs/openapi.yaml", nil))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), "title: Simple Task API") {
		t.Fatalf("unexpected yaml body: %s", resp.Body.String())
	}
}
