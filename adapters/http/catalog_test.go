package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/artpar/docbase/adapters/metrics"
	"github.com/artpar/docbase/core/catalog"
	"github.com/artpar/docbase/core/registry"
	"github.com/google/go-cmp/cmp"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

func newHandler(t *testing.T, opts ...HandlerOption) http.Handler {
	t.Helper()
	r := registry.New()
	r.MustRegister(catalog.CoreModule())
	cat, err := catalog.Build(context.Background(), r, nil)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	return NewCatalogHandler(cat, r.Permissions(), zerolog.Nop(), opts...).Routes()
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestCatalogHandler_ListCollections(t *testing.T) {
	rec := get(t, newHandler(t), "/collections")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %s", ct)
	}

	var got []CollectionSummary
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := []CollectionSummary{
		{ID: "settings", Storage: catalog.StorageFile},
		{ID: "users", Storage: catalog.StorageFile, DocumentsHaveOwners: true},
		{ID: "collection", Storage: catalog.StorageFile},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("collections mismatch (-want +got):\n%s", diff)
	}
}

func TestCatalogHandler_GetCollection(t *testing.T) {
	rec := get(t, newHandler(t), "/collections/users")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var got map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got["_id"] != "users" {
		t.Errorf("_id = %v", got["_id"])
	}
	schemaObj := got["schema"].(map[string]any)
	if schemaObj["additionalProperties"] != false {
		t.Errorf("users schema should be closed, got %v", schemaObj["additionalProperties"])
	}
	admin := got["admin"].(map[string]any)
	if diff := cmp.Diff([]any{"email", "roles"}, admin["columns"]); diff != "" {
		t.Errorf("admin columns mismatch (-want +got):\n%s", diff)
	}
}

func TestCatalogHandler_GetCollection_NotFound(t *testing.T) {
	rec := get(t, newHandler(t), "/collections/orders")

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	var body ErrorBody
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Error == "" {
		t.Error("error body is empty")
	}
}

func TestCatalogHandler_Permissions(t *testing.T) {
	rec := get(t, newHandler(t), "/permissions")

	var got []string
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if diff := cmp.Diff(catalog.RequiredPermissions(), got); diff != "" {
		t.Errorf("permissions mismatch (-want +got):\n%s", diff)
	}
}

func TestCatalogHandler_EmptyPermissions(t *testing.T) {
	h := NewCatalogHandler(catalog.Catalog{}, nil, zerolog.Nop()).Routes()
	rec := get(t, h, "/permissions")
	if body := rec.Body.String(); body != "[]\n" {
		t.Errorf("body = %q, want []", body)
	}
}

func TestCatalogHandler_MethodNotAllowed(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/collections", nil)
	rec := httptest.NewRecorder()
	newHandler(t).ServeHTTP(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", rec.Code)
	}
}

func TestCatalogHandler_Metrics(t *testing.T) {
	m := metrics.NewWithRegistry(prometheus.NewRegistry())
	h := newHandler(t, WithMetrics(m))

	get(t, h, "/collections/users")
	get(t, h, "/collections/users")
	get(t, h, "/collections/nope")
	get(t, h, "/no-such-route")

	rec := get(t, h, "/metrics")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	body := rec.Body.String()
	for _, want := range []string{
		`docbase_requests_total{method="GET",route="/collections/{id}",status="2xx"} 2`,
		`docbase_requests_total{method="GET",route="/collections/{id}",status="4xx"} 1`,
		`docbase_requests_total{method="GET",route="unmatched",status="4xx"} 1`,
		`docbase_request_duration_seconds_count{method="GET",route="/collections/{id}"} 3`,
		`docbase_requests_in_flight 1`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics missing %q", want)
		}
	}
}

func TestCatalogHandler_NoMetricsRoute(t *testing.T) {
	rec := get(t, newHandler(t), "/metrics")
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}
