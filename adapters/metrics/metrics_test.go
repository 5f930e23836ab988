package metrics_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/artpar/docbase/adapters/metrics"
	"github.com/prometheus/client_golang/prometheus"
)

func TestNewWithRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewWithRegistry(reg)

	if m.RequestsTotal == nil {
		t.Error("RequestsTotal is nil")
	}
	if m.RequestDuration == nil {
		t.Error("RequestDuration is nil")
	}
	if m.RequestsInFlight == nil {
		t.Error("RequestsInFlight is nil")
	}
}

func TestObserve(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewWithRegistry(reg)

	m.Observe("GET", "/collections", 200, 10*time.Millisecond)
	m.Observe("GET", "/collections/{id}", 404, time.Millisecond)
	m.Observe("GET", "/collections/{id}", 404, time.Millisecond)

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather error: %v", err)
	}

	counts := make(map[string]int)
	for _, f := range families {
		counts[f.GetName()] = len(f.GetMetric())
	}
	if counts["docbase_requests_total"] != 2 {
		t.Errorf("docbase_requests_total series = %d, want 2", counts["docbase_requests_total"])
	}
	if counts["docbase_request_duration_seconds"] != 2 {
		t.Errorf("docbase_request_duration_seconds series = %d, want 2", counts["docbase_request_duration_seconds"])
	}
}

func TestStatusClass(t *testing.T) {
	tests := []struct {
		status int
		want   string
	}{
		{0, "2xx"},
		{200, "2xx"},
		{301, "3xx"},
		{404, "4xx"},
		{500, "5xx"},
	}

	for _, tt := range tests {
		if got := metrics.StatusClass(tt.status); got != tt.want {
			t.Errorf("StatusClass(%d) = %s, want %s", tt.status, got, tt.want)
		}
	}
}

func TestHandler(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewWithRegistry(reg)
	m.Observe("GET", "/permissions", 200, time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body, _ := io.ReadAll(rec.Body)
	want := `docbase_requests_total{method="GET",route="/permissions",status="2xx"} 1`
	if !strings.Contains(string(body), want) {
		t.Errorf("body missing %q:\n%s", want, body)
	}
}
