package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHTTPMiddleware_LabelsByRoutePattern(t *testing.T) {
	reg := NewRegistry()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/sessions/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	wrapped := HTTPMiddleware(reg)(mux)

	for _, id := range []string{"a1", "b2", "c3"} {
		w := httptest.NewRecorder()
		wrapped.ServeHTTP(w, httptest.NewRequest("GET", "/api/v1/sessions/"+id, nil))
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", w.Code)
		}
	}

	labels := map[string]string{"method": "GET", "path": "GET /api/v1/sessions/{id}", "status": "2xx"}
	if v := counterValue(t, reg, "http_requests_total", labels); v != 3 {
		t.Errorf("expected 3 requests under the route pattern, got %v", v)
	}
	if v := counterValue(t, reg, "http_requests_total", map[string]string{"path": "/api/v1/sessions/a1"}); v != 0 {
		t.Errorf("raw session path must not become a label, got %v", v)
	}
}

func TestHTTPMiddleware_FallsBackToPath(t *testing.T) {
	reg := NewRegistry()

	wrapped := HTTPMiddleware(reg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	w := httptest.NewRecorder()
	wrapped.ServeHTTP(w, httptest.NewRequest("GET", "/unrouted", nil))

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
	if v := counterValue(t, reg, "http_requests_total", map[string]string{"path": "/unrouted", "status": "4xx"}); v != 1 {
		t.Errorf("expected 1 request labelled by path, got %v", v)
	}
}

func TestHTTPMiddleware_RecordsDuration(t *testing.T) {
	reg := NewRegistry()

	wrapped := HTTPMiddleware(reg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	wrapped.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("POST", "/api/v1/sessions", nil))

	mfs, _ := reg.Gather()
	for _, mf := range mfs {
		if mf.GetName() != "http_request_duration_seconds" {
			continue
		}
		for _, m := range mf.GetMetric() {
			if m.GetHistogram().GetSampleCount() == 1 {
				return
			}
		}
	}
	t.Error("expected one http_request_duration_seconds sample")
}

func TestHTTPMiddleware_TracksInFlight(t *testing.T) {
	reg := NewRegistry()

	var during float64 = -1
	wrapped := HTTPMiddleware(reg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		during = counterValue(t, reg, "http_requests_in_flight", nil)
	}))
	wrapped.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/api/health", nil))

	if during != 1 {
		t.Errorf("expected in-flight to be 1 during request, got %v", during)
	}
	if after := counterValue(t, reg, "http_requests_in_flight", nil); after != 0 {
		t.Errorf("expected in-flight to be 0 after request, got %v", after)
	}
}
