package handlers

import (
	"net/http"

	"github.com/ncerny/deepthought/internal/metrics"
)

// NewAdmin returns the handler of the admin listener: Prometheus metrics at /metrics and a liveness
// probe at /healthz. It is served apart from the public API so that the latter keeps a single route.
func NewAdmin(m *metrics.Metrics) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("GET /metrics", m.Handler())
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	return mux
}
