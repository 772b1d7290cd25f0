package metrics_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ncerny/deepthought/internal/metrics"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetricsRecording(t *testing.T) {
	m := metrics.New()

	m.ObserveRequest(http.StatusOK, 120*time.Millisecond)
	m.ObserveRequest(http.StatusOK, 80*time.Millisecond)
	m.ObserveRequest(http.StatusBadGateway, 10*time.Millisecond)
	m.UpstreamFailure(http.StatusUnauthorized)
	m.TokenRelayed()
	m.TokenRelayed()
	m.TokenRelayed()
	m.MalformedChunk()
	m.StreamStarted()
	m.StreamStarted()
	m.StreamEnded(time.Second)

	tests := []struct {
		name   string
		metric string
		want   string
	}{
		{
			name:   "Requests by status",
			metric: "deepthought_requests_total",
			want: `
# HELP deepthought_requests_total Total number of requests handled by the public listener
# TYPE deepthought_requests_total counter
deepthought_requests_total{status="200"} 2
deepthought_requests_total{status="502"} 1
`,
		},
		{
			name:   "Upstream failures",
			metric: "deepthought_upstream_failures_total",
			want: `
# HELP deepthought_upstream_failures_total Total number of non-2xx answers from the completion API
# TYPE deepthought_upstream_failures_total counter
deepthought_upstream_failures_total{code="401"} 1
`,
		},
		{
			name:   "Tokens",
			metric: "deepthought_tokens_relayed_total",
			want: `
# HELP deepthought_tokens_relayed_total Total number of token frames written to clients
# TYPE deepthought_tokens_relayed_total counter
deepthought_tokens_relayed_total 3
`,
		},
		{
			name:   "Malformed chunks",
			metric: "deepthought_malformed_chunks_total",
			want: `
# HELP deepthought_malformed_chunks_total Total number of upstream data lines that could not be decoded
# TYPE deepthought_malformed_chunks_total counter
deepthought_malformed_chunks_total 1
`,
		},
		{
			name:   "Active streams",
			metric: "deepthought_streams_active",
			want: `
# HELP deepthought_streams_active Number of answer streams currently being relayed
# TYPE deepthought_streams_active gauge
deepthought_streams_active 1
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := testutil.GatherAndCompare(m.Registry(), strings.NewReader(tt.want), tt.metric); err != nil {
				t.Error(err)
			}
		})
	}

	got, err := testutil.GatherAndCount(m.Registry(), "deepthought_stream_duration_seconds")
	if err != nil {
		t.Fatal(err)
	}
	if got != 1 {
		t.Errorf("stream duration series = %d, want 1", got)
	}
}

func TestMetricsNilSafe(t *testing.T) {
	var m *metrics.Metrics

	m.ObserveRequest(http.StatusOK, time.Second)
	m.UpstreamFailure(http.StatusBadGateway)
	m.TokenRelayed()
	m.MalformedChunk()
	m.StreamStarted()
	m.StreamEnded(time.Second)

	if m.Registry() != nil {
		t.Error("Registry() of nil Metrics is not nil")
	}
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("nil Metrics handler status = %d, want 404", rec.Code)
	}
}

func TestMetricsHandler(t *testing.T) {
	m := metrics.New()
	m.TokenRelayed()

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if !strings.Contains(string(body), "deepthought_tokens_relayed_total 1") {
		t.Errorf("body does not contain token counter:\n%s", body)
	}
}
