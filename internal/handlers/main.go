package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/ncerny/deepthought/internal/logging"
	"github.com/ncerny/deepthought/internal/metrics"
	"github.com/ncerny/deepthought/internal/models"
	"github.com/ncerny/deepthought/internal/relay"
)

// Relay opens answer streams for validated questions.
type Relay interface {
	Open(ctx context.Context, question string) (*relay.Stream, error)
}

// Main serves the public API: CORS preflights and POST /api/explain. Every other route is a 404. It
// keeps no per-request state.
type Main struct {
	relay   Relay
	origins OriginPolicy

	maxBodyBytes int64

	metrics *metrics.Metrics
	logger  *slog.Logger
}

const (
	explainPath = "/api/explain"

	errLoggerKey = logging.ErrKey
)

// NewMain creates a new Main. maxBodyBytes bounds the size of request bodies; zero or less means no
// limit. m may be nil.
func NewMain(r Relay, origins OriginPolicy, maxBodyBytes int64, m *metrics.Metrics, logger *slog.Logger) Main {
	return Main{
		relay:        r,
		origins:      origins,
		maxBodyBytes: maxBodyBytes,
		metrics:      m,
		logger:       logger.With(slog.String("module", "handlers")),
	}
}

// Handler returns the public handler with request IDs, access logging and panic recovery applied.
func (m Main) Handler() http.Handler {
	return requestIDMiddleware(m.loggingMiddleware(m.recoveryMiddleware(m)))
}

// ServeHTTP routes a request. CORS headers are attached to every response, errors included, so that
// the browser lets the page read them.
func (m Main) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	m.origins.apply(w.Header(), r.Header.Get("Origin"))

	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	if r.Method != http.MethodPost || r.URL.Path != explainPath {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(models.NotFoundBody))
		return
	}

	m.HandleExplain(w, r)
}

func writeError(w http.ResponseWriter, status int, message string) {
	body, _ := json.Marshal(models.ErrorResponse{Error: message})
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}
