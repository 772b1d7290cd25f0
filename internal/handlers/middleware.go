package handlers

import (
	"log/slog"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/google/uuid"
	"github.com/ncerny/deepthought/internal/logging"
	"github.com/ncerny/deepthought/internal/models"
)

// RequestIDHeader carries the request ID, both ways.
const RequestIDHeader = "X-Request-ID"

// statusRecorder captures the status code written by the wrapped handler. Unwrap keeps
// http.ResponseController working through it.
type statusRecorder struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (s *statusRecorder) WriteHeader(code int) {
	if !s.wroteHeader {
		s.status = code
		s.wroteHeader = true
	}
	s.ResponseWriter.WriteHeader(code)
}

func (s *statusRecorder) Write(b []byte) (int, error) {
	if !s.wroteHeader {
		s.WriteHeader(http.StatusOK)
	}
	return s.ResponseWriter.Write(b)
}

func (s *statusRecorder) Unwrap() http.ResponseWriter {
	return s.ResponseWriter
}

// requestIDMiddleware uses the client supplied X-Request-ID or generates one, echoes it in the
// response and stores it in the request context for the logger.
func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.New().String()
		}
		w.Header().Set(RequestIDHeader, requestID)

		next.ServeHTTP(w, r.WithContext(logging.WithRequestID(r.Context(), requestID)))
	})
}

func (m Main) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		d := time.Since(start)
		m.metrics.ObserveRequest(rec.status, d)
		m.logger.InfoContext(r.Context(), "Request completed",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", rec.status),
			slog.Duration("duration", d),
			slog.String("origin", r.Header.Get("Origin")),
		)
	})
}

// recoveryMiddleware turns a panic into a 500 JSON error when nothing was written yet. Once a stream
// has started the connection is just dropped.
func (m Main) recoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec, ok := w.(*statusRecorder)
		if !ok {
			rec = &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		}

		defer func() {
			err := recover()
			if err == nil {
				return
			}
			if err == http.ErrAbortHandler {
				panic(err)
			}

			m.logger.ErrorContext(r.Context(), "Panic in handler",
				slog.Any(errLoggerKey, err),
				slog.String("stack", string(debug.Stack())))

			if rec.wroteHeader {
				panic(http.ErrAbortHandler)
			}
			writeError(rec, http.StatusInternalServerError, models.ErrInternal)
		}()

		next.ServeHTTP(rec, r)
	})
}
