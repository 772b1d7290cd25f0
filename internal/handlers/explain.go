package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/ncerny/deepthought/internal/models"
	"github.com/ncerny/deepthought/internal/relay"
	"github.com/ncerny/deepthought/internal/services"
)

// HandleExplain answers POST /api/explain. The body must be {"question": "..."} with a question that
// is not blank. On success the answer is streamed as server-sent events: one {"content": "..."} frame
// per token, then a single [DONE] frame.
//
// Errors are JSON {"error": "..."}: 400 for a blank question, 502 when the completion API refuses the
// request and 500 for anything else that fails before streaming starts. Upstream error details are
// logged, never returned.
func (m Main) HandleExplain(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	body := r.Body
	if m.maxBodyBytes > 0 {
		body = http.MaxBytesReader(w, r.Body, m.maxBodyBytes)
	}

	req, err := decodeExplainRequest(body)
	if err != nil {
		m.logger.ErrorContext(ctx, "Failed to decode request", slog.String(errLoggerKey, err.Error()))
		writeError(w, http.StatusInternalServerError, models.ErrInternal)
		return
	}

	question := strings.TrimSpace(req.Question)
	if question == "" {
		writeError(w, http.StatusBadRequest, models.ErrQuestionRequired)
		return
	}

	stream, err := m.relay.Open(ctx, question)
	if err != nil {
		var statusErr *services.StatusError
		if errors.As(err, &statusErr) {
			m.metrics.UpstreamFailure(statusErr.StatusCode)
			m.logger.ErrorContext(ctx, "Completion API error",
				slog.Int("status", statusErr.StatusCode),
				slog.String("body", statusErr.Body))
			writeError(w, http.StatusBadGateway, models.ErrServiceUnavailable)
			return
		}
		m.logger.ErrorContext(ctx, "Failed to open answer stream", slog.String(errLoggerKey, err.Error()))
		writeError(w, http.StatusInternalServerError, models.ErrInternal)
		return
	}

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	rc := http.NewResponseController(w)
	_ = rc.Flush()

	if err := copyFlushing(w, rc, stream); err != nil {
		m.logger.DebugContext(ctx, "Client went away", slog.String(errLoggerKey, err.Error()))
	}

	// The request only completes once the pump has released the upstream connection.
	_ = stream.Close()
	<-stream.Done()
}

// decodeExplainRequest decodes a body holding exactly one JSON value.
func decodeExplainRequest(body io.Reader) (models.ExplainRequest, error) {
	var req models.ExplainRequest
	dec := json.NewDecoder(body)
	if err := dec.Decode(&req); err != nil {
		return models.ExplainRequest{}, fmt.Errorf("error decoding request: %w", err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return models.ExplainRequest{}, errors.New("error decoding request: trailing data after JSON value")
	}
	return req, nil
}

// copyFlushing forwards frames from stream to the client, flushing after each one. It returns nil
// once the stream ended and the error of the failing client write otherwise.
func copyFlushing(w http.ResponseWriter, rc *http.ResponseController, stream *relay.Stream) error {
	buf := make([]byte, 4096)
	for {
		n, err := stream.Read(buf)
		if n > 0 {
			if _, werr := w.Write(buf[:n]); werr != nil {
				return werr
			}
			if ferr := rc.Flush(); ferr != nil && !errors.Is(ferr, http.ErrNotSupported) {
				return ferr
			}
		}
		if err != nil {
			return nil
		}
	}
}
