package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"iter"
	"net/http"
	"strings"

	"github.com/ncerny/deepthought/internal/models"
	"github.com/tmaxmax/go-sse"
)

// Client asks a Deep Thought server for answers.
type Client struct {
	endpoint string

	client *http.Client
}

// APIError is a JSON error answered by the server instead of a stream.
type APIError struct {
	StatusCode int
	Message    string
}

// ErrTruncated is yielded when the answer stream ends without its [DONE] frame.
var ErrTruncated = errors.New("answer stream ended unexpectedly")

// New creates a new Client for the server at endpoint, e.g. "http://localhost:8787".
func New(endpoint string) Client {
	return Client{
		endpoint: strings.TrimRight(endpoint, "/"),
		client:   &http.Client{},
	}
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("unexpected status code: %d", e.StatusCode)
	}
	return fmt.Sprintf("unexpected status code: %d: %s", e.StatusCode, e.Message)
}

// Explain asks question and returns an iterator over the answer as it is streamed. The iterator ends
// after the [DONE] frame, or after yielding the first error. Cancelling ctx stops the iteration
// silently.
func (c Client) Explain(ctx context.Context, question string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		jsonBody, err := json.Marshal(models.ExplainRequest{Question: question})
		if err != nil {
			yield("", fmt.Errorf("error marshaling request: %w", err))
			return
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost,
			c.endpoint+"/api/explain", bytes.NewReader(jsonBody))
		if err != nil {
			yield("", fmt.Errorf("error creating request: %w", err))
			return
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "text/event-stream")

		resp, err := c.client.Do(req)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			yield("", fmt.Errorf("error sending request: %w", err))
			return
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			var e models.ErrorResponse
			_ = json.NewDecoder(io.LimitReader(resp.Body, 4096)).Decode(&e)
			yield("", &APIError{StatusCode: resp.StatusCode, Message: e.Error})
			return
		}

		for ev, err := range sse.Read(resp.Body, nil) {
			if err != nil {
				if errors.Is(err, context.Canceled) {
					return
				}
				yield("", fmt.Errorf("error reading response: %w", err))
				return
			}

			if ev.Data == models.DoneMarker {
				return
			}

			var token models.TokenEvent
			if err := json.Unmarshal([]byte(ev.Data), &token); err != nil || token.Content == "" {
				continue
			}
			if !yield(token.Content, nil) {
				return
			}
		}

		if ctx.Err() != nil {
			return
		}
		yield("", ErrTruncated)
	}
}
