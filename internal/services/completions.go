package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/ncerny/deepthought/internal/models"
	goopenai "github.com/sashabaranov/go-openai"
)

// Completions streams chat completions from an OpenAI compatible endpoint, such as Groq's. It only
// opens the stream; decoding the chunks is left to the caller.
type Completions struct {
	baseURL string
	apiKey  string
	model   string

	params LLMParameters

	client *http.Client

	logger *slog.Logger
}

// LLMParameters are the sampling parameters sent with every completion request.
type LLMParameters struct {
	MaxTokens   int
	Temperature float32
}

// StatusError is returned by Stream when the upstream answers with a non-2xx status. Body holds the
// upstream error payload and must only be logged.
type StatusError struct {
	StatusCode int
	Body       string
}

const maxErrorBodyBytes = 64 << 10

// NewCompletions creates a new Completions instance for the endpoint at baseURL, e.g.
// "https://api.groq.com/openai/v1".
func NewCompletions(baseURL, apiKey, model string, params LLMParameters, logger *slog.Logger) Completions {
	return Completions{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		model:   model,
		params:  params,
		client:  &http.Client{},
		logger:  logger.With(slog.String("module", "completions")),
	}
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status code: %d, body: %s", e.StatusCode, e.Body)
}

// Stream sends a streaming chat completion request and returns the raw event stream body. The caller
// owns the returned body and must close it. A non-2xx answer yields a *StatusError. The context bounds
// the whole stream, not just the request.
func (c Completions) Stream(ctx context.Context, messages []models.Message) (io.ReadCloser, error) {
	jsonBody, err := json.Marshal(c.chatRequest(messages))
	if err != nil {
		return nil, fmt.Errorf("error marshaling request: %w", err)
	}

	c.logger.Debug("Request Body", slog.String("body", string(jsonBody)))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/chat/completions", bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error sending request: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	return resp.Body, nil
}

// streamRequest is a go-openai request whose temperature is always sent. The embedded field is tagged
// omitempty, which would drop a configured temperature of 0 and let the provider use its default.
type streamRequest struct {
	goopenai.ChatCompletionRequest
	Temperature float32 `json:"temperature"`
}

func (c Completions) chatRequest(messages []models.Message) streamRequest {
	msgs := make([]goopenai.ChatCompletionMessage, len(messages))
	for i, msg := range messages {
		msgs[i] = goopenai.ChatCompletionMessage{
			Role:    string(msg.Role),
			Content: msg.Content,
		}
	}

	return streamRequest{
		ChatCompletionRequest: goopenai.ChatCompletionRequest{
			Model:     c.model,
			Messages:  msgs,
			Stream:    true,
			MaxTokens: c.params.MaxTokens,
		},
		Temperature: c.params.Temperature,
	}
}
