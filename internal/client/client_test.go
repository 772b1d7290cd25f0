package client_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ncerny/deepthought/internal/client"
	"github.com/ncerny/deepthought/internal/models"
)

func collect(c client.Client, question string) ([]string, error) {
	var tokens []string
	for token, err := range c.Explain(context.Background(), question) {
		if err != nil {
			return tokens, err
		}
		tokens = append(tokens, token)
	}
	return tokens, nil
}

func TestExplain(t *testing.T) {
	var gotQuestion string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/explain" {
			http.NotFound(w, r)
			return
		}
		var req models.ExplainRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		gotQuestion = req.Question

		w.Header().Set("Content-Type", "text/event-stream")
		_, _ = io.WriteString(w, "data: {\"content\":\"Forty\"}\n\n"+
			"data: {\"content\":\"-Two\"}\n\n"+
			"data: garbage\n\n"+
			"data: {\"content\":\".\"}\n\n"+
			"data: [DONE]\n\n"+
			"data: {\"content\":\"after done\"}\n\n")
	}))
	defer srv.Close()

	tokens, err := collect(client.New(srv.URL+"/"), "What is six times seven?")
	if err != nil {
		t.Fatalf("Explain() error = %v", err)
	}

	want := []string{"Forty", "-Two", "."}
	if len(tokens) != len(want) {
		t.Fatalf("tokens = %q, want %q", tokens, want)
	}
	for i := range want {
		if tokens[i] != want[i] {
			t.Errorf("tokens[%d] = %q, want %q", i, tokens[i], want[i])
		}
	}
	if gotQuestion != "What is six times seven?" {
		t.Errorf("question = %q", gotQuestion)
	}
}

func TestExplainAPIError(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantMessage string
	}{
		{name: "Question required", status: http.StatusBadRequest, body: `{"error":"Question required"}`, wantMessage: "Question required"},
		{name: "Upstream down", status: http.StatusBadGateway, body: `{"error":"AI service unavailable"}`, wantMessage: "AI service unavailable"},
		{name: "Plain text", status: http.StatusNotFound, body: "Not Found", wantMessage: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			}))
			defer srv.Close()

			_, err := collect(client.New(srv.URL), "q")

			var apiErr *client.APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("Explain() error = %v, want *APIError", err)
			}
			if apiErr.StatusCode != tt.status {
				t.Errorf("StatusCode = %d, want %d", apiErr.StatusCode, tt.status)
			}
			if apiErr.Message != tt.wantMessage {
				t.Errorf("Message = %q, want %q", apiErr.Message, tt.wantMessage)
			}
		})
	}
}

func TestExplainTruncated(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		_, _ = io.WriteString(w, "data: {\"content\":\"Forty\"}\n\n")
	}))
	defer srv.Close()

	tokens, err := collect(client.New(srv.URL), "q")
	if !errors.Is(err, client.ErrTruncated) {
		t.Errorf("Explain() error = %v, want ErrTruncated", err)
	}
	if len(tokens) != 1 || tokens[0] != "Forty" {
		t.Errorf("tokens = %q, want [Forty]", tokens)
	}
}

func TestExplainStopEarly(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		_, _ = io.WriteString(w, "data: {\"content\":\"Forty\"}\n\ndata: {\"content\":\"-Two\"}\n\ndata: [DONE]\n\n")
	}))
	defer srv.Close()

	var got []string
	for token, err := range client.New(srv.URL).Explain(context.Background(), "q") {
		if err != nil {
			t.Fatal(err)
		}
		got = append(got, token)
		break
	}
	if len(got) != 1 {
		t.Errorf("tokens = %q, want one token", got)
	}
}

func TestExplainUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := collect(client.New(url), "q")
	if err == nil {
		t.Fatal("Explain() error = nil, want connection error")
	}
	var apiErr *client.APIError
	if errors.As(err, &apiErr) {
		t.Errorf("Explain() error = %v, want transport error", err)
	}
}
