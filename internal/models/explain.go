package models

// ExplainRequest is the body accepted by POST /api/explain.
type ExplainRequest struct {
	Question string `json:"question"`
}

// ErrorResponse is the JSON body of every non-streamed error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// TokenEvent is a piece of answer text relayed to the client as a single SSE frame.
type TokenEvent struct {
	Content string `json:"content"`
}

// DoneMarker is the data of the frame that terminates every relayed stream.
const DoneMarker = "[DONE]"

// Client facing error messages. Upstream details never end up in these.
const (
	ErrQuestionRequired   = "Question required"
	ErrServiceUnavailable = "AI service unavailable"
	ErrInternal           = "Internal error"
	NotFoundBody          = "Not Found"
)
