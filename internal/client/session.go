package client

import (
	"strings"
	"sync"
	"time"

	"github.com/ncerny/deepthought/internal/persona"
)

// Phase is where a Session stands.
type Phase string

const (
	// PhaseIdle waits for a question.
	PhaseIdle Phase = "idle"
	// PhaseThinking pretends to think for State.ThinkDuration.
	PhaseThinking Phase = "thinking"
	// PhaseAnswer shows the response, streamed or not.
	PhaseAnswer Phase = "answer"
)

// State is a snapshot of a Session.
type State struct {
	Phase         Phase
	Question      string
	ThinkDuration time.Duration
	Response      string
	Streaming     bool
}

// Session tracks one question from submission to answer. It is safe for concurrent use, so tokens can
// be appended while the state is being displayed. The zero value is an idle session.
type Session struct {
	mu    sync.Mutex
	state State
}

// Submit starts thinking about question.
func (s *Session) Submit(question string) State {
	question = strings.TrimSpace(question)
	return s.update(func(st *State) {
		st.Phase = PhaseThinking
		st.Question = question
		st.ThinkDuration = persona.ThinkDuration(question)
	})
}

// ShowAnswer moves to the answer phase.
func (s *Session) ShowAnswer() State {
	return s.update(func(st *State) {
		st.Phase = PhaseAnswer
	})
}

// StartStreaming moves to the answer phase with a stream in progress.
func (s *Session) StartStreaming() State {
	return s.update(func(st *State) {
		st.Phase = PhaseAnswer
		st.Streaming = true
	})
}

// Append adds streamed text to the response.
func (s *Session) Append(text string) State {
	return s.update(func(st *State) {
		st.Response += text
	})
}

// FinishStreaming marks the stream as done.
func (s *Session) FinishStreaming() State {
	return s.update(func(st *State) {
		st.Streaming = false
	})
}

// Fallback replaces the response, used when the relay failed.
func (s *Session) Fallback(response string) State {
	return s.update(func(st *State) {
		st.Phase = PhaseAnswer
		st.Response = response
	})
}

// Reset returns to an idle session.
func (s *Session) Reset() State {
	return s.update(func(st *State) {
		*st = State{}
	})
}

// State returns the current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stateLocked()
}

func (s *Session) update(fn func(*State)) State {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.state)
	return s.stateLocked()
}

func (s *Session) stateLocked() State {
	st := s.state
	if st.Phase == "" {
		st.Phase = PhaseIdle
	}
	return st
}
