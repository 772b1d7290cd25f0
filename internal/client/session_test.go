package client_test

import (
	"sync"
	"testing"
	"time"

	"github.com/ncerny/deepthought/internal/client"
)

func TestSessionLifecycle(t *testing.T) {
	var s client.Session

	if got := s.State(); got.Phase != client.PhaseIdle {
		t.Fatalf("zero Session phase = %q, want idle", got.Phase)
	}

	st := s.Submit("  What is the meaning of life?  ")
	if st.Phase != client.PhaseThinking {
		t.Errorf("phase after Submit = %q, want thinking", st.Phase)
	}
	if st.Question != "What is the meaning of life?" {
		t.Errorf("question = %q, want trimmed question", st.Question)
	}
	if st.ThinkDuration != 6*time.Second {
		t.Errorf("think duration = %v, want 6s", st.ThinkDuration)
	}

	st = s.StartStreaming()
	if st.Phase != client.PhaseAnswer || !st.Streaming {
		t.Errorf("after StartStreaming phase = %q streaming = %v", st.Phase, st.Streaming)
	}

	s.Append("Forty")
	s.Append("-Two")
	st = s.Append(".")
	if st.Response != "Forty-Two." {
		t.Errorf("response = %q, want Forty-Two.", st.Response)
	}

	st = s.FinishStreaming()
	if st.Streaming {
		t.Error("still streaming after FinishStreaming")
	}
	if st.Response != "Forty-Two." {
		t.Errorf("FinishStreaming changed the response to %q", st.Response)
	}

	st = s.Reset()
	if st != (client.State{Phase: client.PhaseIdle}) {
		t.Errorf("state after Reset = %+v, want idle zero state", st)
	}
}

func TestSessionFallback(t *testing.T) {
	var s client.Session
	s.Submit("Why?")

	st := s.Fallback("Forty-Two.")
	if st.Phase != client.PhaseAnswer {
		t.Errorf("phase = %q, want answer", st.Phase)
	}
	if st.Response != "Forty-Two." {
		t.Errorf("response = %q", st.Response)
	}

	if st := s.ShowAnswer(); st.Phase != client.PhaseAnswer {
		t.Errorf("phase after ShowAnswer = %q, want answer", st.Phase)
	}
}

func TestSessionConcurrentAppend(t *testing.T) {
	var s client.Session
	s.StartStreaming()

	var wg sync.WaitGroup
	for range 100 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Append("x")
			_ = s.State()
		}()
	}
	wg.Wait()

	if got := len(s.State().Response); got != 100 {
		t.Errorf("response length = %d, want 100", got)
	}
}
