package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"time"

	"github.com/ncerny/deepthought/internal/client"
	"github.com/ncerny/deepthought/internal/persona"
)

var errQuestionRequired = errors.New("question required")

type explainer interface {
	Explain(ctx context.Context, question string) iter.Seq2[string, error]
}

type asker struct {
	client explainer
	picker persona.Picker

	out    io.Writer
	status io.Writer

	think          bool
	musingInterval time.Duration
}

type chunk struct {
	content string
	err     error
}

// ask streams the answer to question into a.out. Musings and failures go to a.status. When the
// relay fails before saying anything, a canned answer is printed instead and no error is returned.
func (a asker) ask(ctx context.Context, question string) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var session client.Session
	st := session.Submit(question)
	if st.Question == "" {
		return errQuestionRequired
	}

	// The request starts right away so the answer is ready once thinking is over.
	chunks := make(chan chunk)
	go func() {
		defer close(chunks)
		for content, err := range a.client.Explain(ctx, st.Question) {
			select {
			case chunks <- chunk{content: content, err: err}:
			case <-ctx.Done():
				return
			}
		}
	}()

	if a.think {
		if err := a.ponder(ctx, st.ThinkDuration); err != nil {
			return err
		}
	}

	session.StartStreaming()
	var relayErr error
	for c := range chunks {
		if c.err != nil {
			relayErr = c.err
			break
		}
		session.Append(c.content)
		if _, err := io.WriteString(a.out, c.content); err != nil {
			return fmt.Errorf("error writing answer: %w", err)
		}
	}
	st = session.FinishStreaming()

	if relayErr != nil {
		fmt.Fprintf(a.status, "Deep Thought is unavailable: %v\n", relayErr)
		if st.Response == "" {
			st = session.Fallback(a.picker.Answer())
			_, _ = io.WriteString(a.out, st.Response)
		}
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}

	_, err := io.WriteString(a.out, "\n")
	return err
}

// ponder prints musings to a.status for d.
func (a asker) ponder(ctx context.Context, d time.Duration) error {
	interval := max(a.musingInterval, time.Millisecond)
	musings := a.picker.MusingSequence(int(d/interval) + 1)

	timer := time.NewTimer(d)
	defer timer.Stop()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	next := 0
	say := func() {
		if next < len(musings) {
			fmt.Fprintln(a.status, musings[next])
			next++
		}
	}

	say()
	for {
		select {
		case <-timer.C:
			return nil
		case <-ticker.C:
			say()
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
