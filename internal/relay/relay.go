package relay

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/ncerny/deepthought/internal/logging"
	"github.com/ncerny/deepthought/internal/metrics"
	"github.com/ncerny/deepthought/internal/models"
)

// Upstream opens a raw chat completion event stream for a conversation.
type Upstream interface {
	Stream(ctx context.Context, messages []models.Message) (io.ReadCloser, error)
}

// Relay turns questions into answer streams. It holds no per-request state, so one Relay serves
// every request concurrently.
type Relay struct {
	upstream Upstream
	persona  string

	metrics *metrics.Metrics
	logger  *slog.Logger
}

// Stream is the client side of a relayed answer: a sequence of SSE frames, each a TokenEvent, that
// always ends with a single [DONE] frame. It is produced by a pump goroutine writing into a pipe.
type Stream struct {
	pr   *io.PipeReader
	done chan struct{}
}

// ErrClientGone is what the pump sees when the consumer closed the stream early.
var ErrClientGone = errors.New("stream closed by client")

// New creates a Relay that asks upstream with persona as the system prompt. m may be nil.
func New(upstream Upstream, persona string, m *metrics.Metrics, logger *slog.Logger) Relay {
	return Relay{
		upstream: upstream,
		persona:  persona,
		metrics:  m,
		logger:   logger.With(slog.String("module", "relay")),
	}
}

// Open sends question upstream and, once the upstream accepted it, starts pumping its answer into the
// returned Stream. Errors returned here happen before anything was streamed; upstream status failures
// can be detected with errors.As on *services.StatusError.
//
// ctx bounds the upstream request for the whole life of the stream.
func (r Relay) Open(ctx context.Context, question string) (*Stream, error) {
	body, err := r.upstream.Stream(ctx, models.Conversation(r.persona, question))
	if err != nil {
		return nil, fmt.Errorf("error opening upstream stream: %w", err)
	}

	pr, pw := io.Pipe()
	s := &Stream{
		pr:   pr,
		done: make(chan struct{}),
	}

	r.metrics.StreamStarted()
	go func() {
		defer close(s.done)

		start := time.Now()
		res := r.pump(body, pw)
		r.metrics.StreamEnded(time.Since(start))

		attrs := []any{
			slog.Int("tokens", res.tokens),
			slog.Int("malformed", res.malformed),
			slog.Duration("duration", time.Since(start)),
		}
		if res.err != nil && !errors.Is(res.err, ErrClientGone) && !errors.Is(res.err, context.Canceled) {
			r.logger.WarnContext(ctx, "Answer stream ended with error",
				append(attrs, slog.String(logging.ErrKey, res.err.Error()))...)
			return
		}
		r.logger.DebugContext(ctx, "Answer stream ended", attrs...)
	}()

	return s, nil
}

// Read reads relayed frames. It returns io.EOF after the [DONE] frame once the pump finished.
func (s *Stream) Read(p []byte) (int, error) {
	return s.pr.Read(p)
}

// Close abandons the stream. The pump notices on its next write, releases the upstream body and
// exits; wait on Done to observe that.
func (s *Stream) Close() error {
	return s.pr.CloseWithError(ErrClientGone)
}

// Done is closed once the pump has released the upstream body and closed its end of the stream.
func (s *Stream) Done() <-chan struct{} {
	return s.done
}
