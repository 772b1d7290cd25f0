package relay

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"strings"

	"github.com/ncerny/deepthought/internal/logging"
	"github.com/ncerny/deepthought/internal/models"
	goopenai "github.com/sashabaranov/go-openai"
	"github.com/tmaxmax/go-sse"
)

const dataPrefix = "data: "

type pumpResult struct {
	tokens    int
	malformed int
	err       error
}

// pump copies the answer tokens found in src to dst as SSE frames. Whatever ends the loop, src is
// closed, the [DONE] frame is written (best effort, dst may already be closed by the reader) and dst
// is closed, each exactly once.
func (r Relay) pump(src io.ReadCloser, dst *io.PipeWriter) (res pumpResult) {
	defer func() {
		if err := src.Close(); err != nil {
			r.logger.Debug("Failed to close upstream body", slog.String(logging.ErrKey, err.Error()))
		}
		if err := writeFrame(dst, models.DoneMarker); err != nil && res.err == nil {
			res.err = err
		}
		_ = dst.Close()
	}()

	// bufio hands out whole lines only, so multi-byte characters split across reads are joined back
	// before anything is decoded. A trailing line without '\n' is dropped.
	br := bufio.NewReader(src)
	for {
		line, err := br.ReadString('\n')
		if err != nil {
			if !errors.Is(err, io.EOF) {
				res.err = err
			}
			return res
		}

		content, kind := r.lineContent(line)
		switch kind {
		case lineMalformed:
			res.malformed++
			continue
		case lineSkip:
			continue
		}

		data, err := encodeToken(content)
		if err != nil {
			continue
		}
		if err := writeFrame(dst, data); err != nil {
			res.err = err
			return res
		}
		res.tokens++
		r.metrics.TokenRelayed()
	}
}

type lineKind int

const (
	lineSkip lineKind = iota
	lineToken
	lineMalformed
)

// lineContent extracts the answer text carried by one upstream line. Non data lines, the upstream
// [DONE] sentinel and chunks without content are skipped; chunks that fail to decode are reported as
// malformed and skipped as well.
func (r Relay) lineContent(line string) (string, lineKind) {
	data, ok := lineData(line)
	if !ok || data == models.DoneMarker {
		return "", lineSkip
	}

	// A chunk whose delta content is not a string fails to decode here and counts as malformed.
	var chunk goopenai.ChatCompletionStreamResponse
	if err := json.Unmarshal([]byte(data), &chunk); err != nil {
		r.metrics.MalformedChunk()
		r.logger.Debug("Skipping malformed chunk",
			slog.String("data", data),
			slog.String(logging.ErrKey, err.Error()))
		return "", lineMalformed
	}

	if len(chunk.Choices) == 0 || chunk.Choices[0].Delta.Content == "" {
		return "", lineSkip
	}
	return chunk.Choices[0].Delta.Content, lineToken
}

func lineData(line string) (string, bool) {
	line = strings.TrimSuffix(line, "\n")
	line = strings.TrimSuffix(line, "\r")
	if !strings.HasPrefix(line, dataPrefix) {
		return "", false
	}
	return line[len(dataPrefix):], true
}

// encodeToken renders a TokenEvent without HTML escaping, the way browsers' JSON.stringify does.
func encodeToken(content string) (string, error) {
	var sb strings.Builder
	enc := json.NewEncoder(&sb)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(models.TokenEvent{Content: content}); err != nil {
		return "", err
	}
	return strings.TrimSuffix(sb.String(), "\n"), nil
}

// writeFrame writes data as one SSE frame with a single Write, so the reader never sees half a frame.
func writeFrame(w io.Writer, data string) error {
	msg := &sse.Message{}
	msg.AppendData(data)

	var buf bytes.Buffer
	if _, err := msg.WriteTo(&buf); err != nil {
		return err
	}
	_, err := w.Write(buf.Bytes())
	return err
}
