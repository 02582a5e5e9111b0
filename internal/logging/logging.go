// Package logging wires zerolog to the portal's append-only log file. Lines
// are rendered in the portal's historical format:
//
//	[2006-01-02 15:04:05] LEVEL: message {"key":"value"}
package logging

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

const lineTimeFormat = "2006-01-02 15:04:05"

// NewFileLogger returns a level-filtered logger appending to path in the
// bracketed line format. The returned closer owns the underlying file.
func NewFileLogger(path, level string) (zerolog.Logger, io.Closer, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return zerolog.Nop(), nil, fmt.Errorf("failed to open log file %s: %w", path, err)
	}

	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		lvl = zerolog.InfoLevel
	}

	logger := zerolog.New(&bracketWriter{out: f}).Level(lvl).With().Timestamp().Logger()
	return logger, f, nil
}

// NewNopLogger returns a logger that discards everything.
func NewNopLogger() zerolog.Logger {
	return zerolog.Nop()
}

// bracketWriter re-renders zerolog's JSON events as bracketed text lines.
// Writes are serialized so concurrent handlers never interleave lines.
type bracketWriter struct {
	mu  sync.Mutex
	out io.Writer
}

func (w *bracketWriter) Write(p []byte) (int, error) {
	var event map[string]interface{}
	if err := json.Unmarshal(p, &event); err != nil {
		// Not a JSON event, pass through unchanged.
		w.mu.Lock()
		defer w.mu.Unlock()
		return w.out.Write(p)
	}

	ts := formatTimestamp(event[zerolog.TimestampFieldName])
	level, _ := event[zerolog.LevelFieldName].(string)
	message, _ := event[zerolog.MessageFieldName].(string)

	delete(event, zerolog.TimestampFieldName)
	delete(event, zerolog.LevelFieldName)
	delete(event, zerolog.MessageFieldName)

	line := fmt.Sprintf("[%s] %s: %s", ts, strings.ToUpper(level), message)
	if len(event) > 0 {
		ctx, err := json.Marshal(event)
		if err == nil {
			line += " " + string(ctx)
		}
	}
	line += "\n"

	w.mu.Lock()
	defer w.mu.Unlock()
	if _, err := w.out.Write([]byte(line)); err != nil {
		return 0, err
	}
	return len(p), nil
}

func formatTimestamp(v interface{}) string {
	raw, ok := v.(string)
	if !ok {
		return time.Now().UTC().Format(lineTimeFormat)
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return raw
	}
	return t.UTC().Format(lineTimeFormat)
}
