// Package mcplog records MCP tool calls as JSON lines.
//
// Tool arguments routinely carry whole component sources and element trees,
// so they are summarized before being written: long strings become their
// length and line count, and arrays become their length.
package mcplog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
)

// shortStringMax is the longest string argument logged verbatim.
const shortStringMax = 64

// Entry is one JSONL line.
type Entry struct {
	Ts            string         `json:"ts"`
	Tool          string         `json:"tool"`
	Args          map[string]any `json:"args"`
	DurationMs    int64          `json:"duration_ms"`
	ResponseBytes int            `json:"response_bytes"`

	// ToolError is set when the tool reported a failure in its result, as
	// opposed to Error, which holds a protocol-level error.
	ToolError bool    `json:"tool_error,omitempty"`
	Error     *string `json:"error"`
}

// Logger appends entries to a file. It is safe for concurrent use; a nil
// *Logger discards everything.
type Logger struct {
	mu  sync.Mutex
	f   *os.File
	enc *json.Encoder
}

// Open opens path for appending, creating parent directories. An empty path
// returns a nil Logger.
func Open(path string) (*Logger, error) {
	if path == "" {
		return nil, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("mcplog: create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("mcplog: open log file: %w", err)
	}
	return &Logger{f: f, enc: json.NewEncoder(f)}, nil
}

// Record builds and writes the entry for one finished call.
func (l *Logger) Record(tool string, args map[string]any, start time.Time, result *mcp.CallToolResult, callErr error) error {
	if l == nil {
		return nil
	}
	e := Entry{
		Ts:            start.UTC().Format(time.RFC3339),
		Tool:          tool,
		Args:          Summarize(args),
		DurationMs:    Now().Sub(start).Milliseconds(),
		ResponseBytes: ResponseBytes(result),
		ToolError:     result != nil && result.IsError,
	}
	if callErr != nil {
		msg := callErr.Error()
		e.Error = &msg
	}
	return l.Write(e)
}

// Write appends one entry.
func (l *Logger) Write(e Entry) error {
	if l == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.enc.Encode(e)
}

// Close closes the file.
func (l *Logger) Close() error {
	if l == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.f.Close()
}

// Summarize returns a copy of args that is small enough to log. Long strings
// become "<key>_len" and "<key>_lines", arrays become "<key>_count" and
// objects are summarized recursively.
func Summarize(args map[string]any) map[string]any {
	out := make(map[string]any, len(args))
	for k, v := range args {
		switch val := v.(type) {
		case string:
			if len(val) > shortStringMax {
				out[k+"_len"] = len(val)
				out[k+"_lines"] = strings.Count(val, "\n") + 1
				continue
			}
			out[k] = val
		case []any:
			out[k+"_count"] = len(val)
		case map[string]any:
			out[k] = Summarize(val)
		default:
			out[k] = val
		}
	}
	return out
}

// ResponseBytes is the encoded size of a result's content. A nil result or
// an encoding failure counts as zero.
func ResponseBytes(result *mcp.CallToolResult) int {
	if result == nil {
		return 0
	}
	b, err := json.Marshal(result.Content)
	if err != nil {
		return 0
	}
	return len(b)
}

// Now is the clock used for durations; tests replace it.
var Now = time.Now
