// Package logging builds the structured logger shared by every command.
package logging

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
)

// Options configures a logger.
type Options struct {
	Level  string
	Format string
	Prefix string
	Output io.Writer
}

// New returns a logger writing to stderr unless Options.Output is set.
// stdout is never used: the stdio transport owns it.
func New(opts Options) (*log.Logger, error) {
	level := log.InfoLevel
	if opts.Level != "" {
		parsed, err := log.ParseLevel(opts.Level)
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", opts.Level, err)
		}
		level = parsed
	}

	formatter, err := parseFormat(opts.Format)
	if err != nil {
		return nil, err
	}

	out := opts.Output
	if out == nil {
		out = os.Stderr
	}

	return log.NewWithOptions(&FilterWriter{Out: out}, log.Options{
		Level:           level,
		Prefix:          opts.Prefix,
		ReportTimestamp: true,
		Formatter:       formatter,
	}), nil
}

func parseFormat(format string) (log.Formatter, error) {
	switch strings.ToLower(format) {
	case "", "text":
		return log.TextFormatter, nil
	case "json":
		return log.JSONFormatter, nil
	case "logfmt":
		return log.LogfmtFormatter, nil
	}

	return log.TextFormatter, fmt.Errorf("invalid log format %q", format)
}

// noisy lines are produced by clients probing capabilities we do not offer.
var noisy = [][]byte{
	[]byte("Prompts not supported"),
}

// FilterWriter drops known-noisy log lines.
type FilterWriter struct {
	Out io.Writer
}

func (w *FilterWriter) Write(p []byte) (int, error) {
	for _, n := range noisy {
		if bytes.Contains(p, n) {
			return len(p), nil
		}
	}

	if _, err := w.Out.Write(p); err != nil {
		return 0, err
	}

	return len(p), nil
}
