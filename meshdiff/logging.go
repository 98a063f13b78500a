package meshdiff

import (
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
)

// A Reporter splits pipeline output into human-readable progress (Out) and
// diagnostics (Err).
type Reporter struct {
	Out *log.Logger
	Err *log.Logger
}

// NewReporter creates a Reporter writing progress to stdout and diagnostics
// to stderr.
//
// The format may be "text", "logfmt", or "json"; unknown formats fall back to
// text.
func NewReporter(stdout, stderr io.Writer, format string, verbose bool) *Reporter {
	opts := log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.Kitchen,
		Formatter:       formatter(format),
	}
	out := log.NewWithOptions(stdout, opts)
	errLog := log.NewWithOptions(stderr, opts)
	if verbose {
		out.SetLevel(log.DebugLevel)
		errLog.SetLevel(log.DebugLevel)
	}
	return &Reporter{Out: out, Err: errLog}
}

// DefaultReporter writes to the process's standard streams.
func DefaultReporter() *Reporter {
	return NewReporter(os.Stdout, os.Stderr, "text", false)
}

// DiscardReporter drops everything. Useful for tests and library callers
// which only look at the returned Run.
func DiscardReporter() *Reporter {
	return NewReporter(io.Discard, io.Discard, "text", false)
}

func formatter(name string) log.Formatter {
	switch name {
	case "json":
		return log.JSONFormatter
	case "logfmt":
		return log.LogfmtFormatter
	}
	return log.TextFormatter
}

// With returns a Reporter whose lines carry the given key-value pairs.
func (r *Reporter) With(keyvals ...any) *Reporter {
	return &Reporter{Out: r.Out.With(keyvals...), Err: r.Err.With(keyvals...)}
}

func (r *Reporter) Infof(format string, args ...any) {
	r.Out.Infof(format, args...)
}

func (r *Reporter) Debugf(format string, args ...any) {
	r.Out.Debugf(format, args...)
}

func (r *Reporter) Warnf(format string, args ...any) {
	r.Err.Warnf(format, args...)
}

func (r *Reporter) Errorf(format string, args ...any) {
	r.Err.Errorf(format, args...)
}
