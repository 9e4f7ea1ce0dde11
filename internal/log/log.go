// Package log is a small interface-driven logger, shaped after the
// github.com/saferwall/pe/log package the example corpus's own
// binary-format toolkit places behind a *log.Helper field: a Logger
// interface, a std-backed implementation, a level filter, and a Helper
// with the Debugf/Infof/Warnf/Errorf convenience methods callers actually
// use at their call sites.
package log

import (
	"fmt"
	"io"
	stdlog "log"
)

// Level orders log severities low to high.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Logger is implemented by anything that can record a leveled, keyvals-style
// log line.
type Logger interface {
	Log(level Level, keyvals ...interface{}) error
}

// stdLogger backs Logger with the standard library's log package.
type stdLogger struct {
	l *stdlog.Logger
}

// NewStdLogger returns a Logger that writes to w via the standard log
// package, one line per call.
func NewStdLogger(w io.Writer) Logger {
	return &stdLogger{l: stdlog.New(w, "", stdlog.LstdFlags)}
}

func (s *stdLogger) Log(level Level, keyvals ...interface{}) error {
	msg := fmt.Sprint(keyvals...)
	s.l.Printf("%s %s", level, msg)
	return nil
}

// filter wraps a Logger, dropping entries below a minimum level.
type filter struct {
	next Logger
	min  Level
}

// FilterOption configures a filter built by NewFilter.
type FilterOption func(*filter)

// FilterLevel sets the minimum level a filtered Logger will pass through.
func FilterLevel(min Level) FilterOption {
	return func(f *filter) { f.min = min }
}

// NewFilter wraps next with level filtering.
func NewFilter(next Logger, opts ...FilterOption) Logger {
	f := &filter{next: next, min: LevelInfo}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func (f *filter) Log(level Level, keyvals ...interface{}) error {
	if level < f.min {
		return nil
	}
	return f.next.Log(level, keyvals...)
}

// Helper adds Debugf/Infof/Warnf/Errorf convenience methods over a Logger,
// the shape every call site in the corpus's PE toolkit uses
// (pe.logger.Warnf(...), pe.logger.Debug(...)).
type Helper struct {
	logger Logger
}

// NewHelper wraps logger.
func NewHelper(logger Logger) *Helper {
	return &Helper{logger: logger}
}

func (h *Helper) log(level Level, msg string) {
	if h == nil || h.logger == nil {
		return
	}
	h.logger.Log(level, msg)
}

func (h *Helper) Debug(args ...interface{})            { h.log(LevelDebug, fmt.Sprint(args...)) }
func (h *Helper) Debugf(format string, args ...interface{}) { h.log(LevelDebug, fmt.Sprintf(format, args...)) }
func (h *Helper) Info(args ...interface{})              { h.log(LevelInfo, fmt.Sprint(args...)) }
func (h *Helper) Infof(format string, args ...interface{})  { h.log(LevelInfo, fmt.Sprintf(format, args...)) }
func (h *Helper) Warn(args ...interface{})              { h.log(LevelWarn, fmt.Sprint(args...)) }
func (h *Helper) Warnf(format string, args ...interface{})  { h.log(LevelWarn, fmt.Sprintf(format, args...)) }
func (h *Helper) Error(args ...interface{})             { h.log(LevelError, fmt.Sprint(args...)) }
func (h *Helper) Errorf(format string, args ...interface{}) { h.log(LevelError, fmt.Sprintf(format, args...)) }

// Default returns a Helper backed by a std logger writing to w, filtered to
// min and above — the pattern every New*/Options constructor in the corpus
// falls back to when no custom logger is supplied.
func Default(w io.Writer, min Level) *Helper {
	return NewHelper(NewFilter(NewStdLogger(w), FilterLevel(min)))
}
