package scheduler

import (
	"fmt"
	"log"
	"os"

	"github.com/rs/zerolog"
)

// LogLevel represents the severity of a log message, adapted unchanged in
// shape from the teacher's batch.LogLevel.
type LogLevel int

const (
	LogLevelDebug LogLevel = iota
	LogLevelInfo
	LogLevelWarn
	LogLevelError
)

func (l LogLevel) String() string {
	switch l {
	case LogLevelDebug:
		return "DEBUG"
	case LogLevelInfo:
		return "INFO"
	case LogLevelWarn:
		return "WARN"
	case LogLevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Logger is the pluggable logging surface for the scheduler; it also
// satisfies the minimal logger that fetchexecutor.WithLogging accepts.
// Logging is listed among the excluded external collaborators in spec.md's
// §1, but the ambient logging machinery is still part of the repo, the same way the teacher's batch package carries its own Logger
// interface independent of anything the caller's Source/Processor does.
type Logger interface {
	Log(level LogLevel, format string, args ...any)
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// NoOpLogger discards everything. It is the default when no Logger is
// configured.
type NoOpLogger struct{}

func (NoOpLogger) Log(LogLevel, string, ...any) {}
func (NoOpLogger) Debug(string, ...any)          {}
func (NoOpLogger) Info(string, ...any)           {}
func (NoOpLogger) Warn(string, ...any)           {}
func (NoOpLogger) Error(string, ...any)          {}

// SimpleLogger writes to stdout/stderr with a timestamp and level prefix,
// the same split the teacher's SimpleLogger uses: Debug/Info to stdout,
// Warn/Error to stderr.
type SimpleLogger struct {
	MinLevel     LogLevel
	StdoutLogger *log.Logger
	StderrLogger *log.Logger
}

// NewSimpleLogger creates a SimpleLogger that discards messages below
// minLevel.
func NewSimpleLogger(minLevel LogLevel) *SimpleLogger {
	return &SimpleLogger{
		MinLevel:     minLevel,
		StdoutLogger: log.New(os.Stdout, "", log.LstdFlags),
		StderrLogger: log.New(os.Stderr, "", log.LstdFlags),
	}
}

func (s *SimpleLogger) Log(level LogLevel, format string, args ...any) {
	if level < s.MinLevel {
		return
	}

	msg := fmt.Sprintf(format, args...)
	prefix := fmt.Sprintf("[%s] ", level.String())

	switch level {
	case LogLevelDebug, LogLevelInfo:
		s.StdoutLogger.Printf("%s%s", prefix, msg)
	case LogLevelWarn, LogLevelError:
		s.StderrLogger.Printf("%s%s", prefix, msg)
	}
}

func (s *SimpleLogger) Debug(format string, args ...any) { s.Log(LogLevelDebug, format, args...) }
func (s *SimpleLogger) Info(format string, args ...any)  { s.Log(LogLevelInfo, format, args...) }
func (s *SimpleLogger) Warn(format string, args ...any)  { s.Log(LogLevelWarn, format, args...) }
func (s *SimpleLogger) Error(format string, args ...any) { s.Log(LogLevelError, format, args...) }

// ZerologAdapter implements Logger on top of a zerolog.Logger, for callers
// who already run zerolog for their HTTP client the way
// Sternrassler-eve-esi-client's pagination worker pool does
// (pkg/pagination/batch_fetcher.go logs every page fetch and worker
// lifecycle event through zerolog's global logger).
type ZerologAdapter struct {
	Logger zerolog.Logger
}

// NewZerologAdapter wraps an existing zerolog.Logger.
func NewZerologAdapter(logger zerolog.Logger) *ZerologAdapter {
	return &ZerologAdapter{Logger: logger}
}

func (z *ZerologAdapter) Log(level LogLevel, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	switch level {
	case LogLevelDebug:
		z.Logger.Debug().Msg(msg)
	case LogLevelInfo:
		z.Logger.Info().Msg(msg)
	case LogLevelWarn:
		z.Logger.Warn().Msg(msg)
	case LogLevelError:
		z.Logger.Error().Msg(msg)
	}
}

func (z *ZerologAdapter) Debug(format string, args ...any) { z.Log(LogLevelDebug, format, args...) }
func (z *ZerologAdapter) Info(format string, args ...any)  { z.Log(LogLevelInfo, format, args...) }
func (z *ZerologAdapter) Warn(format string, args ...any)  { z.Log(LogLevelWarn, format, args...) }
func (z *ZerologAdapter) Error(format string, args ...any) { z.Log(LogLevelError, format, args...) }
