// Leveled logging for jobpower.  A message below the logger's level is dropped before it is
// formatted.  Every other message is written as one line, tagged with its level when it is more
// severe than Info.

package status

import (
	"fmt"
	"io"
	"os"
	"sync"
)

type LogLevel int

const (
	LogLevelDebug LogLevel = iota
	LogLevelInfo
	LogLevelWarning
	LogLevelError
	LogLevelCritical
)

var levelTags = [...]string{
	LogLevelDebug:    "",
	LogLevelInfo:     "",
	LogLevelWarning:  "Warning: ",
	LogLevelError:    "Error: ",
	LogLevelCritical: "Critical: ",
}

func (l LogLevel) tag() string {
	if l < LogLevelDebug || int(l) >= len(levelTags) {
		return levelTags[LogLevelCritical]
	}
	return levelTags[l]
}

// Implementations must be thread-safe.  None of the printing methods exit or panic.
type Logger interface {
	SetLevel(l LogLevel)
	LowerLevelTo(l LogLevel)
	SetOutput(w io.Writer)

	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warningf(format string, args ...any)
	Errorf(format string, args ...any)
	Criticalf(format string, args ...any)
}

type StandardLogger struct {
	mu    sync.Mutex
	level LogLevel
	out   io.Writer
}

// MT: Constant after initialization, thread-safe.
var defaultLogger Logger = NewStandardLogger(LogLevelWarning, os.Stderr)

func Default() Logger {
	return defaultLogger
}

func NewStandardLogger(level LogLevel, out io.Writer) *StandardLogger {
	return &StandardLogger{level: level, out: out}
}

func (sl *StandardLogger) SetLevel(l LogLevel) {
	sl.mu.Lock()
	sl.level = l
	sl.mu.Unlock()
}

// Lowering never raises: -v after -debug keeps Debug.

func (sl *StandardLogger) LowerLevelTo(l LogLevel) {
	sl.mu.Lock()
	sl.level = min(sl.level, l)
	sl.mu.Unlock()
}

// A nil writer silences the logger.

func (sl *StandardLogger) SetOutput(w io.Writer) {
	sl.mu.Lock()
	sl.out = w
	sl.mu.Unlock()
}

func (sl *StandardLogger) logf(l LogLevel, format string, args []any) {
	sl.mu.Lock()
	defer sl.mu.Unlock()
	if l < sl.level || sl.out == nil {
		return
	}
	fmt.Fprintf(sl.out, "%s%s\n", l.tag(), fmt.Sprintf(format, args...))
}

func (sl *StandardLogger) Debugf(format string, args ...any) {
	sl.logf(LogLevelDebug, format, args)
}

func (sl *StandardLogger) Infof(format string, args ...any) {
	sl.logf(LogLevelInfo, format, args)
}

func (sl *StandardLogger) Warningf(format string, args ...any) {
	sl.logf(LogLevelWarning, format, args)
}

func (sl *StandardLogger) Errorf(format string, args ...any) {
	sl.logf(LogLevelError, format, args)
}

func (sl *StandardLogger) Criticalf(format string, args ...any) {
	sl.logf(LogLevelCritical, format, args)
}
