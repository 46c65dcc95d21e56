package logging

import (
	"log"
	"os"
)

const (
	// TraceLevel indicates a log message's level of criticality
	TraceLevel = iota
	// DebugLevel indicates a log message's level of criticality
	DebugLevel
	// InfoLevel indicates a log message's level of criticality
	InfoLevel
	// WarnLevel indicates a log message's level of criticality
	WarnLevel
	// ErrorLevel indicates a log message's level of criticality
	ErrorLevel
	// FatalLevel indicates a log message's level of criticality
	FatalLevel
)

// LogLevelToString translates a log level enum to a string representation
func LogLevelToString(level int) string {
	switch level {
	case DebugLevel:
		return "DEBUG"
	case InfoLevel:
		return "INFO"
	case WarnLevel:
		return "WARN"
	case ErrorLevel:
		return "ERROR"
	case FatalLevel:
		return "FATAL"
	default:
		return "TRACE"
	}
}

// Logger filters messages below a minimum level before handing them to an
// underlying log.Logger
type Logger struct {
	level int
	out   *log.Logger
}

// CreateLogger builds a Logger over the given log.Logger
func CreateLogger(out *log.Logger, level int) *Logger {
	return &Logger{level: level, out: out}
}

// CreateDefaultLogger builds a Logger over stderr at InfoLevel
func CreateDefaultLogger() *Logger {
	return &Logger{level: InfoLevel, out: log.New(os.Stderr, "", log.LstdFlags)}
}

// Level returns the minimum level this Logger emits
func (l *Logger) Level() int {
	return l.level
}

func (l *Logger) logf(level int, format string, args ...interface{}) {
	if level < l.level {
		return
	}
	l.out.Printf("["+LogLevelToString(level)+"] "+format, args...)
}

// Tracef logs a message at TraceLevel
func (l *Logger) Tracef(format string, args ...interface{}) {
	l.logf(TraceLevel, format, args...)
}

// Debugf logs a message at DebugLevel
func (l *Logger) Debugf(format string, args ...interface{}) {
	l.logf(DebugLevel, format, args...)
}

// Infof logs a message at InfoLevel
func (l *Logger) Infof(format string, args ...interface{}) {
	l.logf(InfoLevel, format, args...)
}

// Warnf logs a message at WarnLevel
func (l *Logger) Warnf(format string, args ...interface{}) {
	l.logf(WarnLevel, format, args...)
}

// Errorf logs a message at ErrorLevel
func (l *Logger) Errorf(format string, args ...interface{}) {
	l.logf(ErrorLevel, format, args...)
}

// Fatalf logs a message at FatalLevel and exits
func (l *Logger) Fatalf(format string, args ...interface{}) {
	l.out.Fatalf("["+LogLevelToString(FatalLevel)+"] "+format, args...)
}
