package logger

import (
	"fmt"
	"log"
	"strings"
	"sync/atomic"
)

// Level controls logging verbosity
type Level int32

const (
	TraceLevel Level = iota
	DebugLevel
	InfoLevel
	WarnLevel
	ErrorLevel
)

var currentLevel atomic.Int32

func init() {
	currentLevel.Store(int32(InfoLevel))
}

// ParseLevel converts a level name to a Level
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return TraceLevel, nil
	case "debug":
		return DebugLevel, nil
	case "info", "":
		return InfoLevel, nil
	case "warn", "warning":
		return WarnLevel, nil
	case "error":
		return ErrorLevel, nil
	default:
		return InfoLevel, fmt.Errorf("unknown log level: %q", s)
	}
}

// SetLevel sets the global log level
func SetLevel(l Level) {
	currentLevel.Store(int32(l))
}

func enabled(l Level) bool {
	return int32(l) >= currentLevel.Load()
}

func Trace(format string, args ...any) {
	if enabled(TraceLevel) {
		log.Printf("[TRACE] "+format, args...)
	}
}

func Debug(format string, args ...any) {
	if enabled(DebugLevel) {
		log.Printf("[DEBUG] "+format, args...)
	}
}

func Info(format string, args ...any) {
	if enabled(InfoLevel) {
		log.Printf("[INFO] "+format, args...)
	}
}

func Warn(format string, args ...any) {
	if enabled(WarnLevel) {
		log.Printf("[WARN] "+format, args...)
	}
}

func Error(format string, args ...any) {
	if enabled(ErrorLevel) {
		log.Printf("[ERROR] "+format, args...)
	}
}
