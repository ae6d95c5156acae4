// Package debug provides conditional debug logging for gtmdeck.
//
// Debug logging is enabled by setting the GTMDECK_DEBUG environment variable:
//
//	GTMDECK_DEBUG=1 gtmdeck --section market
//
// When enabled, debug messages are written to stderr with timestamps.
// When disabled (default), all debug functions are no-ops with zero overhead.
//
// Usage:
//
//	import "github.com/vanderheijden86/gtmdeck/pkg/debug"
//
//	func myFunc() {
//	    debug.Log("loaded %d sections", count)
//	    // ...
//	    debug.LogTiming("myFunc", elapsed)
//	}
package debug

import (
	"io"
	"log"
	"os"
	"time"
)

var (
	// enabled is true when GTMDECK_DEBUG env var is set
	enabled bool
	// logger writes to stderr with [GTMDECK_DEBUG] prefix
	logger *log.Logger
)

func init() {
	if os.Getenv("GTMDECK_DEBUG") != "" {
		enabled = true
		logger = newLogger()
	}
}

// Enabled returns whether debug logging is enabled.
func Enabled() bool {
	return enabled
}

// SetEnabled allows programmatic control of debug logging.
// Note: This also requires initializing the logger if not already done.
func SetEnabled(e bool) {
	enabled = e
	if e && logger == nil {
		logger = newLogger()
	}
}

func newLogger() *log.Logger {
	return log.New(os.Stderr, "[GTMDECK_DEBUG] ", log.Ltime|log.Lmicroseconds)
}

// SetOutput redirects debug output, mainly for tests. It enables logging.
func SetOutput(w io.Writer) {
	enabled = true
	logger = log.New(w, "[GTMDECK_DEBUG] ", 0)
}

// Log writes a debug message if debug logging is enabled.
// Uses printf-style formatting.
func Log(format string, args ...any) {
	if !enabled {
		return
	}
	logger.Printf(format, args...)
}

// LogTiming writes a timing message if debug logging is enabled.
func LogTiming(name string, d time.Duration) {
	if !enabled {
		return
	}
	logger.Printf("%s took %v", name, d)
}

// LogEnterExit logs function entry and exit with timing.
// Usage:
//
//	func myFunc() {
//	    defer debug.LogEnterExit("myFunc")()
//	    // ...
//	}
func LogEnterExit(name string) func() {
	if !enabled {
		return func() {}
	}
	logger.Printf("-> %s", name)
	start := time.Now()
	return func() {
		logger.Printf("<- %s (%v)", name, time.Since(start))
	}
}

// Dump logs a value with its type for debugging complex structures.
func Dump(name string, v any) {
	if !enabled {
		return
	}
	logger.Printf("%s: %T = %+v", name, v, v)
}

// Section logs a section header for visual organization in debug output.
func Section(name string) {
	if !enabled {
		return
	}
	logger.Printf("=== %s ===", name)
}
