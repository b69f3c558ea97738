// Package sync implements the reconciliation engine that maps an external
// membership snapshot onto the local database: member and household upserts,
// the hard refresh of the callings hierarchy, youth interviews, standard
// roster seeding, cached-id relinking, annotation restore, and in-flight
// change detection.
package sync

import (
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger is the logging function the engine reports progress through.
type Logger func(format string, args ...interface{})

// NewLogger builds a timestamped logger writing to stdout and, when logPath
// is non-empty, to a rotating log file as well.
func NewLogger(logPath string) (Logger, io.Closer) {
	var out io.Writer = os.Stdout
	var closer io.Closer

	if logPath != "" {
		logF := &lumberjack.Logger{
			Filename:   logPath,
			MaxSize:    10, // megabytes
			MaxBackups: 3,
			MaxAge:     7, // days
			Compress:   true,
		}
		out = io.MultiWriter(os.Stdout, logF)
		closer = logF
	}

	logger := func(format string, args ...interface{}) {
		timestamp := time.Now().Format("2006-01-02 15:04:05")
		fmt.Fprintf(out, "[%s] %s\n", timestamp, fmt.Sprintf(format, args...))
	}
	return logger, closer
}

// discardLogger drops all output; used when no logger is supplied.
func discardLogger(format string, args ...interface{}) {}
