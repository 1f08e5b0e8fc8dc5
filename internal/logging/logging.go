// Package logging holds the process-wide logger.
//
// The TUI owns stdout/stderr, so by default everything is discarded; setting
// COURSETERM_LOG=<path> redirects the log to a file for debugging. Scriptable
// CLI commands keep warnings on stderr.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

var Logger = logrus.New()

func init() {
	Logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	Logger.SetLevel(logrus.InfoLevel)
}

// InitForTUI routes the log away from the terminal before bubbletea takes over.
func InitForTUI() {
	path := strings.TrimSpace(os.Getenv("COURSETERM_LOG"))
	if path == "" {
		Logger.SetOutput(io.Discard)
		return
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		Logger.SetOutput(io.Discard)
		return
	}
	Logger.SetOutput(f)
	Logger.SetLevel(logrus.DebugLevel)
}
