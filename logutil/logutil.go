// Package logutil wires up the process-wide logger. infraplan logs with
// logrus, the structured logger used across the bare-metal installer
// tooling this codebase draws from (ubuntu-image, kairos-agent,
// cOS-toolkit all wire up logrus the same way: one package-level
// instance, level bumped by a repeatable --verbose flag).
package logutil

import (
	"os"

	"github.com/sirupsen/logrus"
)

// Log is the process-wide logger. Plugins and utility packages log
// through this instance rather than constructing their own, so a single
// --verbose flag controls every component.
var Log = newLogger()

func newLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetLevel(logrus.WarnLevel)
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	return l
}

// BumpVerbosity raises the log level by steps steps, one per occurrence
// of the CLI's repeatable -v/--verbose flag: warn -> info -> debug ->
// trace, capped at trace.
func BumpVerbosity(steps int) {
	levels := []logrus.Level{logrus.WarnLevel, logrus.InfoLevel, logrus.DebugLevel, logrus.TraceLevel}
	idx := 0
	for i, lv := range levels {
		if lv == Log.GetLevel() {
			idx = i
			break
		}
	}
	idx += steps
	if idx >= len(levels) {
		idx = len(levels) - 1
	}
	if idx < 0 {
		idx = 0
	}
	Log.SetLevel(levels[idx])
}
