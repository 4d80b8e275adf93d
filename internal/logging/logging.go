// Package logging is a thin wrapper over the standard library's log
// package. The teacher (sneller) carries no logging dependency anywhere
// in its module graph and reports diagnostics with plain
// fmt.Fprintf(os.Stderr, ...) / log.Printf (see cmd/sdb/main.go's exitf);
// this package follows that idiom directly rather than reaching for a
// structured-logging framework the corpus never uses.
package logging

import (
	"log"
	"os"
)

// Logger attaches a small set of run-scoped fields (run ID, stage name)
// to otherwise-ordinary *log.Logger output.
type Logger struct {
	base  *log.Logger
	runID string
	stage string
}

// New creates a root Logger writing to stderr, tagged with runID.
func New(runID string) *Logger {
	return &Logger{
		base:  log.New(os.Stderr, "", log.LstdFlags),
		runID: runID,
	}
}

// WithStage returns a derived Logger tagged with the given stage name, for
// per-stage worker diagnostics.
func (l *Logger) WithStage(stage string) *Logger {
	return &Logger{base: l.base, runID: l.runID, stage: stage}
}

func (l *Logger) prefix() string {
	if l.stage == "" {
		return "[" + l.runID + "] "
	}
	return "[" + l.runID + "/" + l.stage + "] "
}

// Printf logs a formatted message tagged with this Logger's run/stage.
func (l *Logger) Printf(format string, args ...any) {
	l.base.Printf(l.prefix()+format, args...)
}

// Println logs a message tagged with this Logger's run/stage.
func (l *Logger) Println(args ...any) {
	all := append([]any{l.prefix()}, args...)
	l.base.Println(all...)
}
