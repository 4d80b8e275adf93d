// Package fqerr defines the error taxonomy used throughout the pipeline
// (spec §7): ConfigError, InputError, InvariantError, OutputError,
// SimulatedOutputError, and Cancelled, plus an aggregation helper for the
// scheduler's multi-worker failure reporting. Grounded on
// blockfmt.IsFatal's errors.Is-over-a-table shape and the
// "%w (and %d other errors)" aggregation idiom from
// blockfmt.Converter.runMulti.
package fqerr

import (
	"errors"
	"fmt"
	"strings"
)

// ConfigError wraps a user-configuration validation failure: duplicate
// segment labels, unknown segments, out-of-range numeric parameters.
type ConfigError struct {
	Location string // e.g. step name/index, for diagnostic hints
	Msg      string
}

func (e *ConfigError) Error() string {
	if e.Location == "" {
		return "config error: " + e.Msg
	}
	return fmt.Sprintf("config error (%s): %s", e.Location, e.Msg)
}

// InputError wraps a problem reading/parsing an input file: missing file,
// unrecognized format, truncated record, encoding mismatch.
type InputError struct {
	Path string
	Msg  string
	Err  error
}

func (e *InputError) Error() string {
	if e.Path == "" {
		return "input error: " + e.Msg
	}
	return fmt.Sprintf("input error (%s): %s", e.Path, e.Msg)
}

func (e *InputError) Unwrap() error { return e.Err }

// InvariantError wraps a failed internal consistency check — always a
// bug, reported with full context. read.InvariantError satisfies this
// same role within the read package; this variant is used by components
// outside read that detect invariant breakage (e.g. the scheduler
// noticing a step returned a block with mismatched segment lengths).
type InvariantError struct {
	Msg string
}

func (e *InvariantError) Error() string { return "invariant violated: " + e.Msg }

// OutputError wraps a write-side failure: destination exists, write
// failure, chunk-rename failure.
type OutputError struct {
	Path string
	Msg  string
	Err  error
}

func (e *OutputError) Error() string {
	if e.Path == "" {
		return "output error: " + e.Msg
	}
	return fmt.Sprintf("output error (%s): %s", e.Path, e.Msg)
}

func (e *OutputError) Unwrap() error { return e.Err }

// ErrOutputExists is returned by the writer when a destination exists and
// allow_overwrite is false.
var ErrOutputExists = errors.New("output exists")

// SimulatedOutputError is delivered only by the test harness, after a
// configured byte budget, to exercise failure-handling paths.
type SimulatedOutputError struct {
	AfterBytes int64
}

func (e *SimulatedOutputError) Error() string {
	return fmt.Sprintf("simulated output failure after %d bytes", e.AfterBytes)
}

// Cancelled is a sentinel error for work abandoned because the
// scheduler's termination flag (set by premature termination or a
// peer's failure) was observed. The scheduler in package pipeline does
// not return it: its workers stop without an error when the flag is set.
var Cancelled = errors.New("cancelled")

// isFatal lists errors that will never disappear on retry, mirroring
// blockfmt.isFatal.
var isFatal = []error{
	ErrOutputExists,
}

// IsFatal reports whether err is known to be fatal (unrecoverable on
// retry).
func IsFatal(err error) bool {
	for _, f := range isFatal {
		if errors.Is(err, f) {
			return true
		}
	}
	var ce *ConfigError
	var ie *InvariantError
	return errors.As(err, &ce) || errors.As(err, &ie)
}

// Aggregate collects multiple errors recorded by independent workers.
// Err reports them as one error; JoinedMessage renders every recorded
// message, newline-separated (§7 "Multi-error aggregation").
type Aggregate struct {
	errs []error
}

// Add records err if it is non-nil.
func (a *Aggregate) Add(err error) {
	if err != nil {
		a.errs = append(a.errs, err)
	}
}

// Err returns nil if no errors were recorded, the sole error if exactly
// one was recorded, or a combined error otherwise — matching the
// teacher's "%w (and %d other errors)" idiom: the first error is
// wrapped and the others are only counted, not included in the message.
func (a *Aggregate) Err() error {
	switch len(a.errs) {
	case 0:
		return nil
	case 1:
		return a.errs[0]
	default:
		return fmt.Errorf("%w (and %d other errors)", a.errs[0], len(a.errs)-1)
	}
}

// Len reports how many errors have been recorded.
func (a *Aggregate) Len() int { return len(a.errs) }

// All returns every recorded error.
func (a *Aggregate) All() []error { return a.errs }

// JoinedMessage renders every recorded error's message, one per line, for
// the user-visible stderr report described in §7.
func (a *Aggregate) JoinedMessage() string {
	msgs := make([]string, len(a.errs))
	for i, e := range a.errs {
		msgs[i] = e.Error()
	}
	return strings.Join(msgs, "\n")
}
