// Package diagnostics reports analysis findings and keeps the running
// badness score that decides whether results are trustworthy enough to emit.
package diagnostics

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/fatih/color"

	"github.com/panbanda/augur/pkg/symbol"
)

// Level is the severity of a finding.
type Level int

const (
	LevelInfo Level = iota
	LevelWarning
	LevelError
	LevelFatal
)

func (l Level) String() string {
	switch l {
	case LevelInfo:
		return "info"
	case LevelWarning:
		return "warning"
	case LevelError:
		return "error"
	case LevelFatal:
		return "fatal"
	}
	return "unknown"
}

// Badness contributed per finding. Fatal findings stop the run outright, so
// they carry no score.
func (l Level) badness() int {
	switch l {
	case LevelWarning:
		return 1
	case LevelError:
		return 5
	}
	return 0
}

// FatalError aborts analysis of the current target. It is returned, never
// printed and swallowed, so callers unwind cleanly.
type FatalError struct {
	Message string
	Culprit *symbol.Location
}

func (e *FatalError) Error() string { return e.Message }

var levelColors = map[Level]*color.Color{
	LevelInfo:    color.New(color.FgCyan),
	LevelWarning: color.New(color.FgYellow),
	LevelError:   color.New(color.FgRed),
	LevelFatal:   color.New(color.FgRed, color.Bold),
}

// Session accumulates findings for one analysis run. Badness is tracked per
// file plus a separate bucket for the simplification phase, which has no
// single home file.
type Session struct {
	Strict       bool
	ShowWarnings bool
	ShowInfo     bool

	out             io.Writer
	file            string
	fileBadness     map[string]int
	simplifying     bool
	simplifyBadness int
}

// NewSession returns a session writing findings to stderr.
func NewSession() *Session {
	return &Session{
		out:          os.Stderr,
		ShowWarnings: true,
		fileBadness:  map[string]int{},
	}
}

// NewSessionWriter returns a session writing findings to w.
func NewSessionWriter(w io.Writer) *Session {
	s := NewSession()
	s.out = w
	return s
}

// EnterFile directs subsequent badness at the given file.
func (s *Session) EnterFile(path string) {
	s.file = path
	s.simplifying = false
}

// EnterSimplification directs subsequent badness at the simplification
// bucket rather than any one file.
func (s *Session) EnterSimplification() {
	s.simplifying = true
}

// Info reports an informational finding. It never contributes badness.
func (s *Session) Info(msg string, culprit *symbol.Location) {
	if !s.ShowInfo {
		return
	}
	s.emit(LevelInfo, msg, culprit)
}

// Warning reports a recoverable finding worth one badness point. Under
// strict mode it is escalated and the returned error is non-nil.
func (s *Session) Warning(msg string, culprit *symbol.Location) error {
	if s.Strict {
		return s.Fatal(msg, culprit)
	}
	s.score(LevelWarning)
	if s.ShowWarnings {
		s.emit(LevelWarning, msg, culprit)
	}
	return nil
}

// Error reports a finding that degrades result quality, worth five badness
// points. Under strict mode it is escalated and the returned error is
// non-nil.
func (s *Session) Error(msg string, culprit *symbol.Location) error {
	if s.Strict {
		return s.Fatal(msg, culprit)
	}
	s.score(LevelError)
	s.emit(LevelError, msg, culprit)
	return nil
}

// Fatal reports an unrecoverable finding and returns the error to unwind
// with.
func (s *Session) Fatal(msg string, culprit *symbol.Location) error {
	s.emit(LevelFatal, msg, culprit)
	return &FatalError{Message: msg, Culprit: culprit}
}

func (s *Session) score(l Level) {
	if s.simplifying {
		s.simplifyBadness += l.badness()
		return
	}
	s.fileBadness[s.file] += l.badness()
}

func (s *Session) emit(l Level, msg string, culprit *symbol.Location) {
	prefix := levelColors[l].Sprint(l.String())
	if culprit != nil && culprit.File != "" {
		fmt.Fprintf(s.out, "%s:%d:%d: %s: %s\n", relPath(culprit.File), culprit.Line, culprit.Col, prefix, msg)
		return
	}
	if s.file != "" {
		fmt.Fprintf(s.out, "%s: %s: %s\n", relPath(s.file), prefix, msg)
		return
	}
	fmt.Fprintf(s.out, "%s: %s\n", prefix, msg)
}

func relPath(path string) string {
	cwd, err := os.Getwd()
	if err != nil {
		return path
	}
	rel, err := filepath.Rel(cwd, path)
	if err != nil || len(rel) >= len(path) {
		return path
	}
	return rel
}

// FileBadness is the score accumulated while analysing the given file.
func (s *Session) FileBadness(path string) int {
	return s.fileBadness[path]
}

// SimplifyBadness is the score accumulated during results simplification.
func (s *Session) SimplifyBadness() int {
	return s.simplifyBadness
}

// TargetBadness is the score that counts against the threshold for the
// target file: its own badness plus the shared simplification badness.
// Badness in followed imports is deliberately excluded.
func (s *Session) TargetBadness(target string) int {
	return s.fileBadness[target] + s.simplifyBadness
}

// TotalBadness sums badness across every file and the simplification phase.
func (s *Session) TotalBadness() int {
	total := s.simplifyBadness
	for _, b := range s.fileBadness {
		total += b
	}
	return total
}

// WithinThreshold reports whether the target's badness is acceptable. A
// threshold of zero means unlimited.
func (s *Session) WithinThreshold(target string, threshold int) bool {
	if threshold <= 0 {
		return true
	}
	return s.TargetBadness(target) <= threshold
}
