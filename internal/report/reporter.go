// Package report carries run outcome signaling: informational lines,
// notices, warnings, errors and secret masking. Components receive a
// Reporter instead of writing to the process output themselves.
package report

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/Lokeren12/action-upload-webdav/internal/log"
)

// Level classifies a reported message
type Level int

const (
	LevelInfo Level = iota
	LevelNotice
	LevelWarning
	LevelError
)

// String returns the level name
func (l Level) String() string {
	switch l {
	case LevelInfo:
		return "info"
	case LevelNotice:
		return "notice"
	case LevelWarning:
		return "warning"
	case LevelError:
		return "error"
	default:
		return "unknown"
	}
}

// Reporter receives the user-facing messages of a run
type Reporter interface {
	Info(msg string)
	Notice(msg string)
	Warning(msg string)
	Error(msg string)
	// Mask hides a secret from any later output where the sink supports it
	Mask(secret string)
}

// New returns the GitHub Actions reporter when running inside a workflow
// and a log-backed reporter otherwise.
func New(out io.Writer) Reporter {
	if os.Getenv("GITHUB_ACTIONS") == "true" {
		return NewActions(out)
	}
	return NewLogReporter(log.Default())
}

// Actions writes GitHub workflow commands
type Actions struct {
	mu  sync.Mutex
	out io.Writer
}

// NewActions creates a reporter writing workflow commands to out
func NewActions(out io.Writer) *Actions {
	if out == nil {
		out = os.Stdout
	}
	return &Actions{out: out}
}

func (a *Actions) Info(msg string) {
	a.write(msg)
}

func (a *Actions) Notice(msg string) {
	a.command("notice", msg)
}

func (a *Actions) Warning(msg string) {
	a.command("warning", msg)
}

func (a *Actions) Error(msg string) {
	a.command("error", msg)
}

func (a *Actions) Mask(secret string) {
	if secret == "" {
		return
	}
	a.command("add-mask", secret)
}

func (a *Actions) command(name, msg string) {
	a.write(fmt.Sprintf("::%s::%s", name, escapeData(msg)))
}

func (a *Actions) write(line string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	fmt.Fprintln(a.out, line)
}

// escapeData applies the workflow command data escaping
func escapeData(s string) string {
	s = strings.ReplaceAll(s, "%", "%25")
	s = strings.ReplaceAll(s, "\r", "%0D")
	return strings.ReplaceAll(s, "\n", "%0A")
}

// LogReporter forwards messages to a structured logger
type LogReporter struct {
	logger *log.Logger
}

// NewLogReporter creates a reporter on top of logger
func NewLogReporter(logger *log.Logger) *LogReporter {
	return &LogReporter{logger: logger}
}

func (r *LogReporter) Info(msg string) {
	r.logger.Info(msg)
}

func (r *LogReporter) Notice(msg string) {
	r.logger.With(log.F("annotation", "notice")).Info(msg)
}

func (r *LogReporter) Warning(msg string) {
	r.logger.Warn(msg)
}

func (r *LogReporter) Error(msg string) {
	r.logger.Error(msg)
}

// Mask is a no-op; plain logs have no masking facility.
func (r *LogReporter) Mask(string) {}
