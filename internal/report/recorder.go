package report

import (
	"strings"
	"sync"
)

// Event is one message captured by a Recorder
type Event struct {
	Level   Level
	Message string
}

// Recorder keeps every reported message in memory. It is used by tests
// and by callers that want to inspect what a run reported.
type Recorder struct {
	mu      sync.Mutex
	events  []Event
	secrets []string
}

// NewRecorder creates an empty Recorder
func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Info(msg string)    { r.add(LevelInfo, msg) }
func (r *Recorder) Notice(msg string)  { r.add(LevelNotice, msg) }
func (r *Recorder) Warning(msg string) { r.add(LevelWarning, msg) }
func (r *Recorder) Error(msg string)   { r.add(LevelError, msg) }

func (r *Recorder) Mask(secret string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.secrets = append(r.secrets, secret)
}

func (r *Recorder) add(level Level, msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, Event{Level: level, Message: msg})
}

// Events returns a copy of all captured events
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// Messages returns the messages reported at level, in order
func (r *Recorder) Messages(level Level) []string {
	var msgs []string
	for _, e := range r.Events() {
		if e.Level == level {
			msgs = append(msgs, e.Message)
		}
	}
	return msgs
}

// Contains reports whether any message at level contains substr
func (r *Recorder) Contains(level Level, substr string) bool {
	for _, msg := range r.Messages(level) {
		if strings.Contains(msg, substr) {
			return true
		}
	}
	return false
}

// Masked returns the secrets passed to Mask
func (r *Recorder) Masked() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.secrets))
	copy(out, r.secrets)
	return out
}
