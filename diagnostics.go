package sitesnap

import (
	"strings"
	"sync"
	"time"

	"github.com/root4loot/goutils/log"
)

// Diagnostic is an in-page error observed during a capture.
type Diagnostic struct {
	URL     string
	Message string
	Time    time.Time
}

// Diagnostics receives in-page errors. Report is called from browser event
// goroutines and must not block the capture.
type Diagnostics interface {
	Report(d Diagnostic)
}

// DiagnosticLog is an append-only Diagnostics that also prints each entry.
type DiagnosticLog struct {
	mu      sync.Mutex
	entries []Diagnostic
}

func (l *DiagnosticLog) Report(d Diagnostic) {
	l.mu.Lock()
	l.entries = append(l.entries, d)
	l.mu.Unlock()

	log.Warnf("Page error on %s: %s", d.URL, d.Message)
}

// Entries returns a copy of everything reported so far.
func (l *DiagnosticLog) Entries() []Diagnostic {
	l.mu.Lock()
	defer l.mu.Unlock()

	entries := make([]Diagnostic, len(l.entries))
	copy(entries, l.entries)
	return entries
}

// FirstLine returns the first line of an error message.
func FirstLine(message string) string {
	message = strings.TrimSpace(message)
	if i := strings.IndexAny(message, "\r\n"); i >= 0 {
		return strings.TrimSpace(message[:i])
	}
	return message
}
