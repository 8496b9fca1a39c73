// Package status carries the progress messages of a stamping run to the
// console, the run log and live subscribers.
package status

import (
	"fmt"
	"log"
	"os"
	"sync"
	"time"
)

// Status classifies an event.
type Status string

// Status values reported by a run.
const (
	Process Status = "process"
	Success Status = "success"
	Error   Status = "error"
)

// Event is one progress message.
type Event struct {
	Time    time.Time `json:"time"`
	Message string    `json:"message"`
	Status  Status    `json:"status"`
	// Color is the "#rrggbb" value a colour report refers to.
	Color string `json:"color,omitempty"`
}

// Reporter receives events in the order they happen.
type Reporter interface {
	Report(Event)
}

// ReporterFunc adapts a function to Reporter.
type ReporterFunc func(Event)

// Report implements Reporter.
func (f ReporterFunc) Report(e Event) { f(e) }

// Discard drops every event.
var Discard Reporter = ReporterFunc(func(Event) {})

// Multi fans events out to several reporters. Nil reporters are skipped.
func Multi(reporters ...Reporter) Reporter {
	var rs []Reporter
	for _, r := range reporters {
		if r != nil {
			rs = append(rs, r)
		}
	}
	return ReporterFunc(func(e Event) {
		for _, r := range rs {
			r.Report(e)
		}
	})
}

// Console prints events to stdout, prefixing failures.
type Console struct{}

// Report implements Reporter.
func (Console) Report(e Event) {
	switch e.Status {
	case Error:
		fmt.Printf("Error: %s\n", e.Message)
	case Success:
		fmt.Printf("OK: %s\n", e.Message)
	default:
		fmt.Println(e.Message)
	}
}

// LogFile appends events as "<time>: <message>" lines to a file.
// Write failures are logged and otherwise ignored.
type LogFile struct {
	path string
	mu   sync.Mutex
}

// NewLogFile creates a reporter appending to path.
func NewLogFile(path string) *LogFile {
	return &LogFile{path: path}
}

// Report implements Reporter.
func (l *LogFile) Report(e Event) {
	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		log.Printf("Warning: failed to open run log %s: %v", l.path, err)
		return
	}
	defer f.Close()

	if _, err := fmt.Fprintf(f, "%s: %s\n", e.Time.Format(time.DateTime), e.Message); err != nil {
		log.Printf("Warning: failed to write run log %s: %v", l.path, err)
	}
}
