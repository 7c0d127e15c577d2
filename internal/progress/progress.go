// Package progress reports scan events for verbose output
package progress

import (
	"os"
	"strings"
	"sync"
	"time"
)

// Progress forwards events to a handler when enabled.
// Scan workers report concurrently, so delivery is serialized.
type Progress struct {
	mu          sync.Mutex
	enabled     bool
	handler     Handler
	withTimings bool
	dirTimings  map[string]time.Time
}

// New creates a progress reporter; nil handler writes simple lines to stderr
func New(enabled bool, handler Handler) *Progress {
	if handler == nil {
		handler = NewSimpleHandler(os.Stderr)
	}
	return &Progress{
		enabled:    enabled,
		handler:    handler,
		dirTimings: make(map[string]time.Time),
	}
}

// Disabled returns a reporter that drops every event
func Disabled() *Progress {
	return New(false, NewNullHandler())
}

// EnableTimings adds per-directory durations to leave events
func (p *Progress) EnableTimings() {
	p.withTimings = true
}

// Report sends an event to the handler (only if enabled)
func (p *Progress) Report(event Event) {
	if p == nil || !p.enabled {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.handler.Handle(event)
}

func (p *Progress) ScanStart(path string, excludePatterns []string) {
	p.Report(Event{
		Type: EventScanStart,
		Path: path,
		Info: strings.Join(excludePatterns, ", "),
	})
}

func (p *Progress) ScanComplete(files, dirs int, duration time.Duration) {
	p.Report(Event{
		Type:      EventScanComplete,
		FileCount: files,
		DirCount:  dirs,
		Duration:  duration,
	})
}

func (p *Progress) EnterDirectory(path string) {
	if p != nil && p.withTimings {
		p.mu.Lock()
		p.dirTimings[path] = time.Now()
		p.mu.Unlock()
	}
	p.Report(Event{Type: EventEnterDirectory, Path: path})
}

func (p *Progress) LeaveDirectory(path string) {
	var duration time.Duration
	if p != nil && p.withTimings {
		p.mu.Lock()
		if start, ok := p.dirTimings[path]; ok {
			duration = time.Since(start)
			delete(p.dirTimings, path)
		}
		p.mu.Unlock()
	}
	p.Report(Event{Type: EventLeaveDirectory, Path: path, Duration: duration})
}

func (p *Progress) FileAnalyzed(path, language string, findings int) {
	p.Report(Event{
		Type:     EventFileAnalyzed,
		Path:     path,
		Info:     language,
		Findings: findings,
	})
}

func (p *Progress) Skipped(path, reason string) {
	p.Report(Event{Type: EventSkipped, Path: path, Reason: reason})
}

func (p *Progress) Info(message string) {
	p.Report(Event{Type: EventInfo, Info: message})
}

func (p *Progress) GitIgnoreEnter(path string) {
	p.Report(Event{Type: EventGitIgnoreEnter, Path: path})
}
