package progress

import "time"

// EventType represents the type of progress event
type EventType int

const (
	EventScanStart EventType = iota
	EventScanComplete
	EventEnterDirectory
	EventLeaveDirectory
	EventFileAnalyzed
	EventSkipped
	EventInfo
	EventGitIgnoreEnter
)

// Event represents something that happened during scanning
type Event struct {
	Type      EventType
	Path      string
	Info      string
	Reason    string
	Findings  int
	FileCount int
	DirCount  int
	Duration  time.Duration
}

// Handler processes events and produces output
type Handler interface {
	Handle(event Event)
}

// getTimingIcon returns the icon for a duration
func getTimingIcon(seconds float64) string {
	if seconds >= 10.0 {
		return "🔴"
	} else if seconds >= 1.0 {
		return "🟡"
	}
	return "🟢"
}
