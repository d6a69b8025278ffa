package watcher

import "time"

// EventType represents the type of file system event
type EventType int

const (
	// EventAdded is emitted when a file appears for the first time (after settling)
	EventAdded EventType = iota
	// EventModified is emitted when a file seen before changes again (after settling)
	EventModified
	// EventRemoved is emitted when a file is deleted or renamed away
	EventRemoved
)

// String returns the string representation of the event type
func (t EventType) String() string {
	switch t {
	case EventAdded:
		return "added"
	case EventModified:
		return "modified"
	case EventRemoved:
		return "removed"
	default:
		return "unknown"
	}
}

// Event represents a settled file system event
type Event struct {
	Type    EventType
	Path    string
	Size    int64     // zero for removals
	ModTime time.Time // zero for removals
}
