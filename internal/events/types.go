package events

import (
	"slices"
	"time"
)

// Op identifies the kind of write that produced an Event.
type Op string

// Write operations.
const (
	OpInsert Op = "insert"
	OpUpdate Op = "update"
	OpDelete Op = "delete"
	OpLoad   Op = "load"
)

// Event reports a committed change to a table.
type Event struct {
	Table     string
	Op        Op
	ID        int64 // Row affected, 0 for bulk operations.
	Timestamp time.Time
}

// Filter selects the events a subscriber receives.
// A zero Filter matches every event.
type Filter struct {
	Tables []string
}

// Matches reports whether event passes the filter.
func (f Filter) Matches(event Event) bool {
	if len(f.Tables) == 0 {
		return true
	}
	return slices.Contains(f.Tables, event.Table)
}
