package mocks

import (
	"context"
	"sync"

	"github.com/dmelnik/taskboard-api/internal/events"
)

// RecordingBroadcaster implements events.Broadcaster and records every event
// it receives, for asserting on the persist-then-broadcast contract.
type RecordingBroadcaster struct {
	mu     sync.Mutex
	events []*events.TaskEvent
}

// Ensure RecordingBroadcaster implements events.Broadcaster
var _ events.Broadcaster = (*RecordingBroadcaster)(nil)

// NewRecordingBroadcaster creates an empty recording broadcaster.
func NewRecordingBroadcaster() *RecordingBroadcaster {
	return &RecordingBroadcaster{}
}

// Broadcast implements events.Broadcaster.
func (b *RecordingBroadcaster) Broadcast(ctx context.Context, event *events.TaskEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, event)
}

// Events returns a copy of all recorded events in emission order.
func (b *RecordingBroadcaster) Events() []*events.TaskEvent {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]*events.TaskEvent, len(b.events))
	copy(out, b.events)
	return out
}

// Last returns the most recently recorded event, or nil if none.
func (b *RecordingBroadcaster) Last() *events.TaskEvent {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.events) == 0 {
		return nil
	}
	return b.events[len(b.events)-1]
}
