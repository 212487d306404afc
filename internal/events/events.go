package events

import (
	"context"
	"time"

	"github.com/dmelnik/taskboard-api/internal/domain"
)

// Event types pushed to subscribers on task mutations.
const (
	EventTaskCreated = "task_created"
	EventTaskUpdated = "task_updated"
	EventTaskDeleted = "task_deleted"
)

// TaskEventData is the task snapshot carried by every lifecycle event.
// The timestamp is serialized in RFC 3339 form.
type TaskEventData struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Status      string `json:"status"`
	Description string `json:"description"`
	UpdatedAt   string `json:"updated_at"`
}

// TaskEvent is the wire payload delivered to every subscriber when a task
// mutation succeeds.
type TaskEvent struct {
	Event string        `json:"event"`
	Data  TaskEventData `json:"data"`
}

// NewTaskEvent builds a lifecycle event of the given type from a task
// snapshot. For creates and updates the snapshot is the post-mutation state;
// for deletes it is the state immediately prior to deletion.
func NewTaskEvent(eventType string, task *domain.Task) *TaskEvent {
	return &TaskEvent{
		Event: eventType,
		Data: TaskEventData{
			ID:          task.ID.String(),
			Name:        task.Name,
			Status:      task.Status.String(),
			Description: task.Description,
			UpdatedAt:   task.UpdatedAt.UTC().Format(time.RFC3339),
		},
	}
}

// Broadcaster fans an event out to all currently subscribed connections.
type Broadcaster interface {
	// Broadcast delivers the event to every live subscriber. It is
	// fire-and-forget: individual delivery failures are handled internally
	// and never surfaced to the caller.
	Broadcast(ctx context.Context, event *TaskEvent)
}
