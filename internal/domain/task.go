package domain

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// Task field length bounds enforced by Validate.
const (
	MinTaskNameLength = 1
	MaxTaskNameLength = 100

	MinTaskDescriptionLength = 1
	MaxTaskDescriptionLength = 1000
)

// Task-specific validation errors. Each wraps ErrValidation so callers can
// classify them with a single errors.Is check.
var (
	// ErrTaskIDEmpty is returned when a task ID is empty or nil.
	ErrTaskIDEmpty = fmt.Errorf("%w: task ID cannot be empty", ErrValidation)

	// ErrTaskNameEmpty is returned when a task's name is empty.
	ErrTaskNameEmpty = fmt.Errorf("%w: task name cannot be empty", ErrValidation)

	// ErrTaskNameTooLong is returned when a task's name exceeds the length bound.
	ErrTaskNameTooLong = fmt.Errorf(
		"%w: task name cannot exceed %d characters", ErrValidation, MaxTaskNameLength)

	// ErrTaskDescriptionEmpty is returned when a task's description is empty.
	ErrTaskDescriptionEmpty = fmt.Errorf("%w: task description cannot be empty", ErrValidation)

	// ErrTaskDescriptionTooLong is returned when a task's description exceeds
	// the length bound.
	ErrTaskDescriptionTooLong = fmt.Errorf(
		"%w: task description cannot exceed %d characters", ErrValidation, MaxTaskDescriptionLength)

	// ErrTaskStatusInvalid is returned when a task's status is not one of the
	// known enum values.
	ErrTaskStatusInvalid = fmt.Errorf("%w: invalid task status", ErrValidation)
)

// TaskStatus represents the lifecycle state of a task.
type TaskStatus string

// Valid task statuses. A task starts as Created and moves along the edges
// defined in statusTransitions.
const (
	TaskStatusCreated    TaskStatus = "Created"
	TaskStatusInProgress TaskStatus = "InProgress"
	TaskStatusCompleted  TaskStatus = "Completed"
)

// statusTransitions is the set of permitted status edges. Any (old, new) pair
// not listed here, including a same-status update, is rejected.
var statusTransitions = map[TaskStatus][]TaskStatus{
	TaskStatusCreated:    {TaskStatusInProgress},
	TaskStatusInProgress: {TaskStatusCompleted},
	TaskStatusCompleted:  {TaskStatusInProgress},
}

// IsValid reports whether s is one of the known task statuses.
func (s TaskStatus) IsValid() bool {
	switch s {
	case TaskStatusCreated, TaskStatusInProgress, TaskStatusCompleted:
		return true
	}
	return false
}

// String returns the canonical string form of the status.
func (s TaskStatus) String() string {
	return string(s)
}

// CanTransitionTo reports whether the status may move from s to next.
func (s TaskStatus) CanTransitionTo(next TaskStatus) bool {
	for _, allowed := range statusTransitions[s] {
		if next == allowed {
			return true
		}
	}
	return false
}

// ParseTaskStatus converts a string into a TaskStatus.
// Returns ErrTaskStatusInvalid if the value is not a known status.
func ParseTaskStatus(value string) (TaskStatus, error) {
	s := TaskStatus(value)
	if !s.IsValid() {
		return "", fmt.Errorf("%w: %q (expected one of %s)",
			ErrTaskStatusInvalid, value, strings.Join(TaskStatusValues(), ", "))
	}
	return s, nil
}

// TaskStatusValues returns the canonical status strings in lifecycle order.
func TaskStatusValues() []string {
	return []string{
		string(TaskStatusCreated),
		string(TaskStatusInProgress),
		string(TaskStatusCompleted),
	}
}

// Task represents one tracked unit of work. Names are unique across all tasks
// when compared case-insensitively; that invariant is enforced by the service
// and backed by a unique index on lower(name) in the store.
type Task struct {
	ID          uuid.UUID  `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Status      TaskStatus `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// NewTask creates a new Task with the given name and description.
// It generates a new UUID for the task ID, sets the status to Created,
// and stamps the creation/update timestamps.
// Returns an error if validation fails.
func NewTask(name, description string) (*Task, error) {
	now := time.Now().UTC()
	task := &Task{
		ID:          uuid.New(),
		Name:        name,
		Description: description,
		Status:      TaskStatusCreated,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := task.Validate(); err != nil {
		return nil, err
	}

	return task, nil
}

// Validate checks if the Task has valid data.
// Returns an error if any field fails validation.
func (t *Task) Validate() error {
	if t.ID == uuid.Nil {
		return ErrTaskIDEmpty
	}

	// Bounds count characters, not bytes: the varchar(100) column and the
	// request validator both count runes, and names are routinely non-ASCII.
	nameLen := utf8.RuneCountInString(t.Name)
	if nameLen < MinTaskNameLength {
		return ErrTaskNameEmpty
	}

	if nameLen > MaxTaskNameLength {
		return ErrTaskNameTooLong
	}

	descriptionLen := utf8.RuneCountInString(t.Description)
	if descriptionLen < MinTaskDescriptionLength {
		return ErrTaskDescriptionEmpty
	}

	if descriptionLen > MaxTaskDescriptionLength {
		return ErrTaskDescriptionTooLong
	}

	if !t.Status.IsValid() {
		return ErrTaskStatusInvalid
	}

	return nil
}

// NormalizedName returns the name folded for case-insensitive comparison.
// The store's uniqueness probe and the unique index both compare this form.
func (t *Task) NormalizedName() string {
	return strings.ToLower(t.Name)
}

// Touch refreshes the UpdatedAt timestamp. Called by the service after a
// successful field application, immediately before persisting.
func (t *Task) Touch() {
	t.UpdatedAt = time.Now().UTC()
}
