// Package task_manager enforces the task business rules: field validation,
// case-insensitive name uniqueness, the status transition table, and the
// persist-then-broadcast ordering of every mutation.
package task_manager

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/dmelnik/taskboard-api/internal/domain"
	"github.com/dmelnik/taskboard-api/internal/store"
)

// TaskUpdate is a partial field set applied by UpdateTask. Nil fields are
// left untouched on the stored task.
type TaskUpdate struct {
	Name        *string
	Description *string
	Status      *domain.TaskStatus
}

// IsZero reports whether the update carries no fields.
func (u TaskUpdate) IsZero() bool {
	return u.Name == nil && u.Description == nil && u.Status == nil
}

// TaskService owns task validation and orchestrates persistence and event
// emission as one logical unit: every successful mutation is durably written
// before its lifecycle event is broadcast, and broadcast failures never roll
// back or fail the mutation.
type TaskService interface {
	// GetTask retrieves one task by ID.
	// Returns ErrTaskNotFound if the task does not exist.
	GetTask(ctx context.Context, id uuid.UUID) (*domain.Task, error)

	// ListTasks retrieves all tasks matching the filter in stable creation
	// order. A zero filter returns every task.
	ListTasks(ctx context.Context, filter store.TaskFilter) ([]*domain.Task, error)

	// CreateTask validates the fields, checks name uniqueness
	// (case-insensitive), inserts the task with status Created, and
	// broadcasts a task_created event.
	//
	// Returns ErrDuplicateName if the name collides with an existing task.
	// The uniqueness check and insert are effectively atomic with respect to
	// concurrent creators: the store's unique index on the folded name
	// backstops the pre-write probe, and its violation maps to the same
	// ErrDuplicateName.
	CreateTask(ctx context.Context, name, description string) (*domain.Task, error)

	// UpdateTask applies a partial field set to an existing task.
	//
	// Returns ErrTaskNotFound if the task does not exist. If a name is
	// present, uniqueness is re-checked excluding the task's own ID
	// (ErrDuplicateName on collision). If a status is present, the
	// transition is validated against the allowed-edge table
	// (*InvalidTransitionError naming both statuses on violation). Both
	// checks run before any persistence write; a failure in either leaves
	// the task completely unchanged. On success UpdatedAt is refreshed, the
	// task persisted, and a task_updated event broadcast.
	UpdateTask(ctx context.Context, id uuid.UUID, update TaskUpdate) (*domain.Task, error)

	// DeleteTask removes a task and broadcasts a task_deleted event built
	// from the task's state immediately prior to deletion.
	// Returns ErrTaskNotFound if the task does not exist.
	DeleteTask(ctx context.Context, id uuid.UUID) error
}

// Common error types for TaskService
var (
	// ErrTaskNotFound indicates that the referenced task does not exist.
	ErrTaskNotFound = errors.New("task not found")

	// ErrDuplicateName indicates the requested name is already held by
	// another task under case-insensitive comparison.
	ErrDuplicateName = errors.New("task name already in use")

	// ErrInvalidTransition is the sentinel wrapped by every
	// InvalidTransitionError, for errors.Is checks.
	ErrInvalidTransition = errors.New("invalid status transition")
)

// InvalidTransitionError reports a status change that is not on the
// allowed-edge list, naming both the old and the requested status.
type InvalidTransitionError struct {
	From domain.TaskStatus
	To   domain.TaskStatus
}

// Error implements the error interface for InvalidTransitionError.
func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid status transition: %s -> %s", e.From, e.To)
}

// Unwrap returns ErrInvalidTransition to support errors.Is.
func (e *InvalidTransitionError) Unwrap() error {
	return ErrInvalidTransition
}

// ServiceError wraps errors from the task service with additional context,
// so consumers can differentiate failures with errors.As instead of string
// matching.
type ServiceError struct {
	// Operation is the operation that failed (e.g., "create_task")
	Operation string
	// Message is a human-readable description of the error
	Message string
	// Err is the underlying error that caused the failure
	Err error
}

// Error implements the error interface for ServiceError.
func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s operation failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("%s operation failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ServiceError) Unwrap() error {
	return e.Err
}
