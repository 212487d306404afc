package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/dmelnik/taskboard-api/internal/domain"
)

// TaskFilter narrows the result of TaskStore.List. Zero-valued fields are
// ignored; set fields combine with logical AND. Status matches exactly;
// Name and Description match case-insensitive substrings.
type TaskFilter struct {
	Status      domain.TaskStatus
	Name        string
	Description string
}

// IsZero reports whether the filter matches everything.
func (f TaskFilter) IsZero() bool {
	return f.Status == "" && f.Name == "" && f.Description == ""
}

// TaskStore defines the interface for task data persistence.
type TaskStore interface {
	// Create saves a new task to the store.
	// The task must be valid according to domain validation rules.
	// Returns ErrDuplicateName if another task already holds the same name
	// under case-insensitive comparison. The check is atomic with respect to
	// concurrent creators: the backing store enforces a unique index on the
	// folded name, so at most one of two racing same-name creates succeeds.
	Create(ctx context.Context, task *domain.Task) error

	// GetByID retrieves a task by its unique ID.
	// Returns ErrTaskNotFound if the task does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error)

	// List retrieves all tasks matching the filter, ordered by creation time
	// ascending. A zero filter returns every task.
	List(ctx context.Context, filter TaskFilter) ([]*domain.Task, error)

	// Update persists the full current state of an existing task.
	// Returns ErrTaskNotFound if the task does not exist and ErrDuplicateName
	// if the new name collides with another task's name case-insensitively.
	Update(ctx context.Context, task *domain.Task) error

	// Delete removes a task from the store by its ID.
	// Returns ErrTaskNotFound if the task does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// FindIDByName looks up the ID of the task holding the given name under
	// case-insensitive comparison, skipping excludeID when it is non-nil
	// (so a task may keep its own name on update).
	// Returns ErrTaskNotFound if no task holds the name.
	FindIDByName(ctx context.Context, name string, excludeID uuid.UUID) (uuid.UUID, error)

	// WithTx returns a TaskStore bound to the provided transaction, allowing
	// several operations to execute atomically. The transaction is created and
	// managed by the caller, typically via RunInTransaction.
	WithTx(tx *sql.Tx) TaskStore
}
