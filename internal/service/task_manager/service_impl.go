package task_manager

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/dmelnik/taskboard-api/internal/domain"
	"github.com/dmelnik/taskboard-api/internal/events"
	"github.com/dmelnik/taskboard-api/internal/platform/logger"
	"github.com/dmelnik/taskboard-api/internal/store"
)

// Verify interface compliance at compile time
var _ TaskService = (*taskServiceImpl)(nil)

// taskServiceImpl implements the TaskService interface.
type taskServiceImpl struct {
	taskStore   store.TaskStore
	broadcaster events.Broadcaster
	logger      *slog.Logger
}

// NewTaskService creates a new TaskService implementation.
func NewTaskService(
	taskStore store.TaskStore,
	broadcaster events.Broadcaster,
	logger *slog.Logger,
) TaskService {
	// Validate inputs
	if taskStore == nil {
		panic("taskStore cannot be nil")
	}
	if broadcaster == nil {
		panic("broadcaster cannot be nil")
	}

	// Use provided logger or create default
	if logger == nil {
		logger = slog.Default()
	}

	return &taskServiceImpl{
		taskStore:   taskStore,
		broadcaster: broadcaster,
		logger:      logger.With(slog.String("component", "task_service")),
	}
}

// GetTask implements TaskService.GetTask.
func (s *taskServiceImpl) GetTask(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	task, err := s.taskStore.GetByID(ctx, id)
	if err != nil {
		if store.IsNotFoundError(err) {
			log.Debug("task not found", slog.String("task_id", id.String()))
			return nil, ErrTaskNotFound
		}
		log.Error("failed to get task",
			slog.String("error", err.Error()),
			slog.String("task_id", id.String()))
		return nil, fmt.Errorf("failed to get task: %w", err)
	}

	return task, nil
}

// ListTasks implements TaskService.ListTasks.
func (s *taskServiceImpl) ListTasks(
	ctx context.Context,
	filter store.TaskFilter,
) ([]*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if !filter.IsZero() {
		log.Debug("listing tasks with filter",
			slog.String("status", filter.Status.String()),
			slog.String("name", filter.Name),
			slog.String("description", filter.Description))
	}

	tasks, err := s.taskStore.List(ctx, filter)
	if err != nil {
		log.Error("failed to list tasks", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	return tasks, nil
}

// CreateTask implements TaskService.CreateTask.
func (s *taskServiceImpl) CreateTask(
	ctx context.Context,
	name, description string,
) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	task, err := domain.NewTask(name, description)
	if err != nil {
		log.Debug("task validation failed", slog.String("error", err.Error()))
		return nil, err
	}

	// Pre-write uniqueness probe. The unique index on lower(name) backstops
	// the race with a concurrent creator of the same name.
	if err := s.checkUniqueName(ctx, task.Name, uuid.Nil); err != nil {
		return nil, err
	}

	if err := s.taskStore.Create(ctx, task); err != nil {
		if store.IsDuplicateError(err) {
			log.Debug("task name taken by concurrent create",
				slog.String("name", task.Name))
			return nil, ErrDuplicateName
		}
		log.Error("failed to create task",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		return nil, &ServiceError{
			Operation: "create_task",
			Message:   "failed to persist task",
			Err:       err,
		}
	}

	log.Info("task created",
		slog.String("task_id", task.ID.String()),
		slog.String("name", task.Name))

	// Best-effort notification, strictly after the durable write.
	s.broadcaster.Broadcast(ctx, events.NewTaskEvent(events.EventTaskCreated, task))

	return task, nil
}

// UpdateTask implements TaskService.UpdateTask.
func (s *taskServiceImpl) UpdateTask(
	ctx context.Context,
	id uuid.UUID,
	update TaskUpdate,
) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	current, err := s.GetTask(ctx, id)
	if err != nil {
		return nil, err
	}

	// An empty update is a no-op: nothing to persist, nothing to broadcast.
	if update.IsZero() {
		return current, nil
	}

	// All checks run against the committed state before any write; a failure
	// in any of them leaves the task completely unchanged.
	if update.Name != nil && *update.Name != current.Name {
		if err := s.checkUniqueName(ctx, *update.Name, current.ID); err != nil {
			return nil, err
		}
	}

	if update.Status != nil {
		if !current.Status.CanTransitionTo(*update.Status) {
			log.Debug("rejected status transition",
				slog.String("task_id", id.String()),
				slog.String("from", current.Status.String()),
				slog.String("to", update.Status.String()))
			return nil, &InvalidTransitionError{From: current.Status, To: *update.Status}
		}
	}

	updated := *current
	if update.Name != nil {
		updated.Name = *update.Name
	}
	if update.Description != nil {
		updated.Description = *update.Description
	}
	if update.Status != nil {
		updated.Status = *update.Status
	}

	if err := updated.Validate(); err != nil {
		log.Debug("updated task failed validation",
			slog.String("task_id", id.String()),
			slog.String("error", err.Error()))
		return nil, err
	}

	updated.Touch()

	if err := s.taskStore.Update(ctx, &updated); err != nil {
		switch {
		case store.IsNotFoundError(err):
			// Deleted between the load and the write.
			return nil, ErrTaskNotFound
		case store.IsDuplicateError(err):
			return nil, ErrDuplicateName
		}
		log.Error("failed to update task",
			slog.String("error", err.Error()),
			slog.String("task_id", id.String()))
		return nil, &ServiceError{
			Operation: "update_task",
			Message:   "failed to persist task",
			Err:       err,
		}
	}

	log.Info("task updated", slog.String("task_id", id.String()))

	s.broadcaster.Broadcast(ctx, events.NewTaskEvent(events.EventTaskUpdated, &updated))

	return &updated, nil
}

// DeleteTask implements TaskService.DeleteTask.
func (s *taskServiceImpl) DeleteTask(ctx context.Context, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	// Load first: the broadcast payload is built from the state immediately
	// prior to deletion.
	task, err := s.GetTask(ctx, id)
	if err != nil {
		return err
	}

	if err := s.taskStore.Delete(ctx, id); err != nil {
		if store.IsNotFoundError(err) {
			return ErrTaskNotFound
		}
		log.Error("failed to delete task",
			slog.String("error", err.Error()),
			slog.String("task_id", id.String()))
		return &ServiceError{
			Operation: "delete_task",
			Message:   "failed to delete task",
			Err:       err,
		}
	}

	log.Info("task deleted",
		slog.String("task_id", id.String()),
		slog.String("name", task.Name))

	s.broadcaster.Broadcast(ctx, events.NewTaskEvent(events.EventTaskDeleted, task))

	return nil
}

// checkUniqueName returns ErrDuplicateName when another task (excluding
// excludeID) already holds the name under case-insensitive comparison.
func (s *taskServiceImpl) checkUniqueName(
	ctx context.Context,
	name string,
	excludeID uuid.UUID,
) error {
	_, err := s.taskStore.FindIDByName(ctx, name, excludeID)
	if err == nil {
		return ErrDuplicateName
	}
	if store.IsNotFoundError(err) {
		return nil
	}
	return fmt.Errorf("failed to check name uniqueness: %w", err)
}
