package mocks

import (
	"context"
	"database/sql"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/dmelnik/taskboard-api/internal/domain"
	"github.com/dmelnik/taskboard-api/internal/store"
)

// MemoryTaskStore implements store.TaskStore backed by an in-memory map.
// It mirrors the PostgreSQL implementation's semantics — case-insensitive
// name uniqueness, creation-order listing, not-found on missing rows — so
// service and API tests exercise the same contract without a database.
type MemoryTaskStore struct {
	mu    sync.RWMutex
	tasks map[uuid.UUID]domain.Task

	// Per-method error overrides for failure-path tests.
	CreateErr error
	GetErr    error
	ListErr   error
	UpdateErr error
	DeleteErr error
}

// Ensure MemoryTaskStore implements store.TaskStore interface
var _ store.TaskStore = (*MemoryTaskStore)(nil)

// NewMemoryTaskStore creates an empty in-memory task store.
func NewMemoryTaskStore() *MemoryTaskStore {
	return &MemoryTaskStore{
		tasks: make(map[uuid.UUID]domain.Task),
	}
}

// Create implements store.TaskStore.Create.
func (s *MemoryTaskStore) Create(ctx context.Context, task *domain.Task) error {
	if s.CreateErr != nil {
		return s.CreateErr
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// The map mutex makes the probe-and-insert atomic, standing in for the
	// unique index on lower(name).
	for _, existing := range s.tasks {
		if existing.NormalizedName() == task.NormalizedName() {
			return store.ErrDuplicateName
		}
	}

	s.tasks[task.ID] = *task
	return nil
}

// GetByID implements store.TaskStore.GetByID.
func (s *MemoryTaskStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	if s.GetErr != nil {
		return nil, s.GetErr
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	task, ok := s.tasks[id]
	if !ok {
		return nil, store.ErrTaskNotFound
	}
	return &task, nil
}

// List implements store.TaskStore.List.
func (s *MemoryTaskStore) List(
	ctx context.Context,
	filter store.TaskFilter,
) ([]*domain.Task, error) {
	if s.ListErr != nil {
		return nil, s.ListErr
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := make([]*domain.Task, 0, len(s.tasks))
	for _, task := range s.tasks {
		if filter.Status != "" && task.Status != filter.Status {
			continue
		}
		if filter.Name != "" &&
			!strings.Contains(task.NormalizedName(), strings.ToLower(filter.Name)) {
			continue
		}
		if filter.Description != "" &&
			!strings.Contains(strings.ToLower(task.Description), strings.ToLower(filter.Description)) {
			continue
		}
		taskCopy := task
		matched = append(matched, &taskCopy)
	}

	sort.Slice(matched, func(i, j int) bool {
		if matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].ID.String() < matched[j].ID.String()
		}
		return matched[i].CreatedAt.Before(matched[j].CreatedAt)
	})

	return matched, nil
}

// Update implements store.TaskStore.Update.
func (s *MemoryTaskStore) Update(ctx context.Context, task *domain.Task) error {
	if s.UpdateErr != nil {
		return s.UpdateErr
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tasks[task.ID]; !ok {
		return store.ErrTaskNotFound
	}

	for id, existing := range s.tasks {
		if id != task.ID && existing.NormalizedName() == task.NormalizedName() {
			return store.ErrDuplicateName
		}
	}

	s.tasks[task.ID] = *task
	return nil
}

// Delete implements store.TaskStore.Delete.
func (s *MemoryTaskStore) Delete(ctx context.Context, id uuid.UUID) error {
	if s.DeleteErr != nil {
		return s.DeleteErr
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tasks[id]; !ok {
		return store.ErrTaskNotFound
	}

	delete(s.tasks, id)
	return nil
}

// FindIDByName implements store.TaskStore.FindIDByName.
func (s *MemoryTaskStore) FindIDByName(
	ctx context.Context,
	name string,
	excludeID uuid.UUID,
) (uuid.UUID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	folded := strings.ToLower(name)
	for id, task := range s.tasks {
		if id == excludeID {
			continue
		}
		if task.NormalizedName() == folded {
			return id, nil
		}
	}

	return uuid.Nil, store.ErrTaskNotFound
}

// WithTx implements store.TaskStore.WithTx. The in-memory store has no
// transactions; it returns itself.
func (s *MemoryTaskStore) WithTx(tx *sql.Tx) store.TaskStore {
	return s
}
