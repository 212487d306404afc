package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmelnik/taskboard-api/internal/domain"
	"github.com/dmelnik/taskboard-api/internal/events"
	"github.com/dmelnik/taskboard-api/internal/mocks"
	"github.com/dmelnik/taskboard-api/internal/service/task_manager"
)

// testEnv wires a handler against the in-memory store and a recording
// broadcaster so tests exercise the full request path below HTTP.
type testEnv struct {
	router      *chi.Mux
	store       *mocks.MemoryTaskStore
	broadcaster *mocks.RecordingBroadcaster
	service     task_manager.TaskService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	taskStore := mocks.NewMemoryTaskStore()
	broadcaster := mocks.NewRecordingBroadcaster()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	service := task_manager.NewTaskService(taskStore, broadcaster, logger)
	handler := NewTaskHandler(service, logger)

	router := chi.NewRouter()
	router.Route("/tasks", func(r chi.Router) {
		r.Get("/", handler.ListTasks)
		r.Post("/", handler.CreateTask)
		r.Get("/{id}", handler.GetTask)
		r.Patch("/{id}", handler.UpdateTask)
		r.Delete("/{id}", handler.DeleteTask)
	})

	return &testEnv{
		router:      router,
		store:       taskStore,
		broadcaster: broadcaster,
		service:     service,
	}
}

func (e *testEnv) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) createTask(t *testing.T, name, description string) TaskResponse {
	t.Helper()

	rec := e.do(t, http.MethodPost, "/tasks", map[string]string{
		"name":        name,
		"description": description,
	})
	require.Equal(t, http.StatusCreated, rec.Code, "body: %s", rec.Body.String())

	var resp TaskResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()

	var resp struct {
		Error string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.Error
}

func TestCreateTaskEndpoint(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/tasks", map[string]string{
		"name":        "Write report",
		"description": "Quarterly summary for the team",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp TaskResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEqual(t, uuid.Nil, resp.ID)
	assert.Equal(t, "Write report", resp.Name)
	assert.Equal(t, "Quarterly summary for the team", resp.Description)
	assert.Equal(t, string(domain.TaskStatusCreated), resp.Status)
	assert.False(t, resp.CreatedAt.IsZero())
	assert.Equal(t, resp.CreatedAt, resp.UpdatedAt)

	// Body shape: exactly the six task fields.
	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &raw))
	assert.Len(t, raw, 6)
	for _, field := range []string{"id", "name", "description", "status", "created_at", "updated_at"} {
		assert.Contains(t, raw, field)
	}

	require.Len(t, env.broadcaster.Events(), 1)
	assert.Equal(t, events.EventTaskCreated, env.broadcaster.Last().Event)
}

func TestCreateTaskRejectsClientStatus(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/tasks", map[string]string{
		"name":        "Sneaky",
		"description": "Tries to pick its own status",
		"status":      "Completed",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, decodeError(t, rec), "status")
	assert.Empty(t, env.broadcaster.Events())
}

func TestCreateTaskRejectsUnknownField(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/tasks", map[string]string{
		"name":        "Task",
		"description": "Body with a stray field",
		"priority":    "high",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, decodeError(t, rec), "priority")
}

func TestCreateTaskValidationFailures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		body map[string]string
	}{
		{"missing name", map[string]string{"description": "no name"}},
		{"empty name", map[string]string{"name": "", "description": "empty name"}},
		{"missing description", map[string]string{"name": "No description"}},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			env := newTestEnv(t)
			rec := env.do(t, http.MethodPost, "/tasks", tc.body)
			assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
			assert.Empty(t, env.broadcaster.Events())
		})
	}
}

func TestCreateTaskDuplicateName(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.createTask(t, "Deploy service", "First")

	rec := env.do(t, http.MethodPost, "/tasks", map[string]string{
		"name":        "DEPLOY SERVICE",
		"description": "Same name, different case",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeError(t, rec), "already exists")
}

func TestGetTaskEndpoint(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	created := env.createTask(t, "Read book", "One chapter a day")

	rec := env.do(t, http.MethodGet, "/tasks/"+created.ID.String(), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp TaskResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, created.ID, resp.ID)
	assert.Equal(t, "Read book", resp.Name)
}

func TestGetTaskNotFound(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/tasks/"+uuid.New().String(), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Task not found", decodeError(t, rec))
}

func TestGetTaskMalformedID(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/tasks/not-a-uuid", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListTasksEndpoint(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	first := env.createTask(t, "Alpha", "first task")
	second := env.createTask(t, "Beta", "second task")

	rec := env.do(t, http.MethodGet, "/tasks", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp []TaskResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp, 2)
	assert.Equal(t, first.ID, resp[0].ID)
	assert.Equal(t, second.ID, resp[1].ID)
}

func TestListTasksFilters(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.createTask(t, "Grocery run", "buy milk and eggs")
	target := env.createTask(t, "Morning workout", "gym session with weights")
	env.createTask(t, "Evening workout", "short run")

	// Substring match on name is case-insensitive.
	rec := env.do(t, http.MethodGet, "/tasks?name=WORKOUT", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp []TaskResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp, 2)

	// Filters combine with AND.
	rec = env.do(t, http.MethodGet, "/tasks?name=workout&description=gym", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	resp = nil
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp, 1)
	assert.Equal(t, target.ID, resp[0].ID)

	// Status filter.
	rec = env.do(t, http.MethodGet, "/tasks?status=Created", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	resp = nil
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp, 3)
}

func TestListTasksRejectsUnknownParam(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/tasks?sort=name", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, decodeError(t, rec), "sort")
}

func TestListTasksRejectsUnknownStatusValue(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/tasks?status=Done", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestUpdateTaskEndpoint(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	created := env.createTask(t, "Refactor", "clean up the storage layer")

	rec := env.do(t, http.MethodPatch, "/tasks/"+created.ID.String(), map[string]string{
		"status": "InProgress",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp TaskResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, string(domain.TaskStatusInProgress), resp.Status)
	assert.Equal(t, "Refactor", resp.Name)
	assert.True(t, resp.UpdatedAt.After(resp.CreatedAt) || resp.UpdatedAt.Equal(resp.CreatedAt))

	require.Len(t, env.broadcaster.Events(), 2)
	assert.Equal(t, events.EventTaskUpdated, env.broadcaster.Last().Event)
}

func TestUpdateTaskInvalidTransition(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	created := env.createTask(t, "Skip ahead", "tries Created -> Completed")

	rec := env.do(t, http.MethodPatch, "/tasks/"+created.ID.String(), map[string]string{
		"status": "Completed",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeError(t, rec), "Created -> Completed")

	// The task is unchanged.
	get := env.do(t, http.MethodGet, "/tasks/"+created.ID.String(), nil)
	var resp TaskResponse
	require.NoError(t, json.Unmarshal(get.Body.Bytes(), &resp))
	assert.Equal(t, string(domain.TaskStatusCreated), resp.Status)
}

func TestUpdateTaskSameStatusRejected(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	created := env.createTask(t, "Steady", "no-op status update")

	rec := env.do(t, http.MethodPatch, "/tasks/"+created.ID.String(), map[string]string{
		"status": "Created",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateTaskUnknownStatusValue(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	created := env.createTask(t, "Status check", "unknown status value")

	rec := env.do(t, http.MethodPatch, "/tasks/"+created.ID.String(), map[string]string{
		"status": "Done",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, decodeError(t, rec), "Done")
}

func TestUpdateTaskUnknownField(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	created := env.createTask(t, "Stray field", "patch with unknown key")

	rec := env.do(t, http.MethodPatch, "/tasks/"+created.ID.String(), map[string]string{
		"owner": "someone",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, decodeError(t, rec), "owner")
}

func TestUpdateTaskDuplicateName(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.createTask(t, "Original", "holds the name")
	other := env.createTask(t, "Other", "wants the name")

	rec := env.do(t, http.MethodPatch, "/tasks/"+other.ID.String(), map[string]string{
		"name": "original",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeError(t, rec), "already exists")
}

func TestUpdateTaskNotFound(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)

	rec := env.do(t, http.MethodPatch, "/tasks/"+uuid.New().String(), map[string]string{
		"name": "ghost",
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteTaskEndpoint(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	created := env.createTask(t, "Ephemeral", "delete me")

	rec := env.do(t, http.MethodDelete, "/tasks/"+created.ID.String(), nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.Bytes())

	get := env.do(t, http.MethodGet, "/tasks/"+created.ID.String(), nil)
	assert.Equal(t, http.StatusNotFound, get.Code)

	require.Len(t, env.broadcaster.Events(), 2)
	last := env.broadcaster.Last()
	assert.Equal(t, events.EventTaskDeleted, last.Event)
	assert.Equal(t, created.ID.String(), last.Data.ID)
}

func TestDeleteTaskNotFound(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)

	rec := env.do(t, http.MethodDelete, "/tasks/"+uuid.New().String(), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestFullStatusLifecycle(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	created := env.createTask(t, "Lifecycle", "walks the whole state machine")

	path := "/tasks/" + created.ID.String()
	for i, status := range []string{"InProgress", "Completed", "InProgress", "Completed"} {
		rec := env.do(t, http.MethodPatch, path, map[string]string{"status": status})
		require.Equal(t, http.StatusOK, rec.Code, fmt.Sprintf("step %d -> %s", i, status))
	}
}
