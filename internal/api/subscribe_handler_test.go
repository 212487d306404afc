package api

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmelnik/taskboard-api/internal/domain"
	"github.com/dmelnik/taskboard-api/internal/events"
	"github.com/dmelnik/taskboard-api/internal/ws"
)

func newSubscribeServer(t *testing.T) (*httptest.Server, *ws.Registry) {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	registry := ws.NewRegistry(logger)
	handler := NewSubscribeHandler(registry, logger)

	router := chi.NewRouter()
	router.Get("/tasks/ws", handler.Subscribe)

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	t.Cleanup(registry.CloseAll)

	return server, registry
}

func dialSubscriber(t *testing.T, server *httptest.Server) *websocket.Conn {
	t.Helper()

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/tasks/ws"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	if resp != nil {
		_ = resp.Body.Close()
	}
	t.Cleanup(func() { _ = conn.Close() })

	return conn
}

// waitForCount polls the registry until it reaches the wanted size;
// registration happens on the server goroutine after the handshake returns
// to the client.
func waitForCount(t *testing.T, registry *ws.Registry, want int) {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if registry.Count() == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("registry never reached %d connections (have %d)", want, registry.Count())
}

func readEvent(t *testing.T, conn *websocket.Conn) events.TaskEvent {
	t.Helper()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, payload, err := conn.ReadMessage()
	require.NoError(t, err)

	var event events.TaskEvent
	require.NoError(t, json.Unmarshal(payload, &event))
	return event
}

func TestSubscribeReceivesBroadcasts(t *testing.T) {
	server, registry := newSubscribeServer(t)

	first := dialSubscriber(t, server)
	second := dialSubscriber(t, server)
	waitForCount(t, registry, 2)

	task, err := domain.NewTask("Broadcast me", "Delivered to every subscriber")
	require.NoError(t, err)

	registry.Broadcast(context.Background(), events.NewTaskEvent(events.EventTaskCreated, task))

	for _, conn := range []*websocket.Conn{first, second} {
		event := readEvent(t, conn)
		assert.Equal(t, events.EventTaskCreated, event.Event)
		assert.Equal(t, task.ID.String(), event.Data.ID)
		assert.Equal(t, "Broadcast me", event.Data.Name)
		assert.Equal(t, "Created", event.Data.Status)
	}
}

func TestSubscribeDisconnectRemovesConnection(t *testing.T) {
	server, registry := newSubscribeServer(t)

	leaving := dialSubscriber(t, server)
	staying := dialSubscriber(t, server)
	waitForCount(t, registry, 2)

	require.NoError(t, leaving.Close())
	waitForCount(t, registry, 1)

	task, err := domain.NewTask("Still delivered", "Survives a peer disconnect")
	require.NoError(t, err)

	registry.Broadcast(context.Background(), events.NewTaskEvent(events.EventTaskUpdated, task))

	event := readEvent(t, staying)
	assert.Equal(t, events.EventTaskUpdated, event.Event)
	assert.Equal(t, task.ID.String(), event.Data.ID)
}
