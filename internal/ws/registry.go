package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/dmelnik/taskboard-api/internal/events"
	"github.com/dmelnik/taskboard-api/internal/platform/logger"
)

// Registry tracks the set of currently subscribed connections and delivers
// event payloads to all of them. A connection whose send fails is removed;
// the failure is swallowed so one dead subscriber can never block delivery
// to the rest or signal an error back to the mutating caller.
type Registry struct {
	mu          sync.RWMutex
	connections map[Connection]struct{}
	logger      *slog.Logger
}

// Ensure Registry implements events.Broadcaster
var _ events.Broadcaster = (*Registry)(nil)

// NewRegistry creates an empty connection registry.
// If logger is nil, the process default logger is used.
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}

	return &Registry{
		connections: make(map[Connection]struct{}),
		logger:      logger.With(slog.String("component", "connection_registry")),
	}
}

// Register adds a connection to the live set.
func (r *Registry) Register(conn Connection) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.connections[conn] = struct{}{}
	r.logger.Debug("connection registered",
		slog.Int("connection_count", len(r.connections)))
}

// Unregister removes a connection from the live set if present. Removing an
// absent connection is a no-op, so cleanup may run from both the broadcast
// path and the session's own disconnect path without coordination.
func (r *Registry) Unregister(conn Connection) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.connections[conn]; !ok {
		return
	}

	delete(r.connections, conn)
	r.logger.Debug("connection unregistered",
		slog.Int("connection_count", len(r.connections)))
}

// Count returns the number of live connections.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.connections)
}

// Broadcast implements events.Broadcaster. It marshals the event once and
// delivers it to every connection registered at the time of the call,
// unregistering and closing any connection whose send fails.
//
// Delivery iterates a snapshot of the live set: a connection registered
// mid-broadcast receives nothing for this event, and one unregistered
// mid-broadcast merely wastes a send attempt.
func (r *Registry) Broadcast(ctx context.Context, event *events.TaskEvent) {
	log := logger.FromContextOrDefault(ctx, r.logger)

	payload, err := json.Marshal(event)
	if err != nil {
		log.Error("failed to marshal broadcast event",
			slog.String("event", event.Event),
			slog.String("error", err.Error()))
		return
	}

	r.mu.RLock()
	snapshot := make([]Connection, 0, len(r.connections))
	for conn := range r.connections {
		snapshot = append(snapshot, conn)
	}
	r.mu.RUnlock()

	log.Debug("broadcasting event",
		slog.String("event", event.Event),
		slog.String("task_id", event.Data.ID),
		slog.Int("connection_count", len(snapshot)))

	for _, conn := range snapshot {
		if err := conn.Send(payload); err != nil {
			log.Debug("dropping subscriber after failed send",
				slog.String("event", event.Event),
				slog.String("error", err.Error()))
			r.Unregister(conn)
			_ = conn.Close()
		}
	}
}

// CloseAll unregisters and closes every live connection. Called during
// server shutdown.
func (r *Registry) CloseAll() {
	r.mu.Lock()
	connections := r.connections
	r.connections = make(map[Connection]struct{})
	r.mu.Unlock()

	for conn := range connections {
		_ = conn.Close()
	}

	r.logger.Debug("closed all connections",
		slog.Int("closed_count", len(connections)))
}
