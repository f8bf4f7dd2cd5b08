package chat

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"socialnet/internal/pkg/logx"
)

// Conn is one live client connection able to receive server events.
// *Client is the production implementation; tests substitute in-memory fakes.
type Conn interface {
	// ID returns the connection identifier.
	ID() string

	// Send queues an event for delivery. Delivery to a connection that is
	// gone or has a full queue is dropped, never an error that propagates.
	Send(event string, data any) error

	// SendError queues an error event for delivery.
	SendError(err error)
}

// Registry is the process-wide view of live connections. It fans presence
// snapshots out to everyone and routes targeted broadcasts for the session
// controller. Connections register at upgrade time and are removed on
// transport close.
type Registry struct {
	mu sync.RWMutex

	// conns maps connection ID to the live connection.
	conns map[string]Conn

	// users is the directory read for presence snapshots.
	users UserDirectory

	logger zerolog.Logger
}

// NewRegistry builds a Registry over the given user directory.
func NewRegistry(users UserDirectory) *Registry {
	registryLogger := logx.Logger().With().Str("component", "Registry").Logger()

	return &Registry{
		conns:  make(map[string]Conn),
		users:  users,
		logger: registryLogger,
	}
}

// Add registers a live connection.
func (reg *Registry) Add(conn Conn) {
	reg.mu.Lock()
	reg.conns[conn.ID()] = conn
	count := len(reg.conns)
	reg.mu.Unlock()

	reg.logger.Info().
		Str("conn_id", conn.ID()).
		Int("total_connections", count).
		Msg("Connection registered.")
}

// Remove drops a connection from the registry. Removing an unknown ID is a
// no-op.
func (reg *Registry) Remove(connID string) {
	reg.mu.Lock()
	delete(reg.conns, connID)
	count := len(reg.conns)
	reg.mu.Unlock()

	reg.logger.Info().
		Str("conn_id", connID).
		Int("total_connections", count).
		Msg("Connection removed.")
}

// AnnouncePresence reads the full user directory and sends the snapshot to
// every live connection. It returns the directory error, if any; fan-out
// itself cannot fail.
func (reg *Registry) AnnouncePresence(ctx context.Context) error {
	users, err := reg.users.ListAll(ctx)
	if err != nil {
		reg.logger.Error().Err(err).Msg("Presence snapshot aborted: directory read failed.")
		return err
	}

	reg.broadcast(nil, EventAnnounce, users)
	return nil
}

// NotifyActivity sends a room-name-only activity signal to every live
// connection not in the exclude set. The payload carries no message content;
// clients use it to raise unread indicators for rooms they are not viewing.
func (reg *Registry) NotifyActivity(room string, exclude map[string]struct{}) {
	reg.broadcastExcept(exclude, EventNotifications, room)
}

// Broadcast sends an event to exactly the connections named in targets.
// Targets that are no longer registered are skipped silently; a departed
// connection missing a broadcast is expected, not an error.
func (reg *Registry) Broadcast(targets map[string]struct{}, event string, data any) {
	reg.broadcast(targets, event, data)
}

// broadcast delivers to the targets set, or to every connection when targets
// is nil.
func (reg *Registry) broadcast(targets map[string]struct{}, event string, data any) {
	reg.mu.RLock()
	defer reg.mu.RUnlock()

	for connID, conn := range reg.conns {
		if targets != nil {
			if _, ok := targets[connID]; !ok {
				continue
			}
		}

		if err := conn.Send(event, data); err != nil {
			reg.logger.Warn().
				Str("conn_id", connID).
				Str("event", event).
				Err(err).
				Msg("Dropped broadcast to connection.")
		}
	}
}

// broadcastExcept delivers to every connection not named in exclude.
func (reg *Registry) broadcastExcept(exclude map[string]struct{}, event string, data any) {
	reg.mu.RLock()
	defer reg.mu.RUnlock()

	for connID, conn := range reg.conns {
		if _, ok := exclude[connID]; ok {
			continue
		}

		if err := conn.Send(event, data); err != nil {
			reg.logger.Warn().
				Str("conn_id", connID).
				Str("event", event).
				Err(err).
				Msg("Dropped broadcast to connection.")
		}
	}
}
