package chat

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"socialnet/internal/app/user"
	"socialnet/internal/pkg/errs"
	"socialnet/internal/pkg/logx"
)

// MessageStore is the persistence capability the chat core needs for messages.
// The store package provides the Postgres implementation; tests use an
// in-memory fake.
type MessageStore interface {
	// Append persists one immutable message and returns its assigned ID.
	Append(ctx context.Context, msg Message) (string, error)

	// ListByRoom returns all persisted messages for a room, in no particular
	// order.
	ListByRoom(ctx context.Context, room string) ([]Message, error)
}

// UserDirectory is the persistence capability the chat core needs for users.
type UserDirectory interface {
	ListAll(ctx context.Context) ([]user.User, error)
	GetByID(ctx context.Context, id string) (user.User, error)
	UpdateStatus(ctx context.Context, id string, status user.Status, newMessages int) error
}

// Controller is the top-level chat session state machine. One instance serves
// every connection; each inbound event runs as its own goroutine, so a slow
// storage call on one connection never blocks another. A failure is reported
// to the connection that triggered it and never tears the connection down.
type Controller struct {
	registry *Registry
	members  *Membership
	messages MessageStore
	users    UserDirectory

	logger zerolog.Logger
}

// NewController wires the chat core together.
func NewController(registry *Registry, members *Membership, messages MessageStore, users UserDirectory) *Controller {
	controllerLogger := logx.Logger().With().Str("component", "Controller").Logger()

	return &Controller{
		registry: registry,
		members:  members,
		messages: messages,
		users:    users,
		logger:   controllerLogger,
	}
}

// Rooms returns the closed room set.
func (ct *Controller) Rooms() []string {
	return ct.members.Rooms()
}

// Register adds a freshly upgraded connection to the live registry.
func (ct *Controller) Register(conn Conn) {
	ct.registry.Add(conn)
}

// Announce handles the announce-self event: a presence snapshot is read from
// the directory and fanned out to every live connection. A directory failure
// is reported to the announcing connection only.
func (ct *Controller) Announce(ctx context.Context, conn Conn) {
	if err := ct.registry.AnnouncePresence(ctx); err != nil {
		conn.SendError(err)
	}
}

// JoinRoom binds the connection to payload.NewRoom and unicasts the room's
// date-grouped history back to it. An unknown room or a storage failure is
// reported to the joining connection; in the unknown-room case the previous
// binding is left untouched.
func (ct *Controller) JoinRoom(ctx context.Context, conn Conn, payload JoinRoomPayload) {
	if err := ct.members.Join(conn.ID(), payload.NewRoom); err != nil {
		ct.logger.Warn().
			Str("conn_id", conn.ID()).
			Str("room", payload.NewRoom).
			Msg("Join rejected: unknown room.")
		conn.SendError(err)
		return
	}

	groups, err := ct.roomHistory(ctx, payload.NewRoom)
	if err != nil {
		conn.SendError(err)
		return
	}

	if err := conn.Send(EventRoomMessages, groups); err != nil {
		ct.logger.Warn().
			Str("conn_id", conn.ID()).
			Str("room", payload.NewRoom).
			Err(err).
			Msg("Failed to deliver room history to joiner.")
	}
}

// SendMessage persists the message, recomputes the room's history, broadcasts
// it to every member of the room, and raises an activity signal for everyone
// else. Nothing is broadcast if the write or the re-read fails; the error goes
// back to the sender alone.
func (ct *Controller) SendMessage(ctx context.Context, conn Conn, payload SendMessagePayload) {
	if !ct.members.Known(payload.Room) {
		conn.SendError(errs.NewError(errs.ErrUnknownRoom))
		return
	}

	if strings.TrimSpace(payload.Content) == "" {
		conn.SendError(errs.NewError(errs.ErrInvalidParams))
		return
	}

	// Reject bad date labels at the door rather than persist a record the
	// aggregator would drop forever.
	if _, err := DateSortKey(payload.Date); err != nil {
		conn.SendError(err)
		return
	}

	msg := Message{
		Room:    payload.Room,
		Content: payload.Content,
		Sender:  payload.Sender,
		Time:    payload.Time,
		Date:    payload.Date,
	}

	if _, err := ct.messages.Append(ctx, msg); err != nil {
		conn.SendError(err)
		return
	}

	groups, err := ct.roomHistory(ctx, payload.Room)
	if err != nil {
		conn.SendError(err)
		return
	}

	members := ct.members.MembersOf(payload.Room)
	ct.registry.Broadcast(members, EventRoomMessages, groups)

	// Room members already received the history; the activity signal goes to
	// everyone else, and never back to the sender.
	exclude := make(map[string]struct{}, len(members)+1)
	for connID := range members {
		exclude[connID] = struct{}{}
	}
	exclude[conn.ID()] = struct{}{}

	ct.registry.NotifyActivity(payload.Room, exclude)
}

// Logout marks the user offline with the given unread count and, on success,
// re-announces presence to every live connection. Presence is not announced
// when the update fails.
func (ct *Controller) Logout(ctx context.Context, userID string, newMessages int) error {
	if err := ct.users.UpdateStatus(ctx, userID, user.StatusOffline, newMessages); err != nil {
		return err
	}

	return ct.registry.AnnouncePresence(ctx)
}

// Disconnect releases everything held for a closed connection. Safe to call
// more than once.
func (ct *Controller) Disconnect(connID string) {
	ct.members.Disconnect(connID)
	ct.registry.Remove(connID)
}

// roomHistory re-reads a room from the store and aggregates it by date.
func (ct *Controller) roomHistory(ctx context.Context, room string) ([]DateGroup, error) {
	messages, err := ct.messages.ListByRoom(ctx, room)
	if err != nil {
		return nil, err
	}

	return Aggregate(messages), nil
}
