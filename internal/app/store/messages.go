/*
Package store provides the PostgreSQL persistence adapters behind the chat
core's storage interfaces.

Failures are logged with their underlying cause and surfaced to callers as
the application's business error codes, so one connection's storage trouble
never leaks driver details to clients.
*/
package store

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"socialnet/internal/app/chat"
	"socialnet/internal/pkg/errs"
	"socialnet/internal/pkg/logx"
	"socialnet/internal/pkg/randx"
)

// MessageStore persists chat messages in Postgres. It implements
// chat.MessageStore and is safe for concurrent use; the pool serializes
// nothing beyond individual statements, which matches the read-committed
// contract of the chat core.
type MessageStore struct {
	pool *pgxpool.Pool
}

// NewMessageStore returns a MessageStore over the given pool.
func NewMessageStore(pool *pgxpool.Pool) *MessageStore {
	return &MessageStore{pool: pool}
}

// Append persists one immutable message and returns its assigned ID.
func (s *MessageStore) Append(ctx context.Context, msg chat.Message) (string, error) {
	id := randx.MessageID()

	_, err := s.pool.Exec(ctx, `
		INSERT INTO messages (id, room, content, sender, time_label, date_label)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, id, msg.Room, msg.Content, msg.Sender, msg.Time, msg.Date)

	if err != nil {
		logx.Error(err, "Message append failed", "room", msg.Room)
		return "", errs.NewError(errs.ErrStorage)
	}

	return id, nil
}

// ListByRoom returns all persisted messages for a room. Order is whatever the
// database yields; the history aggregator imposes its own ordering.
func (s *MessageStore) ListByRoom(ctx context.Context, room string) ([]chat.Message, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, room, content, sender, time_label, date_label
		FROM messages WHERE room = $1
	`, room)
	if err != nil {
		logx.Error(err, "Message list failed", "room", room)
		return nil, errs.NewError(errs.ErrStorage)
	}
	defer rows.Close()

	var messages []chat.Message
	for rows.Next() {
		var m chat.Message
		if err := rows.Scan(&m.ID, &m.Room, &m.Content, &m.Sender, &m.Time, &m.Date); err != nil {
			logx.Error(err, "Message row scan failed", "room", room)
			return nil, errs.NewError(errs.ErrStorage)
		}
		messages = append(messages, m)
	}

	if err := rows.Err(); err != nil {
		logx.Error(err, "Message rows iteration failed", "room", room)
		return nil, errs.NewError(errs.ErrStorage)
	}

	return messages, nil
}
