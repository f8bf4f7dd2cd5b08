/*
Package chat contains the real-time chat core: live websocket sessions, room
membership, presence fan-out, and date-grouped room history.

This file defines the wire protocol shared with clients: the event envelope,
the inbound payloads, and the Message and DateGroup structures.
*/
package chat

import "encoding/json"

// Client-issued events.
const (
	// EventAnnounce is sent by a client after connecting; the server answers
	// with a presence snapshot to every live connection under the same name.
	EventAnnounce = "new-user"

	// EventJoinRoom binds the connection to a room and requests its history.
	EventJoinRoom = "join-room"

	// EventMessageRoom sends a chat message into a room.
	EventMessageRoom = "message-room"
)

// Server-issued events.
const (
	// EventRoomMessages carries the full date-grouped history of one room.
	EventRoomMessages = "room-messages"

	// EventNotifications carries the name of a room that saw new activity.
	EventNotifications = "notifications"

	// EventError carries a business error back to the connection that
	// triggered it.
	EventError = "error"
)

// Envelope is the frame exchanged over the websocket in both directions.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Message is one persisted chat message. Messages are immutable once written;
// Time and Date are presentation labels supplied by the sending client, with
// Date fixed to the MM/DD/YYYY format.
type Message struct {
	ID      string `json:"id,omitempty"`
	Room    string `json:"to"`
	Content string `json:"content"`
	Sender  string `json:"from"`
	Time    string `json:"time"`
	Date    string `json:"date"`
}

// DateGroup is one calendar day of a room's history: the shared date label and
// the messages carrying it. Groups are derived per request and never stored.
type DateGroup struct {
	Date     string    `json:"date"`
	Messages []Message `json:"messages"`
}

// JoinRoomPayload is the inbound payload of EventJoinRoom. PreviousRoom is
// advisory; the membership manager drops any existing binding on join
// regardless of what the client claims it was.
type JoinRoomPayload struct {
	NewRoom      string `json:"newRoom"`
	PreviousRoom string `json:"previousRoom,omitempty"`
}

// SendMessagePayload is the inbound payload of EventMessageRoom.
type SendMessagePayload struct {
	Room    string `json:"room"`
	Content string `json:"content"`
	Sender  string `json:"sender"`
	Time    string `json:"time"`
	Date    string `json:"date"`
}

// ErrorPayload is the outbound payload of EventError.
type ErrorPayload struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}
