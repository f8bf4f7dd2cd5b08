/*
Package chat contains the real-time chat core: live websocket sessions, room
membership, presence fan-out, and date-grouped room history.

This file defines the Client struct, the production Conn backed by a gorilla
websocket connection. It owns the read and write pumps and dispatches every
inbound event to the Controller as an independent goroutine.
*/
package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"socialnet/internal/pkg/errs"
	"socialnet/internal/pkg/logx"
)

const (
	// timeout for writing to the websocket connection.
	writeWait = 10 * time.Second

	// maximum time the server waits for a Pong from the client.
	pongWait = 60 * time.Second

	// frequency of server Ping messages.
	pingPeriod = (pongWait * 9) / 10

	// maximum allowed size (in bytes) of an inbound frame.
	maxMessageSize = 8192

	// MaxContentBytes caps the text content of a single chat message.
	MaxContentBytes = 5000
)

// Client represents one live websocket connection.
type Client struct {
	// id is the server-assigned connection identifier.
	id string

	// underlying websocket connection.
	conn *websocket.Conn

	// controller handles the events this connection produces.
	controller *Controller

	// send queues outbound frames for the write pump.
	send chan []byte

	// sendMu and closed fence Send against the channel close: a broadcast
	// may race with connection teardown, and sending to a departed
	// connection must be a silent no-op rather than a panic.
	sendMu sync.RWMutex
	closed bool

	// structured logger with connection context.
	logger zerolog.Logger
}

// NewClient constructs a Client for an upgraded connection.
func NewClient(id string, wsConn *websocket.Conn, controller *Controller) *Client {
	clientLogger := logx.Logger().With().
		Str("conn_id", id).
		Logger()

	return &Client{
		id:         id,
		conn:       wsConn,
		controller: controller,
		send:       make(chan []byte, 256),
		logger:     clientLogger,
	}
}

// ID returns the connection identifier.
func (c *Client) ID() string {
	return c.id
}

// ReadPump reads frames from the websocket until the connection dies.
// It maintains the Pong heartbeat and hands every parsed event to the
// controller. Cleanup runs exactly once when the loop exits.
func (c *Client) ReadPump() {
	defer c.cleanupOnDisconnect()

	c.conn.SetReadLimit(maxMessageSize)

	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set read deadline")
		return
	}

	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, messageBytes, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Info().Err(err).Msg("Error reading message (client close/going away)")
			}
			break
		}

		c.processInboundEvent(messageBytes)
	}
}

// cleanupOnDisconnect releases the connection's registrations and closes the
// socket when the read pump terminates.
func (c *Client) cleanupOnDisconnect() {
	c.logger.Info().Msg("Connection cleanup starting.")

	c.controller.Disconnect(c.id)

	c.closeSend()

	if err := c.conn.Close(); err != nil {
		c.logger.Error().Err(err).Msg("Connection close error")
	}
}

// closeSend closes the send channel exactly once, ending the write pump.
func (c *Client) closeSend() {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()

	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

// processInboundEvent parses one frame and dispatches it to the controller.
// Each event runs in its own goroutine: a blocked storage call behind one
// event must not stall the read pump or any other connection.
func (c *Client) processInboundEvent(messageBytes []byte) {
	var envelope Envelope

	if err := json.Unmarshal(messageBytes, &envelope); err != nil {
		c.logger.Warn().Err(err).
			Bytes("message_bytes", messageBytes).
			Msg("Client sent invalid JSON")
		return
	}

	switch envelope.Event {
	case EventAnnounce:
		go c.controller.Announce(context.Background(), c)

	case EventJoinRoom:
		var payload JoinRoomPayload
		if err := json.Unmarshal(envelope.Data, &payload); err != nil {
			c.logger.Warn().Err(err).Msg("Client sent invalid join-room payload")
			c.SendError(errs.NewError(errs.ErrInvalidParams))
			return
		}

		go c.controller.JoinRoom(context.Background(), c, payload)

	case EventMessageRoom:
		var payload SendMessagePayload
		if err := json.Unmarshal(envelope.Data, &payload); err != nil {
			c.logger.Warn().Err(err).Msg("Client sent invalid message-room payload")
			c.SendError(errs.NewError(errs.ErrInvalidParams))
			return
		}

		if len(payload.Content) > MaxContentBytes {
			c.SendError(errs.NewError(errs.ErrMessageContentTooLong))
			return
		}

		go c.controller.SendMessage(context.Background(), c, payload)

	default:
		c.logger.Warn().Str("event", envelope.Event).Msg("Client sent unsupported event")
	}
}

// WritePump writes queued frames to the websocket and keeps the heartbeat
// alive. It exits when the send channel closes or a write fails.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)

	defer func() {
		ticker.Stop()

		if err := c.conn.Close(); err != nil {
			c.logger.Error().Err(err).Msg("Connection close error in WritePump")
		}
	}()

	for {
		select {
		case message, ok := <-c.send:
			if !c.writeQueuedMessage(message, ok) {
				return
			}

		case <-ticker.C:
			if !c.writePingMessage() {
				return
			}
		}
	}
}

// writeQueuedMessage writes one frame pulled from the send channel.
// Returns false when the write pump should terminate.
func (c *Client) writeQueuedMessage(message []byte, ok bool) bool {
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set write deadline")
		return false
	}

	if !ok {
		if err := c.conn.WriteMessage(websocket.CloseMessage, []byte{}); err != nil {
			c.logger.Error().Err(err).Msg("Error writing close message")
		}
		return false
	}

	if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
		c.logger.Error().Err(err).Msg("Error writing message")
		return false
	}

	return true
}

// writePingMessage sends a periodic Ping to keep the connection alive.
// Returns false when the write pump should terminate.
func (c *Client) writePingMessage() bool {
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set write deadline on ping")
		return false
	}

	if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
		c.logger.Error().Err(err).Msg("Error writing ping")
		return false
	}

	return true
}

// Send marshals an event envelope and queues it for the write pump.
// A full queue drops the frame with a warning; the next full history refresh
// restores anything a slow client missed.
func (c *Client) Send(event string, data any) error {
	dataBytes, err := json.Marshal(data)
	if err != nil {
		c.logger.Error().Err(err).Str("event", event).Msg("Error marshaling event data")
		return err
	}

	envelope := Envelope{
		Event: event,
		Data:  dataBytes,
	}

	messageBytes, err := json.Marshal(envelope)
	if err != nil {
		c.logger.Error().Err(err).Str("event", event).Msg("Error marshaling event envelope")
		return err
	}

	c.sendMu.RLock()
	defer c.sendMu.RUnlock()

	if c.closed {
		// The connection is gone; dropping the frame is the contract.
		return nil
	}

	select {
	case c.send <- messageBytes:
		return nil
	default:
		c.logger.Warn().Int("queue_len", len(c.send)).Msg("Client send channel full, dropping message")
		return fmt.Errorf("client send queue full")
	}
}

// SendError queues an error event describing err for this connection.
func (c *Client) SendError(err error) {
	var code int
	var message string

	var customErr *errs.CustomError
	if errors.As(err, &customErr) {
		code = customErr.Code
		message = customErr.Message
	} else {
		code = errs.ErrUnknown
		message = fmt.Sprintf("Internal server error: %v", err)
	}

	payload := ErrorPayload{
		Code:    code,
		Message: message,
	}

	if sendErr := c.Send(EventError, payload); sendErr != nil {
		c.logger.Error().Err(sendErr).Msg("Failed to queue error event")
	}
}
