/*
Package handler provides the HTTP handlers and routing for the chat server.

This file upgrades HTTP connections to websocket and starts the client pumps.
*/
package handler

import (
	"net"
	"net/http"

	"github.com/gorilla/websocket"

	"socialnet/internal/app/chat"
	"socialnet/internal/pkg/errs"
	"socialnet/internal/pkg/limiter"
	"socialnet/internal/pkg/logx"
	"socialnet/internal/pkg/randx"
	"socialnet/internal/pkg/resp"
)

// HandleWebSocket rate-limits, upgrades, and registers a new live connection.
// The connection starts in the Connected state with no room bound; everything
// after the upgrade is driven by client events through the controller.
func HandleWebSocket(upgrader websocket.Upgrader, rateLimiter *limiter.IPRateLimiter, deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ip, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			ip = r.RemoteAddr
		}

		if ip == "" {
			ip = "unknown_ip"
		}

		if !rateLimiter.GetLimiter(ip).Allow() {
			logx.Warn("WebSocket connection rejected: Rate limit exceeded.", "ip", ip)
			resp.RespondError(w, r, errs.NewError(errs.ErrRateLimitExceeded))
			return
		}

		connID, err := randx.ConnectionID()
		if err != nil {
			logx.Error(err, "Failed to generate connection ID")
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logx.Error(err, "Failed to upgrade connection to WebSocket")
			return
		}

		client := chat.NewClient(connID, conn, deps.Controller)

		go client.WritePump()

		deps.Controller.Register(client)

		logx.Info("WebSocket connection established", "conn_id", connID)

		client.ReadPump()
	}
}
