/*
Package handler provides the HTTP handlers and routing for the chat server.

This file exposes the static room list.
*/
package handler

import (
	"net/http"

	"socialnet/internal/pkg/resp"
)

// HandleListRooms returns the closed set of room identifiers. The list is
// static configuration; rooms are never created or deleted at runtime.
func HandleListRooms(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp.RespondSuccess(w, r, deps.Controller.Rooms())
	}
}
