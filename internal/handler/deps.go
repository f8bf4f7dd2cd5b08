package handler

import (
	"socialnet/internal/app/chat"
	"socialnet/internal/app/storage"
	"socialnet/internal/configs"
)

// AppDeps bundles the dependencies the HTTP layer hands to its handlers.
type AppDeps struct {
	Controller *chat.Controller
	Config     *configs.AppConfig

	// StorageService is nil when avatar storage is not configured.
	StorageService storage.StorageService
}
