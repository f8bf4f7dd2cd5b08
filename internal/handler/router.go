/*
Package handler provides the HTTP handlers and routing for the chat server.

This file defines the main Router, applying logging, CORS, and IP-based rate
limiting before delegating to the REST and websocket handlers.
*/
package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/rs/cors"
	"golang.org/x/time/rate"

	"socialnet/internal/pkg/auth/jwt"
	"socialnet/internal/pkg/limiter"
	"socialnet/internal/pkg/logx"
	"socialnet/internal/pkg/resp"
)

const (
	// ConnectRate limits websocket upgrades per IP.
	ConnectRate  = 0.5
	ConnectBurst = 5

	// LogoutRate limits logout calls per IP.
	LogoutRate  = 0.2
	LogoutBurst = 3
)

// Router builds the routing table: global middleware, the REST endpoints, and
// the websocket upgrade route.
func Router(deps *AppDeps) http.Handler {
	connectLimiter := limiter.NewIPRateLimiter(rate.Limit(ConnectRate), ConnectBurst)
	logoutLimiter := limiter.NewIPRateLimiter(rate.Limit(LogoutRate), LogoutBurst)

	r := chi.NewRouter()

	allowedOrigins := make(map[string]struct{})
	for _, origin := range deps.Config.AllowedOrigins {
		allowedOrigins[origin] = struct{}{}
	}

	wsUpgrader := websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin: func(r *http.Request) bool {
			if deps.Config.Environment == "development" {
				return true
			}

			origin := r.Header.Get("Origin")
			if _, ok := allowedOrigins[origin]; ok {
				return true
			}

			logx.Warn("WebSocket connection rejected: Origin not allowed.", "origin", origin)
			return false
		},
	}

	corsAllowedOrigins := []string{}
	if deps.Config.Environment == "development" {
		corsAllowedOrigins = []string{"*"}
	} else if len(deps.Config.AllowedOrigins) > 0 {
		corsAllowedOrigins = deps.Config.AllowedOrigins
	}

	c := cors.New(cors.Options{
		AllowedOrigins:   corsAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{},
		AllowCredentials: true,
		MaxAge:           300,
	})
	r.Use(c.Handler)

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logx.RequestLogger())
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		data := map[string]string{
			"status":  "ok",
			"service": "socialnet chat server",
		}
		resp.RespondSuccess(w, r, data)
	})

	r.Get("/rooms", HandleListRooms(deps))

	r.Group(func(api chi.Router) {
		api.Use(jwt.IdentityExtractorMiddleware(deps.Config.JWTSecret))

		rateLimitedLogout := logoutLimiter.Middleware(HandleLogout(deps))
		api.Delete("/logout", rateLimitedLogout.ServeHTTP)

		api.Post("/user/avatar/presign", HandlePresignAvatarUpload(deps))
		api.Get("/user/avatar/download", HandlePresignAvatarDownload(deps))
	})

	r.Get("/ws", HandleWebSocket(wsUpgrader, connectLimiter, deps))

	return r
}
