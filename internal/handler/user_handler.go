/*
Package handler provides the HTTP handlers and routing for the chat server.

This file holds the user-facing boundary operations: logout and the presigned
avatar upload/download URLs.
*/
package handler

import (
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"socialnet/internal/app/user"
	"socialnet/internal/pkg/auth/jwt"
	"socialnet/internal/pkg/errs"
	"socialnet/internal/pkg/req"
	"socialnet/internal/pkg/resp"
)

// LogoutInput is the request body of DELETE /logout.
type LogoutInput struct {
	UserID      string `json:"userId"`
	NewMessages int    `json:"newMessages"`
}

// HandleLogout marks the user offline with the carried unread count and
// re-announces presence to every live connection. The authenticated identity
// must match the user being logged out. Presence is not announced when the
// directory update fails.
func HandleLogout(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := jwt.GetPayloadFromContext(r)
		if identity == nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		var input LogoutInput
		if customErr := req.BindJSON(r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		if input.UserID == "" {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}

		if input.UserID != identity.UserID {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		if input.NewMessages < 0 {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}

		if err := deps.Controller.Logout(r.Context(), input.UserID, input.NewMessages); err != nil {
			var customErr *errs.CustomError
			if errors.As(err, &customErr) {
				resp.RespondError(w, r, customErr)
				return
			}

			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		resp.RespondSuccess(w, r, nil)
	}
}

// PresignAvatarInput is the request body of POST /user/avatar/presign.
type PresignAvatarInput struct {
	FileName string `json:"fileName"`
	MimeType string `json:"mimeType"`
	FileSize int64  `json:"fileSize"`
}

// HandlePresignAvatarUpload validates the declared file and returns a
// time-limited presigned upload URL under the avatars/ prefix.
func HandlePresignAvatarUpload(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := jwt.GetPayloadFromContext(r)
		if identity == nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		if deps.StorageService == nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrAvatarStorageFailed))
			return
		}

		var input PresignAvatarInput
		if customErr := req.BindJSON(r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		if customErr := user.ValidateAvatarSize(input.FileSize); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		if customErr := user.ValidateAvatarType(input.FileName, input.MimeType); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		fileExt := strings.ToLower(filepath.Ext(input.FileName))
		fileKey := fmt.Sprintf("%s%s%s", user.AvatarKeyPrefix, uuid.New().String(), fileExt)

		url, err := deps.StorageService.PresignUpload(
			r.Context(),
			fileKey,
			input.MimeType,
			input.FileSize,
			user.PresignedURLDuration,
		)

		if err != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrAvatarStorageFailed))
			return
		}

		data := map[string]any{
			"presignedUrl": url,
			"fileKey":      fileKey,
		}
		resp.RespondSuccess(w, r, data)
	}
}

// HandlePresignAvatarDownload redirects to a presigned download URL for an
// avatar key.
func HandlePresignAvatarDownload(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := jwt.GetPayloadFromContext(r)
		if identity == nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		if deps.StorageService == nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrAvatarStorageFailed))
			return
		}

		fileKey := r.URL.Query().Get("k")
		if fileKey == "" {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}

		if !strings.HasPrefix(fileKey, user.AvatarKeyPrefix) {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		url, err := deps.StorageService.PresignDownload(
			r.Context(),
			fileKey,
			user.PresignedURLDuration,
		)

		if err != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrAvatarStorageFailed))
			return
		}

		http.Redirect(w, r, url, http.StatusFound)
	}
}
