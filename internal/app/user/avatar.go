package user

import (
	"path/filepath"
	"strings"
	"time"

	"socialnet/internal/pkg/errs"
)

const (
	// MaxAvatarSizeMB is the maximum allowed avatar size in megabytes.
	MaxAvatarSizeMB = 5

	// MaxAvatarSize is the maximum allowed avatar size in bytes.
	MaxAvatarSize = MaxAvatarSizeMB * 1024 * 1024

	// AvatarKeyPrefix is the object-store prefix under which avatars live.
	AvatarKeyPrefix = "avatars/"

	// PresignedURLDuration is how long a presigned avatar URL stays valid.
	PresignedURLDuration = 5 * time.Minute
)

// allowedAvatarMIMETypes is the set of permitted avatar image types.
var allowedAvatarMIMETypes = map[string]struct{}{
	"image/jpeg": {},
	"image/png":  {},
	"image/webp": {},
	"image/gif":  {},
}

// extToMIME maps image file extensions to their MIME types.
var extToMIME = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".webp": "image/webp",
	".gif":  "image/gif",
}

// ValidateAvatarSize checks that the declared upload size is positive and
// within the limit.
func ValidateAvatarSize(fileSize int64) *errs.CustomError {
	if fileSize <= 0 {
		return errs.NewError(errs.ErrInvalidParams)
	}

	if fileSize > MaxAvatarSize {
		return errs.NewError(errs.ErrAvatarTooLarge)
	}

	return nil
}

// ValidateAvatarType checks that the file name extension and declared MIME
// type agree and are both allowed.
func ValidateAvatarType(fileName string, mimeType string) *errs.CustomError {
	lowerMimeType := strings.ToLower(mimeType)

	if _, ok := allowedAvatarMIMETypes[lowerMimeType]; !ok {
		return errs.NewError(errs.ErrAvatarTypeInvalid)
	}

	ext := strings.ToLower(filepath.Ext(fileName))
	if ext == "" || len(ext) < 2 {
		return errs.NewError(errs.ErrAvatarTypeInvalid)
	}

	expectedMIME, ok := extToMIME[ext]
	if !ok {
		return errs.NewError(errs.ErrAvatarTypeInvalid)
	}

	if expectedMIME != lowerMimeType {
		return errs.NewError(errs.ErrAvatarTypeInvalid)
	}

	return nil
}
