/*
Package errs defines the application error type and its business codes.

errorMap binds every code to its user message and HTTP status. A zero status
means 200 OK; errors carried over the websocket ignore the status entirely.
*/
package errs

import "net/http"

var errorMap = map[int]CustomError{
	// 1xxx: General Request Handling Errors
	ErrInvalidParams:         {Code: ErrInvalidParams, Message: "Invalid request parameters.", Status: http.StatusBadRequest},
	ErrUnsupportedMediaType:  {Code: ErrUnsupportedMediaType, Message: "Unsupported request format.", Status: http.StatusUnsupportedMediaType},
	ErrInvalidJSONFormat:     {Code: ErrInvalidJSONFormat, Message: "Unsupported request format.", Status: http.StatusBadRequest},
	ErrExtraContentInBody:    {Code: ErrExtraContentInBody, Message: "Request contains unexpected data.", Status: http.StatusBadRequest},
	ErrRequestEntityTooLarge: {Code: ErrRequestEntityTooLarge, Message: "Request size is too large.", Status: http.StatusRequestEntityTooLarge},
	ErrRateLimitExceeded:     {Code: ErrRateLimitExceeded, Message: "Too many requests. Please try again later.", Status: http.StatusTooManyRequests},

	// 2xxx: Room, Message, and Avatar Business Logic Errors
	ErrUnknownRoom:           {Code: ErrUnknownRoom, Message: "Unknown chat room."},
	ErrMessageContentTooLong: {Code: ErrMessageContentTooLong, Message: "Message is too long."},
	ErrMalformedDate:         {Code: ErrMalformedDate, Message: "Message date must be MM/DD/YYYY."},
	ErrAvatarTypeInvalid:     {Code: ErrAvatarTypeInvalid, Message: "Unsupported image type.", Status: http.StatusBadRequest},
	ErrAvatarTooLarge:        {Code: ErrAvatarTooLarge, Message: "Image is too large.", Status: http.StatusBadRequest},
	ErrAvatarStorageFailed:   {Code: ErrAvatarStorageFailed, Message: "Image upload failed. Please try again.", Status: http.StatusBadGateway},

	// 3xxx: User and Session Errors
	ErrUnauthorized: {Code: ErrUnauthorized, Message: "Please sign in to continue.", Status: http.StatusUnauthorized},
	ErrUserNotFound: {Code: ErrUserNotFound, Message: "Account not found.", Status: http.StatusNotFound},

	// 5xxx: Internal System Errors
	ErrUnknown: {Code: ErrUnknown, Message: "Something went wrong. Please try again.", Status: http.StatusInternalServerError},
	ErrStorage: {Code: ErrStorage, Message: "Chat storage is temporarily unavailable.", Status: http.StatusInternalServerError},
}
