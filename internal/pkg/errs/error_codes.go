/*
Package errs defines the application error type and its business codes.

Codes identify specific failures both inside the server and in payloads
delivered to clients over REST and websocket.
*/
package errs

// 1xxx: General Request Handling Errors
const (
	// ErrInvalidParams indicates that request parameter validation failed.
	ErrInvalidParams = 1001

	// ErrUnsupportedMediaType indicates that the request Content-Type is not supported.
	ErrUnsupportedMediaType = 1002

	// ErrInvalidJSONFormat indicates that the request body is not valid JSON.
	ErrInvalidJSONFormat = 1003

	// ErrExtraContentInBody indicates trailing content after the JSON document.
	ErrExtraContentInBody = 1004

	// ErrRequestEntityTooLarge indicates that the request body exceeded the server limit.
	ErrRequestEntityTooLarge = 1006

	// ErrRateLimitExceeded indicates that the request rate exceeded the configured limit.
	ErrRateLimitExceeded = 1007
)

// 2xxx: Room, Message, and Avatar Business Logic Errors
const (
	// ErrUnknownRoom indicates a room identifier outside the configured room set.
	ErrUnknownRoom = 2101

	// ErrMessageContentTooLong indicates that message content exceeded the length limit.
	ErrMessageContentTooLong = 2201

	// ErrMalformedDate indicates a message date label that does not parse as MM/DD/YYYY.
	ErrMalformedDate = 2202

	// ErrAvatarTypeInvalid indicates an avatar upload with a disallowed file type.
	ErrAvatarTypeInvalid = 2301

	// ErrAvatarTooLarge indicates an avatar upload exceeding the size limit.
	ErrAvatarTooLarge = 2302

	// ErrAvatarStorageFailed indicates that the avatar storage backend rejected the operation.
	ErrAvatarStorageFailed = 2303
)

// 3xxx: User and Session Errors
const (
	// ErrUnauthorized indicates a missing or invalid identity token.
	ErrUnauthorized = 3001

	// ErrUserNotFound indicates that the referenced user does not exist in the directory.
	ErrUserNotFound = 3101
)

// 5xxx: Internal System Errors
const (
	// ErrUnknown represents an unclassified internal server error.
	ErrUnknown = 5000

	// ErrStorage indicates that chat persistence failed (read or write).
	ErrStorage = 5001
)
