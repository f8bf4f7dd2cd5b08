/*
Package user contains the data structures describing members of the social network.

It defines the User struct carried in presence snapshots and the presence
status values this core is allowed to write.
*/
package user

// Status is the presence flag of a user.
type Status string

const (
	// StatusOnline marks a user with at least one live session.
	StatusOnline Status = "online"

	// StatusOffline marks a user with no live session.
	StatusOffline Status = "offline"
)

// User represents one member of the network as seen by the chat core.
// Profile editing is owned elsewhere; this core only reads these fields and
// updates Status and NewMessages on logout.
type User struct {
	// ID is the unique directory identifier of the user.
	ID string `json:"id"`

	// FirstName and LastName are the display name fields.
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`

	// Status is the presence flag, "online" or "offline".
	Status Status `json:"status"`

	// NewMessages counts messages the user has not read yet.
	NewMessages int `json:"newMessages"`

	// Picture is the avatar image reference, empty when none is set.
	Picture string `json:"picture,omitempty"`
}
