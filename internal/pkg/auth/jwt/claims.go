package jwt

import "github.com/golang-jwt/jwt"

// Payload defines the claims carried by a user identity token.
// Tokens are issued by the external auth service with the shared secret;
// this core only validates them at the REST boundary.
type Payload struct {
	// StandardClaims embeds Exp, Iat, and Iss, required for validity checks.
	jwt.StandardClaims `json:"standard_claims"`

	// UserID is the directory identifier of the authenticated user.
	UserID string `json:"userId"`
}
