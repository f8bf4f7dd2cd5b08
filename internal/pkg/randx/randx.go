/*
Package randx generates cryptographically secure random identifiers.

It produces the Base62 connection identifiers used to key live websocket
sessions, and UUID message identifiers.
*/
package randx

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"

	"github.com/google/uuid"
)

const (
	// Base62Chars is the character set used for Base62 encoding (0-9, A-Z, a-z).
	Base62Chars = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

	// Base62Len is the number of characters in the Base62 set.
	Base62Len = int64(len(Base62Chars))

	// ConnIDPrefix marks identifiers assigned to live connections.
	ConnIDPrefix = "conn_"

	// ConnIDRawLength is the length of the random part of a connection ID.
	ConnIDRawLength = 10
)

// ConnectionID generates a connection identifier of the form "conn_<10 Base62 chars>"
// using crypto/rand. Connection IDs are assigned server-side at upgrade time and
// are never reused for the lifetime of the process.
func ConnectionID() (string, error) {
	result := make([]byte, ConnIDRawLength)

	for i := range ConnIDRawLength {
		num, err := rand.Int(rand.Reader, big.NewInt(Base62Len))
		if err != nil {
			return "", fmt.Errorf("failed to generate random number for connection id: %v", err)
		}

		result[i] = Base62Chars[num.Int64()]
	}

	return ConnIDPrefix + string(result), nil
}

// MessageID generates a UUID v4 string used as a message primary key.
func MessageID() string {
	return uuid.New().String()
}

// IsValidConnectionID checks the prefix, length, and character set of id.
func IsValidConnectionID(id string) bool {
	if !strings.HasPrefix(id, ConnIDPrefix) {
		return false
	}

	rawID := id[len(ConnIDPrefix):]

	if len(rawID) != ConnIDRawLength {
		return false
	}

	for _, char := range rawID {
		if !strings.ContainsRune(Base62Chars, char) {
			return false
		}
	}

	return true
}
