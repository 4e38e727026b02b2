// Package domain holds identifier types shared across modules. Keeping them
// here avoids import cycles between the reputation, credential, and
// attestation packages, which all reference the same user identity.
package domain

import (
	"strings"

	"github.com/google/uuid"
)

// UserID identifies a marketplace participant (buyer, seller, or verifier).
type UserID struct {
	value uuid.UUID
}

// NewUserID generates a fresh random user ID.
func NewUserID() UserID {
	return UserID{value: uuid.New()}
}

// ParseUserID validates and parses a user ID string.
func ParseUserID(s string) (UserID, error) {
	parsed, err := uuid.Parse(strings.TrimSpace(s))
	if err != nil {
		return UserID{}, err
	}
	return UserID{value: parsed}, nil
}

// IsNil reports whether the ID is the zero value.
func (id UserID) IsNil() bool {
	return id.value == uuid.Nil
}

// String returns the canonical string form of the ID.
func (id UserID) String() string {
	return id.value.String()
}

// MarshalText implements encoding.TextMarshaler for JSON responses.
func (id UserID) MarshalText() ([]byte, error) {
	return []byte(id.value.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler for JSON requests.
func (id *UserID) UnmarshalText(text []byte) error {
	parsed, err := ParseUserID(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}
