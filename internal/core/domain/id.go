package domain

import (
	"github.com/google/uuid"
)

// UserID is the stable identifier handed to us by the identity provider.
// It is an external key, never minted here.
type UserID string

// CallID is the caller-supplied identifier of a single call attempt.
type CallID string

// ConnID identifies one live transport connection.
type ConnID string

func NewConnID() ConnID {
	return ConnID(uuid.New().String())
}

func (id UserID) String() string {
	return string(id)
}

func (id CallID) String() string {
	return string(id)
}

func (id ConnID) String() string {
	return string(id)
}
