package domain

import (
	"time"
)

type CallStatus string

const (
	CallPending CallStatus = "pending"
	CallActive  CallStatus = "active"
	CallEnded   CallStatus = "ended"
	CallFailed  CallStatus = "failed"
)

// Call is the hub's only record of a call attempt. It lives from a validated
// call-request until a terminal transition, when it is dropped entirely.
type Call struct {
	ID         CallID
	CallerID   UserID
	CalleeID   UserID
	CallerName string
	Status     CallStatus
	CreatedAt  time.Time
}

func NewCall(id CallID, callerID, calleeID UserID, callerName string) (*Call, error) {
	if id == "" || callerID == "" || calleeID == "" {
		return nil, ErrInvalidParameters
	}
	if callerID == calleeID {
		return nil, ErrSelfCall
	}
	return &Call{
		ID:         id,
		CallerID:   callerID,
		CalleeID:   calleeID,
		CallerName: callerName,
		Status:     CallPending,
		CreatedAt:  time.Now(),
	}, nil
}

func (c *Call) HasParticipant(id UserID) bool {
	return c.CallerID == id || c.CalleeID == id
}

// Peer returns the other participant of the call. Returns the caller when
// the given id is not a participant at all.
func (c *Call) Peer(id UserID) UserID {
	if c.CallerID == id {
		return c.CalleeID
	}
	return c.CallerID
}
