package domain

import (
	"encoding/json"
)

// Wire event names, client->hub and hub->client.
const (
	EventRegister         = "register"
	EventUserOnline       = "user-online"
	EventUserOffline      = "user-offline"
	EventCallRequest      = "call-request"
	EventIncomingCall     = "incoming-call"
	EventCallRinging      = "call-ringing"
	EventCallAccepted     = "call-accepted"
	EventCallRejected     = "call-rejected"
	EventCallEnd          = "call-end"
	EventCallNotAvailable = "call-not-available"
	EventCallFailed       = "call-failed"
	EventCallEnded        = "call-ended"
	EventError            = "error"
)

// Failure and termination reasons carried in call-not-available, call-failed
// and call-ended payloads.
const (
	ReasonUserOffline       = "user-offline"
	ReasonUserBusy          = "user-busy"
	ReasonInvalidParameters = "invalid-parameters"
	ReasonSelfCall          = "self-call"
	ReasonCallNotFound      = "call-not-found"
	ReasonInvalidState      = "invalid-state"
	ReasonCallerUnavailable = "caller-unavailable"
	ReasonTimeout           = "timeout"
	ReasonUserEnded         = "user-ended"
	ReasonUserDisconnected  = "user-disconnected"
)

// Envelope is the JSON frame exchanged on the wire.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

func NewEnvelope(event string, payload any) (Envelope, error) {
	if payload == nil {
		return Envelope{Event: event}, nil
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{Event: event, Data: data}, nil
}

func (e Envelope) Decode(v any) error {
	if len(e.Data) == 0 {
		return ErrInvalidParameters
	}
	return json.Unmarshal(e.Data, v)
}

type RegisterPayload struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
}

type PresencePayload struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
}

type CallRequestPayload struct {
	CallID     string `json:"callId"`
	CalleeID   string `json:"calleeId"`
	CallerName string `json:"callerName"`
}

type IncomingCallPayload struct {
	CallID     string `json:"callId"`
	CallerID   string `json:"callerId"`
	CallerName string `json:"callerName"`
}

type CallRingingPayload struct {
	CallID string `json:"callId"`
}

// CallAnswerPayload is shared by call-accepted and call-rejected, both the
// client->hub request and the hub->caller notification.
type CallAnswerPayload struct {
	CallID   string `json:"callId"`
	CallerID string `json:"callerId,omitempty"`
	CalleeID string `json:"calleeId,omitempty"`
}

type CallEndPayload struct {
	CallID string `json:"callId"`
}

type CallNotAvailablePayload struct {
	UserID string `json:"userId"`
	Reason string `json:"reason"`
}

type CallFailedPayload struct {
	Reason  string `json:"reason"`
	Message string `json:"message,omitempty"`
}

type CallEndedPayload struct {
	CallID string `json:"callId"`
	Reason string `json:"reason"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}
