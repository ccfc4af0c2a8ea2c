package service

import (
	"github.com/rs/zerolog/log"
	"github.com/signet-rtc/signet/internal/core/domain"
)

// RequestCall validates and records a new call attempt. The busy check and
// record creation happen in one lock hold, so two racing requests against the
// same callee cannot both succeed. No record is created on any failure.
func (h *Hub) RequestCall(callID domain.CallID, callerID, calleeID domain.UserID, callerName string) error {
	call, err := domain.NewCall(callID, callerID, calleeID, callerName)
	if err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if _, exists := h.calls[callID]; exists {
		return domain.ErrCallIDInUse
	}
	if !h.isOnlineLocked(calleeID) {
		return domain.ErrCalleeOffline
	}
	for _, existing := range h.calls {
		if existing.Status == domain.CallActive && existing.HasParticipant(calleeID) {
			return domain.ErrCalleeBusy
		}
	}

	h.calls[callID] = call
	log.Info().
		Str("call_id", callID.String()).
		Str("caller_id", callerID.String()).
		Str("callee_id", calleeID.String()).
		Msg("Call requested")

	h.notifyUserLocked(calleeID, domain.EventIncomingCall, domain.IncomingCallPayload{
		CallID:     callID.String(),
		CallerID:   callerID.String(),
		CallerName: callerName,
	})
	h.notifyUserLocked(callerID, domain.EventCallRinging, domain.CallRingingPayload{
		CallID: callID.String(),
	})
	return nil
}

// AcceptCall moves a pending call to active and tells the caller. A call id
// that does not exist for the accepting callee is not found; accepting
// anything but a pending call fails rather than double-activating. If the
// caller vanished since ringing, the record goes terminal instead of active
// and the callee gets the caller-unavailable failure.
func (h *Hub) AcceptCall(callID domain.CallID, calleeID domain.UserID) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	call, ok := h.calls[callID]
	if !ok || call.CalleeID != calleeID {
		return domain.ErrCallNotFound
	}
	if call.Status != domain.CallPending {
		return domain.ErrInvalidCallState
	}
	if !h.isOnlineLocked(call.CallerID) {
		call.Status = domain.CallFailed
		delete(h.calls, callID)
		log.Warn().
			Str("call_id", callID.String()).
			Str("caller_id", call.CallerID.String()).
			Msg("Call accepted but caller is gone, failing call")
		return domain.ErrCallerUnavailable
	}

	call.Status = domain.CallActive
	log.Info().Str("call_id", callID.String()).Msg("Call accepted")
	h.notifyUserLocked(call.CallerID, domain.EventCallAccepted, domain.CallAnswerPayload{
		CallID:   callID.String(),
		CallerID: call.CallerID.String(),
		CalleeID: call.CalleeID.String(),
	})
	return nil
}

// RejectCall tears the call down whatever state it is in and tells the
// caller. A reject is a hard stop, not only a pre-accept refusal, so an
// already-active call is torn down too. A missing record means a duplicate or
// late reject and is silently ignored.
func (h *Hub) RejectCall(callID domain.CallID, calleeID, callerID domain.UserID) {
	h.mu.Lock()
	defer h.mu.Unlock()

	call, ok := h.calls[callID]
	if !ok {
		return
	}
	call.Status = domain.CallFailed
	delete(h.calls, callID)

	log.Info().
		Str("call_id", callID.String()).
		Str("callee_id", calleeID.String()).
		Msg("Call rejected")
	h.notifyUserLocked(call.CallerID, domain.EventCallRejected, domain.CallAnswerPayload{
		CallID:   callID.String(),
		CallerID: call.CallerID.String(),
		CalleeID: call.CalleeID.String(),
	})
}

// EndCall drops the record and notifies both participants' remaining
// connections with the termination reason. Ending an unknown call is a
// no-op, not an error.
func (h *Hub) EndCall(callID domain.CallID, reason string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	call, ok := h.calls[callID]
	if !ok {
		return
	}
	call.Status = domain.CallEnded
	delete(h.calls, callID)

	log.Info().Str("call_id", callID.String()).Str("reason", reason).Msg("Call ended")
	payload := domain.CallEndedPayload{CallID: callID.String(), Reason: reason}
	h.notifyUserLocked(call.CallerID, domain.EventCallEnded, payload)
	h.notifyUserLocked(call.CalleeID, domain.EventCallEnded, payload)
}

// endCallsForLocked force-ends every call the user participates in and tells
// the peer. Used on confirmed disconnect; cleanup is scoped to this user's
// calls only. Callers hold h.mu.
func (h *Hub) endCallsForLocked(userID domain.UserID, reason string) {
	for id, call := range h.calls {
		if !call.HasParticipant(userID) {
			continue
		}
		call.Status = domain.CallEnded
		delete(h.calls, id)

		log.Info().
			Str("call_id", id.String()).
			Str("user_id", userID.String()).
			Str("reason", reason).
			Msg("Force-ending call after disconnect")
		h.notifyUserLocked(call.Peer(userID), domain.EventCallEnded, domain.CallEndedPayload{
			CallID: id.String(),
			Reason: reason,
		})
	}
}
