package service

import (
	"errors"
	"testing"
	"time"

	"github.com/signet-rtc/signet/internal/core/domain"
)

func TestRequestCallValidation(t *testing.T) {
	h := newTestHub()
	defer h.Stop()
	register(h, "bob", "Bob")

	cases := []struct {
		name     string
		callID   domain.CallID
		caller   domain.UserID
		callee   domain.UserID
		expected error
	}{
		{"empty call id", "", "alice", "bob", domain.ErrInvalidParameters},
		{"empty caller", "call-1", "", "bob", domain.ErrInvalidParameters},
		{"empty callee", "call-1", "alice", "", domain.ErrInvalidParameters},
		{"self call", "call-1", "alice", "alice", domain.ErrSelfCall},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := h.RequestCall(tc.callID, tc.caller, tc.callee, "Alice")
			if !errors.Is(err, tc.expected) {
				t.Fatalf("expected %v, got %v", tc.expected, err)
			}
			if n := h.callCount(); n != 0 {
				t.Fatalf("record created on validation failure, %d records", n)
			}
		})
	}
}

func TestRequestCallCalleeOffline(t *testing.T) {
	h := newTestHub()
	defer h.Stop()
	register(h, "alice", "Alice")

	err := h.RequestCall("call-1", "alice", "bob", "Alice")
	if !errors.Is(err, domain.ErrCalleeOffline) {
		t.Fatalf("expected ErrCalleeOffline, got %v", err)
	}
	if h.callCount() != 0 {
		t.Fatalf("record created for offline callee")
	}
}

func TestRequestCallDispatchesRingingAndIncoming(t *testing.T) {
	h := newTestHub()
	defer h.Stop()
	alice := register(h, "alice", "Alice")
	bob := register(h, "bob", "Bob")

	if err := h.RequestCall("call-1", "alice", "bob", "Alice"); err != nil {
		t.Fatalf("request failed: %v", err)
	}

	incoming := bob.named(domain.EventIncomingCall)
	if len(incoming) != 1 {
		t.Fatalf("expected 1 incoming-call at bob, got %d", len(incoming))
	}
	var ip domain.IncomingCallPayload
	decodePayload(t, incoming[0], &ip)
	if ip.CallID != "call-1" || ip.CallerID != "alice" || ip.CallerName != "Alice" {
		t.Fatalf("unexpected incoming-call payload: %+v", ip)
	}

	ringing := alice.named(domain.EventCallRinging)
	if len(ringing) != 1 {
		t.Fatalf("expected 1 call-ringing at alice, got %d", len(ringing))
	}
	var rp domain.CallRingingPayload
	decodePayload(t, ringing[0], &rp)
	if rp.CallID != "call-1" {
		t.Fatalf("unexpected call-ringing payload: %+v", rp)
	}
}

func TestRequestCallDuplicateID(t *testing.T) {
	h := newTestHub()
	defer h.Stop()
	register(h, "alice", "Alice")
	register(h, "bob", "Bob")
	register(h, "carol", "Carol")

	if err := h.RequestCall("call-1", "alice", "bob", "Alice"); err != nil {
		t.Fatalf("request failed: %v", err)
	}
	err := h.RequestCall("call-1", "carol", "bob", "Carol")
	if !errors.Is(err, domain.ErrCallIDInUse) {
		t.Fatalf("expected ErrCallIDInUse, got %v", err)
	}
	if h.callCount() != 1 {
		t.Fatalf("duplicate id overwrote or added a record")
	}
}

func TestRequestCallCalleeBusy(t *testing.T) {
	h := newTestHub()
	defer h.Stop()
	register(h, "alice", "Alice")
	register(h, "bob", "Bob")
	register(h, "carol", "Carol")

	if err := h.RequestCall("call-1", "alice", "bob", "Alice"); err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if err := h.AcceptCall("call-1", "bob"); err != nil {
		t.Fatalf("accept failed: %v", err)
	}

	// Active participant on either side of the record makes them busy.
	if err := h.RequestCall("call-2", "carol", "bob", "Carol"); !errors.Is(err, domain.ErrCalleeBusy) {
		t.Fatalf("expected ErrCalleeBusy calling the callee, got %v", err)
	}
	if err := h.RequestCall("call-3", "carol", "alice", "Carol"); !errors.Is(err, domain.ErrCalleeBusy) {
		t.Fatalf("expected ErrCalleeBusy calling the caller, got %v", err)
	}
	if h.callCount() != 1 {
		t.Fatalf("busy rejection created a record, %d records", h.callCount())
	}
}

func TestPendingCallDoesNotMakeCalleeBusy(t *testing.T) {
	h := newTestHub()
	defer h.Stop()
	register(h, "alice", "Alice")
	bob := register(h, "bob", "Bob")
	register(h, "carol", "Carol")

	if err := h.RequestCall("call-1", "alice", "bob", "Alice"); err != nil {
		t.Fatalf("first request failed: %v", err)
	}
	if err := h.RequestCall("call-2", "carol", "bob", "Carol"); err != nil {
		t.Fatalf("second request while pending failed: %v", err)
	}
	if n := len(bob.named(domain.EventIncomingCall)); n != 2 {
		t.Fatalf("expected 2 incoming-call at bob, got %d", n)
	}
}

func TestAcceptCallNotifiesCaller(t *testing.T) {
	h := newTestHub()
	defer h.Stop()
	alice := register(h, "alice", "Alice")
	register(h, "bob", "Bob")

	if err := h.RequestCall("call-1", "alice", "bob", "Alice"); err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if err := h.AcceptCall("call-1", "bob"); err != nil {
		t.Fatalf("accept failed: %v", err)
	}

	accepted := alice.named(domain.EventCallAccepted)
	if len(accepted) != 1 {
		t.Fatalf("expected 1 call-accepted at alice, got %d", len(accepted))
	}
	var p domain.CallAnswerPayload
	decodePayload(t, accepted[0], &p)
	if p.CallID != "call-1" || p.CalleeID != "bob" || p.CallerID != "alice" {
		t.Fatalf("unexpected call-accepted payload: %+v", p)
	}
}

func TestAcceptCallUnknownOrForeign(t *testing.T) {
	h := newTestHub()
	defer h.Stop()
	register(h, "alice", "Alice")
	register(h, "bob", "Bob")
	register(h, "carol", "Carol")

	if err := h.AcceptCall("nope", "bob"); !errors.Is(err, domain.ErrCallNotFound) {
		t.Fatalf("expected ErrCallNotFound for unknown id, got %v", err)
	}

	if err := h.RequestCall("call-1", "alice", "bob", "Alice"); err != nil {
		t.Fatalf("request failed: %v", err)
	}
	// carol is not the callee of call-1; the call does not exist for her.
	if err := h.AcceptCall("call-1", "carol"); !errors.Is(err, domain.ErrCallNotFound) {
		t.Fatalf("expected ErrCallNotFound for foreign accept, got %v", err)
	}
}

func TestAcceptCallTwiceFails(t *testing.T) {
	h := newTestHub()
	defer h.Stop()
	register(h, "alice", "Alice")
	register(h, "bob", "Bob")

	if err := h.RequestCall("call-1", "alice", "bob", "Alice"); err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if err := h.AcceptCall("call-1", "bob"); err != nil {
		t.Fatalf("first accept failed: %v", err)
	}
	if err := h.AcceptCall("call-1", "bob"); !errors.Is(err, domain.ErrInvalidCallState) {
		t.Fatalf("expected ErrInvalidCallState on double accept, got %v", err)
	}
}

func TestAcceptCallCallerVanished(t *testing.T) {
	h := newTestHub()
	defer h.Stop()
	alice := register(h, "alice", "Alice")
	register(h, "bob", "Bob")

	if err := h.RequestCall("call-1", "alice", "bob", "Alice"); err != nil {
		t.Fatalf("request failed: %v", err)
	}
	// Caller drops; the record is still there while the grace window runs.
	h.Unregister("alice", alice)

	err := h.AcceptCall("call-1", "bob")
	if !errors.Is(err, domain.ErrCallerUnavailable) {
		t.Fatalf("expected ErrCallerUnavailable, got %v", err)
	}
	if h.callCount() != 0 {
		t.Fatalf("failed call not removed")
	}
}

func TestRejectCallTearsDown(t *testing.T) {
	h := newTestHub()
	defer h.Stop()
	alice := register(h, "alice", "Alice")
	register(h, "bob", "Bob")

	if err := h.RequestCall("call-1", "alice", "bob", "Alice"); err != nil {
		t.Fatalf("request failed: %v", err)
	}
	h.RejectCall("call-1", "bob", "alice")

	rejected := alice.named(domain.EventCallRejected)
	if len(rejected) != 1 {
		t.Fatalf("expected 1 call-rejected at alice, got %d", len(rejected))
	}
	if h.callCount() != 0 {
		t.Fatalf("rejected call still recorded")
	}

	// Duplicate or late reject is a silent no-op.
	h.RejectCall("call-1", "bob", "alice")
	if n := len(alice.named(domain.EventCallRejected)); n != 1 {
		t.Fatalf("duplicate reject produced another notification, got %d", n)
	}
}

func TestRejectAfterActiveStillTearsDown(t *testing.T) {
	h := newTestHub()
	defer h.Stop()
	alice := register(h, "alice", "Alice")
	register(h, "bob", "Bob")

	if err := h.RequestCall("call-1", "alice", "bob", "Alice"); err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if err := h.AcceptCall("call-1", "bob"); err != nil {
		t.Fatalf("accept failed: %v", err)
	}

	h.RejectCall("call-1", "bob", "alice")
	if h.callCount() != 0 {
		t.Fatalf("reject after active left the record in place")
	}
	if n := len(alice.named(domain.EventCallRejected)); n != 1 {
		t.Fatalf("expected 1 call-rejected at alice, got %d", n)
	}
}

func TestEndCallNotifiesParticipants(t *testing.T) {
	h := newTestHub()
	defer h.Stop()
	alice := register(h, "alice", "Alice")
	bob := register(h, "bob", "Bob")

	if err := h.RequestCall("call-1", "alice", "bob", "Alice"); err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if err := h.AcceptCall("call-1", "bob"); err != nil {
		t.Fatalf("accept failed: %v", err)
	}
	h.EndCall("call-1", domain.ReasonUserEnded)

	for name, c := range map[string]*fakeClient{"alice": alice, "bob": bob} {
		ended := c.named(domain.EventCallEnded)
		if len(ended) != 1 {
			t.Fatalf("expected 1 call-ended at %s, got %d", name, len(ended))
		}
		var p domain.CallEndedPayload
		decodePayload(t, ended[0], &p)
		if p.CallID != "call-1" || p.Reason != domain.ReasonUserEnded {
			t.Fatalf("unexpected call-ended payload at %s: %+v", name, p)
		}
	}
	if h.callCount() != 0 {
		t.Fatalf("ended call still recorded")
	}
}

func TestEndCallUnknownIsNoop(t *testing.T) {
	h := newTestHub()
	defer h.Stop()
	alice := register(h, "alice", "Alice")

	h.EndCall("ghost-call", domain.ReasonUserEnded)
	if n := len(alice.named(domain.EventCallEnded)); n != 0 {
		t.Fatalf("no-op end produced %d notifications", n)
	}
}

func TestDisconnectForceEndsActiveCall(t *testing.T) {
	h := newTestHub()
	defer h.Stop()
	alice := register(h, "alice", "Alice")
	bob := register(h, "bob", "Bob")

	if err := h.RequestCall("call-1", "alice", "bob", "Alice"); err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if err := h.AcceptCall("call-1", "bob"); err != nil {
		t.Fatalf("accept failed: %v", err)
	}

	h.Unregister("bob", bob)
	time.Sleep(3 * testGrace)

	ended := alice.named(domain.EventCallEnded)
	if len(ended) != 1 {
		t.Fatalf("expected 1 call-ended at alice, got %d", len(ended))
	}
	var p domain.CallEndedPayload
	decodePayload(t, ended[0], &p)
	if p.CallID != "call-1" || p.Reason != domain.ReasonUserDisconnected {
		t.Fatalf("unexpected call-ended payload: %+v", p)
	}
	if h.callCount() != 0 {
		t.Fatalf("call survived participant disconnect")
	}
}
