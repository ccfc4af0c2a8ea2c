package service

import (
	"time"

	"github.com/rs/zerolog/log"
	"github.com/signet-rtc/signet/internal/core/domain"
)

// Run drives the stale-call reaper until Stop is called. Should be started in
// its own goroutine. Without it, a callee that never answers would leave the
// record forever and the caller's ringing state hung.
func (h *Hub) Run() {
	ticker := time.NewTicker(h.cfg.ReapInterval)
	defer ticker.Stop()

	for {
		select {
		case <-h.quit:
			return
		case <-ticker.C:
			h.reapStale(time.Now())
		}
	}
}

// reapStale fails every pending call older than the timeout and notifies the
// caller. It takes the same lock as the signaling operations, so a racing
// accept or reject simply wins or loses wholesale; a record that vanished
// since the last tick is just not there anymore.
func (h *Hub) reapStale(now time.Time) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for id, call := range h.calls {
		if call.Status != domain.CallPending {
			continue
		}
		if now.Sub(call.CreatedAt) <= h.cfg.PendingCallTimeout {
			continue
		}
		call.Status = domain.CallFailed
		delete(h.calls, id)

		log.Info().
			Str("call_id", id.String()).
			Str("caller_id", call.CallerID.String()).
			Dur("age", now.Sub(call.CreatedAt)).
			Msg("Reaping stale pending call")
		h.notifyUserLocked(call.CallerID, domain.EventCallFailed, domain.CallFailedPayload{
			Reason:  domain.ReasonTimeout,
			Message: "call was not answered",
		})
	}
}
