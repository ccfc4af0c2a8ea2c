package service

import (
	"time"

	"github.com/rs/zerolog/log"
	"github.com/signet-rtc/signet/internal/core/domain"
	"github.com/signet-rtc/signet/internal/core/port"
)

// Register binds a connection to a user identity. Any prior connection for
// the same identity is forcibly closed (single active session), and a pending
// offline grace timer for the identity is cancelled. The online announcement
// fires only on the transition from no connections to at least one, and is
// suppressed when the user was merely in the grace window.
func (h *Hub) Register(id port.Identity, c port.Client) {
	h.mu.Lock()

	connID := c.ConnID()
	if prev, ok := h.conns[connID]; ok && prev != id.UserID {
		// A handle may appear under at most one user. Detach before rebinding.
		h.removeConnLocked(prev, connID)
	}

	reconnect := false
	if t, ok := h.offline[id.UserID]; ok {
		t.Stop()
		delete(h.offline, id.UserID)
		reconnect = true
	}

	entry := h.users[id.UserID]
	if entry == nil {
		entry = &userEntry{conns: make(map[domain.ConnID]port.Client)}
		h.users[id.UserID] = entry
	}
	wasOnline := len(entry.conns) > 0

	var evicted []port.Client
	for cid, prev := range entry.conns {
		if cid == connID {
			continue
		}
		delete(entry.conns, cid)
		delete(h.conns, cid)
		evicted = append(evicted, prev)
	}

	entry.username = id.Username
	entry.conns[connID] = c
	h.conns[connID] = id.UserID

	if !wasOnline && !reconnect {
		h.announceLocked(id.UserID, entry.username, true)
	}
	h.mu.Unlock()

	log.Info().
		Str("user_id", id.UserID.String()).
		Str("conn_id", connID.String()).
		Bool("reconnect", reconnect).
		Msg("Client registered")

	// Close evicted connections outside the lock; their late Unregister
	// calls are no-ops because the handles are already unbound.
	for _, prev := range evicted {
		log.Info().
			Str("user_id", id.UserID.String()).
			Str("conn_id", prev.ConnID().String()).
			Msg("Evicting stale session for re-registered user")
		if err := prev.Close(); err != nil {
			log.Warn().Err(err).Str("conn_id", prev.ConnID().String()).Msg("Error closing evicted connection")
		}
	}
}

// Unregister removes a connection from the registry. Unknown or already
// evicted handles are ignored. When the last connection of a user goes away
// the offline transition is not immediate: a cancellable grace timer absorbs
// reconnect races first.
func (h *Hub) Unregister(userID domain.UserID, c port.Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	connID := c.ConnID()
	if owner, ok := h.conns[connID]; !ok || owner != userID {
		return
	}
	h.removeConnLocked(userID, connID)
}

func (h *Hub) removeConnLocked(userID domain.UserID, connID domain.ConnID) {
	entry := h.users[userID]
	if entry == nil {
		return
	}
	if _, ok := entry.conns[connID]; !ok {
		return
	}
	delete(entry.conns, connID)
	delete(h.conns, connID)
	if len(entry.conns) == 0 {
		h.scheduleOfflineLocked(userID)
	}
}

func (h *Hub) scheduleOfflineLocked(userID domain.UserID) {
	if t, ok := h.offline[userID]; ok {
		t.Stop()
	}
	h.offline[userID] = time.AfterFunc(h.cfg.GracePeriod, func() {
		h.confirmOffline(userID)
	})
	log.Debug().
		Str("user_id", userID.String()).
		Dur("grace_period", h.cfg.GracePeriod).
		Msg("Last connection dropped, offline pending")
}

// confirmOffline runs when a grace timer fires. The map entry is the source
// of truth: if Register cancelled the timer after it already fired, the entry
// is gone and this is a no-op.
func (h *Hub) confirmOffline(userID domain.UserID) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.offline[userID]; !ok {
		return
	}
	delete(h.offline, userID)

	entry := h.users[userID]
	if entry == nil || len(entry.conns) > 0 {
		return
	}
	delete(h.users, userID)

	log.Info().Str("user_id", userID.String()).Msg("User offline")
	h.announceLocked(userID, entry.username, false)
	h.endCallsForLocked(userID, domain.ReasonUserDisconnected)
}

// Lookup returns the live connection handles for a user. Absence is a normal
// state, not a failure: unknown and offline users yield an empty slice.
func (h *Hub) Lookup(userID domain.UserID) []domain.ConnID {
	h.mu.Lock()
	defer h.mu.Unlock()

	entry := h.users[userID]
	if entry == nil {
		return nil
	}
	ids := make([]domain.ConnID, 0, len(entry.conns))
	for cid := range entry.conns {
		ids = append(ids, cid)
	}
	return ids
}

func (h *Hub) IsOnline(userID domain.UserID) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.isOnlineLocked(userID)
}

func (h *Hub) isOnlineLocked(userID domain.UserID) bool {
	entry := h.users[userID]
	return entry != nil && len(entry.conns) > 0
}
