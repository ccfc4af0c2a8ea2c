package service

import (
	"github.com/rs/zerolog/log"
	"github.com/signet-rtc/signet/internal/core/domain"
)

// notifyUserLocked routes an event to every live connection of a user.
// Resolving zero connections mid-operation (a disconnect racing the dispatch)
// is logged and dropped; the calling operation's own fallback decides what
// the affected party gets to see. Callers hold h.mu.
func (h *Hub) notifyUserLocked(userID domain.UserID, event string, payload any) {
	env, err := domain.NewEnvelope(event, payload)
	if err != nil {
		log.Error().Err(err).Str("event", event).Msg("Error encoding signaling event")
		return
	}

	entry := h.users[userID]
	if entry == nil || len(entry.conns) == 0 {
		log.Debug().
			Str("user_id", userID.String()).
			Str("event", event).
			Msg("No live connections for recipient, dropping event")
		return
	}
	for _, c := range entry.conns {
		if err := c.Send(env); err != nil {
			log.Warn().Err(err).
				Str("user_id", userID.String()).
				Str("event", event).
				Str("conn_id", c.ConnID().String()).
				Msg("Error delivering signaling event")
		}
	}
}
