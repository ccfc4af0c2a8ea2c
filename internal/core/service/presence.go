package service

import (
	"github.com/rs/zerolog/log"
	"github.com/signet-rtc/signet/internal/core/domain"
)

// announceLocked pushes a presence transition for subject to every other
// user's connections. Delivery is fire and forget: one observer's dead socket
// must not keep the rest from hearing about the transition. Callers hold h.mu,
// which also gives each observer the subject's transitions in announce order.
func (h *Hub) announceLocked(subject domain.UserID, username string, online bool) {
	event := domain.EventUserOffline
	if online {
		event = domain.EventUserOnline
	}
	env, err := domain.NewEnvelope(event, domain.PresencePayload{
		UserID:   subject.String(),
		Username: username,
	})
	if err != nil {
		log.Error().Err(err).Str("event", event).Msg("Error encoding presence event")
		return
	}

	for uid, entry := range h.users {
		if uid == subject {
			continue
		}
		for _, c := range entry.conns {
			if err := c.Send(env); err != nil {
				log.Warn().Err(err).
					Str("event", event).
					Str("conn_id", c.ConnID().String()).
					Msg("Error delivering presence event")
			}
		}
	}
}
