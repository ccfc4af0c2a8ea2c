package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/signet-rtc/signet/internal/adapter/driven/gateway/ws"
	"github.com/signet-rtc/signet/internal/core/domain"
	"github.com/signet-rtc/signet/internal/core/port"
	"github.com/signet-rtc/signet/internal/core/service"
)

// ServeWS upgrades the connection and runs its read loop. The first accepted
// frame must be a register event; everything before that only gets error
// replies. A failure on one connection never propagates beyond it.
func (h *Handler) ServeWS(w http.ResponseWriter, r *http.Request) {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     h.checkOrigin,
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("Error while upgrading ws")
		return
	}
	conn.SetReadLimit(h.cfg.MaxMessageSize)

	client := ws.NewClient(conn, h.cfg.SendBufferSize)
	go client.WritePump()

	l := log.With().Str("conn_id", client.ConnID().String()).Logger()
	l.Info().Msg("New client connected")

	sess := &session{
		hub:      h.hub,
		resolver: h.resolver,
		client:   client,
		log:      l,
	}
	allow := ws.NewLimiter(h.cfg.RateBurst, h.cfg.RateRefill)

	defer func() {
		if sess.registered {
			h.hub.Unregister(sess.userID, client)
		}
		client.Close()
		l.Info().Msg("Client disconnected")
	}()

	for {
		var env domain.Envelope
		if err := conn.ReadJSON(&env); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNormalClosure) {
				l.Error().Err(err).Msg("Unexpected close error")
			}
			break
		}
		if !allow() {
			l.Warn().Str("event", env.Event).Msg("Rate limit exceeded, dropping frame")
			continue
		}
		sess.handle(r.Context(), env)
	}
}

// session is the per-connection signaling state: which user this connection
// speaks for, once registered. Domain fields live here, not on the socket.
type session struct {
	hub      *service.Hub
	resolver port.IdentityResolver
	client   *ws.Client
	log      zerolog.Logger

	registered bool
	userID     domain.UserID
}

func (s *session) handle(ctx context.Context, env domain.Envelope) {
	if env.Event == domain.EventRegister {
		s.handleRegister(ctx, env)
		return
	}
	if !s.registered {
		s.log.Warn().Str("event", env.Event).Msg("Event before register, rejecting")
		s.replyError("register first")
		return
	}

	switch env.Event {
	case domain.EventCallRequest:
		s.handleCallRequest(env)
	case domain.EventCallAccepted:
		s.handleCallAccepted(env)
	case domain.EventCallRejected:
		s.handleCallRejected(env)
	case domain.EventCallEnd:
		s.handleCallEnd(env)
	default:
		s.log.Debug().Str("event", env.Event).Msg("Ignoring unknown event")
	}
}

func (s *session) handleRegister(ctx context.Context, env domain.Envelope) {
	var p domain.RegisterPayload
	if err := env.Decode(&p); err != nil {
		s.replyError("malformed register payload")
		return
	}
	id, err := s.resolver.Resolve(ctx, p.UserID, p.Username)
	if err != nil {
		s.log.Warn().Err(err).Msg("Identity resolution failed")
		s.replyError("invalid identity")
		return
	}

	s.hub.Register(id, s.client)
	s.registered = true
	s.userID = id.UserID
	s.log = s.log.With().Str("user_id", id.UserID.String()).Logger()
	s.log.Info().Msg("Client registered")
}

func (s *session) handleCallRequest(env domain.Envelope) {
	var p domain.CallRequestPayload
	if err := env.Decode(&p); err != nil {
		s.replyFailure(domain.ErrInvalidParameters)
		return
	}

	err := s.hub.RequestCall(domain.CallID(p.CallID), s.userID, domain.UserID(p.CalleeID), p.CallerName)
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrCalleeOffline):
		s.reply(domain.EventCallNotAvailable, domain.CallNotAvailablePayload{
			UserID: p.CalleeID,
			Reason: domain.ReasonUserOffline,
		})
	case errors.Is(err, domain.ErrCalleeBusy):
		s.reply(domain.EventCallNotAvailable, domain.CallNotAvailablePayload{
			UserID: p.CalleeID,
			Reason: domain.ReasonUserBusy,
		})
	default:
		s.replyFailure(err)
	}
}

func (s *session) handleCallAccepted(env domain.Envelope) {
	var p domain.CallAnswerPayload
	if err := env.Decode(&p); err != nil {
		s.replyFailure(domain.ErrInvalidParameters)
		return
	}
	if err := s.hub.AcceptCall(domain.CallID(p.CallID), s.userID); err != nil {
		s.replyFailure(err)
	}
}

func (s *session) handleCallRejected(env domain.Envelope) {
	var p domain.CallAnswerPayload
	if err := env.Decode(&p); err != nil {
		s.replyFailure(domain.ErrInvalidParameters)
		return
	}
	s.hub.RejectCall(domain.CallID(p.CallID), s.userID, domain.UserID(p.CallerID))
}

func (s *session) handleCallEnd(env domain.Envelope) {
	var p domain.CallEndPayload
	if err := env.Decode(&p); err != nil {
		s.replyFailure(domain.ErrInvalidParameters)
		return
	}
	s.hub.EndCall(domain.CallID(p.CallID), domain.ReasonUserEnded)
}

// replyFailure maps a domain error onto the call-failed vocabulary and sends
// it back on the originating connection only.
func (s *session) replyFailure(err error) {
	reason := domain.ReasonInvalidParameters
	switch {
	case errors.Is(err, domain.ErrSelfCall):
		reason = domain.ReasonSelfCall
	case errors.Is(err, domain.ErrCallNotFound):
		reason = domain.ReasonCallNotFound
	case errors.Is(err, domain.ErrInvalidCallState):
		reason = domain.ReasonInvalidState
	case errors.Is(err, domain.ErrCallerUnavailable):
		reason = domain.ReasonCallerUnavailable
	}
	s.reply(domain.EventCallFailed, domain.CallFailedPayload{
		Reason:  reason,
		Message: err.Error(),
	})
}

func (s *session) replyError(msg string) {
	s.reply(domain.EventError, domain.ErrorPayload{Message: msg})
}

func (s *session) reply(event string, payload any) {
	env, err := domain.NewEnvelope(event, payload)
	if err != nil {
		s.log.Error().Err(err).Str("event", event).Msg("Error encoding reply")
		return
	}
	if err := s.client.Send(env); err != nil {
		s.log.Warn().Err(err).Str("event", event).Msg("Error sending reply")
	}
}
