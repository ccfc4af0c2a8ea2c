package port

import "github.com/signet-rtc/signet/internal/core/domain"

// Client is one live transport connection as seen by the core. Send must be
// non-blocking: implementations enqueue into a per-connection ordered buffer
// and report an error instead of stalling the hub.
type Client interface {
	ConnID() domain.ConnID
	Send(env domain.Envelope) error
	Close() error
}
