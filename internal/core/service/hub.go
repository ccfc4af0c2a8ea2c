package service

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/signet-rtc/signet/internal/core/domain"
	"github.com/signet-rtc/signet/internal/core/port"
)

type Config struct {
	// GracePeriod is how long a user stays in limbo after their last
	// connection drops before offline is announced and their calls torn down.
	GracePeriod time.Duration
	// ReapInterval is how often the stale-call sweep runs.
	ReapInterval time.Duration
	// PendingCallTimeout is the maximum age of an unanswered pending call.
	PendingCallTimeout time.Duration
}

func (c Config) withDefaults() Config {
	if c.GracePeriod <= 0 {
		c.GracePeriod = 2 * time.Second
	}
	if c.ReapInterval <= 0 {
		c.ReapInterval = 10 * time.Second
	}
	if c.PendingCallTimeout <= 0 {
		c.PendingCallTimeout = 30 * time.Second
	}
	return c
}

type userEntry struct {
	username string
	conns    map[domain.ConnID]port.Client
}

// Hub is the single owner of all mutable signaling state: the connection
// registry, the conn->user index, pending-offline grace timers and the call
// table. Every mutation goes through h.mu so registry reads and call-table
// writes appear atomic with respect to each other.
type Hub struct {
	cfg Config

	mu      sync.Mutex
	users   map[domain.UserID]*userEntry
	conns   map[domain.ConnID]domain.UserID
	offline map[domain.UserID]*time.Timer
	calls   map[domain.CallID]*domain.Call

	quit     chan struct{}
	stopOnce sync.Once
}

func NewHub(cfg Config) *Hub {
	return &Hub{
		cfg:     cfg.withDefaults(),
		users:   make(map[domain.UserID]*userEntry),
		conns:   make(map[domain.ConnID]domain.UserID),
		offline: make(map[domain.UserID]*time.Timer),
		calls:   make(map[domain.CallID]*domain.Call),
		quit:    make(chan struct{}),
	}
}

// Stop cancels pending grace timers, stops the reaper loop and disconnects
// all clients.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.quit) })

	h.mu.Lock()
	for uid, t := range h.offline {
		t.Stop()
		delete(h.offline, uid)
	}
	var clients []port.Client
	for _, entry := range h.users {
		for _, c := range entry.conns {
			clients = append(clients, c)
		}
	}
	h.users = make(map[domain.UserID]*userEntry)
	h.conns = make(map[domain.ConnID]domain.UserID)
	h.calls = make(map[domain.CallID]*domain.Call)
	h.mu.Unlock()

	log.Info().Int("count", len(clients)).Msg("Stopping hub, disconnecting all clients")
	for _, c := range clients {
		if err := c.Close(); err != nil {
			log.Error().Err(err).Str("conn_id", c.ConnID().String()).Msg("Error closing client connection")
		}
	}
}
