package bus

import (
	"encoding/json"
	"sync"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
)

// Hub tracks all live WebSocket connections and fans envelopes out to them.
// One instance is created at server start and handed to the transport and
// route layers; there is no ambient global registry.
type Hub struct {
	clients map[string]*Client

	register   chan *Client
	unregister chan *Client

	mu     sync.RWMutex
	clock  clockwork.Clock
	logger zerolog.Logger
	done   chan struct{}
}

// New creates a new Hub instance.
func New(logger zerolog.Logger, clock clockwork.Clock) *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clock:      clock,
		logger:     logger.With().Str("component", "hub").Logger(),
		done:       make(chan struct{}),
	}
}

// Run starts the hub lifecycle loop. Call in a goroutine.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.addClient(client)
		case client := <-h.unregister:
			h.removeClient(client)
		case <-h.done:
			return
		}
	}
}

// Stop halts the lifecycle loop and closes every remaining connection.
func (h *Hub) Stop() {
	close(h.done)

	h.mu.Lock()
	clients := make([]*Client, 0, len(h.clients))
	for _, c := range h.clients {
		clients = append(clients, c)
	}
	h.clients = make(map[string]*Client)
	h.mu.Unlock()

	for _, c := range clients {
		c.Close()
	}
}

// Register queues a client for registration.
func (h *Hub) Register(c *Client) {
	select {
	case h.register <- c:
	case <-h.done:
	}
}

// Unregister queues a client for removal. Removing a client that is not
// registered is a no-op.
func (h *Hub) Unregister(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// Broadcast serializes env once and delivers the same bytes to every
// registered connection whose send path is writable. Members that are not
// writable are skipped, not evicted: eviction belongs to the close/error
// lifecycle hooks, so a transient stall never drops a live connection.
func (h *Hub) Broadcast(env Envelope) {
	payload, err := json.Marshal(env)
	if err != nil {
		h.logger.Error().Err(err).Str("type", env.Type).Msg("envelope marshal failed")
		return
	}

	// Copy clients to avoid holding the lock during sends.
	h.mu.RLock()
	clients := make([]*Client, 0, len(h.clients))
	for _, c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	for _, c := range clients {
		if !c.trySend(payload) {
			h.logger.Warn().Str("client_id", c.ID).Str("type", env.Type).Msg("client not writable, skipping")
		}
	}
}

// Greet sends the one-off "connected" envelope to a single client, never
// broadcast. It belongs to the connect lifecycle hook; registration itself
// sends nothing.
func (h *Hub) Greet(c *Client) {
	greeting, err := json.Marshal(NewGreeting(h.clock))
	if err != nil {
		h.logger.Error().Err(err).Msg("greeting marshal failed")
		return
	}
	c.trySend(greeting)
}

func (h *Hub) addClient(c *Client) {
	h.mu.Lock()
	h.clients[c.ID] = c
	h.mu.Unlock()

	h.logger.Info().Str("client_id", c.ID).Msg("client registered")
}

func (h *Hub) removeClient(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c.ID]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.clients, c.ID)
	h.mu.Unlock()

	c.Close()
	h.logger.Info().Str("client_id", c.ID).Msg("client unregistered")
}
