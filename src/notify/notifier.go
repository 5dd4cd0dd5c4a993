// Package notify exposes the high-level change-notification API consumed
// by the route layer: one call per successful state mutation, plus
// user-facing banners.
package notify

import (
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"

	"github.com/proxydeck/backend/src/bus"
)

// Notifier fans application events out to every connected client.
type Notifier struct {
	hub    *bus.Hub
	clock  clockwork.Clock
	logger zerolog.Logger
}

// New creates a Notifier backed by the given hub.
func New(h *bus.Hub, clock clockwork.Clock, logger zerolog.Logger) *Notifier {
	return &Notifier{
		hub:    h,
		clock:  clock,
		logger: logger.With().Str("component", "notify").Logger(),
	}
}

// Hub returns the underlying hub.
func (n *Notifier) Hub() *bus.Hub { return n.hub }

// EmitStateChange broadcasts a "<kind>Changed" envelope to every connected
// client. Call it only after the mutation for kind has succeeded.
func (n *Notifier) EmitStateChange(kind string) error {
	env, err := bus.NewStateChange(n.clock, kind)
	if err != nil {
		return err
	}
	n.hub.Broadcast(env)
	n.logger.Debug().Str("kind", kind).Msg("state change emitted")
	return nil
}

// EmitBanner broadcasts a user-facing notice. An unrecognized severity is
// an error and nothing is sent.
func (n *Notifier) EmitBanner(severity bus.Severity, message string) error {
	env, err := bus.NewBanner(n.clock, severity, message)
	if err != nil {
		return err
	}
	n.hub.Broadcast(env)
	n.logger.Debug().Str("severity", string(severity)).Msg("banner emitted")
	return nil
}

// ClientCount reports how many clients are currently connected.
func (n *Notifier) ClientCount() int {
	return n.hub.ClientCount()
}
