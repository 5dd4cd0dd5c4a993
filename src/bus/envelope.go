package bus

import (
	"fmt"

	"github.com/jonboulle/clockwork"
)

// Severity classifies a banner notification.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Valid reports whether s is one of the recognized severities.
func (s Severity) Valid() bool {
	switch s {
	case SeverityInfo, SeveritySuccess, SeverityWarning, SeverityError:
		return true
	}
	return false
}

// Envelope is the message unit sent over a connection: a type tag, an
// optional payload keyed to that tag, and an epoch-millisecond timestamp.
type Envelope struct {
	Type      string `json:"type"`
	Data      any    `json:"data,omitempty"`
	Timestamp int64  `json:"timestamp"`
}

// BannerData is the payload of a "banner" envelope.
type BannerData struct {
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
}

// GreetingData is the payload of the one-off "connected" envelope.
type GreetingData struct {
	Message string `json:"message"`
}

// Wire type tags. State-change envelopes use a kind-derived tag instead,
// see NewStateChange.
const (
	TypeConnected = "connected"
	TypePong      = "pong"
	TypeBanner    = "banner"
	TypePing      = "ping"
)

const stateChangeSuffix = "Changed"

const greetingMessage = "connected to proxydeck backend"

// NewBanner builds a banner envelope. The severity set is closed; anything
// outside it is a constructor error, nothing is built.
func NewBanner(clock clockwork.Clock, severity Severity, message string) (Envelope, error) {
	if !severity.Valid() {
		return Envelope{}, fmt.Errorf("unknown banner severity %q", severity)
	}
	return Envelope{
		Type:      TypeBanner,
		Data:      BannerData{Severity: severity, Message: message},
		Timestamp: clock.Now().UnixMilli(),
	}, nil
}

// NewStateChange builds a "<kind>Changed" envelope. Kinds are open-ended:
// any non-empty caller-supplied kind is accepted, so new entity kinds need
// no changes here.
func NewStateChange(clock clockwork.Clock, kind string) (Envelope, error) {
	if kind == "" {
		return Envelope{}, fmt.Errorf("state change kind must not be empty")
	}
	return Envelope{
		Type:      kind + stateChangeSuffix,
		Timestamp: clock.Now().UnixMilli(),
	}, nil
}

// NewGreeting builds the "connected" envelope sent once per connection
// right after registration.
func NewGreeting(clock clockwork.Clock) Envelope {
	return Envelope{
		Type:      TypeConnected,
		Data:      GreetingData{Message: greetingMessage},
		Timestamp: clock.Now().UnixMilli(),
	}
}

// NewPong builds the reply to an inbound ping.
func NewPong(clock clockwork.Clock) Envelope {
	return Envelope{
		Type:      TypePong,
		Timestamp: clock.Now().UnixMilli(),
	}
}
