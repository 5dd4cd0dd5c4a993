package types

import "time"

// Conn abstracts a WebSocket connection for testability.
// Reads and writes operate on raw frames so inbound payloads can be
// decoded explicitly and broadcasts can reuse one serialized envelope.
type Conn interface {
	ReadMessage() ([]byte, error)
	WriteMessage(data []byte) error
	Close() error
}

// ClientInfo holds metadata about a connected WebSocket client.
type ClientInfo struct {
	ID          string    `json:"id"`
	ConnectedAt time.Time `json:"connected_at"`
}

// Settings is the singular application settings document.
type Settings struct {
	Theme          string `json:"theme" validate:"omitempty,oneof=light dark system"`
	CaptureEnabled bool   `json:"captureEnabled"`
	DefaultProxyID string `json:"defaultProxyId" validate:"omitempty,uuid4"`
	LogRequests    bool   `json:"logRequests"`
}

// Auth is a stored credential entry.
type Auth struct {
	ID       string `json:"id" validate:"required,uuid4"`
	Name     string `json:"name" validate:"required"`
	Scheme   string `json:"scheme" validate:"required,oneof=basic bearer header"`
	Username string `json:"username" validate:"required_if=Scheme basic"`
	Secret   string `json:"secret" validate:"required"`
}

// Proxy is an upstream proxy definition.
type Proxy struct {
	ID     string `json:"id" validate:"required,uuid4"`
	Name   string `json:"name" validate:"required"`
	Scheme string `json:"scheme" validate:"required,oneof=http https socks5"`
	Host   string `json:"host" validate:"required,hostname|ip"`
	Port   int    `json:"port" validate:"required,min=1,max=65535"`
}

// Cert is a stored certificate entry.
type Cert struct {
	ID   string `json:"id" validate:"required,uuid4"`
	Name string `json:"name" validate:"required"`
	PEM  string `json:"pem" validate:"required,contains=CERTIFICATE"`
}

// ValidationRule matches captured traffic against an expected pattern.
type ValidationRule struct {
	ID      string `json:"id" validate:"required,uuid4"`
	Name    string `json:"name" validate:"required"`
	Target  string `json:"target" validate:"required,oneof=header body status"`
	Pattern string `json:"pattern" validate:"required"`
	Enabled bool   `json:"enabled"`
}
