// Package store persists the shared application state documents, one per
// entity kind. Every Load/Save is atomic per call; change notification is
// the caller's concern.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/proxydeck/backend/src/types"
)

// Entity kinds owned by the backend. These are the kinds the HTTP API
// accepts; the notification bus itself is open-ended over kind strings.
const (
	KindSettings        = "settings"
	KindAuths           = "auths"
	KindProxies         = "proxies"
	KindCerts           = "certs"
	KindValidationRules = "validationRules"
)

// ErrUnknownKind is returned for a kind outside the known set.
var ErrUnknownKind = errors.New("unknown state kind")

// Store reads and writes one JSON document per entity kind.
type Store interface {
	// Load returns the current document for kind, or the kind's empty
	// default when nothing has been saved yet.
	Load(ctx context.Context, kind string) (json.RawMessage, error)

	// Save replaces the document for kind and returns the stored value.
	Save(ctx context.Context, kind string, doc json.RawMessage) (json.RawMessage, error)
}

// Kinds returns all known entity kinds.
func Kinds() []string {
	return []string{KindSettings, KindAuths, KindProxies, KindCerts, KindValidationRules}
}

// KnownKind reports whether kind is one of the known entity kinds.
func KnownKind(kind string) bool {
	switch kind {
	case KindSettings, KindAuths, KindProxies, KindCerts, KindValidationRules:
		return true
	}
	return false
}

// defaultDoc is what Load returns before the first Save: an empty object
// for the singular settings document, an empty list for everything else.
func defaultDoc(kind string) json.RawMessage {
	if kind == KindSettings {
		return json.RawMessage(`{}`)
	}
	return json.RawMessage(`[]`)
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// ValidateDoc checks that doc decodes to the schema of kind and that every
// entity passes its field constraints.
func ValidateDoc(kind string, doc json.RawMessage) error {
	switch kind {
	case KindSettings:
		var s types.Settings
		if err := json.Unmarshal(doc, &s); err != nil {
			return fmt.Errorf("decode %s: %w", kind, err)
		}
		return validate.Struct(s)
	case KindAuths:
		var items []types.Auth
		return validateList(kind, doc, &items)
	case KindProxies:
		var items []types.Proxy
		return validateList(kind, doc, &items)
	case KindCerts:
		var items []types.Cert
		return validateList(kind, doc, &items)
	case KindValidationRules:
		var items []types.ValidationRule
		return validateList(kind, doc, &items)
	}
	return fmt.Errorf("%w: %s", ErrUnknownKind, kind)
}

func validateList[T any](kind string, doc json.RawMessage, items *[]T) error {
	if err := json.Unmarshal(doc, items); err != nil {
		return fmt.Errorf("decode %s: %w", kind, err)
	}
	for i, item := range *items {
		if err := validate.Struct(item); err != nil {
			return fmt.Errorf("%s[%d]: %w", kind, i, err)
		}
	}
	return nil
}
