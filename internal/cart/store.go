package cart

import (
	"context"
	"encoding/json"
	"fmt"
)

// envelopeVersion is bumped whenever the serialized cart shape changes in an
// incompatible way. Snapshots carrying a different version are discarded
// instead of half-parsed.
const envelopeVersion = 1

// Store persists one cart snapshot per session key.
type Store interface {
	// Load returns the cart for the session, or an empty cart when no
	// snapshot exists or the stored one is unreadable.
	Load(ctx context.Context, sessionID string) (*Cart, error)
	// Save overwrites the session's snapshot.
	Save(ctx context.Context, sessionID string, cart *Cart) error
	// Delete removes the session's snapshot.
	Delete(ctx context.Context, sessionID string) error
}

type envelope struct {
	Version int   `json:"version"`
	Cart    *Cart `json:"cart"`
}

func encodeCart(cart *Cart) ([]byte, error) {
	if cart == nil {
		cart = &Cart{}
	}
	payload, err := json.Marshal(envelope{Version: envelopeVersion, Cart: cart})
	if err != nil {
		return nil, fmt.Errorf("encoding cart snapshot: %w", err)
	}
	return payload, nil
}

// decodeCart parses a stored snapshot. Corrupt payloads and version
// mismatches return (nil, false) so callers can start the session over with
// an empty cart rather than fail requests on stale state.
func decodeCart(payload []byte) (*Cart, bool) {
	var env envelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return nil, false
	}
	if env.Version != envelopeVersion || env.Cart == nil {
		return nil, false
	}
	return env.Cart, true
}
