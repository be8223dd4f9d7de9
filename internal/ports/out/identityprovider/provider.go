package identityprovider

import (
	"context"
	"errors"
)

// ErrUnresolvable indicates the provider could not resolve the presented
// assertion into a profile (expired, revoked, or malformed).
var ErrUnresolvable = errors.New("external profile unresolvable")

// Profile is the normalized projection of an external identity. The core
// consumes only this shape; provider-specific protocol detail stays inside
// the adapter.
type Profile struct {
	Email      string
	ExternalID string
}

// Provider resolves an opaque provider assertion into a Profile. What the
// assertion is (access token, ID token) depends on the adapter's protocol.
type Provider interface {
	ResolveExternalProfile(ctx context.Context, assertion string) (Profile, error)

	// Name identifies the provider in stored external links (e.g. "google").
	Name() string
}
