// Package identity abstracts the platform identity provider consulted during
// session creation. Implementations are selected by the embedder at
// construction time; the session manager never probes for one at runtime.
package identity

import "context"

// Identity is an opaque platform identity plus the auth ticket proving it.
type Identity struct {
	PlatformUserID string
	AuthTicket     string
}

// Resolver yields a platform identity, or reports that none is available.
// Resolve returns ok=false when the platform is not present or signed out;
// an error is reserved for resolution attempts that actually failed.
type Resolver interface {
	Resolve(ctx context.Context) (id Identity, ok bool, err error)
}

// GuestResolver never yields an identity. It is the default for guest-only
// builds.
type GuestResolver struct{}

// Resolve always reports no identity available.
func (GuestResolver) Resolve(context.Context) (Identity, bool, error) {
	return Identity{}, false, nil
}

// StaticResolver yields a fixed identity. Embedders that already hold a
// platform ticket wire one of these in; tests use it as a stub.
type StaticResolver struct {
	Identity Identity
}

// Resolve returns the configured identity, or unavailable when it is empty.
func (r StaticResolver) Resolve(context.Context) (Identity, bool, error) {
	if r.Identity.PlatformUserID == "" {
		return Identity{}, false, nil
	}
	return r.Identity, true, nil
}
