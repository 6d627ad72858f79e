// Package principal carries the caller identity established for one request.
//
// An Identity is either anonymous or a verified subject with its roles. It is
// stored in the request context by the authentication middleware and read by
// everything downstream; it never outlives the request.
package principal

import (
	"context"
	"slices"

	"github.com/samber/lo"
)

// Identity is the per-request caller. The zero value is anonymous.
type Identity struct {
	Subject string
	Roles   []string
}

// Anonymous returns the identity used when no valid token was presented.
func Anonymous() Identity {
	return Identity{}
}

// IsAnonymous reports whether no subject was verified.
func (i Identity) IsAnonymous() bool {
	return i.Subject == ""
}

// HasRole reports whether role is among the identity's roles.
func (i Identity) HasRole(role string) bool {
	return slices.Contains(i.Roles, role)
}

// Grants returns the roles with duplicates removed, first occurrence first.
func (i Identity) Grants() []string {
	return lo.Uniq(i.Roles)
}

type identityKey struct{}

// WithIdentity returns a copy of ctx carrying id.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// FromContext returns the identity stored in ctx, or Anonymous.
func FromContext(ctx context.Context) Identity {
	id, ok := ctx.Value(identityKey{}).(Identity)
	if !ok {
		return Anonymous()
	}
	return id
}
