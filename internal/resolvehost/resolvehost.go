// Package resolvehost provides a convenience implementation of
// directory.HostResolver backed by the standard resolver, so the core can
// exercise the extension point end-to-end without embedding DNS resolution
// logic itself (spec §1 Non-goal).
package resolvehost

import (
	"context"
	"net"
)

// Resolver resolves a host's fully-qualified domain name to its first
// returned IPv4 or IPv6 address.
type Resolver struct {
	resolver *net.Resolver
}

// New returns a Resolver using the standard net.Resolver.
func New() *Resolver {
	return &Resolver{resolver: &net.Resolver{}}
}

// Resolve implements directory.HostResolver.
func (r *Resolver) Resolve(ctx context.Context, fqdnUpper string) (string, bool) {
	addrs, err := r.resolver.LookupHost(ctx, fqdnUpper)
	if err != nil || len(addrs) == 0 {
		return "", false
	}
	return addrs[0], true
}
