// Package resolver picks the inventory address of a VM from the addresses
// reported on its network connections.
package resolver

import (
	"fmt"
	"net/netip"
	"strings"
)

// Resolver selects addresses inside a configured network.
type Resolver struct {
	prefix netip.Prefix
	any    bool
}

// New returns a Resolver for cidr. An empty cidr accepts any valid address.
func New(cidr string) (*Resolver, error) {
	cidr = strings.TrimSpace(cidr)
	if cidr == "" {
		return &Resolver{any: true}, nil
	}
	p, err := netip.ParsePrefix(cidr)
	if err != nil {
		return nil, fmt.Errorf("invalid cidr %q: %w", cidr, err)
	}
	return &Resolver{prefix: p.Masked()}, nil
}

// Resolve returns the first valid address contained in the network.
func (r *Resolver) Resolve(addresses ...string) (string, bool) {
	for _, a := range addresses {
		ip, err := netip.ParseAddr(strings.TrimSpace(a))
		if err != nil {
			continue
		}
		ip = ip.Unmap()
		if r.any || r.prefix.Contains(ip) {
			return ip.String(), true
		}
	}
	return "", false
}

// String returns the network, or "*" when any address is accepted.
func (r *Resolver) String() string {
	if r.any {
		return "*"
	}
	return r.prefix.String()
}
