// Package group derives inventory group membership from host metadata.
//
// For every requested group key present in a host's metadata, each of the
// key's values names a group the host belongs to. List-valued keys fan out:
// a host tagged type=[web, frontend] joins both "web" and "frontend".
package group

import (
	"sort"

	"github.com/zarrenspry/vcd-inventory/pkg/metadata"
)

// Assign returns the names of the groups md places a host in for the given
// keys. Names are unique and ordered by key order, then value order.
// Empty values never name a group.
func Assign(md metadata.Normalized, keys []string) []string {
	var names Set
	for _, key := range keys {
		for _, v := range md[key] {
			if v == "" {
				continue
			}
			names.Add(v)
		}
	}
	return names.Items()
}

// Builder accumulates group membership across hosts.
// Host order within a group follows the order of Add calls.
// Builder is not safe for concurrent use.
type Builder struct {
	keys     []string
	reserved map[string]struct{}
	groups   map[string]*Set
}

// NewBuilder creates a Builder for the given group keys. Values equal to one of
// the reserved names are never turned into groups.
func NewBuilder(keys []string, reserved ...string) *Builder {
	b := &Builder{
		keys:     append([]string(nil), keys...),
		reserved: make(map[string]struct{}, len(reserved)),
		groups:   make(map[string]*Set),
	}
	for _, r := range reserved {
		b.reserved[r] = struct{}{}
	}
	return b
}

// Keys returns the group keys the builder evaluates.
func (b *Builder) Keys() []string {
	return append([]string(nil), b.keys...)
}

// Assign computes group names for md. Names colliding with a reserved name are
// returned separately in dropped. Assign does not modify the builder and may be
// called concurrently.
func (b *Builder) Assign(md metadata.Normalized) (groups, dropped []string) {
	for _, name := range Assign(md, b.keys) {
		if _, ok := b.reserved[name]; ok {
			dropped = append(dropped, name)
			continue
		}
		groups = append(groups, name)
	}
	return groups, dropped
}

// Add records host as a member of each named group.
func (b *Builder) Add(host string, groups []string) {
	for _, g := range groups {
		s, ok := b.groups[g]
		if !ok {
			s = &Set{}
			b.groups[g] = s
		}
		s.Add(host)
	}
}

// Names returns the group names seen so far, sorted.
func (b *Builder) Names() []string {
	names := make([]string, 0, len(b.groups))
	for n := range b.groups {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Members returns the hosts in group name, in insertion order.
func (b *Builder) Members(name string) []string {
	s, ok := b.groups[name]
	if !ok {
		return nil
	}
	return s.Items()
}

// Groups returns every group with its members.
func (b *Builder) Groups() map[string][]string {
	out := make(map[string][]string, len(b.groups))
	for n, s := range b.groups {
		out[n] = s.Items()
	}
	return out
}
