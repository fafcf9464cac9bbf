package inventory

import (
	"encoding/json"
	"sort"

	"github.com/zarrenspry/vcd-inventory/pkg/hostvars"
)

// MetaKey is the top-level key holding per-host variables.
const MetaKey = "_meta"

// DefaultRootGroup lists every host that passed filtering.
const DefaultRootGroup = "discovered"

// Result is an assembled inventory.
type Result struct {
	// RootGroup is the name under which Discovered is emitted.
	RootGroup string

	// Groups maps a derived group name to its members in discovery order.
	Groups map[string][]string

	// Discovered lists every host that passed filtering, in discovery order.
	Discovered []string

	// HostVars maps a hostname to its variables.
	HostVars map[string]hostvars.Vars
}

type hostList struct {
	Hosts []string `json:"hosts" yaml:"hosts"`
}

type meta struct {
	HostVars map[string]hostvars.Vars `json:"hostvars" yaml:"hostvars"`
}

// Document returns the result in the shape consumed by the orchestration tool:
//
//	{"<group>": {"hosts": [...]}, "_meta": {"hostvars": {...}}, "<root>": {"hosts": [...]}}
func (r *Result) Document() map[string]any {
	doc := make(map[string]any, len(r.Groups)+2)
	for name, members := range r.Groups {
		doc[name] = hostList{Hosts: nonNil(members)}
	}

	vars := r.HostVars
	if vars == nil {
		vars = map[string]hostvars.Vars{}
	}
	doc[MetaKey] = meta{HostVars: vars}
	doc[r.rootGroup()] = hostList{Hosts: nonNil(r.Discovered)}
	return doc
}

// MarshalJSON encodes the result as Document.
func (r *Result) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.Document())
}

// MarshalYAML encodes the result as Document.
func (r *Result) MarshalYAML() (any, error) {
	return r.Document(), nil
}

// Host returns the variables of name.
func (r *Result) Host(name string) (hostvars.Vars, bool) {
	v, ok := r.HostVars[name]
	return v, ok
}

// GroupNames returns the derived group names, sorted.
func (r *Result) GroupNames() []string {
	names := make([]string, 0, len(r.Groups))
	for n := range r.Groups {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func (r *Result) rootGroup() string {
	if r.RootGroup == "" {
		return DefaultRootGroup
	}
	return r.RootGroup
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
