// Package filter decides host inclusion from user supplied metadata predicates.
package filter

import (
	"fmt"
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"

	"github.com/zarrenspry/vcd-inventory/pkg/metadata"
)

// maxSuggestDistance bounds how far a known key may be from a filter key to
// be offered as a suggestion.
const maxSuggestDistance = 2

// Spec maps a metadata key to the value a host must carry for it.
type Spec map[string]string

// Passes reports whether md satisfies every condition in spec.
// An empty spec always passes. A missing key fails its condition; a
// list-valued key matches when the required value is any of its elements.
func Passes(md metadata.Normalized, spec Spec) bool {
	for key, want := range spec {
		if !md.Contains(key, want) {
			return false
		}
	}
	return true
}

// Keys returns the filter keys in sorted order.
func (s Spec) Keys() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// String renders the spec as sorted key=value pairs.
func (s Spec) String() string {
	parts := make([]string, 0, len(s))
	for _, k := range s.Keys() {
		parts = append(parts, k+"="+s[k])
	}
	return strings.Join(parts, ",")
}

// Parse builds a Spec from key=value pairs. The value may itself contain '='.
func Parse(pairs []string) (Spec, error) {
	spec := make(Spec, len(pairs))
	for _, p := range pairs {
		key, value, ok := strings.Cut(p, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid filter %q: expected key=value", p)
		}
		spec[key] = strings.TrimSpace(value)
	}
	return spec, nil
}

// Suggest returns the known key closest to key, if one is within a small
// edit distance. Used to point out likely typos in filter and group keys.
func Suggest(key string, known []string) (string, bool) {
	best, bestDist := "", maxSuggestDistance+1
	for _, k := range known {
		if k == key {
			return "", false
		}
		if d := levenshtein.ComputeDistance(key, k); d < bestDist {
			best, bestDist = k, d
		}
	}
	return best, best != ""
}
