package metadata

import "sort"

// Normalized maps a metadata key to its ordered values.
// A scalar raw value is held as a one-element sequence.
type Normalized map[string][]string

// Normalize flattens raw metadata. Every raw key is present in the result and
// value order is preserved. Nil or empty input yields an empty, non-nil map.
func Normalize(raw map[string]Value) Normalized {
	out := make(Normalized, len(raw))
	for k, v := range raw {
		out[k] = v.Values()
	}
	return out
}

// Values returns the values held for key.
func (n Normalized) Values(key string) ([]string, bool) {
	vs, ok := n[key]
	return vs, ok
}

// Contains reports whether key is present and value is one of its values.
func (n Normalized) Contains(key, value string) bool {
	for _, v := range n[key] {
		if v == value {
			return true
		}
	}
	return false
}

// Keys returns the metadata keys in sorted order.
func (n Normalized) Keys() []string {
	keys := make([]string, 0, len(n))
	for k := range n {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
