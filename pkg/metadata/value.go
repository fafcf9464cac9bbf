package metadata

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Kind identifies the shape held by a Value.
type Kind int

const (
	// KindScalar is a single string.
	KindScalar Kind = iota
	// KindList is an ordered sequence of strings.
	KindList
)

// Value is a raw metadata value: either a scalar string or a list of strings.
// The zero value is the empty scalar.
type Value struct {
	kind   Kind
	scalar string
	list   []string
}

// Scalar returns a scalar Value.
func Scalar(s string) Value {
	return Value{kind: KindScalar, scalar: s}
}

// List returns a list Value holding a copy of vs.
func List(vs ...string) Value {
	return Value{kind: KindList, list: append([]string(nil), vs...)}
}

// Kind returns the shape of v.
func (v Value) Kind() Kind {
	return v.kind
}

// IsList reports whether v is list-valued.
func (v Value) IsList() bool {
	return v.kind == KindList
}

// String returns the scalar, or the list elements joined by ",".
func (v Value) String() string {
	if v.kind == KindList {
		return strings.Join(v.list, ",")
	}
	return v.scalar
}

// Values returns v as an ordered sequence. A scalar becomes a one-element slice.
// The returned slice is a copy.
func (v Value) Values() []string {
	if v.kind == KindList {
		return append(make([]string, 0, len(v.list)), v.list...)
	}
	return []string{v.scalar}
}

// Split turns a scalar into a list by splitting on sep, trimming blanks and
// dropping empty parts. Lists and scalars without sep are returned unchanged.
func (v Value) Split(sep string) Value {
	if v.kind == KindList || sep == "" || !strings.Contains(v.scalar, sep) {
		return v
	}
	parts := strings.Split(v.scalar, sep)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return List(out...)
}

// Equal reports whether v and o hold the same shape and contents.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	if v.kind == KindScalar {
		return v.scalar == o.scalar
	}
	if len(v.list) != len(o.list) {
		return false
	}
	for i := range v.list {
		if v.list[i] != o.list[i] {
			return false
		}
	}
	return true
}

// MarshalJSON encodes a scalar as a JSON string and a list as a JSON array.
func (v Value) MarshalJSON() ([]byte, error) {
	if v.kind == KindList {
		if v.list == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(v.list)
	}
	return json.Marshal(v.scalar)
}

// UnmarshalJSON decodes a string as a scalar and an array as a list.
// Any other shape is kept as an opaque scalar holding its compact JSON text;
// array elements that are not strings are kept the same way.
func (v *Value) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		*v = Scalar("")
		return nil
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("metadata string: %w", err)
		}
		*v = Scalar(s)
	case '[':
		var raw []json.RawMessage
		if err := json.Unmarshal(data, &raw); err != nil {
			return fmt.Errorf("metadata list: %w", err)
		}
		out := make([]string, 0, len(raw))
		for _, elem := range raw {
			out = append(out, opaqueJSON(elem))
		}
		*v = List(out...)
	default:
		*v = Scalar(opaqueJSON(data))
	}
	return nil
}

// MarshalYAML encodes a scalar as a YAML string and a list as a sequence.
func (v Value) MarshalYAML() (any, error) {
	if v.kind == KindList {
		if v.list == nil {
			return []string{}, nil
		}
		return v.list, nil
	}
	return v.scalar, nil
}

// UnmarshalYAML mirrors UnmarshalJSON for YAML documents.
func (v *Value) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		*v = Scalar(node.Value)
	case yaml.SequenceNode:
		out := make([]string, 0, len(node.Content))
		for _, elem := range node.Content {
			if elem.Kind == yaml.ScalarNode {
				out = append(out, elem.Value)
				continue
			}
			out = append(out, opaqueYAML(elem))
		}
		*v = List(out...)
	case yaml.AliasNode:
		return v.UnmarshalYAML(node.Alias)
	default:
		*v = Scalar(opaqueYAML(node))
	}
	return nil
}

// opaqueJSON returns the string content of a JSON string, or the compact
// JSON text of anything else.
func opaqueJSON(data json.RawMessage) string {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		return s
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, data); err != nil {
		return string(data)
	}
	return buf.String()
}

// opaqueYAML renders a non-scalar YAML node as compact JSON, falling back to
// its YAML text when JSON cannot represent it (e.g. non-string map keys).
func opaqueYAML(node *yaml.Node) string {
	var decoded any
	if err := node.Decode(&decoded); err == nil {
		if b, err := json.Marshal(decoded); err == nil {
			return string(b)
		}
	}
	b, err := yaml.Marshal(node)
	if err != nil {
		return node.Value
	}
	return strings.TrimSpace(string(b))
}
