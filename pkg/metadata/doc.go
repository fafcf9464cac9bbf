// Package metadata models host metadata and its normalized form.
//
// Raw metadata arrives from the virtualization API as a mapping from key to
// either a single string or a list of strings (Value). Normalize flattens it
// into Normalized, a mapping from key to an ordered sequence of values, so that
// filtering and grouping never need to branch on the value shape:
//
//	raw := map[string]metadata.Value{
//	    "env":  metadata.Scalar("Development"),
//	    "type": metadata.List("web", "frontend"),
//	}
//	md := metadata.Normalize(raw)
//	md.Contains("type", "frontend") // true
//
// Nested structures beyond one level of list are not decomposed: they are kept
// as opaque strings holding their compact JSON text.
package metadata
