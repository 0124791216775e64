// Package orgtree implements segment-aware comparisons over organizational
// paths. A path is the ordered sequence of org IDs from tenant root down to
// a node, serialized as "/1000/1100/1110". All comparisons work segment by
// segment; segment "11" is never treated as a prefix of segment "110".
package orgtree

import "strings"

// Path is an ordered sequence of org-node IDs, root first.
type Path []string

// Parse splits a serialized path into segments. Leading and trailing
// separators are ignored; an empty or "/" input yields a nil path.
func Parse(s string) Path {
	s = strings.Trim(s, "/")
	if s == "" {
		return nil
	}
	return Path(strings.Split(s, "/"))
}

// String serializes p as "/seg/seg/...". A nil path serializes as "/".
func (p Path) String() string {
	if len(p) == 0 {
		return "/"
	}
	return "/" + strings.Join(p, "/")
}

// Tenant returns the root segment, or "" for an empty path.
func (p Path) Tenant() string {
	if len(p) == 0 {
		return ""
	}
	return p[0]
}

// Child returns a copy of p extended by one segment.
func (p Path) Child(segment string) Path {
	out := make(Path, len(p), len(p)+1)
	copy(out, p)
	return append(out, segment)
}

// Truncate returns the first n segments of p. It is used to reduce a full
// binding path to its tenant+phase default scope.
func (p Path) Truncate(n int) Path {
	if n >= len(p) {
		return p
	}
	return p[:n]
}

// HasPrefix reports whether prefix is an ancestor of p or equal to p,
// comparing whole segments.
func (p Path) HasPrefix(prefix Path) bool {
	if len(prefix) > len(p) {
		return false
	}
	for i, seg := range prefix {
		if p[i] != seg {
			return false
		}
	}
	return true
}

// IsAncestorOrSame reports whether one path is an ancestor of the other or
// the two are equal. It is symmetric: a tenant-level binding reaches down
// into its subtree, and a class-level binding reaches up to resources shared
// at tenant level.
func IsAncestorOrSame(a, b Path) bool {
	return a.HasPrefix(b) || b.HasPrefix(a)
}
