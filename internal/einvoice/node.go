package einvoice

import "strings"

// Node is one element of a parsed document. Name is the canonical name: the
// local part lower-cased with any namespace prefix dropped. Prefix keeps the
// original prefix (lower-cased) for the few lookups that must tell cbc:ID from
// some other ID.
type Node struct {
	Name     string
	Prefix   string
	Attrs    map[string]string
	Text     string
	Children []*Node
}

// CanonicalName strips a namespace prefix and lower-cases the rest, so "cbc:ID",
// "ID" and "id" all compare equal.
func CanonicalName(name string) string {
	if i := strings.LastIndexByte(name, ':'); i >= 0 {
		name = name[i+1:]
	}
	return strings.ToLower(strings.TrimSpace(name))
}

func canonicalAll(names []string) []string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = CanonicalName(n)
	}
	return out
}

// Is reports whether the node's canonical name matches any candidate.
func (n *Node) Is(candidates ...string) bool {
	if n == nil {
		return false
	}
	for _, c := range candidates {
		if n.Name == CanonicalName(c) {
			return true
		}
	}
	return false
}

// Find returns the first direct child matching the candidates. Candidates are
// tried in order, so an earlier candidate wins over an earlier child.
func (n *Node) Find(candidates ...string) *Node {
	if n == nil {
		return nil
	}
	for _, c := range canonicalAll(candidates) {
		for _, child := range n.Children {
			if child.Name == c {
				return child
			}
		}
	}
	return nil
}

// FindPrefixed returns the first direct child with the given prefix and name.
func (n *Node) FindPrefixed(prefix, name string) *Node {
	if n == nil {
		return nil
	}
	prefix = strings.ToLower(prefix)
	name = CanonicalName(name)
	for _, child := range n.Children {
		if child.Prefix == prefix && child.Name == name {
			return child
		}
	}
	return nil
}

// All returns every direct child matching any candidate, in document order.
// The result is never nil, so one or many occurrences look the same to callers.
func (n *Node) All(candidates ...string) []*Node {
	out := []*Node{}
	if n == nil {
		return out
	}
	want := canonicalAll(candidates)
	for _, child := range n.Children {
		for _, c := range want {
			if child.Name == c {
				out = append(out, child)
				break
			}
		}
	}
	return out
}

// Path walks a chain of child names and returns the final node or nil.
func (n *Node) Path(names ...string) *Node {
	cur := n
	for _, name := range names {
		cur = cur.Find(name)
		if cur == nil {
			return nil
		}
	}
	return cur
}

// Deep searches descendants breadth-first, trying candidates in order.
func (n *Node) Deep(candidates ...string) *Node {
	if n == nil {
		return nil
	}
	for _, c := range canonicalAll(candidates) {
		queue := append([]*Node(nil), n.Children...)
		for len(queue) > 0 {
			cur := queue[0]
			queue = queue[1:]
			if cur.Name == c {
				return cur
			}
			queue = append(queue, cur.Children...)
		}
	}
	return nil
}

// DeepAll returns every descendant named name, in document order. Matches are
// not searched below, so nested elements of the same name are not repeated.
func (n *Node) DeepAll(name string) []*Node {
	out := []*Node{}
	if n == nil {
		return out
	}
	name = CanonicalName(name)
	var walk func(*Node)
	walk = func(cur *Node) {
		for _, child := range cur.Children {
			if child.Name == name {
				out = append(out, child)
				continue
			}
			walk(child)
		}
	}
	walk(n)
	return out
}

// parentOf returns the element whose direct child is target, or nil when
// target is n itself or not below n.
func (n *Node) parentOf(target *Node) *Node {
	if n == nil {
		return nil
	}
	for _, child := range n.Children {
		if child == target {
			return n
		}
		if p := child.parentOf(target); p != nil {
			return p
		}
	}
	return nil
}

// Value returns the node text, or "" for a nil node.
func (n *Node) Value() string {
	if n == nil {
		return ""
	}
	return n.Text
}

// Attr returns an attribute by canonical name.
func (n *Node) Attr(name string) string {
	if n == nil {
		return ""
	}
	return n.Attrs[CanonicalName(name)]
}
