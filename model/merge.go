package model

import (
	"cmp"
	"slices"
)

// MergeNode merges n into the root of m.
//
// A scalar replaces an existing node with the same key only when its order
// is not lower, so on equal order the incoming node wins. A list is appended
// to an existing list with the same key and the combined items are stably
// sorted by order. A map is merged key by key into an existing map. Nodes
// are copied on insert, so m never shares nodes with n.
func (m *Model) MergeNode(n Node) {
	mergeInto(m.root, n)
}

// Merge merges every top-level node of other into m.
func (m *Model) Merge(other *Model) {
	if other == nil {
		return
	}
	for _, n := range other.root.children {
		mergeInto(m.root, n)
	}
}

// Global builds a single model from models, merged in order. Nil models are
// skipped.
func Global(models ...*Model) *Model {
	g := New()
	for _, m := range models {
		g.Merge(m)
	}
	return g
}

// Derive returns a new model made of m with local merged on top. Neither m
// nor local is modified.
func (m *Model) Derive(local *Model) *Model {
	d := New()
	d.Merge(m)
	d.Merge(local)
	return d
}

func mergeInto(parent *Map, incoming Node) {
	existing, ok := parent.Get(incoming.Key())
	if !ok {
		n := incoming.clone()
		if l, isList := n.(*List); isList {
			sortItems(l)
		}
		parent.set(n)
		return
	}

	switch in := incoming.(type) {
	case *List:
		if cur, ok := existing.(*List); ok {
			for _, item := range in.items {
				cur.items = append(cur.items, item.clone())
			}
			sortItems(cur)
			return
		}
	case *Map:
		if cur, ok := existing.(*Map); ok {
			for _, child := range in.children {
				mergeInto(cur, child)
			}
			return
		}
	}

	if incoming.Order() >= existing.Order() {
		parent.set(incoming.clone())
	}
}

func sortItems(l *List) {
	slices.SortStableFunc(l.items, func(a, b Node) int {
		return cmp.Compare(a.Order(), b.Order())
	})
}
