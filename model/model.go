// Package model holds the structured data templates are rendered against.
//
// A Model is a tree of keyed nodes rooted at a Map. There are three node
// kinds: Value (a string or boolean scalar), List and Map. Every node carries
// an order, used when models are merged: a scalar only replaces an existing
// one whose order is not higher, and list items are kept sorted by order.
package model

import (
	"slices"
	"strings"
)

// DefaultOrder is the order of nodes that do not declare one.
const DefaultOrder = 100

// Node is a model tree node: a *Value, *List or *Map.
type Node interface {
	// Key is the name of the node inside its parent map. List items have
	// no key.
	Key() string
	// Order is the merge priority of the node.
	Order() int

	data() any
	clone() Node
}

// Value is a scalar node.
type Value struct {
	key   string
	order int
	value any
}

// List is an ordered collection of unkeyed nodes.
type List struct {
	key   string
	order int
	items []Node
}

// Map is a collection of keyed nodes, kept in insertion order.
type Map struct {
	key      string
	order    int
	children []Node
}

// NewValue returns a string scalar.
func NewValue(key, value string, order int) *Value {
	return &Value{key: key, order: order, value: value}
}

// NewBool returns a boolean scalar.
func NewBool(key string, value bool, order int) *Value {
	return &Value{key: key, order: order, value: value}
}

// NewList returns a list holding items.
func NewList(key string, order int, items ...Node) *List {
	return &List{key: key, order: order, items: items}
}

// NewMap returns a map holding children. A later child replaces an earlier
// one with the same key.
func NewMap(key string, order int, children ...Node) *Map {
	m := &Map{key: key, order: order}
	for _, c := range children {
		m.set(c)
	}
	return m
}

func (v *Value) Key() string { return v.key }
func (v *Value) Order() int  { return v.order }

// Get returns the scalar, a string or a bool.
func (v *Value) Get() any { return v.value }

func (v *Value) data() any { return v.value }

func (v *Value) clone() Node {
	c := *v
	return &c
}

func (l *List) Key() string { return l.key }
func (l *List) Order() int  { return l.order }

// Items returns the list items in order.
func (l *List) Items() []Node { return slices.Clone(l.items) }

func (l *List) data() any {
	out := make([]any, 0, len(l.items))
	for _, item := range l.items {
		out = append(out, item.data())
	}
	return out
}

func (l *List) clone() Node {
	c := &List{key: l.key, order: l.order, items: make([]Node, 0, len(l.items))}
	for _, item := range l.items {
		c.items = append(c.items, item.clone())
	}
	return c
}

func (m *Map) Key() string { return m.key }
func (m *Map) Order() int  { return m.order }

// Children returns the map entries in insertion order.
func (m *Map) Children() []Node { return slices.Clone(m.children) }

// Get returns the child with the given key.
func (m *Map) Get(key string) (Node, bool) {
	if i := m.index(key); i >= 0 {
		return m.children[i], true
	}
	return nil, false
}

func (m *Map) index(key string) int {
	return slices.IndexFunc(m.children, func(n Node) bool { return n.Key() == key })
}

func (m *Map) set(n Node) {
	if i := m.index(n.Key()); i >= 0 {
		m.children[i] = n
		return
	}
	m.children = append(m.children, n)
}

func (m *Map) data() any {
	out := make(map[string]any, len(m.children))
	for _, c := range m.children {
		out[c.Key()] = c.data()
	}
	return out
}

func (m *Map) clone() Node {
	c := &Map{key: m.key, order: m.order, children: make([]Node, 0, len(m.children))}
	for _, child := range m.children {
		c.children = append(c.children, child.clone())
	}
	return c
}

// Model is a tree of nodes below an unnamed root map.
type Model struct {
	root *Map
}

// New returns a model holding nodes.
func New(nodes ...Node) *Model {
	return &Model{root: NewMap("", DefaultOrder, nodes...)}
}

// Root returns the root map.
func (m *Model) Root() *Map {
	return m.root
}

// Data exports the model as plain Go values: map[string]any for maps, []any
// for lists, and string or bool for scalars.
func (m *Model) Data() map[string]any {
	return m.root.data().(map[string]any)
}

// Lookup walks the map keys in path from the root.
func (m *Model) Lookup(path ...string) (Node, bool) {
	var cur Node = m.root
	for _, key := range path {
		mp, ok := cur.(*Map)
		if !ok {
			return nil, false
		}
		if cur, ok = mp.Get(key); !ok {
			return nil, false
		}
	}
	return cur, true
}

// String renders the model as an indented outline, mostly for logging.
func (m *Model) String() string {
	var b strings.Builder
	writeOutline(&b, m.root.children, 0)
	return b.String()
}

func writeOutline(b *strings.Builder, nodes []Node, depth int) {
	for _, n := range nodes {
		b.WriteString(strings.Repeat("  ", depth))
		if n.Key() != "" {
			b.WriteString(n.Key())
		} else {
			b.WriteString("-")
		}
		switch n := n.(type) {
		case *Value:
			b.WriteString(": ")
			b.WriteString(formatScalar(n.value))
			b.WriteString("\n")
		case *List:
			b.WriteString(" []\n")
			writeOutline(b, n.items, depth+1)
		case *Map:
			b.WriteString(" {}\n")
			writeOutline(b, n.children, depth+1)
		}
	}
}

func formatScalar(v any) string {
	switch v := v.(type) {
	case bool:
		if v {
			return "true"
		}
		return "false"
	case string:
		return v
	}
	return ""
}
