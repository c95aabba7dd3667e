package resolver

import (
	"fmt"

	"github.com/kingrea/modselect/internal/catalog"
)

// node tracks one open generic pick while its parameters are resolved. Nodes
// form a tree that mirrors the nested picks and belong to a single in-flight
// resolution, so they carry no locking.
type node struct {
	selected catalog.Type
	params   []catalog.Parameter
	resolved map[int]catalog.Closed

	parent   *node
	slot     string
	children []*node
}

func newNode(selected catalog.Type, parent *node, slot string) *node {
	n := &node{
		selected: selected,
		params:   selected.OrderedParameters(),
		resolved: make(map[int]catalog.Closed, len(selected.Parameters)),
		parent:   parent,
		slot:     slot,
	}
	if parent != nil {
		parent.children = append(parent.children, n)
	}
	return n
}

// record stores the closed argument for a parameter position.
func (n *node) record(param catalog.Parameter, arg catalog.Closed) {
	n.resolved[param.Position] = arg
}

// bindings maps already-resolved parameter names to their qualified names for
// dependent constraints.
func (n *node) bindings() map[string]string {
	if len(n.resolved) == 0 {
		return nil
	}
	out := make(map[string]string, len(n.resolved))
	for _, p := range n.params {
		if arg, ok := n.resolved[p.Position]; ok {
			out[p.Name] = arg.QualifiedName()
		}
	}
	return out
}

// path returns the slot chain from the outermost node inwards.
func (n *node) path(param string) []string {
	var chain []string
	for cur := n; cur != nil; cur = cur.parent {
		if cur.slot != "" {
			chain = append(chain, cur.slot)
		}
	}
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return append(chain, n.selected.DisplayName()+"."+param)
}

// close converts a fully resolved node into its closed type.
func (n *node) close() (catalog.Closed, error) {
	args := make([]catalog.Closed, len(n.params))
	for i, p := range n.params {
		arg, ok := n.resolved[p.Position]
		if !ok {
			return catalog.Closed{}, fmt.Errorf("resolver: %s parameter %s unresolved", n.selected.QualifiedName, p.Name)
		}
		args[i] = arg
	}
	return catalog.Construct(n.selected, args)
}

// abandon drops every partial result below and including n.
func (n *node) abandon() {
	if n.parent != nil {
		siblings := make([]*node, 0, len(n.parent.children))
		for _, sibling := range n.parent.children {
			if sibling != n {
				siblings = append(siblings, sibling)
			}
		}
		n.parent.children = siblings
	}
	n.release()
}

func (n *node) release() {
	for _, child := range n.children {
		child.release()
	}
	n.children = nil
	n.resolved = nil
	n.parent = nil
}
