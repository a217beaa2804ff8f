// Package energy defines the data model for hierarchical energy-system
// networks: busses, components, and nested subnetworks.
//
// A System owns a set of root-level nodes. A Node with child nodes is a
// subnetwork; its children live one nesting level deeper. Busses carry
// the connectivity of the network: every edge in the system is either an
// input of a bus (producer → bus) or an output of a bus (bus → consumer).
//
// The model is immutable for the duration of a rendering pass. Systems
// are typically loaded from JSON documents (see ReadSystem), which
// resolves edge references and assigns depths.
package energy

// Kind classifies a node within the closed component taxonomy.
type Kind string

// Node kinds. Anything outside this set renders with the generic
// fallback stencil.
const (
	KindBus       Kind = "bus"
	KindSink      Kind = "sink"
	KindSource    Kind = "source"
	KindConverter Kind = "converter"
	KindCHP       Kind = "chp"
	KindStorage   Kind = "storage"
	KindUnknown   Kind = ""
)

// KnownKinds lists the taxonomy in stable display order.
var KnownKinds = []Kind{
	KindBus,
	KindSink,
	KindSource,
	KindConverter,
	KindCHP,
	KindStorage,
}

// IsKnown reports whether k is part of the closed taxonomy.
func (k Kind) IsKnown() bool {
	for _, known := range KnownKinds {
		if k == known {
			return true
		}
	}
	return false
}

// Node is an entity in the energy-system graph.
//
// Label is the node's identity: it must be unique within its nesting
// level, and edge references resolve by label. Depth is the nesting
// level relative to the root (root nodes have depth 0); a node's depth
// always equals its parent's depth plus one.
//
// Inputs and Outputs are only meaningful for bus nodes. They are kept
// as ordered slices rather than maps so that traversal order, and with
// it the rendered document, is deterministic.
type Node struct {
	Label    string
	Kind     Kind
	Depth    int
	Subnodes []*Node

	Inputs  []*Node // producers feeding this bus
	Outputs []*Node // consumers fed by this bus
}

// IsSubnetwork reports whether the node has child nodes. Subnetworks
// are never assigned a visual shape; they render as clusters or, when
// collapsed, as a single dashed placeholder.
func (n *Node) IsSubnetwork() bool { return len(n.Subnodes) > 0 }

// IsBus reports whether the node is a bus.
func (n *Node) IsBus() bool { return n.Kind == KindBus }

// System is an energy-system network: an ordered collection of
// root-level nodes plus the length of the optimisation horizon the
// results align to (0 when unknown).
type System struct {
	Nodes     []*Node
	Timesteps int
}

// Walk visits every node in the system depth-first in document order.
// Returning false from fn stops the walk.
func (s *System) Walk(fn func(*Node) bool) {
	walkNodes(s.Nodes, fn)
}

func walkNodes(nodes []*Node, fn func(*Node) bool) bool {
	for _, n := range nodes {
		if !fn(n) {
			return false
		}
		if !walkNodes(n.Subnodes, fn) {
			return false
		}
	}
	return true
}

// MaxDepth returns the maximum depth present anywhere in the system.
// An empty system has depth 0.
func (s *System) MaxDepth() int {
	max := 0
	s.Walk(func(n *Node) bool {
		if n.Depth > max {
			max = n.Depth
		}
		return true
	})
	return max
}

// Busses returns every bus in the system in traversal order, at any
// depth. Bus membership is independent of rendering visibility.
func (s *System) Busses() []*Node {
	var busses []*Node
	s.Walk(func(n *Node) bool {
		if n.IsBus() {
			busses = append(busses, n)
		}
		return true
	})
	return busses
}

// AssignDepths recomputes Depth for every node from its nesting level,
// restoring the depth invariant after manual construction.
func (s *System) AssignDepths() {
	assignDepths(s.Nodes, 0)
}

func assignDepths(nodes []*Node, depth int) {
	for _, n := range nodes {
		n.Depth = depth
		assignDepths(n.Subnodes, depth+1)
	}
}

// Subtree returns the set of nodes strictly inside n, i.e. all
// descendants excluding n itself.
func (n *Node) Subtree() map[*Node]bool {
	members := make(map[*Node]bool)
	var collect func(nodes []*Node)
	collect = func(nodes []*Node) {
		for _, c := range nodes {
			members[c] = true
			collect(c.Subnodes)
		}
	}
	collect(n.Subnodes)
	return members
}
