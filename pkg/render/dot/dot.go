package dot

import (
	"bytes"
	"fmt"
	"maps"
	"slices"
	"strings"
)

// document is a DOT digraph under construction. Statements keep the
// order in which they were emitted, so the serialized source is fully
// determined by traversal order.
type document struct {
	attrs map[string]string // graph-level attributes, serialized sorted
	root  *section
}

func newDocument(attrs map[string]string) *document {
	return &document{attrs: attrs, root: &section{}}
}

// section is a statement container: the top-level digraph body or a
// cluster subgraph. Nested clusters are sections of their own.
type section struct {
	name  string // cluster name, empty for the root body
	label string
	items []item
}

// item is a single DOT statement or a nested cluster.
type item struct {
	stmt string
	sub  *section
}

// Node emits a node statement with the given id and attribute list.
func (s *section) Node(id string, attrs []string) {
	s.items = append(s.items, item{stmt: fmt.Sprintf("%q [%s];", id, strings.Join(attrs, ", "))})
}

// Edge emits a directed edge statement.
func (s *section) Edge(from, to string) {
	s.items = append(s.items, item{stmt: fmt.Sprintf("%q -> %q;", from, to)})
}

// Cluster opens a nested cluster subgraph and returns its section.
func (s *section) Cluster(name, label string) *section {
	sub := &section{name: name, label: label}
	s.items = append(s.items, item{sub: sub})
	return sub
}

func (d *document) String() string {
	var buf bytes.Buffer
	buf.WriteString("digraph {\n")
	for _, k := range slices.Sorted(maps.Keys(d.attrs)) {
		fmt.Fprintf(&buf, "  %s=%q;\n", k, d.attrs[k])
	}
	d.root.writeTo(&buf, "  ")
	buf.WriteString("}\n")
	return buf.String()
}

func (s *section) writeTo(buf *bytes.Buffer, indent string) {
	for _, it := range s.items {
		if it.sub != nil {
			fmt.Fprintf(buf, "%ssubgraph %q {\n", indent, it.sub.name)
			fmt.Fprintf(buf, "%s  label=%q;\n", indent, it.sub.label)
			it.sub.writeTo(buf, indent+"  ")
			fmt.Fprintf(buf, "%s}\n", indent)
			continue
		}
		fmt.Fprintf(buf, "%s%s\n", indent, it.stmt)
	}
}
