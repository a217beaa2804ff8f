package energy

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
)

// =============================================================================
// Document format
// =============================================================================

// systemJSON is the wire format for a System.
type systemJSON struct {
	Nodes     []nodeJSON `json:"nodes"`
	Timesteps int        `json:"timesteps,omitempty"`
}

// nodeJSON is the wire format for a Node. Bus connections reference
// other nodes by label; references are resolved against the whole tree
// after decoding.
type nodeJSON struct {
	Label    string     `json:"label"`
	Kind     string     `json:"kind,omitempty"`
	Subnodes []nodeJSON `json:"subnodes,omitempty"`
	Inputs   []string   `json:"inputs,omitempty"`
	Outputs  []string   `json:"outputs,omitempty"`
}

// =============================================================================
// Reading
// =============================================================================

// ReadSystemFile reads a JSON system document from path.
func ReadSystemFile(path string, logger *log.Logger) (*System, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadSystem(f, logger)
}

// ReadSystem decodes a JSON system document, assigns depths, and
// resolves bus connection references by label.
//
// Labels are expected to be unique; when a label occurs more than once
// in the tree, references resolve to the first occurrence in document
// order and a debug entry is logged. A reference to a label that does
// not exist anywhere in the tree is an error.
func ReadSystem(r io.Reader, logger *log.Logger) (*System, error) {
	if logger == nil {
		logger = log.New(io.Discard)
	}

	var doc systemJSON
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode system: %w", err)
	}

	s := &System{Timesteps: doc.Timesteps}
	for _, nj := range doc.Nodes {
		s.Nodes = append(s.Nodes, buildNode(nj))
	}
	s.AssignDepths()

	index := make(map[string]*Node)
	s.Walk(func(n *Node) bool {
		if _, seen := index[n.Label]; seen {
			logger.Debug("duplicate label, references resolve to first occurrence", "label", n.Label)
			return true
		}
		index[n.Label] = n
		return true
	})

	var refs []pendingRefs
	collectRefs(doc.Nodes, s.Nodes, &refs)
	for _, p := range refs {
		for _, label := range p.inputs {
			target, ok := index[label]
			if !ok {
				return nil, fmt.Errorf("bus %q: unresolved input %q", p.node.Label, label)
			}
			p.node.Inputs = append(p.node.Inputs, target)
		}
		for _, label := range p.outputs {
			target, ok := index[label]
			if !ok {
				return nil, fmt.Errorf("bus %q: unresolved output %q", p.node.Label, label)
			}
			p.node.Outputs = append(p.node.Outputs, target)
		}
	}

	return s, nil
}

func buildNode(nj nodeJSON) *Node {
	n := &Node{Label: nj.Label, Kind: Kind(nj.Kind)}
	for _, cj := range nj.Subnodes {
		n.Subnodes = append(n.Subnodes, buildNode(cj))
	}
	return n
}

// pendingRefs pairs a decoded node with its unresolved label references.
type pendingRefs struct {
	node    *Node
	inputs  []string
	outputs []string
}

func collectRefs(docs []nodeJSON, nodes []*Node, out *[]pendingRefs) {
	for i, nj := range docs {
		if len(nj.Inputs) > 0 || len(nj.Outputs) > 0 {
			*out = append(*out, pendingRefs{node: nodes[i], inputs: nj.Inputs, outputs: nj.Outputs})
		}
		collectRefs(nj.Subnodes, nodes[i].Subnodes, out)
	}
}

// =============================================================================
// Writing
// =============================================================================

// MarshalSystem converts a System to indented JSON bytes.
func MarshalSystem(s *System) ([]byte, error) {
	doc := systemJSON{Timesteps: s.Timesteps}
	for _, n := range s.Nodes {
		doc.Nodes = append(doc.Nodes, encodeNode(n))
	}
	return json.MarshalIndent(doc, "", "  ")
}

func encodeNode(n *Node) nodeJSON {
	nj := nodeJSON{Label: n.Label, Kind: string(n.Kind)}
	for _, c := range n.Subnodes {
		nj.Subnodes = append(nj.Subnodes, encodeNode(c))
	}
	for _, in := range n.Inputs {
		nj.Inputs = append(nj.Inputs, in.Label)
	}
	for _, out := range n.Outputs {
		nj.Outputs = append(nj.Outputs, out.Label)
	}
	return nj
}
