// Package dot renders hierarchical energy systems as graphviz documents.
//
// The core of the package is a depth-bounded flattening of the node
// tree: subnetworks within the depth cutoff render as clusters, while
// subtrees below the cutoff collapse into a single dashed placeholder
// node. Edges that would cross into a hidden region are re-routed to
// the placeholder standing in for that region.
//
// All per-call state lives in a renderState that is rebuilt from
// scratch on every Source/Pipe/Render/View call, so repeated renders of
// the same system at different depths never interfere.
package dot

import (
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/enerviz/pkg/energy"
	apperrors "github.com/matzehuels/enerviz/pkg/errors"
	"github.com/matzehuels/enerviz/pkg/render/styles"
)

// Unbounded renders every nesting level present in the system.
const Unbounded = -1

// Output formats.
const (
	FormatPDF = "pdf"
	FormatSVG = "svg"
	FormatPNG = "png"
	FormatJPG = "jpg"
	FormatDOT = "dot"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatPDF: true,
	FormatSVG: true,
	FormatPNG: true,
	FormatJPG: true,
	FormatDOT: true,
}

// Default option values.
const (
	DefaultFilepath = "energy_system"
	DefaultFormat   = FormatPDF
	DefaultTxtWidth = 10
	DefaultFontSize = 10
)

// Options configures a Renderer.
type Options struct {
	// Filepath is the output path for Render. When it carries an
	// extension and Format is unset, the extension selects the format.
	Filepath string

	// Format is the output format: pdf (default), svg, png, jpg, dot.
	Format string

	// Legend adds a cluster with one sample node per stencil.
	Legend bool

	// TxtWidth is the maximum label line length before wrapping.
	TxtWidth int

	// FontSize is the label font size for component nodes.
	FontSize int

	// GraphAttrs are passed through verbatim as graph-level DOT
	// attributes.
	GraphAttrs map[string]string

	// Logger receives per-node diagnostics. Defaults to a discard
	// logger.
	Logger *log.Logger
}

// Renderer converts an energy system into flat graphviz documents at a
// chosen depth cutoff. The system must not be mutated while rendering.
type Renderer struct {
	system *energy.System
	opts   Options
	logger *log.Logger

	base string // output path without extension
}

// New validates opts, checks that the rendering backend is available,
// and returns a Renderer. Backend problems are fatal here rather than
// at render time, so a misconfigured environment fails fast with an
// installation hint.
func New(system *energy.System, opts Options) (*Renderer, error) {
	if system == nil {
		return nil, apperrors.New(apperrors.ErrCodeInvalidInput, "nil energy system")
	}

	if opts.Filepath == "" {
		opts.Filepath = DefaultFilepath
	}
	base := opts.Filepath
	if ext := filepath.Ext(opts.Filepath); ext != "" {
		base = strings.TrimSuffix(opts.Filepath, ext)
		if opts.Format == "" {
			opts.Format = strings.TrimPrefix(ext, ".")
		}
	}
	if opts.Format == "" {
		opts.Format = DefaultFormat
	}
	if !ValidFormats[opts.Format] {
		return nil, apperrors.New(apperrors.ErrCodeInvalidFormat,
			"invalid format %q (must be one of: pdf, svg, png, jpg, dot)", opts.Format)
	}
	if opts.TxtWidth <= 0 {
		opts.TxtWidth = DefaultTxtWidth
	}
	if opts.FontSize <= 0 {
		opts.FontSize = DefaultFontSize
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}

	if err := checkBackend(opts.Format); err != nil {
		return nil, err
	}

	return &Renderer{system: system, opts: opts, logger: opts.Logger, base: base}, nil
}

// Source returns the DOT description of the system flattened at
// maxDepth. Pass Unbounded to render every level.
func (r *Renderer) Source(maxDepth int) string {
	return r.build(maxDepth).String()
}

// =============================================================================
// Flattening traversal
// =============================================================================

// renderState holds everything accumulated during one render call. It
// is created fresh per call and discarded afterwards.
type renderState struct {
	doc      *document
	maxDepth int
	busses   []*energy.Node // every bus encountered, drawn or not
	boundary []boundaryLink // deferred edges crossing the cutoff
	warned   map[string]bool
}

// boundaryLink is a queued edge between a visible node and a collapsed
// subnetwork's placeholder, in original direction.
type boundaryLink struct {
	from, to string
}

func (r *Renderer) build(maxDepth int) *document {
	st := &renderState{
		doc:      newDocument(r.opts.GraphAttrs),
		maxDepth: r.resolveDepth(maxDepth),
		warned:   make(map[string]bool),
	}

	if r.opts.Legend {
		r.drawLegend(st.doc.root)
	}

	r.walk(st, r.system.Nodes, 0, st.doc.root, true)
	r.drawBusEdges(st)
	for _, l := range st.boundary {
		st.doc.root.Edge(l.from, l.to)
	}

	return st.doc
}

// resolveDepth pins the cutoff policy: Unbounded and any other negative
// value render the full tree, the latter with a warning. A negative
// cutoff never aborts the render.
func (r *Renderer) resolveDepth(maxDepth int) int {
	if maxDepth == Unbounded {
		return r.system.MaxDepth()
	}
	if maxDepth < 0 {
		r.logger.Warn("negative depth cutoff ignored, rendering full tree", "max_depth", maxDepth)
		return r.system.MaxDepth()
	}
	return maxDepth
}

// walk visits one nesting level. sec is the cluster the level renders
// into; visible is false inside collapsed subtrees, where traversal
// continues purely for bus bookkeeping.
func (r *Renderer) walk(st *renderState, nodes []*energy.Node, depth int, sec *section, visible bool) {
	var subnets, atoms []*energy.Node
	for _, n := range nodes {
		if n.IsSubnetwork() {
			subnets = append(subnets, n)
		} else {
			atoms = append(atoms, n)
		}
	}

	for _, s := range subnets {
		if !visible {
			r.walk(st, s.Subnodes, depth+1, sec, false)
			continue
		}

		cl := sec.Cluster("cluster_"+s.Label, s.Label)
		if depth+1 <= st.maxDepth {
			r.walk(st, s.Subnodes, depth+1, cl, true)
			continue
		}

		// Children fall below the cutoff: traverse them invisibly so
		// bus bookkeeping still happens, stand the whole subtree in as
		// one placeholder at the parent level, and queue every edge
		// that crosses the subtree boundary.
		r.walk(st, s.Subnodes, depth+1, cl, false)
		sec.Node(s.Label, r.nodeAttrs(styles.Placeholder, s.Label))
		r.collapse(st, s)
	}

	for _, n := range atoms {
		if n.IsBus() {
			st.busses = append(st.busses, n)
		}
		if !visible || n.Depth > st.maxDepth {
			continue
		}
		r.drawNode(st, sec, n)
	}
}

func (r *Renderer) drawNode(st *renderState, sec *section, n *energy.Node) {
	stencil, known := styles.ForKind(n.Kind)
	if !known && !st.warned[n.Label] {
		st.warned[n.Label] = true
		r.logger.Warn("component kind has no stencil, rendering as ellipse",
			"label", n.Label, "kind", string(n.Kind))
	}
	sec.Node(n.Label, r.nodeAttrs(stencil, n.Label))
}

// nodeAttrs serializes a stencil into a DOT attribute list. The node id
// is always the raw label; wrapping only affects the displayed text, so
// node identity is stable across renders at different depths.
func (r *Renderer) nodeAttrs(st styles.Stencil, label string) []string {
	display := label
	if st.Wrap {
		display = styles.FixedWidthText(label, r.opts.TxtWidth)
	}

	attrs := []string{fmt.Sprintf("label=%q", display)}
	if st.Shape != "" {
		attrs = append(attrs, fmt.Sprintf("shape=%q", st.Shape))
	}
	if st.Style != "" {
		attrs = append(attrs, fmt.Sprintf("style=%q", st.Style))
	}
	if st.Color != "" {
		attrs = append(attrs, fmt.Sprintf("color=%q", st.Color))
	}
	if st.FillColor != "" {
		attrs = append(attrs, fmt.Sprintf("fillcolor=%q", st.FillColor))
	}
	attrs = append(attrs, fmt.Sprintf("fontsize=%q", strconv.Itoa(r.opts.FontSize)))
	if st.FixedSize {
		attrs = append(attrs,
			`fixedsize="shape"`,
			fmt.Sprintf("width=%q", st.Width),
			fmt.Sprintf("height=%q", st.Height),
			fmt.Sprintf("tooltip=%q", label),
		)
	}
	return attrs
}

// collapse records the boundary connections of a subnetwork whose
// children fall below the cutoff: every edge with one endpoint strictly
// inside s's subtree and the other at or above s's depth is queued with
// the inner endpoint replaced by s. The queued links are drawn after
// the traversal completes, once the placeholder exists.
func (r *Renderer) collapse(st *renderState, s *energy.Node) {
	members := s.Subtree()
	for _, bus := range r.system.Busses() {
		for _, p := range bus.Inputs {
			r.classifyBoundary(st, s, members, p, bus)
		}
		for _, c := range bus.Outputs {
			r.classifyBoundary(st, s, members, bus, c)
		}
	}
}

func (r *Renderer) classifyBoundary(st *renderState, s *energy.Node, members map[*energy.Node]bool, from, to *energy.Node) {
	fromIn, toIn := members[from], members[to]
	switch {
	case fromIn && !toIn && to.Depth <= s.Depth:
		st.boundary = append(st.boundary, boundaryLink{from: s.Label, to: to.Label})
	case toIn && !fromIn && from.Depth <= s.Depth:
		st.boundary = append(st.boundary, boundaryLink{from: from.Label, to: s.Label})
	}
}

// drawBusEdges is the second pass: directed edges for every remembered
// bus within the cutoff. Edges with an endpoint beyond the cutoff are
// skipped here; if they cross a collapsed boundary they were already
// queued by collapse.
func (r *Renderer) drawBusEdges(st *renderState) {
	for _, bus := range st.busses {
		if bus.Depth > st.maxDepth {
			continue
		}
		for _, p := range bus.Inputs {
			if p.Depth <= st.maxDepth {
				st.doc.root.Edge(p.Label, bus.Label)
			}
		}
		for _, c := range bus.Outputs {
			if c.Depth <= st.maxDepth {
				st.doc.root.Edge(bus.Label, c.Label)
			}
		}
	}
}

// drawLegend emits one sample node per catalog stencil in a dedicated
// cluster. Legend ids are namespaced so they can never merge with data
// nodes.
func (r *Renderer) drawLegend(root *section) {
	cl := root.Cluster("cluster_legend", "Legend")
	for _, k := range energy.KnownKinds {
		stencil, _ := styles.ForKind(k)
		cl.Node("legend_"+string(k), r.legendAttrs(stencil, styles.LegendName(k)))
	}
}

// legendAttrs is nodeAttrs with an explicit display label distinct from
// the node id.
func (r *Renderer) legendAttrs(st styles.Stencil, name string) []string {
	attrs := r.nodeAttrs(st, name)
	attrs[0] = fmt.Sprintf("label=%q", name)
	return attrs
}
