// Package styles maps node kinds to graphviz stencils and formats node
// labels. The catalog is a closed table with one entry per kind in the
// component taxonomy; anything else falls back to a plain ellipse.
package styles

import "github.com/matzehuels/enerviz/pkg/energy"

// Component fill colors, one per drawable kind.
const (
	ColorSource    = "#A4ADFB"
	ColorSink      = "#FFD6E0"
	ColorStorage   = "#90F1EF"
	ColorConverter = "#7BF1A8"
)

// Stencil is the shape/color/style bundle used to draw a node kind.
// Zero-valued fields are omitted from the emitted attributes.
type Stencil struct {
	Shape     string
	Color     string
	Style     string
	FillColor string

	// FixedSize pins the node to an explicit width and height instead
	// of sizing to the label. Used for busses, which draw as long thin
	// bars spanning their connections.
	FixedSize     bool
	Width, Height string

	// Wrap controls whether the display label is run through
	// FixedWidthText. Bus labels stay on one line to fit the bar.
	Wrap bool
}

// Legend display names, in catalog order.
var legendNames = map[energy.Kind]string{
	energy.KindBus:       "Bus",
	energy.KindSink:      "Sink",
	energy.KindSource:    "Source",
	energy.KindConverter: "Converter",
	energy.KindCHP:       "CHP",
	energy.KindStorage:   "Storage",
}

// catalog is the closed stencil table. Resolution is static: it depends
// only on the kind tag, never on node data.
var catalog = map[energy.Kind]Stencil{
	energy.KindBus: {
		Shape:     "rectangle",
		Style:     "filled",
		Color:     "lightgrey",
		FixedSize: true,
		Width:     "4.1",
		Height:    "0.3",
	},
	energy.KindSink: {
		Shape: "trapezium",
		Color: ColorSink,
		Wrap:  true,
	},
	energy.KindSource: {
		Shape: "invtrapezium",
		Color: ColorSource,
		Wrap:  true,
	},
	energy.KindConverter: {
		Shape: "rectangle",
		Color: ColorConverter,
		Wrap:  true,
	},
	energy.KindCHP: {
		Shape:     "rectangle",
		Style:     "filled",
		FillColor: "yellow;0.1:blue",
		Wrap:      true,
	},
	energy.KindStorage: {
		Shape: "rectangle",
		Style: "rounded",
		Color: ColorStorage,
		Wrap:  true,
	},
}

// Fallback is the stencil for kinds outside the taxonomy: a plain
// ellipse with no fill.
var Fallback = Stencil{Shape: "ellipse", Wrap: true}

// Placeholder is the stencil for a collapsed subnetwork: a dashed
// rectangle standing in for the whole hidden subtree.
var Placeholder = Stencil{Shape: "rectangle", Style: "dashed", Wrap: true}

// ForKind returns the stencil for k and whether k was found in the
// catalog. When not found, the Fallback stencil is returned and the
// caller is expected to log a diagnostic.
func ForKind(k energy.Kind) (Stencil, bool) {
	st, ok := catalog[k]
	if !ok {
		return Fallback, false
	}
	return st, true
}

// LegendName returns the display name for k in legend clusters, or
// "Component" for kinds outside the taxonomy.
func LegendName(k energy.Kind) string {
	if name, ok := legendNames[k]; ok {
		return name
	}
	return "Component"
}
