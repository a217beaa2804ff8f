package dot

import (
	"strings"
	"testing"

	"github.com/matzehuels/enerviz/pkg/energy"
	apperrors "github.com/matzehuels/enerviz/pkg/errors"
)

// flatSystem is a source feeding a sink through one bus, no nesting.
func flatSystem() *energy.System {
	pv := &energy.Node{Label: "pv", Kind: energy.KindSource}
	demand := &energy.Node{Label: "demand", Kind: energy.KindSink}
	bus := &energy.Node{
		Label:   "electricity",
		Kind:    energy.KindBus,
		Inputs:  []*energy.Node{pv},
		Outputs: []*energy.Node{demand},
	}
	s := &energy.System{Nodes: []*energy.Node{pv, bus, demand}}
	s.AssignDepths()
	return s
}

// nestedSystem has a root-level producer connected into a subnetwork:
// the grid feeds the house bus, which in turn feeds a demand sink, both
// of them one level down inside "household".
func nestedSystem() *energy.System {
	grid := &energy.Node{Label: "grid", Kind: energy.KindSource}
	demand := &energy.Node{Label: "demand", Kind: energy.KindSink}
	houseBus := &energy.Node{
		Label:   "house bus",
		Kind:    energy.KindBus,
		Inputs:  []*energy.Node{grid},
		Outputs: []*energy.Node{demand},
	}
	house := &energy.Node{Label: "household", Subnodes: []*energy.Node{houseBus, demand}}
	s := &energy.System{Nodes: []*energy.Node{grid, house}}
	s.AssignDepths()
	return s
}

// deepSystem nests two levels: the grid at the root feeds a bus that
// lives two levels down, inside the cellar subnetwork of the household.
func deepSystem() *energy.System {
	grid := &energy.Node{Label: "grid", Kind: energy.KindSource}
	freezer := &energy.Node{Label: "freezer", Kind: energy.KindSink}
	cellarBus := &energy.Node{
		Label:   "cellar bus",
		Kind:    energy.KindBus,
		Inputs:  []*energy.Node{grid},
		Outputs: []*energy.Node{freezer},
	}
	cellar := &energy.Node{Label: "cellar", Subnodes: []*energy.Node{cellarBus, freezer}}
	house := &energy.Node{Label: "household", Subnodes: []*energy.Node{cellar}}
	s := &energy.System{Nodes: []*energy.Node{grid, house}}
	s.AssignDepths()
	return s
}

func newTestRenderer(t *testing.T, s *energy.System) *Renderer {
	t.Helper()
	r, err := New(s, Options{Format: FormatDOT})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return r
}

func TestNew(t *testing.T) {
	tests := []struct {
		name       string
		system     *energy.System
		opts       Options
		wantErr    apperrors.Code
		wantFormat string
		wantOutput string
	}{
		{
			name:       "Defaults",
			system:     flatSystem(),
			opts:       Options{Format: FormatDOT},
			wantFormat: FormatDOT,
			wantOutput: "energy_system.dot",
		},
		{
			name:       "FormatFromExtension",
			system:     flatSystem(),
			opts:       Options{Filepath: "out/grid.svg"},
			wantFormat: FormatSVG,
			wantOutput: "out/grid.svg",
		},
		{
			name:       "ExplicitFormatWins",
			system:     flatSystem(),
			opts:       Options{Filepath: "grid.svg", Format: FormatPNG},
			wantFormat: FormatPNG,
			wantOutput: "grid.png",
		},
		{
			name:    "NilSystem",
			system:  nil,
			opts:    Options{Format: FormatDOT},
			wantErr: apperrors.ErrCodeInvalidInput,
		},
		{
			name:    "InvalidFormat",
			system:  flatSystem(),
			opts:    Options{Format: "gif"},
			wantErr: apperrors.ErrCodeInvalidFormat,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := New(tt.system, tt.opts)
			if tt.wantErr != "" {
				if err == nil {
					t.Fatal("expected error")
				}
				if !apperrors.Is(err, tt.wantErr) {
					t.Errorf("error code = %v, want %v", apperrors.GetCode(err), tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("New: %v", err)
			}
			if r.Format() != tt.wantFormat {
				t.Errorf("Format() = %q, want %q", r.Format(), tt.wantFormat)
			}
			if r.OutputPath() != tt.wantOutput {
				t.Errorf("OutputPath() = %q, want %q", r.OutputPath(), tt.wantOutput)
			}
		})
	}
}

func TestSourceFlat(t *testing.T) {
	r := newTestRenderer(t, flatSystem())
	src := r.Source(Unbounded)

	for _, want := range []string{
		`"pv" [`,
		`"electricity" [`,
		`"demand" [`,
		`"pv" -> "electricity";`,
		`"electricity" -> "demand";`,
	} {
		if !strings.Contains(src, want) {
			t.Errorf("missing %q in:\n%s", want, src)
		}
	}

	if strings.Contains(src, "dashed") {
		t.Error("flat render should have no placeholders")
	}
	if strings.Contains(src, "subgraph") {
		t.Error("flat render should have no clusters")
	}
}

func TestSourceStencils(t *testing.T) {
	r := newTestRenderer(t, flatSystem())
	src := r.Source(Unbounded)

	for _, want := range []string{
		`shape="invtrapezium"`, // source
		`shape="trapezium"`,    // sink
		`fixedsize="shape"`,    // bus draws as a fixed bar
		`tooltip="electricity"`,
	} {
		if !strings.Contains(src, want) {
			t.Errorf("missing %q in:\n%s", want, src)
		}
	}
}

func TestSourceNestedVisible(t *testing.T) {
	// Depth 1 covers the whole tree: the household renders as a cluster
	// containing its bus and sink, edges drawn normally.
	r := newTestRenderer(t, nestedSystem())
	src := r.Source(1)

	for _, want := range []string{
		`subgraph "cluster_household" {`,
		`"house bus" [`,
		`"demand" [`,
		`"grid" -> "house bus";`,
		`"house bus" -> "demand";`,
	} {
		if !strings.Contains(src, want) {
			t.Errorf("missing %q in:\n%s", want, src)
		}
	}

	if strings.Contains(src, "dashed") {
		t.Error("fully visible render should have no placeholders")
	}
}

func TestSourceNestedCollapsed(t *testing.T) {
	// Depth 0 hides the household internals: a dashed placeholder stands
	// in for the subtree and the grid edge is re-routed to it.
	r := newTestRenderer(t, nestedSystem())
	src := r.Source(0)

	if !strings.Contains(src, `"household" [`) || !strings.Contains(src, `style="dashed"`) {
		t.Errorf("missing dashed placeholder in:\n%s", src)
	}
	if !strings.Contains(src, `"grid" -> "household";`) {
		t.Errorf("missing boundary edge in:\n%s", src)
	}

	// Hidden internals are neither drawn nor wired directly.
	if strings.Contains(src, `"house bus" [`) {
		t.Error("hidden bus should not be drawn")
	}
	if strings.Contains(src, `"grid" -> "house bus";`) {
		t.Error("edge to hidden bus should be re-routed, not drawn")
	}
	if strings.Contains(src, `"house bus" -> "demand";`) {
		t.Error("edge fully inside hidden subtree should not be drawn")
	}
}

func TestSourceDeeplyNestedCollapsed(t *testing.T) {
	// Collapsing at depth 0 swallows the whole two-level subtree: one
	// placeholder for the household, one re-routed edge from the grid,
	// and nothing from the hidden levels, however deep the connected bus
	// sits.
	r := newTestRenderer(t, deepSystem())
	src := r.Source(0)

	if got := strings.Count(src, `style="dashed"`); got != 1 {
		t.Errorf("placeholders = %d, want exactly 1 in:\n%s", got, src)
	}
	if !strings.Contains(src, `"household" [`) {
		t.Errorf("missing household placeholder in:\n%s", src)
	}
	if got := strings.Count(src, `"grid" -> "household";`); got != 1 {
		t.Errorf("boundary edges = %d, want exactly 1 in:\n%s", got, src)
	}

	for _, hidden := range []string{
		`"cellar bus" [`,
		`"freezer" [`,
		`"cellar" [`,
		`"grid" -> "cellar bus";`,
		`"cellar bus" -> "freezer";`,
	} {
		if strings.Contains(src, hidden) {
			t.Errorf("hidden internal %q should not appear in:\n%s", hidden, src)
		}
	}
}

func TestSourceDeeplyNestedIntermediateDepth(t *testing.T) {
	// Depth 1 shows the household cluster but collapses the cellar: the
	// placeholder sits inside the household and the grid edge re-routes
	// to it.
	r := newTestRenderer(t, deepSystem())
	src := r.Source(1)

	if !strings.Contains(src, `subgraph "cluster_household" {`) {
		t.Errorf("missing household cluster in:\n%s", src)
	}
	if !strings.Contains(src, `"cellar" [`) || !strings.Contains(src, `style="dashed"`) {
		t.Errorf("missing cellar placeholder in:\n%s", src)
	}
	if !strings.Contains(src, `"grid" -> "cellar";`) {
		t.Errorf("missing boundary edge in:\n%s", src)
	}
	if strings.Contains(src, `"cellar bus" [`) {
		t.Error("bus below the cutoff should not be drawn")
	}
	if strings.Contains(src, `"cellar bus" -> "freezer";`) {
		t.Error("edge fully inside hidden subtree should not be drawn")
	}
}

func TestSourceUnboundedMatchesMaxDepth(t *testing.T) {
	s := nestedSystem()
	r := newTestRenderer(t, s)

	if got, want := r.Source(Unbounded), r.Source(s.MaxDepth()); got != want {
		t.Error("Unbounded should render identically to the system's max depth")
	}
}

func TestSourceNegativeDepthRendersFullTree(t *testing.T) {
	r := newTestRenderer(t, nestedSystem())

	if got, want := r.Source(-7), r.Source(Unbounded); got != want {
		t.Error("negative cutoff should fall back to the full tree")
	}
}

func TestSourceRepeatedCallsIsolated(t *testing.T) {
	// Render state is rebuilt per call: interleaving depths must not
	// leak placeholders or boundary edges between calls.
	r := newTestRenderer(t, nestedSystem())

	first := r.Source(0)
	full := r.Source(Unbounded)
	second := r.Source(0)

	if first != second {
		t.Error("same depth should render identically across calls")
	}
	if strings.Contains(full, "dashed") {
		t.Error("full render polluted by earlier collapsed render")
	}
}

func TestSourceDeterministic(t *testing.T) {
	r, err := New(flatSystem(), Options{
		Format:     FormatDOT,
		GraphAttrs: map[string]string{"rankdir": "LR", "splines": "ortho"},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	first := r.Source(Unbounded)
	for i := 0; i < 10; i++ {
		if r.Source(Unbounded) != first {
			t.Fatal("repeated renders differ")
		}
	}
}

func TestSourceGraphAttrs(t *testing.T) {
	r, err := New(flatSystem(), Options{
		Format:     FormatDOT,
		GraphAttrs: map[string]string{"rankdir": "LR"},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if !strings.Contains(r.Source(Unbounded), `rankdir="LR";`) {
		t.Error("graph attrs should pass through to the document")
	}
}

func TestSourceLegend(t *testing.T) {
	r, err := New(flatSystem(), Options{Format: FormatDOT, Legend: true})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	src := r.Source(Unbounded)

	if !strings.Contains(src, `subgraph "cluster_legend" {`) {
		t.Fatalf("missing legend cluster in:\n%s", src)
	}
	for _, k := range energy.KnownKinds {
		if !strings.Contains(src, `"legend_`+string(k)+`" [`) {
			t.Errorf("missing legend entry for %q", k)
		}
	}
}

func TestSourceUnknownKindFallsBack(t *testing.T) {
	mystery := &energy.Node{Label: "flux capacitor", Kind: energy.Kind("flux")}
	s := &energy.System{Nodes: []*energy.Node{mystery}}
	s.AssignDepths()

	r := newTestRenderer(t, s)
	src := r.Source(Unbounded)

	if !strings.Contains(src, `shape="ellipse"`) {
		t.Errorf("unknown kind should render as ellipse:\n%s", src)
	}
}

func TestSourceLabelWrapping(t *testing.T) {
	long := &energy.Node{Label: "combined heat and power", Kind: energy.KindCHP}
	s := &energy.System{Nodes: []*energy.Node{long}}
	s.AssignDepths()

	r, err := New(s, Options{Format: FormatDOT, TxtWidth: 8})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	src := r.Source(Unbounded)

	// The node id stays the raw label; only the display label wraps.
	if !strings.Contains(src, `"combined heat and power" [`) {
		t.Errorf("node id should be the unwrapped label:\n%s", src)
	}
	if !strings.Contains(src, `label="combined\n heat an\nd power"`) {
		t.Errorf("display label should wrap at 8 runes:\n%s", src)
	}
}
