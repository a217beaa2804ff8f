package styles

import (
	"testing"

	"github.com/matzehuels/enerviz/pkg/energy"
)

func TestForKind(t *testing.T) {
	tests := []struct {
		name      string
		kind      energy.Kind
		wantKnown bool
		wantShape string
	}{
		{name: "Bus", kind: energy.KindBus, wantKnown: true, wantShape: "rectangle"},
		{name: "Sink", kind: energy.KindSink, wantKnown: true, wantShape: "trapezium"},
		{name: "Source", kind: energy.KindSource, wantKnown: true, wantShape: "invtrapezium"},
		{name: "Converter", kind: energy.KindConverter, wantKnown: true, wantShape: "rectangle"},
		{name: "CHP", kind: energy.KindCHP, wantKnown: true, wantShape: "rectangle"},
		{name: "Storage", kind: energy.KindStorage, wantKnown: true, wantShape: "rectangle"},
		{name: "Unknown", kind: energy.KindUnknown, wantKnown: false, wantShape: "ellipse"},
		{name: "OutsideTaxonomy", kind: energy.Kind("transformer"), wantKnown: false, wantShape: "ellipse"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st, known := ForKind(tt.kind)
			if known != tt.wantKnown {
				t.Errorf("known = %v, want %v", known, tt.wantKnown)
			}
			if st.Shape != tt.wantShape {
				t.Errorf("Shape = %q, want %q", st.Shape, tt.wantShape)
			}
		})
	}
}

func TestCatalogCoversTaxonomy(t *testing.T) {
	for _, k := range energy.KnownKinds {
		if _, known := ForKind(k); !known {
			t.Errorf("no stencil for kind %q", k)
		}
	}
}

func TestBusStencilFixedSize(t *testing.T) {
	st, _ := ForKind(energy.KindBus)
	if !st.FixedSize {
		t.Error("bus stencil should be fixed size")
	}
	if st.Wrap {
		t.Error("bus labels should not wrap")
	}
	if st.Width == "" || st.Height == "" {
		t.Errorf("bus stencil missing dimensions: width=%q height=%q", st.Width, st.Height)
	}
}

func TestLegendName(t *testing.T) {
	if got := LegendName(energy.KindCHP); got != "CHP" {
		t.Errorf("LegendName(chp) = %q, want CHP", got)
	}
	if got := LegendName(energy.Kind("mystery")); got != "Component" {
		t.Errorf("LegendName(mystery) = %q, want Component", got)
	}
}
